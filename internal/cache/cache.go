package cache

import (
	"context"

	"leadawaker/internal/agenda"
)

// AgendaCache holds computed agendas per account. A miss is (nil, nil).
type AgendaCache interface {
	GetAgenda(ctx context.Context, accountID int) (*agenda.Agenda, error)
	StoreAgenda(ctx context.Context, accountID int, a agenda.Agenda) error
	Invalidate(ctx context.Context, accountIDs ...int) error
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) GetAgenda(context.Context, int) (*agenda.Agenda, error) { return nil, nil }
func (Noop) StoreAgenda(context.Context, int, agenda.Agenda) error  { return nil }
func (Noop) Invalidate(context.Context, ...int) error               { return nil }
