// Package repo holds the SQL for every entity. Queries are written with "?"
// placeholders and rebound for the connected driver.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write-once row or a unique key already exists.
	ErrConflict = errors.New("already exists")
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *Store) get(ctx context.Context, dest any, query string, args ...any) error {
	err := s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insertNamed runs an INSERT ... RETURNING id built from a struct's db tags.
// A query ending in ON CONFLICT DO NOTHING that returns no row yields ErrConflict.
func (s *Store) insertNamed(ctx context.Context, q sqlx.QueryerContext, query string, arg any) (int, error) {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return 0, fmt.Errorf("bind named query: %w", err)
	}
	var id int
	err = sqlx.GetContext(ctx, q, &id, s.db.Rebind(bound), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrConflict
	}
	return id, err
}

// inTx runs fn in a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
