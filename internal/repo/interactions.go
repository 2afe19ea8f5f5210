package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"leadawaker/internal/models"
)

const interactionColumns = `id, account_id, campaign_id, lead_id, direction, content, channel,
	twilio_message_sid, ai_generated, ai_model, prompt_tokens, completion_tokens, cost, sentiment,
	bump_number, created_by, created_at`

const insertInteraction = `INSERT INTO interactions (account_id, campaign_id, lead_id, direction, content,
	channel, twilio_message_sid, ai_generated, ai_model, prompt_tokens, completion_tokens, cost,
	sentiment, bump_number, created_by, created_at)
VALUES (:account_id, :campaign_id, :lead_id, :direction, :content, :channel, :twilio_message_sid,
	:ai_generated, :ai_model, :prompt_tokens, :completion_tokens, :cost, :sentiment, :bump_number,
	:created_by, :created_at)
RETURNING id`

// AppendInteraction stores a message and rolls the lead's counters forward in
// the same transaction. Interactions are never updated or deleted afterwards.
func (s *Store) AppendInteraction(ctx context.Context, i models.Interaction) (models.Interaction, error) {
	if i.CreatedAt == "" {
		i.CreatedAt = now()
	}
	if i.Channel == "" {
		i.Channel = models.DefaultChannel
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.insertNamed(ctx, tx, insertInteraction, i)
		if err != nil {
			return err
		}
		i.ID = id

		var counter string
		switch i.Direction {
		case models.DirectionOutbound:
			counter = "messages_sent = messages_sent + 1, last_message_sent_at = ?"
		default:
			counter = "messages_received = messages_received + 1, last_message_received_at = ?"
		}
		args := []any{i.CreatedAt}
		if i.BumpNumber != nil && i.Direction == models.DirectionOutbound {
			counter += fmt.Sprintf(", bump_%d_sent_at = ?", *i.BumpNumber)
			args = append(args, i.CreatedAt)
		}
		args = append(args, i.CreatedAt, i.LeadID)
		_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE leads SET "+counter+", updated_at = ? WHERE id = ?"), args...)
		return err
	})
	if err != nil {
		return models.Interaction{}, fmt.Errorf("append interaction for lead %d: %w", i.LeadID, err)
	}
	return i, nil
}

func (s *Store) GetInteraction(ctx context.Context, id int) (models.Interaction, error) {
	var i models.Interaction
	if err := s.get(ctx, &i, "SELECT "+interactionColumns+" FROM interactions WHERE id = ?", id); err != nil {
		return models.Interaction{}, fmt.Errorf("get interaction %d: %w", id, err)
	}
	return i, nil
}

// ListInteractions returns one lead's conversation in chronological order.
func (s *Store) ListInteractions(ctx context.Context, leadID int) ([]models.Interaction, error) {
	out := []models.Interaction{}
	err := s.selectAll(ctx, &out, "SELECT "+interactionColumns+" FROM interactions WHERE lead_id = ? ORDER BY created_at, id", leadID)
	if err != nil {
		return nil, fmt.Errorf("list interactions for lead %d: %w", leadID, err)
	}
	return out, nil
}
