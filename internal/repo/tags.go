package repo

import (
	"context"
	"fmt"

	"leadawaker/internal/models"
)

const insertTag = `INSERT INTO tags (account_id, name, color, auto_applied, created_at)
VALUES (:account_id, :name, :color, :auto_applied, :created_at)
ON CONFLICT (account_id, name) DO NOTHING
RETURNING id`

func (s *Store) CreateTag(ctx context.Context, p models.TagPayload) (models.Tag, error) {
	t := models.Tag{
		AccountID:   p.AccountID,
		Name:        p.Name,
		Color:       p.Color,
		AutoApplied: p.AutoApplied,
		CreatedAt:   now(),
	}
	id, err := s.insertNamed(ctx, s.db, insertTag, t)
	if err != nil {
		return models.Tag{}, fmt.Errorf("insert tag %q: %w", p.Name, err)
	}
	t.ID = id
	return t, nil
}

func (s *Store) GetTag(ctx context.Context, id int) (models.Tag, error) {
	var t models.Tag
	if err := s.get(ctx, &t, "SELECT id, account_id, name, color, auto_applied, created_at FROM tags WHERE id = ?", id); err != nil {
		return models.Tag{}, fmt.Errorf("get tag %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) ListTags(ctx context.Context, accountID int) ([]models.Tag, error) {
	query := "SELECT id, account_id, name, color, auto_applied, created_at FROM tags"
	var args []any
	if accountID > 0 {
		query += " WHERE account_id = ?"
		args = append(args, accountID)
	}
	tags := []models.Tag{}
	if err := s.selectAll(ctx, &tags, query+" ORDER BY name", args...); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *Store) ListLeadTags(ctx context.Context, leadID int) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := s.selectAll(ctx, &tags, `SELECT t.id, t.account_id, t.name, t.color, t.auto_applied, t.created_at
		FROM tags t JOIN leads_tags lt ON lt.tag_id = t.id WHERE lt.lead_id = ? ORDER BY t.name`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list tags for lead %d: %w", leadID, err)
	}
	return tags, nil
}

// AttachTag is idempotent.
func (s *Store) AttachTag(ctx context.Context, leadID, tagID int) error {
	_, err := s.exec(ctx, `INSERT INTO leads_tags (lead_id, tag_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (lead_id, tag_id) DO NOTHING`, leadID, tagID, now())
	if err != nil {
		return fmt.Errorf("attach tag %d to lead %d: %w", tagID, leadID, err)
	}
	return nil
}

func (s *Store) DetachTag(ctx context.Context, leadID, tagID int) error {
	n, err := s.exec(ctx, "DELETE FROM leads_tags WHERE lead_id = ? AND tag_id = ?", leadID, tagID)
	if err != nil {
		return fmt.Errorf("detach tag %d from lead %d: %w", tagID, leadID, err)
	}
	if n == 0 {
		return fmt.Errorf("detach tag %d from lead %d: %w", tagID, leadID, ErrNotFound)
	}
	return nil
}
