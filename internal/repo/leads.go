package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"leadawaker/internal/models"
)

const leadColumns = `id, account_id, campaign_id, external_id, first_name, last_name, full_name, phone,
	email, conversion_status, automation_status, booked_call_date, manual_takeover, lead_score,
	messages_sent, messages_received, last_message_sent_at, last_message_received_at, bump_1_sent_at,
	bump_2_sent_at, bump_3_sent_at, sentiment, source, created_at, updated_at`

const insertLead = `INSERT INTO leads (account_id, campaign_id, external_id, first_name, last_name,
	full_name, phone, email, conversion_status, automation_status, booked_call_date, manual_takeover,
	lead_score, messages_sent, messages_received, last_message_sent_at, last_message_received_at,
	bump_1_sent_at, bump_2_sent_at, bump_3_sent_at, sentiment, source, created_at, updated_at)
VALUES (:account_id, :campaign_id, :external_id, :first_name, :last_name, :full_name, :phone, :email,
	:conversion_status, :automation_status, :booked_call_date, :manual_takeover, :lead_score,
	:messages_sent, :messages_received, :last_message_sent_at, :last_message_received_at,
	:bump_1_sent_at, :bump_2_sent_at, :bump_3_sent_at, :sentiment, :source, :created_at, :updated_at)`

// upstreamLeadColumns are the columns a re-ingested record may overwrite.
var upstreamLeadColumns = map[string]func(models.Lead) any{
	"campaign_id":              func(l models.Lead) any { return l.CampaignID },
	"first_name":               func(l models.Lead) any { return l.FirstName },
	"last_name":                func(l models.Lead) any { return l.LastName },
	"full_name":                func(l models.Lead) any { return l.FullName },
	"phone":                    func(l models.Lead) any { return l.Phone },
	"email":                    func(l models.Lead) any { return l.Email },
	"conversion_status":        func(l models.Lead) any { return l.ConversionStatus },
	"automation_status":        func(l models.Lead) any { return l.AutomationStatus },
	"booked_call_date":         func(l models.Lead) any { return l.BookedCallDate },
	"manual_takeover":          func(l models.Lead) any { return l.ManualTakeover },
	"lead_score":               func(l models.Lead) any { return l.LeadScore },
	"messages_sent":            func(l models.Lead) any { return l.MessagesSent },
	"messages_received":        func(l models.Lead) any { return l.MessagesReceived },
	"last_message_sent_at":     func(l models.Lead) any { return l.LastMessageSentAt },
	"last_message_received_at": func(l models.Lead) any { return l.LastMessageReceivedAt },
	"bump_1_sent_at":           func(l models.Lead) any { return l.Bump1SentAt },
	"bump_2_sent_at":           func(l models.Lead) any { return l.Bump2SentAt },
	"bump_3_sent_at":           func(l models.Lead) any { return l.Bump3SentAt },
	"sentiment":                func(l models.Lead) any { return l.Sentiment },
	"source":                   func(l models.Lead) any { return l.Source },
}

// LeadFilter narrows ListLeads. Zero values mean "any".
type LeadFilter struct {
	AccountID        int
	CampaignID       int
	ConversionStatus string
	Limit            int
	Offset           int
}

func (s *Store) CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error) {
	lead.CreatedAt = now()
	lead.UpdatedAt = lead.CreatedAt
	if lead.AutomationStatus == "" {
		lead.AutomationStatus = models.AutomationQueued
	}
	if lead.ConversionStatus == "" {
		lead.ConversionStatus = "New"
	}
	id, err := s.insertNamed(ctx, s.db, insertLead+" RETURNING id", lead)
	if err != nil {
		return models.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	lead.ID = id
	return lead, nil
}

// UpsertLead inserts or refreshes a normalised upstream lead. A new lead is
// inserted whole, defaults included. A known lead (same account and external id)
// only has the given columns rewritten, so fields the record left out keep their
// stored value. Leads without an external id cannot be matched and are always inserted.
func (s *Store) UpsertLead(ctx context.Context, lead models.Lead, columns []string) (int, error) {
	lead.UpdatedAt = now()
	if lead.CreatedAt == "" {
		lead.CreatedAt = lead.UpdatedAt
	}
	if lead.ExternalID == nil {
		created, err := s.CreateLead(ctx, lead)
		return created.ID, err
	}

	var id int
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = leadIDByExternal(ctx, tx, lead.AccountID, *lead.ExternalID)
		if errors.Is(err, ErrNotFound) {
			id, err = s.insertNamed(ctx, tx, insertLead+" ON CONFLICT (account_id, external_id) DO NOTHING RETURNING id", lead)
			if !errors.Is(err, ErrConflict) {
				return err
			}
			// inserted concurrently; fall through to the update
			id, err = leadIDByExternal(ctx, tx, lead.AccountID, *lead.ExternalID)
		}
		if err != nil {
			return err
		}
		return updateLeadColumns(ctx, tx, id, lead, columns)
	})
	if err != nil {
		return 0, fmt.Errorf("upsert lead %s: %w", *lead.ExternalID, err)
	}
	return id, nil
}

func leadIDByExternal(ctx context.Context, tx *sqlx.Tx, accountID int, externalID string) (int, error) {
	var id int
	err := tx.GetContext(ctx, &id, tx.Rebind("SELECT id FROM leads WHERE account_id = ? AND external_id = ?"),
		accountID, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

func updateLeadColumns(ctx context.Context, tx *sqlx.Tx, id int, lead models.Lead, columns []string) error {
	var (
		set  []string
		args []any
	)
	seen := map[string]bool{}
	for _, col := range columns {
		value, ok := upstreamLeadColumns[col]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		set = append(set, col+" = ?")
		args = append(args, value(lead))
	}
	set = append(set, "updated_at = ?")
	args = append(args, lead.UpdatedAt, id)
	_, err := tx.ExecContext(ctx, tx.Rebind("UPDATE leads SET "+strings.Join(set, ", ")+" WHERE id = ?"), args...)
	return err
}

func (s *Store) GetLead(ctx context.Context, id int) (models.Lead, error) {
	var l models.Lead
	if err := s.get(ctx, &l, "SELECT "+leadColumns+" FROM leads WHERE id = ?", id); err != nil {
		return models.Lead{}, fmt.Errorf("get lead %d: %w", id, err)
	}
	return l, nil
}

func (s *Store) ListLeads(ctx context.Context, f LeadFilter) ([]models.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads WHERE 1=1"
	var args []any
	if f.AccountID > 0 {
		query += " AND account_id = ?"
		args = append(args, f.AccountID)
	}
	if f.CampaignID > 0 {
		query += " AND campaign_id = ?"
		args = append(args, f.CampaignID)
	}
	if f.ConversionStatus != "" {
		query += " AND LOWER(conversion_status) = LOWER(?)"
		args = append(args, f.ConversionStatus)
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	leads := []models.Lead{}
	if err := s.selectAll(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

// ListAgendaCandidates loads only the leads that can appear on the agenda.
func (s *Store) ListAgendaCandidates(ctx context.Context, accountID int) ([]models.Lead, error) {
	query := "SELECT " + leadColumns + ` FROM leads
		WHERE (booked_call_date IS NOT NULL OR manual_takeover = ?)`
	args := []any{true}
	if accountID > 0 {
		query += " AND account_id = ?"
		args = append(args, accountID)
	}
	leads := []models.Lead{}
	if err := s.selectAll(ctx, &leads, query+" ORDER BY id", args...); err != nil {
		return nil, fmt.Errorf("list agenda leads: %w", err)
	}
	return leads, nil
}

func (s *Store) UpdateLead(ctx context.Context, id int, p models.LeadPayload) (models.Lead, error) {
	n, err := s.exec(ctx, `UPDATE leads SET campaign_id = ?, first_name = ?, last_name = ?, full_name = ?,
		phone = ?, email = ?, conversion_status = ?, booked_call_date = ?, manual_takeover = ?,
		sentiment = ?, source = ?, updated_at = ? WHERE id = ?`,
		p.CampaignID, p.FirstName, p.LastName, p.FullName, p.Phone, p.Email, p.ConversionStatus,
		p.BookedCallDate, p.ManualTakeover, p.Sentiment, p.Source, now(), id)
	if err != nil {
		return models.Lead{}, fmt.Errorf("update lead %d: %w", id, err)
	}
	if n == 0 {
		return models.Lead{}, fmt.Errorf("update lead %d: %w", id, ErrNotFound)
	}
	return s.GetLead(ctx, id)
}

// SetAutomationStatus is an explicit operator override of the engine-owned state.
func (s *Store) SetAutomationStatus(ctx context.Context, id int, status string) error {
	n, err := s.exec(ctx, "UPDATE leads SET automation_status = ?, updated_at = ? WHERE id = ?", status, now(), id)
	if err != nil {
		return fmt.Errorf("set lead %d automation status: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("set lead %d automation status: %w", id, ErrNotFound)
	}
	return nil
}

// CloseLead marks a lead DND or Lost and stops automation. Leads are never deleted.
func (s *Store) CloseLead(ctx context.Context, id int, outcome string) error {
	automation := models.AutomationCompleted
	if outcome == "DND" {
		automation = models.AutomationDND
	}
	n, err := s.exec(ctx, `UPDATE leads SET conversion_status = ?, automation_status = ?, manual_takeover = ?,
		updated_at = ? WHERE id = ?`, outcome, automation, false, now(), id)
	if err != nil {
		return fmt.Errorf("close lead %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("close lead %d: %w", id, ErrNotFound)
	}
	return nil
}

const insertScore = `INSERT INTO lead_score_history (lead_id, score, snapshot_date, created_at)
VALUES (:lead_id, :score, :snapshot_date, :created_at)
ON CONFLICT (lead_id, snapshot_date) DO NOTHING
RETURNING id`

// RecordLeadScore writes the day's score once. The cached lead_score follows the
// newest snapshot only, so back-filling an older date leaves it alone.
func (s *Store) RecordLeadScore(ctx context.Context, snap models.LeadScoreSnapshot) (models.LeadScoreSnapshot, error) {
	snap.CreatedAt = now()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		err := tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(*) FROM leads WHERE id = ?"), snap.LeadID)
		if err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		id, err := s.insertNamed(ctx, tx, insertScore, snap)
		if err != nil {
			return err
		}
		snap.ID = id
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE leads SET lead_score = ?, updated_at = ? WHERE id = ?
			AND NOT EXISTS (SELECT 1 FROM lead_score_history WHERE lead_id = ? AND snapshot_date > ?)`),
			snap.Score, snap.CreatedAt, snap.LeadID, snap.LeadID, snap.SnapshotDate)
		return err
	})
	if err != nil {
		return models.LeadScoreSnapshot{}, fmt.Errorf("record score for lead %d on %s: %w", snap.LeadID, snap.SnapshotDate, err)
	}
	return snap, nil
}

func (s *Store) ListLeadScores(ctx context.Context, leadID int) ([]models.LeadScoreSnapshot, error) {
	scores := []models.LeadScoreSnapshot{}
	err := s.selectAll(ctx, &scores, `SELECT id, lead_id, score, snapshot_date, created_at
		FROM lead_score_history WHERE lead_id = ? ORDER BY snapshot_date`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list scores for lead %d: %w", leadID, err)
	}
	return scores, nil
}
