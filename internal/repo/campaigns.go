package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"leadawaker/internal/models"
)

const campaignColumns = `id, account_id, external_id, name, description, status, first_message,
	bump_1_message, bump_2_message, bump_3_message, bump_1_delay_hours, bump_2_delay_hours,
	bump_3_delay_hours, active_hours_start, active_hours_end, daily_lead_limit, total_leads_targeted,
	total_messages_sent, total_responses_received, bookings_generated, total_cost,
	response_rate_percent, booking_rate_percent, created_at, updated_at`

const insertCampaign = `INSERT INTO campaigns (account_id, external_id, name, description, status,
	first_message, bump_1_message, bump_2_message, bump_3_message, bump_1_delay_hours,
	bump_2_delay_hours, bump_3_delay_hours, active_hours_start, active_hours_end, daily_lead_limit,
	total_leads_targeted, total_messages_sent, total_responses_received, bookings_generated,
	total_cost, response_rate_percent, booking_rate_percent, created_at, updated_at)
VALUES (:account_id, :external_id, :name, :description, :status, :first_message, :bump_1_message,
	:bump_2_message, :bump_3_message, :bump_1_delay_hours, :bump_2_delay_hours, :bump_3_delay_hours,
	:active_hours_start, :active_hours_end, :daily_lead_limit, :total_leads_targeted,
	:total_messages_sent, :total_responses_received, :bookings_generated, :total_cost,
	:response_rate_percent, :booking_rate_percent, :created_at, :updated_at)`

// Metric columns are owned by the automation engine; upstream sync refreshes them.
const upsertCampaignTail = `
ON CONFLICT (account_id, external_id) DO UPDATE SET
	name = excluded.name,
	status = excluded.status,
	total_leads_targeted = excluded.total_leads_targeted,
	total_messages_sent = excluded.total_messages_sent,
	total_responses_received = excluded.total_responses_received,
	bookings_generated = excluded.bookings_generated,
	total_cost = excluded.total_cost,
	response_rate_percent = excluded.response_rate_percent,
	booking_rate_percent = excluded.booking_rate_percent,
	updated_at = excluded.updated_at
RETURNING id`

func campaignFromPayload(p models.CampaignPayload) models.Campaign {
	c := models.Campaign{
		AccountID:        p.AccountID,
		Name:             p.Name,
		Description:      p.Description,
		Status:           p.Status,
		FirstMessage:     p.FirstMessage,
		Bump1Message:     p.Bump1Message,
		Bump2Message:     p.Bump2Message,
		Bump3Message:     p.Bump3Message,
		Bump1DelayHours:  p.Bump1DelayHours,
		Bump2DelayHours:  p.Bump2DelayHours,
		Bump3DelayHours:  p.Bump3DelayHours,
		ActiveHoursStart: p.ActiveHoursStart,
		ActiveHoursEnd:   p.ActiveHoursEnd,
		DailyLeadLimit:   p.DailyLeadLimit,
	}
	if c.Status == "" {
		c.Status = models.CampaignStatusDraft
	}
	return c
}

func (s *Store) CreateCampaign(ctx context.Context, p models.CampaignPayload) (models.Campaign, error) {
	c := campaignFromPayload(p)
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	id, err := s.insertNamed(ctx, s.db, insertCampaign+" RETURNING id", c)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("insert campaign: %w", err)
	}
	c.ID = id
	return c, nil
}

// UpsertCampaign stores an upstream campaign keyed by its external id.
func (s *Store) UpsertCampaign(ctx context.Context, c models.Campaign) (int, error) {
	if c.ExternalID == nil {
		return 0, fmt.Errorf("upsert campaign: missing external id")
	}
	id, err := s.insertNamed(ctx, s.db, insertCampaign+upsertCampaignTail, c)
	if err != nil {
		return 0, fmt.Errorf("upsert campaign %s: %w", *c.ExternalID, err)
	}
	return id, nil
}

func (s *Store) GetCampaign(ctx context.Context, id int) (models.Campaign, error) {
	var c models.Campaign
	if err := s.get(ctx, &c, "SELECT "+campaignColumns+" FROM campaigns WHERE id = ?", id); err != nil {
		return models.Campaign{}, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return c, nil
}

// CampaignIDByExternal resolves an upstream campaign id to the local row id.
func (s *Store) CampaignIDByExternal(ctx context.Context, accountID int, externalID string) (int, error) {
	var id int
	err := s.get(ctx, &id, "SELECT id FROM campaigns WHERE account_id = ? AND external_id = ?", accountID, externalID)
	if err != nil {
		return 0, fmt.Errorf("campaign %s of account %d: %w", externalID, accountID, err)
	}
	return id, nil
}

// ListCampaigns returns campaigns of one account, or all when accountID is 0.
func (s *Store) ListCampaigns(ctx context.Context, accountID int, status string) ([]models.Campaign, error) {
	query := "SELECT " + campaignColumns + " FROM campaigns WHERE 1=1"
	var args []any
	if accountID > 0 {
		query += " AND account_id = ?"
		args = append(args, accountID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	campaigns := []models.Campaign{}
	if err := s.selectAll(ctx, &campaigns, query+" ORDER BY id", args...); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *Store) UpdateCampaign(ctx context.Context, id int, p models.CampaignPayload) (models.Campaign, error) {
	c := campaignFromPayload(p)
	n, err := s.exec(ctx, `UPDATE campaigns SET name = ?, description = ?, status = ?, first_message = ?,
		bump_1_message = ?, bump_2_message = ?, bump_3_message = ?, bump_1_delay_hours = ?,
		bump_2_delay_hours = ?, bump_3_delay_hours = ?, active_hours_start = ?, active_hours_end = ?,
		daily_lead_limit = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Description, c.Status, c.FirstMessage, c.Bump1Message, c.Bump2Message, c.Bump3Message,
		c.Bump1DelayHours, c.Bump2DelayHours, c.Bump3DelayHours, c.ActiveHoursStart, c.ActiveHoursEnd,
		c.DailyLeadLimit, now(), id)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("update campaign %d: %w", id, err)
	}
	if n == 0 {
		return models.Campaign{}, fmt.Errorf("update campaign %d: %w", id, ErrNotFound)
	}
	return s.GetCampaign(ctx, id)
}

const insertCampaignSnapshot = `INSERT INTO campaign_metrics_history (campaign_id, snapshot_date,
	total_leads_targeted, total_messages_sent, total_responses_received, bookings_generated,
	total_cost, response_rate_percent, booking_rate_percent, created_at)
VALUES (:campaign_id, :snapshot_date, :total_leads_targeted, :total_messages_sent,
	:total_responses_received, :bookings_generated, :total_cost, :response_rate_percent,
	:booking_rate_percent, :created_at)
ON CONFLICT (campaign_id, snapshot_date) DO NOTHING
RETURNING id`

// RecordCampaignSnapshot writes the day's metrics and copies them onto the
// campaign row when it is the newest snapshot. A second snapshot for the same
// day is ErrConflict.
func (s *Store) RecordCampaignSnapshot(ctx context.Context, snap models.CampaignMetricsSnapshot) (models.CampaignMetricsSnapshot, error) {
	snap.CreatedAt = now()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.insertNamed(ctx, tx, insertCampaignSnapshot, snap)
		if err != nil {
			return err
		}
		snap.ID = id
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE campaigns SET total_leads_targeted = ?,
			total_messages_sent = ?, total_responses_received = ?, bookings_generated = ?, total_cost = ?,
			response_rate_percent = ?, booking_rate_percent = ?, updated_at = ? WHERE id = ?
			AND NOT EXISTS (SELECT 1 FROM campaign_metrics_history WHERE campaign_id = ? AND snapshot_date > ?)`),
			snap.TotalLeadsTargeted, snap.TotalMessagesSent, snap.TotalResponsesReceived,
			snap.BookingsGenerated, snap.TotalCost, snap.ResponseRatePercent, snap.BookingRatePercent,
			snap.CreatedAt, snap.CampaignID, snap.CampaignID, snap.SnapshotDate)
		return err
	})
	if err != nil {
		return models.CampaignMetricsSnapshot{}, fmt.Errorf("record snapshot for campaign %d on %s: %w", snap.CampaignID, snap.SnapshotDate, err)
	}
	return snap, nil
}

// ListCampaignSnapshots returns history oldest first, optionally bounded by date (inclusive).
func (s *Store) ListCampaignSnapshots(ctx context.Context, campaignID int, from, to string) ([]models.CampaignMetricsSnapshot, error) {
	query := `SELECT id, campaign_id, snapshot_date, total_leads_targeted, total_messages_sent,
		total_responses_received, bookings_generated, total_cost, response_rate_percent,
		booking_rate_percent, created_at FROM campaign_metrics_history WHERE campaign_id = ?`
	args := []any{campaignID}
	if from != "" {
		query += " AND snapshot_date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND snapshot_date <= ?"
		args = append(args, to)
	}
	snaps := []models.CampaignMetricsSnapshot{}
	if err := s.selectAll(ctx, &snaps, query+" ORDER BY snapshot_date", args...); err != nil {
		return nil, fmt.Errorf("list snapshots for campaign %d: %w", campaignID, err)
	}
	return snaps, nil
}
