package repo

import (
	"context"
	"fmt"

	"leadawaker/internal/models"
)

const accountColumns = `id, name, owner_email, phone, website, twilio_account_sid, twilio_auth_token,
	twilio_from_number, business_hours_start, business_hours_end, timezone, max_daily_sends,
	webhook_secret, default_ai_name, default_ai_role, default_ai_style, status, created_at, updated_at`

const insertAccount = `INSERT INTO accounts (name, owner_email, phone, website, twilio_account_sid,
	twilio_auth_token, twilio_from_number, business_hours_start, business_hours_end, timezone,
	max_daily_sends, webhook_secret, default_ai_name, default_ai_role, default_ai_style, status,
	created_at, updated_at)
VALUES (:name, :owner_email, :phone, :website, :twilio_account_sid, :twilio_auth_token,
	:twilio_from_number, :business_hours_start, :business_hours_end, :timezone, :max_daily_sends,
	:webhook_secret, :default_ai_name, :default_ai_role, :default_ai_style, :status,
	:created_at, :updated_at)
RETURNING id`

func accountFromPayload(p models.AccountPayload) models.Account {
	a := models.Account{
		Name:               p.Name,
		OwnerEmail:         p.OwnerEmail,
		Phone:              p.Phone,
		Website:            p.Website,
		TwilioAccountSID:   p.TwilioAccountSID,
		TwilioAuthToken:    p.TwilioAuthToken,
		TwilioFromNumber:   p.TwilioFromNumber,
		BusinessHoursStart: p.BusinessHoursStart,
		BusinessHoursEnd:   p.BusinessHoursEnd,
		Timezone:           p.Timezone,
		MaxDailySends:      p.MaxDailySends,
		DefaultAIName:      p.DefaultAIName,
		DefaultAIRole:      p.DefaultAIRole,
		DefaultAIStyle:     p.DefaultAIStyle,
	}
	if a.BusinessHoursStart == "" {
		a.BusinessHoursStart = models.DefaultHoursStart
	}
	if a.BusinessHoursEnd == "" {
		a.BusinessHoursEnd = models.DefaultHoursEnd
	}
	if a.Timezone == "" {
		a.Timezone = models.DefaultTimezone
	}
	return a
}

// CreateAccount inserts an active account with the given webhook secret.
func (s *Store) CreateAccount(ctx context.Context, p models.AccountPayload, webhookSecret string) (models.Account, error) {
	a := accountFromPayload(p)
	a.WebhookSecret = webhookSecret
	a.Status = models.DefaultAccountStatus
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt

	id, err := s.insertNamed(ctx, s.db, insertAccount, a)
	if err != nil {
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	a.ID = id
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, id int) (models.Account, error) {
	var a models.Account
	if err := s.get(ctx, &a, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id); err != nil {
		return models.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := s.selectAll(ctx, &accounts, "SELECT "+accountColumns+" FROM accounts ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// ListActiveAccountIDs feeds the upstream sync.
func (s *Store) ListActiveAccountIDs(ctx context.Context) ([]int, error) {
	ids := []int{}
	err := s.selectAll(ctx, &ids, "SELECT id FROM accounts WHERE status = ? ORDER BY id", models.AccountStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}
	return ids, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id int, p models.AccountPayload) (models.Account, error) {
	a := accountFromPayload(p)
	n, err := s.exec(ctx, `UPDATE accounts SET name = ?, owner_email = ?, phone = ?, website = ?,
		twilio_account_sid = ?, twilio_auth_token = COALESCE(?, twilio_auth_token), twilio_from_number = ?,
		business_hours_start = ?, business_hours_end = ?, timezone = ?, max_daily_sends = ?,
		default_ai_name = ?, default_ai_role = ?, default_ai_style = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, a.OwnerEmail, a.Phone, a.Website, a.TwilioAccountSID, a.TwilioAuthToken, a.TwilioFromNumber,
		a.BusinessHoursStart, a.BusinessHoursEnd, a.Timezone, a.MaxDailySends,
		a.DefaultAIName, a.DefaultAIRole, a.DefaultAIStyle, now(), id)
	if err != nil {
		return models.Account{}, fmt.Errorf("update account %d: %w", id, err)
	}
	if n == 0 {
		return models.Account{}, fmt.Errorf("update account %d: %w", id, ErrNotFound)
	}
	return s.GetAccount(ctx, id)
}

// SetAccountStatus is the only way an account leaves service; rows are never deleted.
func (s *Store) SetAccountStatus(ctx context.Context, id int, status string) error {
	n, err := s.exec(ctx, "UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?", status, now(), id)
	if err != nil {
		return fmt.Errorf("set account %d status: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("set account %d status: %w", id, ErrNotFound)
	}
	return nil
}
