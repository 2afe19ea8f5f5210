package database

import "strings"

// schemaSQL is shared by SQLite and Postgres. {{pk}} expands to the dialect's
// auto-increment primary key. IF NOT EXISTS keeps it re-runnable.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    id {{pk}},
    name TEXT NOT NULL,
    owner_email TEXT,
    phone TEXT,
    website TEXT,
    twilio_account_sid TEXT,
    twilio_auth_token TEXT,
    twilio_from_number TEXT,
    business_hours_start TEXT NOT NULL DEFAULT '09:00',
    business_hours_end TEXT NOT NULL DEFAULT '17:00',
    timezone TEXT NOT NULL DEFAULT 'UTC',
    max_daily_sends INTEGER NOT NULL DEFAULT 0,
    webhook_secret TEXT NOT NULL,
    default_ai_name TEXT,
    default_ai_role TEXT,
    default_ai_style TEXT,
    status TEXT NOT NULL DEFAULT 'Active',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id {{pk}},
    account_id BIGINT NOT NULL REFERENCES accounts(id),
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'Viewer',
    status TEXT NOT NULL DEFAULT 'active',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS campaigns (
    id {{pk}},
    account_id BIGINT NOT NULL REFERENCES accounts(id),
    external_id TEXT,
    name TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'Draft',
    first_message TEXT,
    bump_1_message TEXT,
    bump_2_message TEXT,
    bump_3_message TEXT,
    bump_1_delay_hours INTEGER NOT NULL DEFAULT 0,
    bump_2_delay_hours INTEGER NOT NULL DEFAULT 0,
    bump_3_delay_hours INTEGER NOT NULL DEFAULT 0,
    active_hours_start TEXT,
    active_hours_end TEXT,
    daily_lead_limit INTEGER NOT NULL DEFAULT 0,
    total_leads_targeted INTEGER NOT NULL DEFAULT 0,
    total_messages_sent INTEGER NOT NULL DEFAULT 0,
    total_responses_received INTEGER NOT NULL DEFAULT 0,
    bookings_generated INTEGER NOT NULL DEFAULT 0,
    total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    response_rate_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    booking_rate_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (account_id, external_id)
);
CREATE INDEX IF NOT EXISTS idx_campaigns_account_id ON campaigns(account_id);

CREATE TABLE IF NOT EXISTS leads (
    id {{pk}},
    account_id BIGINT NOT NULL REFERENCES accounts(id),
    campaign_id BIGINT REFERENCES campaigns(id),
    external_id TEXT,
    first_name TEXT,
    last_name TEXT,
    full_name TEXT NOT NULL,
    phone TEXT,
    email TEXT,
    conversion_status TEXT NOT NULL DEFAULT 'New',
    automation_status TEXT NOT NULL DEFAULT 'queued',
    booked_call_date TEXT,
    manual_takeover BOOLEAN NOT NULL DEFAULT FALSE,
    lead_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    messages_sent INTEGER NOT NULL DEFAULT 0,
    messages_received INTEGER NOT NULL DEFAULT 0,
    last_message_sent_at TEXT,
    last_message_received_at TEXT,
    bump_1_sent_at TEXT,
    bump_2_sent_at TEXT,
    bump_3_sent_at TEXT,
    sentiment TEXT,
    source TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (account_id, external_id)
);
CREATE INDEX IF NOT EXISTS idx_leads_account_id ON leads(account_id);
CREATE INDEX IF NOT EXISTS idx_leads_campaign_id ON leads(campaign_id);

CREATE TABLE IF NOT EXISTS interactions (
    id {{pk}},
    account_id BIGINT NOT NULL REFERENCES accounts(id),
    campaign_id BIGINT REFERENCES campaigns(id),
    lead_id BIGINT NOT NULL REFERENCES leads(id),
    direction TEXT NOT NULL,
    content TEXT NOT NULL,
    channel TEXT NOT NULL DEFAULT 'sms',
    twilio_message_sid TEXT,
    ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
    ai_model TEXT,
    prompt_tokens INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    sentiment TEXT,
    bump_number INTEGER,
    created_by BIGINT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interactions_lead_id ON interactions(lead_id);

CREATE TABLE IF NOT EXISTS tags (
    id {{pk}},
    account_id BIGINT NOT NULL REFERENCES accounts(id),
    name TEXT NOT NULL,
    color TEXT,
    auto_applied BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TEXT NOT NULL,
    UNIQUE (account_id, name)
);

CREATE TABLE IF NOT EXISTS leads_tags (
    lead_id BIGINT NOT NULL REFERENCES leads(id),
    tag_id BIGINT NOT NULL REFERENCES tags(id),
    created_at TEXT NOT NULL,
    PRIMARY KEY (lead_id, tag_id)
);

CREATE TABLE IF NOT EXISTS lead_score_history (
    id {{pk}},
    lead_id BIGINT NOT NULL REFERENCES leads(id),
    score DOUBLE PRECISION NOT NULL,
    snapshot_date TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (lead_id, snapshot_date)
);

CREATE TABLE IF NOT EXISTS campaign_metrics_history (
    id {{pk}},
    campaign_id BIGINT NOT NULL REFERENCES campaigns(id),
    snapshot_date TEXT NOT NULL,
    total_leads_targeted INTEGER NOT NULL DEFAULT 0,
    total_messages_sent INTEGER NOT NULL DEFAULT 0,
    total_responses_received INTEGER NOT NULL DEFAULT 0,
    bookings_generated INTEGER NOT NULL DEFAULT 0,
    total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    response_rate_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    booking_rate_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    UNIQUE (campaign_id, snapshot_date)
);
`

var primaryKeys = map[string]string{
	DriverSQLite:   "INTEGER PRIMARY KEY AUTOINCREMENT",
	DriverPostgres: "BIGSERIAL PRIMARY KEY",
}

// schemaStatements renders schemaSQL for a driver, one statement per element.
func schemaStatements(driver string) []string {
	pk, ok := primaryKeys[driver]
	if !ok {
		pk = primaryKeys[DriverSQLite]
	}
	rendered := strings.ReplaceAll(schemaSQL, "{{pk}}", pk)
	var out []string
	for _, stmt := range strings.Split(rendered, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
