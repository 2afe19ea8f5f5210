package models

import "strings"

// Account is a client business (tenant). Accounts are never hard-deleted.
type Account struct {
	ID                 int     `json:"id" db:"id"`
	Name               string  `json:"name" db:"name"`
	OwnerEmail         *string `json:"owner_email,omitempty" db:"owner_email"`
	Phone              *string `json:"phone,omitempty" db:"phone"`
	Website            *string `json:"website,omitempty" db:"website"`
	TwilioAccountSID   *string `json:"twilio_account_sid,omitempty" db:"twilio_account_sid"`
	TwilioAuthToken    *string `json:"-" db:"twilio_auth_token"`
	TwilioFromNumber   *string `json:"twilio_from_number,omitempty" db:"twilio_from_number"`
	BusinessHoursStart string  `json:"business_hours_start" db:"business_hours_start"`
	BusinessHoursEnd   string  `json:"business_hours_end" db:"business_hours_end"`
	Timezone           string  `json:"timezone" db:"timezone"`
	MaxDailySends      int     `json:"max_daily_sends" db:"max_daily_sends"`
	WebhookSecret      string  `json:"webhook_secret,omitempty" db:"webhook_secret"`
	DefaultAIName      *string `json:"default_ai_name,omitempty" db:"default_ai_name"`
	DefaultAIRole      *string `json:"default_ai_role,omitempty" db:"default_ai_role"`
	DefaultAIStyle     *string `json:"default_ai_style,omitempty" db:"default_ai_style"`
	Status             string  `json:"status" db:"status"`
	CreatedAt          string  `json:"created_at" db:"created_at"`
	UpdatedAt          string  `json:"updated_at" db:"updated_at"`
}

// AccountPayload is the writable part of an Account.
type AccountPayload struct {
	Name               string  `json:"name" validate:"required,min=2,max=120"`
	OwnerEmail         *string `json:"owner_email" validate:"omitempty,email"`
	Phone              *string `json:"phone"`
	Website            *string `json:"website" validate:"omitempty,url"`
	TwilioAccountSID   *string `json:"twilio_account_sid"`
	TwilioAuthToken    *string `json:"twilio_auth_token"`
	TwilioFromNumber   *string `json:"twilio_from_number"`
	BusinessHoursStart string  `json:"business_hours_start" validate:"omitempty,datetime=15:04"`
	BusinessHoursEnd   string  `json:"business_hours_end" validate:"omitempty,datetime=15:04"`
	Timezone           string  `json:"timezone" validate:"omitempty,timezone"`
	MaxDailySends      int     `json:"max_daily_sends" validate:"gte=0"`
	DefaultAIName      *string `json:"default_ai_name"`
	DefaultAIRole      *string `json:"default_ai_role"`
	DefaultAIStyle     *string `json:"default_ai_style"`
}

const (
	AccountStatusActive   = "Active"
	AccountStatusInactive = "Inactive"
)

// Campaign is an outreach sequence scoped to an Account.
type Campaign struct {
	ID                     int     `json:"id" db:"id"`
	AccountID              int     `json:"account_id" db:"account_id"`
	ExternalID             *string `json:"external_id,omitempty" db:"external_id"`
	Name                   string  `json:"name" db:"name"`
	Description            *string `json:"description,omitempty" db:"description"`
	Status                 string  `json:"status" db:"status"`
	FirstMessage           *string `json:"first_message,omitempty" db:"first_message"`
	Bump1Message           *string `json:"bump_1_message,omitempty" db:"bump_1_message"`
	Bump2Message           *string `json:"bump_2_message,omitempty" db:"bump_2_message"`
	Bump3Message           *string `json:"bump_3_message,omitempty" db:"bump_3_message"`
	Bump1DelayHours        int     `json:"bump_1_delay_hours" db:"bump_1_delay_hours"`
	Bump2DelayHours        int     `json:"bump_2_delay_hours" db:"bump_2_delay_hours"`
	Bump3DelayHours        int     `json:"bump_3_delay_hours" db:"bump_3_delay_hours"`
	ActiveHoursStart       *string `json:"active_hours_start,omitempty" db:"active_hours_start"`
	ActiveHoursEnd         *string `json:"active_hours_end,omitempty" db:"active_hours_end"`
	DailyLeadLimit         int     `json:"daily_lead_limit" db:"daily_lead_limit"`
	TotalLeadsTargeted     int     `json:"total_leads_targeted" db:"total_leads_targeted"`
	TotalMessagesSent      int     `json:"total_messages_sent" db:"total_messages_sent"`
	TotalResponsesReceived int     `json:"total_responses_received" db:"total_responses_received"`
	BookingsGenerated      int     `json:"bookings_generated" db:"bookings_generated"`
	TotalCost              float64 `json:"total_cost" db:"total_cost"`
	ResponseRatePercent    float64 `json:"response_rate_percent" db:"response_rate_percent"`
	BookingRatePercent     float64 `json:"booking_rate_percent" db:"booking_rate_percent"`
	CreatedAt              string  `json:"created_at" db:"created_at"`
	UpdatedAt              string  `json:"updated_at" db:"updated_at"`
}

// CampaignPayload is the writable part of a Campaign. Metrics are not writable here.
type CampaignPayload struct {
	AccountID        int     `json:"account_id"`
	Name             string  `json:"name" validate:"required,max=160"`
	Description      *string `json:"description"`
	Status           string  `json:"status" validate:"omitempty,oneof=Active Draft Paused Completed Archived Inactive"`
	FirstMessage     *string `json:"first_message"`
	Bump1Message     *string `json:"bump_1_message"`
	Bump2Message     *string `json:"bump_2_message"`
	Bump3Message     *string `json:"bump_3_message"`
	Bump1DelayHours  int     `json:"bump_1_delay_hours" validate:"gte=0"`
	Bump2DelayHours  int     `json:"bump_2_delay_hours" validate:"gte=0"`
	Bump3DelayHours  int     `json:"bump_3_delay_hours" validate:"gte=0"`
	ActiveHoursStart *string `json:"active_hours_start" validate:"omitempty,datetime=15:04"`
	ActiveHoursEnd   *string `json:"active_hours_end" validate:"omitempty,datetime=15:04"`
	DailyLeadLimit   int     `json:"daily_lead_limit" validate:"gte=0"`
}

const (
	CampaignStatusActive    = "Active"
	CampaignStatusDraft     = "Draft"
	CampaignStatusPaused    = "Paused"
	CampaignStatusCompleted = "Completed"
	CampaignStatusArchived  = "Archived"
	CampaignStatusInactive  = "Inactive"
)

// Lead is the canonical, normalised prospect record.
type Lead struct {
	ID                    int     `json:"id" db:"id"`
	AccountID             int     `json:"account_id" db:"account_id"`
	CampaignID            *int    `json:"campaign_id,omitempty" db:"campaign_id"`
	ExternalID            *string `json:"external_id,omitempty" db:"external_id"`
	FirstName             *string `json:"first_name,omitempty" db:"first_name"`
	LastName              *string `json:"last_name,omitempty" db:"last_name"`
	FullName              string  `json:"full_name" db:"full_name"`
	Phone                 *string `json:"phone,omitempty" db:"phone"`
	Email                 *string `json:"email,omitempty" db:"email"`
	ConversionStatus      string  `json:"conversion_status" db:"conversion_status"`
	AutomationStatus      string  `json:"automation_status" db:"automation_status"`
	BookedCallDate        *string `json:"booked_call_date,omitempty" db:"booked_call_date"`
	ManualTakeover        bool    `json:"manual_takeover" db:"manual_takeover"`
	LeadScore             float64 `json:"lead_score" db:"lead_score"`
	MessagesSent          int     `json:"messages_sent" db:"messages_sent"`
	MessagesReceived      int     `json:"messages_received" db:"messages_received"`
	LastMessageSentAt     *string `json:"last_message_sent_at,omitempty" db:"last_message_sent_at"`
	LastMessageReceivedAt *string `json:"last_message_received_at,omitempty" db:"last_message_received_at"`
	Bump1SentAt           *string `json:"bump_1_sent_at,omitempty" db:"bump_1_sent_at"`
	Bump2SentAt           *string `json:"bump_2_sent_at,omitempty" db:"bump_2_sent_at"`
	Bump3SentAt           *string `json:"bump_3_sent_at,omitempty" db:"bump_3_sent_at"`
	Sentiment             *string `json:"sentiment,omitempty" db:"sentiment"`
	Source                *string `json:"source,omitempty" db:"source"`
	CreatedAt             string  `json:"created_at" db:"created_at"`
	UpdatedAt             string  `json:"updated_at" db:"updated_at"`
}

// IsBooked reports whether the conversion status marks a booked call.
func (l Lead) IsBooked() bool {
	return IsBookedStatus(l.ConversionStatus)
}

// IsBookedStatus matches "booked" and "call booked", ignoring case and surrounding space.
func IsBookedStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == "booked" || s == "call booked"
}

// LeadPayload is the writable part of a Lead for manual entry and edits.
type LeadPayload struct {
	AccountID        int     `json:"account_id"`
	CampaignID       *int    `json:"campaign_id"`
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	FullName         string  `json:"full_name"`
	Phone            *string `json:"phone" validate:"required_without=Email"`
	Email            *string `json:"email" validate:"omitempty,email"`
	ConversionStatus string  `json:"conversion_status"`
	BookedCallDate   *string `json:"booked_call_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ManualTakeover   bool    `json:"manual_takeover"`
	Sentiment        *string `json:"sentiment"`
	Source           *string `json:"source"`
}

const (
	AutomationPaused    = "paused"
	AutomationQueued    = "queued"
	AutomationActive    = "active"
	AutomationCompleted = "completed"
	AutomationDND       = "dnd"
)

// AutomationStatusPayload force-overwrites the automation state of a lead.
type AutomationStatusPayload struct {
	AutomationStatus string `json:"automation_status" validate:"required,oneof=paused queued active completed dnd"`
}

// CloseLeadPayload marks a lead terminal. Leads are never deleted.
type CloseLeadPayload struct {
	Outcome string `json:"outcome" validate:"required,oneof=DND Lost"`
}

// Interaction is one immutable message in a lead conversation.
type Interaction struct {
	ID               int     `json:"id" db:"id"`
	AccountID        int     `json:"account_id" db:"account_id"`
	CampaignID       *int    `json:"campaign_id,omitempty" db:"campaign_id"`
	LeadID           int     `json:"lead_id" db:"lead_id"`
	Direction        string  `json:"direction" db:"direction"`
	Content          string  `json:"content" db:"content"`
	Channel          string  `json:"channel" db:"channel"`
	TwilioMessageSID *string `json:"twilio_message_sid,omitempty" db:"twilio_message_sid"`
	AIGenerated      bool    `json:"ai_generated" db:"ai_generated"`
	AIModel          *string `json:"ai_model,omitempty" db:"ai_model"`
	PromptTokens     int     `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens" db:"completion_tokens"`
	Cost             float64 `json:"cost" db:"cost"`
	Sentiment        *string `json:"sentiment,omitempty" db:"sentiment"`
	BumpNumber       *int    `json:"bump_number,omitempty" db:"bump_number"`
	CreatedBy        *int    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt        string  `json:"created_at" db:"created_at"`
}

// InteractionPayload is accepted when appending to a conversation.
type InteractionPayload struct {
	LeadID           int     `json:"lead_id" validate:"required,gt=0"`
	Direction        string  `json:"direction" validate:"required,oneof=Inbound Outbound"`
	Content          string  `json:"content" validate:"required"`
	Channel          string  `json:"channel" validate:"omitempty,oneof=sms whatsapp email"`
	TwilioMessageSID *string `json:"twilio_message_sid"`
	AIGenerated      bool    `json:"ai_generated"`
	AIModel          *string `json:"ai_model"`
	PromptTokens     int     `json:"prompt_tokens" validate:"gte=0"`
	CompletionTokens int     `json:"completion_tokens" validate:"gte=0"`
	Cost             float64 `json:"cost" validate:"gte=0"`
	Sentiment        *string `json:"sentiment"`
	BumpNumber       *int    `json:"bump_number" validate:"omitempty,min=1,max=3"`
}

const (
	DirectionInbound  = "Inbound"
	DirectionOutbound = "Outbound"
)

// Tag is an account-scoped label.
type Tag struct {
	ID          int     `json:"id" db:"id"`
	AccountID   int     `json:"account_id" db:"account_id"`
	Name        string  `json:"name" db:"name"`
	Color       *string `json:"color,omitempty" db:"color"`
	AutoApplied bool    `json:"auto_applied" db:"auto_applied"`
	CreatedAt   string  `json:"created_at" db:"created_at"`
}

type TagPayload struct {
	AccountID   int     `json:"account_id"`
	Name        string  `json:"name" validate:"required,max=60"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	AutoApplied bool    `json:"auto_applied"`
}

// LeadScoreSnapshot is a write-once daily score row.
type LeadScoreSnapshot struct {
	ID           int     `json:"id" db:"id"`
	LeadID       int     `json:"lead_id" db:"lead_id"`
	Score        float64 `json:"score" db:"score"`
	SnapshotDate string  `json:"snapshot_date" db:"snapshot_date"`
	CreatedAt    string  `json:"created_at" db:"created_at"`
}

type LeadScorePayload struct {
	Score        float64 `json:"score" validate:"gte=0,lte=100"`
	SnapshotDate string  `json:"snapshot_date" validate:"required,datetime=2006-01-02"`
}

// CampaignMetricsSnapshot is a write-once daily copy of a campaign's counters.
type CampaignMetricsSnapshot struct {
	ID                     int     `json:"id" db:"id"`
	CampaignID             int     `json:"campaign_id" db:"campaign_id"`
	SnapshotDate           string  `json:"snapshot_date" db:"snapshot_date" validate:"required,datetime=2006-01-02"`
	TotalLeadsTargeted     int     `json:"total_leads_targeted" db:"total_leads_targeted" validate:"gte=0"`
	TotalMessagesSent      int     `json:"total_messages_sent" db:"total_messages_sent" validate:"gte=0"`
	TotalResponsesReceived int     `json:"total_responses_received" db:"total_responses_received" validate:"gte=0"`
	BookingsGenerated      int     `json:"bookings_generated" db:"bookings_generated" validate:"gte=0"`
	TotalCost              float64 `json:"total_cost" db:"total_cost" validate:"gte=0"`
	ResponseRatePercent    float64 `json:"response_rate_percent" db:"response_rate_percent"`
	BookingRatePercent     float64 `json:"booking_rate_percent" db:"booking_rate_percent"`
	CreatedAt              string  `json:"created_at" db:"created_at"`
}

// User represents a user in the system.
type User struct {
	ID           int    `json:"id" db:"id"`
	AccountID    int    `json:"account_id" db:"account_id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"full_name" db:"full_name"`
	Role         string `json:"role" db:"role"`
	Status       string `json:"status" db:"status"`
	CreatedAt    string `json:"created_at" db:"created_at"`
	UpdatedAt    string `json:"updated_at" db:"updated_at"`
}

// UserRegistrationPayload for incoming registration requests.
type UserRegistrationPayload struct {
	Username  string `json:"username" validate:"required,min=3,max=40"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FullName  string `json:"full_name"`
	AccountID int    `json:"account_id"`
	Role      string `json:"role" validate:"omitempty,oneof=Admin Manager Agent Viewer"`
}

// UserLoginPayload for incoming login requests.
type UserLoginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfilePayload edits the caller's own profile.
type ProfilePayload struct {
	Email           string `json:"email" validate:"required,email"`
	FullName        string `json:"full_name"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"omitempty,min=8"`
}

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type RolePayload struct {
	Role   string `json:"role" validate:"required,oneof=Admin Manager Agent Viewer"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// DashboardStats summarises one account for the dashboard header.
type DashboardStats struct {
	TotalLeads      int `json:"total_leads"`
	ActiveCampaigns int `json:"active_campaigns"`
	BookedCalls     int `json:"booked_calls"`
	TakeoverLeads   int `json:"takeover_leads"`
	MessagesToday   int `json:"messages_today"`
	DNDLeads        int `json:"dnd_leads"`
}

// PipelineStage is one conversion-status bucket of the funnel.
type PipelineStage struct {
	Stage string `json:"stage" db:"stage"`
	Count int    `json:"count" db:"count"`
	Color string `json:"color"`
}

type contextKey string

const (
	UserIDContextKey    contextKey = "userID"
	RoleContextKey      contextKey = "role"
	AccountIDContextKey contextKey = "accountID"
	RequestIDContextKey contextKey = "requestID"
)

const (
	DefaultAccountStatus = AccountStatusActive
	DefaultTimezone      = "UTC"
	DefaultHoursStart    = "09:00"
	DefaultHoursEnd      = "17:00"
	DefaultChannel       = "sms"
	DefaultRole          = "Viewer"
)

const StartupText = `
 _                   _  _                    _
| |    ___  __ _  __| |/ \__      ____ _| | _____ _ __
| |   / _ \/ _' |/ _' / _ \ \ /\ / / _' | |/ / _ \ '__|
| |__|  __/ (_| | (_| / ___ \ V  V / (_| |   <  __/ |
|_____\___|\__,_|\__,_/_/   \_\_/\_/ \__,_|_|\_\___|_|
`
