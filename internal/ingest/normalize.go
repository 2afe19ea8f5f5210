package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadawaker/internal/models"
)

var ErrUnsupportedShape = errors.New("unsupported list shape")

// DecodeList accepts a bare array, {"data": [...]}, {"list": [...]} or a single object.
func DecodeList(body []byte) ([]Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	switch body[0] {
	case '[':
		var list []Record
		if err := dec.Decode(&list); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return list, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		for _, key := range []string{"data", "list"} {
			if raw, ok := obj[key]; ok {
				return DecodeList(raw)
			}
		}
		var single Record
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		return []Record{single}, nil
	}
	return nil, ErrUnsupportedShape
}

// NormalizeLead maps a raw record to a canonical Lead for the given account.
func NormalizeLead(r Record, accountID int) models.Lead {
	now := time.Now().UTC().Format(time.RFC3339)
	lead := models.Lead{
		AccountID:             accountID,
		FullName:              ResolveLeadName(r),
		FirstName:             optString(r, firstNameKeys...),
		LastName:              optString(r, lastNameKeys...),
		Phone:                 optString(r, phoneKeys...),
		Email:                 optString(r, emailKeys...),
		ExternalID:            optString(r, idKeys...),
		ConversionStatus:      r.firstString(conversionKeys...),
		AutomationStatus:      normalizeAutomation(r.firstString("automation_status", "automationStatus", "Automation_Status")),
		ManualTakeover:        IsTakeoverFlagged(r),
		LeadScore:             clampScore(ResolveLeadScore(r)),
		MessagesSent:          intField(r, "messages_sent", "messagesSent", "Messages_Sent"),
		MessagesReceived:      intField(r, "messages_received", "messagesReceived", "Messages_Received"),
		LastMessageSentAt:     optTime(r, "last_message_sent_at", "lastMessageSentAt"),
		LastMessageReceivedAt: optTime(r, "last_message_received_at", "lastMessageReceivedAt"),
		Bump1SentAt:           optTime(r, "bump_1_sent_at", "bump1SentAt"),
		Bump2SentAt:           optTime(r, "bump_2_sent_at", "bump2SentAt"),
		Bump3SentAt:           optTime(r, "bump_3_sent_at", "bump3SentAt"),
		Sentiment:             optString(r, "sentiment", "Sentiment"),
		Source:                optString(r, "source", "Source"),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if lead.ConversionStatus == "" {
		lead.ConversionStatus = "New"
	}
	if d, ok := ResolveBookedDate(r); ok {
		s := d.UTC().Format(time.RFC3339)
		lead.BookedCallDate = &s
	}
	if v, ok := r.first("campaign_id", "campaignId", "Campaigns_id"); ok {
		if id := int(ToNumber(v)); id > 0 {
			lead.CampaignID = &id
		}
	}
	return lead
}

// LeadColumns names the leads columns a record actually carried.
type LeadColumns []string

// Without drops one column, for a field the caller could not resolve.
func (c LeadColumns) Without(name string) LeadColumns {
	out := make(LeadColumns, 0, len(c))
	for _, col := range c {
		if col != name {
			out = append(out, col)
		}
	}
	return out
}

// PresentLeadColumns lists the columns NormalizeLead filled from the record rather
// than from a default. Re-ingesting a known lead writes only these.
func PresentLeadColumns(r Record) LeadColumns {
	var cols LeadColumns
	add := func(col string, present bool) {
		if present {
			cols = append(cols, col)
		}
	}
	hasString := func(keys ...string) bool { return r.firstString(keys...) != "" }
	hasValue := func(keys ...string) bool { _, ok := r.first(keys...); return ok }
	hasTime := func(keys ...string) bool { _, ok := ParseTime(r.firstString(keys...)); return ok }

	add("first_name", hasString(firstNameKeys...))
	add("last_name", hasString(lastNameKeys...))
	add("full_name", hasString(nameKeys...) || hasString(firstNameKeys...) || hasString(lastNameKeys...))
	add("phone", hasString(phoneKeys...))
	add("email", hasString(emailKeys...))
	add("campaign_id", hasValue("campaign_id", "campaignId", "Campaigns_id"))
	add("conversion_status", hasString(conversionKeys...))
	add("automation_status", hasString("automation_status", "automationStatus", "Automation_Status"))
	_, booked := ResolveBookedDate(r)
	add("booked_call_date", booked || r.blank(bookedDateKeys...))
	add("manual_takeover", hasValue(takeoverKeys...))
	add("lead_score", hasValue(scoreKeys...))
	add("messages_sent", hasValue("messages_sent", "messagesSent", "Messages_Sent"))
	add("messages_received", hasValue("messages_received", "messagesReceived", "Messages_Received"))
	add("last_message_sent_at", hasTime("last_message_sent_at", "lastMessageSentAt"))
	add("last_message_received_at", hasTime("last_message_received_at", "lastMessageReceivedAt"))
	add("bump_1_sent_at", hasTime("bump_1_sent_at", "bump1SentAt"))
	add("bump_2_sent_at", hasTime("bump_2_sent_at", "bump2SentAt"))
	add("bump_3_sent_at", hasTime("bump_3_sent_at", "bump3SentAt"))
	add("sentiment", hasString("sentiment", "Sentiment"))
	add("source", hasString("source", "Source"))
	return cols
}

// NormalizeCampaign maps a raw campaign record. Metric fields sent as strings are coerced.
func NormalizeCampaign(r Record, accountID int) models.Campaign {
	now := time.Now().UTC().Format(time.RFC3339)
	c := models.Campaign{
		AccountID:              accountID,
		ExternalID:             optString(r, idKeys...),
		Name:                   r.firstString("name", "Name", "campaign_name"),
		Description:            optString(r, "description", "Description"),
		Status:                 normalizeCampaignStatus(r.firstString("status", "Status")),
		FirstMessage:           optString(r, "first_message", "First_Message", "firstMessage"),
		Bump1Message:           optString(r, "bump_1_message", "bump1Message"),
		Bump2Message:           optString(r, "bump_2_message", "bump2Message"),
		Bump3Message:           optString(r, "bump_3_message", "bump3Message"),
		Bump1DelayHours:        intField(r, "bump_1_delay_hours", "bump1DelayHours"),
		Bump2DelayHours:        intField(r, "bump_2_delay_hours", "bump2DelayHours"),
		Bump3DelayHours:        intField(r, "bump_3_delay_hours", "bump3DelayHours"),
		DailyLeadLimit:         intField(r, "daily_lead_limit", "dailyLeadLimit"),
		TotalLeadsTargeted:     intField(r, "total_leads_targeted", "totalLeadsTargeted"),
		TotalMessagesSent:      intField(r, "total_messages_sent", "totalMessagesSent"),
		TotalResponsesReceived: intField(r, "total_responses_received", "totalResponsesReceived"),
		BookingsGenerated:      intField(r, "bookings_generated", "bookingsGenerated"),
		TotalCost:              numField(r, "total_cost", "totalCost"),
		ResponseRatePercent:    numField(r, "response_rate_percent", "responseRatePercent"),
		BookingRatePercent:     numField(r, "booking_rate_percent", "bookingRatePercent"),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if c.Name == "" {
		if id := r.firstString(idKeys...); id != "" {
			c.Name = "Campaign #" + id
		}
	}
	return c
}

// NormalizeCampaignSnapshot maps one metrics history row.
func NormalizeCampaignSnapshot(r Record, campaignID int) models.CampaignMetricsSnapshot {
	s := models.CampaignMetricsSnapshot{
		CampaignID:             campaignID,
		TotalLeadsTargeted:     intField(r, "total_leads_targeted", "totalLeadsTargeted"),
		TotalMessagesSent:      intField(r, "total_messages_sent", "totalMessagesSent"),
		TotalResponsesReceived: intField(r, "total_responses_received", "totalResponsesReceived"),
		BookingsGenerated:      intField(r, "bookings_generated", "bookingsGenerated"),
		TotalCost:              numField(r, "total_cost", "totalCost"),
		ResponseRatePercent:    numField(r, "response_rate_percent", "responseRatePercent"),
		BookingRatePercent:     numField(r, "booking_rate_percent", "bookingRatePercent"),
	}
	if d, ok := ParseTime(r.firstString("snapshot_date", "snapshotDate", "date")); ok {
		s.SnapshotDate = d.Format("2006-01-02")
	}
	return s
}

func normalizeAutomation(s string) string {
	switch v := strings.ToLower(s); v {
	case models.AutomationPaused, models.AutomationQueued, models.AutomationActive,
		models.AutomationCompleted, models.AutomationDND:
		return v
	}
	return models.AutomationQueued
}

func normalizeCampaignStatus(s string) string {
	for _, known := range []string{
		models.CampaignStatusActive, models.CampaignStatusDraft, models.CampaignStatusPaused,
		models.CampaignStatusCompleted, models.CampaignStatusArchived, models.CampaignStatusInactive,
	} {
		if strings.EqualFold(s, known) {
			return known
		}
	}
	return models.CampaignStatusDraft
}

func clampScore(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

func optString(r Record, keys ...string) *string {
	if s := r.firstString(keys...); s != "" {
		return &s
	}
	return nil
}

func optTime(r Record, keys ...string) *string {
	t, ok := ParseTime(r.firstString(keys...))
	if !ok {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func numField(r Record, keys ...string) float64 {
	v, ok := r.first(keys...)
	if !ok {
		return 0
	}
	return ToNumber(v)
}

func intField(r Record, keys ...string) int {
	return int(numField(r, keys...))
}
