package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"leadawaker/internal/models"
)

func TestDecodeList_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"data wrapper", `{"data":[{"id":1}]}`, 1},
		{"list wrapper", `{"list":[{"id":1},{"id":2},{"id":3}],"pageInfo":{}}`, 3},
		{"single object", `{"id":9,"full_name":"Solo"}`, 1},
		{"empty body", ``, 0},
		{"empty array", `[]`, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeList([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, got, tt.want)
		})
	}
}

func TestDecodeList_Rejects(t *testing.T) {
	t.Parallel()

	_, err := DecodeList([]byte(`"just a string"`))
	require.ErrorIs(t, err, ErrUnsupportedShape)

	_, err = DecodeList([]byte(`[{"id":1}`))
	require.Error(t, err)
}

func TestNormalizeLead(t *testing.T) {
	t.Parallel()

	recs, err := DecodeList([]byte(`{"list":[{
		"Id": 17,
		"first_name": "Jane",
		"last_name": "Doe",
		"phone": "+3161234",
		"Conversion_Status": "Call Booked",
		"bookedCallDate": "2026-05-01 14:00:00",
		"manualTakeover": "false",
		"Lead_Score": "88",
		"automation_status": "ACTIVE",
		"messages_sent": "4",
		"Campaigns_id": 3
	}]}`))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	lead := NormalizeLead(recs[0], 5)
	require.Equal(t, 5, lead.AccountID)
	require.Equal(t, "Jane Doe", lead.FullName)
	require.Equal(t, "17", *lead.ExternalID)
	require.True(t, lead.IsBooked())
	require.Equal(t, "2026-05-01T14:00:00Z", *lead.BookedCallDate)
	require.False(t, lead.ManualTakeover)
	require.Equal(t, 88.0, lead.LeadScore)
	require.Equal(t, models.AutomationActive, lead.AutomationStatus)
	require.Equal(t, 4, lead.MessagesSent)
	require.NotNil(t, lead.CampaignID)
	require.Equal(t, 3, *lead.CampaignID)
}

func TestNormalizeLead_Defaults(t *testing.T) {
	t.Parallel()

	lead := NormalizeLead(Record{"id": "x1", "lead_score": 250, "booked_call_date": "garbage"}, 1)
	require.Equal(t, "Lead #x1", lead.FullName)
	require.Equal(t, "New", lead.ConversionStatus)
	require.Equal(t, models.AutomationQueued, lead.AutomationStatus)
	require.Equal(t, 100.0, lead.LeadScore)
	require.Nil(t, lead.BookedCallDate)
	require.Nil(t, lead.CampaignID)
}

func TestPresentLeadColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  Record
		want LeadColumns
	}{
		{"id only", Record{"id": "x1"}, nil},
		{"email only", Record{"id": "x1", "email": "bob@example.com"}, LeadColumns{"email"}},
		{
			"engine fields",
			Record{"id": "x1", "Conversion_Status": "Booked", "leadScore": 0, "manual_takeover": false, "automationStatus": "active"},
			LeadColumns{"conversion_status", "automation_status", "manual_takeover", "lead_score"},
		},
		{"first name drives full name", Record{"first_name": "Ann"}, LeadColumns{"first_name", "full_name"}},
		{"explicit null clears booking", Record{"booked_call_date": nil}, LeadColumns{"booked_call_date"}},
		{"unparseable booking is ignored", Record{"booked_call_date": "garbage"}, nil},
		{"blank strings are absent", Record{"email": "  ", "sentiment": ""}, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PresentLeadColumns(tt.rec))
		})
	}

	cols := LeadColumns{"email", "campaign_id", "phone"}.Without("campaign_id")
	require.Equal(t, LeadColumns{"email", "phone"}, cols)
}

func TestNormalizeCampaign_StringMetrics(t *testing.T) {
	t.Parallel()

	c := NormalizeCampaign(Record{
		"id":                       "8",
		"status":                   "paused",
		"total_leads_targeted":     "0",
		"total_messages_sent":      "0",
		"total_responses_received": "0",
		"bookings_generated":       "0",
		"total_cost":               "0",
		"response_rate_percent":    "0",
		"booking_rate_percent":     "0",
	}, 2)
	require.Equal(t, "Campaign #8", c.Name)
	require.Equal(t, models.CampaignStatusPaused, c.Status)
	require.Zero(t, c.TotalLeadsTargeted)
	require.Zero(t, c.TotalCost)
}

func TestNormalizeCampaignSnapshot(t *testing.T) {
	t.Parallel()

	s := NormalizeCampaignSnapshot(Record{
		"date":               "2026-02-10T00:00:00Z",
		"totalMessagesSent":  "120",
		"bookings_generated": 3,
		"total_cost":         "4.25",
	}, 11)
	require.Equal(t, 11, s.CampaignID)
	require.Equal(t, "2026-02-10", s.SnapshotDate)
	require.Equal(t, 120, s.TotalMessagesSent)
	require.Equal(t, 3, s.BookingsGenerated)
	require.InDelta(t, 4.25, s.TotalCost, 1e-9)
}
