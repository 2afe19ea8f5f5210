package trend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"leadawaker/internal/ingest"
	"leadawaker/internal/models"
)

func sent(values ...int) []models.CampaignMetricsSnapshot {
	out := make([]models.CampaignMetricsSnapshot, len(values))
	for i, v := range values {
		out[i] = models.CampaignMetricsSnapshot{TotalMessagesSent: v}
	}
	return out
}

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		values  []int
		current float64
		trend   *int
		dir     Direction
	}{
		{"empty", nil, 0, nil, Flat},
		{"single snapshot", []int{7}, 7, nil, Flat},
		{"doubling", []int{10, 10, 20}, 20, intp(100), Up},
		{"zero baseline", []int{0, 0, 5, 9}, 9, nil, Flat},
		{"decline", []int{20, 20, 10, 10}, 10, intp(-50), Down},
		{"unchanged", []int{4, 4}, 4, intp(0), Flat},
		{"rounding", []int{3, 4}, 4, intp(33), Up},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Compute(sent(tt.values...), FieldMessagesSent)
			require.Equal(t, tt.current, got.Current)
			require.Equal(t, tt.trend, got.Trend)
			require.Equal(t, tt.dir, got.Direction)
			require.Equal(t, FieldMessagesSent, got.Field)
		})
	}
}

func TestCompute_StringZeroMetricsFromUpstream(t *testing.T) {
	t.Parallel()

	rec := ingest.Record{
		"total_messages_sent":  "0",
		"total_cost":           "0",
		"bookings_generated":   "0",
		"booking_rate_percent": "0",
	}
	snaps := []models.CampaignMetricsSnapshot{
		ingest.NormalizeCampaignSnapshot(rec, 1),
		ingest.NormalizeCampaignSnapshot(rec, 1),
	}
	for f := range fields {
		got := Compute(snaps, f)
		require.Zero(t, got.Current)
		require.Nil(t, got.Trend)
	}
	require.True(t, Sum(snaps).Cost.IsZero())
}

func TestParseField(t *testing.T) {
	t.Parallel()

	f, err := ParseField("bookings_generated")
	require.NoError(t, err)
	require.Equal(t, FieldBookings, f)

	_, err = ParseField("revenue")
	require.Error(t, err)
}

func TestSum(t *testing.T) {
	t.Parallel()

	got := Sum([]models.CampaignMetricsSnapshot{
		{TotalLeadsTargeted: 10, TotalMessagesSent: 30, TotalResponsesReceived: 4, BookingsGenerated: 1, TotalCost: 0.1},
		{TotalLeadsTargeted: 5, TotalMessagesSent: 12, TotalResponsesReceived: 2, BookingsGenerated: 2, TotalCost: 0.2},
	})
	require.Equal(t, 15, got.LeadsTargeted)
	require.Equal(t, 42, got.MessagesSent)
	require.Equal(t, 6, got.ResponsesReceived)
	require.Equal(t, 3, got.BookingsGenerated)
	require.Equal(t, "0.3", got.Cost.String())
	require.Equal(t, 2, got.Snapshots)
}

func intp(v int) *int { return &v }
