package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leadawaker/internal/models"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func booked(id int, at string) models.Lead {
	return models.Lead{ID: id, FullName: "lead", ConversionStatus: "Booked", BookedCallDate: &at}
}

func TestClassifyUrgency(t *testing.T) {
	t.Parallel()

	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}
	tests := []struct {
		name string
		d    *time.Time
		want Urgency
	}{
		{"nil date", nil, UrgencyInfo},
		{"past", at(-30 * time.Minute), UrgencyNow},
		{"within two hours", at(90 * time.Minute), UrgencyNow},
		{"exactly two hours", at(2 * time.Hour), UrgencyNow},
		{"later today", at(5 * time.Hour), UrgencyToday},
		{"tomorrow", at(24 * time.Hour), UrgencyWeek},
		{"next week", at(6 * 24 * time.Hour), UrgencyWeek},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ClassifyUrgency(tt.d, now))
		})
	}
}

func TestBuild_WindowAndOrdering(t *testing.T) {
	t.Parallel()

	leads := []models.Lead{
		booked(1, "2026-03-13T09:00:00Z"),
		booked(2, "2026-03-10T20:00:00Z"),
		booked(3, "2026-03-10T13:00:00Z"),
		booked(4, "2026-03-09T23:59:00Z"),
		booked(5, "2026-03-17T23:00:00Z"),
		booked(6, "2026-03-18T00:30:00Z"),
		booked(7, "2026-03-10T08:00:00Z"),
		booked(8, "not a date"),
	}

	got := Build(leads, now)

	var ids []int
	for _, it := range got.UpcomingCalls {
		ids = append(ids, it.LeadID)
		require.Equal(t, KindUpcomingCall, it.Kind)
	}
	require.Equal(t, []int{7, 3, 2, 1, 5}, ids)

	require.Equal(t, UrgencyNow, got.UpcomingCalls[0].Urgency)
	require.Equal(t, UrgencyNow, got.UpcomingCalls[1].Urgency)
	require.Equal(t, UrgencyToday, got.UpcomingCalls[2].Urgency)
	require.Equal(t, UrgencyWeek, got.UpcomingCalls[3].Urgency)
	require.Empty(t, got.TakeoverLeads)
}

func TestBuild_TakeoverExcludesBooked(t *testing.T) {
	t.Parallel()

	both := booked(1, "2026-03-11T10:00:00Z")
	both.ManualTakeover = true
	leads := []models.Lead{
		both,
		{ID: 2, FullName: "b", ConversionStatus: "Responded", ManualTakeover: true},
		{ID: 3, FullName: "c", ConversionStatus: "New"},
		{ID: 4, FullName: "d", ConversionStatus: "Qualified", ManualTakeover: true},
	}

	got := Build(leads, now)

	require.Len(t, got.UpcomingCalls, 1)
	require.Equal(t, 1, got.UpcomingCalls[0].LeadID)
	require.Len(t, got.TakeoverLeads, 2)
	require.Equal(t, 2, got.TakeoverLeads[0].LeadID)
	require.Equal(t, 4, got.TakeoverLeads[1].LeadID)
	for _, it := range got.TakeoverLeads {
		require.Equal(t, UrgencyNow, it.Urgency)
		require.Nil(t, it.Date)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	t.Parallel()

	got := Build(nil, now)
	require.NotNil(t, got.UpcomingCalls)
	require.NotNil(t, got.TakeoverLeads)
	require.Empty(t, got.UpcomingCalls)
}
