package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveLeadName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Record
		want string
	}{
		{"full name wins", Record{"full_name": "Ada Lovelace", "first_name": "X", "phone": "+1"}, "Ada Lovelace"},
		{"alias full_name_1", Record{"full_name_1": "Grace Hopper"}, "Grace Hopper"},
		{"camel fullName", Record{"fullName": "Alan Turing"}, "Alan Turing"},
		{"blank full name skipped", Record{"full_name": "  ", "name": "Linus"}, "Linus"},
		{"first and last joined", Record{"first_name": "A", "last_name": "B"}, "A B"},
		{"only first name", Record{"firstName": "Ken"}, "Ken"},
		{"phone fallback", Record{"phone": "+15551234"}, "+15551234"},
		{"email fallback", Record{"email": "x@example.com"}, "x@example.com"},
		{"id fallback numeric", Record{"id": float64(42)}, "Lead #42"},
		{"id fallback string", Record{"Id": "abc"}, "Lead #abc"},
		{"nothing at all", Record{}, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ResolveLeadName(tt.in))
		})
	}
}

func TestResolveLeadName_NeverEmptyWithID(t *testing.T) {
	t.Parallel()

	for _, r := range []Record{
		{"id": 1},
		{"id": 2, "full_name": ""},
		{"id": 3, "first_name": " ", "last_name": ""},
		{"id": 4, "phone": nil, "email": ""},
	} {
		require.NotEmpty(t, ResolveLeadName(r))
	}
}

func TestResolveLeadScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Record
		want float64
	}{
		{"snake case preferred", Record{"lead_score": 70, "leadScore": 10, "Lead_Score": 5}, 70},
		{"camel before title", Record{"leadScore": float64(10), "Lead_Score": 5}, 10},
		{"title case", Record{"Lead_Score": "55"}, 55},
		{"numeric string zero", Record{"lead_score": "0"}, 0},
		{"non numeric", Record{"lead_score": "high"}, 0},
		{"missing", Record{}, 0},
		{"null", Record{"lead_score": nil}, 0},
		{"nan", Record{"lead_score": math.NaN()}, 0},
		{"inf string", Record{"lead_score": "Inf"}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ResolveLeadScore(tt.in)
			require.False(t, math.IsNaN(got))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIsBooked(t *testing.T) {
	t.Parallel()

	require.True(t, IsBooked(Record{"conversion_status": "Booked"}))
	require.True(t, IsBooked(Record{"Conversion_Status": "CALL BOOKED"}))
	require.True(t, IsBooked(Record{"conversionStatus": " call booked "}))
	require.False(t, IsBooked(Record{"conversion_status": "Qualified"}))
	require.False(t, IsBooked(Record{"conversion_status": "booked later"}))
	require.False(t, IsBooked(Record{}))
}

func TestResolveBookedDate(t *testing.T) {
	t.Parallel()

	d, ok := ResolveBookedDate(Record{"booked_call_date": "2026-03-04T10:30:00Z"})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC), d)

	d, ok = ResolveBookedDate(Record{"bookedCallDate": "2026-03-04"})
	require.True(t, ok)
	require.Equal(t, 4, d.Day())

	_, ok = ResolveBookedDate(Record{"booked_call_date": "next tuesday"})
	require.False(t, ok)

	_, ok = ResolveBookedDate(Record{})
	require.False(t, ok)
}

func TestIsTakeoverFlagged(t *testing.T) {
	t.Parallel()

	for _, v := range []any{true, "true", "TRUE", "1", "yes", float64(1)} {
		require.True(t, IsTakeoverFlagged(Record{"manual_takeover": v}), "%v", v)
	}
	for _, v := range []any{false, "false", "0", "", nil, float64(0), "nope"} {
		require.False(t, IsTakeoverFlagged(Record{"manualTakeover": v}), "%v", v)
	}
	require.False(t, IsTakeoverFlagged(Record{}))
}
