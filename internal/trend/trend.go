// Package trend turns daily metric snapshots into a current value and a
// percentage change against the first half of the series.
package trend

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"leadawaker/internal/models"
)

type Field string

const (
	FieldLeadsTargeted Field = "total_leads_targeted"
	FieldMessagesSent  Field = "total_messages_sent"
	FieldResponses     Field = "total_responses_received"
	FieldBookings      Field = "bookings_generated"
	FieldCost          Field = "total_cost"
	FieldResponseRate  Field = "response_rate_percent"
	FieldBookingRate   Field = "booking_rate_percent"
)

var fields = map[Field]func(models.CampaignMetricsSnapshot) float64{
	FieldLeadsTargeted: func(s models.CampaignMetricsSnapshot) float64 { return float64(s.TotalLeadsTargeted) },
	FieldMessagesSent:  func(s models.CampaignMetricsSnapshot) float64 { return float64(s.TotalMessagesSent) },
	FieldResponses:     func(s models.CampaignMetricsSnapshot) float64 { return float64(s.TotalResponsesReceived) },
	FieldBookings:      func(s models.CampaignMetricsSnapshot) float64 { return float64(s.BookingsGenerated) },
	FieldCost:          func(s models.CampaignMetricsSnapshot) float64 { return s.TotalCost },
	FieldResponseRate:  func(s models.CampaignMetricsSnapshot) float64 { return s.ResponseRatePercent },
	FieldBookingRate:   func(s models.CampaignMetricsSnapshot) float64 { return s.BookingRatePercent },
}

// ParseField validates a field name coming from a query string.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if _, ok := fields[f]; !ok {
		return "", fmt.Errorf("unknown metric field %q", s)
	}
	return f, nil
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Result is the view-ready summary of one series. Trend is nil when there is
// not enough history or the baseline is zero.
type Result struct {
	Field     Field     `json:"field,omitempty"`
	Current   float64   `json:"current"`
	Trend     *int      `json:"trend"`
	Direction Direction `json:"direction"`
	Points    int       `json:"points"`
}

// Compute summarises the selected field over snapshots ordered oldest first.
func Compute(snapshots []models.CampaignMetricsSnapshot, field Field) Result {
	get, ok := fields[field]
	if !ok {
		return Result{Field: field, Direction: Flat}
	}
	values := make([]float64, len(snapshots))
	for i, s := range snapshots {
		values[i] = get(s)
	}
	r := Of(values)
	r.Field = field
	return r
}

// Of is Compute over a bare series.
func Of(values []float64) Result {
	r := Result{Direction: Flat, Points: len(values)}
	n := len(values)
	if n == 0 {
		return r
	}
	r.Current = finite(values[n-1])
	if n < 2 {
		return r
	}

	half := n / 2
	var sum float64
	for _, v := range values[:half] {
		sum += finite(v)
	}
	baseline := sum / float64(half)
	if baseline == 0 {
		return r
	}

	pct := int(math.Round((r.Current - baseline) / baseline * 100))
	r.Trend = &pct
	switch {
	case pct > 0:
		r.Direction = Up
	case pct < 0:
		r.Direction = Down
	}
	return r
}

// Totals is the additive fold of a snapshot series.
type Totals struct {
	LeadsTargeted     int             `json:"total_leads_targeted"`
	MessagesSent      int             `json:"total_messages_sent"`
	ResponsesReceived int             `json:"total_responses_received"`
	BookingsGenerated int             `json:"bookings_generated"`
	Cost              decimal.Decimal `json:"total_cost"`
	Snapshots         int             `json:"snapshots"`
}

func Sum(snapshots []models.CampaignMetricsSnapshot) Totals {
	t := Totals{Cost: decimal.Zero, Snapshots: len(snapshots)}
	for _, s := range snapshots {
		t.LeadsTargeted += s.TotalLeadsTargeted
		t.MessagesSent += s.TotalMessagesSent
		t.ResponsesReceived += s.TotalResponsesReceived
		t.BookingsGenerated += s.BookingsGenerated
		t.Cost = t.Cost.Add(decimal.NewFromFloat(finite(s.TotalCost)))
	}
	return t
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
