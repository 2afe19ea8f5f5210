// Package agenda projects leads into the two "needs attention" lists shown on
// the dashboard: calls booked for the coming week and leads waiting on a human.
package agenda

import (
	"sort"
	"time"

	"leadawaker/internal/ingest"
	"leadawaker/internal/models"
)

type Urgency string

const (
	UrgencyNow   Urgency = "now"
	UrgencyToday Urgency = "today"
	UrgencyWeek  Urgency = "week"
	UrgencyInfo  Urgency = "info"
)

type Kind string

const (
	KindUpcomingCall Kind = "upcoming_call"
	KindTakeover     Kind = "takeover"
)

// SoonWindow is how far ahead a call still counts as happening now.
const SoonWindow = 2 * time.Hour

type Item struct {
	Kind     Kind       `json:"kind"`
	LeadID   int        `json:"lead_id"`
	LeadName string     `json:"lead_name"`
	Date     *time.Time `json:"date,omitempty"`
	Urgency  Urgency    `json:"urgency"`
}

type Agenda struct {
	UpcomingCalls []Item    `json:"upcoming_calls"`
	TakeoverLeads []Item    `json:"takeover_leads"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ClassifyUrgency buckets a date relative to now. A nil date is informational.
func ClassifyUrgency(d *time.Time, now time.Time) Urgency {
	if d == nil {
		return UrgencyInfo
	}
	if d.Before(now) || d.Sub(now) <= SoonWindow {
		return UrgencyNow
	}
	if sameDay(d.In(now.Location()), now) {
		return UrgencyToday
	}
	return UrgencyWeek
}

// Build computes the agenda for the given leads. Booked leads never appear in
// the takeover list, and calls outside [start of today, end of now+7d] are dropped.
func Build(leads []models.Lead, now time.Time) Agenda {
	todayStart := startOfDay(now)
	weekEnd := startOfDay(now.AddDate(0, 0, 8)).Add(-time.Nanosecond)

	out := Agenda{
		UpcomingCalls: []Item{},
		TakeoverLeads: []Item{},
		GeneratedAt:   now,
	}
	for _, lead := range leads {
		if lead.IsBooked() {
			d, ok := bookedDate(lead)
			if !ok || d.Before(todayStart) || d.After(weekEnd) {
				continue
			}
			out.UpcomingCalls = append(out.UpcomingCalls, Item{
				Kind:     KindUpcomingCall,
				LeadID:   lead.ID,
				LeadName: lead.FullName,
				Date:     &d,
				Urgency:  ClassifyUrgency(&d, now),
			})
			continue
		}
		if lead.ManualTakeover {
			out.TakeoverLeads = append(out.TakeoverLeads, Item{
				Kind:     KindTakeover,
				LeadID:   lead.ID,
				LeadName: lead.FullName,
				Urgency:  UrgencyNow,
			})
		}
	}
	sort.SliceStable(out.UpcomingCalls, func(i, j int) bool {
		return out.UpcomingCalls[i].Date.Before(*out.UpcomingCalls[j].Date)
	})
	return out
}

func bookedDate(lead models.Lead) (time.Time, bool) {
	if lead.BookedCallDate == nil {
		return time.Time{}, false
	}
	return ingest.ParseTime(*lead.BookedCallDate)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
