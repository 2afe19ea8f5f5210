// Package ingest is the single boundary where loosely typed upstream records
// become canonical models. Everything past this package reads typed fields only.
package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one decoded JSON object as received from the upstream API or an intake webhook.
type Record map[string]any

var (
	nameKeys       = []string{"full_name", "full_name_1", "fullName", "name", "Name"}
	firstNameKeys  = []string{"first_name", "firstName", "First_Name"}
	lastNameKeys   = []string{"last_name", "lastName", "Last_Name"}
	phoneKeys      = []string{"phone", "phone_number", "phoneNumber", "Phone"}
	emailKeys      = []string{"email", "Email"}
	idKeys         = []string{"id", "Id", "ID"}
	scoreKeys      = []string{"lead_score", "leadScore", "Lead_Score"}
	conversionKeys = []string{"conversion_status", "Conversion_Status", "conversionStatus"}
	bookedDateKeys = []string{"booked_call_date", "bookedCallDate"}
	takeoverKeys   = []string{"manual_takeover", "manualTakeover"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveLeadName picks the display name of a lead. The result is never empty
// when the record carries an id.
func ResolveLeadName(r Record) string {
	if name := r.firstString(nameKeys...); name != "" {
		return name
	}
	joined := strings.TrimSpace(r.firstString(firstNameKeys...) + " " + r.firstString(lastNameKeys...))
	if joined != "" {
		return joined
	}
	if phone := r.firstString(phoneKeys...); phone != "" {
		return phone
	}
	if email := r.firstString(emailKeys...); email != "" {
		return email
	}
	if id := r.firstString(idKeys...); id != "" {
		return "Lead #" + id
	}
	return ""
}

// ResolveLeadScore returns the first present score alias as a finite number, or 0.
func ResolveLeadScore(r Record) float64 {
	v, ok := r.first(scoreKeys...)
	if !ok {
		return 0
	}
	return ToNumber(v)
}

func IsBooked(r Record) bool {
	status := r.firstString(conversionKeys...)
	s := strings.ToLower(status)
	return s == "booked" || s == "call booked"
}

// ResolveBookedDate parses the booked call date. ok is false when the field is
// missing or not a recognised timestamp.
func ResolveBookedDate(r Record) (time.Time, bool) {
	raw := r.firstString(bookedDateKeys...)
	if raw == "" {
		return time.Time{}, false
	}
	return ParseTime(raw)
}

func IsTakeoverFlagged(r Record) bool {
	v, ok := r.first(takeoverKeys...)
	if !ok {
		return false
	}
	return ToBool(v)
}

// ParseTime accepts the timestamp layouts seen from upstream.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToNumber coerces JSON scalars to a finite float64. Anything else is 0.
func ToNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		f, _ = n.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if n {
			f = 1
		}
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func ToBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "y", "on":
			return true
		}
		return false
	case nil:
		return false
	default:
		return ToNumber(v) != 0
	}
}

// first returns the value of the first key present with a non-nil value.
func (r Record) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// blank reports a key sent explicitly as null or an empty string.
func (r Record) blank(keys ...string) bool {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		if v == nil {
			return true
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return true
		}
	}
	return false
}

// firstString returns the first key whose value renders to a non-blank string.
func (r Record) firstString(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(stringify(v)); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == math.Trunc(s) && !math.IsInf(s, 0) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool, int, int64:
		return fmt.Sprint(s)
	default:
		return ""
	}
}
