package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar form accepted for exercise dates and log bounds.
const DateLayout = "2006-01-02"

// CalendarDay truncates t to midnight UTC of its UTC day.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar day written in the input, at midnight UTC. A timestamp's offset
// does not move it to another day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, validationError("date %q must be formatted as YYYY-MM-DD", raw)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
