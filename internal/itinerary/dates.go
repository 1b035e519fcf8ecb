package itinerary

import (
	"fmt"
	"time"
)

// dateOnlyLayout is the wire format the LLM and tool arguments use for
// date-only fields ("YYYY-MM-DD").
const dateOnlyLayout = "2006-01-02"

// ParseLocalDate parses a date-only or full datetime string.
//
// A bare "YYYY-MM-DD" string is interpreted at local noon rather than UTC
// midnight, so that a one-off timezone conversion downstream never rolls
// the date back to the previous day. A full RFC3339-ish datetime string is
// honored verbatim. This is the single entry point every date field in the
// tool schemas must go through; there must be no other call site that
// parses a date-only string directly.
func ParseLocalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if d, err := time.ParseInLocation(dateOnlyLayout, raw, time.Local); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.Local), nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date/time format: %q", raw)
}

// FormatDate renders a time as a date-only string for display.
func FormatDate(t time.Time) string {
	return t.Format(dateOnlyLayout)
}
