package desk

import (
	"fmt"
	"time"
)

// APIDateLayout is the ISO-8601 layout desk expects for timestamps
const APIDateLayout = "2006-01-02T15:04:05Z07:00"

// localDateLayout matches desk timestamps sent without a zone offset
const localDateLayout = "2006-01-02T15:04:05"

// FormatDateForAPI renders t in UTC using the layout desk expects
func FormatDateForAPI(t time.Time) string {
	return t.UTC().Format(APIDateLayout)
}

// ParseAPIDate parses an ISO-8601 timestamp returned by desk, keeping its
// offset. Timestamps without an offset are read as UTC.
func ParseAPIDate(s string) (time.Time, error) {
	t, err := time.Parse(APIDateLayout, s)
	if err == nil {
		return t, nil
	}
	if t, localErr := time.Parse(localDateLayout, s); localErr == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid desk date %q: %w", s, err)
}
