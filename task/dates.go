package task

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for due dates.
const DateLayout = "2006-01-02"

// looseDateLayouts are accepted when reading dates from stored snapshots or
// model replies.
var looseDateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

func parseDate(value string) (time.Time, bool) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// ParseDueDate parses a due date leniently. ok is false for blank or
// unparseable values.
func ParseDueDate(value string) (date time.Time, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range looseDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// NormalizeDueDate reduces any parseable date to YYYY-MM-DD. Unparseable
// values become "".
func NormalizeDueDate(value string) string {
	parsed, ok := ParseDueDate(value)
	if !ok {
		return ""
	}
	return parsed.Format(DateLayout)
}

// Today returns now as a YYYY-MM-DD string in now's location.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

func toMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}
