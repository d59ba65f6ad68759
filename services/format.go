package services

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// displayDateLayouts are the stored date shapes FormatDisplayDate accepts.
var displayDateLayouts = []string{
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339,
	"2006-01-02",
	"02 Jan 2006",
	"2 January 2006",
}

// FormatDisplayDate normalizes a stored date to "02 Jan 2006". Values that
// do not parse are returned trimmed but otherwise unchanged.
func FormatDisplayDate(raw string) string {
	if t, ok := parseStoredDate(raw); ok {
		return t.Format("02 Jan 2006")
	}
	return strings.TrimSpace(raw)
}

// FormatInputDate converts a stored date to the "2006-01-02" form a date
// input expects, or "" when it does not parse.
func FormatInputDate(raw string) string {
	if t, ok := parseStoredDate(raw); ok {
		return t.Format(time.DateOnly)
	}
	return ""
}

func parseStoredDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range displayDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatRelative renders t relative to now, e.g. "3 days ago". The zero
// time renders as "".
func FormatRelative(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
