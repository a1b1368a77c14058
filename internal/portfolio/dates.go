package portfolio

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01",
	"2006",
}

// ParseDate accepts full dates, year-month, bare years and RFC 3339 stamps.
// Results are in UTC so ordering by instant and grouping by year agree.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatRange renders "Jan 2022 - May 2023", or "Jan 2022 - Present" for
// current entries and entries without an end date.
func FormatRange(start, end string, current bool) string {
	from := formatMonth(start)
	if current || strings.TrimSpace(end) == "" {
		return from + " - Present"
	}
	return from + " - " + formatMonth(end)
}

func formatMonth(s string) string {
	if t, ok := ParseDate(s); ok {
		return t.Format("Jan 2006")
	}
	return s
}
