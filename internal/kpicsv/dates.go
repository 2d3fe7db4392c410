package kpicsv

import (
	"strings"
	"time"
)

// Accepted date layouts, tried in order. Spreadsheet exports are not
// consistent about this, so the set is generous.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseDate attempts to parse a date-like cell.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate collapses every parseable date spelling to ISO yyyy-mm-dd so
// that two rows naming the same calendar day share one ValueRecord key.
// Unparseable cells keep their trimmed raw text as the key.
func NormalizeDate(s string) string {
	if t, ok := ParseDate(s); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(s)
}
