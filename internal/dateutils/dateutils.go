// Package dateutils centralizes date parsing and formatting so every
// component shares the same accepted layouts and the same output format.
package dateutils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ISO is the canonical output layout for transaction dates.
const ISO = "2006-01-02"

// layouts lists the input formats seen across bank statements, tried in order.
var layouts = []string{
	ISO,
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	"01/02/2006",
	"2 January 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

var isoPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// datePattern matches date tokens inside free text for range detection.
var datePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}[./-]\d{1,2}[./-]\d{4})\b`)

// ParseDate attempts to parse a date string using the known layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// IsISODate reports whether s is a well-formed calendar date in ISO 8601
// form. The regexp gate alone would accept 2024-02-31, so time.Parse has
// the final word.
func IsISODate(s string) bool {
	if !isoPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(ISO, s)
	return err == nil
}

// FormatISO renders t in the canonical transaction date format.
func FormatISO(t time.Time) string {
	return t.Format(ISO)
}

// DetectDateRange scans free text for date tokens and returns the earliest
// and latest parseable dates. ok is false when no date could be found.
func DetectDateRange(text string) (start, end time.Time, ok bool) {
	matches := datePattern.FindAllString(text, -1)
	var dates []time.Time
	for _, m := range matches {
		if t, err := ParseDate(m); err == nil {
			dates = append(dates, t)
		}
	}
	if len(dates) == 0 {
		return time.Time{}, time.Time{}, false
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates[0], dates[len(dates)-1], true
}
