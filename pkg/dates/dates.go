// Package dates normalizes milestone dates to calendar days.
//
// A milestone date is a calendar day, not an instant: whatever form the
// caller writes it in, the stored value is UTC midnight of the day written.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical wire format of a calendar date.
const Layout = "2006-01-02"

const dayFirstLayout = "02-01-2006"

// ErrInvalidDate is returned for input that is not a recognizable date.
var ErrInvalidDate = errors.New("invalid date")

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Normalize parses DD-MM-YYYY, YYYY-MM-DD or an ISO-8601 instant and returns
// UTC midnight of the calendar date as written. Time-of-day and offset are dropped.
func Normalize(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	if t, err := time.Parse(dayFirstLayout, value); err == nil {
		return Day(t), nil
	}
	if t, err := time.Parse(Layout, value); err == nil {
		return Day(t), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Day(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// Day truncates t to midnight UTC of the calendar date in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders t as YYYY-MM-DD. The zero time renders as "".
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(Layout)
}
