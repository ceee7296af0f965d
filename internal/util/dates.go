package util

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped moves t forward by n calendar months, keeping the day of
// month where possible and clamping to the month's last day otherwise
// (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func AddMonthsClamped(t time.Time, n int) time.Time {
	t = t.UTC()
	total := int(t.Month()) - 1 + n
	year := t.Year() + total/12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	return CalculateActualDate(year, time.Month(month+1), t.Day())
}

// DaysUntil returns the whole days from now until due, rounded up.
// A due date earlier today yields 0; past dates are negative.
func DaysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// ParseDate accepts YYYY-MM-DD and RFC 3339 timestamps
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
