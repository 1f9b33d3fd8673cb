package model

import (
	"fmt"
	"time"
)

// Period names a calendar window relative to a reference time.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodLast7Days Period = "last_7_days"
	PeriodThisMonth Period = "this_month"
	PeriodLastMonth Period = "last_month"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodToday, PeriodYesterday, PeriodLast7Days, PeriodThisMonth, PeriodLastMonth:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", ErrInvalid, s)
	}
}

// PeriodBounds returns the [start, end) range of period around now, using
// now's location for calendar boundaries.
func PeriodBounds(period Period, now time.Time) (start, end time.Time) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch period {
	case PeriodYesterday:
		start = today.AddDate(0, 0, -1)
		end = today
	case PeriodLast7Days:
		start = today.AddDate(0, 0, -7)
		end = today
	case PeriodThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	case PeriodLastMonth:
		end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		start = end.AddDate(0, -1, 0)
	default:
		start = today
		end = today.AddDate(0, 0, 1)
	}
	return start, end
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
