package query

import (
	"strconv"
	"time"

	"github.com/spendwise/api/internal/repository"
)

// ResolveWindow turns optional month/year query parameters into a reporting
// window. Month is 1-indexed. If either parameter is missing or invalid the
// filter is treated as absent and nil is returned — callers that need a
// default substitute the current month.
func ResolveWindow(monthStr, yearStr string, now time.Time) *repository.Window {
	if monthStr == "" || yearStr == "" {
		return nil
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 {
		return nil
	}
	w := MonthWindow(year, time.Month(month), now.Location())
	return &w
}

// MonthWindow is the closed interval from the first instant of the month to
// its last millisecond.
func MonthWindow(year int, month time.Month, loc *time.Location) repository.Window {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return repository.Window{From: from, To: to}
}

// CurrentMonthWindow is the default window when no filter is supplied.
func CurrentMonthWindow(now time.Time) repository.Window {
	return MonthWindow(now.Year(), now.Month(), now.Location())
}

// StartOfMonth returns the first instant of now's month.
func StartOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// StartOfDay returns local midnight of now's day.
func StartOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
