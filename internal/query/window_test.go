package query

import (
	"testing"
	"time"
)

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(2024, time.March, time.UTC)

	wantFrom := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !w.From.Equal(wantFrom) {
		t.Errorf("From = %v, want %v", w.From, wantFrom)
	}

	// Leap-year March still ends on the 31st, one millisecond before April.
	wantTo := time.Date(2024, time.March, 31, 23, 59, 59, 999_000_000, time.UTC)
	if !w.To.Equal(wantTo) {
		t.Errorf("To = %v, want %v", w.To, wantTo)
	}
}

func TestMonthWindowFebruaryLeapYear(t *testing.T) {
	w := MonthWindow(2024, time.February, time.UTC)
	if w.To.Day() != 29 {
		t.Errorf("leap February should end on the 29th, got %d", w.To.Day())
	}

	w = MonthWindow(2023, time.February, time.UTC)
	if w.To.Day() != 28 {
		t.Errorf("February 2023 should end on the 28th, got %d", w.To.Day())
	}
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		month string
		year  string
		want  bool
	}{
		{name: "both present", month: "3", year: "2024", want: true},
		{name: "month missing", month: "", year: "2024", want: false},
		{name: "year missing", month: "3", year: "", want: false},
		{name: "month zero", month: "0", year: "2024", want: false},
		{name: "month thirteen", month: "13", year: "2024", want: false},
		{name: "month not numeric", month: "march", year: "2024", want: false},
		{name: "year not numeric", month: "3", year: "twenty24", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ResolveWindow(tt.month, tt.year, now)
			if (w != nil) != tt.want {
				t.Errorf("ResolveWindow(%q, %q) = %v, want present=%v", tt.month, tt.year, w, tt.want)
			}
		})
	}

	w := ResolveWindow("3", "2024", now)
	if w.From.Month() != time.March || w.From.Year() != 2024 {
		t.Errorf("window anchored at %v, want March 2024", w.From)
	}
}
