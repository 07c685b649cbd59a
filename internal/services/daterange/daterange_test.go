package daterange

import (
	"testing"
	"time"
)

func TestIsInRange(t *testing.T) {
	tests := []struct {
		date, start, end string
		want             bool
	}{
		{"2024-03-15", "2024-03-01", "2024-03-31", true},
		{"2024-03-01", "2024-03-01", "2024-03-31", true},
		{"2024-03-31", "2024-03-01", "2024-03-31", true},
		{"2024-02-29", "2024-03-01", "2024-03-31", false},
		{"2024-04-01", "2024-03-01", "2024-03-31", false},
		{"2023-12-31", "2024-01-01", "2024-12-31", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := IsInRange(tt.date, tt.start, tt.end); got != tt.want {
				t.Errorf("IsInRange(%q, %q, %q) = %v, want %v", tt.date, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		in   time.Time
		want Range
	}{
		{time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC), Range{"2024-02-01", "2024-02-29"}},
		{time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), Range{"2023-02-01", "2023-02-28"}},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), Range{"2024-12-01", "2024-12-31"}},
		{time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Range{"2024-04-01", "2024-04-30"}},
	}

	for _, tt := range tests {
		if got := MonthRange(tt.in); got != tt.want {
			t.Errorf("MonthRange(%v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestNMonthsAgoRange(t *testing.T) {
	// Mar 31 minus one month must land in February, not roll into March.
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	got := NMonthsAgoRange(now, 1)
	if got.Start != "2024-02-01" || got.End != "2024-02-29" {
		t.Errorf("NMonthsAgoRange(Mar 31, 1) = %+v", got)
	}

	got = NMonthsAgoRange(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 3)
	if got.Start != "2023-10-01" || got.End != "2023-10-31" {
		t.Errorf("NMonthsAgoRange(Jan, 3) = %+v", got)
	}
}

func TestAddMonthsClamps(t *testing.T) {
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		n    int
		want string
	}{
		{1, "2024-02-29"},
		{2, "2024-03-31"},
		{3, "2024-04-30"},
		{13, "2025-02-28"},
		{12, "2025-01-31"},
		{-2, "2023-11-30"},
	}

	for _, tt := range tests {
		if got := Format(AddMonths(jan31, tt.n)); got != tt.want {
			t.Errorf("AddMonths(Jan 31, %d) = %s, want %s", tt.n, got, tt.want)
		}
	}

	leap := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if got := Format(AddYears(leap, 1)); got != "2025-02-28" {
		t.Errorf("AddYears(Feb 29, 1) = %s", got)
	}
}

func TestDayHelpers(t *testing.T) {
	now := time.Date(2024, 3, 1, 22, 30, 0, 0, time.FixedZone("EST", -5*3600))
	if got := Today(now); got != "2024-03-01" {
		t.Errorf("Today = %s", got)
	}
	if got := NDaysAgo(now, 1); got != "2024-02-29" {
		t.Errorf("NDaysAgo(1) = %s", got)
	}
	if got := DaysInMonth(now); got != 31 {
		t.Errorf("DaysInMonth = %d", got)
	}
}

func TestMonthIndex(t *testing.T) {
	year, month, ok := MonthIndex("2024-07-04")
	if !ok || year != "2024" || month != 6 {
		t.Errorf("MonthIndex = %q %d %v", year, month, ok)
	}
	for _, bad := range []string{"", "2024", "2024-13-01", "2024/07/01", "2024-00-10"} {
		if _, _, ok := MonthIndex(bad); ok {
			t.Errorf("MonthIndex(%q) should fail", bad)
		}
	}
}
