// Package daterange holds the calendar helpers shared by every analytics
// service. Dates travel through the system as fixed-width YYYY-MM-DD strings,
// so range checks are plain string comparisons.
package daterange

import (
	"time"
)

// Layout is the calendar-date format used for every date string.
const Layout = "2006-01-02"

// Range is an inclusive pair of YYYY-MM-DD strings.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether date falls inside the range.
func (r Range) Contains(date string) bool {
	return IsInRange(date, r.Start, r.End)
}

// IsInRange reports whether start <= date <= end. The comparison is
// lexicographic, which matches calendar order for zero-padded dates.
func IsInRange(date, start, end string) bool {
	return date >= start && date <= end
}

// Parse parses a YYYY-MM-DD string into a UTC midnight time.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Format renders the calendar day of t.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Day truncates t to midnight UTC of its own calendar day, discarding the
// time zone so that day arithmetic is never affected by DST.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return MonthStart(t).AddDate(0, 1, -1).Day()
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) Range {
	first := MonthStart(t)
	last := first.AddDate(0, 1, -1)
	return Range{Start: Format(first), End: Format(last)}
}

// NMonthsAgoRange returns the month range n calendar months before now.
func NMonthsAgoRange(now time.Time, n int) Range {
	return MonthRange(MonthStart(now).AddDate(0, -n, 0))
}

// Today formats the calendar day of now.
func Today(now time.Time) string {
	return Format(Day(now))
}

// NDaysAgo formats the day n days before now.
func NDaysAgo(now time.Time, n int) string {
	return Format(Day(now).AddDate(0, 0, -n))
}

// AddMonths moves t by n calendar months keeping the day of month, clamped to
// the length of the target month (Jan 31 + 1 month = Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := t.Day()
	if last := DaysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddYears moves t by n years, clamping Feb 29 to Feb 28 in common years.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// Weekday returns the weekday of a date string and false when it does not parse.
func Weekday(date string) (time.Weekday, bool) {
	t, err := Parse(date)
	if err != nil {
		return 0, false
	}
	return t.Weekday(), true
}

// MonthIndex returns the zero-based month of a date string and its year
// without going through time.Parse. It returns ok=false for short strings.
func MonthIndex(date string) (year string, month int, ok bool) {
	if len(date) < 7 || date[4] != '-' {
		return "", 0, false
	}
	tens, ones := date[5], date[6]
	if tens < '0' || tens > '1' || ones < '0' || ones > '9' {
		return "", 0, false
	}
	m := int(tens-'0')*10 + int(ones-'0')
	if m < 1 || m > 12 {
		return "", 0, false
	}
	return date[:4], m - 1, true
}
