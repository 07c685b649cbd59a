// Package recurrence projects recurring rules onto the calendar: which
// occurrences are due for confirmation, which bills fall in a month, and how
// an occurrence becomes a transaction.
package recurrence

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"budgetlens/internal/models"
	"budgetlens/internal/services/daterange"
)

// Safety bounds on schedule walks. A rule whose start date lies decades in
// the past must never turn a request into an unbounded loop.
const (
	// BacklogCap is the most due dates FindDue reports per rule in one pass.
	BacklogCap = 5
	// MonthCap is the most occurrences projected into a single month.
	MonthCap = 31
	// WalkCap is the most periods walked forward to reach a month window.
	WalkCap = 500
)

// NextDate advances from by a single period of freq. Monthly and yearly
// steps keep the day of month, clamped to the length of the target month.
func NextDate(from time.Time, freq models.Frequency) time.Time {
	switch freq {
	case models.FreqDaily:
		return from.AddDate(0, 0, 1)
	case models.FreqWeekly:
		return from.AddDate(0, 0, 7)
	case models.FreqBiweekly:
		return from.AddDate(0, 0, 14)
	case models.FreqMonthly:
		return daterange.AddMonths(from, 1)
	case models.FreqYearly:
		return daterange.AddYears(from, 1)
	}
	// Unknown frequencies never advance; callers are bounded by the caps.
	return from
}

// Schedule enumerates the occurrences of a rule. Occurrence n is always
// computed from the start date, so a rule starting Jan 31 fires on Feb 29
// and then again on Mar 31 rather than drifting to the 29th.
type Schedule struct {
	start time.Time
	freq  models.Frequency
}

// NewSchedule builds the schedule of a rule. ok is false when the start date
// does not parse or the frequency is unknown.
func NewSchedule(rule models.RecurringRule) (Schedule, bool) {
	start, err := daterange.Parse(rule.StartDate)
	if err != nil || !rule.Frequency.Valid() {
		return Schedule{}, false
	}
	return Schedule{start: start, freq: rule.Frequency}, true
}

// At returns occurrence n (0 is the start date).
func (s Schedule) At(n int) time.Time {
	switch s.freq {
	case models.FreqDaily:
		return s.start.AddDate(0, 0, n)
	case models.FreqWeekly:
		return s.start.AddDate(0, 0, 7*n)
	case models.FreqBiweekly:
		return s.start.AddDate(0, 0, 14*n)
	case models.FreqMonthly:
		return daterange.AddMonths(s.start, n)
	case models.FreqYearly:
		return daterange.AddYears(s.start, n)
	}
	return s.start
}

// IndexAfter returns the index of the first occurrence strictly after t.
func (s Schedule) IndexAfter(t time.Time) int {
	if t.Before(s.start) {
		return 0
	}

	var n int
	switch s.freq {
	case models.FreqDaily:
		n = daysBetween(s.start, t)
	case models.FreqWeekly:
		n = daysBetween(s.start, t) / 7
	case models.FreqBiweekly:
		n = daysBetween(s.start, t) / 14
	case models.FreqMonthly:
		n = monthsBetween(s.start, t)
	case models.FreqYearly:
		n = monthsBetween(s.start, t) / 12
	}
	if n > 0 {
		n--
	}
	for !s.At(n).After(t) {
		n++
	}
	return n
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// FindDue lists, per active rule, the occurrences up to today that have not
// been materialized yet. Rules that ended before today are skipped. Each rule
// reports at most BacklogCap dates, oldest first; confirming them advances
// the watermark and the next call surfaces the following batch.
func FindDue(rules []models.RecurringRule, today time.Time) []models.DueRecurring {
	todayStr := daterange.Today(today)
	results := []models.DueRecurring{}

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if rule.EndDate != "" && rule.EndDate < todayStr {
			continue
		}
		sched, ok := NewSchedule(rule)
		if !ok {
			continue
		}

		n := 0
		if rule.LastGeneratedDate != "" {
			if last, err := daterange.Parse(rule.LastGeneratedDate); err == nil {
				n = sched.IndexAfter(last)
			}
		}

		var due []string
		for len(due) < BacklogCap {
			date := daterange.Format(sched.At(n))
			if date > todayStr {
				break
			}
			due = append(due, date)
			n++
		}

		if len(due) > 0 {
			results = append(results, models.DueRecurring{Rule: rule, DueDates: due})
		}
	}

	return results
}

// ProjectOccurrences returns the occurrences of rule between monthStart and
// monthEnd (inclusive), tagged relative to today. If the start of the window
// lies more than WalkCap periods after the rule's start, nothing is projected.
func ProjectOccurrences(rule models.RecurringRule, monthStart, monthEnd, today time.Time) []models.CalendarBill {
	sched, ok := NewSchedule(rule)
	if !ok {
		return nil
	}

	startStr := daterange.Format(monthStart)
	endStr := daterange.Format(monthEnd)
	todayStr := daterange.Today(today)

	n := 0
	for daterange.Format(sched.At(n)) < startStr {
		if n >= WalkCap {
			return nil
		}
		n++
	}

	var bills []models.CalendarBill
	for i := 0; i < MonthCap; i++ {
		date := daterange.Format(sched.At(n + i))
		if date > endStr {
			break
		}
		if rule.EndDate != "" && date > rule.EndDate {
			break
		}
		bills = append(bills, models.CalendarBill{
			RuleID:      rule.ID,
			Date:        date,
			Description: rule.TransactionTemplate.Description,
			Amount:      rule.TransactionTemplate.Amount,
			CategoryID:  rule.TransactionTemplate.CategoryID,
			IsPastDue:   date < todayStr,
			IsToday:     date == todayStr,
		})
	}
	return bills
}

// BillCalendar projects every active rule into the month containing month,
// sorted by date.
func BillCalendar(rules []models.RecurringRule, month, today time.Time) []models.CalendarBill {
	monthStart := daterange.MonthStart(month)
	monthEnd := monthStart.AddDate(0, 1, -1)
	startStr := daterange.Format(monthStart)

	bills := []models.CalendarBill{}
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if rule.EndDate != "" && rule.EndDate < startStr {
			continue
		}
		bills = append(bills, ProjectOccurrences(rule, monthStart, monthEnd, today)...)
	}

	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].Date < bills[j].Date
	})
	return bills
}

// Materialize turns one occurrence of rule into a new transaction.
func Materialize(rule models.RecurringRule, date string, now time.Time) models.Transaction {
	tmpl := rule.TransactionTemplate
	return models.Transaction{
		ID:          uuid.New().String(),
		Type:        tmpl.Type,
		Amount:      tmpl.Amount,
		CategoryID:  tmpl.CategoryID,
		Description: tmpl.Description,
		Merchant:    tmpl.Merchant,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        append([]string(nil), tmpl.Tags...),
		Notes:       tmpl.Notes,
		Splits:      append([]models.Split(nil), tmpl.Splits...),
		IsRecurring: true,
		RecurringID: rule.ID,
	}
}
