package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetlens/internal/models"
	"budgetlens/internal/services/daterange"
)

func day(s string) time.Time {
	t, err := daterange.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func rule(id string, freq models.Frequency, start string) models.RecurringRule {
	return models.RecurringRule{
		ID: id,
		TransactionTemplate: models.TransactionTemplate{
			Type:        models.Expense,
			Amount:      15.99,
			CategoryID:  "cat-subscriptions",
			Description: "Streaming",
		},
		Frequency: freq,
		StartDate: start,
		IsActive:  true,
	}
}

func TestNextDate(t *testing.T) {
	tests := []struct {
		from string
		freq models.Frequency
		want string
	}{
		{"2024-01-01", models.FreqDaily, "2024-01-02"},
		{"2024-02-28", models.FreqDaily, "2024-02-29"},
		{"2024-01-01", models.FreqWeekly, "2024-01-08"},
		{"2024-01-01", models.FreqBiweekly, "2024-01-15"},
		{"2024-01-31", models.FreqMonthly, "2024-02-29"},
		{"2023-01-31", models.FreqMonthly, "2023-02-28"},
		{"2024-02-29", models.FreqYearly, "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq)+"/"+tt.from, func(t *testing.T) {
			got := daterange.Format(NextDate(day(tt.from), tt.freq))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScheduleMonthlyRoundTrip(t *testing.T) {
	for _, start := range []string{"2024-01-31", "2023-03-15", "2024-02-29", "2023-08-30"} {
		sched, ok := NewSchedule(rule("r", models.FreqMonthly, start))
		require.True(t, ok)

		yearLater := daterange.Format(daterange.AddYears(day(start), 1))
		assert.Equal(t, yearLater, daterange.Format(sched.At(12)), "start %s", start)
	}

	sched, _ := NewSchedule(rule("r", models.FreqMonthly, "2024-01-31"))
	assert.Equal(t, "2024-02-29", daterange.Format(sched.At(1)))
	assert.Equal(t, "2024-03-31", daterange.Format(sched.At(2)))
}

func TestScheduleIndexAfter(t *testing.T) {
	tests := []struct {
		freq  models.Frequency
		start string
		after string
		want  string
	}{
		{models.FreqDaily, "2024-01-01", "2024-01-05", "2024-01-06"},
		{models.FreqWeekly, "2024-01-01", "2024-01-08", "2024-01-15"},
		{models.FreqWeekly, "2024-01-01", "2024-01-09", "2024-01-15"},
		{models.FreqBiweekly, "2024-01-01", "2024-01-01", "2024-01-15"},
		{models.FreqMonthly, "2024-01-31", "2024-02-29", "2024-03-31"},
		{models.FreqMonthly, "2024-01-15", "2023-12-01", "2024-01-15"},
		{models.FreqYearly, "2020-02-29", "2021-02-28", "2022-02-28"},
	}

	for _, tt := range tests {
		sched, ok := NewSchedule(rule("r", tt.freq, tt.start))
		require.True(t, ok)
		got := daterange.Format(sched.At(sched.IndexAfter(day(tt.after))))
		assert.Equal(t, tt.want, got, "%s from %s after %s", tt.freq, tt.start, tt.after)
	}
}

func TestFindDue(t *testing.T) {
	today := day("2024-03-20")

	inactive := rule("inactive", models.FreqMonthly, "2024-01-01")
	inactive.IsActive = false

	ended := rule("ended", models.FreqMonthly, "2024-01-01")
	ended.EndDate = "2024-03-19"

	future := rule("future", models.FreqMonthly, "2024-04-01")

	caughtUp := rule("caught-up", models.FreqMonthly, "2024-01-10")
	caughtUp.LastGeneratedDate = "2024-03-10"

	behind := rule("behind", models.FreqMonthly, "2024-01-10")
	behind.LastGeneratedDate = "2024-01-10"

	due := FindDue([]models.RecurringRule{inactive, ended, future, caughtUp, behind}, today)
	require.Len(t, due, 1)
	assert.Equal(t, "behind", due[0].Rule.ID)
	assert.Equal(t, []string{"2024-02-10", "2024-03-10"}, due[0].DueDates)
}

func TestFindDueIncludesToday(t *testing.T) {
	r := rule("r", models.FreqWeekly, "2024-03-06")
	due := FindDue([]models.RecurringRule{r}, day("2024-03-20"))
	require.Len(t, due, 1)
	assert.Equal(t, []string{"2024-03-06", "2024-03-13", "2024-03-20"}, due[0].DueDates)
}

func TestFindDueBacklogCap(t *testing.T) {
	r := rule("daily", models.FreqDaily, "2024-01-01")
	today := day("2024-03-20")

	due := FindDue([]models.RecurringRule{r}, today)
	require.Len(t, due, 1)
	assert.Len(t, due[0].DueDates, BacklogCap)
	assert.Equal(t, "2024-01-01", due[0].DueDates[0])
}

func TestFindDueIdempotentAfterWatermark(t *testing.T) {
	r := rule("r", models.FreqWeekly, "2024-02-01")
	today := day("2024-03-01")

	for i := 0; i < 10; i++ {
		due := FindDue([]models.RecurringRule{r}, today)
		if len(due) == 0 {
			break
		}
		dates := due[0].DueDates
		r.LastGeneratedDate = dates[len(dates)-1]
	}

	assert.Equal(t, "2024-02-29", r.LastGeneratedDate)
	assert.Empty(t, FindDue([]models.RecurringRule{r}, today))
}

func TestProjectOccurrences(t *testing.T) {
	r := rule("weekly", models.FreqWeekly, "2024-01-03")
	monthStart, monthEnd := day("2024-03-01"), day("2024-03-31")

	bills := ProjectOccurrences(r, monthStart, monthEnd, day("2024-03-13"))
	require.Len(t, bills, 4)
	assert.Equal(t, "2024-03-06", bills[0].Date)
	assert.True(t, bills[0].IsPastDue)
	assert.Equal(t, "2024-03-13", bills[1].Date)
	assert.True(t, bills[1].IsToday)
	assert.False(t, bills[1].IsPastDue)
	assert.Equal(t, "2024-03-27", bills[3].Date)
	assert.Equal(t, 15.99, bills[3].Amount)
}

func TestProjectOccurrencesCaps(t *testing.T) {
	// A daily rule started years ago exhausts the walk before reaching the month.
	old := rule("old", models.FreqDaily, "2020-01-01")
	assert.Empty(t, ProjectOccurrences(old, day("2024-03-01"), day("2024-03-31"), day("2024-03-15")))

	recent := rule("recent", models.FreqDaily, "2024-02-01")
	bills := ProjectOccurrences(recent, day("2024-03-01"), day("2024-03-31"), day("2024-03-15"))
	assert.Len(t, bills, MonthCap)
}

func TestProjectOccurrencesStopsAtEndDate(t *testing.T) {
	r := rule("r", models.FreqWeekly, "2024-03-01")
	r.EndDate = "2024-03-15"
	bills := ProjectOccurrences(r, day("2024-03-01"), day("2024-03-31"), day("2024-03-01"))
	require.Len(t, bills, 3)
	assert.Equal(t, "2024-03-15", bills[2].Date)
}

func TestBillCalendar(t *testing.T) {
	rent := rule("rent", models.FreqMonthly, "2023-06-01")
	rent.TransactionTemplate.Description = "Rent"
	gym := rule("gym", models.FreqBiweekly, "2024-02-23")
	ended := rule("ended", models.FreqMonthly, "2023-01-05")
	ended.EndDate = "2024-02-05"

	bills := BillCalendar([]models.RecurringRule{gym, rent, ended}, day("2024-03-10"), day("2024-03-10"))
	require.Len(t, bills, 3)
	assert.Equal(t, "2024-03-01", bills[0].Date)
	assert.Equal(t, "rent", bills[0].RuleID)
	assert.Equal(t, "2024-03-08", bills[1].Date)
	assert.Equal(t, "2024-03-22", bills[2].Date)
}

func TestMaterialize(t *testing.T) {
	r := rule("rule-1", models.FreqMonthly, "2024-01-01")
	r.TransactionTemplate.Tags = []string{"media"}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	a := Materialize(r, "2024-03-01", now)
	b := Materialize(r, "2024-03-01", now)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "2024-03-01", a.Date)
	assert.True(t, a.IsRecurring)
	assert.Equal(t, "rule-1", a.RecurringID)
	assert.Equal(t, now, a.CreatedAt)
	assert.Equal(t, 15.99, a.Amount)

	a.Tags[0] = "changed"
	assert.Equal(t, "media", r.TransactionTemplate.Tags[0])
}
