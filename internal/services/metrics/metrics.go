package metrics

import (
	"math"
	"time"

	"budgetlens/internal/models"
	"budgetlens/internal/services/categories"
	"budgetlens/internal/services/daterange"
)

// Dashboard window sizes
const (
	TrendMonths = 6
	DailyDays   = 30
	RecentLimit = 5
)

// Service provides metric calculation functionality
type Service struct{}

// New creates a new metrics service
func New() *Service {
	return &Service{}
}

// Dashboard computes the dashboard summary as of now
func (s *Service) Dashboard(transactions []models.Transaction, cats []models.Category, now time.Time) *models.DashboardSummary {
	ts := models.NewTransactionSet(transactions)
	current, previous := ts.Partition(daterange.MonthRange(now), daterange.NMonthsAgoRange(now, 1))

	income, expenses := current.Totals()

	return &models.DashboardSummary{
		Date:              daterange.Today(now),
		CurrentIncome:     income,
		CurrentExpenses:   expenses,
		NetBalance:        income - expenses,
		SavingsRate:       SavingsRate(income, expenses),
		TransactionCount:  current.Len(),
		CategoryBreakdown: categories.Breakdown(current.Transactions, previous.Transactions, cats),
		MonthlyTotals:     s.MonthlyTotals(ts, now),
		DailySpending:     s.DailySpending(ts, now),
		Recent:            nonNil(ts.SortByDateDesc().Limit(RecentLimit).Transactions),
		Comparison:        s.CalculateComparison(current, previous),
	}
}

// SavingsRate returns (income-expenses)/income as a percentage, 0 without income
func SavingsRate(income, expenses float64) float64 {
	if income <= 0 {
		return 0
	}
	return (income - expenses) / income * 100
}

// MonthlyTotals buckets income and expenses into the last TrendMonths
// calendar months, oldest first.
func (s *Service) MonthlyTotals(ts *models.TransactionSet, now time.Time) []models.MonthlyTotal {
	ranges := make([]daterange.Range, TrendMonths)
	totals := make([]models.MonthlyTotal, TrendMonths)
	for i := range ranges {
		monthStart := daterange.MonthStart(now).AddDate(0, i-(TrendMonths-1), 0)
		ranges[i] = daterange.MonthRange(monthStart)
		totals[i] = models.MonthlyTotal{
			Period: monthStart.Format("Jan"),
			Month:  monthStart.Format("2006-01"),
		}
	}

	for _, tx := range ts.Transactions {
		for i, r := range ranges {
			if !r.Contains(tx.Date) {
				continue
			}
			switch tx.Type {
			case models.Income:
				totals[i].Income += tx.Amount
			case models.Expense:
				totals[i].Expenses += tx.Amount
			}
			break
		}
	}
	return totals
}

// DailySpending returns the expense total of each of the last DailyDays
// days, oldest first. Days without spending are zero.
func (s *Service) DailySpending(ts *models.TransactionSet, now time.Time) []models.DailyTotal {
	first := daterange.Day(now).AddDate(0, 0, -(DailyDays - 1))
	window := daterange.Range{Start: daterange.Format(first), End: daterange.Today(now)}
	daily := ts.FilterByDateRange(window).DailyExpenses()

	result := make([]models.DailyTotal, DailyDays)
	for i := range result {
		d := first.AddDate(0, 0, i)
		key := daterange.Format(d)
		result[i] = models.DailyTotal{Date: key, Label: d.Format("Jan 2"), Total: daily[key]}
	}
	return result
}

// CalculateComparison computes month-over-month changes
func (s *Service) CalculateComparison(current, previous *models.TransactionSet) *models.PeriodComparison {
	if previous.Len() == 0 {
		return &models.PeriodComparison{HasData: false}
	}

	curIncome, curExpenses := current.Totals()
	prevIncome, prevExpenses := previous.Totals()

	return &models.PeriodComparison{
		HasData:           true,
		IncomeChange:      s.PercentChange(curIncome, prevIncome),
		ExpensesChange:    s.PercentChange(curExpenses, prevExpenses),
		SavingsChange:     s.PercentChange(curIncome-curExpenses, prevIncome-prevExpenses),
		SavingsRateChange: SavingsRate(curIncome, curExpenses) - SavingsRate(prevIncome, prevExpenses),
	}
}

// PercentChange calculates the percentage change between two values
func (s *Service) PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / math.Abs(previous)) * 100
}

func nonNil(txs []models.Transaction) []models.Transaction {
	if txs == nil {
		return []models.Transaction{}
	}
	return txs
}
