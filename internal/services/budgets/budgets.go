// Package budgets computes spend-to-date and pacing for category budgets.
//
// Pacing always compares against the elapsed share of the calendar month,
// including for budgets declared as weekly. Weekly pacing is an open product
// question; see Calculate.
package budgets

import (
	"math"
	"time"

	"budgetlens/internal/models"
	"budgetlens/internal/services/daterange"
)

// Thresholds are the percentage-point margins around the elapsed share of the
// month that separate the pacing classes.
type Thresholds struct {
	// AheadMargin: percentUsed above elapsed+AheadMargin is "ahead".
	AheadMargin float64
	// OnTrackMargin: percentUsed above elapsed-OnTrackMargin is "on-track".
	OnTrackMargin float64
}

// DefaultThresholds returns the stock pacing margins (15 / 10)
func DefaultThresholds() Thresholds {
	return Thresholds{AheadMargin: 15, OnTrackMargin: 10}
}

// Calculator computes budget statuses with a fixed set of thresholds
type Calculator struct {
	th Thresholds
}

// New creates a Calculator
func New(th Thresholds) *Calculator {
	return &Calculator{th: th}
}

// Classify returns the pacing class for spent against limit on the given day
// of a month with daysInMonth days.
func Classify(spent, limit float64, dayOfMonth, daysInMonth int, th Thresholds) models.Pacing {
	percentUsed := percentOf(spent, limit)
	percentOfMonth := percentOf(float64(dayOfMonth), float64(daysInMonth))

	switch {
	case spent >= limit:
		return models.PacingOver
	case percentUsed > percentOfMonth+th.AheadMargin:
		return models.PacingAhead
	case percentUsed > percentOfMonth-th.OnTrackMargin:
		return models.PacingOnTrack
	default:
		return models.PacingUnder
	}
}

// Spent sums the expense amounts allocated to categoryID, counting each split
// toward its own category.
func Spent(categoryID string, transactions []models.Transaction) float64 {
	var spent float64
	for _, tx := range transactions {
		if tx.Type != models.Expense {
			continue
		}
		for _, part := range tx.EffectiveCategories() {
			if part.CategoryID == categoryID {
				spent += part.Amount
			}
		}
	}
	return spent
}

// Calculate computes the status of budget from transactions, which the caller
// should have narrowed to the budget's period.
//
// TODO: weekly budgets are paced against the month (day of month / days in
// month) like monthly ones; needs a product decision on week boundaries
// before it can change.
func (c *Calculator) Calculate(budget models.Budget, transactions []models.Transaction, now time.Time) models.BudgetStatus {
	spent := Spent(budget.CategoryID, transactions)

	dayOfMonth := now.Day()
	daysInMonth := daterange.DaysInMonth(now)

	var projected float64
	if dayOfMonth > 0 {
		projected = spent / float64(dayOfMonth) * float64(daysInMonth)
	}

	pacing := Classify(spent, budget.Amount, dayOfMonth, daysInMonth, c.th)

	return models.BudgetStatus{
		Budget:         budget,
		Spent:          spent,
		Remaining:      math.Max(budget.Amount-spent, 0),
		PercentUsed:    percentOf(spent, budget.Amount),
		PercentOfMonth: percentOf(float64(dayOfMonth), float64(daysInMonth)),
		Pacing:         pacing,
		PacingLabel:    PacingLabel(pacing),
		ProjectedTotal: projected,
	}
}

// CalculateAll computes the status of every active budget against the
// month containing now.
func (c *Calculator) CalculateAll(budgets []models.Budget, transactions []models.Transaction, now time.Time) []models.BudgetStatus {
	month := models.NewTransactionSet(transactions).FilterByDateRange(daterange.MonthRange(now))

	statuses := []models.BudgetStatus{}
	for _, b := range budgets {
		if !b.IsActive {
			continue
		}
		statuses = append(statuses, c.Calculate(b, month.Transactions, now))
	}
	return statuses
}

// PacingLabel returns the display label of a pacing class
func PacingLabel(p models.Pacing) string {
	switch p {
	case models.PacingUnder:
		return "Under budget"
	case models.PacingOnTrack:
		return "On track"
	case models.PacingAhead:
		return "Spending fast"
	case models.PacingOver:
		return "Over budget"
	}
	return ""
}

func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
