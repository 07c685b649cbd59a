// Package healthscore combines five independent sub-scores into a single
// 0-100 financial health score.
package healthscore

import (
	"math"
	"time"

	"budgetlens/internal/models"
	"budgetlens/internal/services/budgets"
	"budgetlens/internal/services/daterange"
)

// Component weights; they sum to 1.
const (
	WeightSavingsRate = 0.30
	WeightBudget      = 0.25
	WeightTrend       = 0.20
	WeightGoals       = 0.15
	WeightConsistency = 0.10
)

// Neutral sub-scores used when there is nothing to measure.
const (
	defaultBudgetScore = 100
	defaultTrendScore  = 50
	defaultGoalScore   = 50
)

// Options holds the tunable multipliers of the trend and consistency scores
type Options struct {
	// TrendMultiplier converts month-over-month expense change (%) into
	// points away from 50.
	TrendMultiplier float64
	// ConsistencyMultiplier scales the share of days with activity.
	ConsistencyMultiplier float64
}

// DefaultOptions returns the stock multipliers (2.5 / 1.5)
func DefaultOptions() Options {
	return Options{TrendMultiplier: 2.5, ConsistencyMultiplier: 1.5}
}

// Engine computes health scores
type Engine struct {
	opts    Options
	budgets *budgets.Calculator
}

// New creates an Engine
func New(opts Options) *Engine {
	return &Engine{opts: opts, budgets: budgets.New(budgets.DefaultThresholds())}
}

type segment struct {
	lo, hi           float64
	scoreLo, scoreHi float64
}

// savingsCurve maps a savings rate (%) onto a score.
var savingsCurve = []segment{
	{0, 10, 0, 50},
	{10, 20, 50, 80},
	{20, 30, 80, 100},
}

// interpolate maps value through the first segment whose upper bound is not
// below it. Values past the last segment score 100.
func interpolate(value float64, curve []segment) int {
	for _, s := range curve {
		if value <= s.hi {
			t := 1.0
			if s.hi != s.lo {
				t = (value - s.lo) / (s.hi - s.lo)
			}
			return int(math.Round(s.scoreLo + t*(s.scoreHi-s.scoreLo)))
		}
	}
	return 100
}

// Calculate scores the month containing now.
func (e *Engine) Calculate(transactions []models.Transaction, budgetList []models.Budget, goals []models.SavingsGoal, now time.Time) models.HealthScore {
	cur, prev := models.NewTransactionSet(transactions).Partition(
		daterange.MonthRange(now),
		daterange.NMonthsAgoRange(now, 1),
	)

	income, expenses := cur.Totals()
	_, prevExpenses := prev.Totals()

	components := []models.HealthComponent{
		{Label: "Savings Rate", Score: savingsScore(income, expenses), Weight: WeightSavingsRate},
		{Label: "Budget Adherence", Score: e.budgetScore(budgetList, cur.Transactions, now), Weight: WeightBudget},
		{Label: "Spending Trend", Score: e.trendScore(expenses, prevExpenses), Weight: WeightTrend},
		{Label: "Goal Progress", Score: goalScore(goals), Weight: WeightGoals},
		{Label: "Consistency", Score: e.consistencyScore(cur.DistinctDates(), now.Day()), Weight: WeightConsistency},
	}

	var weighted float64
	for _, c := range components {
		weighted += float64(c.Score) * c.Weight
	}
	overall := int(math.Round(weighted))

	return models.HealthScore{
		Overall:    overall,
		Components: components,
		Grade:      GradeFor(overall),
	}
}

// GradeFor buckets an overall score
func GradeFor(overall int) models.Grade {
	switch {
	case overall >= 70:
		return models.GradeExcellent
	case overall >= 50:
		return models.GradeGood
	case overall >= 30:
		return models.GradeFair
	default:
		return models.GradePoor
	}
}

func savingsScore(income, expenses float64) int {
	var rate float64
	if income > 0 {
		rate = (income - expenses) / income * 100
	}
	return interpolate(math.Max(rate, 0), savingsCurve)
}

func (e *Engine) budgetScore(budgetList []models.Budget, current []models.Transaction, now time.Time) int {
	var sum float64
	var n int
	for _, b := range budgetList {
		if !b.IsActive {
			continue
		}
		status := e.budgets.Calculate(b, current, now)
		sum += clamp((1-status.PercentUsed/100)*100, 0, 100)
		n++
	}
	if n == 0 {
		return defaultBudgetScore
	}
	return int(math.Round(sum / float64(n)))
}

func (e *Engine) trendScore(expenses, prevExpenses float64) int {
	if prevExpenses <= 0 {
		return defaultTrendScore
	}
	change := (expenses - prevExpenses) / prevExpenses * 100
	return int(math.Round(clamp(50-change*e.opts.TrendMultiplier, 0, 100)))
}

func goalScore(goals []models.SavingsGoal) int {
	if len(goals) == 0 {
		return defaultGoalScore
	}
	var sum float64
	for _, g := range goals {
		sum += g.Progress()
	}
	return int(math.Round(sum / float64(len(goals)) * 100))
}

func (e *Engine) consistencyScore(daysWithTransactions, dayOfMonth int) int {
	if dayOfMonth <= 0 {
		return 0
	}
	ratio := float64(daysWithTransactions) / float64(dayOfMonth)
	return int(math.Round(math.Min(ratio*e.opts.ConsistencyMultiplier, 1) * 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
