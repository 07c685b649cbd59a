// Package insights generates rule-based advisory messages and spending
// streaks from a transaction history.
package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"budgetlens/internal/models"
	"budgetlens/internal/services/budgets"
	"budgetlens/internal/services/daterange"
)

// Options holds the thresholds of the warning rules
type Options struct {
	// AnomalyPercent: a category more than this % above its 3-month average
	// is flagged.
	AnomalyPercent float64
	// PaceMarginPercent: a budget used more than this many points ahead of
	// the elapsed month is flagged.
	PaceMarginPercent float64
}

// DefaultOptions returns the stock thresholds (30% / 20 points)
func DefaultOptions() Options {
	return Options{AnomalyPercent: 30, PaceMarginPercent: 20}
}

// Priorities; lower values are shown first.
const (
	priorityAnomaly     = 1
	priorityBudgetPace  = 2
	prioritySavingsUp   = 3
	priorityDayPattern  = 4
	prioritySavingsRate = 5
)

// trailingMonths is the divisor of the rolling category average.
const trailingMonths = 3

var weekdayNames = [7]string{"Sundays", "Mondays", "Tuesdays", "Wednesdays", "Thursdays", "Fridays", "Saturdays"}

// Generator evaluates the insight rules
type Generator struct {
	opts Options
}

// New creates a Generator
func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// idSequence numbers the insights of a single Generate call
type idSequence struct {
	n int
}

func (s *idSequence) next(prefix string) string {
	s.n++
	return fmt.Sprintf("insight-%s-%d", prefix, s.n)
}

// window is one partition of the history
type window struct {
	income, expenses float64
	txs              []models.Transaction
}

func (w *window) add(tx models.Transaction) {
	w.txs = append(w.txs, tx)
	switch tx.Type {
	case models.Income:
		w.income += tx.Amount
	case models.Expense:
		w.expenses += tx.Amount
	}
}

// Generate evaluates every rule against the history as of now and returns the
// insights ordered by priority. Ids are numbered from 1 on every call.
func (g *Generator) Generate(transactions []models.Transaction, categories []models.Category, budgetList []models.Budget, now time.Time) []models.Insight {
	ids := &idSequence{}
	idx := models.NewCategoryIndex(categories)

	curRange := daterange.MonthRange(now)
	prevRange := daterange.NMonthsAgoRange(now, 1)
	trailing := daterange.Range{
		Start: daterange.NMonthsAgoRange(now, trailingMonths).Start,
		End:   curRange.End,
	}

	var current, previous, history window
	for _, tx := range transactions {
		switch {
		case curRange.Contains(tx.Date):
			current.add(tx)
			history.add(tx)
		case prevRange.Contains(tx.Date):
			previous.add(tx)
			history.add(tx)
		case trailing.Contains(tx.Date):
			history.add(tx)
		}
	}

	var result []models.Insight
	result = append(result, g.categoryAnomalies(ids, idx, current, history)...)
	result = append(result, g.budgetPace(ids, idx, current, budgetList, now)...)
	result = append(result, savingsImprovement(ids, current, previous)...)
	result = append(result, dayOfWeekPattern(ids, history)...)
	result = append(result, savingsRate(ids, current)...)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority < result[j].Priority
	})
	if result == nil {
		result = []models.Insight{}
	}
	return result
}

func (g *Generator) categoryAnomalies(ids *idSequence, idx models.CategoryIndex, current, history window) []models.Insight {
	historyTotals, _ := models.NewTransactionSet(history.txs).CategoryTotals(models.Expense)
	currentTotals, order := models.NewTransactionSet(current.txs).CategoryTotals(models.Expense)

	var out []models.Insight
	for _, catID := range order {
		avg := historyTotals[catID] / trailingMonths
		if avg <= 0 {
			continue
		}
		pctAbove := (currentTotals[catID] - avg) / avg * 100
		if pctAbove <= g.opts.AnomalyPercent {
			continue
		}
		out = append(out, models.Insight{
			ID:                ids.next(catID),
			Type:              models.InsightWarning,
			Title:             fmt.Sprintf("%s spending is up", idx.NameOr(catID, "Category")),
			Description:       fmt.Sprintf("You've spent %.0f%% more on %s compared to your 3-month average.", pctAbove, idx.NameOr(catID, "this category")),
			Icon:              "trending-up",
			RelatedCategoryID: catID,
			Priority:          priorityAnomaly,
		})
	}
	return out
}

func (g *Generator) budgetPace(ids *idSequence, idx models.CategoryIndex, current window, budgetList []models.Budget, now time.Time) []models.Insight {
	dayOfMonth := now.Day()
	pctOfMonth := float64(dayOfMonth) / float64(daterange.DaysInMonth(now))
	margin := g.opts.PaceMarginPercent / 100

	var out []models.Insight
	for _, b := range budgetList {
		if !b.IsActive || b.Amount <= 0 {
			continue
		}
		spent := budgets.Spent(b.CategoryID, current.txs)
		pctUsed := spent / b.Amount
		if pctUsed <= pctOfMonth+margin || pctUsed >= 1 {
			continue
		}

		projectedDay := int(math.Round(b.Amount / (spent / float64(dayOfMonth))))
		out = append(out, models.Insight{
			ID:                ids.next("pace-" + b.CategoryID),
			Type:              models.InsightWarning,
			Title:             fmt.Sprintf("%s pace warning", idx.NameOr(b.CategoryID, "Budget")),
			Description:       fmt.Sprintf("You're on track to exceed your %s budget by the %s.", idx.NameOr(b.CategoryID, ""), Ordinal(projectedDay)),
			Icon:              "alert-triangle",
			RelatedCategoryID: b.CategoryID,
			Priority:          priorityBudgetPace,
		})
	}
	return out
}

func savingsImprovement(ids *idSequence, current, previous window) []models.Insight {
	curNet := current.income - current.expenses
	prevNet := previous.income - previous.expenses
	if prevNet <= 0 || curNet <= prevNet {
		return nil
	}
	return []models.Insight{{
		ID:          ids.next("savings-improved"),
		Type:        models.InsightAchievement,
		Title:       "Savings improved!",
		Description: fmt.Sprintf("You've saved %.0f more than last month. Great progress!", curNet-prevNet),
		Icon:        "trophy",
		Priority:    prioritySavingsUp,
	}}
}

func dayOfWeekPattern(ids *idSequence, history window) []models.Insight {
	var totals [7]float64
	var counts [7]int
	for _, tx := range history.txs {
		if tx.Type != models.Expense {
			continue
		}
		wd, ok := daterange.Weekday(tx.Date)
		if !ok {
			continue
		}
		totals[wd] += tx.Amount
		counts[wd]++
	}

	maxDay, maxAvg := 0, 0.0
	for d := range totals {
		if counts[d] == 0 {
			continue
		}
		if avg := totals[d] / float64(counts[d]); avg > maxAvg {
			maxDay, maxAvg = d, avg
		}
	}
	if maxAvg <= 0 {
		return nil
	}
	return []models.Insight{{
		ID:          ids.next("day-pattern"),
		Type:        models.InsightTip,
		Title:       "Spending pattern detected",
		Description: fmt.Sprintf("You tend to spend most on %s (avg %.0f/day). Planning ahead could help!", weekdayNames[maxDay], maxAvg),
		Icon:        "lightbulb",
		Priority:    priorityDayPattern,
	}}
}

func savingsRate(ids *idSequence, current window) []models.Insight {
	if current.income <= 0 {
		return nil
	}
	rate := (current.income - current.expenses) / current.income * 100
	switch {
	case rate > 20:
		return []models.Insight{{
			ID:          ids.next("savings-strong"),
			Type:        models.InsightAchievement,
			Title:       "Strong savings rate",
			Description: fmt.Sprintf("Your savings rate is %.0f%% this month. That's above the recommended 20%%!", rate),
			Icon:        "star",
			Priority:    prioritySavingsRate,
		}}
	case rate > 0 && rate < 10:
		return []models.Insight{{
			ID:          ids.next("savings-low"),
			Type:        models.InsightTip,
			Title:       "Savings rate is low",
			Description: fmt.Sprintf("Your savings rate is %.0f%%. Consider reviewing your biggest expense categories.", rate),
			Icon:        "info",
			Priority:    prioritySavingsRate,
		}}
	}
	return nil
}

// Ordinal formats n with its English ordinal suffix: 1st, 2nd, 11th, 23rd.
func Ordinal(n int) string {
	suffix := "th"
	switch v := n % 100; {
	case v >= 11 && v <= 13:
	case v%10 == 1:
		suffix = "st"
	case v%10 == 2:
		suffix = "nd"
	case v%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
