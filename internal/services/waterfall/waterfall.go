// Package waterfall builds the running-balance steps of a month's cash flow
// and renders them as a chart.
package waterfall

import (
	"sort"
	"time"

	"budgetlens/internal/models"
	"budgetlens/internal/services/daterange"
)

// Bar colors
const (
	ColorIncome  = "#10b981"
	ColorExpense = "#ef4444"
)

type categoryAmount struct {
	id     string
	amount float64
}

// sortedTotals returns the split-aware totals of one transaction type,
// largest first. Equal amounts keep first-appearance order.
func sortedTotals(ts *models.TransactionSet, tt models.TransactionType) []categoryAmount {
	totals, order := ts.CategoryTotals(tt)
	out := make([]categoryAmount, 0, len(order))
	for _, id := range order {
		out = append(out, categoryAmount{id: id, amount: totals[id]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].amount > out[j].amount
	})
	return out
}

// Build returns the bars for the month containing now: one rising bar per
// income category, one falling bar per expense category, then a Net bar from
// zero to the final balance.
func Build(transactions []models.Transaction, categories []models.Category, now time.Time) []models.WaterfallBar {
	idx := models.NewCategoryIndex(categories)
	month := models.NewTransactionSet(transactions).FilterByDateRange(daterange.MonthRange(now))

	var bars []models.WaterfallBar
	var running float64

	for _, c := range sortedTotals(month, models.Income) {
		bars = append(bars, models.WaterfallBar{
			Name:       idx.NameOr(c.id, "Income"),
			CategoryID: c.id,
			Start:      running,
			End:        running + c.amount,
			Value:      c.amount,
			Type:       models.BarIncome,
			Color:      ColorIncome,
		})
		running += c.amount
	}

	for _, c := range sortedTotals(month, models.Expense) {
		color := ColorExpense
		if cat, ok := idx.Lookup(c.id); ok && cat.Color != "" {
			color = cat.Color
		}
		bars = append(bars, models.WaterfallBar{
			Name:       idx.NameOr(c.id, "Expense"),
			CategoryID: c.id,
			Start:      running,
			End:        running - c.amount,
			Value:      -c.amount,
			Type:       models.BarExpense,
			Color:      color,
		})
		running -= c.amount
	}

	netColor := ColorIncome
	if running < 0 {
		netColor = ColorExpense
	}
	bars = append(bars, models.WaterfallBar{
		Name:  "Net",
		Start: 0,
		End:   running,
		Value: running,
		Type:  models.BarNet,
		Color: netColor,
	})

	return bars
}
