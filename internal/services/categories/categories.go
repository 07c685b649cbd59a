// Package categories aggregates expenses by category over a date window.
package categories

import (
	"sort"

	"budgetlens/internal/models"
	"budgetlens/internal/services/daterange"
)

type accumulator struct {
	total float64
	count int
}

// Breakdown groups the expenses in current by category (split-aware) and
// compares each category with its total in previous. Results are sorted by
// total descending; equal totals keep first-appearance order.
func Breakdown(current, previous []models.Transaction, categories []models.Category) []models.CategorySummary {
	idx := models.NewCategoryIndex(categories)

	var windowTotal float64
	grouped := make(map[string]*accumulator)
	var order []string
	for _, tx := range current {
		if tx.Type != models.Expense {
			continue
		}
		windowTotal += tx.Amount
		for _, part := range tx.EffectiveCategories() {
			acc, ok := grouped[part.CategoryID]
			if !ok {
				acc = &accumulator{}
				grouped[part.CategoryID] = acc
				order = append(order, part.CategoryID)
			}
			acc.total += part.Amount
			acc.count++
		}
	}

	prevTotals, _ := models.NewTransactionSet(previous).CategoryTotals(models.Expense)

	summaries := make([]models.CategorySummary, 0, len(order))
	for _, id := range order {
		acc := grouped[id]
		cat := idx.Resolve(id)

		var trend float64
		if prev := prevTotals[id]; prev > 0 {
			trend = (acc.total - prev) / prev * 100
		}
		var pct float64
		if windowTotal > 0 {
			pct = acc.total / windowTotal * 100
		}
		var avg float64
		if acc.count > 0 {
			avg = acc.total / float64(acc.count)
		}

		summaries = append(summaries, models.CategorySummary{
			CategoryID:         id,
			CategoryName:       cat.Name,
			Color:              cat.Color,
			Total:              acc.total,
			Count:              acc.count,
			Percentage:         pct,
			Trend:              trend,
			AverageTransaction: avg,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Total > summaries[j].Total
	})
	return summaries
}

// BreakdownForWindows partitions transactions into the two windows in one
// pass and aggregates them.
func BreakdownForWindows(transactions []models.Transaction, categories []models.Category, current, previous daterange.Range) []models.CategorySummary {
	cur, prev := models.NewTransactionSet(transactions).Partition(current, previous)
	return Breakdown(cur.Transactions, prev.Transactions, categories)
}
