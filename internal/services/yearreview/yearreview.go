// Package yearreview rolls a calendar year of transactions up into monthly
// totals, half-year category trends and highlights.
package yearreview

import (
	"fmt"
	"math"
	"sort"

	"budgetlens/internal/models"
	"budgetlens/internal/services/daterange"
)

// DefaultStableBand is the |percent change| below which a category trend is
// reported as stable.
const DefaultStableBand = 10.0

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Aggregator builds year reviews
type Aggregator struct {
	stableBand float64
}

// New creates an Aggregator. A non-positive band falls back to
// DefaultStableBand; configuration rejects zero before it gets here.
func New(stableBand float64) *Aggregator {
	if stableBand <= 0 {
		stableBand = DefaultStableBand
	}
	return &Aggregator{stableBand: stableBand}
}

type halves struct {
	h1, h2 float64
}

// Build aggregates year in a single pass over transactions.
func (a *Aggregator) Build(transactions []models.Transaction, categories []models.Category, year int) models.YearInReview {
	idx := models.NewCategoryIndex(categories)
	yearStr := fmt.Sprintf("%04d", year)

	months := make([]models.MonthData, 12)
	for i := range months {
		months[i].Month = monthNames[i]
	}

	byCat := make(map[string]*halves)
	var catOrder []string
	merchants := make(map[string]float64)
	var merchantOrder []string

	for _, tx := range transactions {
		y, m, ok := daterange.MonthIndex(tx.Date)
		if !ok || y != yearStr {
			continue
		}

		switch tx.Type {
		case models.Income:
			months[m].Income += tx.Amount
		case models.Expense:
			months[m].Expenses += tx.Amount

			for _, part := range tx.EffectiveCategories() {
				h, seen := byCat[part.CategoryID]
				if !seen {
					h = &halves{}
					byCat[part.CategoryID] = h
					catOrder = append(catOrder, part.CategoryID)
				}
				if m < 6 {
					h.h1 += part.Amount
				} else {
					h.h2 += part.Amount
				}
			}

			if tx.Merchant != "" {
				if _, seen := merchants[tx.Merchant]; !seen {
					merchantOrder = append(merchantOrder, tx.Merchant)
				}
				merchants[tx.Merchant] += tx.Amount
			}
		}
	}

	review := models.YearInReview{Year: year, Months: months}

	activeMonths := 0
	for i := range months {
		months[i].Net = months[i].Income - months[i].Expenses
		review.TotalIncome += months[i].Income
		review.TotalExpenses += months[i].Expenses

		if !months[i].HasActivity() {
			continue
		}
		activeMonths++
		// Strict comparisons keep the earliest month on ties.
		if review.BestMonth == nil || months[i].Net > review.BestMonth.Net {
			best := months[i]
			review.BestMonth = &best
		}
		if review.WorstMonth == nil || months[i].Net < review.WorstMonth.Net {
			worst := months[i]
			review.WorstMonth = &worst
		}
	}
	review.TotalNet = review.TotalIncome - review.TotalExpenses
	if activeMonths > 0 {
		review.AvgMonthlySavings = review.TotalNet / float64(activeMonths)
	}

	review.CategoryTrends = make([]models.HalfYearTrend, 0, len(catOrder))
	for _, id := range catOrder {
		h := byCat[id]
		cat := idx.Resolve(id)
		pct := percentChange(h.h1, h.h2)
		review.CategoryTrends = append(review.CategoryTrends, models.HalfYearTrend{
			CategoryID:    id,
			CategoryName:  cat.Name,
			Color:         cat.Color,
			H1Total:       h.h1,
			H2Total:       h.h2,
			Trend:         a.direction(pct),
			PercentChange: pct,
		})
	}
	sort.SliceStable(review.CategoryTrends, func(i, j int) bool {
		ti := review.CategoryTrends[i].H1Total + review.CategoryTrends[i].H2Total
		tj := review.CategoryTrends[j].H1Total + review.CategoryTrends[j].H2Total
		return ti > tj
	})

	for _, name := range merchantOrder {
		if review.TopMerchant == nil || merchants[name] > review.TopMerchant.Total {
			review.TopMerchant = &models.MerchantTotal{Name: name, Total: merchants[name]}
		}
	}

	return review
}

// percentChange compares H2 with H1. Growth from nothing counts as +100%.
func percentChange(h1, h2 float64) float64 {
	switch {
	case h1 > 0:
		return (h2 - h1) / h1 * 100
	case h2 > 0:
		return 100
	default:
		return 0
	}
}

func (a *Aggregator) direction(pct float64) models.TrendDirection {
	switch {
	case math.Abs(pct) < a.stableBand:
		return models.TrendStable
	case pct > 0:
		return models.TrendUp
	default:
		return models.TrendDown
	}
}
