package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetlens/internal/models"
)

func TestPercentChange(t *testing.T) {
	s := New()

	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero", 50, 0, 100},
		{"increase", 150, 100, 50},
		{"decrease", 75, 100, -25},
		{"negative base", -50, -100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.PercentChange(tt.current, tt.previous); got != tt.want {
				t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestSavingsRate(t *testing.T) {
	assert.Equal(t, 0.0, SavingsRate(0, 100))
	assert.Equal(t, 25.0, SavingsRate(1000, 750))
	assert.Equal(t, -50.0, SavingsRate(100, 150))
}

func TestDashboard(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cats := []models.Category{{ID: "food", Name: "Food"}, {ID: "rent", Name: "Rent"}}

	txs := []models.Transaction{
		{ID: "1", Type: models.Income, CategoryID: "salary", Amount: 4000, Date: "2024-06-01", CreatedAt: created},
		{ID: "2", Type: models.Expense, CategoryID: "rent", Amount: 1500, Date: "2024-06-02", CreatedAt: created},
		{ID: "3", Type: models.Expense, CategoryID: "food", Amount: 100, Date: "2024-06-14", CreatedAt: created},
		{ID: "4", Type: models.Expense, CategoryID: "food", Amount: 40, Date: "2024-06-15", CreatedAt: created},
		{ID: "5", Type: models.Income, CategoryID: "salary", Amount: 4000, Date: "2024-05-01", CreatedAt: created},
		{ID: "6", Type: models.Expense, CategoryID: "rent", Amount: 2000, Date: "2024-05-20", CreatedAt: created},
		{ID: "7", Type: models.Expense, CategoryID: "food", Amount: 60, Date: "2024-01-10", CreatedAt: created},
		{ID: "8", Type: models.Expense, CategoryID: "food", Amount: 999, Date: "2023-12-31", CreatedAt: created},
	}

	d := New().Dashboard(txs, cats, now)

	assert.Equal(t, "2024-06-15", d.Date)
	assert.Equal(t, 4000.0, d.CurrentIncome)
	assert.Equal(t, 1640.0, d.CurrentExpenses)
	assert.Equal(t, 2360.0, d.NetBalance)
	assert.Equal(t, 59.0, d.SavingsRate)
	assert.Equal(t, 4, d.TransactionCount)

	require.Len(t, d.CategoryBreakdown, 2)
	assert.Equal(t, "rent", d.CategoryBreakdown[0].CategoryID)
	assert.Equal(t, -25.0, d.CategoryBreakdown[0].Trend)

	require.Len(t, d.MonthlyTotals, TrendMonths)
	assert.Equal(t, "Jan", d.MonthlyTotals[0].Period)
	assert.Equal(t, "2024-01", d.MonthlyTotals[0].Month)
	assert.Equal(t, 60.0, d.MonthlyTotals[0].Expenses)
	assert.Equal(t, "Jun", d.MonthlyTotals[5].Period)
	assert.Equal(t, 1640.0, d.MonthlyTotals[5].Expenses)
	assert.Equal(t, 2000.0, d.MonthlyTotals[4].Expenses)

	require.Len(t, d.DailySpending, DailyDays)
	assert.Equal(t, "2024-05-17", d.DailySpending[0].Date)
	assert.Equal(t, "May 17", d.DailySpending[0].Label)
	assert.Equal(t, 2000.0, d.DailySpending[3].Total)
	assert.Equal(t, "2024-06-15", d.DailySpending[29].Date)
	assert.Equal(t, 40.0, d.DailySpending[29].Total)

	require.Len(t, d.Recent, RecentLimit)
	assert.Equal(t, "4", d.Recent[0].ID)
	assert.Equal(t, "3", d.Recent[1].ID)

	require.NotNil(t, d.Comparison)
	assert.True(t, d.Comparison.HasData)
	assert.Equal(t, 0.0, d.Comparison.IncomeChange)
	assert.Equal(t, -18.0, d.Comparison.ExpensesChange)
}

func TestDashboardEmpty(t *testing.T) {
	d := New().Dashboard(nil, nil, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 0.0, d.SavingsRate)
	assert.Empty(t, d.CategoryBreakdown)
	assert.NotNil(t, d.Recent)
	assert.Len(t, d.MonthlyTotals, TrendMonths)
	assert.False(t, d.Comparison.HasData)
}
