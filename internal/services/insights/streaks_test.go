package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"budgetlens/internal/models"
)

func TestStreaksNoSpending(t *testing.T) {
	got := Streaks(nil, now)
	assert.Equal(t, 30, got.NoSpendStreak)
	assert.Equal(t, 30, got.UnderAverageStreak)
	assert.Equal(t, 0.0, got.DailyAverage)
}

func TestStreaksIgnoresIncomeAndOldSpending(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Income, "salary", 1000, "2024-04-15"),
		tx(models.Expense, "food", 90, "2024-03-16"), // 30 days before today, outside
	}
	got := Streaks(txs, now)
	assert.Equal(t, 30, got.NoSpendStreak)
}

func TestStreaks(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Expense, "food", 300, "2024-03-17"), // first day of the window
		tx(models.Expense, "food", 8, "2024-04-10"),
		tx(models.Expense, "food", 5, "2024-04-13"),
	}
	got := Streaks(txs, now)

	assert.InDelta(t, 313.0/30, got.DailyAverage, 1e-9)
	assert.Equal(t, 2, got.NoSpendStreak)       // 14th, 15th
	assert.Equal(t, 29, got.UnderAverageStreak) // everything after the 17th
}

func TestStreaksSpendToday(t *testing.T) {
	txs := []models.Transaction{tx(models.Expense, "food", 10, "2024-04-15")}
	got := Streaks(txs, now.Add(14*time.Hour))
	assert.Equal(t, 0, got.NoSpendStreak)
	assert.Equal(t, 0, got.UnderAverageStreak)
}
