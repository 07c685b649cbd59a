package insights

import (
	"time"

	"budgetlens/internal/models"
	"budgetlens/internal/services/daterange"
)

// StreakWindowDays is the length of the trailing window, today included.
const StreakWindowDays = 30

// Streaks walks the trailing window backwards from now and counts the
// consecutive days without spending and the consecutive days at or below
// the window's daily average.
func Streaks(transactions []models.Transaction, now time.Time) models.StreakData {
	start := daterange.NDaysAgo(now, StreakWindowDays-1)
	end := daterange.Today(now)

	daily := make(map[string]float64)
	for _, tx := range transactions {
		if tx.Type == models.Expense && daterange.IsInRange(tx.Date, start, end) {
			daily[tx.Date] += tx.Amount
		}
	}

	// amounts[0] is the oldest day, amounts[len-1] is today
	amounts := make([]float64, StreakWindowDays)
	var total float64
	first := daterange.Day(now).AddDate(0, 0, -(StreakWindowDays - 1))
	for i := range amounts {
		amounts[i] = daily[daterange.Format(first.AddDate(0, 0, i))]
		total += amounts[i]
	}
	avg := total / StreakWindowDays

	data := models.StreakData{DailyAverage: avg}
	for i := len(amounts) - 1; i >= 0 && amounts[i] == 0; i-- {
		data.NoSpendStreak++
	}
	for i := len(amounts) - 1; i >= 0 && amounts[i] <= avg; i-- {
		data.UnderAverageStreak++
	}
	return data
}
