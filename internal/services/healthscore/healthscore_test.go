package healthscore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetlens/internal/models"
)

func TestInterpolateSavingsCurve(t *testing.T) {
	tests := []struct {
		rate float64
		want int
	}{
		{0, 0},
		{5, 25},
		{10, 50},
		{15, 65},
		{20, 80},
		{25, 90},
		{30, 100},
		{45, 100},
	}

	for _, tt := range tests {
		if got := interpolate(tt.rate, savingsCurve); got != tt.want {
			t.Errorf("interpolate(%v) = %d, want %d", tt.rate, got, tt.want)
		}
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		overall int
		want    models.Grade
	}{
		{100, models.GradeExcellent},
		{70, models.GradeExcellent},
		{69, models.GradeGood},
		{50, models.GradeGood},
		{49, models.GradeFair},
		{30, models.GradeFair},
		{29, models.GradePoor},
		{0, models.GradePoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.overall), "overall %d", tt.overall)
	}
}

func TestCalculateWithNoData(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	score := New(DefaultOptions()).Calculate(nil, nil, nil, now)

	require.Len(t, score.Components, 5)
	scores := make([]int, len(score.Components))
	var weights float64
	for i, c := range score.Components {
		scores[i] = c.Score
		weights += c.Weight
	}
	assert.Equal(t, []int{0, 100, 50, 50, 0}, scores)
	assert.InDelta(t, 1.0, weights, 1e-9)

	// 0*.30 + 100*.25 + 50*.20 + 50*.15 + 0*.10 = 42.5
	assert.Equal(t, 43, score.Overall)
	assert.Equal(t, models.GradeFair, score.Grade)
}

func TestCalculate(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		{Type: models.Income, CategoryID: "salary", Amount: 1000, Date: "2024-04-01"},
		{Type: models.Expense, CategoryID: "food", Amount: 250, Date: "2024-04-02"},
		{Type: models.Expense, CategoryID: "fun", Amount: 200, Date: "2024-04-03"},
		{Type: models.Expense, CategoryID: "rent", Amount: 300, Date: "2024-04-03"},
		{Type: models.Expense, CategoryID: "rent", Amount: 1000, Date: "2024-03-15"},
		{Type: models.Expense, CategoryID: "rent", Amount: 9999, Date: "2024-01-15"},
	}
	budgetList := []models.Budget{
		{CategoryID: "food", Amount: 500, IsActive: true},
		{CategoryID: "fun", Amount: 100, IsActive: true},
		{CategoryID: "rent", Amount: 1, IsActive: false},
	}
	goals := []models.SavingsGoal{
		{TargetAmount: 100, CurrentAmount: 50},
		{TargetAmount: 200, CurrentAmount: 300},
	}

	score := New(DefaultOptions()).Calculate(txs, budgetList, goals, now)

	byLabel := make(map[string]int)
	for _, c := range score.Components {
		byLabel[c.Label] = c.Score
	}
	assert.Equal(t, 90, byLabel["Savings Rate"])      // 25% savings rate
	assert.Equal(t, 25, byLabel["Budget Adherence"])  // (50 + 0) / 2
	assert.Equal(t, 100, byLabel["Spending Trend"])   // -25% clamps to 100
	assert.Equal(t, 75, byLabel["Goal Progress"])     // (0.5 + 1) / 2
	assert.Equal(t, 45, byLabel["Consistency"])       // 3 of 10 days * 1.5
	assert.Equal(t, 69, score.Overall)
	assert.Equal(t, models.GradeGood, score.Grade)
}

func TestTrendScore(t *testing.T) {
	e := New(DefaultOptions())
	assert.Equal(t, 50, e.trendScore(100, 0))
	assert.Equal(t, 50, e.trendScore(100, 100))
	assert.Equal(t, 25, e.trendScore(110, 100))
	assert.Equal(t, 0, e.trendScore(200, 100))
	assert.Equal(t, 75, e.trendScore(90, 100))

	gentle := New(Options{TrendMultiplier: 1, ConsistencyMultiplier: 1.5})
	assert.Equal(t, 40, gentle.trendScore(110, 100))
}

func TestConsistencyScore(t *testing.T) {
	e := New(DefaultOptions())
	assert.Equal(t, 100, e.consistencyScore(10, 10))
	assert.Equal(t, 100, e.consistencyScore(7, 10))
	assert.Equal(t, 15, e.consistencyScore(1, 10))
	assert.Equal(t, 0, e.consistencyScore(0, 1))
}

func TestOverallAlwaysInRange(t *testing.T) {
	now := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	e := New(DefaultOptions())

	cases := [][]models.Transaction{
		nil,
		{{Type: models.Expense, Amount: 1e9, Date: "2024-02-01", CategoryID: "x"}},
		{{Type: models.Income, Amount: 1e9, Date: "2024-02-01", CategoryID: "x"}},
		{{Type: models.Expense, Amount: 5, Date: "2024-02-10"}, {Type: models.Expense, Amount: 1, Date: "2024-01-10"}},
	}
	for _, txs := range cases {
		score := e.Calculate(txs, []models.Budget{{CategoryID: "x", Amount: 0, IsActive: true}}, nil, now)
		assert.GreaterOrEqual(t, score.Overall, 0)
		assert.LessOrEqual(t, score.Overall, 100)
	}
}
