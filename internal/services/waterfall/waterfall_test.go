package waterfall

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetlens/internal/models"
)

var now = time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

var testCategories = []models.Category{
	{ID: "salary", Name: "Salary", Color: "#10b981"},
	{ID: "freelance", Name: "Freelance", Color: "#6366f1"},
	{ID: "rent", Name: "Rent", Color: "#6366f1"},
	{ID: "food", Name: "Food", Color: "#f97316"},
}

func TestBuildSimple(t *testing.T) {
	txs := []models.Transaction{
		{Type: models.Income, CategoryID: "salary", Amount: 1000, Date: "2024-05-01"},
		{Type: models.Expense, CategoryID: "rent", Amount: 400, Date: "2024-05-02"},
	}

	bars := Build(txs, testCategories, now)
	require.Len(t, bars, 3)

	assert.Equal(t, models.BarIncome, bars[0].Type)
	assert.Equal(t, 0.0, bars[0].Start)
	assert.Equal(t, 1000.0, bars[0].End)

	assert.Equal(t, models.BarExpense, bars[1].Type)
	assert.Equal(t, 1000.0, bars[1].Start)
	assert.Equal(t, 600.0, bars[1].End)
	assert.Equal(t, -400.0, bars[1].Value)
	assert.Equal(t, "#6366f1", bars[1].Color)

	assert.Equal(t, models.BarNet, bars[2].Type)
	assert.Equal(t, "Net", bars[2].Name)
	assert.Equal(t, 0.0, bars[2].Start)
	assert.Equal(t, 600.0, bars[2].End)
	assert.Equal(t, ColorIncome, bars[2].Color)
}

func TestBuildOrderingSplitsAndFallbacks(t *testing.T) {
	txs := []models.Transaction{
		{Type: models.Income, CategoryID: "freelance", Amount: 200, Date: "2024-05-03"},
		{Type: models.Income, CategoryID: "salary", Amount: 900, Date: "2024-05-01"},
		{Type: models.Income, CategoryID: "lottery", Amount: 50, Date: "2024-05-09"},
		{Type: models.Expense, CategoryID: "food", Amount: 300, Date: "2024-05-05", Splits: []models.Split{
			{CategoryID: "food", Amount: 100},
			{CategoryID: "rent", Amount: 200},
		}},
		{Type: models.Expense, CategoryID: "rent", Amount: 1000, Date: "2024-05-01"},
		{Type: models.Expense, CategoryID: "vanished", Amount: 20, Date: "2024-05-06"},
		{Type: models.Expense, CategoryID: "food", Amount: 9999, Date: "2024-04-30"},
	}

	bars := Build(txs, testCategories, now)

	names := make([]string, len(bars))
	for i, b := range bars {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"Salary", "Freelance", "Income", "Rent", "Food", "Expense", "Net"}, names)

	assert.Equal(t, 1150.0, bars[2].End)
	assert.Equal(t, 1200.0, bars[3].Value*-1)
	assert.Equal(t, ColorExpense, bars[5].Color, "unknown expense category falls back to the expense color")

	net := bars[len(bars)-1]
	assert.Equal(t, 1150.0-1320.0, net.End)
	assert.Equal(t, ColorExpense, net.Color)
}

func TestBuildEmptyMonth(t *testing.T) {
	bars := Build(nil, nil, now)
	require.Len(t, bars, 1)
	assert.Equal(t, models.BarNet, bars[0].Type)
	assert.Equal(t, 0.0, bars[0].End)
}

func TestRenderPNG(t *testing.T) {
	txs := []models.Transaction{
		{Type: models.Income, CategoryID: "salary", Amount: 1000, Date: "2024-05-01"},
		{Type: models.Expense, CategoryID: "rent", Amount: 1400, Date: "2024-05-02"},
	}

	png, err := RenderPNG(Build(txs, testCategories, now), DefaultRenderOptions())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestRenderPNGNoData(t *testing.T) {
	_, err := RenderPNG(Build(nil, nil, now), DefaultRenderOptions())
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestValueRange(t *testing.T) {
	low, high := valueRange([]models.WaterfallBar{
		{Start: 0, End: 100},
		{Start: 100, End: -50},
		{Start: 0, End: -50},
	})
	assert.Equal(t, -50.0, low)
	assert.Equal(t, 100.0, high)
}
