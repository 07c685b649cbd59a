package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetlens/internal/config"
	"budgetlens/internal/models"
)

func TestRender(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	data := models.Dataset{
		Categories: models.DefaultCategories(),
		Transactions: []models.Transaction{
			{ID: "1", Type: models.Income, Amount: 3000, CategoryID: "cat-salary", Description: "Pay", Date: "2024-06-01"},
			{ID: "2", Type: models.Expense, Amount: 1234.5, CategoryID: "cat-housing", Description: "Rent", Merchant: "Landlord", Date: "2024-06-02"},
		},
		Budgets: []models.Budget{
			{ID: "b1", CategoryID: "cat-housing", Amount: 1500, Period: models.PeriodMonthly, IsActive: true},
		},
		RecurringRules: []models.RecurringRule{{
			ID: "r1",
			TransactionTemplate: models.TransactionTemplate{
				Type: models.Expense, Amount: 15, CategoryID: "cat-subscriptions", Description: "Streaming",
			},
			Frequency: models.FreqMonthly,
			StartDate: "2024-06-10",
			IsActive:  true,
		}},
	}

	rep := Build(data, config.DefaultThresholds(), now, 2024)
	require.Len(t, rep.Budgets, 1)
	require.Len(t, rep.Due, 1)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rep))
	out := buf.String()

	for _, want := range []string{
		"budgetlens report for Saturday, June 15, 2024",
		"Financial health",
		"Housing",
		"$1,234.50 of $1,500.00",
		"Streaming",
		"2024-06-10",
		"2024 in review",
		"$3,000.00",
		"Landlord",
	} {
		assert.Contains(t, out, want)
	}
	// a buffer is not a terminal
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderEmptyLedger(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rep := Build(models.Dataset{Categories: models.DefaultCategories()}, config.DefaultThresholds(), now, 2024)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rep))
	assert.Contains(t, buf.String(), "No active budgets")
	assert.NotContains(t, buf.String(), "Recurring due")
}
