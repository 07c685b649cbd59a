package models

// DashboardSummary contains the current-month KPIs and chart series for the
// dashboard
type DashboardSummary struct {
	Date              string            `json:"date"`
	CurrentIncome     float64           `json:"currentIncome"`
	CurrentExpenses   float64           `json:"currentExpenses"`
	NetBalance        float64           `json:"netBalance"`
	SavingsRate       float64           `json:"savingsRate"`
	TransactionCount  int               `json:"transactionCount"`
	CategoryBreakdown []CategorySummary `json:"categoryBreakdown"`
	MonthlyTotals     []MonthlyTotal    `json:"monthlyTotals"`
	DailySpending     []DailyTotal      `json:"dailySpending"`
	Recent            []Transaction     `json:"recentTransactions"`
	Comparison        *PeriodComparison `json:"comparison"`
}

// MonthlyTotal is income and expenses for one month of the trend chart
type MonthlyTotal struct {
	Period   string  `json:"period"` // "Jan"
	Month    string  `json:"month"`  // "2024-01"
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// DailyTotal is total expense for one day
type DailyTotal struct {
	Date  string  `json:"date"`  // "2024-01-05"
	Label string  `json:"label"` // "Jan 5"
	Total float64 `json:"total"`
}

// PeriodComparison holds this month against last month
type PeriodComparison struct {
	HasData bool `json:"hasData"`

	// Percentage changes
	IncomeChange      float64 `json:"incomeChangePct"`
	ExpensesChange    float64 `json:"expensesChangePct"`
	SavingsChange     float64 `json:"savingsChangePct"`
	SavingsRateChange float64 `json:"savingsRateChangePp"` // percentage points
}
