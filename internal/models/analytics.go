package models

// CategorySummary aggregates one category's expenses over a window
type CategorySummary struct {
	CategoryID         string  `json:"categoryId"`
	CategoryName       string  `json:"categoryName"`
	Color              string  `json:"color"`
	Total              float64 `json:"total"`
	Count              int     `json:"count"`
	Percentage         float64 `json:"percentage"`
	Trend              float64 `json:"trend"`
	AverageTransaction float64 `json:"averageTransaction"`
}

// BarType is the kind of step in a waterfall chart
type BarType string

const (
	BarIncome  BarType = "income"
	BarExpense BarType = "expense"
	BarNet     BarType = "net"
)

// WaterfallBar is one step of the running balance
type WaterfallBar struct {
	Name       string  `json:"name"`
	CategoryID string  `json:"categoryId,omitempty"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Value      float64 `json:"value"`
	Type       BarType `json:"type"`
	Color      string  `json:"color"`
}

// MonthData is one month of a year review
type MonthData struct {
	Month    string  `json:"month"` // "Jan"
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// HasActivity reports whether any income or expense was recorded
func (m MonthData) HasActivity() bool {
	return m.Income > 0 || m.Expenses > 0
}

// TrendDirection compares two halves of a year
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// HalfYearTrend compares a category's H1 and H2 expenses
type HalfYearTrend struct {
	CategoryID    string         `json:"categoryId"`
	CategoryName  string         `json:"categoryName"`
	Color         string         `json:"color"`
	H1Total       float64        `json:"h1Total"`
	H2Total       float64        `json:"h2Total"`
	Trend         TrendDirection `json:"trend"`
	PercentChange float64        `json:"percentChange"`
}

// MerchantTotal is the accumulated expense at one merchant
type MerchantTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// YearInReview rolls up a calendar year
type YearInReview struct {
	Year              int             `json:"year"`
	Months            []MonthData     `json:"months"`
	TotalIncome       float64         `json:"totalIncome"`
	TotalExpenses     float64         `json:"totalExpenses"`
	TotalNet          float64         `json:"totalNet"`
	AvgMonthlySavings float64         `json:"avgMonthlySavings"`
	BestMonth         *MonthData      `json:"bestMonth"`
	WorstMonth        *MonthData      `json:"worstMonth"`
	CategoryTrends    []HalfYearTrend `json:"categoryTrends"`
	TopMerchant       *MerchantTotal  `json:"topMerchant"`
}
