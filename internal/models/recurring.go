package models

// Frequency is how often a recurring rule fires
type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqBiweekly Frequency = "biweekly"
	FreqMonthly  Frequency = "monthly"
	FreqYearly   Frequency = "yearly"
)

// Valid reports whether f is a known frequency
func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly, FreqYearly:
		return true
	}
	return false
}

// TransactionTemplate is the part of a transaction a recurring rule copies
// into every occurrence
type TransactionTemplate struct {
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	CategoryID  string          `json:"categoryId"`
	Description string          `json:"description"`
	Merchant    string          `json:"merchant,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Splits      []Split         `json:"splits,omitempty"`
}

// RecurringRule generates transactions on a schedule
type RecurringRule struct {
	ID                  string              `json:"id"`
	TransactionTemplate TransactionTemplate `json:"transactionTemplate"`
	Frequency           Frequency           `json:"frequency"`
	StartDate           string              `json:"startDate"`
	EndDate             string              `json:"endDate,omitempty"`
	LastGeneratedDate   string              `json:"lastGeneratedDate,omitempty"`
	IsActive            bool                `json:"isActive"`
}

// DueRecurring lists the unmaterialized occurrences of a rule
type DueRecurring struct {
	Rule     RecurringRule `json:"rule"`
	DueDates []string      `json:"dueDates"`
}

// CalendarBill is one projected occurrence of a rule inside a month
type CalendarBill struct {
	RuleID      string  `json:"ruleId"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	CategoryID  string  `json:"categoryId"`
	IsPastDue   bool    `json:"isPastDue"`
	IsToday     bool    `json:"isToday"`
}
