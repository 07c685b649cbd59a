package models

// Dataset is a full snapshot of every entity the ledger owns
type Dataset struct {
	Transactions   []Transaction   `json:"transactions"`
	Categories     []Category      `json:"categories"`
	Budgets        []Budget        `json:"budgets"`
	Goals          []SavingsGoal   `json:"goals"`
	RecurringRules []RecurringRule `json:"recurringRules"`
}

// Clone returns a copy whose slices do not alias the receiver's
func (d Dataset) Clone() Dataset {
	return Dataset{
		Transactions:   append([]Transaction(nil), d.Transactions...),
		Categories:     append([]Category(nil), d.Categories...),
		Budgets:        append([]Budget(nil), d.Budgets...),
		Goals:          append([]SavingsGoal(nil), d.Goals...),
		RecurringRules: append([]RecurringRule(nil), d.RecurringRules...),
	}
}
