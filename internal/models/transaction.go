package models

import (
	"sort"
	"strings"
	"time"

	"budgetlens/internal/money"
	"budgetlens/internal/services/daterange"
)

// TransactionType indicates whether a transaction is income or an expense
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Split allocates part of a transaction's amount to a category
type Split struct {
	CategoryID  string  `json:"categoryId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// Transaction represents a single income or expense entry
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	CategoryID  string          `json:"categoryId"`
	Description string          `json:"description"`
	Merchant    string          `json:"merchant,omitempty"`
	Date        string          `json:"date"` // YYYY-MM-DD
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Tags        []string        `json:"tags,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Splits      []Split         `json:"splits,omitempty"`
	IsRecurring bool            `json:"isRecurring,omitempty"`
	RecurringID string          `json:"recurringId,omitempty"`
}

// EffectiveCategories returns the category allocation of the transaction:
// its splits when present, otherwise a single entry for the whole amount.
func (t Transaction) EffectiveCategories() []Split {
	if len(t.Splits) > 0 {
		return t.Splits
	}
	return []Split{{CategoryID: t.CategoryID, Amount: t.Amount}}
}

// SplitsBalanced reports whether the splits sum to the transaction amount at
// cent precision. A transaction without splits is always balanced.
func (t Transaction) SplitsBalanced() bool {
	if len(t.Splits) == 0 {
		return true
	}
	parts := make([]float64, len(t.Splits))
	for i, s := range t.Splits {
		parts[i] = s.Amount
	}
	return money.Equal(money.Sum(parts...), t.Amount)
}

// TransactionSet wraps a slice with filtering/aggregation methods
type TransactionSet struct {
	Transactions []Transaction
}

// NewTransactionSet creates a new TransactionSet from a slice
func NewTransactionSet(transactions []Transaction) *TransactionSet {
	return &TransactionSet{Transactions: transactions}
}

// Len returns the number of transactions
func (ts *TransactionSet) Len() int {
	return len(ts.Transactions)
}

// FilterByType returns transactions of the specified type
func (ts *TransactionSet) FilterByType(tt TransactionType) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if t.Type == tt {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterByDateRange returns transactions within the date range (inclusive)
func (ts *TransactionSet) FilterByDateRange(r daterange.Range) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if r.Contains(t.Date) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// FilterBySearch returns transactions matching the search term in
// description or merchant
func (ts *TransactionSet) FilterBySearch(search string) *TransactionSet {
	result := &TransactionSet{}
	searchLower := strings.ToLower(search)
	for _, t := range ts.Transactions {
		if strings.Contains(strings.ToLower(t.Description), searchLower) ||
			strings.Contains(strings.ToLower(t.Merchant), searchLower) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// Partition splits the set into current and previous windows in one pass.
// Transactions outside both windows are dropped.
func (ts *TransactionSet) Partition(current, previous daterange.Range) (cur, prev *TransactionSet) {
	cur, prev = &TransactionSet{}, &TransactionSet{}
	for _, t := range ts.Transactions {
		switch {
		case current.Contains(t.Date):
			cur.Transactions = append(cur.Transactions, t)
		case previous.Contains(t.Date):
			prev.Transactions = append(prev.Transactions, t)
		}
	}
	return cur, prev
}

// SumAmount returns the sum of all transaction amounts
func (ts *TransactionSet) SumAmount() float64 {
	var sum float64
	for _, t := range ts.Transactions {
		sum += t.Amount
	}
	return sum
}

// Totals returns income and expense sums in a single pass
func (ts *TransactionSet) Totals() (income, expenses float64) {
	for _, t := range ts.Transactions {
		switch t.Type {
		case Income:
			income += t.Amount
		case Expense:
			expenses += t.Amount
		}
	}
	return income, expenses
}

// CategoryTotals returns split-aware category -> total for transactions of
// the given type, plus the category ids in order of first appearance.
func (ts *TransactionSet) CategoryTotals(tt TransactionType) (map[string]float64, []string) {
	totals := make(map[string]float64)
	var order []string
	for _, t := range ts.Transactions {
		if t.Type != tt {
			continue
		}
		for _, part := range t.EffectiveCategories() {
			if _, seen := totals[part.CategoryID]; !seen {
				order = append(order, part.CategoryID)
			}
			totals[part.CategoryID] += part.Amount
		}
	}
	return totals, order
}

// DailyExpenses returns date -> total expense amount
func (ts *TransactionSet) DailyExpenses() map[string]float64 {
	result := make(map[string]float64)
	for _, t := range ts.Transactions {
		if t.Type == Expense {
			result[t.Date] += t.Amount
		}
	}
	return result
}

// DistinctDates returns the number of different dates in the set
func (ts *TransactionSet) DistinctDates() int {
	seen := make(map[string]struct{})
	for _, t := range ts.Transactions {
		seen[t.Date] = struct{}{}
	}
	return len(seen)
}

// SortByDateDesc sorts transactions newest first. Same-day entries keep the
// most recently created first.
func (ts *TransactionSet) SortByDateDesc() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return &TransactionSet{Transactions: sorted}
}

// Limit returns at most n transactions from the front of the set
func (ts *TransactionSet) Limit(n int) *TransactionSet {
	if n < 0 || n >= len(ts.Transactions) {
		return ts.Copy()
	}
	limited := make([]Transaction, n)
	copy(limited, ts.Transactions[:n])
	return &TransactionSet{Transactions: limited}
}

// Copy creates a shallow copy of the TransactionSet
func (ts *TransactionSet) Copy() *TransactionSet {
	copied := make([]Transaction, len(ts.Transactions))
	copy(copied, ts.Transactions)
	return &TransactionSet{Transactions: copied}
}
