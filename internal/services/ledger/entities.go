package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetlens/internal/models"
	"budgetlens/internal/money"
	"budgetlens/internal/services/daterange"
	"budgetlens/internal/services/recurrence"
)

func txID(t models.Transaction) string { return t.ID }
func categoryID(c models.Category) string { return c.ID }
func budgetID(b models.Budget) string { return b.ID }
func goalID(g models.SavingsGoal) string { return g.ID }
func ruleID(r models.RecurringRule) string { return r.ID }

// Transactions returns a copy of every transaction
func (l *Ledger) Transactions() ([]models.Transaction, error) {
	d, err := l.Snapshot()
	return d.Transactions, err
}

// Categories returns a copy of every category ordered by sortOrder
func (l *Ledger) Categories() ([]models.Category, error) {
	d, err := l.Snapshot()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(d.Categories, func(i, j int) bool {
		return d.Categories[i].SortOrder < d.Categories[j].SortOrder
	})
	return d.Categories, nil
}

// Budgets returns a copy of every budget
func (l *Ledger) Budgets() ([]models.Budget, error) {
	d, err := l.Snapshot()
	return d.Budgets, err
}

// Goals returns a copy of every savings goal
func (l *Ledger) Goals() ([]models.SavingsGoal, error) {
	d, err := l.Snapshot()
	return d.Goals, err
}

// RecurringRules returns a copy of every recurring rule
func (l *Ledger) RecurringRules() ([]models.RecurringRule, error) {
	d, err := l.Snapshot()
	return d.RecurringRules, err
}

// roundAmounts stores amounts at cent precision so split sums and exports
// agree with what the user typed.
func roundAmounts(tx models.Transaction) models.Transaction {
	tx.Amount = money.Round(tx.Amount)
	if len(tx.Splits) > 0 {
		splits := make([]models.Split, len(tx.Splits))
		for i, s := range tx.Splits {
			s.Amount = money.Round(s.Amount)
			splits[i] = s
		}
		tx.Splits = splits
	}
	return tx
}

func validateTransaction(tx models.Transaction) error {
	if !tx.Type.Valid() {
		return invalid("type must be income or expense")
	}
	if tx.Amount <= 0 {
		return invalid("amount must be positive")
	}
	if _, err := daterange.Parse(tx.Date); err != nil {
		return invalid("invalid date %q (expected YYYY-MM-DD)", tx.Date)
	}
	if !tx.SplitsBalanced() {
		return invalid("splits must add up to the transaction amount")
	}
	return nil
}

// AddTransaction validates and stores tx, assigning an id and timestamps
func (l *Ledger) AddTransaction(tx models.Transaction) (models.Transaction, error) {
	added, err := l.AddTransactions([]models.Transaction{tx})
	if err != nil {
		return models.Transaction{}, err
	}
	return added[0], nil
}

// AddTransactions stores a batch atomically: either every transaction is
// valid and saved, or none is.
func (l *Ledger) AddTransactions(txs []models.Transaction) ([]models.Transaction, error) {
	added := make([]models.Transaction, 0, len(txs))
	err := l.update(func(d *models.Dataset, now time.Time) error {
		for i, tx := range txs {
			tx = roundAmounts(tx)
			if err := validateTransaction(tx); err != nil {
				if len(txs) > 1 {
					return fmt.Errorf("transaction %d: %w", i+1, err)
				}
				return err
			}
			if tx.ID == "" {
				tx.ID = uuid.New().String()
			} else if indexOf(d.Transactions, tx.ID, txID) >= 0 {
				return invalid("duplicate transaction id %q", tx.ID)
			}
			tx.CreatedAt = now
			tx.UpdatedAt = now
			d.Transactions = append(d.Transactions, tx)
			added = append(added, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Int("count", len(added)).Msg("Transactions added")
	return added, nil
}

// UpdateTransaction replaces the transaction with the same id, keeping its
// creation time.
func (l *Ledger) UpdateTransaction(tx models.Transaction) (models.Transaction, error) {
	tx = roundAmounts(tx)
	if err := validateTransaction(tx); err != nil {
		return models.Transaction{}, err
	}
	err := l.update(func(d *models.Dataset, now time.Time) error {
		i := indexOf(d.Transactions, tx.ID, txID)
		if i < 0 {
			return ErrNotFound
		}
		tx.CreatedAt = d.Transactions[i].CreatedAt
		tx.UpdatedAt = now
		d.Transactions[i] = tx
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

// DeleteTransaction removes a transaction by id
func (l *Ledger) DeleteTransaction(id string) error {
	return l.update(func(d *models.Dataset, _ time.Time) error {
		var err error
		d.Transactions, err = remove(d.Transactions, id, txID)
		return err
	})
}

// AddCategory stores a new user category
func (l *Ledger) AddCategory(c models.Category) (models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return models.Category{}, invalid("name is required")
	}
	switch c.Type {
	case models.CategoryIncome, models.CategoryExpense, models.CategoryBoth:
	default:
		return models.Category{}, invalid("type must be income, expense or both")
	}

	err := l.update(func(d *models.Dataset, _ time.Time) error {
		c.ID = uuid.New().String()
		c.IsDefault = false
		if c.SortOrder == 0 {
			for _, existing := range d.Categories {
				c.SortOrder = max(c.SortOrder, existing.SortOrder)
			}
			c.SortOrder++
		}
		d.Categories = append(d.Categories, c)
		return nil
	})
	if err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a user category. Default categories and categories
// still referenced by a transaction, split, budget or recurring rule are
// refused with ErrCategoryInUse.
func (l *Ledger) DeleteCategory(id string) error {
	return l.update(func(d *models.Dataset, _ time.Time) error {
		i := indexOf(d.Categories, id, categoryID)
		if i < 0 {
			return ErrNotFound
		}
		if d.Categories[i].IsDefault {
			return fmt.Errorf("%w: default categories cannot be deleted", ErrCategoryInUse)
		}
		if what := referencedBy(*d, id); what != "" {
			return fmt.Errorf("%w: referenced by %s", ErrCategoryInUse, what)
		}
		d.Categories = append(d.Categories[:i:i], d.Categories[i+1:]...)
		return nil
	})
}

func referencedBy(d models.Dataset, id string) string {
	for _, tx := range d.Transactions {
		for _, part := range tx.EffectiveCategories() {
			if part.CategoryID == id {
				return "a transaction"
			}
		}
	}
	for _, b := range d.Budgets {
		if b.CategoryID == id {
			return "a budget"
		}
	}
	for _, r := range d.RecurringRules {
		if r.TransactionTemplate.CategoryID == id {
			return "a recurring rule"
		}
	}
	return ""
}

// SaveBudget creates the budget when its id is empty or unknown, otherwise
// replaces it.
func (l *Ledger) SaveBudget(b models.Budget) (models.Budget, error) {
	if b.CategoryID == "" {
		return models.Budget{}, invalid("category is required")
	}
	if b.Amount <= 0 {
		return models.Budget{}, invalid("amount must be positive")
	}
	switch b.Period {
	case models.PeriodMonthly, models.PeriodWeekly:
	case "":
		b.Period = models.PeriodMonthly
	default:
		return models.Budget{}, invalid("period must be weekly or monthly")
	}

	err := l.update(func(d *models.Dataset, now time.Time) error {
		if i := indexOf(d.Budgets, b.ID, budgetID); b.ID != "" && i >= 0 {
			b.CreatedAt = d.Budgets[i].CreatedAt
			d.Budgets[i] = b
			return nil
		}
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		b.CreatedAt = now
		d.Budgets = append(d.Budgets, b)
		return nil
	})
	if err != nil {
		return models.Budget{}, err
	}
	return b, nil
}

// DeleteBudget removes a budget by id
func (l *Ledger) DeleteBudget(id string) error {
	return l.update(func(d *models.Dataset, _ time.Time) error {
		var err error
		d.Budgets, err = remove(d.Budgets, id, budgetID)
		return err
	})
}

// SaveGoal creates or replaces a savings goal
func (l *Ledger) SaveGoal(g models.SavingsGoal) (models.SavingsGoal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return models.SavingsGoal{}, invalid("name is required")
	}
	if g.TargetAmount <= 0 {
		return models.SavingsGoal{}, invalid("target amount must be positive")
	}
	if g.Deadline != "" {
		if _, err := daterange.Parse(g.Deadline); err != nil {
			return models.SavingsGoal{}, invalid("invalid deadline %q", g.Deadline)
		}
	}

	err := l.update(func(d *models.Dataset, now time.Time) error {
		if i := indexOf(d.Goals, g.ID, goalID); g.ID != "" && i >= 0 {
			g.CreatedAt = d.Goals[i].CreatedAt
			d.Goals[i] = g
			return nil
		}
		if g.ID == "" {
			g.ID = uuid.New().String()
		}
		g.CreatedAt = now
		d.Goals = append(d.Goals, g)
		return nil
	})
	if err != nil {
		return models.SavingsGoal{}, err
	}
	return g, nil
}

// DeleteGoal removes a savings goal by id
func (l *Ledger) DeleteGoal(id string) error {
	return l.update(func(d *models.Dataset, _ time.Time) error {
		var err error
		d.Goals, err = remove(d.Goals, id, goalID)
		return err
	})
}

func validateRule(r models.RecurringRule) error {
	if !r.Frequency.Valid() {
		return invalid("unknown frequency %q", r.Frequency)
	}
	start, err := daterange.Parse(r.StartDate)
	if err != nil {
		return invalid("invalid start date %q", r.StartDate)
	}
	if r.EndDate != "" {
		end, err := daterange.Parse(r.EndDate)
		if err != nil {
			return invalid("invalid end date %q", r.EndDate)
		}
		if end.Before(start) {
			return invalid("end date is before start date")
		}
	}
	if r.LastGeneratedDate != "" {
		if _, err := daterange.Parse(r.LastGeneratedDate); err != nil {
			return invalid("invalid last generated date %q", r.LastGeneratedDate)
		}
	}
	tmpl := r.TransactionTemplate
	return validateTransaction(models.Transaction{
		Type:       tmpl.Type,
		Amount:     tmpl.Amount,
		CategoryID: tmpl.CategoryID,
		Date:       r.StartDate,
		Splits:     tmpl.Splits,
	})
}

// SaveRecurring creates or replaces a recurring rule
func (l *Ledger) SaveRecurring(r models.RecurringRule) (models.RecurringRule, error) {
	if err := validateRule(r); err != nil {
		return models.RecurringRule{}, err
	}

	err := l.update(func(d *models.Dataset, _ time.Time) error {
		if i := indexOf(d.RecurringRules, r.ID, ruleID); r.ID != "" && i >= 0 {
			d.RecurringRules[i] = r
			return nil
		}
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		d.RecurringRules = append(d.RecurringRules, r)
		return nil
	})
	if err != nil {
		return models.RecurringRule{}, err
	}
	return r, nil
}

// DeleteRecurring removes a recurring rule. Transactions it already
// generated are kept.
func (l *Ledger) DeleteRecurring(id string) error {
	return l.update(func(d *models.Dataset, _ time.Time) error {
		var err error
		d.RecurringRules, err = remove(d.RecurringRules, id, ruleID)
		return err
	})
}

// ConfirmRecurring materializes one transaction per date from the rule's
// template and advances the rule's lastGeneratedDate to the latest
// confirmed date. Both changes are persisted together.
func (l *Ledger) ConfirmRecurring(id string, dates []string) ([]models.Transaction, error) {
	if len(dates) == 0 {
		return nil, invalid("no dates to confirm")
	}
	for _, date := range dates {
		if _, err := daterange.Parse(date); err != nil {
			return nil, invalid("invalid date %q (expected YYYY-MM-DD)", date)
		}
	}

	var created []models.Transaction
	err := l.update(func(d *models.Dataset, now time.Time) error {
		i := indexOf(d.RecurringRules, id, ruleID)
		if i < 0 {
			return ErrNotFound
		}
		rule := d.RecurringRules[i]

		latest := rule.LastGeneratedDate
		for _, date := range dates {
			tx := recurrence.Materialize(rule, date, now)
			d.Transactions = append(d.Transactions, tx)
			created = append(created, tx)
			if date > latest {
				latest = date
			}
		}
		rule.LastGeneratedDate = latest
		d.RecurringRules[i] = rule
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info().
		Str("rule_id", id).
		Int("count", len(created)).
		Msg("Recurring transactions confirmed")
	return created, nil
}
