package models

// CategoryType restricts which transactions a category applies to
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"
)

// Placeholder values substituted when a transaction references a category
// that no longer exists.
const (
	UnknownCategoryName  = "Unknown"
	UnknownCategoryColor = "#888"
	UnknownCategoryIcon  = "help-circle"
)

// Category groups transactions for budgeting and reporting
type Category struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	Icon      string       `json:"icon"`
	Color     string       `json:"color"`
	IsDefault bool         `json:"isDefault"`
	SortOrder int          `json:"sortOrder"`
}

// CategoryIndex is an id -> category lookup table
type CategoryIndex map[string]Category

// NewCategoryIndex indexes categories by id
func NewCategoryIndex(categories []Category) CategoryIndex {
	idx := make(CategoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

// Lookup returns the category with the given id and whether it exists
func (idx CategoryIndex) Lookup(id string) (Category, bool) {
	c, ok := idx[id]
	return c, ok
}

// Resolve returns the category with the given id, or a placeholder carrying
// the same id when it is missing:
//   - Name:  "Unknown"
//   - Color: "#888"
//   - Icon:  "help-circle"
//   - Type:  "both"
func (idx CategoryIndex) Resolve(id string) Category {
	if c, ok := idx.Lookup(id); ok {
		return c
	}
	return Category{
		ID:    id,
		Name:  UnknownCategoryName,
		Type:  CategoryBoth,
		Icon:  UnknownCategoryIcon,
		Color: UnknownCategoryColor,
	}
}

// NameOr returns the category name, or fallback when the id is unknown.
func (idx CategoryIndex) NameOr(id, fallback string) string {
	if c, ok := idx.Lookup(id); ok {
		return c.Name
	}
	return fallback
}

// DefaultCategories returns the categories seeded into an empty ledger
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat-groceries", Name: "Groceries", Type: CategoryExpense, Icon: "shopping-cart", Color: "#10b981", IsDefault: true, SortOrder: 1},
		{ID: "cat-dining", Name: "Dining Out", Type: CategoryExpense, Icon: "utensils", Color: "#f97316", IsDefault: true, SortOrder: 2},
		{ID: "cat-transport", Name: "Transport", Type: CategoryExpense, Icon: "car", Color: "#3b82f6", IsDefault: true, SortOrder: 3},
		{ID: "cat-entertainment", Name: "Entertainment", Type: CategoryExpense, Icon: "gamepad-2", Color: "#8b5cf6", IsDefault: true, SortOrder: 4},
		{ID: "cat-shopping", Name: "Shopping", Type: CategoryExpense, Icon: "shopping-bag", Color: "#ec4899", IsDefault: true, SortOrder: 5},
		{ID: "cat-health", Name: "Health", Type: CategoryExpense, Icon: "heart-pulse", Color: "#ef4444", IsDefault: true, SortOrder: 6},
		{ID: "cat-utilities", Name: "Utilities", Type: CategoryExpense, Icon: "zap", Color: "#eab308", IsDefault: true, SortOrder: 7},
		{ID: "cat-housing", Name: "Housing", Type: CategoryExpense, Icon: "home", Color: "#6366f1", IsDefault: true, SortOrder: 8},
		{ID: "cat-education", Name: "Education", Type: CategoryExpense, Icon: "graduation-cap", Color: "#0ea5e9", IsDefault: true, SortOrder: 9},
		{ID: "cat-subscriptions", Name: "Subscriptions", Type: CategoryExpense, Icon: "repeat", Color: "#a855f7", IsDefault: true, SortOrder: 10},
		{ID: "cat-personal-care", Name: "Personal Care", Type: CategoryExpense, Icon: "sparkles", Color: "#f472b6", IsDefault: true, SortOrder: 11},
		{ID: "cat-gifts", Name: "Gifts", Type: CategoryExpense, Icon: "gift", Color: "#fb923c", IsDefault: true, SortOrder: 12},
		{ID: "cat-travel", Name: "Travel", Type: CategoryExpense, Icon: "plane", Color: "#14b8a6", IsDefault: true, SortOrder: 13},

		{ID: "cat-salary", Name: "Salary", Type: CategoryIncome, Icon: "briefcase", Color: "#10b981", IsDefault: true, SortOrder: 14},
		{ID: "cat-freelance", Name: "Freelance", Type: CategoryIncome, Icon: "laptop", Color: "#6366f1", IsDefault: true, SortOrder: 15},
		{ID: "cat-investments", Name: "Investments", Type: CategoryIncome, Icon: "trending-up", Color: "#0ea5e9", IsDefault: true, SortOrder: 16},
		{ID: "cat-refunds", Name: "Refunds", Type: CategoryIncome, Icon: "rotate-ccw", Color: "#f59e0b", IsDefault: true, SortOrder: 17},
		{ID: "cat-other-income", Name: "Other Income", Type: CategoryIncome, Icon: "coins", Color: "#8b5cf6", IsDefault: true, SortOrder: 18},
	}
}
