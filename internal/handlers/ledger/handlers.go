// Package ledger serves CRUD endpoints for transactions, categories, budgets
// and savings goals.
package ledger

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apphttp "budgetlens/internal/http"
	"budgetlens/internal/models"
	"budgetlens/internal/services/daterange"
	"budgetlens/internal/services/ledger"
)

var store *ledger.Ledger

// Initialize sets up the ledger package with required dependencies
func Initialize(l *ledger.Ledger) {
	store = l
}

// RegisterRoutes registers all ledger routes
func RegisterRoutes(r chi.Router) {
	r.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", handleListTransactions)
		r.Post("/", handleCreateTransaction)
		r.Put("/{id}", handleUpdateTransaction)
		r.Delete("/{id}", handleDeleteTransaction)
	})
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", handleListCategories)
		r.Post("/", handleCreateCategory)
		r.Delete("/{id}", handleDeleteCategory)
	})
	r.Route("/api/budgets", func(r chi.Router) {
		r.Get("/", handleListBudgets)
		r.Post("/", handleSaveBudget)
		r.Delete("/{id}", handleDeleteBudget)
	})
	r.Route("/api/goals", func(r chi.Router) {
		r.Get("/", handleListGoals)
		r.Post("/", handleSaveGoal)
		r.Delete("/{id}", handleDeleteGoal)
	})
}

// handleListTransactions returns transactions newest first, optionally
// filtered by ?start=&end=, ?type=, ?q= and capped by ?limit=.
func handleListTransactions(w http.ResponseWriter, r *http.Request) {
	window, err := apphttp.RangeParams(r, "start", "end", daterange.Range{})
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	q := r.URL.Query()

	txs, err := store.Transactions()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	set := models.NewTransactionSet(txs)
	if window != (daterange.Range{}) {
		set = set.FilterByDateRange(window)
	}
	if t := models.TransactionType(q.Get("type")); t != "" {
		if !t.Valid() {
			apphttp.ErrorResponse(w, r, "type must be income or expense", http.StatusBadRequest)
			return
		}
		set = set.FilterByType(t)
	}
	if search := q.Get("q"); search != "" {
		set = set.FilterBySearch(search)
	}
	set = set.SortByDateDesc()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			apphttp.ErrorResponse(w, r, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		set = set.Limit(n)
	}

	result := set.Transactions
	if result == nil {
		result = []models.Transaction{}
	}
	apphttp.OK(w, r, result)
}

func handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := apphttp.DecodeJSON(w, r, &tx); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	tx.ID = ""
	created, err := store.AddTransaction(tx)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusCreated, created)
}

func handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := apphttp.DecodeJSON(w, r, &tx); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	tx.ID = chi.URLParam(r, "id")
	updated, err := store.UpdateTransaction(tx)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, updated)
}

func handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteTransaction(chi.URLParam(r, "id")); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := store.Categories()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, cats)
}

func handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := apphttp.DecodeJSON(w, r, &c); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	created, err := store.AddCategory(c)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusCreated, created)
}

func handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleListBudgets(w http.ResponseWriter, r *http.Request) {
	list, err := store.Budgets()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if list == nil {
		list = []models.Budget{}
	}
	apphttp.OK(w, r, list)
}

func handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	var b models.Budget
	if err := apphttp.DecodeJSON(w, r, &b); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	saved, err := store.SaveBudget(b)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, saved)
}

func handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteBudget(chi.URLParam(r, "id")); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := store.Goals()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if goals == nil {
		goals = []models.SavingsGoal{}
	}
	apphttp.OK(w, r, goals)
}

func handleSaveGoal(w http.ResponseWriter, r *http.Request) {
	var g models.SavingsGoal
	if err := apphttp.DecodeJSON(w, r, &g); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	saved, err := store.SaveGoal(g)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, saved)
}

func handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteGoal(chi.URLParam(r, "id")); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
