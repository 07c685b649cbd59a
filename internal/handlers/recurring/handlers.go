// Package recurring serves recurring rules, their due occurrences and the
// monthly bill calendar.
package recurring

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apphttp "budgetlens/internal/http"
	"budgetlens/internal/logger"
	"budgetlens/internal/models"
	"budgetlens/internal/services/ledger"
	"budgetlens/internal/services/recurrence"
)

var (
	store *ledger.Ledger
	clock func() time.Time
)

// Initialize sets up the recurring package with required dependencies
func Initialize(l *ledger.Ledger, now func() time.Time) {
	store = l
	clock = now
}

// RegisterRoutes registers all recurring routes
func RegisterRoutes(r chi.Router) {
	r.Route("/api/recurring", func(r chi.Router) {
		r.Get("/", handleList)
		r.Post("/", handleSave)
		r.Get("/due", handleDue)
		r.Get("/calendar", handleCalendar)
		r.Delete("/{id}", handleDelete)
		r.Post("/{id}/confirm", handleConfirm)
	})
}

func handleList(w http.ResponseWriter, r *http.Request) {
	rules, err := store.RecurringRules()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if rules == nil {
		rules = []models.RecurringRule{}
	}
	apphttp.OK(w, r, rules)
}

func handleSave(w http.ResponseWriter, r *http.Request) {
	var rule models.RecurringRule
	if err := apphttp.DecodeJSON(w, r, &rule); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	saved, err := store.SaveRecurring(rule)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.JSON(w, r, http.StatusCreated, saved)
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteRecurring(chi.URLParam(r, "id")); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleDue(w http.ResponseWriter, r *http.Request) {
	today, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	rules, err := store.RecurringRules()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, recurrence.FindDue(rules, today))
}

func handleCalendar(w http.ResponseWriter, r *http.Request) {
	today, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	month, err := apphttp.MonthParam(r, "month", today)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	rules, err := store.RecurringRules()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, recurrence.BillCalendar(rules, month, today))
}

type confirmRequest struct {
	Dates []string `json:"dates"`
}

// handleConfirm materializes the given dates. Without dates it confirms
// everything currently due for the rule.
func handleConfirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req confirmRequest
	if r.ContentLength != 0 {
		if err := apphttp.DecodeJSON(w, r, &req); err != nil {
			apphttp.Error(w, r, err)
			return
		}
	}

	if len(req.Dates) == 0 {
		today, err := apphttp.ReferenceDate(r, clock())
		if err != nil {
			apphttp.Error(w, r, err)
			return
		}
		rules, err := store.RecurringRules()
		if err != nil {
			apphttp.Error(w, r, err)
			return
		}
		if !hasRule(rules, id) {
			apphttp.Error(w, r, ledger.ErrNotFound)
			return
		}
		for _, due := range recurrence.FindDue(rules, today) {
			if due.Rule.ID == id {
				req.Dates = due.DueDates
			}
		}
		if len(req.Dates) == 0 {
			apphttp.OK(w, r, []models.Transaction{})
			return
		}
	}

	created, err := store.ConfirmRecurring(id, req.Dates)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Debug().Str("rule_id", id).Strs("dates", req.Dates).Msg("Confirmed recurring dates")
	apphttp.JSON(w, r, http.StatusCreated, created)
}

func hasRule(rules []models.RecurringRule, id string) bool {
	for _, rule := range rules {
		if rule.ID == id {
			return true
		}
	}
	return false
}
