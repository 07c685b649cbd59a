// Package analytics serves the read-only analytics views over the ledger.
package analytics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"budgetlens/internal/config"
	apphttp "budgetlens/internal/http"
	"budgetlens/internal/services/budgets"
	"budgetlens/internal/services/categories"
	"budgetlens/internal/services/daterange"
	"budgetlens/internal/services/healthscore"
	"budgetlens/internal/services/insights"
	"budgetlens/internal/services/ledger"
	"budgetlens/internal/services/metrics"
	"budgetlens/internal/services/waterfall"
	"budgetlens/internal/services/yearreview"
)

var (
	store    *ledger.Ledger
	clock    func() time.Time
	dash     *metrics.Service
	pacing   *budgets.Calculator
	health   *healthscore.Engine
	insight  *insights.Generator
	yearAggr *yearreview.Aggregator
)

// Initialize sets up the analytics package with required dependencies
func Initialize(l *ledger.Ledger, th config.Thresholds, now func() time.Time) {
	store = l
	clock = now
	dash = metrics.New()
	pacing = budgets.New(th.Budgets())
	health = healthscore.New(th.Health())
	insight = insights.New(th.Insights())
	yearAggr = yearreview.New(th.StableBand)
}

// RegisterRoutes registers all analytics routes
func RegisterRoutes(r chi.Router) {
	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/dashboard", handleDashboard)
		r.Get("/categories", handleCategories)
		r.Get("/budgets", handleBudgets)
		r.Get("/health", handleHealth)
		r.Get("/insights", handleInsights)
		r.Get("/streaks", handleStreaks)
		r.Get("/waterfall", handleWaterfall)
		r.Get("/waterfall.png", handleWaterfallPNG)
		r.Get("/year/{year}", handleYear)
	})
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	now, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, dash.Dashboard(data.Transactions, data.Categories, now))
}

func handleCategories(w http.ResponseWriter, r *http.Request) {
	now, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	current, err := apphttp.RangeParams(r, "start", "end", daterange.MonthRange(now))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	previous, err := apphttp.RangeParams(r, "prevStart", "prevEnd", daterange.NMonthsAgoRange(now, 1))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, categories.BreakdownForWindows(data.Transactions, data.Categories, current, previous))
}

func handleBudgets(w http.ResponseWriter, r *http.Request) {
	now, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, pacing.CalculateAll(data.Budgets, data.Transactions, now))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	now, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, health.Calculate(data.Transactions, data.Budgets, data.Goals, now))
}

func handleInsights(w http.ResponseWriter, r *http.Request) {
	now, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, insight.Generate(data.Transactions, data.Categories, data.Budgets, now))
}

func handleStreaks(w http.ResponseWriter, r *http.Request) {
	now, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	txs, err := store.Transactions()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, insights.Streaks(txs, now))
}

func handleWaterfall(w http.ResponseWriter, r *http.Request) {
	now, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, waterfall.Build(data.Transactions, data.Categories, now))
}

func handleWaterfallPNG(w http.ResponseWriter, r *http.Request) {
	now, err := apphttp.ReferenceDate(r, clock())
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	opts := waterfall.DefaultRenderOptions()
	opts.Title = "Cash flow " + now.Format("January 2006")
	png, err := waterfall.RenderPNG(waterfall.Build(data.Transactions, data.Categories, now), opts)
	if errors.Is(err, waterfall.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func handleYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		apphttp.ErrorResponse(w, r, "invalid year "+strconv.Quote(chi.URLParam(r, "year")), http.StatusBadRequest)
		return
	}
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	apphttp.OK(w, r, yearAggr.Build(data.Transactions, data.Categories, year))
}
