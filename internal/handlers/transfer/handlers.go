// Package transfer serves CSV import plus CSV and JSON export of the ledger.
package transfer

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apphttp "budgetlens/internal/http"
	"budgetlens/internal/logger"
	"budgetlens/internal/models"
	"budgetlens/internal/services/csvio"
	"budgetlens/internal/services/ledger"
)

// MaxUploadBytes caps an uploaded import file
const MaxUploadBytes = 10 << 20

var (
	store *ledger.Ledger
	clock func() time.Time
)

// Initialize sets up the transfer package with required dependencies
func Initialize(l *ledger.Ledger, now func() time.Time) {
	store = l
	clock = now
}

// RegisterRoutes registers import and export routes
func RegisterRoutes(r chi.Router) {
	r.Post("/api/import/csv", handleImportCSV)
	r.Post("/api/import/json", handleImportJSON)
	r.Get("/api/export/csv", handleExportCSV)
	r.Get("/api/export/json", handleExportJSON)
}

type importResponse struct {
	Imported     int                  `json:"imported"`
	Errors       []string             `json:"errors"`
	Transactions []models.Transaction `json:"transactions,omitempty"`
}

// handleImportCSV accepts either a multipart upload in the "file" field or a
// raw CSV body. Column names can be given as query parameters (date, type,
// category, amount, description, merchant, tags, splits); otherwise they are
// detected from the header line. With ?dryRun=true nothing is saved and the
// parsed transactions are returned for review.
func handleImportCSV(w http.ResponseWriter, r *http.Request) {
	content, err := readUpload(w, r)
	if err != nil {
		apphttp.ErrorResponse(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	opts := csvio.Options{
		Mapping: csvio.ColumnMapping{
			Date:        q.Get("date"),
			Type:        q.Get("type"),
			Category:    q.Get("category"),
			Amount:      q.Get("amount"),
			Description: q.Get("description"),
			Merchant:    q.Get("merchant"),
			Tags:        q.Get("tags"),
			Splits:      q.Get("splits"),
		},
		InferType: q.Get("inferType") == "true",
	}

	cats, err := store.Categories()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	result, err := csvio.Import(bytes.NewReader(content), cats, opts, clock())
	if err != nil {
		apphttp.ErrorResponse(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	if q.Get("dryRun") == "true" {
		apphttp.OK(w, r, importResponse{
			Imported:     0,
			Errors:       result.Errors,
			Transactions: result.Transactions,
		})
		return
	}

	saved := []models.Transaction{}
	if len(result.Transactions) > 0 {
		saved, err = store.AddTransactions(result.Transactions)
		if err != nil {
			apphttp.Error(w, r, err)
			return
		}
	}

	log := logger.FromContext(r.Context())
	log.Info().Int("imported", len(saved)).Int("rejected", len(result.Errors)).Msg("CSV import complete")
	apphttp.OK(w, r, importResponse{Imported: len(saved), Errors: result.Errors})
}

// handleImportJSON replaces the whole ledger with a JSON export
func handleImportJSON(w http.ResponseWriter, r *http.Request) {
	content, err := readUpload(w, r)
	if err != nil {
		apphttp.ErrorResponse(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := csvio.ReadJSON(bytes.NewReader(content))
	if err != nil {
		apphttp.ErrorResponse(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	if err := store.Replace(data); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Int("transactions", len(data.Transactions)).Msg("Ledger restored from JSON")
	apphttp.OK(w, r, map[string]int{
		"transactions": len(data.Transactions),
		"budgets":      len(data.Budgets),
		"goals":        len(data.Goals),
		"recurring":    len(data.RecurringRules),
	})
}

func handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}
	txs := models.NewTransactionSet(data.Transactions).SortByDateDesc().Transactions

	var buf bytes.Buffer
	if err := csvio.WriteCSV(&buf, txs, data.Categories); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	attach(w, "text/csv; charset=utf-8", csvio.ExportFilename("csv", clock()))
	w.Write(buf.Bytes())
}

func handleExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := store.Snapshot()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := csvio.WriteJSON(&buf, data); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	attach(w, "application/json", csvio.ExportFilename("json", clock()))
	w.Write(buf.Bytes())
}

func attach(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// readUpload returns the "file" part of a multipart form, or the raw body
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			return nil, fmt.Errorf("invalid upload: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	return content, nil
}
