package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgetlens/internal/services/daterange"
	"budgetlens/internal/services/ledger"
	"budgetlens/internal/services/storage"
)

var now = time.Date(2024, 6, 15, 18, 45, 0, 0, time.UTC)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledger.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: default", ledger.ErrCategoryInUse), http.StatusConflict},
		{fmt.Errorf("failed to read ledger: %w", storage.ErrLocked), http.StatusLocked},
		{storage.ErrWrongPassword, http.StatusUnauthorized},
		{fmt.Errorf("%w: amount", ledger.ErrInvalid), http.StatusBadRequest},
		{badRequest("x"), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestReferenceDate(t *testing.T) {
	tests := []struct {
		query   string
		want    string
		wantErr bool
	}{
		{"", "2024-06-15", false},
		{"date=2024-02-29", "2024-02-29", false},
		{"date=2024-02-30", "", true},
		{"date=today", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			got, err := ReferenceDate(r, now)
			if tt.wantErr {
				if StatusFor(err) != http.StatusBadRequest {
					t.Errorf("Expected bad request, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if daterange.Format(got) != tt.want {
				t.Errorf("Got %s, want %s", daterange.Format(got), tt.want)
			}
		})
	}
}

func TestMonthParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?month=2024-02", nil)
	got, err := MonthParam(r, "month", now)
	if err != nil || daterange.Format(got) != "2024-02-01" {
		t.Errorf("Got %v, %v", got, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/x", nil)
	got, _ = MonthParam(r, "month", now)
	if daterange.Format(got) != "2024-06-01" {
		t.Errorf("Expected current month, got %v", got)
	}
}

func TestRangeParams(t *testing.T) {
	fallback := daterange.Range{Start: "2024-06-01", End: "2024-06-30"}

	tests := []struct {
		query   string
		want    daterange.Range
		wantErr bool
	}{
		{"", fallback, false},
		{"start=2024-01-01&end=2024-01-31", daterange.Range{Start: "2024-01-01", End: "2024-01-31"}, false},
		{"start=2024-01-01", daterange.Range{}, true},
		{"start=2024-02-01&end=2024-01-01", daterange.Range{}, true},
		{"start=x&end=2024-01-01", daterange.Range{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			got, err := RangeParams(r, "start", "end", fallback)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var body struct {
		Dates []string `json:"dates"`
	}
	w := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"dates":["2024-01-01"]}`))
	if err := DecodeJSON(w, r, &body); err != nil || len(body.Dates) != 1 {
		t.Errorf("Decode failed: %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"dats":[]}`))
	if err := DecodeJSON(w, r, &body); StatusFor(err) != http.StatusBadRequest {
		t.Errorf("Expected bad request, got %v", err)
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	Error(w, r, ledger.ErrNotFound)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error":"not found"`) {
		t.Errorf("Unexpected body %s", w.Body.String())
	}
}
