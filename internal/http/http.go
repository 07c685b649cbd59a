// Package http holds the JSON response and request parsing helpers shared by
// the handler packages.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"budgetlens/internal/logger"
	"budgetlens/internal/services/daterange"
	"budgetlens/internal/services/ledger"
	"budgetlens/internal/services/storage"
)

// MaxBodyBytes caps JSON request bodies
const MaxBodyBytes = 1 << 20

// JSON writes v with the given status code
func JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// OK writes v with status 200
func OK(w http.ResponseWriter, r *http.Request, v interface{}) {
	JSON(w, r, http.StatusOK, v)
}

// ErrorResponse sends {"error": message} with the given status
func ErrorResponse(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	log := logger.FromContext(r.Context())
	event := log.Warn()
	if statusCode >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Int("status", statusCode).Msg(message)
	JSON(w, r, statusCode, map[string]string{"error": message})
}

// StatusFor maps a service error onto an HTTP status code
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrCategoryInUse), errors.Is(err, storage.ErrAlreadyEncrypted), errors.Is(err, storage.ErrNotEncrypted):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, storage.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInvalid), errors.Is(err, storage.ErrPasswordTooShort), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status StatusFor chooses
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(w, r, err.Error(), StatusFor(err))
}

// ErrBadRequest marks malformed request input
var ErrBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// DecodeJSON decodes the request body into v, rejecting unknown fields
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// ReferenceDate returns the "date" query parameter as a day, or today when
// it is absent.
func ReferenceDate(r *http.Request, now time.Time) (time.Time, error) {
	return DateParam(r, "date", now)
}

// DateParam parses a YYYY-MM-DD query parameter, defaulting to the day of
// fallback.
func DateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return daterange.Day(fallback), nil
	}
	t, err := daterange.Parse(raw)
	if err != nil {
		return time.Time{}, badRequest("invalid %s %q (expected YYYY-MM-DD)", name, raw)
	}
	return t, nil
}

// MonthParam parses a YYYY-MM query parameter into the first of that month,
// defaulting to the month of fallback.
func MonthParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return daterange.MonthStart(fallback), nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, badRequest("invalid %s %q (expected YYYY-MM)", name, raw)
	}
	return t, nil
}

// RangeParams reads a start/end pair of date parameters. Both must be given
// together; when absent the fallback range is returned.
func RangeParams(r *http.Request, startName, endName string, fallback daterange.Range) (daterange.Range, error) {
	q := r.URL.Query()
	start, end := q.Get(startName), q.Get(endName)
	if start == "" && end == "" {
		return fallback, nil
	}
	if start == "" || end == "" {
		return daterange.Range{}, badRequest("%s and %s must be given together", startName, endName)
	}
	for _, v := range []string{start, end} {
		if _, err := daterange.Parse(v); err != nil {
			return daterange.Range{}, badRequest("invalid date %q (expected YYYY-MM-DD)", v)
		}
	}
	if end < start {
		return daterange.Range{}, badRequest("%s is before %s", endName, startName)
	}
	return daterange.Range{Start: start, End: end}, nil
}
