// Package csvio moves transactions in and out of CSV files and exports the
// whole dataset as JSON.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetlens/internal/models"
	"budgetlens/internal/money"
	"budgetlens/internal/services/daterange"
)

// DefaultDescription is used when a row has no description
const DefaultDescription = "Imported"

// ColumnMapping names the CSV header holding each transaction field. Empty
// entries are not imported.
type ColumnMapping struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Merchant    string `json:"merchant"`
	Tags        string `json:"tags"`
	Splits      string `json:"splits"`
}

// Options controls how rows become transactions
type Options struct {
	Mapping ColumnMapping

	// InferType classifies rows with an empty type cell from their
	// description instead of defaulting to expense.
	InferType bool
}

// Result holds the transactions parsed from a file plus one message per
// rejected row.
type Result struct {
	Transactions []models.Transaction `json:"transactions"`
	Errors       []string             `json:"errors"`
}

// Row is one CSV record keyed by header. Line is the file line the record
// starts on; Err is set when the line could not be parsed.
type Row struct {
	Line  int
	Cells map[string]string
	Err   error
}

func (r Row) cell(column string) string {
	if column == "" {
		return ""
	}
	return r.Cells[column]
}

// headerSynonyms maps each field to the bank-export headers recognized for it
var headerSynonyms = map[string][]string{
	"date":        {"date", "transaction date", "posted date", "post date", "trans date", "posting date"},
	"type":        {"type", "transaction type", "kind"},
	"category":    {"category", "category name"},
	"amount":      {"amount", "value", "transaction amount", "sum"},
	"description": {"description", "memo", "details", "narrative", "transaction description"},
	"merchant":    {"merchant", "payee", "name"},
	"tags":        {"tags", "labels"},
	"splits":      {"splits", "split"},
}

// DetectMapping guesses a mapping from common header spellings. Matching is
// case-insensitive and the first matching header wins.
func DetectMapping(headers []string) ColumnMapping {
	find := func(field string) string {
		for _, h := range headers {
			norm := strings.ToLower(strings.TrimSpace(h))
			for _, synonym := range headerSynonyms[field] {
				if norm == synonym {
					return h
				}
			}
		}
		return ""
	}
	return ColumnMapping{
		Date:        find("date"),
		Type:        find("type"),
		Category:    find("category"),
		Amount:      find("amount"),
		Description: find("description"),
		Merchant:    find("merchant"),
		Tags:        find("tags"),
		Splits:      find("splits"),
	}
}

// Parse reads a CSV with a header line. Short records are padded with empty
// cells; a file with fewer than two lines has no rows. Stray quotes are kept
// as text, and a line that still fails to parse comes back as a Row with Err
// set. Only a broken header or a read failure aborts.
func Parse(r io.Reader) ([]string, []Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("error reading header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	headers[0] = strings.TrimPrefix(headers[0], "\ufeff")

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			rows = append(rows, Row{Line: perr.StartLine, Err: perr.Err})
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading line %d: %w", len(rows)+2, err)
		}
		line, _ := reader.FieldPos(0)
		row := Row{Line: line, Cells: make(map[string]string, len(headers))}
		for i, h := range headers {
			if i < len(record) {
				row.Cells[h] = strings.TrimSpace(record[i])
			} else {
				row.Cells[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// MapRows converts rows into transactions. Errors are reported by file line
// (the header is row 1). Category names resolve case-insensitively; unknown
// names leave the category empty.
func MapRows(rows []Row, categories []models.Category, opts Options, now time.Time) Result {
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		byName[strings.ToLower(c.Name)] = c.ID
	}
	m := opts.Mapping

	result := Result{Transactions: []models.Transaction{}, Errors: []string{}}
	for _, row := range rows {
		line := row.Line
		if row.Err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Malformed CSV line (%v)", line, row.Err))
			continue
		}

		rawAmount := row.cell(m.Amount)
		amount, err := money.Parse(rawAmount)
		if err != nil || amount <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid amount %q", line, rawAmount))
			continue
		}

		date := row.cell(m.Date)
		if _, err := daterange.Parse(date); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid date %q (expected YYYY-MM-DD)", line, date))
			continue
		}

		description := row.cell(m.Description)
		txType := models.TransactionType(strings.ToLower(row.cell(m.Type)))
		if txType == "" {
			txType = models.Expense
			if opts.InferType && looksLikeIncome(description) {
				txType = models.Income
			}
		}
		if !txType.Valid() {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid type %q", line, txType))
			continue
		}

		splits, err := parseSplits(row.cell(m.Splits), byName)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}

		if description == "" {
			description = DefaultDescription
		}

		tx := models.Transaction{
			ID:          uuid.New().String(),
			Type:        txType,
			Amount:      amount,
			CategoryID:  byName[strings.ToLower(row.cell(m.Category))],
			Description: description,
			Merchant:    row.cell(m.Merchant),
			Date:        date,
			Tags:        splitTags(row.cell(m.Tags)),
			Splits:      splits,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if !tx.SplitsBalanced() {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Splits do not add up to %s", line, money.Format(amount)))
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result
}

// Import parses r and maps its rows. A zero mapping is detected from the
// header line.
func Import(r io.Reader, categories []models.Category, opts Options, now time.Time) (Result, error) {
	headers, rows, err := Parse(r)
	if err != nil {
		return Result{}, err
	}
	if opts.Mapping == (ColumnMapping{}) {
		opts.Mapping = DetectMapping(headers)
	}
	if opts.Mapping.Amount == "" || opts.Mapping.Date == "" {
		return Result{}, fmt.Errorf("mapping needs date and amount columns (headers: %s)", strings.Join(headers, ", "))
	}
	return MapRows(rows, categories, opts, now), nil
}

func splitTags(cell string) []string {
	if cell == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(cell, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseSplits reads the "Name:amount; Name:amount" form written by WriteCSV.
// Names that match no category are kept as category IDs.
func parseSplits(cell string, byName map[string]string) ([]models.Split, error) {
	if cell == "" {
		return nil, nil
	}
	var splits []models.Split
	for _, part := range strings.Split(cell, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sep := strings.LastIndex(part, ":")
		if sep <= 0 {
			return nil, fmt.Errorf("Invalid split %q (expected Name:amount)", part)
		}
		name := strings.TrimSpace(part[:sep])
		amount, err := money.Parse(part[sep+1:])
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("Invalid split amount %q", part)
		}
		id, ok := byName[strings.ToLower(name)]
		if !ok {
			id = name
		}
		splits = append(splits, models.Split{CategoryID: id, Amount: amount})
	}
	return splits, nil
}
