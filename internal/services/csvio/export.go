package csvio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"budgetlens/internal/models"
	"budgetlens/internal/money"
)

// ExportHeaders is the header line of a transaction export
var ExportHeaders = []string{"Date", "Type", "Category", "Amount", "Description", "Merchant", "Tags", "Splits"}

// WriteCSV writes transactions with category names resolved. Splits are
// rendered as "Name:amount; Name:amount".
func WriteCSV(w io.Writer, transactions []models.Transaction, categories []models.Category) error {
	idx := models.NewCategoryIndex(categories)
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportHeaders); err != nil {
		return err
	}
	for _, tx := range transactions {
		splits := make([]string, len(tx.Splits))
		for i, s := range tx.Splits {
			splits[i] = idx.NameOr(s.CategoryID, s.CategoryID) + ":" + money.Format(s.Amount)
		}
		record := []string{
			tx.Date,
			string(tx.Type),
			idx.NameOr(tx.CategoryID, models.UnknownCategoryName),
			money.Format(tx.Amount),
			tx.Description,
			tx.Merchant,
			strings.Join(tx.Tags, ", "),
			strings.Join(splits, "; "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the dataset as indented JSON
func WriteJSON(w io.Writer, data models.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ReadJSON decodes a dataset written by WriteJSON
func ReadJSON(r io.Reader) (models.Dataset, error) {
	var data models.Dataset
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return models.Dataset{}, fmt.Errorf("invalid export file: %w", err)
	}
	return data, nil
}

// ExportFilename names an export made at now, e.g.
// budgetlens-export-2024-06-15.csv
func ExportFilename(ext string, now time.Time) string {
	return fmt.Sprintf("budgetlens-export-%s.%s", now.Format("2006-01-02"), ext)
}
