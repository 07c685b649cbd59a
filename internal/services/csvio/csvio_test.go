package csvio

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetlens/internal/models"
)

var now = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

var testCategories = []models.Category{
	{ID: "cat-groceries", Name: "Groceries"},
	{ID: "cat-salary", Name: "Salary"},
}

var fullMapping = ColumnMapping{
	Date: "Date", Type: "Type", Category: "Category", Amount: "Amount",
	Description: "Description", Merchant: "Merchant", Tags: "Tags", Splits: "Splits",
}

func TestImport(t *testing.T) {
	input := strings.Join([]string{
		"Date,Type,Category,Amount,Description,Merchant,Tags",
		`2024-06-01,expense,groceries,"$1,234.50",Weekly shop,Market,"food, weekly"`,
		"2024-06-02,INCOME,Salary,3000,,Acme,",
		"2024-06-03,expense,Groceries,abc,Bad amount,,",
		"2024-06-04,expense,Groceries,-5,Negative,,",
		"06/05/2024,expense,Groceries,5,Bad date,,",
		"2024-06-06,transfer,Groceries,5,Bad type,,",
		"2024-06-07,,Pets,7,,,",
	}, "\n")

	res, err := Import(strings.NewReader(input), testCategories, Options{Mapping: fullMapping}, now)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`Row 4: Invalid amount "abc"`,
		`Row 5: Invalid amount "-5"`,
		`Row 6: Invalid date "06/05/2024" (expected YYYY-MM-DD)`,
		`Row 7: Invalid type "transfer"`,
	}, res.Errors)

	require.Len(t, res.Transactions, 3)

	shop := res.Transactions[0]
	assert.NotEmpty(t, shop.ID)
	assert.Equal(t, models.Expense, shop.Type)
	assert.Equal(t, 1234.5, shop.Amount)
	assert.Equal(t, "cat-groceries", shop.CategoryID, "category names match case-insensitively")
	assert.Equal(t, "Market", shop.Merchant)
	assert.Equal(t, []string{"food", "weekly"}, shop.Tags)
	assert.Equal(t, now, shop.CreatedAt)

	pay := res.Transactions[1]
	assert.Equal(t, models.Income, pay.Type)
	assert.Equal(t, DefaultDescription, pay.Description)
	assert.Nil(t, pay.Tags)

	unknown := res.Transactions[2]
	assert.Equal(t, models.Expense, unknown.Type, "missing type defaults to expense")
	assert.Empty(t, unknown.CategoryID)
}

func TestImportDetectsMapping(t *testing.T) {
	input := "Posted Date,Memo,Transaction Amount,Payee\n2024-06-01,Coffee,3.50,Cafe\n"

	res, err := Import(strings.NewReader(input), testCategories, Options{}, now)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Coffee", res.Transactions[0].Description)
	assert.Equal(t, "Cafe", res.Transactions[0].Merchant)
	assert.Equal(t, 3.5, res.Transactions[0].Amount)
}

func TestImportWithoutAmountColumn(t *testing.T) {
	_, err := Import(strings.NewReader("Date,Memo\n2024-06-01,x\n"), nil, Options{}, now)
	assert.Error(t, err)
}

func TestImportEmptyFile(t *testing.T) {
	res, err := Import(strings.NewReader("Date,Amount\n"), nil, Options{}, now)
	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
	assert.Empty(t, res.Errors)
}

func TestInferType(t *testing.T) {
	input := "Date,Amount,Description\n2024-06-01,2500,ACME PAYROLL\n2024-06-02,40,Card payment refund fee\n2024-06-03,12,Lunch\n"

	res, err := Import(strings.NewReader(input), nil, Options{InferType: true}, now)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 3)
	assert.Equal(t, models.Income, res.Transactions[0].Type)
	assert.Equal(t, models.Expense, res.Transactions[1].Type, "never-income keywords win")
	assert.Equal(t, models.Expense, res.Transactions[2].Type)

	res, err = Import(strings.NewReader(input), nil, Options{}, now)
	require.NoError(t, err)
	assert.Equal(t, models.Expense, res.Transactions[0].Type, "inference is opt-in")
}

func TestParsePadsShortRecords(t *testing.T) {
	headers, rows, err := Parse(strings.NewReader("\ufeffDate, Amount ,Memo\n2024-06-01,5\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Amount", "Memo"}, headers)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "", rows[0].Cells["Memo"])
}

func TestImportKeepsRowsAroundStrayQuote(t *testing.T) {
	input := "Date,Amount,Description\n" +
		"2024-06-01,12.50,Coffee\n" +
		"2024-06-02,399.00,TV 55\" screen\n" +
		"2024-06-03,8.00,Lunch\n"

	res, err := Import(strings.NewReader(input), nil, Options{}, now)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 3)
	assert.Equal(t, `TV 55" screen`, res.Transactions[1].Description)
	assert.Equal(t, "Lunch", res.Transactions[2].Description)
}

func TestMapRowsReportsUnparsedLines(t *testing.T) {
	rows := []Row{
		{Line: 2, Cells: map[string]string{"Date": "2024-06-01", "Amount": "5"}},
		{Line: 3, Err: csv.ErrQuote},
		{Line: 5, Cells: map[string]string{"Date": "2024-06-02", "Amount": "abc"}},
	}

	res := MapRows(rows, nil, Options{Mapping: ColumnMapping{Date: "Date", Amount: "Amount"}}, now)
	require.Len(t, res.Transactions, 1)
	require.Len(t, res.Errors, 2)
	assert.True(t, strings.HasPrefix(res.Errors[0], "Row 3: Malformed CSV line"), res.Errors[0])
	assert.Equal(t, `Row 5: Invalid amount "abc"`, res.Errors[1])
}

func TestImportSplits(t *testing.T) {
	input := strings.Join([]string{
		"Date,Amount,Description,Splits",
		"2024-06-01,30,Split shop,groceries:10.00; Legacy:20.00",
		"2024-06-02,30,Short,Groceries:10.00; Salary:5.00",
		"2024-06-03,30,Broken,Groceries",
		"2024-06-04,30,Plain,",
	}, "\n")

	res, err := Import(strings.NewReader(input), testCategories, Options{}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Row 3: Splits do not add up to 30.00",
		`Row 4: Invalid split "Groceries" (expected Name:amount)`,
	}, res.Errors)

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, []models.Split{
		{CategoryID: "cat-groceries", Amount: 10},
		{CategoryID: "Legacy", Amount: 20},
	}, res.Transactions[0].Splits)
	assert.Nil(t, res.Transactions[1].Splits)
}

func TestWriteCSV(t *testing.T) {
	txs := []models.Transaction{
		{Date: "2024-06-01", Type: models.Expense, CategoryID: "cat-groceries", Amount: 12.5, Description: `Say "hi"`, Tags: []string{"a", "b"}},
		{Date: "2024-06-02", Type: models.Expense, CategoryID: "gone", Amount: 30, Description: "Split",
			Splits: []models.Split{{CategoryID: "cat-groceries", Amount: 10}, {CategoryID: "gone", Amount: 20}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs, testCategories))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Type,Category,Amount,Description,Merchant,Tags,Splits", lines[0])
	assert.Equal(t, `2024-06-01,expense,Groceries,12.50,"Say ""hi""",,"a, b",`, lines[1])
	assert.Equal(t, "2024-06-02,expense,Unknown,30.00,Split,,,Groceries:10.00; gone:20.00", lines[2])
}

func TestExportRoundTripsThroughImport(t *testing.T) {
	txs := []models.Transaction{
		{Date: "2024-06-01", Type: models.Income, CategoryID: "cat-salary", Amount: 100, Description: "Pay", Merchant: "Acme"},
		{Date: "2024-06-02", Type: models.Expense, CategoryID: "cat-groceries", Amount: 30, Description: "Split",
			Splits: []models.Split{{CategoryID: "cat-groceries", Amount: 12.5}, {CategoryID: "gone", Amount: 17.5}}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs, testCategories))

	res, err := Import(&buf, testCategories, Options{Mapping: fullMapping}, now)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "cat-salary", res.Transactions[0].CategoryID)
	assert.Equal(t, models.Income, res.Transactions[0].Type)
	assert.Equal(t, 100.0, res.Transactions[0].Amount)
	assert.Equal(t, txs[1].Splits, res.Transactions[1].Splits)
}

func TestJSONExport(t *testing.T) {
	data := models.Dataset{
		Transactions: []models.Transaction{{ID: "t1", Type: models.Expense, Amount: 1, Date: "2024-01-01"}},
		Categories:   testCategories,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, data))
	assert.Contains(t, buf.String(), `"recurringRules"`)

	back, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, "t1", back.Transactions[0].ID)

	_, err = ReadJSON(strings.NewReader("nope"))
	assert.Error(t, err)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "budgetlens-export-2024-06-15.csv", ExportFilename("csv", now))
}
