// Package dataloader imports bank CSV exports into the ledger and exports
// the ledger back to CSV.
package dataloader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
	"fintrack/internal/services/classifier"
)

// ExportHeader is the header row written by Export
var ExportHeader = []string{"Date", "Description", "Category", "Type", "Amount"}

// DataLoader reads bank exports with flexible column names
type DataLoader struct {
	log *logrus.Logger
}

// Result is the outcome of one import
type Result struct {
	Transactions []models.Transaction // New rows, classified and de-duplicated
	Duplicates   int                  // Rows already in the ledger or repeated in the file
	Transfers    int                  // Internal transfers filtered out
	Skipped      int                  // Unreadable rows
}

// columnMappings maps common bank export column names to our standard names
var columnMappings = map[string][]string{
	"Date": {
		"date", "Date", "DATE",
		"transaction date", "Transaction Date", "TRANSACTION DATE",
		"posted date", "Posted Date", "POSTED DATE",
		"post date", "Post Date", "POST DATE",
		"trans date", "Trans Date", "TRANS DATE",
		"posting date", "Posting Date", "POSTING DATE",
	},
	"Description": {
		"description", "Description", "DESCRIPTION",
		"memo", "Memo", "MEMO",
		"details", "Details", "DETAILS",
		"payee", "Payee", "PAYEE",
		"name", "Name", "NAME",
		"transaction description", "Transaction Description",
		"merchant", "Merchant", "MERCHANT",
		"narrative", "Narrative", "NARRATIVE",
	},
	"Amount": {
		"amount", "Amount", "AMOUNT",
		"value", "Value", "VALUE",
		"transaction amount", "Transaction Amount", "TRANSACTION AMOUNT",
		"sum", "Sum", "SUM",
	},
	"Category": {
		"category", "Category", "CATEGORY",
		"category name", "Category Name",
	},
	"Type": {
		"type", "Type", "TYPE",
		"transaction type", "Transaction Type", "TRANSACTION TYPE",
		"kind", "Kind", "KIND",
	},
	"Debit": {
		"debit", "Debit", "DEBIT",
		"withdrawal", "Withdrawal", "WITHDRAWAL",
		"withdrawals", "Withdrawals", "WITHDRAWALS",
		"money out", "Money Out", "MONEY OUT",
		"expense", "Expense", "EXPENSE",
	},
	"Credit": {
		"credit", "Credit", "CREDIT",
		"deposit", "Deposit", "DEPOSIT",
		"deposits", "Deposits", "DEPOSITS",
		"money in", "Money In", "MONEY IN",
		"income", "Income", "INCOME",
	},
}

// New creates a new DataLoader
func New(log *logrus.Logger) *DataLoader {
	return &DataLoader{log: log}
}

// normalizeColumnName maps a bank export column name to our standard name
func normalizeColumnName(col string) string {
	col = strings.TrimSpace(col)
	for standard, variants := range columnMappings {
		for _, variant := range variants {
			if col == variant {
				return standard
			}
		}
	}
	return col // Return original if no mapping found
}

// buildColumnIndex creates a normalized column index from CSV headers
func buildColumnIndex(header []string) map[string]int {
	colIndex := make(map[string]int)
	for i, col := range header {
		normalized := normalizeColumnName(col)
		// Only set if not already set (first match wins)
		if _, exists := colIndex[normalized]; !exists {
			colIndex[normalized] = i
		}
	}
	return colIndex
}

// Import reads a CSV export from r. Rows whose content hash matches an
// entry in existing, or an earlier row of the same file, are dropped as
// duplicates. Returned transactions have no ID yet.
func (dl *DataLoader) Import(r io.Reader, existing []models.Transaction) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	colIndex := buildColumnIndex(header)

	// Check for Debit/Credit columns as alternative to Amount
	_, hasAmount := colIndex["Amount"]
	_, hasDebit := colIndex["Debit"]
	_, hasCredit := colIndex["Credit"]
	useDebitCredit := !hasAmount && (hasDebit || hasCredit)

	if _, ok := colIndex["Date"]; !ok {
		return nil, fmt.Errorf("missing required column: Date (tried: %v)", columnMappings["Date"])
	}
	if _, ok := colIndex["Description"]; !ok {
		return nil, fmt.Errorf("missing required column: Description (tried: %v)", columnMappings["Description"])
	}
	if !hasAmount && !useDebitCredit {
		return nil, fmt.Errorf("missing required column: Amount or Debit/Credit (tried: %v)", columnMappings["Amount"])
	}
	if useDebitCredit {
		dl.log.Debug("Using Debit/Credit columns instead of Amount")
	}

	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		if t.Hash != "" {
			seen[t.Hash] = true
		}
	}

	result := &Result{Transactions: []models.Transaction{}}
	lineNum := 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNum++
		if err != nil {
			dl.log.WithError(err).Warnf("Skipping unreadable line %d", lineNum)
			result.Skipped++
			continue
		}

		t, ok := dl.parseRecord(record, colIndex, useDebitCredit, lineNum)
		if !ok {
			result.Skipped++
			continue
		}

		if classifier.IsInternalTransfer(t.Description, t.Category, t.Amount) {
			result.Transfers++
			continue
		}

		if t.Type == "" {
			t.Type = classifier.Classify(t.Description, t.Category, t.Amount)
		}
		t.Amount = math.Abs(t.Amount)
		t.Source = models.SourceImport
		t.Hash = t.ComputeHash()

		if seen[t.Hash] {
			result.Duplicates++
			continue
		}
		seen[t.Hash] = true
		result.Transactions = append(result.Transactions, t)
	}

	dl.log.WithFields(logrus.Fields{
		"imported":   len(result.Transactions),
		"duplicates": result.Duplicates,
		"transfers":  result.Transfers,
		"skipped":    result.Skipped,
	}).Info("CSV import finished")

	return result, nil
}

// parseRecord reads one data row. The amount keeps its sign until the row
// is classified.
func (dl *DataLoader) parseRecord(record []string, colIndex map[string]int, useDebitCredit bool, lineNum int) (models.Transaction, bool) {
	var t models.Transaction

	dateStr := field(record, colIndex, "Date")
	t.Date = parseDate(dateStr)
	if t.Date.IsZero() {
		dl.log.Warnf("Could not parse date '%s' on line %d", dateStr, lineNum)
		return t, false
	}

	if useDebitCredit {
		t.Amount = parseDebitCredit(record, colIndex)
	} else {
		t.Amount = parseAmount(field(record, colIndex, "Amount"))
	}
	if t.Amount == 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		dl.log.Warnf("Skipping zero or invalid amount on line %d", lineNum)
		return t, false
	}

	t.Description = field(record, colIndex, "Description")
	t.Category = field(record, colIndex, "Category")
	t.Type = parseType(field(record, colIndex, "Type"))
	return t, true
}

// field returns the trimmed value of a named column, or ""
func field(record []string, colIndex map[string]int, name string) string {
	if idx, ok := colIndex[name]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// parseType reads an explicit income/expense marker. Unknown values leave
// the row to the classifier.
func parseType(s string) models.TransactionType {
	switch strings.ToLower(s) {
	case "income", "credit", "cr", "deposit":
		return models.Income
	case "expense", "debit", "dr", "withdrawal":
		return models.Expense
	}
	return ""
}

// parseDebitCredit combines Debit and Credit columns into a single amount
// Credits are positive (income), Debits are negative (expenses)
func parseDebitCredit(record []string, colIndex map[string]int) float64 {
	var amount float64

	if credit := parseAmount(field(record, colIndex, "Credit")); credit != 0 {
		amount = math.Abs(credit)
	}
	if debit := parseAmount(field(record, colIndex, "Debit")); debit != 0 {
		amount = -math.Abs(debit)
	}

	return amount
}

// parseDate tries multiple date formats
func parseDate(s string) models.Date {
	formats := []string{
		models.DateLayout,
		"01/02/2006",
		"1/2/2006",
		"01-02-2006",
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return models.DateOf(t)
		}
	}

	return models.Date{}
}

// parseAmount parses an amount string, handling currency symbols and parentheses
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Handle parentheses for negative numbers: (100.00) -> -100.00
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	amount, _ := strconv.ParseFloat(s, 64)
	return amount
}

// Export writes txns as CSV with ExportHeader, oldest first
func Export(w io.Writer, txns []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, t := range models.NewTransactionSet(txns).SortByDate().Transactions {
		row := []string{
			t.Date.String(),
			t.Description,
			t.Category,
			string(t.Type),
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
