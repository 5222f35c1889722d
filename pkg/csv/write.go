package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"

	"github.com/yurifrl/agencyfin/pkg/models"
)

type FilterFunc func(models.Transaction) bool

// WriteTransactions writes transactions in the bank template layout with
// debits as negative amounts, so the output parses back to the same
// transactions.
func WriteTransactions(w io.Writer, transactions []models.Transaction, filter FilterFunc) error {
	writer := stdcsv.NewWriter(w)
	if err := writer.Write([]string{"Date", "Description", "Amount", "Type", "Category"}); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, t := range transactions {
		if filter != nil && !filter(t) {
			continue
		}
		amount := t.Amount
		if t.Type == models.Debit {
			amount = amount.Neg()
		}
		record := []string{t.Date, t.Description, amount.String(), string(t.Type), string(t.Category)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing transaction %s: %w", t.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteLineItems writes report line items in the profit & loss / balance
// sheet template layout. The section key fills the column named by header
// ("revenue" under "Type", "asset" under "Category").
func WriteLineItems(w io.Writer, header string, sections map[string]models.LineItems, order []string) error {
	writer := stdcsv.NewWriter(w)
	if err := writer.Write([]string{"Account", "Amount", header, "Notes"}); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, kind := range order {
		items := sections[kind]
		for _, key := range items.Keys() {
			item := items[key]
			if err := writer.Write([]string{item.Name, item.Value.String(), kind, item.Notes}); err != nil {
				return fmt.Errorf("error writing line item %s: %w", key, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteReport writes any stored report back out in its template layout.
func WriteReport(w io.Writer, report models.Report) error {
	switch r := report.(type) {
	case *models.ProfitLoss:
		return WriteLineItems(w, "Type", map[string]models.LineItems{
			"revenue": r.Revenue,
			"expense": r.Expenses,
		}, []string{"revenue", "expense"})
	case *models.BalanceSheet:
		return WriteLineItems(w, "Category", map[string]models.LineItems{
			"asset":     r.Assets,
			"liability": r.Liabilities,
			"equity":    r.Equity,
		}, []string{"asset", "liability", "equity"})
	case *models.BankTransactions:
		return WriteTransactions(w, r.Transactions, nil)
	}
	return fmt.Errorf("%w: %T", models.ErrUnknownReportType, report)
}
