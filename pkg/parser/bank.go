package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/agencyfin/pkg/csv"
	"github.com/yurifrl/agencyfin/pkg/models"
)

var (
	dateAliases        = []string{"date", "transaction_date", "transaction date", "posting_date", "posting date"}
	descriptionAliases = []string{"description", "memo", "reference", "details", "payee"}
	amountAliases      = []string{"amount", "value", "transaction_amount", "transaction amount"}
	creditAliases      = []string{"credit", "credit amount", "credit_amount", "deposits", "paid in"}
	debitAliases       = []string{"debit", "debit amount", "debit_amount", "withdrawals", "paid out"}
)

var keywords = []struct {
	category models.TransactionCategory
	words    []string
}{
	{models.CategoryStaffCosts, []string{"salary", "wages", "payroll"}},
	{models.CategoryOfficeExpenses, []string{"rent", "office", "utilities"}},
	{models.CategoryMarketing, []string{"marketing", "advertising", "google", "facebook"}},
	{models.CategoryClientPayment, []string{"invoice", "payment received", "client"}},
	{models.CategoryTax, []string{"tax", "hmrc", "vat"}},
}

// Categorize classifies a transaction by keywords in its description. The
// first matching group wins.
func Categorize(description string) models.TransactionCategory {
	lower := strings.ToLower(description)
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(lower, w) {
				return k.category
			}
		}
	}
	return models.CategoryOther
}

var amountCleaner = strings.NewReplacer("£", "", "$", "", "€", "", ",", "", " ", "")

// parseAmount reads a bank amount, ignoring currency symbols and
// thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(amountCleaner.Replace(strings.TrimSpace(s)))
}

// ParseBankTransactions turns header-mapped rows from a bank export into
// classified transactions. Rows without a date, with an unreadable amount
// or with a zero amount are skipped.
func (p *Parser) ParseBankTransactions(rows []csv.Row) *models.BankTransactions {
	out := &models.BankTransactions{Transactions: []models.Transaction{}}

	for i, row := range rows {
		date := row.Get(dateAliases...)
		if date == "" || strings.HasPrefix(date, "#") {
			p.logger.Debug("skipping row without date", "row", i)
			continue
		}

		var (
			value decimal.Decimal
			kind  models.TransactionType
		)
		if raw := row.Get(amountAliases...); raw != "" {
			v, err := parseAmount(raw)
			if err != nil {
				p.logger.Debug("skipping row with invalid amount", "row", i, "amount", raw, "err", err)
				continue
			}
			value = v.Abs()
			kind = models.Credit
			if v.IsNegative() {
				kind = models.Debit
			}
		} else if v, err := parseAmount(row.Get(creditAliases...)); err == nil && v.IsPositive() {
			value, kind = v, models.Credit
		} else if v, err := parseAmount(row.Get(debitAliases...)); err == nil && v.IsPositive() {
			value, kind = v, models.Debit
		}

		switch t := strings.ToLower(row.Get("type")); {
		case strings.Contains(t, "credit"):
			kind = models.Credit
		case strings.Contains(t, "debit"):
			kind = models.Debit
		}

		if !value.IsPositive() {
			p.logger.Debug("skipping row without amount", "row", i)
			continue
		}

		description := row.Get(descriptionAliases...)
		if description == "" {
			description = "Transaction"
		}
		out.Transactions = append(out.Transactions, models.Transaction{
			ID:          fmt.Sprintf("transaction_%d", i),
			Date:        date,
			Description: description,
			Amount:      value,
			Type:        kind,
			Category:    Categorize(description),
		})
	}

	out.Summarize()
	return out
}
