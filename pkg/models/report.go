package models

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrUnknownReportType = errors.New("unknown report type")

type ReportType string

const (
	ProfitLossReport       ReportType = "profitLoss"
	BalanceSheetReport     ReportType = "balanceSheet"
	BankTransactionsReport ReportType = "bankTransactions"
)

// ReportTypes lists every report type in display order.
var ReportTypes = []ReportType{ProfitLossReport, BalanceSheetReport, BankTransactionsReport}

// ParseReportType accepts the camelCase names as well as their kebab-case
// file-name forms ("profit-loss").
func ParseReportType(s string) (ReportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "profitloss", "profit-loss", "pl":
		return ProfitLossReport, nil
	case "balancesheet", "balance-sheet", "bs":
		return BalanceSheetReport, nil
	case "banktransactions", "bank-transactions", "bank":
		return BankTransactionsReport, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReportType, s)
}

// Slug is the kebab-case name used in generated file names.
func (t ReportType) Slug() string {
	switch t {
	case ProfitLossReport:
		return "profit-loss"
	case BalanceSheetReport:
		return "balance-sheet"
	case BankTransactionsReport:
		return "bank-transactions"
	}
	return string(t)
}

// Source records where a report or line item came from.
type Source string

const (
	SourcePDF    Source = "pdf_extraction"
	SourceManual Source = "manual_form"
	SourceCSV    Source = "csv_upload"
	SourceXLS    Source = "xls_upload"
	SourceYNAB   Source = "ynab_import"
)

// LineItem is a single named monetary entry within a report category.
type LineItem struct {
	Name             string                     `json:"name"`
	Value            decimal.Decimal            `json:"value"`
	MonthlyBreakdown map[string]decimal.Decimal `json:"monthlyBreakdown,omitempty"`
	Notes            string                     `json:"notes,omitempty"`
	Source           Source                     `json:"source,omitempty"`
}

// LineItems maps an internal key ("revenue_0_1") to its item.
type LineItems map[string]LineItem

func (items LineItems) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Value)
	}
	return total
}

// Keys returns the item keys in a stable order.
func (items LineItems) Keys() []string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (items LineItems) clone() LineItems {
	if items == nil {
		return LineItems{}
	}
	out := make(LineItems, len(items))
	for k, item := range items {
		item.MonthlyBreakdown = maps.Clone(item.MonthlyBreakdown)
		out[k] = item
	}
	return out
}

// Meta is shared by every report variant.
type Meta struct {
	ID               uuid.UUID `json:"id"`
	FiscalYear       int       `json:"fiscalYear"`
	Source           Source    `json:"source"`
	ExtractedAt      time.Time `json:"extractedAt"`
	UploadDate       time.Time `json:"uploadDate,omitzero"`
	OriginalFileName string    `json:"originalFileName,omitempty"`
}

// NewMeta stamps a fresh report identity.
func NewMeta(source Source, now time.Time) Meta {
	return Meta{ID: uuid.New(), Source: source, ExtractedAt: now.UTC()}
}

// Report is implemented by the three report variants.
type Report interface {
	Type() ReportType
	Metadata() *Meta
	CloneReport() Report
}

// total returns an explicit total when it is present and non-zero and
// falls back to the sum of the line items otherwise.
func total(explicit *decimal.Decimal, items LineItems) decimal.Decimal {
	if explicit != nil && !explicit.IsZero() {
		return *explicit
	}
	return items.Sum()
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// Amount returns a pointer to v, for populating optional totals.
func Amount(v decimal.Decimal) *decimal.Decimal {
	return &v
}

type MonthlyTotals struct {
	Revenue  map[string]decimal.Decimal `json:"revenue"`
	Expenses map[string]decimal.Decimal `json:"expenses"`
	Profit   map[string]decimal.Decimal `json:"profit"`
}

// ProfitLoss is a Profit & Loss statement for one fiscal year.
type ProfitLoss struct {
	Meta
	Revenue          LineItems        `json:"revenue"`
	Expenses         LineItems        `json:"expenses"`
	TotalRevenue     *decimal.Decimal `json:"totalRevenue,omitempty"`
	TotalExpenses    *decimal.Decimal `json:"totalExpenses,omitempty"`
	NetIncome        *decimal.Decimal `json:"netIncome,omitempty"`
	MonthlyTotals    *MonthlyTotals   `json:"monthlyTotals,omitempty"`
	FiscalMonthOrder []string         `json:"fiscalMonthOrder,omitempty"`
}

func (p *ProfitLoss) Type() ReportType { return ProfitLossReport }
func (p *ProfitLoss) Metadata() *Meta  { return &p.Meta }

func (p *ProfitLoss) RevenueTotal() decimal.Decimal { return total(p.TotalRevenue, p.Revenue) }
func (p *ProfitLoss) ExpenseTotal() decimal.Decimal { return total(p.TotalExpenses, p.Expenses) }

func (p *ProfitLoss) CloneReport() Report {
	out := *p
	out.Revenue = p.Revenue.clone()
	out.Expenses = p.Expenses.clone()
	out.TotalRevenue = cloneDecimal(p.TotalRevenue)
	out.TotalExpenses = cloneDecimal(p.TotalExpenses)
	out.NetIncome = cloneDecimal(p.NetIncome)
	out.FiscalMonthOrder = append([]string(nil), p.FiscalMonthOrder...)
	if p.MonthlyTotals != nil {
		out.MonthlyTotals = &MonthlyTotals{
			Revenue:  maps.Clone(p.MonthlyTotals.Revenue),
			Expenses: maps.Clone(p.MonthlyTotals.Expenses),
			Profit:   maps.Clone(p.MonthlyTotals.Profit),
		}
	}
	return &out
}

// BalanceSheet is a Balance Sheet for one fiscal year.
type BalanceSheet struct {
	Meta
	Assets           LineItems        `json:"assets"`
	Liabilities      LineItems        `json:"liabilities"`
	Equity           LineItems        `json:"equity"`
	TotalAssets      *decimal.Decimal `json:"totalAssets,omitempty"`
	TotalLiabilities *decimal.Decimal `json:"totalLiabilities,omitempty"`
	TotalEquity      *decimal.Decimal `json:"totalEquity,omitempty"`
}

func (b *BalanceSheet) Type() ReportType { return BalanceSheetReport }
func (b *BalanceSheet) Metadata() *Meta  { return &b.Meta }

func (b *BalanceSheet) AssetTotal() decimal.Decimal     { return total(b.TotalAssets, b.Assets) }
func (b *BalanceSheet) LiabilityTotal() decimal.Decimal { return total(b.TotalLiabilities, b.Liabilities) }
func (b *BalanceSheet) EquityTotal() decimal.Decimal    { return total(b.TotalEquity, b.Equity) }

func (b *BalanceSheet) CloneReport() Report {
	out := *b
	out.Assets = b.Assets.clone()
	out.Liabilities = b.Liabilities.clone()
	out.Equity = b.Equity.clone()
	out.TotalAssets = cloneDecimal(b.TotalAssets)
	out.TotalLiabilities = cloneDecimal(b.TotalLiabilities)
	out.TotalEquity = cloneDecimal(b.TotalEquity)
	return &out
}

type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

type TransactionCategory string

const (
	CategoryStaffCosts     TransactionCategory = "staff_costs"
	CategoryOfficeExpenses TransactionCategory = "office_expenses"
	CategoryMarketing      TransactionCategory = "marketing"
	CategoryClientPayment  TransactionCategory = "client_payment"
	CategoryTax            TransactionCategory = "tax"
	CategoryOther          TransactionCategory = "other"
)

// Transaction is a single classified bank movement. Amount is always a
// positive magnitude, polarity lives in Type.
type Transaction struct {
	ID          string              `json:"id"`
	Date        string              `json:"date"`
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	Type        TransactionType     `json:"type"`
	Category    TransactionCategory `json:"category"`
}

type BankSummary struct {
	TotalTransactions int             `json:"totalTransactions"`
	TotalCredits      decimal.Decimal `json:"totalCredits"`
	TotalDebits       decimal.Decimal `json:"totalDebits"`
}

// BankTransactions is a parsed bank statement.
type BankTransactions struct {
	Meta
	Transactions []Transaction `json:"transactions"`
	Summary      BankSummary   `json:"summary"`
}

func (b *BankTransactions) Type() ReportType { return BankTransactionsReport }
func (b *BankTransactions) Metadata() *Meta  { return &b.Meta }

func (b *BankTransactions) CloneReport() Report {
	out := *b
	out.Transactions = append([]Transaction(nil), b.Transactions...)
	return &out
}

// Credits sums the positive credit transactions.
func (b *BankTransactions) Credits() decimal.Decimal {
	return b.sum(Credit)
}

// Debits sums the positive debit transactions.
func (b *BankTransactions) Debits() decimal.Decimal {
	return b.sum(Debit)
}

func (b *BankTransactions) sum(kind TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range b.Transactions {
		if t.Type == kind && t.Amount.IsPositive() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Summarize recomputes the summary block from the transactions.
func (b *BankTransactions) Summarize() {
	b.Summary = BankSummary{
		TotalTransactions: len(b.Transactions),
		TotalCredits:      b.Credits(),
		TotalDebits:       b.Debits(),
	}
}

// Reports holds at most one report of each type.
type Reports struct {
	ProfitLoss       *ProfitLoss       `json:"profitLoss"`
	BalanceSheet     *BalanceSheet     `json:"balanceSheet"`
	BankTransactions *BankTransactions `json:"bankTransactions"`
}

// Get returns the report of the given type, or nil when the slot is empty.
func (r Reports) Get(t ReportType) Report {
	switch t {
	case ProfitLossReport:
		if r.ProfitLoss != nil {
			return r.ProfitLoss
		}
	case BalanceSheetReport:
		if r.BalanceSheet != nil {
			return r.BalanceSheet
		}
	case BankTransactionsReport:
		if r.BankTransactions != nil {
			return r.BankTransactions
		}
	}
	return nil
}

func (r *Reports) Set(report Report) error {
	switch v := report.(type) {
	case *ProfitLoss:
		r.ProfitLoss = v
	case *BalanceSheet:
		r.BalanceSheet = v
	case *BankTransactions:
		r.BankTransactions = v
	default:
		return fmt.Errorf("%w: %T", ErrUnknownReportType, report)
	}
	return nil
}

func (r *Reports) Delete(t ReportType) error {
	switch t {
	case ProfitLossReport:
		r.ProfitLoss = nil
	case BalanceSheetReport:
		r.BalanceSheet = nil
	case BankTransactionsReport:
		r.BankTransactions = nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReportType, t)
	}
	return nil
}

// Empty reports whether no slot is filled.
func (r Reports) Empty() bool {
	return r.ProfitLoss == nil && r.BalanceSheet == nil && r.BankTransactions == nil
}

// All returns the filled slots.
func (r Reports) All() []Report {
	var out []Report
	for _, t := range ReportTypes {
		if rep := r.Get(t); rep != nil {
			out = append(out, rep)
		}
	}
	return out
}

func (r Reports) clone() Reports {
	var out Reports
	for _, rep := range r.All() {
		_ = out.Set(rep.CloneReport())
	}
	return out
}
