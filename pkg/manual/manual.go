package manual

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/agencyfin/pkg/fiscal"
	"github.com/yurifrl/agencyfin/pkg/models"
)

// MonthlyRow is one profit & loss line with an amount per fiscal month,
// keyed by month abbreviation ("Apr").
type MonthlyRow struct {
	Name   string                     `json:"name" yaml:"name"`
	Notes  string                     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Months map[string]decimal.Decimal `json:"months" yaml:"months"`
}

type ProfitLossInput struct {
	Revenue  []MonthlyRow `json:"revenue" yaml:"revenue"`
	Expenses []MonthlyRow `json:"expenses" yaml:"expenses"`
}

// AmountRow is one balance sheet line.
type AmountRow struct {
	Name   string          `json:"name" yaml:"name"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
	Notes  string          `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type BalanceSheetInput struct {
	Assets      []AmountRow `json:"assets" yaml:"assets"`
	Liabilities []AmountRow `json:"liabilities" yaml:"liabilities"`
	Equity      []AmountRow `json:"equity" yaml:"equity"`
}

// ProfitLoss builds a statement from monthly rows. Rows without a name or
// with a total of zero or less are dropped; kept rows keep their position
// in the key ("revenue_3" is the third row).
func ProfitLoss(in ProfitLossInput, start models.Month, now time.Time) *models.ProfitLoss {
	months := fiscal.MonthOrder(start)
	out := &models.ProfitLoss{
		Meta:             models.NewMeta(models.SourceManual, now),
		FiscalMonthOrder: months,
		MonthlyTotals: &models.MonthlyTotals{
			Revenue:  zeroMonths(months),
			Expenses: zeroMonths(months),
			Profit:   zeroMonths(months),
		},
	}

	out.Revenue = monthlyItems("revenue", in.Revenue, months, out.MonthlyTotals.Revenue)
	out.Expenses = monthlyItems("expense", in.Expenses, months, out.MonthlyTotals.Expenses)
	for _, m := range months {
		out.MonthlyTotals.Profit[m] = out.MonthlyTotals.Revenue[m].Sub(out.MonthlyTotals.Expenses[m])
	}

	revenue, expenses := out.Revenue.Sum(), out.Expenses.Sum()
	out.TotalRevenue = models.Amount(revenue)
	out.TotalExpenses = models.Amount(expenses)
	out.NetIncome = models.Amount(revenue.Sub(expenses))
	return out
}

func zeroMonths(months []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(months))
	for _, m := range months {
		out[m] = decimal.Zero
	}
	return out
}

func monthlyItems(prefix string, rows []MonthlyRow, months []string, totals map[string]decimal.Decimal) models.LineItems {
	items := models.LineItems{}
	for i, row := range rows {
		if row.Name == "" {
			continue
		}
		breakdown := make(map[string]decimal.Decimal, len(months))
		total := decimal.Zero
		for _, m := range months {
			v := row.Months[m]
			breakdown[m] = v
			total = total.Add(v)
		}
		if !total.IsPositive() {
			continue
		}
		for _, m := range months {
			totals[m] = totals[m].Add(breakdown[m])
		}
		items[fmt.Sprintf("%s_%d", prefix, i+1)] = models.LineItem{
			Name:             row.Name,
			Value:            total,
			MonthlyBreakdown: breakdown,
			Notes:            row.Notes,
			Source:           models.SourceManual,
		}
	}
	return items
}

// BalanceSheet builds a balance sheet from yearly amounts. Assets and
// liabilities need a positive amount, equity any non-zero amount.
func BalanceSheet(in BalanceSheetInput, now time.Time) *models.BalanceSheet {
	out := &models.BalanceSheet{
		Meta:        models.NewMeta(models.SourceManual, now),
		Assets:      amountItems("asset", in.Assets, decimal.Decimal.IsPositive),
		Liabilities: amountItems("liability", in.Liabilities, decimal.Decimal.IsPositive),
		Equity:      amountItems("equity", in.Equity, func(d decimal.Decimal) bool { return !d.IsZero() }),
	}
	out.TotalAssets = models.Amount(out.Assets.Sum())
	out.TotalLiabilities = models.Amount(out.Liabilities.Sum())
	out.TotalEquity = models.Amount(out.Equity.Sum())
	return out
}

func amountItems(prefix string, rows []AmountRow, keep func(decimal.Decimal) bool) models.LineItems {
	items := models.LineItems{}
	for i, row := range rows {
		if row.Name == "" || !keep(row.Amount) {
			continue
		}
		items[fmt.Sprintf("%s_%d", prefix, i+1)] = models.LineItem{
			Name:   row.Name,
			Value:  row.Amount,
			Notes:  row.Notes,
			Source: models.SourceManual,
		}
	}
	return items
}

// ProfitLossRows turns a stored statement back into editable rows. Items
// without a monthly breakdown put their whole value in the first fiscal
// month. A nil statement gives an empty form.
func ProfitLossRows(pl *models.ProfitLoss, start models.Month) ProfitLossInput {
	if pl == nil {
		return ProfitLossInput{Revenue: []MonthlyRow{}, Expenses: []MonthlyRow{}}
	}
	months := fiscal.MonthOrder(start)
	return ProfitLossInput{
		Revenue:  monthlyRows(pl.Revenue, months),
		Expenses: monthlyRows(pl.Expenses, months),
	}
}

func monthlyRows(items models.LineItems, months []string) []MonthlyRow {
	rows := make([]MonthlyRow, 0, len(items))
	for _, key := range items.Keys() {
		item := items[key]
		row := MonthlyRow{Name: item.Name, Notes: item.Notes, Months: map[string]decimal.Decimal{}}
		if len(item.MonthlyBreakdown) > 0 {
			for _, m := range months {
				if v, ok := item.MonthlyBreakdown[m]; ok {
					row.Months[m] = v
				}
			}
		} else if item.Value.IsPositive() {
			row.Months[months[0]] = item.Value
		}
		rows = append(rows, row)
	}
	return rows
}

// BalanceSheetRows turns a stored balance sheet back into editable rows.
func BalanceSheetRows(bs *models.BalanceSheet) BalanceSheetInput {
	if bs == nil {
		return BalanceSheetInput{Assets: []AmountRow{}, Liabilities: []AmountRow{}, Equity: []AmountRow{}}
	}
	return BalanceSheetInput{
		Assets:      amountRows(bs.Assets),
		Liabilities: amountRows(bs.Liabilities),
		Equity:      amountRows(bs.Equity),
	}
}

func amountRows(items models.LineItems) []AmountRow {
	rows := make([]AmountRow, 0, len(items))
	for _, key := range items.Keys() {
		item := items[key]
		rows = append(rows, AmountRow{Name: item.Name, Amount: item.Value, Notes: item.Notes})
	}
	return rows
}
