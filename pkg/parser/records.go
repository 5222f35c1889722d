package parser

import (
	"fmt"
	"strings"

	"github.com/yurifrl/agencyfin/pkg/csv"
	"github.com/yurifrl/agencyfin/pkg/models"
)

// ProfitLossFromRecords reads rows in the profit & loss template layout
// (account, amount, type, notes). Unknown types and unreadable amounts are
// skipped.
func (p *Parser) ProfitLossFromRecords(rows []csv.Row, source models.Source) *models.ProfitLoss {
	out := &models.ProfitLoss{Revenue: models.LineItems{}, Expenses: models.LineItems{}}

	for i, row := range rows {
		item, ok := p.lineItem(i, row, source)
		if !ok {
			continue
		}
		switch kind := strings.ToLower(row.Get("type", "category")); kind {
		case "revenue", "income", "sales":
			out.Revenue[fmt.Sprintf("revenue_%d", len(out.Revenue)+1)] = item
		case "expense", "expenses", "cost", "costs":
			out.Expenses[fmt.Sprintf("expense_%d", len(out.Expenses)+1)] = item
		default:
			p.logger.Debug("skipping row with unknown type", "row", i, "type", kind)
		}
	}

	out.TotalRevenue = models.Amount(out.Revenue.Sum())
	out.TotalExpenses = models.Amount(out.Expenses.Sum())
	out.NetIncome = models.Amount(out.Revenue.Sum().Sub(out.Expenses.Sum()))
	return out
}

// BalanceSheetFromRecords reads rows in the balance sheet template layout
// (account, amount, category, notes).
func (p *Parser) BalanceSheetFromRecords(rows []csv.Row, source models.Source) *models.BalanceSheet {
	out := &models.BalanceSheet{Assets: models.LineItems{}, Liabilities: models.LineItems{}, Equity: models.LineItems{}}

	for i, row := range rows {
		item, ok := p.lineItem(i, row, source)
		if !ok {
			continue
		}
		switch kind := strings.ToLower(row.Get("category", "type")); kind {
		case "asset", "assets":
			out.Assets[fmt.Sprintf("asset_%d", len(out.Assets)+1)] = item
		case "liability", "liabilities":
			out.Liabilities[fmt.Sprintf("liability_%d", len(out.Liabilities)+1)] = item
		case "equity":
			out.Equity[fmt.Sprintf("equity_%d", len(out.Equity)+1)] = item
		default:
			p.logger.Debug("skipping row with unknown category", "row", i, "category", kind)
		}
	}

	out.TotalAssets = models.Amount(out.Assets.Sum())
	out.TotalLiabilities = models.Amount(out.Liabilities.Sum())
	out.TotalEquity = models.Amount(out.Equity.Sum())
	return out
}

func (p *Parser) lineItem(i int, row csv.Row, source models.Source) (models.LineItem, bool) {
	name := row.Get("account", "name", "description", "item")
	if name == "" {
		p.logger.Debug("skipping row without account", "row", i)
		return models.LineItem{}, false
	}
	value, err := parseAmount(row.Get("amount", "value"))
	if err != nil {
		p.logger.Debug("skipping row with invalid amount", "row", i, "err", err)
		return models.LineItem{}, false
	}
	return models.LineItem{Name: name, Value: value, Notes: row.Get("notes"), Source: source}, true
}
