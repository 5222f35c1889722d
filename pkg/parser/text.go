package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/agencyfin/pkg/models"
)

// Extraction is what one category's patterns found in a text.
type Extraction struct {
	Items models.LineItems
	Total decimal.Decimal
	Found bool
}

// Extract runs every pattern of the given category over text and folds the
// hits according to the category's rule. Items are keyed
// "<prefix>_<pattern index>_<item count>" and named positionally.
func Extract(text string, patterns []Pattern, category Category) Extraction {
	rule := Rules[category]
	out := Extraction{Items: models.LineItems{}, Total: decimal.Zero}

	var (
		sum      = decimal.Zero
		maxTotal = decimal.Zero
		hasTotal bool
		index    int
	)
	for _, p := range patterns {
		if p.Category != category {
			continue
		}
		for _, m := range p.Match(text) {
			if m.Value.IsNegative() || (m.Value.IsZero() && !rule.KeepZero) {
				continue
			}
			out.Found = true

			if rule.KeyPrefix != "" {
				count := len(out.Items)
				key := fmt.Sprintf("%s_%d_%d", rule.KeyPrefix, index, count)
				out.Items[key] = models.LineItem{
					Name:   fmt.Sprintf("%s %d", rule.NamePrefix, count+1),
					Value:  m.Value,
					Source: models.SourcePDF,
				}
			}

			switch rule.Policy {
			case PolicyMax:
				out.Total = decimal.Max(out.Total, m.Value)
			case PolicySum:
				out.Total = out.Total.Add(m.Value)
			case PolicyLast:
				out.Total = m.Value
			case PolicyTotalOrSum:
				sum = sum.Add(m.Value)
				if rule.isTotal(m.Text) {
					hasTotal = true
					maxTotal = decimal.Max(maxTotal, m.Value.Abs())
				}
			}
		}
		index++
	}

	if rule.Policy == PolicyTotalOrSum {
		if hasTotal {
			out.Total = maxTotal
		} else {
			out.Total = sum
		}
	}
	return out
}

// Normalize collapses every run of whitespace into one space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ParseProfitLossFromText extracts a Profit & Loss statement from free text.
// Text with no recognisable labels yields empty items and zero totals.
func ParseProfitLossFromText(text string) *models.ProfitLoss {
	text = Normalize(text)
	revenue := Extract(text, ProfitLossPatterns, Revenue)
	expenses := Extract(text, ProfitLossPatterns, Expense)
	net := Extract(text, ProfitLossPatterns, NetIncome)

	return &models.ProfitLoss{
		Revenue:       revenue.Items,
		Expenses:      expenses.Items,
		TotalRevenue:  models.Amount(revenue.Total),
		TotalExpenses: models.Amount(expenses.Total),
		NetIncome:     models.Amount(net.Total),
	}
}

// ParseBalanceSheetFromText extracts a Balance Sheet from free text.
func ParseBalanceSheetFromText(text string) *models.BalanceSheet {
	text = Normalize(text)
	assets := Extract(text, BalanceSheetPatterns, Asset)
	liabilities := Extract(text, BalanceSheetPatterns, Liability)
	equity := Extract(text, BalanceSheetPatterns, Equity)

	return &models.BalanceSheet{
		Assets:           assets.Items,
		Liabilities:      liabilities.Items,
		Equity:           equity.Items,
		TotalAssets:      models.Amount(assets.Total),
		TotalLiabilities: models.Amount(liabilities.Total),
		TotalEquity:      models.Amount(equity.Total),
	}
}
