package advice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/agencyfin/pkg/metrics"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/money"
)

type Kind string

const (
	Warning Kind = "warning"
	Success Kind = "success"
	Info    Kind = "info"
)

type Priority string

const (
	Critical Priority = "critical"
	High     Priority = "high"
	Medium   Priority = "medium"
	Low      Priority = "low"
)

type Item struct {
	Kind        Kind     `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
	Priority    Priority `json:"priority"`
}

var (
	lowMargin     = decimal.NewFromInt(10)
	highMargin    = decimal.NewFromInt(30)
	taxBuffer     = decimal.RequireFromString("1.1")
	highLiquidity = decimal.NewFromInt(3)
	highLeverage  = decimal.NewFromInt(2)
	monthsInYear  = decimal.NewFromInt(12)
)

// Generate turns a metrics snapshot into prioritised recommendations, in a
// fixed order.
func Generate(state models.State, s metrics.Snapshot) []Item {
	var items []Item
	settings := state.Settings
	currency := settings.Currency

	if s.HasUploadedData {
		items = append(items, Item{
			Kind:        Success,
			Title:       "Financial Data Integration Complete",
			Description: fmt.Sprintf("Your uploaded financial reports for FY %d are now integrated with dashboard metrics.", settings.CurrentFiscalYear),
			Action:      "Review updated calculations and consider year-over-year comparisons",
			Priority:    Low,
		})
	}

	switch {
	case s.ProfitMargin.LessThan(lowMargin):
		items = append(items, Item{
			Kind:        Warning,
			Title:       "Low Profit Margin",
			Description: "Your profit margin is below 10%. Consider reviewing your pricing strategy or reducing costs.",
			Action:      "Review pricing and cost structure",
			Priority:    High,
		})
	case s.ProfitMargin.GreaterThan(highMargin):
		items = append(items, Item{
			Kind:        Success,
			Title:       "Excellent Profit Margin",
			Description: "Your profit margin is above 30%. Consider reinvesting in growth or building reserves.",
			Action:      "Consider growth investments",
			Priority:    Low,
		})
	}

	if s.CorporationTax.IsPositive() {
		items = append(items, Item{
			Kind:  Info,
			Title: "Corporation Tax Planning",
			Description: fmt.Sprintf("You have %s in corporation tax due for FY %d. Tax payments are typically due by %s %d.",
				money.Format(s.CorporationTax, currency), settings.CurrentFiscalYear, settings.FiscalYearStart, settings.CurrentFiscalYear+1),
			Action:   fmt.Sprintf("Save %s for tax payments", money.Format(s.CorporationTax.Mul(taxBuffer), currency)),
			Priority: High,
		})
	}

	if s.CurrentRatio.IsPositive() {
		switch {
		case s.CurrentRatio.LessThan(decimal.NewFromInt(1)):
			items = append(items, Item{
				Kind:        Warning,
				Title:       "Low Liquidity Ratio",
				Description: fmt.Sprintf("Your current ratio of %s indicates potential cash flow issues.", money.Ratio(s.CurrentRatio)),
				Action:      "Improve cash management and reduce short-term liabilities",
				Priority:    High,
			})
		case s.CurrentRatio.GreaterThan(highLiquidity):
			items = append(items, Item{
				Kind:        Info,
				Title:       "Excess Liquidity",
				Description: fmt.Sprintf("Your current ratio of %s suggests you may have too much idle cash.", money.Ratio(s.CurrentRatio)),
				Action:      "Consider investing excess cash or expanding operations",
				Priority:    Medium,
			})
		}
	}

	if s.DebtToEquity.GreaterThan(highLeverage) {
		items = append(items, Item{
			Kind:        Warning,
			Title:       "High Debt Levels",
			Description: fmt.Sprintf("Your debt-to-equity ratio of %s indicates high leverage.", money.Ratio(s.DebtToEquity)),
			Action:      "Focus on debt reduction and improving equity position",
			Priority:    High,
		})
	}

	monthlyProfit := s.TotalRevenue.Div(monthsInYear).Sub(s.TotalCosts.Div(monthsInYear))
	if monthlyProfit.IsNegative() {
		items = append(items, Item{
			Kind:        Warning,
			Title:       "Negative Monthly Cash Flow",
			Description: "Your monthly costs exceed revenue. Immediate action required.",
			Action:      "Reduce costs or increase revenue urgently",
			Priority:    Critical,
		})
	}

	retainers := 0
	for _, c := range state.Clients {
		if c.Type == models.ClientRetainer {
			retainers++
		}
	}
	if retainers == 0 && len(state.Projects) > 0 {
		items = append(items, Item{
			Kind:        Info,
			Title:       "Consider Recurring Revenue",
			Description: "All your revenue comes from one-off projects. Consider offering retainer services for stable income.",
			Action:      "Develop retainer service offerings",
			Priority:    Medium,
		})
	}

	return items
}
