package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/yurifrl/agencyfin/pkg/fiscal"
	"github.com/yurifrl/agencyfin/pkg/models"
)

// CurrentAssetsShare approximates current assets as a share of total assets,
// since uploaded balance sheets carry no current/non-current split.
var CurrentAssetsShare = decimal.RequireFromString("0.6")

var hundred = decimal.NewFromInt(100)

// Snapshot is the derived financial picture of a state.
type Snapshot struct {
	ViewMode   models.ViewMode `json:"viewMode"`
	FiscalYear int             `json:"fiscalYear"`

	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalCosts     decimal.Decimal `json:"totalCosts"`
	GrossProfit    decimal.Decimal `json:"grossProfit"`
	CorporationTax decimal.Decimal `json:"corporationTax"`
	NetProfit      decimal.Decimal `json:"netProfit"`
	ProfitMargin   decimal.Decimal `json:"profitMargin"`

	CurrentAssets      decimal.Decimal `json:"currentAssets"`
	CurrentLiabilities decimal.Decimal `json:"currentLiabilities"`
	TotalAssets        decimal.Decimal `json:"totalAssets"`
	TotalEquity        decimal.Decimal `json:"totalEquity"`
	CurrentRatio       decimal.Decimal `json:"currentRatio"`
	DebtToEquity       decimal.Decimal `json:"debtToEquity"`
	ROEPercent         decimal.Decimal `json:"roePercent"`

	HasUploadedData bool `json:"hasUploadedData"`
}

// Calculate derives the snapshot for the state's active view mode. It reads
// the state only and always yields the same snapshot for the same state.
func Calculate(state models.State) Snapshot {
	settings := state.Settings
	s := Snapshot{ViewMode: settings.ViewMode, FiscalYear: settings.CurrentFiscalYear}

	include := func(entity models.Dated) bool {
		return fiscal.IsInFiscalYear(entity, settings.CurrentFiscalYear, settings.FiscalYearStart)
	}
	if settings.ViewMode == models.ViewAllTime {
		include = fiscal.IsValidForAllTime
	}

	revenue := decimal.Zero
	for _, c := range state.Clients {
		if c.Type == models.ClientRetainer && include(c) {
			revenue = revenue.Add(c.Amount)
		}
	}
	for _, p := range state.Projects {
		if include(p) {
			revenue = revenue.Add(p.Amount)
		}
	}

	// costs are ongoing and never filtered by fiscal year
	costs := decimal.Zero
	for _, c := range state.Costs.All() {
		costs = costs.Add(c.Amount)
	}

	if settings.ViewMode == models.ViewAllTime {
		for _, reports := range state.HistoricalData {
			r, c := reportFlows(reports)
			revenue, costs = revenue.Add(r), costs.Add(c)
			if !reports.Empty() {
				s.HasUploadedData = true
			}
		}
	} else {
		current := currentYearReports(state.FinancialReports, settings.CurrentFiscalYear)
		r, c := reportFlows(current)
		revenue, costs = revenue.Add(r), costs.Add(c)
		s.HasUploadedData = !current.Empty()

		if bs := current.BalanceSheet; bs != nil {
			s.TotalAssets = bs.AssetTotal()
			s.CurrentAssets = s.TotalAssets.Mul(CurrentAssetsShare)
			s.CurrentLiabilities = bs.LiabilityTotal()
			s.TotalEquity = bs.EquityTotal()
		}
	}

	s.TotalRevenue = revenue
	s.TotalCosts = costs
	s.GrossProfit = revenue.Sub(costs)
	s.CorporationTax = decimal.Max(decimal.Zero, s.GrossProfit).Mul(settings.CorporationTaxRate)
	s.NetProfit = s.GrossProfit.Sub(s.CorporationTax)
	if revenue.IsPositive() {
		s.ProfitMargin = s.GrossProfit.Div(revenue).Mul(hundred)
	}

	if s.CurrentLiabilities.IsPositive() {
		s.CurrentRatio = s.CurrentAssets.Div(s.CurrentLiabilities)
	}
	if s.TotalEquity.IsPositive() {
		s.DebtToEquity = s.CurrentLiabilities.Div(s.TotalEquity)
		s.ROEPercent = s.NetProfit.Div(s.TotalEquity).Mul(hundred)
	}
	return s
}

// currentYearReports keeps only the current slots stamped with the given
// fiscal year.
func currentYearReports(reports models.Reports, fiscalYear int) models.Reports {
	var out models.Reports
	for _, r := range reports.All() {
		if r.Metadata().FiscalYear == fiscalYear {
			_ = out.Set(r)
		}
	}
	return out
}

// reportFlows returns the revenue and costs contributed by a set of reports.
func reportFlows(reports models.Reports) (revenue, costs decimal.Decimal) {
	revenue, costs = decimal.Zero, decimal.Zero
	if pl := reports.ProfitLoss; pl != nil {
		revenue = revenue.Add(pl.RevenueTotal())
		costs = costs.Add(pl.ExpenseTotal())
	}
	if bank := reports.BankTransactions; bank != nil {
		revenue = revenue.Add(bank.Credits())
		costs = costs.Add(bank.Debits())
	}
	return revenue, costs
}
