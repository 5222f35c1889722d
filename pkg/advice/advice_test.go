package advice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yurifrl/agencyfin/pkg/metrics"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/money"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func newState() models.State {
	return models.NewState(models.DefaultSettings(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
}

func TestEmptyStateOnlyWarnsAboutMargin(t *testing.T) {
	state := newState()

	items := Generate(state, metrics.Calculate(state))

	assert.Equal(t, []string{"Low Profit Margin"}, titles(items))
}

func TestHealthyAgency(t *testing.T) {
	state := newState()
	state.Clients = []models.Client{{Name: "Acme", Type: models.ClientRetainer, Amount: dec("10000"), StartDate: "2024-05-01"}}
	state.FinancialReports.BalanceSheet = &models.BalanceSheet{
		Meta:             models.Meta{FiscalYear: 2024},
		TotalAssets:      models.Amount(dec("10000")),
		TotalLiabilities: models.Amount(dec("3000")),
		TotalEquity:      models.Amount(dec("7000")),
	}

	items := Generate(state, metrics.Calculate(state))

	assert.Equal(t, []string{
		"Financial Data Integration Complete",
		"Excellent Profit Margin",
		"Corporation Tax Planning",
	}, titles(items))

	tax := items[2]
	assert.Equal(t, Info, tax.Kind)
	assert.Equal(t, High, tax.Priority)
	assert.Contains(t, tax.Description, "FY 2024")
	assert.Contains(t, tax.Description, "April 2025")
	assert.Equal(t, "Save "+money.Format(dec("2090"), "GBP")+" for tax payments", tax.Action)
}

func TestWarnings(t *testing.T) {
	state := newState()
	state.Projects = []models.Project{{Name: "Site", Amount: dec("1000"), StartDate: "2024-05-01"}}
	state.Costs.Team = []models.Cost{{Name: "Staff", Amount: dec("5000"), Category: models.CostTeam, Frequency: models.FrequencyMonthly}}

	s := metrics.Snapshot{
		TotalRevenue: dec("1000"),
		TotalCosts:   dec("5000"),
		ProfitMargin: dec("-400"),
		CurrentRatio: dec("0.5"),
		DebtToEquity: dec("2.5"),
	}

	items := Generate(state, s)

	assert.Equal(t, []string{
		"Low Profit Margin",
		"Low Liquidity Ratio",
		"High Debt Levels",
		"Negative Monthly Cash Flow",
		"Consider Recurring Revenue",
	}, titles(items))
	assert.Equal(t, Critical, items[3].Priority)
	assert.Contains(t, items[1].Description, "0.5")
}

func TestExcessLiquidity(t *testing.T) {
	items := Generate(newState(), metrics.Snapshot{ProfitMargin: dec("20"), CurrentRatio: dec("3.5")})

	assert.Equal(t, []string{"Excess Liquidity"}, titles(items))
	assert.Equal(t, Medium, items[0].Priority)
}
