package store

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/agencyfin/pkg/models"
)

var defaults = models.DefaultSettings(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func retainer(name, amount, start string) models.Client {
	return models.Client{Name: name, Type: models.ClientRetainer, Amount: dec(amount), StartDate: start}
}

func reduceAll(t *testing.T, state models.State, actions ...Action) models.State {
	t.Helper()
	for _, a := range actions {
		var err error
		state, err = Reduce(state, a)
		require.NoError(t, err, a.Name())
	}
	return state
}

func TestClientLifecycle(t *testing.T) {
	s := reduceAll(t, models.NewState(defaults),
		AddClient{retainer("Acme", "1000", "2024-05-01")},
		AddClient{retainer("Beta", "500", "2024-06-01")},
		DeleteClient{ID: 1},
		AddClient{retainer("Gamma", "250", "2024-07-01")},
	)

	require.Len(t, s.Clients, 2)
	assert.Equal(t, int64(2), s.Clients[0].ID)
	assert.Equal(t, int64(3), s.Clients[1].ID)
	assert.Equal(t, int64(4), s.NextID)

	updated := s.Clients[0]
	updated.Amount = dec("750")
	s = reduceAll(t, s, UpdateClient{updated})
	assert.Equal(t, "750", s.Clients[0].Amount.String())

	_, err := Reduce(s, UpdateClient{models.Client{ID: 99, Name: "Ghost", Type: models.ClientOneTime}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Reduce(s, DeleteProject{ID: 2})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := reduceAll(t, models.NewState(defaults), AddClient{retainer("Acme", "1000", "2024-05-01")})

	next, err := Reduce(s, DeleteClient{ID: 1})
	require.NoError(t, err)
	assert.Empty(t, next.Clients)
	assert.Len(t, s.Clients, 1)

	_, err = Reduce(s, AddClient{retainer("Negative", "-1", "")})
	assert.ErrorIs(t, err, models.ErrNegativeAmount)
	assert.Len(t, s.Clients, 1)
}

func TestCosts(t *testing.T) {
	rent := models.Cost{Name: "Rent", Category: models.CostOperations, Amount: dec("1200"), Frequency: models.FrequencyMonthly}
	s := reduceAll(t, models.NewState(defaults),
		AddCost{rent},
		AddCost{models.Cost{Name: "Ads", Category: models.CostMarketing, Amount: dec("300"), Frequency: models.FrequencyOneTime}},
	)
	require.Len(t, s.Costs.Operations, 1)
	require.Len(t, s.Costs.Marketing, 1)

	rent = s.Costs.Operations[0]
	rent.Amount = dec("1300")
	s = reduceAll(t, s, UpdateCost{rent}, DeleteCost{Category: models.CostMarketing, ID: 2})
	assert.Equal(t, "1300", s.Costs.Operations[0].Amount.String())
	assert.Empty(t, s.Costs.Marketing)

	_, err := Reduce(s, DeleteCost{Category: models.CostTeam, ID: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Reduce(s, DeleteCost{Category: "travel", ID: 1})
	assert.ErrorIs(t, err, models.ErrUnknownCategory)
}

func TestUploadAndFiscalYears(t *testing.T) {
	at := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
	pl := &models.ProfitLoss{TotalRevenue: models.Amount(dec("5000"))}

	s := reduceAll(t, models.NewState(defaults), UploadReport{Report: pl, FileName: "pl.csv", At: at})

	require.NotNil(t, s.FinancialReports.ProfitLoss)
	assert.Equal(t, 2024, s.FinancialReports.ProfitLoss.FiscalYear)
	assert.Equal(t, at, s.FinancialReports.ProfitLoss.UploadDate)
	assert.Equal(t, "pl.csv", s.FinancialReports.ProfitLoss.OriginalFileName)
	require.NotNil(t, s.HistoricalData[2024].ProfitLoss)
	assert.NotSame(t, s.FinancialReports.ProfitLoss, s.HistoricalData[2024].ProfitLoss)
	assert.Equal(t, 0, pl.FiscalYear, "uploaded report must be copied")

	s = reduceAll(t, s, ChangeFiscalYear{Year: 2023})
	assert.Equal(t, 2023, s.Settings.CurrentFiscalYear)
	assert.True(t, s.FinancialReports.Empty())

	s = reduceAll(t, s, ChangeFiscalYear{Year: 2024})
	require.NotNil(t, s.FinancialReports.ProfitLoss)
	assert.Equal(t, "5000", s.FinancialReports.ProfitLoss.RevenueTotal().String())

	s = reduceAll(t, s, DeleteReport{Type: models.ProfitLossReport})
	assert.Nil(t, s.FinancialReports.ProfitLoss)
	assert.Nil(t, s.HistoricalData[2024].ProfitLoss)

	_, err := Reduce(s, DeleteReport{Type: "ledger"})
	assert.ErrorIs(t, err, models.ErrUnknownReportType)
}

func TestSettings(t *testing.T) {
	rate := dec("0.25")
	currency := "EUR"
	s := reduceAll(t, models.NewState(defaults),
		UpdateSettings{CorporationTaxRate: &rate, Currency: &currency},
		SetViewMode{Mode: models.ViewAllTime},
	)
	assert.Equal(t, "0.25", s.Settings.CorporationTaxRate.String())
	assert.Equal(t, "EUR", s.Settings.Currency)
	assert.Equal(t, models.Month(time.April), s.Settings.FiscalYearStart)
	assert.Equal(t, models.ViewAllTime, s.Settings.ViewMode)

	tooHigh := dec("1.5")
	_, err := Reduce(s, UpdateSettings{CorporationTaxRate: &tooHigh})
	assert.Error(t, err)

	badMonth := models.Month(13)
	_, err = Reduce(s, UpdateSettings{FiscalYearStart: &badMonth})
	assert.ErrorIs(t, err, models.ErrUnknownMonth)

	_, err = Reduce(s, SetViewMode{Mode: "weekly"})
	assert.Error(t, err)
}

func TestLoadDataRepairsBlob(t *testing.T) {
	saved := models.State{
		Clients: []models.Client{{ID: 41, Name: "Old", Type: models.ClientRetainer}},
	}

	s := reduceAll(t, models.NewState(defaults), LoadData{State: saved, Defaults: defaults})

	assert.Equal(t, int64(42), s.NextID)
	assert.Equal(t, defaults, s.Settings)
	assert.NotNil(t, s.Projects)
	assert.NotNil(t, s.HistoricalData)
}

func TestClearAllData(t *testing.T) {
	s := reduceAll(t, models.NewState(defaults),
		AddClient{retainer("Acme", "1000", "2024-05-01")},
		ClearAllData{Settings: defaults},
	)
	assert.Equal(t, models.NewState(defaults), s)
}

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	st, err := Open(path, defaults, log.New(io.Discard))
	require.NoError(t, err)
	return st
}

func TestStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	st := openStore(t, path)
	_, err := st.Dispatch(AddClient{retainer("Acme", "1000", "2024-05-01")})
	require.NoError(t, err)
	_, err = st.Dispatch(UploadReport{Report: &models.ProfitLoss{TotalRevenue: models.Amount(dec("5000"))}, FileName: "pl.pdf"})
	require.NoError(t, err)

	reopened := openStore(t, path)
	state := reopened.State()
	require.Len(t, state.Clients, 1)
	assert.Equal(t, "Acme", state.Clients[0].Name)
	require.NotNil(t, state.HistoricalData[2024].ProfitLoss)
	assert.False(t, state.FinancialReports.ProfitLoss.UploadDate.IsZero())
	assert.Equal(t, "6000", reopened.Metrics().TotalRevenue.String())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStoreRejectsFailedAction(t *testing.T) {
	st := openStore(t, "")

	_, err := st.Dispatch(DeleteClient{ID: 7})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(1), st.State().NextID)
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path, defaults, log.New(io.Discard))
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	src := openStore(t, "")
	_, err := src.Dispatch(AddClient{retainer("Acme", "1000", "2024-05-01")})
	require.NoError(t, err)
	_, err = src.Dispatch(AddCost{models.Cost{Name: "Rent", Category: models.CostOperations, Amount: dec("100"), Frequency: models.FrequencyMonthly}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))
	assert.Contains(t, buf.String(), `"startDate": "2024-05-01"`)

	dst := openStore(t, "")
	require.NoError(t, dst.Import(&buf))
	assert.Equal(t, src.Metrics(), dst.Metrics())
	assert.Equal(t, int64(3), dst.State().NextID)

	require.NoError(t, dst.Reset())
	assert.Empty(t, dst.State().Clients)

	assert.Error(t, dst.Import(bytes.NewBufferString("[]")))
}
