package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/agencyfin/pkg/advice"
	"github.com/yurifrl/agencyfin/pkg/csv"
	"github.com/yurifrl/agencyfin/pkg/executors"
	"github.com/yurifrl/agencyfin/pkg/metrics"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/store"
)

var now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Detail string          `json:"detail"`
}

type fakeFeed struct {
	rows []csv.Row
	err  error
}

func (f fakeFeed) AccountRows(_, _ string, _ time.Time) ([]csv.Row, error) {
	return f.rows, f.err
}

func newServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard)

	st, err := store.Open("", models.DefaultSettings(now), logger)
	require.NoError(t, err)

	s := New(st, logger)
	s.now = func() time.Time { return now }
	return s
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func decodeState(t *testing.T, env envelope) models.State {
	t.Helper()
	var state models.State
	require.NoError(t, json.Unmarshal(env.Data, &state))
	return state
}

func upload(t *testing.T, s *Server, reportType, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports/"+reportType, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestClients(t *testing.T) {
	s := newServer(t)

	w, env := do(t, s, http.MethodPost, "/api/clients", `{"name":"Acme","type":"retainer","amount":"1000","startDate":"2024-05-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "success", env.Status)
	state := decodeState(t, env)
	require.Len(t, state.Clients, 1)
	assert.Equal(t, int64(1), state.Clients[0].ID)

	w, env = do(t, s, http.MethodPut, "/api/clients/1", `{"name":"Acme Ltd","type":"retainer","amount":1500,"startDate":"2024-05-01"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Acme Ltd", decodeState(t, env).Clients[0].Name)

	w, env = do(t, s, http.MethodDelete, "/api/clients/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", env.Status)

	w, _ = do(t, s, http.MethodPost, "/api/clients", `{"name":"","type":"retainer"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, s, http.MethodPost, "/api/clients", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "request body must not be empty", env.Error)

	w, _ = do(t, s, http.MethodDelete, "/api/clients/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, s, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "1500", snap.TotalRevenue.String())

	w, _ = do(t, s, http.MethodDelete, "/api/clients/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectsAndCosts(t *testing.T) {
	s := newServer(t)

	w, _ := do(t, s, http.MethodPost, "/api/projects", `{"name":"Site","amount":"2000","status":"in-progress","startDate":"2024-07-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := do(t, s, http.MethodPost, "/api/costs", `{"name":"Designer","category":"team","amount":"800","frequency":"monthly"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	state := decodeState(t, env)
	require.Len(t, state.Costs.Team, 1)
	id := state.Costs.Team[0].ID
	assert.Equal(t, int64(2), id)

	w, _ = do(t, s, http.MethodPut, "/api/costs/2", `{"name":"Designer","category":"team","amount":"900","frequency":"monthly"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = do(t, s, http.MethodDelete, "/api/costs/marketing/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, s, http.MethodDelete, "/api/costs/team/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, env).Costs.Team)

	w, _ = do(t, s, http.MethodPut, "/api/projects/1", `{"name":"Site","amount":"2000","status":"done"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodDelete, "/api/projects/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSettingsAndFiscalYear(t *testing.T) {
	s := newServer(t)

	w, env := do(t, s, http.MethodPut, "/api/settings", `{"currency":"usd","fiscalYearStart":"January","corporationTaxRate":"0.25"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	settings := decodeState(t, env).Settings
	assert.Equal(t, "USD", settings.Currency)
	assert.Equal(t, models.Month(time.January), settings.FiscalYearStart)
	assert.Equal(t, "0.25", settings.CorporationTaxRate.String())

	w, _ = do(t, s, http.MethodPut, "/api/settings", `{"currency":"pounds"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodPut, "/api/settings", `{"corporationTaxRate":1.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodPut, "/api/settings", `{"fiscalYearStart":"Smarch"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, s, http.MethodPut, "/api/fiscal-year", `{"year":2022}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2022, decodeState(t, env).Settings.CurrentFiscalYear)

	w, env = do(t, s, http.MethodPut, "/api/view-mode", `{"mode":"allTime"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ViewAllTime, decodeState(t, env).Settings.ViewMode)

	w, _ = do(t, s, http.MethodPut, "/api/view-mode", `{"mode":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, s, http.MethodGet, "/api/fiscal-years", "")
	require.Equal(t, http.StatusOK, w.Code)
	var years struct {
		Current int   `json:"current"`
		Years   []int `json:"years"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &years))
	assert.Equal(t, 2022, years.Current)
	assert.Equal(t, []int{2024, 2023, 2022, 2021, 2020, 2019}, years.Years)
}

func TestTemplateUploadAndExport(t *testing.T) {
	s := newServer(t)

	w, _ := do(t, s, http.MethodGet, "/api/templates/bank-transactions?fiscal_year=2024", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), csv.TemplateFilename(models.BankTransactionsReport, 2024))
	template := w.Body.String()

	w, _ = do(t, s, http.MethodGet, "/api/reports/bank-transactions", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = upload(t, s, "bank-transactions", "statement.csv", template)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	state := s.store.State()
	bank := state.FinancialReports.BankTransactions
	require.NotNil(t, bank)
	assert.Equal(t, 9, bank.Summary.TotalTransactions)
	assert.Equal(t, "statement.csv", bank.OriginalFileName)
	assert.Equal(t, 2024, bank.FiscalYear)
	assert.NotNil(t, state.HistoricalData[2024].BankTransactions)

	w, _ = do(t, s, http.MethodGet, "/api/reports/bank-transactions", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows, err := csv.Parse(w.Body.String())
	require.NoError(t, err)
	assert.Len(t, rows, 9)

	w = upload(t, s, "bank-transactions", "statement.doc", "hello")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = do(t, s, http.MethodGet, "/api/templates/invoice", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, s, http.MethodDelete, "/api/reports/bank-transactions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, s.store.State().FinancialReports.BankTransactions)
}

func TestManualEntry(t *testing.T) {
	s := newServer(t)

	w, env := do(t, s, http.MethodPost, "/api/reports/profit-loss/manual", `{"revenue":[{"name":"Retainers","months":{"Apr":"1000","May":"500"}}],"expenses":[{"name":"Rent","months":{"Apr":"300"}}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pl := decodeState(t, env).FinancialReports.ProfitLoss
	require.NotNil(t, pl)
	assert.Equal(t, models.SourceManual, pl.Source)
	assert.Equal(t, "1500", pl.RevenueTotal().String())

	w, env = do(t, s, http.MethodGet, "/api/reports/profit-loss/manual", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Retainers")

	w, _ = do(t, s, http.MethodPost, "/api/reports/balance-sheet/manual", `{"assets":[{"name":"Cash","amount":"5000"}],"equity":[{"name":"Capital","amount":"5000"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = do(t, s, http.MethodPost, "/api/reports/bank/manual", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, s, http.MethodGet, "/api/advice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []advice.Item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.NotEmpty(t, items)
	assert.Equal(t, "Financial Data Integration Complete", items[0].Title)
}

func TestBackupRestore(t *testing.T) {
	s := newServer(t)
	_, _ = do(t, s, http.MethodPost, "/api/clients", `{"name":"Acme","type":"one-time","amount":"100"}`)

	w, _ := do(t, s, http.MethodGet, "/api/backup", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "agency-finance-backup-2024-06-01.json")
	backup := w.Body.String()

	w, env := do(t, s, http.MethodDelete, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, env).Clients)

	w, env = do(t, s, http.MethodPost, "/api/backup", backup)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state := decodeState(t, env)
	require.Len(t, state.Clients, 1)
	assert.Equal(t, "Acme", state.Clients[0].Name)
	assert.Equal(t, int64(2), state.NextID)

	w, _ = do(t, s, http.MethodPost, "/api/backup", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestYNABImport(t *testing.T) {
	s := newServer(t)
	s.feed = func(token string) executors.Feed {
		assert.Equal(t, "secret", token)
		return fakeFeed{rows: []csv.Row{
			{"date": "2024-05-01", "description": "Acme - Invoice 1", "amount": "1200"},
			{"date": "2024-05-03", "description": "HMRC VAT", "amount": "-300"},
		}}
	}

	w, env := do(t, s, http.MethodPost, "/api/ynab/import", `{"token":"secret","budgetId":"b","accountId":"a","since":"2024-04-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bank := decodeState(t, env).FinancialReports.BankTransactions
	require.NotNil(t, bank)
	assert.Equal(t, models.SourceYNAB, bank.Source)
	assert.Equal(t, models.CategoryTax, bank.Transactions[1].Category)

	w, _ = do(t, s, http.MethodPost, "/api/ynab/import", `{"token":"secret","budgetId":"b"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodPost, "/api/ynab/import", `{"token":"secret","budgetId":"b","accountId":"a","since":"April"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.feed = func(string) executors.Feed { return fakeFeed{err: errors.New("unauthorized")} }
	w, _ = do(t, s, http.MethodPost, "/api/ynab/import", `{"token":"secret","budgetId":"b","accountId":"a"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w, _ = do(t, s, http.MethodGet, "/api/ynab/budgets", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
