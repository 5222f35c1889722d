package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"

	"github.com/yurifrl/agencyfin/pkg/advice"
	"github.com/yurifrl/agencyfin/pkg/csv"
	"github.com/yurifrl/agencyfin/pkg/fiscal"
	"github.com/yurifrl/agencyfin/pkg/manual"
	"github.com/yurifrl/agencyfin/pkg/metrics"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/money"
	"github.com/yurifrl/agencyfin/pkg/store"
	"github.com/yurifrl/agencyfin/pkg/ynab"
)

// ---------------- state ----------------

func (s *Server) handleState(c *gin.Context) {
	s.writeJSON(c, http.StatusOK, s.store.State())
}

func (s *Server) handleMetrics(c *gin.Context) {
	s.writeJSON(c, http.StatusOK, s.store.Metrics())
}

func (s *Server) handleAdvice(c *gin.Context) {
	state := s.store.State()
	s.writeJSON(c, http.StatusOK, advice.Generate(state, metrics.Calculate(state)))
}

func (s *Server) handleReset(c *gin.Context) {
	if err := s.store.Reset(); err != nil {
		s.respondError(c, statusFor(err), "failed to reset", err)
		return
	}
	s.writeJSON(c, http.StatusOK, s.store.State())
}

// ---------------- clients, projects, costs ----------------

func (s *Server) handleAddClient(c *gin.Context) {
	var client models.Client
	if !s.bind(c, &client) {
		return
	}
	s.dispatch(c, http.StatusCreated, store.AddClient{Client: client})
}

func (s *Server) handleUpdateClient(c *gin.Context) {
	id, ok := s.paramID(c)
	if !ok {
		return
	}
	var client models.Client
	if !s.bind(c, &client) {
		return
	}
	client.ID = id
	s.dispatch(c, http.StatusOK, store.UpdateClient{Client: client})
}

func (s *Server) handleDeleteClient(c *gin.Context) {
	if id, ok := s.paramID(c); ok {
		s.dispatch(c, http.StatusOK, store.DeleteClient{ID: id})
	}
}

func (s *Server) handleAddProject(c *gin.Context) {
	var project models.Project
	if !s.bind(c, &project) {
		return
	}
	s.dispatch(c, http.StatusCreated, store.AddProject{Project: project})
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	id, ok := s.paramID(c)
	if !ok {
		return
	}
	var project models.Project
	if !s.bind(c, &project) {
		return
	}
	project.ID = id
	s.dispatch(c, http.StatusOK, store.UpdateProject{Project: project})
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	if id, ok := s.paramID(c); ok {
		s.dispatch(c, http.StatusOK, store.DeleteProject{ID: id})
	}
}

func (s *Server) handleAddCost(c *gin.Context) {
	var cost models.Cost
	if !s.bind(c, &cost) {
		return
	}
	s.dispatch(c, http.StatusCreated, store.AddCost{Cost: cost})
}

func (s *Server) handleUpdateCost(c *gin.Context) {
	id, ok := s.paramID(c)
	if !ok {
		return
	}
	var cost models.Cost
	if !s.bind(c, &cost) {
		return
	}
	cost.ID = id
	s.dispatch(c, http.StatusOK, store.UpdateCost{Cost: cost})
}

func (s *Server) handleDeleteCost(c *gin.Context) {
	if id, ok := s.paramID(c); ok {
		s.dispatch(c, http.StatusOK, store.DeleteCost{Category: models.CostCategory(c.Param("category")), ID: id})
	}
}

// ---------------- settings ----------------

type settingsRequest struct {
	CorporationTaxRate *decimal.Decimal `json:"corporationTaxRate"`
	Currency           *string          `json:"currency"`
	FiscalYearStart    *models.Month     `json:"fiscalYearStart"`
}

func (s *Server) handleSettings(c *gin.Context) {
	var req settingsRequest
	if !s.bind(c, &req) {
		return
	}
	if req.Currency != nil {
		code := strings.ToUpper(*req.Currency)
		if !money.ValidCode(code) {
			s.respondError(c, http.StatusBadRequest, "unknown currency", fmt.Errorf("%q is not an ISO 4217 code", *req.Currency))
			return
		}
		req.Currency = &code
	}
	s.dispatch(c, http.StatusOK, store.UpdateSettings{
		CorporationTaxRate: req.CorporationTaxRate,
		Currency:           req.Currency,
		FiscalYearStart:    req.FiscalYearStart,
	})
}

func (s *Server) handleFiscalYears(c *gin.Context) {
	state := s.store.State()
	years := fiscal.AvailableYears(s.now(), maps.Keys(state.HistoricalData))
	labels := make(map[int]string, len(years))
	for _, y := range years {
		labels[y] = fiscal.Label(y)
	}
	s.writeJSON(c, http.StatusOK, gin.H{
		"current": state.Settings.CurrentFiscalYear,
		"years":   years,
		"labels":  labels,
	})
}

func (s *Server) handleChangeFiscalYear(c *gin.Context) {
	var req struct {
		Year int `json:"year" binding:"required"`
	}
	if !s.bind(c, &req) {
		return
	}
	s.dispatch(c, http.StatusOK, store.ChangeFiscalYear{Year: req.Year})
}

func (s *Server) handleViewMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if !s.bind(c, &req) {
		return
	}
	mode, err := models.ParseViewMode(req.Mode)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "unknown view mode", err)
		return
	}
	s.dispatch(c, http.StatusOK, store.SetViewMode{Mode: mode})
}

// ---------------- reports ----------------

func (s *Server) handleTemplate(c *gin.Context) {
	reportType, ok := s.paramReportType(c)
	if !ok {
		return
	}
	settings := s.store.State().Settings
	year := settings.CurrentFiscalYear
	if raw := c.Query("fiscal_year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, "invalid fiscal_year", err)
			return
		}
		year = y
	}
	body, err := csv.Template(reportType, year, settings.FiscalYearStart)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "failed to build template", err)
		return
	}
	attachment(c, csv.TemplateFilename(reportType, year))
	c.Data(http.StatusOK, "text/csv", []byte(body))
}

func (s *Server) handleExportReport(c *gin.Context) {
	reportType, ok := s.paramReportType(c)
	if !ok {
		return
	}
	state := s.store.State()
	report := state.FinancialReports.Get(reportType)
	if report == nil {
		s.respondError(c, http.StatusNotFound, "no report uploaded for the current fiscal year", nil)
		return
	}
	var buf bytes.Buffer
	if err := csv.WriteReport(&buf, report); err != nil {
		s.respondError(c, http.StatusInternalServerError, "failed to write report", err)
		return
	}
	attachment(c, fmt.Sprintf("%s-fy%d.csv", reportType.Slug(), state.Settings.CurrentFiscalYear))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (s *Server) handleUpload(c *gin.Context) {
	reportType, ok := s.paramReportType(c)
	if !ok {
		return
	}
	header, err := c.FormFile("document")
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "document file required", err)
		return
	}
	file, err := header.Open()
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "failed to read file", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, "failed to read file", err)
		return
	}

	year := s.store.State().Settings.CurrentFiscalYear
	report, err := s.parser.ProcessBytes(data, header.Filename, reportType, year)
	if err != nil {
		s.respondError(c, http.StatusUnprocessableEntity, "failed to process file", err)
		return
	}
	s.logger.Info("extracted report", "type", reportType, "file", header.Filename, "fiscal_year", year)
	s.dispatch(c, http.StatusCreated, store.UploadReport{Report: report, FileName: header.Filename})
}

func (s *Server) handleDeleteReport(c *gin.Context) {
	if reportType, ok := s.paramReportType(c); ok {
		s.dispatch(c, http.StatusOK, store.DeleteReport{Type: reportType})
	}
}

// handleManualRows returns the current report as editable form rows.
func (s *Server) handleManualRows(c *gin.Context) {
	reportType, ok := s.paramReportType(c)
	if !ok {
		return
	}
	state := s.store.State()
	switch reportType {
	case models.ProfitLossReport:
		s.writeJSON(c, http.StatusOK, manual.ProfitLossRows(state.FinancialReports.ProfitLoss, state.Settings.FiscalYearStart))
	case models.BalanceSheetReport:
		s.writeJSON(c, http.StatusOK, manual.BalanceSheetRows(state.FinancialReports.BalanceSheet))
	default:
		s.respondError(c, http.StatusBadRequest, "manual entry is only available for profit & loss and balance sheet", nil)
	}
}

func (s *Server) handleManualReport(c *gin.Context) {
	reportType, ok := s.paramReportType(c)
	if !ok {
		return
	}
	var report models.Report
	switch reportType {
	case models.ProfitLossReport:
		var in manual.ProfitLossInput
		if !s.bind(c, &in) {
			return
		}
		report = manual.ProfitLoss(in, s.store.State().Settings.FiscalYearStart, s.now())
	case models.BalanceSheetReport:
		var in manual.BalanceSheetInput
		if !s.bind(c, &in) {
			return
		}
		report = manual.BalanceSheet(in, s.now())
	default:
		s.respondError(c, http.StatusBadRequest, "manual entry is only available for profit & loss and balance sheet", nil)
		return
	}
	s.dispatch(c, http.StatusCreated, store.UploadReport{Report: report})
}

// ---------------- backup ----------------

func (s *Server) handleBackup(c *gin.Context) {
	attachment(c, fmt.Sprintf("agency-finance-backup-%s.json", s.now().Format(time.DateOnly)))
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := s.store.Export(c.Writer); err != nil {
		s.logger.Warn("failed to write backup", "err", err)
	}
}

func (s *Server) handleRestore(c *gin.Context) {
	if err := s.store.Import(c.Request.Body); err != nil {
		s.respondError(c, statusFor(err), "failed to restore backup", err)
		return
	}
	s.writeJSON(c, http.StatusOK, s.store.State())
}

// ---------------- ynab ----------------

func (s *Server) token(c *gin.Context) (string, bool) {
	token := c.Query("token")
	if token == "" {
		s.respondError(c, http.StatusBadRequest, "token required", nil)
		return "", false
	}
	return token, true
}

func (s *Server) handleBudgets(c *gin.Context) {
	token, ok := s.token(c)
	if !ok {
		return
	}
	budgets, err := ynab.New(token).Budget().GetBudgets()
	if err != nil {
		s.respondError(c, http.StatusBadGateway, "failed to fetch budgets", err)
		return
	}
	s.logger.Info("budgets response", "budgets_count", len(budgets))
	s.writeJSON(c, http.StatusOK, budgets)
}

func (s *Server) handleBudgetAccounts(c *gin.Context) {
	token, ok := s.token(c)
	if !ok {
		return
	}
	budgetID := c.Param("budget")
	res, err := ynab.New(token).Account().GetAccounts(budgetID, nil)
	if err != nil {
		s.respondError(c, http.StatusBadGateway, "failed to fetch accounts", err)
		return
	}
	accounts := []any{}
	if res != nil {
		for _, a := range res.Accounts {
			accounts = append(accounts, a)
		}
	}
	s.logger.Info("accounts response", "budget_id", budgetID, "accounts_count", len(accounts))
	s.writeJSON(c, http.StatusOK, accounts)
}

type importRequest struct {
	Token     string `json:"token" binding:"required"`
	BudgetID  string `json:"budgetId" binding:"required"`
	AccountID string `json:"accountId" binding:"required"`
	Since     string `json:"since"`
}

// handleYNABImport pulls an account's transactions into the bank
// transactions slot of the current fiscal year.
func (s *Server) handleYNABImport(c *gin.Context) {
	var req importRequest
	if !s.bind(c, &req) {
		return
	}
	var since time.Time
	if req.Since != "" {
		t, err := time.Parse(time.DateOnly, req.Since)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, "invalid since date", err)
			return
		}
		since = t
	}

	rows, err := s.feed(req.Token).AccountRows(req.BudgetID, req.AccountID, since)
	if err != nil {
		s.respondError(c, http.StatusBadGateway, "failed to fetch remote transactions", err)
		return
	}
	year := s.store.State().Settings.CurrentFiscalYear
	report, err := s.parser.ProcessRows(rows, "ynab-"+req.AccountID, models.BankTransactionsReport, models.SourceYNAB, year)
	if err != nil {
		s.respondError(c, http.StatusUnprocessableEntity, "failed to process transactions", err)
		return
	}
	s.dispatch(c, http.StatusCreated, store.UploadReport{Report: report})
}
