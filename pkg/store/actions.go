package store

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/agencyfin/pkg/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrPersist  = errors.New("state not saved")
)

// Action is a state transition. Reduce knows every concrete action.
type Action interface {
	Name() string
}

type (
	AddClient    struct{ Client models.Client }
	UpdateClient struct{ Client models.Client }
	DeleteClient struct{ ID int64 }

	AddProject    struct{ Project models.Project }
	UpdateProject struct{ Project models.Project }
	DeleteProject struct{ ID int64 }

	AddCost    struct{ Cost models.Cost }
	UpdateCost struct{ Cost models.Cost }
	DeleteCost struct {
		Category models.CostCategory
		ID       int64
	}

	// UploadReport stores a report under the current fiscal year, both in
	// the current slot and in the historical data for that year.
	UploadReport struct {
		Report   models.Report
		FileName string
		At       time.Time
	}
	DeleteReport struct{ Type models.ReportType }

	// UpdateSettings changes only the fields that are set.
	UpdateSettings struct {
		CorporationTaxRate *decimal.Decimal
		Currency           *string
		FiscalYearStart    *models.Month
	}
	ChangeFiscalYear struct{ Year int }
	SetViewMode      struct{ Mode models.ViewMode }

	// LoadData replaces the state with a previously saved one. Missing
	// settings fall back to Defaults.
	LoadData struct {
		State    models.State
		Defaults models.Settings
	}
	ClearAllData struct{ Settings models.Settings }
)

func (AddClient) Name() string        { return "add_client" }
func (UpdateClient) Name() string     { return "update_client" }
func (DeleteClient) Name() string     { return "delete_client" }
func (AddProject) Name() string       { return "add_project" }
func (UpdateProject) Name() string    { return "update_project" }
func (DeleteProject) Name() string    { return "delete_project" }
func (AddCost) Name() string          { return "add_cost" }
func (UpdateCost) Name() string       { return "update_cost" }
func (DeleteCost) Name() string       { return "delete_cost" }
func (UploadReport) Name() string     { return "upload_report" }
func (DeleteReport) Name() string     { return "delete_report" }
func (UpdateSettings) Name() string   { return "update_settings" }
func (ChangeFiscalYear) Name() string { return "change_fiscal_year" }
func (SetViewMode) Name() string      { return "set_view_mode" }
func (LoadData) Name() string         { return "load_data" }
func (ClearAllData) Name() string     { return "clear_all_data" }

// Reduce applies an action to a copy of state and returns the copy. The
// input is never modified, so a failed action leaves the caller's state
// untouched.
func Reduce(state models.State, action Action) (models.State, error) {
	s := state.Clone()

	switch a := action.(type) {
	case AddClient:
		if err := a.Client.Validate(); err != nil {
			return state, err
		}
		a.Client.ID = s.NextID
		s.NextID++
		s.Clients = append(s.Clients, a.Client)

	case UpdateClient:
		if err := a.Client.Validate(); err != nil {
			return state, err
		}
		i := slices.IndexFunc(s.Clients, func(c models.Client) bool { return c.ID == a.Client.ID })
		if i < 0 {
			return state, fmt.Errorf("client %d: %w", a.Client.ID, ErrNotFound)
		}
		s.Clients[i] = a.Client

	case DeleteClient:
		n := len(s.Clients)
		s.Clients = slices.DeleteFunc(s.Clients, func(c models.Client) bool { return c.ID == a.ID })
		if len(s.Clients) == n {
			return state, fmt.Errorf("client %d: %w", a.ID, ErrNotFound)
		}

	case AddProject:
		if err := a.Project.Validate(); err != nil {
			return state, err
		}
		a.Project.ID = s.NextID
		s.NextID++
		s.Projects = append(s.Projects, a.Project)

	case UpdateProject:
		if err := a.Project.Validate(); err != nil {
			return state, err
		}
		i := slices.IndexFunc(s.Projects, func(p models.Project) bool { return p.ID == a.Project.ID })
		if i < 0 {
			return state, fmt.Errorf("project %d: %w", a.Project.ID, ErrNotFound)
		}
		s.Projects[i] = a.Project

	case DeleteProject:
		n := len(s.Projects)
		s.Projects = slices.DeleteFunc(s.Projects, func(p models.Project) bool { return p.ID == a.ID })
		if len(s.Projects) == n {
			return state, fmt.Errorf("project %d: %w", a.ID, ErrNotFound)
		}

	case AddCost:
		if err := a.Cost.Validate(); err != nil {
			return state, err
		}
		costs, _ := s.Costs.Get(a.Cost.Category)
		a.Cost.ID = s.NextID
		s.NextID++
		_ = s.Costs.Set(a.Cost.Category, append(costs, a.Cost))

	case UpdateCost:
		if err := a.Cost.Validate(); err != nil {
			return state, err
		}
		costs, _ := s.Costs.Get(a.Cost.Category)
		i := slices.IndexFunc(costs, func(c models.Cost) bool { return c.ID == a.Cost.ID })
		if i < 0 {
			return state, fmt.Errorf("%s cost %d: %w", a.Cost.Category, a.Cost.ID, ErrNotFound)
		}
		costs[i] = a.Cost

	case DeleteCost:
		costs, err := s.Costs.Get(a.Category)
		if err != nil {
			return state, err
		}
		kept := slices.DeleteFunc(costs, func(c models.Cost) bool { return c.ID == a.ID })
		if len(kept) == len(costs) {
			return state, fmt.Errorf("%s cost %d: %w", a.Category, a.ID, ErrNotFound)
		}
		_ = s.Costs.Set(a.Category, kept)

	case UploadReport:
		if a.Report == nil {
			return state, fmt.Errorf("%w: no report", models.ErrUnknownReportType)
		}
		year := s.Settings.CurrentFiscalYear
		report := a.Report.CloneReport()
		meta := report.Metadata()
		meta.FiscalYear = year
		meta.UploadDate = a.At.UTC()
		if a.FileName != "" {
			meta.OriginalFileName = a.FileName
		}
		if err := s.FinancialReports.Set(report); err != nil {
			return state, err
		}
		historical := s.HistoricalData[year]
		_ = historical.Set(report.CloneReport())
		s.HistoricalData[year] = historical

	case DeleteReport:
		if err := s.FinancialReports.Delete(a.Type); err != nil {
			return state, err
		}
		year := s.Settings.CurrentFiscalYear
		if historical, ok := s.HistoricalData[year]; ok {
			_ = historical.Delete(a.Type)
			s.HistoricalData[year] = historical
		}

	case UpdateSettings:
		if r := a.CorporationTaxRate; r != nil {
			if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
				return state, fmt.Errorf("corporation tax rate %s is outside [0, 1]", r)
			}
			s.Settings.CorporationTaxRate = *r
		}
		if a.Currency != nil {
			s.Settings.Currency = *a.Currency
		}
		if m := a.FiscalYearStart; m != nil {
			if !m.Valid() {
				return state, fmt.Errorf("%w: %d", models.ErrUnknownMonth, int(*m))
			}
			s.Settings.FiscalYearStart = *m
		}

	case ChangeFiscalYear:
		s.Settings.CurrentFiscalYear = a.Year
		s.FinancialReports = models.Reports{}
		for _, r := range s.HistoricalData[a.Year].All() {
			_ = s.FinancialReports.Set(r.CloneReport())
		}

	case SetViewMode:
		if _, err := models.ParseViewMode(string(a.Mode)); err != nil {
			return state, err
		}
		s.Settings.ViewMode = a.Mode

	case LoadData:
		s = a.State.Clone()
		s.Settings = mergeSettings(s.Settings, a.Defaults)
		if s.NextID <= s.MaxID() {
			s.NextID = s.MaxID() + 1
		}

	case ClearAllData:
		s = models.NewState(a.Settings)

	default:
		return state, fmt.Errorf("unknown action %T", action)
	}

	return s, nil
}

// mergeSettings fills whatever a saved blob left unset. A blob without any
// settings at all takes the defaults wholesale, tax rate included.
func mergeSettings(saved, defaults models.Settings) models.Settings {
	if saved.Currency == "" && saved.FiscalYearStart == 0 && saved.CurrentFiscalYear == 0 {
		return defaults
	}
	if saved.Currency == "" {
		saved.Currency = defaults.Currency
	}
	if !saved.FiscalYearStart.Valid() {
		saved.FiscalYearStart = defaults.FiscalYearStart
	}
	if saved.CurrentFiscalYear == 0 {
		saved.CurrentFiscalYear = defaults.CurrentFiscalYear
	}
	if saved.ViewMode == "" {
		saved.ViewMode = models.ViewCurrent
	}
	return saved
}
