package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ViewMode string

const (
	ViewCurrent ViewMode = "current"
	ViewAllTime ViewMode = "allTime"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch s {
	case "current":
		return ViewCurrent, nil
	case "allTime", "all-time", "all":
		return ViewAllTime, nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// Settings are process-wide and persisted with the rest of the state.
type Settings struct {
	CorporationTaxRate decimal.Decimal `json:"corporationTaxRate"`
	Currency           string          `json:"currency"`
	FiscalYearStart    Month           `json:"fiscalYearStart"`
	CurrentFiscalYear  int             `json:"currentFiscalYear"`
	ViewMode           ViewMode        `json:"viewMode"`
}

// DefaultSettings matches a UK agency: 19% corporation tax, GBP, April year start.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		CorporationTaxRate: decimal.RequireFromString("0.19"),
		Currency:           "GBP",
		FiscalYearStart:    Month(time.April),
		CurrentFiscalYear:  now.Year(),
		ViewMode:           ViewCurrent,
	}
}

// State is the whole aggregate tree that gets persisted as one blob.
type State struct {
	Clients          []Client        `json:"clients"`
	Projects         []Project       `json:"projects"`
	Costs            Costs           `json:"costs"`
	FinancialReports Reports         `json:"financialReports"`
	Settings         Settings        `json:"settings"`
	HistoricalData   map[int]Reports `json:"historicalData"`
	NextID           int64           `json:"nextId"`
}

func NewState(settings Settings) State {
	return State{
		Clients:        []Client{},
		Projects:       []Project{},
		Costs:          Costs{Team: []Cost{}, Marketing: []Cost{}, Operations: []Cost{}},
		Settings:       settings,
		HistoricalData: map[int]Reports{},
		NextID:         1,
	}
}

// Clone returns a deep copy so callers can never mutate a published snapshot.
func (s State) Clone() State {
	out := s
	out.Clients = append([]Client{}, s.Clients...)
	out.Projects = append([]Project{}, s.Projects...)
	out.Costs = s.Costs.clone()
	out.FinancialReports = s.FinancialReports.clone()
	out.HistoricalData = make(map[int]Reports, len(s.HistoricalData))
	for year, reports := range s.HistoricalData {
		out.HistoricalData[year] = reports.clone()
	}
	out.Normalize()
	return out
}

// Normalize replaces nil collections with empty ones so the serialized blob
// always has the same shape.
func (s *State) Normalize() {
	if s.Clients == nil {
		s.Clients = []Client{}
	}
	if s.Projects == nil {
		s.Projects = []Project{}
	}
	if s.Costs.Team == nil {
		s.Costs.Team = []Cost{}
	}
	if s.Costs.Marketing == nil {
		s.Costs.Marketing = []Cost{}
	}
	if s.Costs.Operations == nil {
		s.Costs.Operations = []Cost{}
	}
	if s.HistoricalData == nil {
		s.HistoricalData = map[int]Reports{}
	}
	if s.NextID < 1 {
		s.NextID = 1
	}
}

// MaxID returns the largest identifier in use, used to repair NextID on
// blobs written without one.
func (s State) MaxID() int64 {
	var highest int64
	for _, c := range s.Clients {
		highest = maxID(highest, c.ID)
	}
	for _, p := range s.Projects {
		highest = maxID(highest, p.ID)
	}
	for _, c := range s.Costs.All() {
		highest = maxID(highest, c.ID)
	}
	return highest
}

func maxID(a, b int64) int64 {
	if b > a {
		return b
	}
	return a
}
