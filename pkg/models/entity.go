package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrMissingName     = errors.New("name is required")
	ErrUnknownCategory = errors.New("unknown cost category")
)

// Dated is anything that can be placed in a fiscal year by its start date.
type Dated interface {
	Label() string
	Start() string
}

type ClientType string

const (
	ClientRetainer ClientType = "retainer"
	ClientOneTime  ClientType = "one-time"
)

// Client is a customer of the agency. Retainer clients count as revenue.
type Client struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Company   string          `json:"company,omitempty"`
	Type      ClientType      `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	StartDate string          `json:"startDate,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

func (c Client) Label() string { return c.Name }
func (c Client) Start() string { return c.StartDate }

func (c Client) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}
	if c.Amount.IsNegative() {
		return fmt.Errorf("client %q: %w", c.Name, ErrNegativeAmount)
	}
	switch c.Type {
	case ClientRetainer, ClientOneTime:
		return nil
	default:
		return fmt.Errorf("client %q: unknown type %q", c.Name, c.Type)
	}
}

type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// Project is a one-off piece of billable work.
type Project struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Client      string          `json:"client,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      ProjectStatus   `json:"status"`
	StartDate   string          `json:"startDate,omitempty"`
	EndDate     string          `json:"endDate,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

func (p Project) Label() string { return p.Name }
func (p Project) Start() string { return p.StartDate }

func (p Project) Validate() error {
	if p.Name == "" {
		return ErrMissingName
	}
	if p.Amount.IsNegative() {
		return fmt.Errorf("project %q: %w", p.Name, ErrNegativeAmount)
	}
	switch p.Status {
	case ProjectPending, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return nil
	default:
		return fmt.Errorf("project %q: unknown status %q", p.Name, p.Status)
	}
}

type CostCategory string

const (
	CostTeam       CostCategory = "team"
	CostMarketing  CostCategory = "marketing"
	CostOperations CostCategory = "operations"
)

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyOneTime   Frequency = "one-time"
)

// Cost is a manually entered outgoing.
type Cost struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    CostCategory    `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   string          `json:"startDate,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

func (c Cost) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}
	if c.Amount.IsNegative() {
		return fmt.Errorf("cost %q: %w", c.Name, ErrNegativeAmount)
	}
	switch c.Frequency {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly, FrequencyOneTime:
	default:
		return fmt.Errorf("cost %q: unknown frequency %q", c.Name, c.Frequency)
	}
	switch c.Category {
	case CostTeam, CostMarketing, CostOperations:
		return nil
	default:
		return fmt.Errorf("cost %q: %w: %q", c.Name, ErrUnknownCategory, c.Category)
	}
}

// Costs groups costs by category, mirroring the persisted layout.
type Costs struct {
	Team       []Cost `json:"team"`
	Marketing  []Cost `json:"marketing"`
	Operations []Cost `json:"operations"`
}

// All returns every cost regardless of category.
func (c Costs) All() []Cost {
	all := make([]Cost, 0, len(c.Team)+len(c.Marketing)+len(c.Operations))
	all = append(all, c.Team...)
	all = append(all, c.Marketing...)
	return append(all, c.Operations...)
}

func (c Costs) Get(category CostCategory) ([]Cost, error) {
	switch category {
	case CostTeam:
		return c.Team, nil
	case CostMarketing:
		return c.Marketing, nil
	case CostOperations:
		return c.Operations, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

func (c *Costs) Set(category CostCategory, costs []Cost) error {
	switch category {
	case CostTeam:
		c.Team = costs
	case CostMarketing:
		c.Marketing = costs
	case CostOperations:
		c.Operations = costs
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return nil
}

func (c Costs) clone() Costs {
	return Costs{
		Team:       append([]Cost(nil), c.Team...),
		Marketing:  append([]Cost(nil), c.Marketing...),
		Operations: append([]Cost(nil), c.Operations...),
	}
}
