package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/agencyfin/pkg/models"
)

const (
	SourceFile = "file"
	SourceYNAB = "ynab"
)

type YNABConfig struct {
	BudgetID string `yaml:"budget_id"`
	TokenEnv string `yaml:"token_env"`
}

// Token reads the YNAB token from the configured environment variable.
func (c YNABConfig) Token() (string, error) {
	env := c.TokenEnv
	if env == "" {
		env = "YNAB_TOKEN"
	}
	token := os.Getenv(env)
	if token == "" {
		return "", fmt.Errorf("environment variable %s is empty", env)
	}
	return token, nil
}

// Plan is a batch of documents to extract and store, one fiscal year each.
type Plan struct {
	YNAB      YNABConfig `yaml:"ynab"`
	Documents []Document `yaml:"documents"`
}

type Document struct {
	Type       string `yaml:"type"`
	File       string `yaml:"file"`
	FiscalYear int    `yaml:"fiscal_year"`
	Source     string `yaml:"source"`
	Account    string `yaml:"account"`
	Since      string `yaml:"since"`
}

// ReportType resolves the document's report type.
func (d Document) ReportType() (models.ReportType, error) {
	return models.ParseReportType(d.Type)
}

// Path returns the document path with a leading ~ expanded.
func (d Document) Path() (string, error) {
	if strings.HasPrefix(d.File, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, d.File[2:]), nil
	}
	return d.File, nil
}

// FromYNAB reports whether the document is pulled from a YNAB account.
func (d Document) FromYNAB() bool {
	return d.Source == SourceYNAB
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) Validate() error {
	if len(p.Documents) == 0 {
		return errors.New("plan has no documents")
	}
	for i := range p.Documents {
		d := &p.Documents[i]
		if d.Source == "" {
			d.Source = SourceFile
		}
		t, err := d.ReportType()
		if err != nil {
			return fmt.Errorf("document %d: %w", i+1, err)
		}
		if d.FiscalYear <= 0 {
			return fmt.Errorf("document %d: fiscal_year is required", i+1)
		}
		switch d.Source {
		case SourceFile:
			if d.File == "" {
				return fmt.Errorf("document %d: file is required", i+1)
			}
		case SourceYNAB:
			if t != models.BankTransactionsReport {
				return fmt.Errorf("document %d: ynab only provides bank transactions", i+1)
			}
			if d.Account == "" || p.YNAB.BudgetID == "" {
				return fmt.Errorf("document %d: ynab documents need an account and ynab.budget_id", i+1)
			}
		default:
			return fmt.Errorf("document %d: unknown source %q", i+1, d.Source)
		}
	}
	return nil
}

func (p *Plan) Print() {
	if p.YNAB.BudgetID != "" {
		fmt.Printf("YNAB budget: %s\n", p.YNAB.BudgetID)
	}
	for i, d := range p.Documents {
		where := d.File
		if d.FromYNAB() {
			where = "ynab:" + d.Account
		}
		fmt.Printf("[%d] type=%s fy=%d %s\n", i+1, d.Type, d.FiscalYear, where)
	}
}
