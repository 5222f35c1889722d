package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/agencyfin/pkg/csv"
	"github.com/yurifrl/agencyfin/pkg/fiscal"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/parser"
)

type filters struct {
	startDate   string
	endDate     string
	minAmount   float64
	maxAmount   float64
	description string
	category    string
	kind        string
}

func (f *filters) toFilterFunc() csv.FilterFunc {
	return func(t models.Transaction) bool {
		date, ok := fiscal.ParseDate(t.Date)
		if f.startDate != "" {
			start, valid := fiscal.ParseDate(f.startDate)
			if !ok || (valid && date.Before(start)) {
				return false
			}
		}
		if f.endDate != "" {
			end, valid := fiscal.ParseDate(f.endDate)
			if !ok || (valid && date.After(end)) {
				return false
			}
		}
		if f.minAmount != 0 && t.Amount.LessThan(decimal.NewFromFloat(f.minAmount)) {
			return false
		}
		if f.maxAmount != 0 && t.Amount.GreaterThan(decimal.NewFromFloat(f.maxAmount)) {
			return false
		}
		if f.description != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.description)) {
			return false
		}
		if f.category != "" && string(t.Category) != f.category {
			return false
		}
		if f.kind != "" && string(t.Type) != f.kind {
			return false
		}
		return true
	}
}

// FileProcessor extracts reports from files and prints them back in the
// template layout.
type FileProcessor struct {
	logger     *log.Logger
	parser     *parser.Parser
	filters    *filters
	reportType models.ReportType
	fiscalYear int
	out        io.Writer
}

func NewFileProcessor(logger *log.Logger, reportType models.ReportType, fiscalYear int, filters *filters) *FileProcessor {
	return &FileProcessor{
		logger:     logger,
		parser:     parser.New(logger),
		filters:    filters,
		reportType: reportType,
		fiscalYear: fiscalYear,
		out:        os.Stdout,
	}
}

func (p *FileProcessor) ProcessDirectory(inputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if err := p.ProcessFile(filepath.Join(inputDir, entry.Name())); err != nil {
			p.logger.Warn("error processing file", "error", err)
		}
	}

	return nil
}

func (p *FileProcessor) ProcessFile(inputPath string) error {
	fileBytes, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	report, err := p.parser.ProcessBytes(fileBytes, filepath.Base(inputPath), p.reportType, p.fiscalYear)
	if err != nil {
		return fmt.Errorf("failed to process file: %w", err)
	}

	if bank, ok := report.(*models.BankTransactions); ok {
		sort.SliceStable(bank.Transactions, func(i, j int) bool {
			a, _ := fiscal.ParseDate(bank.Transactions[i].Date)
			b, _ := fiscal.ParseDate(bank.Transactions[j].Date)
			return a.Before(b)
		})
		return csv.WriteTransactions(p.out, bank.Transactions, p.filters.toFilterFunc())
	}
	return csv.WriteReport(p.out, report)
}
