package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/agencyfin/pkg/csv"
	"github.com/yurifrl/agencyfin/pkg/models"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

type FileType string

const (
	PDF  FileType = "pdf"
	CSV  FileType = "csv"
	XLS  FileType = "xls"
	Text FileType = "txt"
)

type Parser struct {
	logger *log.Logger
	now    func() time.Time
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
		now:    time.Now,
	}
}

// ProcessBytes extracts a report of the requested type from an uploaded
// document and stamps it with its source, file name and fiscal year.
func (p *Parser) ProcessBytes(data []byte, filename string, reportType models.ReportType, fiscalYear int) (models.Report, error) {
	fileType := DetectType(filename)
	p.logger.Debug("detected file type", "type", fileType, "filename", filename, "report", reportType)

	var (
		report models.Report
		source models.Source
		err    error
	)
	switch fileType {
	case PDF:
		text, perr := ExtractPDFText(data)
		if perr != nil {
			return nil, fmt.Errorf("failed to extract text from %s: %w", filename, perr)
		}
		source = models.SourcePDF
		report, err = p.FromText(text, reportType)
	case Text:
		source = models.SourcePDF
		report, err = p.FromText(string(data), reportType)
	case CSV:
		rows, cerr := csv.Parse(string(data))
		if cerr != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, cerr)
		}
		source = models.SourceCSV
		report, err = p.FromRows(rows, reportType, source)
	case XLS:
		records, xerr := ReadXLS(data)
		if xerr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, xerr)
		}
		source = models.SourceXLS
		report, err = p.FromRows(csv.FromRecords(records), reportType, source)
	default:
		p.logger.Debug("unknown file type", "filename", filename)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
	if err != nil {
		return nil, err
	}

	p.stamp(report, source, filename, fiscalYear)
	return report, nil
}

// ProcessRows builds a report from rows fetched elsewhere (a bank feed, say)
// and stamps it the same way as an uploaded document.
func (p *Parser) ProcessRows(rows []csv.Row, name string, reportType models.ReportType, source models.Source, fiscalYear int) (models.Report, error) {
	report, err := p.FromRows(rows, reportType, source)
	if err != nil {
		return nil, err
	}
	p.stamp(report, source, name, fiscalYear)
	return report, nil
}

func (p *Parser) stamp(report models.Report, source models.Source, filename string, fiscalYear int) {
	meta := report.Metadata()
	*meta = models.NewMeta(source, p.now())
	meta.FiscalYear = fiscalYear
	meta.OriginalFileName = filepath.Base(filename)
}

// FromText runs the regex extractors over document text. Bank statements
// need tabular input and are rejected.
func (p *Parser) FromText(text string, reportType models.ReportType) (models.Report, error) {
	switch reportType {
	case models.ProfitLossReport:
		return ParseProfitLossFromText(text), nil
	case models.BalanceSheetReport:
		return ParseBalanceSheetFromText(text), nil
	case models.BankTransactionsReport:
		return nil, fmt.Errorf("%w: bank transactions need a CSV or XLS export", ErrUnsupportedFile)
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownReportType, reportType)
}

// FromRows converts header-mapped rows into a report of the requested type.
func (p *Parser) FromRows(rows []csv.Row, reportType models.ReportType, source models.Source) (models.Report, error) {
	switch reportType {
	case models.ProfitLossReport:
		return p.ProfitLossFromRecords(rows, source), nil
	case models.BalanceSheetReport:
		return p.BalanceSheetFromRecords(rows, source), nil
	case models.BankTransactionsReport:
		return p.ParseBankTransactions(rows), nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownReportType, reportType)
}

func DetectType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".csv":
		return CSV
	case ".xls":
		return XLS
	case ".txt":
		return Text
	}
	return ""
}
