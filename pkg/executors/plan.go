package executors

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/plan"
)

// Plan extracts every document of the plan and prints a preview of what
// Apply would store. Nothing is written.
func (e *Executor) Plan(p *plan.Plan, w io.Writer) (*Report, error) {
	reports, err := e.extractAll(p)
	if err != nil {
		return nil, err
	}
	state := e.store.State()
	report := BuildReport(p.Documents, reports, state)

	e.logger.Debug("processing plan report", "total", len(report.Items), "add", report.AddCount(), "replace", report.ReplaceCount())

	addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))     // green
	replaceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	for _, item := range report.Items {
		line := fmt.Sprintf("FY %d | %-17s | %-30s | %s",
			item.Document.FiscalYear, item.Report.Type(), item.Report.Metadata().OriginalFileName, Summary(item.Report, state.Settings.Currency))
		if item.Status == Replace {
			fmt.Fprintln(w, replaceStyle.Render("~ "+line))
			continue
		}
		fmt.Fprintln(w, addStyle.Render("+ "+line))
	}
	fmt.Fprintf(w, "\nPlan: %d report(s) will be added, %d replaced\n", report.AddCount(), report.ReplaceCount())

	return report, nil
}

func (e *Executor) extractAll(p *plan.Plan) ([]models.Report, error) {
	reports := make([]models.Report, 0, len(p.Documents))
	for i, d := range p.Documents {
		rep, err := e.extract(p, d)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (e *Executor) extract(p *plan.Plan, d plan.Document) (models.Report, error) {
	reportType, err := d.ReportType()
	if err != nil {
		return nil, err
	}

	if d.FromYNAB() {
		if e.feed == nil {
			return nil, fmt.Errorf("account %s: no ynab client configured", d.Account)
		}
		var since time.Time
		if d.Since != "" {
			if since, err = time.Parse(time.DateOnly, d.Since); err != nil {
				return nil, fmt.Errorf("invalid since date: %w", err)
			}
		}
		rows, err := e.feed.AccountRows(p.YNAB.BudgetID, d.Account, since)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("fetched ynab rows", "account", d.Account, "rows", len(rows))
		return e.parser.ProcessRows(rows, "ynab-"+d.Account, reportType, models.SourceYNAB, d.FiscalYear)
	}

	path, err := d.Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return e.parser.ProcessBytes(data, filepath.Base(path), reportType, d.FiscalYear)
}
