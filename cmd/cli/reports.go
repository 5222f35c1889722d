package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yurifrl/agencyfin/pkg/csv"
	"github.com/yurifrl/agencyfin/pkg/executors"
	"github.com/yurifrl/agencyfin/pkg/manual"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/plan"
	"github.com/yurifrl/agencyfin/pkg/store"
	"github.com/yurifrl/agencyfin/pkg/ynab"
)

var cliFilters filters

// fiscalYearFlag returns --fy, or the state's current fiscal year when unset.
func fiscalYearFlag(a *app, cmd *cobra.Command) int {
	if fy, _ := cmd.Flags().GetInt("fy"); fy > 0 {
		return fy
	}
	return a.store.State().Settings.CurrentFiscalYear
}

var templateCmd = &cobra.Command{
	Use:   "template <type>",
	Short: "Write a CSV template (profit-loss, balance-sheet, bank-transactions)",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		reportType, err := models.ParseReportType(args[0])
		if err != nil {
			return err
		}
		year := fiscalYearFlag(a, cmd)
		body, err := csv.Template(reportType, year, a.store.State().Settings.FiscalYearStart)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("output")
		if dir == "" {
			fmt.Print(body)
			return nil
		}
		path := filepath.Join(dir, csv.TemplateFilename(reportType, year))
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("failed to write template: %w", err)
		}
		a.logger.Info("wrote template", "path", path)
		return nil
	}),
}

var extractCmd = &cobra.Command{
	Use:   "extract <type> <input_path>",
	Short: "Extract a report from documents and print it as CSV (dry-run)",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		reportType, err := models.ParseReportType(args[0])
		if err != nil {
			return err
		}
		processor := NewFileProcessor(a.logger, reportType, fiscalYearFlag(a, cmd), &cliFilters)

		matches, err := filepath.Glob(args[1])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files found matching pattern %s", args[1])
		}

		for _, match := range matches {
			fileInfo, err := os.Stat(match)
			if err != nil {
				a.logger.Warn("failed to stat file", "error", err, "file", match)
				continue
			}

			if fileInfo.IsDir() {
				if err := processor.ProcessDirectory(match); err != nil {
					a.logger.Warn("failed to process directory", "error", err, "dir", match)
				}
			} else {
				if err := processor.ProcessFile(match); err != nil {
					a.logger.Warn("failed to process file", "error", err, "file", match)
				}
			}
		}
		return nil
	}),
}

var uploadCmd = &cobra.Command{
	Use:   "upload <type> <file>",
	Short: "Extract a report and store it under the current fiscal year",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		reportType, err := models.ParseReportType(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		settings := a.store.State().Settings
		report, err := a.parser.ProcessBytes(data, filepath.Base(args[1]), reportType, settings.CurrentFiscalYear)
		if err != nil {
			return err
		}
		if _, err := a.store.Dispatch(store.UploadReport{Report: report, FileName: filepath.Base(args[1])}); err != nil {
			return err
		}
		fmt.Printf("Stored %s for FY %d: %s\n", reportType, settings.CurrentFiscalYear, executors.Summary(report, settings.Currency))
		return nil
	}),
}

var reportCmd = &cobra.Command{Use: "report", Short: "Work with the stored reports of the current fiscal year"}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete <type>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		reportType, err := models.ParseReportType(args[0])
		if err != nil {
			return err
		}
		_, err = a.store.Dispatch(store.DeleteReport{Type: reportType})
		return err
	}),
}

var reportExportCmd = &cobra.Command{
	Use:   "export <type>",
	Short: "Print a stored report as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		reportType, err := models.ParseReportType(args[0])
		if err != nil {
			return err
		}
		report := a.store.State().FinancialReports.Get(reportType)
		if report == nil {
			return fmt.Errorf("no %s stored for the current fiscal year", reportType)
		}
		if bank, ok := report.(*models.BankTransactions); ok {
			return csv.WriteTransactions(os.Stdout, bank.Transactions, cliFilters.toFilterFunc())
		}
		return csv.WriteReport(os.Stdout, report)
	}),
}

var manualCmd = &cobra.Command{
	Use:   "manual <type> <file.yaml>",
	Short: "Store a profit & loss or balance sheet entered by hand in YAML",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		reportType, err := models.ParseReportType(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		settings := a.store.State().Settings

		var report models.Report
		switch reportType {
		case models.ProfitLossReport:
			var in manual.ProfitLossInput
			if err := yaml.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("failed to parse yaml: %w", err)
			}
			report = manual.ProfitLoss(in, settings.FiscalYearStart, time.Now())
		case models.BalanceSheetReport:
			var in manual.BalanceSheetInput
			if err := yaml.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("failed to parse yaml: %w", err)
			}
			report = manual.BalanceSheet(in, time.Now())
		default:
			return errors.New("manual entry is only available for profit & loss and balance sheet")
		}

		if _, err := a.store.Dispatch(store.UploadReport{Report: report}); err != nil {
			return err
		}
		fmt.Printf("Stored %s for FY %d: %s\n", reportType, settings.CurrentFiscalYear, executors.Summary(report, settings.Currency))
		return nil
	}),
}

// ---------------- plans ----------------

func newExecutor(a *app, p *plan.Plan) (*executors.Executor, error) {
	var feed executors.Feed
	for _, d := range p.Documents {
		if d.FromYNAB() {
			token, err := p.YNAB.Token()
			if err != nil {
				return nil, err
			}
			feed = ynab.New(token)
			break
		}
	}
	return executors.New(a.logger, a.parser, a.store, feed), nil
}

var planCmd = &cobra.Command{
	Use:   "plan <plan_file>",
	Short: "Preview a YAML plan of documents (dry-run)",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		exec, err := newExecutor(a, p)
		if err != nil {
			return err
		}
		fmt.Printf("Plan preview for %s\n", args[0])
		p.Print()
		fmt.Println()
		_, err = exec.Plan(p, os.Stdout)
		return err
	}),
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan_file>",
	Short: "Extract and store every document of a YAML plan",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		exec, err := newExecutor(a, p)
		if err != nil {
			return err
		}
		return exec.Apply(p)
	}),
}

// ---------------- ynab ----------------

var ynabCmd = &cobra.Command{Use: "ynab", Short: "Import bank transactions from YNAB"}

var ynabImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Store an account's YNAB transactions as the current fiscal year's bank transactions",
	RunE: run(func(a *app, cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		budgetID, _ := f.GetString("budget")
		accountID, _ := f.GetString("account")
		tokenEnv, _ := f.GetString("token-env")
		sinceRaw, _ := f.GetString("since")

		token, err := plan.YNABConfig{TokenEnv: tokenEnv}.Token()
		if err != nil {
			return err
		}
		var since time.Time
		if sinceRaw != "" {
			if since, err = time.Parse(time.DateOnly, sinceRaw); err != nil {
				return fmt.Errorf("invalid --since: %w", err)
			}
		}

		rows, err := ynab.New(token).AccountRows(budgetID, accountID, since)
		if err != nil {
			return err
		}
		settings := a.store.State().Settings
		report, err := a.parser.ProcessRows(rows, "ynab-"+accountID, models.BankTransactionsReport, models.SourceYNAB, settings.CurrentFiscalYear)
		if err != nil {
			return err
		}
		if _, err := a.store.Dispatch(store.UploadReport{Report: report}); err != nil {
			return err
		}
		fmt.Printf("Stored bank transactions for FY %d: %s\n", settings.CurrentFiscalYear, executors.Summary(report, settings.Currency))
		return nil
	}),
}

func init() {
	for _, cmd := range []*cobra.Command{templateCmd, extractCmd} {
		cmd.Flags().Int("fy", 0, "Fiscal year (default is the current one)")
	}
	templateCmd.Flags().StringP("output", "o", "", "Directory to write the template to (default prints it)")

	for _, cmd := range []*cobra.Command{extractCmd, reportExportCmd} {
		cmd.Flags().StringVar(&cliFilters.startDate, "start", "", "Start date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&cliFilters.endDate, "end", "", "End date (YYYY-MM-DD)")
		cmd.Flags().Float64Var(&cliFilters.minAmount, "min", 0, "Minimum amount")
		cmd.Flags().Float64Var(&cliFilters.maxAmount, "max", 0, "Maximum amount")
		cmd.Flags().StringVar(&cliFilters.description, "description", "", "Filter by description (case insensitive)")
		cmd.Flags().StringVar(&cliFilters.category, "category", "", "Filter by category")
		cmd.Flags().StringVar(&cliFilters.kind, "kind", "", "Filter by credit or debit")
	}

	reportCmd.AddCommand(reportDeleteCmd, reportExportCmd)

	ynabImportCmd.Flags().String("budget", "", "YNAB budget id")
	ynabImportCmd.Flags().String("account", "", "YNAB account id")
	ynabImportCmd.Flags().String("token-env", "YNAB_TOKEN", "Environment variable holding the YNAB token")
	ynabImportCmd.Flags().String("since", "", "Only transactions on or after this date (YYYY-MM-DD)")
	_ = ynabImportCmd.MarkFlagRequired("budget")
	_ = ynabImportCmd.MarkFlagRequired("account")
	ynabCmd.AddCommand(ynabImportCmd)
}
