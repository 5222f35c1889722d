package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/k0kubun/pp/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"

	"github.com/yurifrl/agencyfin/pkg/advice"
	"github.com/yurifrl/agencyfin/pkg/fiscal"
	"github.com/yurifrl/agencyfin/pkg/metrics"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/money"
	"github.com/yurifrl/agencyfin/pkg/store"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change tax rate, currency and fiscal year start",
	RunE: run(func(a *app, cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		var action store.UpdateSettings
		if f.Changed("rate") {
			raw, _ := f.GetString("rate")
			rate, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("invalid rate %q", raw)
			}
			action.CorporationTaxRate = &rate
		}
		if f.Changed("code") {
			raw, _ := f.GetString("code")
			code := strings.ToUpper(raw)
			if !money.ValidCode(code) {
				return fmt.Errorf("%q is not an ISO 4217 currency code", raw)
			}
			action.Currency = &code
		}
		if f.Changed("start-month") {
			raw, _ := f.GetString("start-month")
			m, err := models.ParseMonth(raw)
			if err != nil {
				return err
			}
			action.FiscalYearStart = &m
		}

		state := a.store.State()
		if action != (store.UpdateSettings{}) {
			var err error
			if state, err = a.store.Dispatch(action); err != nil {
				return err
			}
		}

		s := state.Settings
		printField(os.Stdout, "Corporation tax", money.Percent(s.CorporationTaxRate.Mul(decimal.NewFromInt(100))))
		printField(os.Stdout, "Currency", s.Currency)
		printField(os.Stdout, "Fiscal year start", s.FiscalYearStart.String())
		printField(os.Stdout, "Fiscal year", fiscal.Label(s.CurrentFiscalYear))
		printField(os.Stdout, "View", string(s.ViewMode))
		return nil
	}),
}

var fyCmd = &cobra.Command{
	Use:   "fy [year]",
	Short: "Show the available fiscal years or switch to one",
	Args:  cobra.MaximumNArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		if len(args) == 1 {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			if _, err := a.store.Dispatch(store.ChangeFiscalYear{Year: year}); err != nil {
				return err
			}
		}

		state := a.store.State()
		years := fiscal.AvailableYears(time.Now(), maps.Keys(state.HistoricalData))
		for _, y := range years {
			line := fiscal.Label(y)
			if !state.HistoricalData[y].Empty() {
				line += mutedStyle.Render(" (reports)")
			}
			if y == state.Settings.CurrentFiscalYear {
				fmt.Println(goodStyle.Render("* " + line))
				continue
			}
			fmt.Println("  " + line)
		}
		return nil
	}),
}

var viewCmd = &cobra.Command{
	Use:   "view <current|allTime>",
	Short: "Switch between current fiscal year and all-time metrics",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		mode, err := models.ParseViewMode(args[0])
		if err != nil {
			return err
		}
		_, err = a.store.Dispatch(store.SetViewMode{Mode: mode})
		return err
	}),
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the financial metrics of the active view",
	RunE: run(func(a *app, _ *cobra.Command, _ []string) error {
		state := a.store.State()
		printMetrics(metrics.Calculate(state), state.Settings.Currency)
		return nil
	}),
}

func printMetrics(s metrics.Snapshot, currency string) {
	w := os.Stdout
	title := "All time"
	if s.ViewMode == models.ViewCurrent {
		title = fiscal.Label(s.FiscalYear)
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	fmt.Fprintln(w)
	printField(w, "Revenue", money.Format(s.TotalRevenue, currency))
	printField(w, "Costs", money.Format(s.TotalCosts, currency))
	printField(w, "Gross profit", money.Format(s.GrossProfit, currency))
	printField(w, "Corporation tax", money.Format(s.CorporationTax, currency))
	net := money.Format(s.NetProfit, currency)
	if s.NetProfit.IsNegative() {
		net = badStyle.Render(net)
	} else {
		net = goodStyle.Render(net)
	}
	printField(w, "Net profit", net)
	printField(w, "Profit margin", money.Percent(s.ProfitMargin))

	if s.ViewMode == models.ViewCurrent {
		fmt.Fprintln(w)
		printField(w, "Current assets", money.Format(s.CurrentAssets, currency))
		printField(w, "Current liabilities", money.Format(s.CurrentLiabilities, currency))
		printField(w, "Current ratio", money.Ratio(s.CurrentRatio))
		printField(w, "Debt to equity", money.Ratio(s.DebtToEquity))
		printField(w, "Return on equity", money.Percent(s.ROEPercent))
	}
	if s.HasUploadedData {
		fmt.Fprintln(w, mutedStyle.Render("\nIncludes uploaded financial reports."))
	}
}

var adviceCmd = &cobra.Command{
	Use:   "advice",
	Short: "Show recommendations based on the current metrics",
	RunE: run(func(a *app, _ *cobra.Command, _ []string) error {
		state := a.store.State()
		printAdvice(os.Stdout, advice.Generate(state, metrics.Calculate(state)))
		return nil
	}),
}

var backupCmd = &cobra.Command{Use: "backup", Short: "Export or import the whole state"}

var backupExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the state as JSON (default prints it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return a.store.Export(os.Stdout)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		if err := a.store.Export(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}),
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the state with a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open backup: %w", err)
		}
		defer f.Close()
		if err := a.store.Import(f); err != nil {
			return err
		}
		state := a.store.State()
		a.logger.Info("imported backup", "clients", len(state.Clients), "projects", len(state.Projects), "years", len(state.HistoricalData))
		return nil
	}),
}

var stateCmd = &cobra.Command{Use: "state", Short: "Inspect the raw state"}

var stateDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Pretty-print the whole state tree",
	RunE: run(func(a *app, _ *cobra.Command, _ []string) error {
		_, err := pp.Println(a.store.State())
		return err
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all clients, projects, costs and reports",
	RunE: run(func(a *app, cmd *cobra.Command, _ []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("refusing to reset without --yes")
		}
		return a.store.Reset()
	}),
}

func init() {
	settingsCmd.Flags().String("rate", "", "Corporation tax rate between 0 and 1")
	settingsCmd.Flags().String("code", "", "ISO 4217 currency code")
	settingsCmd.Flags().String("start-month", "", "Fiscal year start month")

	resetCmd.Flags().Bool("yes", false, "Confirm the reset")

	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
	stateCmd.AddCommand(stateDumpCmd)
}
