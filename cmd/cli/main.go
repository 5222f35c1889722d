package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yurifrl/agencyfin/pkg/config"
	"github.com/yurifrl/agencyfin/pkg/parser"
	"github.com/yurifrl/agencyfin/pkg/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "agencyfin",
	Short:         "Agency finance tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

// app is what every subcommand works against.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *store.Store
	parser *parser.Parser
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger("agencyfin")

	st, err := store.Open(cfg.StateFile, cfg.Settings(time.Now()), logger)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		parser: parser.New(logger),
	}, nil
}

// run adapts a command body that needs the app to cobra's RunE.
func run(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		return fn(a, cmd, args)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		templateCmd,
		extractCmd,
		uploadCmd,
		reportCmd,
		manualCmd,
		clientCmd,
		projectCmd,
		costCmd,
		settingsCmd,
		fyCmd,
		viewCmd,
		metricsCmd,
		adviceCmd,
		backupCmd,
		planCmd,
		applyCmd,
		ynabCmd,
		stateCmd,
		resetCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
