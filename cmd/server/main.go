package main

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/agencyfin/pkg/config"
	"github.com/yurifrl/agencyfin/pkg/server"
	"github.com/yurifrl/agencyfin/pkg/store"
)

func main() {
	flags := pflag.NewFlagSet("agencyfin-server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "Config file (default is config.yaml)")
	flags.String("addr", "0.0.0.0:3000", "Listen address")
	config.AddFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Build(*cfgFile, flags)
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	logger := cfg.Logger("agencyfin")

	st, err := store.Open(cfg.StateFile, cfg.Settings(time.Now()), logger)
	if err != nil {
		logger.Fatal("failed to open state", "err", err)
	}

	srv := server.New(st, logger)
	logger.Info("starting server", "addr", cfg.Addr, "state_file", cfg.StateFile)
	if err := srv.Start(cfg.Addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
