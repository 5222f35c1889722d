package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/money"
)

const EnvPrefix = "AGENCYFIN"

// flag name -> config key
var flagKeys = map[string]string{
	"state-file":        "state_file",
	"log-level":         "log_level",
	"addr":              "addr",
	"tax-rate":          "defaults.tax_rate",
	"currency":          "defaults.currency",
	"fiscal-year-start": "defaults.fiscal_year_start",
}

type Config struct {
	StateFile string
	LogLevel  log.Level
	Addr      string
	Defaults  Defaults
}

// Defaults seed the settings of a fresh state.
type Defaults struct {
	TaxRate         decimal.Decimal
	Currency        string
	FiscalYearStart models.Month
}

// Build resolves the configuration. Flags set on the command line win over
// AGENCYFIN_* variables (.env included), which win over config.yaml or
// cfgFile, which win over the built-in defaults.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("state_file", "agencyfin.json")
	v.SetDefault("log_level", "info")
	v.SetDefault("addr", "0.0.0.0:3000")
	v.SetDefault("defaults.tax_rate", "0.19")
	v.SetDefault("defaults.currency", "GBP")
	v.SetDefault("defaults.fiscal_year_start", "April")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	level, err := log.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	rate, err := decimal.NewFromString(v.GetString("defaults.tax_rate"))
	if err != nil {
		return nil, fmt.Errorf("defaults.tax_rate: %w", err)
	}
	start, err := models.ParseMonth(v.GetString("defaults.fiscal_year_start"))
	if err != nil {
		return nil, fmt.Errorf("defaults.fiscal_year_start: %w", err)
	}

	cfg := &Config{
		StateFile: v.GetString("state_file"),
		LogLevel:  level,
		Addr:      v.GetString("addr"),
		Defaults: Defaults{
			TaxRate:         rate,
			Currency:        strings.ToUpper(v.GetString("defaults.currency")),
			FiscalYearStart: start,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if r := c.Defaults.TaxRate; r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("defaults.tax_rate %s is outside [0, 1]", r)
	}
	if !money.ValidCode(c.Defaults.Currency) {
		return fmt.Errorf("defaults.currency %q is not an ISO 4217 code", c.Defaults.Currency)
	}
	return nil
}

// Settings returns the settings a fresh state starts with.
func (c *Config) Settings(now time.Time) models.Settings {
	s := models.DefaultSettings(now)
	s.CorporationTaxRate = c.Defaults.TaxRate
	s.Currency = c.Defaults.Currency
	s.FiscalYearStart = c.Defaults.FiscalYearStart
	return s
}

// Logger builds the stderr logger used by the binaries.
func (c *Config) Logger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           c.LogLevel,
	})
}

// AddFlags registers the flags Build knows how to bind.
func AddFlags(flags *pflag.FlagSet) {
	flags.String("state-file", "agencyfin.json", "Path of the JSON state file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("tax-rate", "0.19", "Default corporation tax rate for a fresh state")
	flags.String("currency", "GBP", "Default currency for a fresh state")
	flags.String("fiscal-year-start", "April", "Default fiscal year start month for a fresh state")
}
