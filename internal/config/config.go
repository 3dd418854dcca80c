// Package config provides configuration loading and path utilities.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/autobooks/autobooks/internal/common"
	"github.com/autobooks/autobooks/internal/model"
)

// Config carries every tunable the engine and its stores need. It is built
// once at startup and passed into constructors explicitly; nothing reads
// configuration through package-level state.
type Config struct {
	TDSRates         map[model.Category]float64
	RulesPath        string
	PatternDBPath    string
	LedgerDBPath     string
	InboxPath        string
	ArchivePath      string
	ReportPath       string
	LogLevel         string
	LogFormat        string
	ConfidenceHigh   float64
	ConfidenceMedium float64
	SimilarityFloor  float64
	AmountBandMin    float64
	AmountBandMax    float64
	PatternQueryK    int
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		TDSRates: map[model.Category]float64{
			model.CategoryRent:        10.0,
			model.CategoryConsultancy: 10.0,
			model.CategorySalary:      5.0,
			model.CategoryContract:    5.0,
			model.CategoryOther:       0.0,
		},
		RulesPath:        "~/.local/share/autobooks/rules.json",
		PatternDBPath:    "~/.local/share/autobooks/patterns",
		LedgerDBPath:     "~/.local/share/autobooks/ledger.db",
		InboxPath:        "./inbox",
		ArchivePath:      "./archive",
		ReportPath:       "./output/autobooks_ledger.xlsx",
		LogLevel:         "info",
		LogFormat:        "console",
		ConfidenceHigh:   0.75,
		ConfidenceMedium: 0.50,
		SimilarityFloor:  0.8,
		AmountBandMin:    100,
		AmountBandMax:    1_000_000,
		PatternQueryK:    3,
	}
}

// FromViper overlays any values set in viper onto the defaults and expands
// the configured paths.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Default()

	if v.IsSet("rules.path") {
		cfg.RulesPath = v.GetString("rules.path")
	}
	if v.IsSet("patterns.path") {
		cfg.PatternDBPath = v.GetString("patterns.path")
	}
	if v.IsSet("ledger.path") {
		cfg.LedgerDBPath = v.GetString("ledger.path")
	}
	if v.IsSet("inbox.path") {
		cfg.InboxPath = v.GetString("inbox.path")
	}
	if v.IsSet("archive.path") {
		cfg.ArchivePath = v.GetString("archive.path")
	}
	if v.IsSet("report.path") {
		cfg.ReportPath = v.GetString("report.path")
	}
	if v.IsSet("logging.level") {
		cfg.LogLevel = v.GetString("logging.level")
	}
	if v.IsSet("logging.format") {
		cfg.LogFormat = v.GetString("logging.format")
	}
	if v.IsSet("confidence.high") {
		cfg.ConfidenceHigh = v.GetFloat64("confidence.high")
	}
	if v.IsSet("confidence.medium") {
		cfg.ConfidenceMedium = v.GetFloat64("confidence.medium")
	}

	cfg.RulesPath = ExpandPath(cfg.RulesPath)
	cfg.PatternDBPath = ExpandPath(cfg.PatternDBPath)
	cfg.LedgerDBPath = ExpandPath(cfg.LedgerDBPath)
	cfg.InboxPath = ExpandPath(cfg.InboxPath)
	cfg.ArchivePath = ExpandPath(cfg.ArchivePath)
	cfg.ReportPath = ExpandPath(cfg.ReportPath)

	return cfg, cfg.Validate()
}

// Validate checks tier ordering and rate sanity.
func (c Config) Validate() error {
	if c.ConfidenceHigh <= c.ConfidenceMedium {
		return fmt.Errorf("%w: high threshold %v must exceed medium %v",
			common.ErrInvalidConfig, c.ConfidenceHigh, c.ConfidenceMedium)
	}
	if c.ConfidenceHigh > 1 || c.ConfidenceMedium < 0 {
		return fmt.Errorf("%w: thresholds must lie in [0,1]", common.ErrInvalidConfig)
	}
	if c.AmountBandMin >= c.AmountBandMax {
		return fmt.Errorf("%w: amount band %v..%v is empty",
			common.ErrInvalidConfig, c.AmountBandMin, c.AmountBandMax)
	}
	for cat, rate := range c.TDSRates {
		if rate < 0 || rate > 100 {
			return fmt.Errorf("%w: tds rate %v for %s outside [0,100]",
				common.ErrInvalidConfig, rate, cat)
		}
	}
	return nil
}

// TDSRate returns the withholding rate for a category, 0 when unknown.
func (c Config) TDSRate(category model.Category) float64 {
	return c.TDSRates[category]
}
