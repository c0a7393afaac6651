// Package config loads and validates run configuration from YAML or JSON.
// All configuration is explicit: nothing here is process-global, and a
// validated Config is immutable by convention once handed to the engine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for one backtest run.
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Data       DataConfig       `json:"data" yaml:"data"`
	Strategy   StrategyConfig   `json:"strategy" yaml:"strategy"`
	Sizer      SizerConfig      `json:"sizer" yaml:"sizer"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// SimulationConfig holds the cost and capital parameters. All values are
// fractions, not percent, and must be >= 0.
type SimulationConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionPct  float64 `json:"commission_pct" yaml:"commission_pct"`
	SlippagePct    float64 `json:"slippage_pct" yaml:"slippage_pct"`
	RiskFreeRate   float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
}

// DataConfig points at the bar data to replay.
type DataConfig struct {
	File string `json:"file" yaml:"file"`
}

// StrategyConfig selects and parameterizes the strategy.
type StrategyConfig struct {
	Name       string `json:"name" yaml:"name"`
	FastPeriod int    `json:"fast_period,omitempty" yaml:"fast_period,omitempty"`
	SlowPeriod int    `json:"slow_period,omitempty" yaml:"slow_period,omitempty"`
}

// SizerConfig selects position sizing: "fixed" uses Units per order,
// "equity-pct" spends Pct of current equity per order.
type SizerConfig struct {
	Type  string  `json:"type" yaml:"type"`
	Units float64 `json:"units,omitempty" yaml:"units,omitempty"`
	Pct   float64 `json:"pct,omitempty" yaml:"pct,omitempty"`
}

// JournalConfig selects run persistence: "none", "csv" or "sqlite".
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the config as YAML (.yaml/.yml) or pretty JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration. Cost parameters must be non-negative
// and the initial capital positive.
func (c *Config) Validate() error {
	if c.Simulation.InitialCapital <= 0 {
		return fmt.Errorf("simulation.initial_capital must be positive")
	}
	if c.Simulation.CommissionPct < 0 {
		return fmt.Errorf("simulation.commission_pct must be >= 0")
	}
	if c.Simulation.SlippagePct < 0 {
		return fmt.Errorf("simulation.slippage_pct must be >= 0")
	}
	if c.Simulation.RiskFreeRate < 0 {
		return fmt.Errorf("simulation.risk_free_rate must be >= 0")
	}
	if c.Data.File == "" {
		return fmt.Errorf("data.file is required")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}

	switch c.Sizer.Type {
	case "fixed":
		if c.Sizer.Units <= 0 {
			return fmt.Errorf("sizer.units must be positive for fixed sizing")
		}
	case "equity-pct":
		if c.Sizer.Pct <= 0 || c.Sizer.Pct > 1 {
			return fmt.Errorf("sizer.pct must be in (0, 1]")
		}
	default:
		return fmt.Errorf("sizer.type must be 'fixed' or 'equity-pct'")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			InitialCapital: 100000,
			CommissionPct:  0.001,
			SlippagePct:    0.0005,
			RiskFreeRate:   0.0,
		},
		Data: DataConfig{
			File: "./bars.csv",
		},
		Strategy: StrategyConfig{
			Name:       "ma-cross",
			FastPeriod: 10,
			SlowPeriod: 30,
		},
		Sizer: SizerConfig{
			Type:  "fixed",
			Units: 100,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
