// Package config loads ReelCut settings from the environment, a config
// file and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/piwi3910/ReelCut/internal/model"
)

// EnvPrefix is prepended to every environment override, e.g.
// REELCUT_SOLVER_MAX_PER_REEL.
const EnvPrefix = "REELCUT"

// Config is the main configuration struct combining all sub-configs.
type Config struct {
	Solver  model.Settings `mapstructure:"solver"`
	Data    DataConfig     `mapstructure:"data"`
	Logging LoggingConfig  `mapstructure:"logging"`
	History HistoryConfig  `mapstructure:"history"`
}

// DataConfig points at the input files.
type DataConfig struct {
	OrdersPath       string `mapstructure:"orders_path"`
	StockPath        string `mapstructure:"stock_path"`
	MachineSpecsPath string `mapstructure:"machine_specs_path"`
	// Machine selects a spec by name; empty means the first one matching the unit.
	Machine string `mapstructure:"machine"`
}

// HistoryConfig controls the sqlite run log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (reelcut.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("reelcut")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".reelcut"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}

// AutomaticEnv only resolves keys viper already knows about, so every key
// is registered up front for Unmarshal to see env-only values.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"solver.cpu_workers",
		"solver.max_time_seconds",
		"solver.magnification",
		"solver.max_per_reel",
		"solver.unit",
		"data.orders_path",
		"data.stock_path",
		"data.machine_specs_path",
		"data.machine",
		"logging.level",
		"logging.format",
		"history.enabled",
		"history.path",
	} {
		_ = v.BindEnv(key)
	}
}
