package config

import (
	"os"
	"path/filepath"

	"github.com/piwi3910/ReelCut/internal/model"
)

// SetDefaults sets default values for all configuration fields.
func SetDefaults(cfg *Config) {
	def := model.DefaultSettings()
	if cfg.Solver.CPUWorkers == 0 {
		cfg.Solver.CPUWorkers = def.CPUWorkers
	}
	if cfg.Solver.MaxTimeSeconds == 0 {
		cfg.Solver.MaxTimeSeconds = def.MaxTimeSeconds
	}
	if cfg.Solver.Magnification == 0 {
		cfg.Solver.Magnification = def.Magnification
	}
	if cfg.Solver.MaxPerReel == 0 {
		cfg.Solver.MaxPerReel = def.MaxPerReel
	}
	if cfg.Solver.Unit == "" {
		cfg.Solver.Unit = def.Unit
	}

	if cfg.Data.StockPath == "" {
		cfg.Data.StockPath = "stocks.json"
	}
	if cfg.Data.MachineSpecsPath == "" {
		cfg.Data.MachineSpecsPath = "machine_specs.json"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath()
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "reelcut-history.db"
	}
	return filepath.Join(home, ".reelcut", "history.db")
}
