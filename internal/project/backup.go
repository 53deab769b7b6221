package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/ReelCut/internal/model"
)

// BackupVersion is written into every backup file. Files with a different
// major version are rejected on import.
const BackupVersion = "1.0.0"

// BackupData is a portable copy of the local inventory, optionally with
// the jobs the user wants to carry to another machine.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Inventory model.Inventory `json:"inventory"`
	Jobs      []model.Job     `json:"jobs,omitempty"`
}

// ExportAllData writes the inventory and any jobs to one versioned JSON
// file.
func ExportAllData(exportPath string, inv model.Inventory, jobs ...model.Job) error {
	data, err := json.MarshalIndent(BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Inventory: inv,
		Jobs:      jobs,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup file. Nothing is merged here; callers pass
// the inventory to MergeInventory or replace theirs.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if err := checkBackupVersion(backup.Version); err != nil {
		return BackupData{}, err
	}
	if backup.Inventory.Stocks == nil {
		backup.Inventory.Stocks = []model.StockPreset{}
	}
	if backup.Inventory.Machines == nil {
		backup.Inventory.Machines = []model.MachineSpec{}
	}
	return backup, nil
}

func checkBackupVersion(v string) error {
	if v == "" {
		return fmt.Errorf("invalid backup file: missing version field")
	}
	major, _, _ := strings.Cut(v, ".")
	want, _, _ := strings.Cut(BackupVersion, ".")
	if major != want {
		return fmt.Errorf("unsupported backup version %s (expected %s.x)", v, want)
	}
	return nil
}
