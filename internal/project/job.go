package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/ReelCut/internal/model"
)

// DefaultDir returns the directory for ReelCut's local data, ~/.reelcut.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".reelcut")
}

// SaveJob writes a job, including its last plan if any, as indented JSON.
// It creates any missing parent directories automatically.
func SaveJob(path string, job model.Job) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}
	return nil
}

// LoadJob reads a job file. Missing settings fall back to the defaults and
// nil lists are normalized to empty ones.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to read job file: %w", err)
	}
	job := model.NewJob()
	if err := json.Unmarshal(data, &job); err != nil {
		return model.Job{}, fmt.Errorf("failed to parse job file: %w", err)
	}
	if job.Orders == nil {
		job.Orders = []model.RawOrder{}
	}
	if job.Stock == nil {
		job.Stock = []float64{}
	}
	if !job.Settings.Unit.Valid() {
		return model.Job{}, model.NewInvalidInput("settings.unit", "unsupported unit %q", job.Settings.Unit)
	}
	return job, nil
}
