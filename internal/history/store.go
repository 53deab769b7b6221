// Package history keeps a log of optimization runs in sqlite.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/piwi3910/ReelCut/internal/model"
)

// RunModel represents the runs table.
type RunModel struct {
	ID            int       `gorm:"column:id;primaryKey;autoIncrement"`
	PlanID        string    `gorm:"column:plan_id;uniqueIndex;not null"`
	Status        string    `gorm:"column:status;not null"`
	Unit          string    `gorm:"column:unit;not null"`
	ReelsUsed     int       `gorm:"column:reels_used;not null;default:0"`
	LowerBound    int       `gorm:"column:lower_bound;not null;default:0"`
	UnusedCount   int       `gorm:"column:unused_count;not null;default:0"`
	Patterns      int       `gorm:"column:patterns;not null;default:0"`
	WallTimeMs    int64     `gorm:"column:wall_time_ms"`
	CPUWorkers    int       `gorm:"column:cpu_workers"`
	MaxTime       int       `gorm:"column:max_time_seconds"`
	Magnification int       `gorm:"column:magnification"`
	MaxPerReel    int       `gorm:"column:max_per_reel"`
	PlanJSON      string    `gorm:"column:plan_json;type:text"` // full plan as JSON
	CreatedAt     time.Time `gorm:"column:created_at;not null;index"`
}

func (RunModel) TableName() string {
	return "runs"
}

// Store records runs through gorm.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at path and migrates the
// schema. ":memory:" gives a throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Each sqlite connection is its own database for ":memory:", and the
	// file store gains nothing from concurrent writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access history connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return NewStore(db)
}

// NewStore wraps an existing connection and migrates the schema.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&RunModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record persists a finished run.
func (s *Store) Record(ctx context.Context, plan model.Plan, settings model.Settings) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	run := &RunModel{
		PlanID:        plan.ID,
		Status:        string(plan.Status),
		Unit:          string(plan.Unit),
		ReelsUsed:     plan.TotalReels(),
		LowerBound:    plan.LowerBound,
		UnusedCount:   plan.Unused.Total(),
		Patterns:      len(plan.Patterns),
		WallTimeMs:    plan.WallTime.Milliseconds(),
		CPUWorkers:    settings.CPUWorkers,
		MaxTime:       settings.MaxTimeSeconds,
		Magnification: settings.Magnification,
		MaxPerReel:    settings.MaxPerReel,
		PlanJSON:      string(data),
		CreatedAt:     plan.CreatedAt,
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	if result := s.db.WithContext(ctx).Create(run); result.Error != nil {
		return fmt.Errorf("failed to record run: %w", result.Error)
	}
	return nil
}

// List returns the most recent runs first. A limit of 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]RunModel, error) {
	var runs []RunModel
	query := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&runs); result.Error != nil {
		return nil, fmt.Errorf("failed to list runs: %w", result.Error)
	}
	return runs, nil
}

// ErrAmbiguousPlanID is returned when a plan ID prefix matches more than
// one recorded run.
var ErrAmbiguousPlanID = errors.New("plan ID prefix matches several runs")

// Plan loads the stored plan for a plan ID or a unique prefix of one.
func (s *Store) Plan(ctx context.Context, planID string) (model.Plan, error) {
	run, err := s.findRun(ctx, planID)
	if err != nil {
		return model.Plan{}, fmt.Errorf("failed to find run %s: %w", planID, err)
	}
	var plan model.Plan
	if err := json.Unmarshal([]byte(run.PlanJSON), &plan); err != nil {
		return model.Plan{}, fmt.Errorf("failed to decode plan %s: %w", planID, err)
	}
	return plan, nil
}

func (s *Store) findRun(ctx context.Context, planID string) (RunModel, error) {
	var run RunModel
	err := s.db.WithContext(ctx).Where("plan_id = ?", planID).First(&run).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) || planID == "" || strings.ContainsAny(planID, "%_") {
		return run, err
	}

	var runs []RunModel
	if result := s.db.WithContext(ctx).Where("plan_id LIKE ?", planID+"%").Limit(2).Find(&runs); result.Error != nil {
		return RunModel{}, result.Error
	}
	switch len(runs) {
	case 0:
		return RunModel{}, gorm.ErrRecordNotFound
	case 1:
		return runs[0], nil
	default:
		return RunModel{}, ErrAmbiguousPlanID
	}
}
