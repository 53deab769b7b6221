package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Unit is the measurement unit used for reel widths.
type Unit string

const (
	UnitInch Unit = "inch"
	UnitMM   Unit = "mm"
)

func (u Unit) String() string {
	return string(u)
}

// Valid reports whether u is a supported measurement unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitInch, UnitMM:
		return true
	default:
		return false
	}
}

// MaxWidthSlots is the number of width columns exposed by a cutting pattern
// in tabular reports (width1..width5).
const MaxWidthSlots = 5

// RawOrder is a customer order line as loaded from an orders file, in real units.
type RawOrder struct {
	Width float64 `json:"width" yaml:"width" validate:"gt=0"`
	Qty   int     `json:"qty" yaml:"qty" validate:"gte=0"`
}

// Order is a unique order width with its summed quantity.
// Width is scaled by the magnification factor.
type Order struct {
	Width int `json:"width"`
	Qty   int `json:"qty"`
}

// StockItem is a standard filler width (scaled) that can pad a reel toward
// its capacity window.
type StockItem struct {
	Width int `json:"width"`
}

// CapacityWindow bounds the total scaled width of a used reel.
type CapacityWindow struct {
	LB int `json:"lb"`
	UB int `json:"ub"`
}

// Contains reports whether w lies inside [LB, UB].
func (w CapacityWindow) Contains(width int) bool {
	return width >= w.LB && width <= w.UB
}

// MachineSpec describes the slitting machine's usable width range for a unit.
type MachineSpec struct {
	Name string  `json:"name" yaml:"name"`
	Unit Unit    `json:"unit" yaml:"unit" validate:"required,oneof=inch mm"`
	LB   float64 `json:"lb" yaml:"lb" validate:"gt=0"`
	UB   float64 `json:"ub" yaml:"ub" validate:"gt=0,gtefield=LB"`
}

// Status is the outcome reported by the solver.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusUnknown    Status = "UNKNOWN"
)

// HasSolution reports whether the status carries a usable assignment.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// CuttingPattern is the layout of one (or Count identical) used reels.
// Widths are in real units, widest first.
type CuttingPattern struct {
	Widths []float64 `json:"widths"`
	Total  float64   `json:"total"`
	Unit   Unit      `json:"unit"`
	Remark string    `json:"remark"`
	Count  int       `json:"qty"`
}

// Width returns the i-th width (1-based) or 0 when the slot is empty.
func (p CuttingPattern) Width(slot int) float64 {
	if slot < 1 || slot > len(p.Widths) {
		return 0
	}
	return p.Widths[slot-1]
}

// Key identifies a pattern by every field except Count.
func (p CuttingPattern) Key() string {
	var b strings.Builder
	for _, w := range p.Widths {
		fmt.Fprintf(&b, "%g,", w)
	}
	fmt.Fprintf(&b, "|%g|%s|%s", p.Total, p.Unit, p.Remark)
	return b.String()
}

// FormatRemark renders filler widths the way the plan report shows them,
// e.g. "[2.0, 1.5]". An empty list renders as "[]".
func FormatRemark(stock []float64) string {
	parts := make([]string, len(stock))
	for i, w := range stock {
		parts[i] = formatWidth(w)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatWidth always keeps at least one decimal place (2 -> "2.0").
func formatWidth(w float64) string {
	s := fmt.Sprintf("%g", w)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// UnusedDemand maps a real-unit order width to the quantity not yet placed.
type UnusedDemand map[float64]int

// Clone returns an independent copy.
func (u UnusedDemand) Clone() UnusedDemand {
	out := make(UnusedDemand, len(u))
	for w, q := range u {
		out[w] = q
	}
	return out
}

// MarshalJSON writes widths as object keys, e.g. {"20.5": 3}.
func (u UnusedDemand) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(u))
	for w, q := range u {
		m[strconv.FormatFloat(w, 'f', -1, 64)] = q
	}
	return json.Marshal(m)
}

func (u *UnusedDemand) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(UnusedDemand, len(m))
	for k, q := range m {
		w, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return fmt.Errorf("unused demand width %q: %w", k, err)
		}
		out[w] = q
	}
	*u = out
	return nil
}

// Total returns the summed residual quantity.
func (u UnusedDemand) Total() int {
	total := 0
	for _, q := range u {
		total += q
	}
	return total
}

// Plan is the final slitting report produced by one optimization run.
type Plan struct {
	ID         string           `json:"id"`
	Status     Status           `json:"status"`
	Unit       Unit             `json:"unit"`
	Patterns   []CuttingPattern `json:"patterns"`
	Unused     UnusedDemand     `json:"unused"`
	ReelsUsed  int              `json:"reels_used"`
	LowerBound int              `json:"lower_bound"`
	WallTime   time.Duration    `json:"wall_time"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewPlan creates an empty plan with a random UUID. The ID keys the run
// history, so it is never shortened.
func NewPlan(unit Unit) Plan {
	return Plan{
		ID:        uuid.NewString(),
		Unit:      unit,
		Patterns:  []CuttingPattern{},
		Unused:    UnusedDemand{},
		CreatedAt: time.Now().UTC(),
	}
}

// Solved reports whether the plan holds cutting patterns from a usable solution.
func (p Plan) Solved() bool {
	return p.Status.HasSolution()
}

// TotalReels returns the number of reels across all patterns.
func (p Plan) TotalReels() int {
	total := 0
	for _, pat := range p.Patterns {
		total += pat.Count
	}
	return total
}

// TrimLoss returns the width left unused across all reels given the
// machine's maximum width, in real units.
func (p Plan) TrimLoss(maxWidth float64) float64 {
	var loss float64
	for _, pat := range p.Patterns {
		loss += (maxWidth - pat.Total) * float64(pat.Count)
	}
	return loss
}

// Settings holds the solver configuration for one run.
type Settings struct {
	CPUWorkers     int  `json:"cpu_workers" mapstructure:"cpu_workers" validate:"min=1"`
	MaxTimeSeconds int  `json:"max_time_seconds" mapstructure:"max_time_seconds" validate:"min=1"`
	Magnification  int  `json:"magnification" mapstructure:"magnification" validate:"min=1"`
	MaxPerReel     int  `json:"max_per_reel" mapstructure:"max_per_reel" validate:"min=1"`
	Unit           Unit `json:"unit" mapstructure:"unit" validate:"required,oneof=inch mm"`
}

// TimeLimit returns the solver wall-clock budget.
func (s Settings) TimeLimit() time.Duration {
	return time.Duration(s.MaxTimeSeconds) * time.Second
}

func DefaultSettings() Settings {
	return Settings{
		CPUWorkers:     4,
		MaxTimeSeconds: 30,
		Magnification:  100,
		MaxPerReel:     5,
		Unit:           UnitInch,
	}
}

// Job ties orders, stock and settings together for save/load.
type Job struct {
	Name     string      `json:"name"`
	Orders   []RawOrder  `json:"orders"`
	Stock    []float64   `json:"stock"`
	Machine  MachineSpec `json:"machine"`
	Settings Settings    `json:"settings"`
	Plan     *Plan       `json:"plan,omitempty"`
}

func NewJob() Job {
	return Job{
		Name:     "Untitled",
		Orders:   []RawOrder{},
		Stock:    []float64{},
		Settings: DefaultSettings(),
	}
}
