package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/piwi3910/ReelCut/internal/cpmodel"
	"github.com/piwi3910/ReelCut/internal/demand"
	"github.com/piwi3910/ReelCut/internal/model"
)

// Optimizer plans the slitting of source reels for a set of orders.
type Optimizer struct {
	Settings model.Settings
	Solver   cpmodel.Solver
	Logger   *slog.Logger
}

// New creates an optimizer. A nil logger falls back to slog.Default().
func New(settings model.Settings, solver cpmodel.Solver, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Optimizer{Settings: settings, Solver: solver, Logger: logger}
}

// Optimize aggregates the orders, builds the reel model, solves it and
// decodes the assignment into an aggregated plan.
//
// When the solver finds no usable solution the plan carries the status,
// no patterns and the full demand as unused, and the error is nil; callers
// check Plan.Solved. Errors are returned for invalid input, solver
// failures and inconsistent solutions.
func (o *Optimizer) Optimize(ctx context.Context, raw []model.RawOrder, stockWidths []float64, machine model.MachineSpec) (model.Plan, error) {
	s := o.Settings
	if err := validateSettings(s); err != nil {
		return model.Plan{}, err
	}
	if machine.Unit != "" && machine.Unit != s.Unit {
		return model.Plan{}, model.NewInvalidInput("machine", "spec %q is for unit %s, run is in %s", machine.Name, machine.Unit, s.Unit)
	}
	plan := model.NewPlan(s.Unit)
	log := o.Logger.With("plan_id", plan.ID)

	orders, err := demand.Aggregate(raw, s.Magnification)
	if err != nil {
		return model.Plan{}, err
	}
	catalog, err := demand.NewCatalog(stockWidths, machine, s.Magnification)
	if err != nil {
		return model.Plan{}, err
	}
	plan.Unused = demand.InitialUnused(orders, s.Magnification)
	log.Info("demand prepared",
		"orders", len(orders),
		"quantity", demand.TotalQuantity(orders),
		"stock_widths", len(catalog.Stock),
		"window_lb", catalog.Window.LB,
		"window_ub", catalog.Window.UB)

	if len(orders) == 0 {
		plan.Status = model.StatusOptimal
		log.Info("no demand to place")
		return plan, nil
	}

	rm, err := BuildReelModel(orders, catalog.Stock, catalog.Window, s.MaxPerReel)
	if err != nil {
		return model.Plan{}, err
	}
	plan.LowerBound = rm.LowerBound
	log.Info("model built",
		"reels", rm.Reels,
		"variables", rm.Model.NumVars(),
		"constraints", rm.Model.NumConstraints(),
		"lower_bound", rm.LowerBound)

	res, err := o.Solver.Solve(ctx, rm.Model, cpmodel.Budget{Workers: s.CPUWorkers, TimeLimit: s.TimeLimit()})
	if err != nil {
		return model.Plan{}, fmt.Errorf("solve reel model: %w", err)
	}
	plan.Status = statusOf(res.Status)
	plan.WallTime = res.WallTime
	log.Info("model solved",
		"status", plan.Status,
		"objective", res.Objective,
		"best_bound", res.BestBound,
		"wall_time", res.WallTime)

	if !plan.Solved() {
		switch plan.Status {
		case model.StatusInfeasible:
			log.Warn("no solution: model is infeasible",
				"max_per_reel", s.MaxPerReel)
		default:
			log.Warn("no solution: time budget exhausted, raise max_time_seconds or cpu_workers",
				"max_time_seconds", s.MaxTimeSeconds,
				"cpu_workers", s.CPUWorkers)
		}
		return plan, nil
	}

	patterns, unused, err := Extract(rm, res, s.Magnification, s.Unit, plan.Unused)
	if err != nil {
		return plan, fmt.Errorf("extract solution: %w", err)
	}
	if int64(len(patterns)) != res.Objective {
		return plan, fmt.Errorf("extract solution: %w", &model.ExtractionInvariantViolation{
			Reel:   -1,
			Detail: fmt.Sprintf("%d used reels decoded, solver objective is %d", len(patterns), res.Objective),
		})
	}
	plan.Unused = unused
	plan.ReelsUsed = len(patterns)
	plan.Patterns = AggregatePatterns(patterns)
	log.Info("plan aggregated",
		"reels_used", plan.ReelsUsed,
		"patterns", len(plan.Patterns))
	return plan, nil
}

func validateSettings(s model.Settings) error {
	switch {
	case s.CPUWorkers < 1:
		return model.NewInvalidInput("cpu_workers", "must be at least 1, got %d", s.CPUWorkers)
	case s.MaxTimeSeconds <= 0:
		return model.NewInvalidInput("max_time_seconds", "must be positive, got %d", s.MaxTimeSeconds)
	case s.Magnification <= 0:
		return model.NewInvalidInput("magnification", "must be positive, got %d", s.Magnification)
	case s.MaxPerReel <= 0:
		return model.NewInvalidInput("max_per_reel", "must be positive, got %d", s.MaxPerReel)
	case !s.Unit.Valid():
		return model.NewInvalidInput("unit", "unsupported unit %q", s.Unit)
	}
	return nil
}

func statusOf(s cpmodel.Status) model.Status {
	switch s {
	case cpmodel.Optimal:
		return model.StatusOptimal
	case cpmodel.Feasible:
		return model.StatusFeasible
	case cpmodel.Infeasible:
		return model.StatusInfeasible
	default:
		return model.StatusUnknown
	}
}
