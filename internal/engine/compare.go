package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/ReelCut/internal/cpmodel"
	"github.com/piwi3910/ReelCut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the plan and summary numbers for one scenario.
type ComparisonResult struct {
	Scenario    ComparisonScenario
	Plan        model.Plan
	Err         error
	ReelsUsed   int
	TrimLoss    float64
	UnusedCount int
}

// CompareScenarios runs the optimizer once per scenario, in order. A
// scenario that fails records its error and the remaining ones still run.
// Once ctx is done the remaining scenarios are not solved and record
// ctx.Err().
func CompareScenarios(ctx context.Context, solver cpmodel.Solver, scenarios []ComparisonScenario, raw []model.RawOrder, stockWidths []float64, machine model.MachineSpec) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}
		opt := New(scenario.Settings, solver, nil)
		plan, err := opt.Optimize(ctx, raw, stockWidths, machine)

		results = append(results, ComparisonResult{
			Scenario:    scenario,
			Plan:        plan,
			Err:         err,
			ReelsUsed:   plan.ReelsUsed,
			TrimLoss:    plan.TrimLoss(machine.UB),
			UnusedCount: plan.Unused.Total(),
		})
	}

	return results
}

// BuildDefaultScenarios derives the retry options for a run that found no
// solution or a weak one: more items per reel, a longer time budget and
// more workers.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	relaxed := base
	relaxed.MaxPerReel = base.MaxPerReel + 1
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Max %d per reel", relaxed.MaxPerReel),
		Settings: relaxed,
	})

	longer := base
	longer.MaxTimeSeconds = base.MaxTimeSeconds * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Time limit %ds", longer.MaxTimeSeconds),
		Settings: longer,
	})

	wider := base
	wider.CPUWorkers = base.CPUWorkers * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("%d workers", wider.CPUWorkers),
		Settings: wider,
	})

	return scenarios
}
