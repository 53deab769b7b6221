package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ReelCut/internal/cpmodel"
	"github.com/piwi3910/ReelCut/internal/model"
	"github.com/piwi3910/ReelCut/internal/satsolver"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := model.DefaultSettings()
	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 4)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, base, scenarios[0].Settings)
	assert.Equal(t, base.MaxPerReel+1, scenarios[1].Settings.MaxPerReel)
	assert.Equal(t, base.MaxTimeSeconds*2, scenarios[2].Settings.MaxTimeSeconds)
	assert.Equal(t, base.CPUWorkers*2, scenarios[3].Settings.CPUWorkers)
	assert.Equal(t, "8 workers", scenarios[3].Name)
}

func TestCompareScenarios(t *testing.T) {
	solver := satsolver.New(quietLogger())
	base := defaultTestSettings()
	scenarios := []ComparisonScenario{
		{Name: "two per reel", Settings: withMaxPerReel(base, 2)},
		{Name: "one per reel", Settings: withMaxPerReel(base, 1)},
	}
	raw := []model.RawOrder{{Width: 4, Qty: 4}}

	results := CompareScenarios(context.Background(), solver, scenarios, raw, nil, testMachine(4, 12))
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].ReelsUsed)
	assert.Equal(t, 2*(12.0-8.0), results[0].TrimLoss)

	assert.NoError(t, results[1].Err)
	assert.Equal(t, 4, results[1].ReelsUsed)
	assert.Equal(t, 0, results[1].UnusedCount)
}

func TestCompareScenarios_RecordsErrors(t *testing.T) {
	bad := defaultTestSettings()
	bad.Magnification = 0

	results := CompareScenarios(context.Background(), satsolver.New(quietLogger()),
		[]ComparisonScenario{{Name: "bad", Settings: bad}},
		[]model.RawOrder{{Width: 4, Qty: 1}}, nil, testMachine(4, 12))
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestCompareScenarios_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	// The first scenario is interrupted while solving.
	solver := cpmodel.SolverFunc(func(ctx context.Context, _ *cpmodel.Model, _ cpmodel.Budget) (cpmodel.Result, error) {
		calls++
		cancel()
		<-ctx.Done()
		return cpmodel.Result{Status: cpmodel.Unknown, WallTime: time.Millisecond}, nil
	})
	scenarios := BuildDefaultScenarios(defaultTestSettings())

	results := CompareScenarios(ctx, solver, scenarios, []model.RawOrder{{Width: 4, Qty: 2}}, nil, testMachine(4, 12))
	require.Len(t, results, len(scenarios))

	assert.Equal(t, 1, calls)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, model.StatusUnknown, results[0].Plan.Status)
	for _, r := range results[1:] {
		assert.ErrorIs(t, r.Err, context.Canceled, r.Scenario.Name)
	}
}

func withMaxPerReel(s model.Settings, n int) model.Settings {
	s.MaxPerReel = n
	return s
}
