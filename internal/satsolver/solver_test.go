package satsolver

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crillab/gophersat/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ReelCut/internal/cpmodel"
)

func solve(t *testing.T, m *cpmodel.Model, budget cpmodel.Budget) cpmodel.Result {
	t.Helper()
	res, err := New(nil).Solve(context.Background(), m, budget)
	require.NoError(t, err)
	return res
}

func defaultBudget() cpmodel.Budget {
	return cpmodel.Budget{Workers: 2, TimeLimit: 10 * time.Second}
}

func TestSolve_MinimizesSimpleObjective(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 10)
	y := b.NewIntVar(0, 10)
	// x + y >= 7, x - y <= 1, minimize 3x + 2y
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().AddSum(x, y), 7)
	b.AddLessOrEqual(cpmodel.NewLinearExpr().AddTerm(x, 1).AddTerm(y, -1), 1)
	b.Minimize(cpmodel.NewLinearExpr().AddTerm(x, 3).AddTerm(y, 2))
	m, err := b.Build()
	require.NoError(t, err)

	res := solve(t, m, defaultBudget())
	assert.Equal(t, cpmodel.Optimal, res.Status)
	assert.Equal(t, int64(14), res.Objective)
	assert.Equal(t, int64(0), res.Value(x))
	assert.Equal(t, int64(7), res.Value(y))
	assert.NoError(t, m.Check(res.Values))
}

func TestSolve_HandlesEqualityAndOffsets(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(3, 9)
	y := b.NewIntVar(-2, 4)
	b.AddEquality(cpmodel.NewLinearExpr().AddTerm(x, 2).AddTerm(y, 1), 11)
	b.Minimize(cpmodel.NewLinearExpr().Add(x))
	m, err := b.Build()
	require.NoError(t, err)

	res := solve(t, m, defaultBudget())
	require.Equal(t, cpmodel.Optimal, res.Status)
	assert.Equal(t, int64(4), res.Value(x))
	assert.Equal(t, int64(3), res.Value(y))
	assert.NoError(t, m.Check(res.Values))
}

func TestSolve_ReportsInfeasible(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 5)
	y := b.NewIntVar(0, 5)
	b.AddEquality(cpmodel.NewLinearExpr().AddSum(x, y), 4)
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().AddTerm(x, 2), 9)
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().Add(y), 1)
	b.Minimize(cpmodel.NewLinearExpr().Add(x))
	m, err := b.Build()
	require.NoError(t, err)

	res := solve(t, m, defaultBudget())
	assert.Equal(t, cpmodel.Infeasible, res.Status)
	assert.Nil(t, res.Values)
}

func TestSolve_TriviallyInfeasibleConstraint(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 3)
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().Add(x), 10)
	m, err := b.Build()
	require.NoError(t, err)

	res := solve(t, m, defaultBudget())
	assert.Equal(t, cpmodel.Infeasible, res.Status)
}

func TestSolve_FixedVariables(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(4, 4)
	b.Minimize(cpmodel.NewLinearExpr().AddTerm(x, 2))
	m, err := b.Build()
	require.NoError(t, err)

	res := solve(t, m, defaultBudget())
	assert.Equal(t, cpmodel.Optimal, res.Status)
	assert.Equal(t, int64(8), res.Objective)
}

func TestSolve_NoObjectiveIsOptimalOnFirstSolution(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 7)
	b.AddEquality(cpmodel.NewLinearExpr().Add(x), 5)
	m, err := b.Build()
	require.NoError(t, err)

	res := solve(t, m, defaultBudget())
	assert.Equal(t, cpmodel.Optimal, res.Status)
	assert.Equal(t, int64(5), res.Value(x))
}

func TestSolve_StopsAtRecordedLowerBound(t *testing.T) {
	b := cpmodel.NewBuilder()
	used := []cpmodel.Var{b.NewBoolVar(), b.NewBoolVar(), b.NewBoolVar()}
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().AddSum(used...), 2)
	b.Minimize(cpmodel.NewLinearExpr().AddSum(used...))
	b.SetObjectiveLowerBound(2)
	m, err := b.Build()
	require.NoError(t, err)

	res := solve(t, m, defaultBudget())
	assert.Equal(t, cpmodel.Optimal, res.Status)
	assert.Equal(t, int64(2), res.Objective)
	assert.Equal(t, int64(2), res.BestBound)
}

func TestSolve_BinPackingWithParallelProbes(t *testing.T) {
	// Items 5x4, 4x3, 3x3 into bins of capacity 12: total 41, so at least 4 bins.
	items := []struct{ width, qty int64 }{{5, 4}, {4, 3}, {3, 3}}
	const bins = 6

	b := cpmodel.NewBuilder()
	used := make([]cpmodel.Var, bins)
	for r := range used {
		used[r] = b.NewBoolVar()
	}
	counts := make([][]cpmodel.Var, len(items))
	for i, it := range items {
		counts[i] = make([]cpmodel.Var, bins)
		for r := range counts[i] {
			counts[i][r] = b.NewIntVar(0, it.qty)
		}
		b.AddEquality(cpmodel.NewLinearExpr().AddSum(counts[i]...), it.qty)
	}
	for r := 0; r < bins; r++ {
		load := cpmodel.NewLinearExpr()
		for i, it := range items {
			load.AddTerm(counts[i][r], it.width)
		}
		load.AddTerm(used[r], -12)
		b.AddLessOrEqual(load, 0)
		if r > 0 {
			b.AddGreaterOrEqual(cpmodel.NewLinearExpr().Add(used[r-1]).AddTerm(used[r], -1), 0)
		}
	}
	b.Minimize(cpmodel.NewLinearExpr().AddSum(used...))
	b.SetObjectiveLowerBound(4)
	m, err := b.Build()
	require.NoError(t, err)

	res := solve(t, m, cpmodel.Budget{Workers: 4, TimeLimit: 20 * time.Second})
	require.Equal(t, cpmodel.Optimal, res.Status)
	assert.Equal(t, int64(4), res.Objective)
	assert.NoError(t, m.Check(res.Values))
}

func TestSolve_CancelledContextIsUnknown(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 100)
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().Add(x), 3)
	b.Minimize(cpmodel.NewLinearExpr().Add(x))
	m, err := b.Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := New(nil).Solve(ctx, m, cpmodel.Budget{Workers: 1, TimeLimit: time.Second})
	require.NoError(t, err)
	assert.Equal(t, cpmodel.Unknown, res.Status)
	assert.False(t, res.Status.HasSolution())
}

// assignmentModel places n items into n+spare unit bins, one item per bin,
// and minimizes the bins used. Proving any bound below n is a pigeonhole
// refutation, which keeps the learner busy.
func assignmentModel(t *testing.T, n, spare int) *cpmodel.Model {
	t.Helper()
	bins := n + spare
	b := cpmodel.NewBuilder()
	used := make([]cpmodel.Var, bins)
	for r := range used {
		used[r] = b.NewBoolVar()
	}
	place := make([][]cpmodel.Var, n)
	for i := range place {
		place[i] = make([]cpmodel.Var, bins)
		for r := range place[i] {
			place[i][r] = b.NewBoolVar()
		}
		b.AddEquality(cpmodel.NewLinearExpr().AddSum(place[i]...), 1)
	}
	for r := 0; r < bins; r++ {
		load := cpmodel.NewLinearExpr()
		for i := range place {
			load.Add(place[i][r])
		}
		b.AddLessOrEqual(load.AddTerm(used[r], -1), 0)
	}
	b.Minimize(cpmodel.NewLinearExpr().AddSum(used...))
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func TestSolve_ConflictHeavyModelWithParallelProbes(t *testing.T) {
	m := assignmentModel(t, 7, 2)

	for run := 0; run < 3; run++ {
		res := solve(t, m, cpmodel.Budget{Workers: 4, TimeLimit: 60 * time.Second})
		require.Equal(t, cpmodel.Optimal, res.Status, "run %d", run)
		assert.Equal(t, int64(7), res.Objective, "run %d", run)
		assert.Equal(t, int64(7), res.BestBound, "run %d", run)
		assert.NoError(t, m.Check(res.Values), "run %d", run)
	}
}

func TestSolve_BackToBackSolvesShareNothing(t *testing.T) {
	m := assignmentModel(t, 6, 3)
	ctx := context.Background()

	errs := make(chan error, 3)
	results := make(chan cpmodel.Result, 3)
	for i := 0; i < 3; i++ {
		go func() {
			res, err := New(nil).Solve(ctx, m, cpmodel.Budget{Workers: 3, TimeLimit: 60 * time.Second})
			errs <- err
			results <- res
		}()
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, <-errs)
		res := <-results
		require.Equal(t, cpmodel.Optimal, res.Status)
		assert.Equal(t, int64(6), res.Objective)
		assert.NoError(t, m.Check(res.Values))
	}
}

// stalledAfter passes the first n decisions to gophersat and blocks every
// later one until the test ends.
func stalledAfter(t *testing.T, n int32) decideFunc {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	var calls atomic.Int32
	return func(constrs []solver.PBConstr) (bool, []bool) {
		if calls.Add(1) <= n {
			return gophersatDecide(constrs)
		}
		<-release
		return false, nil
	}
}

func TestSolve_DeadlineAfterFirstSolutionIsFeasible(t *testing.T) {
	b := cpmodel.NewBuilder()
	used := []cpmodel.Var{b.NewBoolVar(), b.NewBoolVar(), b.NewBoolVar()}
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().AddSum(used...), 1)
	b.Minimize(cpmodel.NewLinearExpr().AddSum(used...))
	m, err := b.Build()
	require.NoError(t, err)

	s := New(nil)
	s.decide = stalledAfter(t, 1)
	res, err := s.Solve(context.Background(), m, cpmodel.Budget{Workers: 2, TimeLimit: 200 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, cpmodel.Feasible, res.Status)
	assert.NoError(t, m.Check(res.Values))
	assert.GreaterOrEqual(t, res.Objective, int64(1))
	assert.Less(t, res.BestBound, res.Objective)
	assert.GreaterOrEqual(t, res.WallTime, 200*time.Millisecond)
}

func TestSolve_TimeLimitBeforeFirstSolutionIsUnknown(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 100)
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().Add(x), 3)
	b.Minimize(cpmodel.NewLinearExpr().Add(x))
	m, err := b.Build()
	require.NoError(t, err)

	s := New(nil)
	s.decide = stalledAfter(t, 0)
	res, err := s.Solve(context.Background(), m, cpmodel.Budget{Workers: 1, TimeLimit: 100 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, cpmodel.Unknown, res.Status)
	assert.Nil(t, res.Values)
	assert.GreaterOrEqual(t, res.WallTime, 100*time.Millisecond)
}

func TestSolve_RejectsInvalidAssignment(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 3)
	b.AddLessOrEqual(cpmodel.NewLinearExpr().Add(x), 1)
	b.Minimize(cpmodel.NewLinearExpr().Add(x))
	m, err := b.Build()
	require.NoError(t, err)

	s := New(nil)
	s.decide = func([]solver.PBConstr) (bool, []bool) {
		return true, []bool{true, true, true, true}
	}
	_, err = s.Solve(context.Background(), m, defaultBudget())
	assert.ErrorContains(t, err, "invalid assignment")
}

func TestSolve_RecoversSolverPanic(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 3)
	b.Minimize(cpmodel.NewLinearExpr().Add(x))
	m, err := b.Build()
	require.NoError(t, err)

	s := New(nil)
	s.decide = func([]solver.PBConstr) (bool, []bool) {
		panic("runtime error: index out of range [-1]")
	}
	_, err = s.Solve(context.Background(), m, defaultBudget())
	assert.ErrorContains(t, err, "panicked")

	// The gate is free again.
	res := solve(t, m, defaultBudget())
	assert.Equal(t, cpmodel.Optimal, res.Status)
}

func TestProbeBounds(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi int64
		n      int
		want   []int64
	}{
		{"single worker", 2, 9, 1, []int64{9}},
		{"collapsed range", 4, 4, 4, []int64{4}},
		{"spread", 0, 9, 4, []int64{9, 6, 3, 0}},
		{"more workers than values", 3, 4, 5, []int64{4, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, probeBounds(tt.lo, tt.hi, tt.n))
		})
	}
}

func TestEncode_NegativeCoefficientsAreNormalized(t *testing.T) {
	b := cpmodel.NewBuilder()
	x := b.NewIntVar(0, 3)
	y := b.NewIntVar(0, 3)
	b.AddGreaterOrEqual(cpmodel.NewLinearExpr().AddTerm(x, 1).AddTerm(y, -2), 1)
	m, err := b.Build()
	require.NoError(t, err)

	enc := encode(m)
	require.False(t, enc.infeasible)
	for _, c := range enc.base {
		for _, w := range c.Weights {
			assert.Positive(t, w)
		}
		assert.Positive(t, c.AtLeast)
	}
	assert.Equal(t, []int64{3, 1}, enc.decode([]bool{true, true, true, false}))
}
