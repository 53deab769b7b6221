// Package satsolver solves cpmodel models with a pure-Go pseudo-boolean SAT
// solver.
//
// Integer variables are encoded in binary and linear constraints become
// normalized pseudo-boolean constraints. The objective is minimized by
// probing: each probe solves the model with an extra bound objective <= k.
// Each round fans out up to Budget.Workers probes at different bounds, and
// the wall-clock limit is enforced with a context deadline.
//
// gophersat shares a package-level scratch buffer between solver instances,
// so at most one gophersat solve runs in the process at any time. Probes
// queue on a gate; a probe abandoned at its deadline keeps the gate until
// its solve returns, and later solves wait for it within their own budget.
package satsolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/crillab/gophersat/solver"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/ReelCut/internal/cpmodel"
)

// gate admits one gophersat solve at a time across every Solver.
var gate = make(chan struct{}, 1)

// decideFunc runs one decision solve and returns the boolean model when
// the constraints are satisfiable.
type decideFunc func(constrs []solver.PBConstr) (sat bool, model []bool)

func gophersatDecide(constrs []solver.PBConstr) (bool, []bool) {
	sv := solver.New(solver.ParsePBConstrs(constrs))
	if sv.Solve() != solver.Sat {
		return false, nil
	}
	return true, sv.Model()
}

// Solver implements cpmodel.Solver.
type Solver struct {
	logger *slog.Logger
	decide decideFunc
}

// New creates a solver. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Solver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{logger: logger, decide: gophersatDecide}
}

type probeOutcome int

const (
	probeSat probeOutcome = iota
	probeUnsat
	probeTimeout
	probeFailed
)

type probeResult struct {
	bound   int64
	outcome probeOutcome
	values  []int64
	obj     int64
	err     error
}

// Solve minimizes the model objective within the budget.
func (s *Solver) Solve(ctx context.Context, m *cpmodel.Model, budget cpmodel.Budget) (cpmodel.Result, error) {
	start := time.Now()
	if budget.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget.TimeLimit)
		defer cancel()
	}
	workers := budget.Workers
	if workers < 1 {
		workers = 1
	}

	enc := encode(m)
	s.logger.Debug("satsolver: model encoded",
		"vars", m.NumVars(),
		"literals", enc.nbLits,
		"pb_constraints", len(enc.base),
		"workers", workers)

	result := cpmodel.Result{Status: cpmodel.Unknown}
	finish := func() (cpmodel.Result, error) {
		result.WallTime = time.Since(start)
		return result, nil
	}

	if enc.infeasible {
		result.Status = cpmodel.Infeasible
		return finish()
	}
	if enc.nbLits == 0 {
		// Every variable is fixed by its domain.
		values := enc.decode(nil)
		if err := m.Check(values); err != nil {
			result.Status = cpmodel.Infeasible
			return finish()
		}
		result.Status = cpmodel.Optimal
		result.Values = values
		result.Objective = enc.objective.Eval(values)
		result.BestBound = result.Objective
		return finish()
	}

	first := s.probe(ctx, m, enc, nil)
	switch first.outcome {
	case probeUnsat:
		result.Status = cpmodel.Infeasible
		return finish()
	case probeTimeout:
		return finish()
	case probeFailed:
		return cpmodel.Result{}, first.err
	}

	best := first
	lo := objectiveFloor(m, enc)
	result.Values = best.values
	result.Objective = best.obj
	result.Status = cpmodel.Feasible

	if !enc.hasObj {
		result.Status = cpmodel.Optimal
		result.BestBound = best.obj
		return finish()
	}

	for best.obj > lo {
		bounds := probeBounds(lo, best.obj-1, workers)
		results := make([]probeResult, len(bounds))

		g, gctx := errgroup.WithContext(ctx)
		for i, k := range bounds {
			i, k := i, k
			g.Go(func() error {
				results[i] = s.probe(gctx, m, enc, &k)
				return results[i].err
			})
		}
		if err := g.Wait(); err != nil {
			return cpmodel.Result{}, err
		}

		timedOut := false
		for _, r := range results {
			switch r.outcome {
			case probeSat:
				if r.obj < best.obj {
					best = r
				}
			case probeUnsat:
				if r.bound+1 > lo {
					lo = r.bound + 1
				}
			case probeTimeout:
				timedOut = true
			}
		}
		s.logger.Debug("satsolver: probe round",
			"bounds", bounds,
			"best", best.obj,
			"lower_bound", lo)

		result.Values = best.values
		result.Objective = best.obj
		if timedOut || ctx.Err() != nil {
			break
		}
	}

	result.BestBound = lo
	if best.obj <= lo {
		result.Status = cpmodel.Optimal
		result.BestBound = best.obj
	}
	return finish()
}

// probe runs one decision solve. A nil bound solves the model as is.
// A probe that cannot enter the gate, or is still running at the deadline,
// is reported as a timeout. A satisfying assignment is only accepted once
// it passes Model.Check and meets the bound.
func (s *Solver) probe(ctx context.Context, m *cpmodel.Model, enc *encoding, bound *int64) probeResult {
	res := probeResult{outcome: probeTimeout}
	if bound != nil {
		res.bound = *bound
	}
	if ctx.Err() != nil {
		return res
	}

	constrs := cloneConstrs(enc.base, 2)
	if bound != nil {
		extra := enc.linear(enc.objective, cpmodel.OpLe, *bound)
		if boundInfeasible(extra) {
			res.outcome = probeUnsat
			return res
		}
		constrs = append(constrs, extra...)
	}

	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return res
	}
	if ctx.Err() != nil {
		<-gate
		return res
	}

	done := make(chan probeResult, 1)
	go func() {
		r := res
		defer func() {
			if p := recover(); p != nil {
				r = res
				r.outcome = probeFailed
				r.err = fmt.Errorf("satsolver: solver panicked: %v", p)
			}
			<-gate
			done <- r
		}()

		sat, bools := s.decide(constrs)
		if !sat {
			r.outcome = probeUnsat
			return
		}
		values := enc.decode(bools)
		if err := m.Check(values); err != nil {
			r.outcome = probeFailed
			r.err = fmt.Errorf("satsolver: solver returned an invalid assignment: %w", err)
			return
		}
		obj := enc.objective.Eval(values)
		if bound != nil && obj > *bound {
			r.outcome = probeFailed
			r.err = fmt.Errorf("satsolver: assignment with objective %d exceeds bound %d", obj, *bound)
			return
		}
		r.outcome = probeSat
		r.values = values
		r.obj = obj
	}()

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return res
	}
}

// boundInfeasible reports whether any constraint can never be met.
func boundInfeasible(cs []solver.PBConstr) bool {
	for _, c := range cs {
		sum := 0
		for _, w := range c.Weights {
			sum += w
		}
		if sum < c.AtLeast {
			return true
		}
	}
	return false
}

// objectiveFloor is the best lower bound known before searching: the
// minimum the objective can take over variable domains, raised to the
// model's recorded bound when there is one.
func objectiveFloor(m *cpmodel.Model, enc *encoding) int64 {
	floor := enc.objective.Constant
	for _, t := range enc.objective.Terms {
		d := m.Var(t.Var).Domain
		floor += min(t.Coef*d.Min, t.Coef*d.Max)
	}
	if lb, ok := m.ObjectiveLowerBound(); ok && lb > floor {
		floor = lb
	}
	return floor
}

// probeBounds picks up to n distinct bounds in [lo, hi]. hi is always
// included so every round can make progress.
func probeBounds(lo, hi int64, n int) []int64 {
	if hi < lo {
		return []int64{hi}
	}
	if n <= 1 || hi == lo {
		return []int64{hi}
	}
	seen := make(map[int64]bool, n)
	var out []int64
	span := hi - lo
	for i := 0; i < n; i++ {
		k := hi - span*int64(i)/int64(n-1)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// cloneConstrs deep-copies constraints so concurrent probes never share
// literal or weight slices with the solver internals.
func cloneConstrs(cs []solver.PBConstr, extra int) []solver.PBConstr {
	out := make([]solver.PBConstr, len(cs), len(cs)+extra)
	for i, c := range cs {
		out[i] = solver.PBConstr{
			Lits:    append([]int(nil), c.Lits...),
			Weights: append([]int(nil), c.Weights...),
			AtLeast: c.AtLeast,
		}
	}
	return out
}

var _ cpmodel.Solver = (*Solver)(nil)
