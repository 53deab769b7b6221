package cpmodel

import (
	"context"
	"time"
)

// Status is the outcome of a solve call.
type Status int

const (
	Unknown Status = iota
	Optimal
	Feasible
	Infeasible
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// HasSolution reports whether Values holds a usable assignment.
func (s Status) HasSolution() bool {
	return s == Optimal || s == Feasible
}

// Budget bounds the resources a solver may use.
type Budget struct {
	Workers   int
	TimeLimit time.Duration
}

// Result is what a Solver returns. Values is indexed by Var and is only
// populated when Status.HasSolution().
type Result struct {
	Status    Status
	Values    []int64
	Objective int64
	BestBound int64
	WallTime  time.Duration
}

// Value returns the assigned value of v.
func (r Result) Value(v Var) int64 {
	return r.Values[v]
}

// Solver searches for an assignment minimizing the model's objective.
// Implementations must return Unknown rather than block past the budget's
// time limit, and must treat the budget's worker count as a performance
// knob only.
type Solver interface {
	Solve(ctx context.Context, m *Model, budget Budget) (Result, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, m *Model, budget Budget) (Result, error)

func (f SolverFunc) Solve(ctx context.Context, m *Model, budget Budget) (Result, error) {
	return f(ctx, m, budget)
}
