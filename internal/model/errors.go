package model

import (
	"errors"
	"fmt"
)

// InvalidInputError reports malformed order, stock or capacity data.
// It is raised before any model is built.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// NewInvalidInput builds an InvalidInputError with a formatted reason.
func NewInvalidInput(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ExtractionInvariantViolation means a decoded solution contradicts the
// model it came from. It is an internal consistency failure and is never
// recoverable.
type ExtractionInvariantViolation struct {
	Reel   int
	Detail string
}

func (e *ExtractionInvariantViolation) Error() string {
	if e.Reel < 0 {
		return fmt.Sprintf("extraction invariant violated: %s", e.Detail)
	}
	return fmt.Sprintf("extraction invariant violated on reel %d: %s", e.Reel, e.Detail)
}

var (
	// ErrNoSolution is the class of outcomes where the solver returned no
	// usable assignment.
	ErrNoSolution = errors.New("no solution found")

	// ErrInfeasible means the solver proved the model has no solution.
	ErrInfeasible = fmt.Errorf("%w: model is infeasible", ErrNoSolution)

	// ErrBudgetExceeded means the time budget ran out before any solution
	// was found. Raising the time limit or worker count may help.
	ErrBudgetExceeded = fmt.Errorf("%w: solver budget exceeded", ErrNoSolution)
)

// NoSolutionError maps a status without a solution to its sentinel error.
// It returns nil for OPTIMAL and FEASIBLE.
func NoSolutionError(s Status) error {
	switch s {
	case StatusOptimal, StatusFeasible:
		return nil
	case StatusInfeasible:
		return ErrInfeasible
	default:
		return ErrBudgetExceeded
	}
}
