// Package cpmodel describes integer constraint models as immutable values.
//
// A Builder accumulates variable declarations, linear constraints, a
// minimization objective and non-binding search hints. Build returns a
// read-only Model that can be handed to any Solver implementation.
package cpmodel

import (
	"errors"
	"fmt"
)

// Var is a dense handle to a variable declared on a Builder.
type Var int

// Domain is the inclusive integer range of a variable.
type Domain struct {
	Min int64
	Max int64
}

// Contains reports whether v lies inside the domain.
func (d Domain) Contains(v int64) bool {
	return v >= d.Min && v <= d.Max
}

// VarDecl describes one declared variable.
type VarDecl struct {
	Domain Domain
	Bool   bool
}

// Term is coef * var.
type Term struct {
	Var  Var
	Coef int64
}

// LinearExpr is a weighted sum of variables plus a constant.
type LinearExpr struct {
	Terms    []Term
	Constant int64
}

// NewLinearExpr returns an empty expression.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// Add adds v with coefficient 1.
func (e *LinearExpr) Add(v Var) *LinearExpr {
	return e.AddTerm(v, 1)
}

// AddTerm adds coef * v. Zero coefficients are dropped.
func (e *LinearExpr) AddTerm(v Var, coef int64) *LinearExpr {
	if coef != 0 {
		e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	}
	return e
}

// AddSum adds every variable of vs with coefficient 1.
func (e *LinearExpr) AddSum(vs ...Var) *LinearExpr {
	for _, v := range vs {
		e.AddTerm(v, 1)
	}
	return e
}

// AddConstant adds c to the constant part.
func (e *LinearExpr) AddConstant(c int64) *LinearExpr {
	e.Constant += c
	return e
}

// Eval computes the expression for a full assignment indexed by Var.
func (e LinearExpr) Eval(values []int64) int64 {
	sum := e.Constant
	for _, t := range e.Terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

func (e LinearExpr) clone() LinearExpr {
	terms := make([]Term, len(e.Terms))
	copy(terms, e.Terms)
	return LinearExpr{Terms: terms, Constant: e.Constant}
}

// Op is the relation of a linear constraint.
type Op int

const (
	OpEq Op = iota // expr == rhs
	OpLe           // expr <= rhs
	OpGe           // expr >= rhs
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// Constraint is expr op rhs.
type Constraint struct {
	Expr LinearExpr
	Op   Op
	RHS  int64
}

// Satisfied reports whether the assignment satisfies the constraint.
func (c Constraint) Satisfied(values []int64) bool {
	lhs := c.Expr.Eval(values)
	switch c.Op {
	case OpEq:
		return lhs == c.RHS
	case OpLe:
		return lhs <= c.RHS
	case OpGe:
		return lhs >= c.RHS
	default:
		return false
	}
}

// Hint is a preferred starting value for a variable. Hints never change
// which assignments are feasible.
type Hint struct {
	Var   Var
	Value int64
}

// Model is a finalized, read-only constraint model.
type Model struct {
	vars        []VarDecl
	constraints []Constraint
	objective   LinearExpr
	hasObj      bool
	hints       []Hint
	objLB       int64
	hasObjLB    bool
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of linear constraints.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Var returns the declaration of v.
func (m *Model) Var(v Var) VarDecl { return m.vars[v] }

// Constraint returns a copy of the i-th constraint.
func (m *Model) Constraint(i int) Constraint {
	c := m.constraints[i]
	c.Expr = c.Expr.clone()
	return c
}

// Objective returns a copy of the minimization objective and whether one was set.
func (m *Model) Objective() (LinearExpr, bool) {
	return m.objective.clone(), m.hasObj
}

// Hints returns a copy of the search hints.
func (m *Model) Hints() []Hint {
	out := make([]Hint, len(m.hints))
	copy(out, m.hints)
	return out
}

// ObjectiveLowerBound returns the lower bound recorded by the builder, if any.
func (m *Model) ObjectiveLowerBound() (int64, bool) { return m.objLB, m.hasObjLB }

// Check verifies a full assignment against domains and constraints.
func (m *Model) Check(values []int64) error {
	if len(values) != len(m.vars) {
		return fmt.Errorf("assignment has %d values, model has %d variables", len(values), len(m.vars))
	}
	for i, d := range m.vars {
		if !d.Domain.Contains(values[i]) {
			return fmt.Errorf("variable %d = %d outside [%d, %d]", i, values[i], d.Domain.Min, d.Domain.Max)
		}
	}
	for i, c := range m.constraints {
		if !c.Satisfied(values) {
			return fmt.Errorf("constraint %d violated: %d %s %d", i, c.Expr.Eval(values), c.Op, c.RHS)
		}
	}
	return nil
}

// Builder accumulates declarations for a Model.
type Builder struct {
	vars        []VarDecl
	constraints []Constraint
	objective   LinearExpr
	hasObj      bool
	hints       []Hint
	objLB       int64
	hasObjLB    bool
	errs        []error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// NewIntVar declares an integer variable in [lo, hi].
func (b *Builder) NewIntVar(lo, hi int64) Var {
	if lo > hi {
		b.errs = append(b.errs, fmt.Errorf("variable %d: empty domain [%d, %d]", len(b.vars), lo, hi))
	}
	b.vars = append(b.vars, VarDecl{Domain: Domain{Min: lo, Max: hi}})
	return Var(len(b.vars) - 1)
}

// NewBoolVar declares a 0/1 variable.
func (b *Builder) NewBoolVar() Var {
	b.vars = append(b.vars, VarDecl{Domain: Domain{Min: 0, Max: 1}, Bool: true})
	return Var(len(b.vars) - 1)
}

func (b *Builder) add(expr *LinearExpr, op Op, rhs int64) {
	e := expr.clone()
	// Fold the constant into the right-hand side.
	rhs -= e.Constant
	e.Constant = 0
	b.constraints = append(b.constraints, Constraint{Expr: e, Op: op, RHS: rhs})
}

// AddEquality adds expr == rhs.
func (b *Builder) AddEquality(expr *LinearExpr, rhs int64) {
	b.add(expr, OpEq, rhs)
}

// AddLessOrEqual adds expr <= rhs.
func (b *Builder) AddLessOrEqual(expr *LinearExpr, rhs int64) {
	b.add(expr, OpLe, rhs)
}

// AddGreaterOrEqual adds expr >= rhs.
func (b *Builder) AddGreaterOrEqual(expr *LinearExpr, rhs int64) {
	b.add(expr, OpGe, rhs)
}

// Minimize sets the objective, replacing any previous one.
func (b *Builder) Minimize(expr *LinearExpr) {
	b.objective = expr.clone()
	b.hasObj = true
}

// AddHint biases the initial search toward v == value.
func (b *Builder) AddHint(v Var, value int64) {
	b.hints = append(b.hints, Hint{Var: v, Value: value})
}

// SetObjectiveLowerBound records a bound the objective can never go below.
func (b *Builder) SetObjectiveLowerBound(lb int64) {
	b.objLB = lb
	b.hasObjLB = true
}

// Build validates the accumulated declarations and returns a Model that no
// longer shares memory with the builder.
func (b *Builder) Build() (*Model, error) {
	errs := append([]error(nil), b.errs...)
	n := Var(len(b.vars))
	checkExpr := func(where string, e LinearExpr) {
		for _, t := range e.Terms {
			if t.Var < 0 || t.Var >= n {
				errs = append(errs, fmt.Errorf("%s references undeclared variable %d", where, t.Var))
			}
		}
	}
	for i, c := range b.constraints {
		checkExpr(fmt.Sprintf("constraint %d", i), c.Expr)
	}
	checkExpr("objective", b.objective)
	for _, h := range b.hints {
		if h.Var < 0 || h.Var >= n {
			errs = append(errs, fmt.Errorf("hint references undeclared variable %d", h.Var))
			continue
		}
		if !b.vars[h.Var].Domain.Contains(h.Value) {
			errs = append(errs, fmt.Errorf("hint %d for variable %d outside its domain", h.Value, h.Var))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("cpmodel: invalid model: %w", errors.Join(errs...))
	}

	m := &Model{
		vars:        make([]VarDecl, len(b.vars)),
		constraints: make([]Constraint, len(b.constraints)),
		objective:   b.objective.clone(),
		hasObj:      b.hasObj,
		hints:       make([]Hint, len(b.hints)),
		objLB:       b.objLB,
		hasObjLB:    b.hasObjLB,
	}
	copy(m.vars, b.vars)
	for i, c := range b.constraints {
		m.constraints[i] = Constraint{Expr: c.Expr.clone(), Op: c.Op, RHS: c.RHS}
	}
	copy(m.hints, b.hints)
	return m, nil
}
