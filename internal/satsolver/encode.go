package satsolver

import (
	"math/bits"

	"github.com/crillab/gophersat/solver"

	"github.com/piwi3910/ReelCut/internal/cpmodel"
)

// intVar is the binary encoding of one model variable:
// value = offset + sum(2^j * bit_j).
type intVar struct {
	offset int64
	lits   []int // 1-based boolean variable ids, least significant first
}

// encoding maps a cpmodel.Model onto pseudo-boolean constraints.
type encoding struct {
	vars       []intVar
	nbLits     int
	base       []solver.PBConstr
	objective  cpmodel.LinearExpr
	hasObj     bool
	infeasible bool // a constraint can never hold, regardless of assignment
}

// encode builds the binary encoding of every variable and translates every
// linear constraint into normalized PB constraints.
func encode(m *cpmodel.Model) *encoding {
	enc := &encoding{vars: make([]intVar, m.NumVars())}

	for i := 0; i < m.NumVars(); i++ {
		d := m.Var(cpmodel.Var(i)).Domain
		span := uint64(d.Max - d.Min)
		width := bits.Len64(span)
		iv := intVar{offset: d.Min, lits: make([]int, width)}
		for j := range iv.lits {
			enc.nbLits++
			iv.lits[j] = enc.nbLits
		}
		enc.vars[i] = iv

		// Cap the bit pattern when the span is not 2^k - 1.
		if width > 0 && span != (uint64(1)<<width)-1 {
			e := cpmodel.LinearExpr{Terms: []cpmodel.Term{{Var: cpmodel.Var(i), Coef: 1}}}
			enc.addLinear(e, cpmodel.OpLe, d.Max)
		}
	}

	for i := 0; i < m.NumConstraints(); i++ {
		c := m.Constraint(i)
		enc.addLinear(c.Expr, c.Op, c.RHS)
	}

	enc.objective, enc.hasObj = m.Objective()
	return enc
}

// addLinear appends the PB translation of expr op rhs to the base set.
func (enc *encoding) addLinear(expr cpmodel.LinearExpr, op cpmodel.Op, rhs int64) {
	enc.base = append(enc.base, enc.linear(expr, op, rhs)...)
}

// linear translates expr op rhs without storing it.
func (enc *encoding) linear(expr cpmodel.LinearExpr, op cpmodel.Op, rhs int64) []solver.PBConstr {
	lits, weights, rhs := enc.expand(expr, rhs)

	var out []solver.PBConstr
	if op == cpmodel.OpGe || op == cpmodel.OpEq {
		if c, ok := enc.atLeast(lits, weights, rhs); ok {
			out = append(out, c)
		}
	}
	if op == cpmodel.OpLe || op == cpmodel.OpEq {
		neg := make([]int64, len(weights))
		for i, w := range weights {
			neg[i] = -w
		}
		if c, ok := enc.atLeast(lits, neg, -rhs); ok {
			out = append(out, c)
		}
	}
	return out
}

// expand rewrites expr over boolean literals. The returned rhs has the
// expression constant and every variable offset folded in.
func (enc *encoding) expand(expr cpmodel.LinearExpr, rhs int64) ([]int, []int64, int64) {
	coefs := make(map[cpmodel.Var]int64, len(expr.Terms))
	order := make([]cpmodel.Var, 0, len(expr.Terms))
	for _, t := range expr.Terms {
		if _, seen := coefs[t.Var]; !seen {
			order = append(order, t.Var)
		}
		coefs[t.Var] += t.Coef
	}
	rhs -= expr.Constant

	var lits []int
	var weights []int64
	for _, v := range order {
		coef := coefs[v]
		if coef == 0 {
			continue
		}
		iv := enc.vars[v]
		rhs -= coef * iv.offset
		for j, lit := range iv.lits {
			lits = append(lits, lit)
			weights = append(weights, coef<<uint(j))
		}
	}
	return lits, weights, rhs
}

// atLeast builds sum(w_i * l_i) >= rhs with strictly positive weights.
// ok is false when the constraint holds for every assignment.
func (enc *encoding) atLeast(lits []int, weights []int64, rhs int64) (solver.PBConstr, bool) {
	outLits := make([]int, 0, len(lits))
	outWeights := make([]int, 0, len(lits))
	var sum int64
	for i, w := range weights {
		lit := lits[i]
		if w < 0 {
			// w*l == w + |w|*(not l)
			rhs -= w
			w = -w
			lit = -lit
		}
		outLits = append(outLits, lit)
		outWeights = append(outWeights, int(w))
		sum += w
	}
	if rhs <= 0 {
		return solver.PBConstr{}, false
	}
	if sum < rhs {
		enc.infeasible = true
	}
	return solver.PBConstr{Lits: outLits, Weights: outWeights, AtLeast: int(rhs)}, true
}

// decode reads variable values out of a boolean model. Literals the solver
// never saw are false.
func (enc *encoding) decode(bools []bool) []int64 {
	values := make([]int64, len(enc.vars))
	for i, iv := range enc.vars {
		v := iv.offset
		for j, lit := range iv.lits {
			if lit-1 < len(bools) && bools[lit-1] {
				v += int64(1) << uint(j)
			}
		}
		values[i] = v
	}
	return values
}
