package milp

import (
	"fmt"
	"math"
)

// Var identifies a decision variable of a Problem.
type Var int

// Sense is the direction of a linear constraint.
type Sense int

const (
	// LessEq is sum(coef*var) <= rhs.
	LessEq Sense = iota
	// GreaterEq is sum(coef*var) >= rhs.
	GreaterEq
)

func (s Sense) String() string {
	if s == GreaterEq {
		return ">="
	}
	return "<="
}

// Term is one coefficient of a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// T is shorthand for Term{v, coef}.
func T(v Var, coef float64) Term { return Term{Var: v, Coef: coef} }

type constraint struct {
	name  string
	terms []Term
	sense Sense
	rhs   float64
}

// Problem is a minimization mixed-integer linear program. Variables have a
// finite lower bound and an optional upper bound (math.Inf(1) when absent).
//
// Builder methods never fail; the first invalid call is remembered and
// reported by Solve.
type Problem struct {
	names   []string
	lower   []float64
	upper   []float64
	integer []bool
	obj     []float64
	rows    []constraint
	err     error
}

// NewProblem returns an empty problem.
func NewProblem() *Problem { return &Problem{} }

// AddVar adds a variable with bounds [lb, ub].
func (p *Problem) AddVar(name string, lb, ub float64, integer bool) Var {
	v := Var(len(p.obj))
	switch {
	case math.IsNaN(lb) || math.IsInf(lb, 0):
		p.fail(fmt.Errorf("variable %s: lower bound must be finite", name))
	case math.IsNaN(ub) || ub < lb:
		p.fail(fmt.Errorf("variable %s: upper bound %g below lower bound %g", name, ub, lb))
	}
	p.names = append(p.names, name)
	p.lower = append(p.lower, lb)
	p.upper = append(p.upper, ub)
	p.integer = append(p.integer, integer)
	p.obj = append(p.obj, 0)
	return v
}

// AddBinary adds a 0/1 variable.
func (p *Problem) AddBinary(name string) Var { return p.AddVar(name, 0, 1, true) }

// AddContinuous adds a continuous variable.
func (p *Problem) AddContinuous(name string, lb, ub float64) Var {
	return p.AddVar(name, lb, ub, false)
}

// AddObjective adds coef*v to the minimized objective.
func (p *Problem) AddObjective(v Var, coef float64) {
	if !p.valid(v) {
		p.fail(fmt.Errorf("objective references unknown variable %d", v))
		return
	}
	if math.IsNaN(coef) || math.IsInf(coef, 0) {
		p.fail(fmt.Errorf("objective coefficient of %s is not finite", p.names[v]))
		return
	}
	p.obj[v] += coef
}

// AddConstraint adds sum(terms) sense rhs. Repeated variables are merged and
// zero coefficients dropped.
func (p *Problem) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		p.fail(fmt.Errorf("constraint %s: rhs is not finite", name))
		return
	}
	merged := make([]Term, 0, len(terms))
	pos := make(map[Var]int, len(terms))
	for _, t := range terms {
		if !p.valid(t.Var) {
			p.fail(fmt.Errorf("constraint %s references unknown variable %d", name, t.Var))
			return
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			p.fail(fmt.Errorf("constraint %s: coefficient of %s is not finite", name, p.names[t.Var]))
			return
		}
		if i, ok := pos[t.Var]; ok {
			merged[i].Coef += t.Coef
			continue
		}
		pos[t.Var] = len(merged)
		merged = append(merged, t)
	}
	kept := merged[:0]
	for _, t := range merged {
		if t.Coef != 0 {
			kept = append(kept, t)
		}
	}
	p.rows = append(p.rows, constraint{name: name, terms: kept, sense: sense, rhs: rhs})
}

// NumVars returns the number of variables.
func (p *Problem) NumVars() int { return len(p.obj) }

// NumConstraints returns the number of constraints, excluding bounds.
func (p *Problem) NumConstraints() int { return len(p.rows) }

// NumIntegers returns the number of integer variables.
func (p *Problem) NumIntegers() int {
	n := 0
	for _, b := range p.integer {
		if b {
			n++
		}
	}
	return n
}

// Name returns the name a variable was created with.
func (p *Problem) Name(v Var) string {
	if !p.valid(v) {
		return ""
	}
	return p.names[v]
}

// Evaluate returns the objective value of x.
func (p *Problem) Evaluate(x []float64) float64 {
	var f float64
	for j, c := range p.obj {
		f += c * x[j]
	}
	return f
}

// Feasible reports whether x satisfies every bound and constraint within tol.
func (p *Problem) Feasible(x []float64, tol float64) bool {
	if len(x) != len(p.obj) {
		return false
	}
	for j, v := range x {
		if v < p.lower[j]-tol || v > p.upper[j]+tol {
			return false
		}
	}
	for _, r := range p.rows {
		var lhs float64
		for _, t := range r.terms {
			lhs += t.Coef * x[t.Var]
		}
		if violates(lhs, r.sense, r.rhs, tol) {
			return false
		}
	}
	return true
}

func violates(lhs float64, sense Sense, rhs, tol float64) bool {
	if sense == LessEq {
		return lhs > rhs+tol
	}
	return lhs < rhs-tol
}

func (p *Problem) valid(v Var) bool { return v >= 0 && int(v) < len(p.obj) }

func (p *Problem) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
