package milp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
	lpFailed
)

type lpResult struct {
	status lpStatus
	obj    float64
	x      []float64
	err    error
}

// fixTol is the bound width under which a variable is treated as fixed.
const fixTol = 1e-9

type stdRow struct {
	cols  []int
	coefs []float64
	sense Sense
	rhs   float64
}

// simplexSolve points to the LP routine. Tests override it to simulate solver
// failures.
var simplexSolve = func(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// relax solves the LP relaxation of p with the given bounds.
//
// Each free variable x is shifted to y = x - lower so that y >= 0, finite
// upper bounds become rows y <= upper-lower and every row receives its own
// slack column, giving the standard form min c'y s.t. Ay = b, y >= 0 that
// lp.Simplex expects. A bound row is left out when an existing row already
// implies it. Rows without free variables are checked and dropped; free
// variables that appear in no row sit at their lower bound.
//
//nolint:gocyclo
func (p *Problem) relax(lower, upper []float64, tol float64) lpResult {
	n := len(p.obj)
	x := make([]float64, n)
	free := make([]bool, n)
	for j := 0; j < n; j++ {
		if upper[j] < lower[j]-fixTol {
			return lpResult{status: lpInfeasible}
		}
		x[j] = lower[j]
		free[j] = upper[j]-lower[j] > fixTol
	}

	used := make([]bool, n)
	for j := 0; j < n; j++ {
		used[j] = free[j] && !math.IsInf(upper[j], 1)
	}
	for _, r := range p.rows {
		for _, t := range r.terms {
			if free[t.Var] {
				used[t.Var] = true
			}
		}
	}

	col := make([]int, n)
	nCols := 0
	for j := 0; j < n; j++ {
		col[j] = -1
		if !free[j] {
			continue
		}
		if !used[j] {
			if p.obj[j] < 0 {
				return lpResult{status: lpUnbounded}
			}
			continue
		}
		col[j] = nCols
		nCols++
	}

	rows := make([]stdRow, 0, len(p.rows)+nCols)
	for _, r := range p.rows {
		rhs := r.rhs
		var row stdRow
		for _, t := range r.terms {
			rhs -= t.Coef * lower[t.Var]
			if k := col[t.Var]; k >= 0 {
				row.cols = append(row.cols, k)
				row.coefs = append(row.coefs, t.Coef)
			}
		}
		if len(row.cols) == 0 {
			if violates(0, r.sense, rhs, tol) {
				return lpResult{status: lpInfeasible}
			}
			continue
		}
		row.sense = r.sense
		row.rhs = rhs
		rows = append(rows, row)
	}
	implied := impliedBounds(rows, nCols)
	for j := 0; j < n; j++ {
		k := col[j]
		if k < 0 || math.IsInf(upper[j], 1) {
			continue
		}
		width := upper[j] - lower[j]
		if implied[k] <= width+fixTol {
			continue
		}
		rows = append(rows, stdRow{cols: []int{k}, coefs: []float64{1}, sense: LessEq, rhs: width})
	}

	if nCols == 0 {
		return lpResult{status: lpOptimal, obj: p.Evaluate(x), x: x}
	}

	m := len(rows)
	width := nCols + m
	a := mat.NewDense(m, width, nil)
	b := make([]float64, m)
	c := make([]float64, width)
	for j := 0; j < n; j++ {
		if k := col[j]; k >= 0 {
			c[k] = p.obj[j]
		}
	}
	for i, r := range rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for k, cidx := range r.cols {
			a.Set(i, cidx, sign*r.coefs[k])
		}
		slack := 1.0
		if r.sense == GreaterEq {
			slack = -1
		}
		a.Set(i, nCols+i, sign*slack)
		b[i] = sign * r.rhs
	}

	_, sol, err := simplexSolve(c, a, b, tol)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return lpResult{status: lpInfeasible}
	case errors.Is(err, lp.ErrUnbounded):
		return lpResult{status: lpUnbounded}
	case err != nil:
		return lpResult{status: lpFailed, err: err}
	}

	for j := 0; j < n; j++ {
		k := col[j]
		if k < 0 {
			continue
		}
		v := lower[j] + sol[k]
		if v < lower[j] {
			v = lower[j]
		}
		if v > upper[j] {
			v = upper[j]
		}
		x[j] = v
	}
	return lpResult{status: lpOptimal, obj: p.Evaluate(x), x: x}
}

// impliedBounds returns, per column, the tightest upper bound on y implied by
// a row whose coefficients all share one sign and whose rhs allows y >= 0.
// Such a row sum a_k y_k <= b with a_k > 0 gives y_k <= b/a_k because every
// other term is non-negative.
func impliedBounds(rows []stdRow, nCols int) []float64 {
	out := make([]float64, nCols)
	for k := range out {
		out[k] = math.Inf(1)
	}
	for _, r := range rows {
		sign := 1.0
		if r.sense == GreaterEq {
			sign = -1
		}
		rhs := sign * r.rhs
		if rhs < 0 {
			continue
		}
		ok := true
		for _, c := range r.coefs {
			if sign*c <= 0 {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for i, k := range r.cols {
			if b := rhs / (sign * r.coefs[i]); b < out[k] {
				out[k] = b
			}
		}
	}
	return out
}
