package milp

import (
	"context"
	"math"
	"time"

	"github.com/kilianp07/roster/core/logger"
)

// Status is the outcome of one Solve call.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// Options bound the branch-and-bound search.
type Options struct {
	// TimeLimit stops the search; zero means no limit besides ctx.
	TimeLimit time.Duration
	// RelativeGap prunes nodes whose bound is within this fraction of the
	// incumbent objective.
	RelativeGap float64
	// AbsoluteGap is the minimum pruning margin.
	AbsoluteGap float64
	// IntTolerance is how far from an integer a value may be and still count
	// as integral.
	IntTolerance float64
	// SimplexTolerance is passed to lp.Simplex.
	SimplexTolerance float64
	// MaxNodes stops the search after this many LP solves; zero means no limit.
	MaxNodes int
	// HeuristicEvery runs the rounding heuristic every n nodes (root always).
	HeuristicEvery int
	// Logger receives incumbent updates when non-nil.
	Logger logger.Logger
}

// DefaultOptions returns the options used when a field is left at zero.
func DefaultOptions() Options {
	return Options{
		RelativeGap:      1e-4,
		AbsoluteGap:      1e-6,
		IntTolerance:     1e-6,
		SimplexTolerance: 1e-9,
		HeuristicEvery:   25,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RelativeGap < 0 {
		o.RelativeGap = 0
	}
	if o.AbsoluteGap <= 0 {
		o.AbsoluteGap = d.AbsoluteGap
	}
	if o.IntTolerance <= 0 {
		o.IntTolerance = d.IntTolerance
	}
	if o.SimplexTolerance <= 0 {
		o.SimplexTolerance = d.SimplexTolerance
	}
	if o.HeuristicEvery <= 0 {
		o.HeuristicEvery = d.HeuristicEvery
	}
	return o
}

func (o Options) gap(incumbent float64) float64 {
	if math.IsInf(incumbent, 0) {
		return 0
	}
	return math.Max(o.AbsoluteGap, o.RelativeGap*math.Abs(incumbent))
}

// Solution is the result of Solve. Values is nil when no feasible point was
// found.
type Solution struct {
	Status    Status
	Objective float64
	BestBound float64
	Values    []float64
	Nodes     int
	Elapsed   time.Duration
}

// HasSolution reports whether Values holds a feasible assignment.
func (s Solution) HasSolution() bool { return s.Values != nil }

// Value returns the solved value of v, or 0 when there is no solution.
func (s Solution) Value(v Var) float64 {
	if s.Values == nil || v < 0 || int(v) >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

type node struct {
	lower, upper []float64
	bound        float64
	depth        int
}

type search struct {
	p        *Problem
	opts     Options
	best     []float64
	bestObj  float64
	nodes    int
	skipped  bool
	deadline time.Time
}

// Solve minimizes the problem with depth-first branch and bound over LP
// relaxations. It returns once the tree is exhausted, the time limit or
// node limit is reached, or ctx is done, including while an LP relaxation is
// still running; a stopped search returns its best
// incumbent with StatusFeasible, or StatusUnknown when none was found.
// The returned error is non-nil only for an invalid problem.
//
//nolint:gocyclo
func (p *Problem) Solve(ctx context.Context, opts Options) (Solution, error) {
	start := time.Now()
	if p.err != nil {
		return Solution{}, p.err
	}
	opts = opts.withDefaults()
	s := &search{p: p, opts: opts, bestObj: math.Inf(1)}
	if opts.TimeLimit > 0 {
		s.deadline = start.Add(opts.TimeLimit)
	}
	if d, ok := ctx.Deadline(); ok && (s.deadline.IsZero() || d.Before(s.deadline)) {
		s.deadline = d
	}

	root := node{
		lower: append([]float64(nil), p.lower...),
		upper: append([]float64(nil), p.upper...),
		bound: math.Inf(-1),
	}
	stack := []node{root}
	stopped := false
	for len(stack) > 0 {
		if s.expired(ctx) {
			stopped = true
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nd.bound >= s.bestObj-opts.gap(s.bestObj) {
			continue
		}

		res, done := s.relax(ctx, nd.lower, nd.upper)
		if !done {
			stack = append(stack, nd)
			stopped = true
			break
		}
		s.nodes++
		switch res.status {
		case lpInfeasible:
			continue
		case lpUnbounded:
			if nd.depth == 0 {
				return Solution{Status: StatusUnbounded, BestBound: math.Inf(-1), Nodes: s.nodes, Elapsed: time.Since(start)}, nil
			}
			s.skipped = true
			continue
		case lpFailed:
			if opts.Logger != nil {
				opts.Logger.Warnf("milp: node %d lp failure: %v", s.nodes, res.err)
			}
			s.skipped = true
			continue
		}
		if res.obj >= s.bestObj-opts.gap(s.bestObj) {
			continue
		}

		branch := s.mostFractional(res.x)
		if branch < 0 {
			s.offer(res.x, "relaxation")
			continue
		}
		if nd.depth == 0 || s.nodes%opts.HeuristicEvery == 0 {
			if !s.roundAndRepair(ctx, nd, res.x) {
				nd.bound = math.Max(nd.bound, res.obj)
				stack = append(stack, nd)
				stopped = true
				break
			}
			if res.obj >= s.bestObj-opts.gap(s.bestObj) {
				continue
			}
		}

		v := res.x[branch]
		down := node{lower: nd.lower, upper: append([]float64(nil), nd.upper...), bound: res.obj, depth: nd.depth + 1}
		down.upper[branch] = math.Floor(v)
		up := node{lower: append([]float64(nil), nd.lower...), upper: nd.upper, bound: res.obj, depth: nd.depth + 1}
		up.lower[branch] = math.Ceil(v)
		stack = append(stack, down, up)
	}

	sol := Solution{Nodes: s.nodes, Elapsed: time.Since(start), Objective: math.NaN(), BestBound: math.Inf(-1)}
	if s.best != nil {
		sol.Values = s.best
		sol.Objective = s.bestObj
	}
	switch {
	case !stopped && !s.skipped:
		if s.best == nil {
			sol.Status = StatusInfeasible
			break
		}
		sol.Status = StatusOptimal
		sol.BestBound = s.bestObj
	case s.best == nil:
		sol.Status = StatusUnknown
	default:
		bound := s.bestObj
		for _, nd := range stack {
			if nd.bound < bound {
				bound = nd.bound
			}
		}
		sol.BestBound = bound
		sol.Status = StatusFeasible
		if !s.skipped && s.bestObj-bound <= opts.gap(s.bestObj) {
			sol.Status = StatusOptimal
		}
	}
	return sol, nil
}

func (s *search) expired(ctx context.Context) bool {
	return s.timedOut(ctx) || (s.opts.MaxNodes > 0 && s.nodes >= s.opts.MaxNodes)
}

func (s *search) timedOut(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// relax solves one LP relaxation while honouring ctx and the deadline.
// lp.Simplex cannot be interrupted, so on expiry the LP is left to finish in
// its goroutine and its result is discarded. The bound slices are not
// modified after an abandoned call, so the goroutine reads stable data.
func (s *search) relax(ctx context.Context, lower, upper []float64) (lpResult, bool) {
	if s.deadline.IsZero() && ctx.Done() == nil {
		return s.p.relax(lower, upper, s.opts.SimplexTolerance), true
	}
	if s.timedOut(ctx) {
		return lpResult{}, false
	}

	out := make(chan lpResult, 1)
	go func() {
		out <- s.p.relax(lower, upper, s.opts.SimplexTolerance)
	}()

	var timeout <-chan time.Time
	if !s.deadline.IsZero() {
		timer := time.NewTimer(time.Until(s.deadline))
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case res := <-out:
		return res, true
	case <-ctx.Done():
	case <-timeout:
	}
	if s.opts.Logger != nil {
		s.opts.Logger.Warnf("milp: lp abandoned after %d nodes, limit reached", s.nodes)
	}
	return lpResult{}, false
}

// mostFractional returns the integer variable furthest from integrality, or
// -1 when all integer variables are integral. Ties go to the lowest index.
func (s *search) mostFractional(x []float64) int {
	best, bestDist := -1, s.opts.IntTolerance
	for j, isInt := range s.p.integer {
		if !isInt {
			continue
		}
		f := x[j] - math.Floor(x[j])
		dist := math.Min(f, 1-f)
		if dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

// roundAndRepair fixes every integer variable to its rounded LP value and
// re-solves the continuous part. A feasible result becomes an incumbent
// candidate. It returns false when the LP was abandoned at the deadline.
func (s *search) roundAndRepair(ctx context.Context, nd node, x []float64) bool {
	lower := append([]float64(nil), nd.lower...)
	upper := append([]float64(nil), nd.upper...)
	for j, isInt := range s.p.integer {
		if !isInt {
			continue
		}
		r := math.Round(x[j])
		r = math.Max(lower[j], math.Min(upper[j], r))
		lower[j], upper[j] = r, r
	}
	res, done := s.relax(ctx, lower, upper)
	if !done {
		return false
	}
	if res.status == lpOptimal {
		s.offer(res.x, "rounding")
	}
	return true
}

func (s *search) offer(x []float64, source string) {
	vals := append([]float64(nil), x...)
	for j, isInt := range s.p.integer {
		if isInt {
			vals[j] = math.Round(vals[j])
		}
	}
	if !s.p.Feasible(vals, 1e-6) {
		return
	}
	obj := s.p.Evaluate(vals)
	if obj >= s.bestObj {
		return
	}
	s.best, s.bestObj = vals, obj
	if s.opts.Logger != nil {
		s.opts.Logger.Debugw("milp incumbent", map[string]any{
			"objective": obj,
			"nodes":     s.nodes,
			"source":    source,
		})
	}
}
