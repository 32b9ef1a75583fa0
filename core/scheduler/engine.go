package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/roster/core/logger"
	"github.com/kilianp07/roster/core/metrics"
	"github.com/kilianp07/roster/core/model"
	"github.com/kilianp07/roster/core/stats"
)

// Engine solves rostering problems. The zero value is not usable; build one
// with NewEngine. An Engine holds no per-solve state and may be shared by
// concurrent solves.
type Engine struct {
	log  logger.Logger
	sink metrics.MetricsSink
	now  func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for model and solve diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics sets the sink that receives one SolveEvent per solve.
func WithMetrics(s metrics.MetricsSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// NewEngine returns an Engine that discards logs and metrics unless options
// say otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: logger.NopLogger{}, sink: metrics.NopSink{}, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Solve runs NewEngine().Solve.
func Solve(ctx context.Context, assistants []model.Assistant, shifts []model.Shift, cfg SchedulerConfig) (*ScheduleResult, error) {
	return NewEngine().Solve(ctx, assistants, shifts, cfg)
}

// Solve builds the rostering model for the given inputs and solves it.
//
// Errors are returned only for bad input (model.ErrInvalidInput), when no
// assistant can work any shift (ErrNoFeasibleAssignments) or when baselines
// cannot fit at minimum staffing while violations are disallowed
// (ErrInfeasibleBaseline). Solver outcomes such as infeasible or a time-out
// without incumbent are reported through ScheduleResult.Status.
func (e *Engine) Solve(ctx context.Context, assistants []model.Assistant, shifts []model.Shift, cfg SchedulerConfig) (*ScheduleResult, error) {
	start := e.now()
	if err := validateInputs(assistants, shifts); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	baselines := ComputeBaselines(assistants, shifts, cfg.BaselineHoursTarget)
	if !cfg.AllowMinimumViolation {
		if err := CheckBaselineCapacity(baselines, shifts); err != nil {
			return nil, err
		}
	}

	m, err := buildModel(assistants, shifts, baselines, cfg)
	if err != nil {
		return nil, err
	}
	e.log.Debugw("roster model built", map[string]any{
		"assistants":  len(assistants),
		"shifts":      len(shifts),
		"pairs":       len(m.pairs),
		"variables":   m.problem.NumVars(),
		"constraints": m.problem.NumConstraints(),
	})

	opts := cfg.solverOptions()
	if cfg.Verbose {
		opts.Logger = e.log
	}
	sol, err := m.problem.Solve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("solve roster model: %w", err)
	}
	res := m.extract(sol)

	e.log.Infof("roster solved: status=%s assignments=%d nodes=%d elapsed=%s",
		res.Status, len(res.Assignments), res.Stats.Nodes, res.Stats.Elapsed)
	if err := e.sink.RecordSolve(e.solveEvent(ctx, res, len(assistants), len(shifts), start)); err != nil {
		e.log.Warnf("record solve metrics: %v", err)
	}
	return res, nil
}

func (e *Engine) solveEvent(ctx context.Context, res *ScheduleResult, assistants, shifts int, start time.Time) metrics.SolveEvent {
	ev := metrics.SolveEvent{
		RunID:           RunIDFromContext(ctx),
		Status:          string(res.Status),
		Assistants:      assistants,
		Shifts:          shifts,
		Variables:       res.Stats.Variables,
		Constraints:     res.Stats.Constraints,
		Nodes:           res.Stats.Nodes,
		Assignments:     len(res.Assignments),
		CourseShortfall: res.TotalCourseShortfall(),
		StaffShortfall:  res.TotalStaffShortfall(),
		FairnessScore:   stats.Summarize(res.AssistantHours).Score,
		Time:            e.now(),
	}
	ev.Duration = ev.Time.Sub(start)
	if res.ObjectiveValue != nil {
		ev.Objective = *res.ObjectiveValue
		ev.HasObjective = true
	}
	return ev
}

func validateInputs(assistants []model.Assistant, shifts []model.Shift) error {
	if len(assistants) == 0 {
		return fmt.Errorf("%w: no assistants", model.ErrInvalidInput)
	}
	if len(shifts) == 0 {
		return fmt.Errorf("%w: no shifts", model.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(assistants))
	for _, a := range assistants {
		if _, dup := seen[a.ID()]; dup {
			return fmt.Errorf("%w: duplicate assistant id %q", model.ErrInvalidInput, a.ID())
		}
		seen[a.ID()] = struct{}{}
	}
	seen = make(map[string]struct{}, len(shifts))
	for _, s := range shifts {
		if _, dup := seen[s.ID()]; dup {
			return fmt.Errorf("%w: duplicate shift id %q", model.ErrInvalidInput, s.ID())
		}
		seen[s.ID()] = struct{}{}
	}
	return nil
}

type runIDKey struct{}

// ContextWithRunID tags ctx with the id reported in SolveEvent.RunID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the id set by ContextWithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
