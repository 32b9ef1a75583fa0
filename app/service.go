// Package app wires configuration, logging, metrics, the run log and error
// monitoring around the scheduling engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/roster/config"
	corelogger "github.com/kilianp07/roster/core/logger"
	coremetrics "github.com/kilianp07/roster/core/metrics"
	"github.com/kilianp07/roster/core/model"
	"github.com/kilianp07/roster/core/monitoring"
	"github.com/kilianp07/roster/core/runlog"
	"github.com/kilianp07/roster/core/scheduler"
	"github.com/kilianp07/roster/core/shiftgen"
	"github.com/kilianp07/roster/core/stats"
	"github.com/kilianp07/roster/infra/logger"
	_ "github.com/kilianp07/roster/infra/metrics"
	infmon "github.com/kilianp07/roster/infra/monitoring"
	infrunlog "github.com/kilianp07/roster/infra/runlog"
)

// Service runs roster solves with the configured collaborators.
type Service struct {
	cfg     config.Config
	log     corelogger.Logger
	sink    coremetrics.MetricsSink
	store   runlog.Store
	monitor monitoring.Monitor
	engine  *scheduler.Engine
}

// Option replaces a collaborator that New would otherwise build from the
// configuration.
type Option func(*Service)

func WithLogger(l corelogger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithMetrics(m coremetrics.MetricsSink) Option {
	return func(s *Service) { s.sink = m }
}

func WithRunLog(st runlog.Store) Option {
	return func(s *Service) { s.store = st }
}

func WithMonitor(m monitoring.Monitor) Option {
	return func(s *Service) { s.monitor = m }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	s := &Service{cfg: *cfg}
	for _, o := range opts {
		o(s)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if s.log == nil {
		s.log = logger.New("service")
	}
	var err error
	if s.sink == nil {
		if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	if s.monitor == nil {
		if s.monitor, err = infmon.NewSentryMonitor(cfg.Sentry); err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
	}
	if s.store == nil {
		if s.store, err = infrunlog.Open(cfg.RunLog); err != nil {
			return nil, err
		}
	}
	s.engine = scheduler.NewEngine(
		scheduler.WithLogger(s.log),
		scheduler.WithMetrics(s.sink),
	)
	return s, nil
}

// Outcome is the result of one solve together with its bookkeeping.
type Outcome struct {
	RunID    string                    `json:"run_id"`
	Input    string                    `json:"input"`
	Result   *scheduler.ScheduleResult `json:"result"`
	Fairness stats.Summary             `json:"fairness"`
	// Shifts are the shifts the roster was solved over.
	Shifts []model.Shift `json:"-"`
}

// Solve runs the engine on in and appends the outcome to the run log. Failed
// solves are logged, recorded and reported to the monitor before the error is
// returned.
func (s *Service) Solve(ctx context.Context, in *Input) (*Outcome, error) {
	runID := uuid.NewString()
	started := time.Now()
	if in.Generated {
		s.recordGeneration(in)
	}

	res, err := s.engine.Solve(scheduler.ContextWithRunID(ctx, runID), in.Assistants, in.Shifts, s.cfg.Scheduler)
	rec := runlog.Record{
		RunID:      runID,
		Timestamp:  started,
		Input:      in.Name,
		Assistants: len(in.Assistants),
		Shifts:     len(in.Shifts),
		Duration:   time.Since(started),
	}
	if err != nil {
		rec.Status = "error"
		rec.Error = err.Error()
		s.appendRecord(ctx, rec)
		s.log.Errorf("solve %s (%s): %v", in.Name, runID, err)
		if !errors.Is(err, model.ErrInvalidInput) {
			s.monitor.CaptureException(err, map[string]string{"run_id": runID, "input": in.Name})
		}
		return nil, err
	}

	out := &Outcome{RunID: runID, Input: in.Name, Result: res, Fairness: stats.Summarize(res.AssistantHours), Shifts: in.Shifts}
	rec.Status = string(res.Status)
	rec.Objective = res.ObjectiveValue
	rec.Assignments = len(res.Assignments)
	rec.CourseShortfall = res.TotalCourseShortfall()
	rec.StaffShortfall = res.TotalStaffShortfall()
	rec.Fairness = out.Fairness
	s.appendRecord(ctx, rec)
	return out, nil
}

// BatchItem is the outcome of one input of SolveBatch.
type BatchItem struct {
	Path    string
	Outcome *Outcome
	Err     error
}

// SolveBatch loads and solves every path, at most cfg.Batch.Concurrency at a
// time. Items keep the order of paths. A failing input does not stop the
// others; the returned error joins all failures.
func (s *Service) SolveBatch(ctx context.Context, paths []string) ([]BatchItem, error) {
	items := make([]BatchItem, len(paths))
	limit := s.cfg.Batch.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range paths {
		i, path := i, path
		items[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			in, err := LoadInput(path)
			if err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Outcome, items[i].Err = s.Solve(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, it := range items {
		if it.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", it.Path, it.Err))
		}
	}
	return items, errors.Join(errs...)
}

// GenerateShifts expands operating hours and records the event.
func (s *Service) GenerateShifts(oh shiftgen.OperatingHours) ([]model.Shift, error) {
	shifts, err := shiftgen.Generate(oh)
	if err != nil {
		return nil, err
	}
	s.recordGeneration(&Input{Shifts: shifts, Days: countDays(oh.Days)})
	return shifts, nil
}

// History returns run records matching q.
func (s *Service) History(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	return s.store.Query(ctx, q)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.monitor.Flush(2 * time.Second)
	var errs []error
	if c, ok := s.sink.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}

func (s *Service) recordGeneration(in *Input) {
	rec, ok := s.sink.(coremetrics.ShiftGenerationRecorder)
	if !ok {
		return
	}
	ev := coremetrics.ShiftGenerationEvent{Days: in.Days, Shifts: len(in.Shifts), Time: time.Now()}
	if err := rec.RecordShiftGeneration(ev); err != nil {
		s.log.Warnf("record shift generation: %v", err)
	}
}

func (s *Service) appendRecord(ctx context.Context, rec runlog.Record) {
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Warnf("run log append: %v", err)
		s.monitor.CaptureException(err, map[string]string{"run_id": rec.RunID})
	}
}
