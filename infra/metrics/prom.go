package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/roster/core/metrics"
)

// PromSink records solve events in Prometheus metrics.
type PromSink struct {
	solves          *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	objective       prometheus.Gauge
	courseShortfall prometheus.Gauge
	staffShortfall  prometheus.Gauge
	fairness        prometheus.Gauge
	assignments     prometheus.Gauge
	shifts          prometheus.Counter
	pusher          *push.Pusher
}

// NewPromSink registers roster metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.solves, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_solves_total",
		Help: "Total number of roster solves by status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roster_solve_duration_seconds",
		Help:    "Wall-clock time of roster solves",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"status"})); err != nil {
		return nil, err
	}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&s.objective, "roster_last_objective", "Objective value of the last solve with a roster"},
		{&s.courseShortfall, "roster_last_course_shortfall", "Unmet tutor count of the last solve"},
		{&s.staffShortfall, "roster_last_staff_shortfall", "Unmet staff count of the last solve"},
		{&s.fairness, "roster_last_fairness_score", "Fairness score (0-100) of the last solve"},
		{&s.assignments, "roster_last_assignments", "Number of assignments in the last solve"},
	}
	for _, g := range gauges {
		if *g.dst, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help})); err != nil {
			return nil, err
		}
	}
	if s.shifts, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_shifts_generated_total",
		Help: "Shifts produced from operating hours",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

// NewPushSink returns a PromSink on its own registry that pushes every
// recorded solve to a Pushgateway under job. One-shot CLI runs exit before
// a scrape would happen.
func NewPushSink(url, job string) (*PromSink, error) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		return nil, err
	}
	s.pusher = push.New(url, job).Gatherer(reg)
	return s, nil
}

// register adds c to reg, reusing a collector registered earlier under the
// same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve updates counters and last-solve gauges.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solves.WithLabelValues(ev.Status).Inc()
	s.duration.WithLabelValues(ev.Status).Observe(ev.Duration.Seconds())
	if ev.HasObjective {
		s.objective.Set(ev.Objective)
	}
	s.courseShortfall.Set(ev.CourseShortfall)
	s.staffShortfall.Set(ev.StaffShortfall)
	s.fairness.Set(ev.FairnessScore)
	s.assignments.Set(float64(ev.Assignments))
	return s.push()
}

// RecordShiftGeneration counts generated shifts.
func (s *PromSink) RecordShiftGeneration(ev coremetrics.ShiftGenerationEvent) error {
	s.shifts.Add(float64(ev.Shifts))
	return s.push()
}

func (s *PromSink) push() error {
	if s.pusher == nil {
		return nil
	}
	return s.pusher.Push()
}
