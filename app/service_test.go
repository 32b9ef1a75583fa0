package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/roster/config"
	corelogger "github.com/kilianp07/roster/core/logger"
	coremetrics "github.com/kilianp07/roster/core/metrics"
	"github.com/kilianp07/roster/core/model"
	"github.com/kilianp07/roster/core/runlog"
	"github.com/kilianp07/roster/core/scheduler"
	"github.com/kilianp07/roster/core/shiftgen"
)

type recordingSink struct {
	mu     sync.Mutex
	solves []coremetrics.SolveEvent
	gens   []coremetrics.ShiftGenerationEvent
}

func (r *recordingSink) RecordSolve(ev coremetrics.SolveEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solves = append(r.solves, ev)
	return nil
}

func (r *recordingSink) RecordShiftGeneration(ev coremetrics.ShiftGenerationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens = append(r.gens, ev)
	return nil
}

type captureMonitor struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (m *captureMonitor) CaptureException(err error, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
	m.tags = append(m.tags, tags)
}
func (m *captureMonitor) Recover()            {}
func (m *captureMonitor) Flush(time.Duration) {}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.RunLog = config.RunLogConfig{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "runs.jsonl")}
	cfg.Logging.Level = "info"
	cfg.Scheduler.TimeLimitSeconds = 10
	return &cfg
}

func newTestService(t *testing.T, opts ...Option) (*Service, *recordingSink, *captureMonitor) {
	t.Helper()
	sink := &recordingSink{}
	mon := &captureMonitor{}
	opts = append([]Option{WithLogger(corelogger.NopLogger{}), WithMetrics(sink), WithMonitor(mon)}, opts...)
	svc, err := New(testConfig(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, sink, mon
}

func TestServiceSolveRecordsRun(t *testing.T) {
	svc, sink, mon := newTestService(t)
	in, err := DecodeInput(strings.NewReader(twoByTwoYAML), "yaml")
	require.NoError(t, err)
	in.Name = "two-by-two"

	out, err := svc.Solve(context.Background(), in)
	require.NoError(t, err)
	require.NotEmpty(t, out.RunID)
	assert.Equal(t, scheduler.StatusOptimal, out.Result.Status)
	// alice's baseline is both shifts she can work.
	assert.ElementsMatch(t, []string{"s1", "s2"}, out.Result.AssignmentsFor("alice"))
	assert.Equal(t, []string{"s2"}, out.Result.AssignmentsFor("bob"))
	assert.Empty(t, mon.errs)

	require.Len(t, sink.solves, 1)
	assert.Equal(t, out.RunID, sink.solves[0].RunID)
	assert.Empty(t, sink.gens)

	recs, err := svc.History(context.Background(), runlog.Query{RunID: out.RunID})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "optimal", recs[0].Status)
	assert.Equal(t, "two-by-two", recs[0].Input)
	assert.Equal(t, 3, recs[0].Assignments)
	assert.Equal(t, out.Fairness, recs[0].Fairness)
}

func TestServiceSolveFailureIsRecorded(t *testing.T) {
	svc, _, mon := newTestService(t)
	a, err := model.NewAssistant(model.AssistantSpec{ID: "a", Windows: []model.AvailabilityWindow{{Day: model.Friday, Start: model.Clock(9, 0), End: model.Clock(10, 0)}}})
	require.NoError(t, err)
	s, err := model.NewShift(model.ShiftSpec{ID: "m", Day: model.Monday, Start: model.Clock(9, 0), End: model.Clock(10, 0), MinStaff: 1})
	require.NoError(t, err)

	_, err = svc.Solve(context.Background(), &Input{Name: "nobody", Assistants: []model.Assistant{a}, Shifts: []model.Shift{s}})
	require.ErrorIs(t, err, scheduler.ErrNoFeasibleAssignments)
	require.Len(t, mon.errs, 1)
	assert.Equal(t, "nobody", mon.tags[0]["input"])

	recs, err := svc.History(context.Background(), runlog.Query{Status: "error"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Error, "no feasible")
}

func TestServiceInvalidInputNotReported(t *testing.T) {
	svc, _, mon := newTestService(t)
	_, err := svc.Solve(context.Background(), &Input{Name: "empty"})
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Empty(t, mon.errs)
}

func TestServiceGeneratedInputRecordsGeneration(t *testing.T) {
	svc, sink, _ := newTestService(t)
	shifts, err := svc.GenerateShifts(shiftgen.OperatingHours{
		Days:          []model.Weekday{model.Monday},
		Start:         model.Clock(9, 0),
		End:           model.Clock(11, 0),
		ShiftMinutes:  60,
		StaffPerShift: 1,
	})
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	require.Len(t, sink.gens, 1)
	assert.Equal(t, 1, sink.gens[0].Days)
	assert.Equal(t, 2, sink.gens[0].Shifts)

	a, err := model.NewAssistant(model.AssistantSpec{ID: "a", Windows: []model.AvailabilityWindow{{Day: model.Monday, Start: model.Clock(8, 0), End: model.Clock(12, 0)}}})
	require.NoError(t, err)
	out, err := svc.Solve(context.Background(), &Input{Assistants: []model.Assistant{a}, Shifts: shifts, Generated: true, Days: 1})
	require.NoError(t, err)
	assert.Len(t, out.Result.Assignments, 2)
	assert.Len(t, sink.gens, 2)
}

func TestServiceSolveBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte(twoByTwoYAML), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("shifts: [{id: x, day: 9}]\n"), 0o600))

	svc, sink, _ := newTestService(t)
	svc.cfg.Batch.Concurrency = 2
	items, err := svc.SolveBatch(context.Background(), []string{good, bad, good})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	require.Len(t, items, 3)
	assert.Equal(t, bad, items[1].Path)
	assert.Nil(t, items[1].Outcome)
	for _, i := range []int{0, 2} {
		require.NoError(t, items[i].Err)
		assert.Equal(t, scheduler.StatusOptimal, items[i].Outcome.Result.Status)
	}
	assert.NotEqual(t, items[0].Outcome.RunID, items[2].Outcome.RunID)
	assert.Len(t, sink.solves, 2)
}

func TestServiceSolveBatchCancelled(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items, err := svc.SolveBatch(ctx, []string{"a.yaml", "b.yaml"})
	require.ErrorIs(t, err, context.Canceled)
	for _, it := range items {
		assert.ErrorIs(t, it.Err, context.Canceled)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.RunLog.Backend = "tape"
	_, err = New(cfg, WithLogger(corelogger.NopLogger{}))
	assert.Error(t, err)
}
