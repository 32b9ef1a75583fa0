package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/roster/core/metrics"
)

func TestPromSink_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSolve(coremetrics.SolveEvent{
		Status: "optimal", Objective: 42, HasObjective: true,
		Assignments: 3, FairnessScore: 80, StaffShortfall: 1, Duration: time.Second,
	}))
	require.NoError(t, sink.RecordSolve(coremetrics.SolveEvent{Status: "unknown"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.solves.WithLabelValues("optimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.solves.WithLabelValues("unknown")))
	// The objective gauge keeps the last value that had one.
	assert.Equal(t, 42.0, testutil.ToFloat64(sink.objective))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.assignments))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.duration))
}

func TestPromSink_RecordShiftGeneration(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, sink.RecordShiftGeneration(coremetrics.ShiftGenerationEvent{Shifts: 12}))
	require.NoError(t, sink.RecordShiftGeneration(coremetrics.ShiftGenerationEvent{Shifts: 4}))
	assert.Equal(t, 16.0, testutil.ToFloat64(sink.shifts))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, second.RecordSolve(coremetrics.SolveEvent{Status: "feasible"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.solves.WithLabelValues("feasible")))
}

func TestPushSink_PushesToGateway(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewPushSink(srv.URL, "roster")
	require.NoError(t, err)
	require.NoError(t, sink.RecordSolve(coremetrics.SolveEvent{Status: "optimal"}))
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(paths[0], "PUT /metrics/job/roster"), paths[0])
}
