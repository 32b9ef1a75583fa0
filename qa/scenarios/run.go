package scenarios

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/roster/core/logger"
	"github.com/kilianp07/roster/core/model"
	"github.com/kilianp07/roster/core/scheduler"
	"github.com/kilianp07/roster/infra/metrics"
)

const tolerance = 1e-3

var errorClasses = map[string]error{
	"invalid_input":           model.ErrInvalidInput,
	"no_feasible_assignments": scheduler.ErrNoFeasibleAssignments,
	"infeasible_baseline":     scheduler.ErrInfeasibleBaseline,
}

//nolint:gocyclo
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	cfg, err := sc.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	in, err := sc.Input.Build()
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	exp := sc.Expected
	if exp.Shifts != nil && len(in.Shifts) != *exp.Shifts {
		t.Errorf("scenario %s expected %d shifts, got %d", sc.Name, *exp.Shifts, len(in.Shifts))
	}

	engine := scheduler.NewEngine(scheduler.WithLogger(logger.NopLogger{}), scheduler.WithMetrics(sink))
	res, err := engine.Solve(context.Background(), in.Assistants, in.Shifts, cfg)
	if exp.Error != "" {
		want, ok := errorClasses[exp.Error]
		if !ok {
			t.Fatalf("scenario %s: unknown error class %q", sc.Name, exp.Error)
		}
		if !errors.Is(err, want) {
			t.Fatalf("scenario %s expected %s, got %v", sc.Name, exp.Error, err)
		}
		if n := testutil.CollectAndCount(reg, "roster_solves_total"); n != 0 {
			t.Errorf("scenario %s recorded %d solves before failing", sc.Name, n)
		}
		return
	}
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}
	if n := testutil.CollectAndCount(reg, "roster_solves_total"); n != 1 {
		t.Errorf("scenario %s recorded %d solve series", sc.Name, n)
	}

	if len(exp.Status) > 0 && !slices.Contains(exp.Status, string(res.Status)) {
		t.Errorf("scenario %s status %s not in %v", sc.Name, res.Status, exp.Status)
	}
	if exp.Assignments != nil && len(res.Assignments) != *exp.Assignments {
		t.Errorf("scenario %s expected %d assignments, got %d", sc.Name, *exp.Assignments, len(res.Assignments))
	}
	if exp.TotalHours != nil {
		var total float64
		for _, h := range res.AssistantHours {
			total += h
		}
		if math.Abs(total-*exp.TotalHours) > tolerance {
			t.Errorf("scenario %s expected %.2f total hours, got %.2f", sc.Name, *exp.TotalHours, total)
		}
	}
	if exp.Objective != nil {
		if res.ObjectiveValue == nil || math.Abs(*res.ObjectiveValue-*exp.Objective) > tolerance {
			t.Errorf("scenario %s expected objective %.3f, got %v", sc.Name, *exp.Objective, res.ObjectiveValue)
		}
	}
	if exp.MaxShortfall != nil {
		for k, v := range res.CourseShortfalls {
			if v > *exp.MaxShortfall {
				t.Errorf("scenario %s course shortfall %s = %.3f", sc.Name, k, v)
			}
		}
		for id, v := range res.StaffShortfalls {
			if v > *exp.MaxShortfall {
				t.Errorf("scenario %s staff shortfall %s = %.3f", sc.Name, id, v)
			}
		}
	}
	checkPerAssistant(t, sc.Name, "hours", exp.Hours, res.AssistantHours)
	checkPerAssistant(t, sc.Name, "baseline", exp.Baselines, res.Baselines)
}

func checkPerAssistant(t *testing.T, name, what string, want, got map[string]float64) {
	t.Helper()
	for id, w := range want {
		if math.Abs(got[id]-w) > tolerance {
			t.Errorf("scenario %s %s of %s: want %.3f got %.3f", name, what, id, w, got[id])
		}
	}
}
