package scheduler

import (
	"errors"
	"testing"

	"github.com/kilianp07/roster/core/model"
)

func TestComputeBaselines(t *testing.T) {
	minHours := 4.0
	wide, err := model.NewAssistant(model.AssistantSpec{ID: "wide", Windows: []model.AvailabilityWindow{window(model.Monday, 8, 18)}, MinHours: minHours})
	if err != nil {
		t.Fatalf("assistant: %v", err)
	}
	narrow := mustAssistant(t, "narrow", nil, window(model.Monday, 9, 10))
	absent := mustAssistant(t, "absent", nil, window(model.Sunday, 9, 10))

	var shifts []model.Shift
	for h := 8; h < 18; h++ {
		shifts = append(shifts, mustShift(t, "m"+string(rune('a'+h-8)), model.Monday, h, h+1, 1, nil))
	}

	got := ComputeBaselines([]model.Assistant{wide, narrow, absent}, shifts, 3)
	// MinHours above the target does not raise the baseline.
	want := map[string]float64{"wide": 3, "narrow": 1, "absent": 0}
	for id, w := range want {
		if got[id] != w {
			t.Fatalf("baseline %s = %v want %v", id, got[id], w)
		}
	}
	if c := FeasibleCapacity(wide, shifts); c != 10 {
		t.Fatalf("capacity %v want 10", c)
	}
}

func TestCheckBaselineCapacity(t *testing.T) {
	shifts := []model.Shift{
		mustShift(t, "s1", model.Monday, 9, 10, 2, nil),
		mustShift(t, "s2", model.Monday, 10, 12, 1, nil),
	}
	if c := MinimumCapacity(shifts); c != 4 {
		t.Fatalf("minimum capacity %v want 4", c)
	}
	if err := CheckBaselineCapacity(map[string]float64{"a": 2, "b": 2}, shifts); err != nil {
		t.Fatalf("exact fit rejected: %v", err)
	}
	err := CheckBaselineCapacity(map[string]float64{"a": 2, "b": 2.5}, shifts)
	if !errors.Is(err, ErrInfeasibleBaseline) {
		t.Fatalf("expected ErrInfeasibleBaseline, got %v", err)
	}
}
