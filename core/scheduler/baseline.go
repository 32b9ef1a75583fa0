package scheduler

import (
	"fmt"
	"math"

	"github.com/kilianp07/roster/core/model"
)

// FeasibleCapacity returns the hours of all shifts the assistant is
// available for.
func FeasibleCapacity(a model.Assistant, shifts []model.Shift) float64 {
	var hours float64
	for _, s := range shifts {
		if a.IsAvailable(s) {
			hours += s.DurationHours()
		}
	}
	return hours
}

// ComputeBaselines returns each assistant's fairness baseline:
// min(target, feasible capacity). An assistant's own MinHours is not part of
// the baseline; the model gives it a separate row.
func ComputeBaselines(assistants []model.Assistant, shifts []model.Shift, target int) map[string]float64 {
	out := make(map[string]float64, len(assistants))
	for _, a := range assistants {
		out[a.ID()] = math.Min(float64(target), FeasibleCapacity(a, shifts))
	}
	return out
}

// MinimumCapacity is the total shift hours at minimum staffing:
// sum(duration * min_staff).
func MinimumCapacity(shifts []model.Shift) float64 {
	var total float64
	for _, s := range shifts {
		total += s.DurationHours() * float64(s.MinStaff())
	}
	return total
}

// CheckBaselineCapacity fails with ErrInfeasibleBaseline when the baselines
// add up to more than MinimumCapacity(shifts).
func CheckBaselineCapacity(baselines map[string]float64, shifts []model.Shift) error {
	var required float64
	for _, b := range baselines {
		required += b
	}
	capacity := MinimumCapacity(shifts)
	if required > capacity+1e-9 {
		return fmt.Errorf("%w: need %.2f hours, shifts provide %.2f at minimum staffing", ErrInfeasibleBaseline, required, capacity)
	}
	return nil
}
