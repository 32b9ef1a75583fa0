// Package scheduler builds and solves the assistant rostering model.
//
// Solve turns assistants, shifts and a SchedulerConfig into a ScheduleResult:
// fairness baselines are derived first (ComputeBaselines), a mixed-integer
// program is assembled over the feasible assistant/shift pairs only, solved
// with package milp and read back into assignments, hours and shortfall
// diagnostics. Hard rules that may be unsatisfiable are modeled as penalized,
// capacity-bounded slack variables so that every run produces a roster.
package scheduler
