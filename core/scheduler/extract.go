package scheduler

import (
	"math"

	"github.com/kilianp07/roster/core/milp"
)

// assignThreshold is the value above which a binary counts as assigned.
const assignThreshold = 0.5

// extract reads a solver solution back into a ScheduleResult. Without a
// solution only status, baselines and stats are set; every map is non-nil.
func (m *rosterModel) extract(sol milp.Solution) *ScheduleResult {
	res := &ScheduleResult{
		Status:           statusFromSolver(sol.Status),
		SolverStatus:     sol.Status,
		Assignments:      []Assignment{},
		AssistantHours:   make(map[string]float64, len(m.assistants)),
		CourseShortfalls: make(map[CourseKey]float64, len(m.courseShort)),
		StaffShortfalls:  make(map[string]float64, len(m.shifts)),
		Baselines:        make(map[string]float64, len(m.baselines)),
		Stats: SolveStats{
			Variables:   m.problem.NumVars(),
			Integers:    m.problem.NumIntegers(),
			Constraints: m.problem.NumConstraints(),
			Nodes:       sol.Nodes,
			Elapsed:     sol.Elapsed,
		},
	}
	for id, b := range m.baselines {
		res.Baselines[id] = b
	}
	if !math.IsInf(sol.BestBound, 0) && !math.IsNaN(sol.BestBound) {
		bound := sol.BestBound
		res.Stats.BestBound = &bound
	}
	if !sol.HasSolution() || !res.Status.HasSolution() {
		return res
	}

	obj := sol.Objective
	res.ObjectiveValue = &obj
	for _, a := range m.assistants {
		res.AssistantHours[a.ID()] = 0
	}
	for _, pr := range m.pairs {
		if sol.Value(pr.x) < assignThreshold {
			continue
		}
		a, s := m.assistants[pr.assistant], m.shifts[pr.shift]
		res.Assignments = append(res.Assignments, Assignment{AssistantID: a.ID(), ShiftID: s.ID()})
		res.AssistantHours[a.ID()] += s.DurationHours()
	}
	for _, c := range m.courseShort {
		res.CourseShortfalls[c.key] = nonNegative(sol.Value(c.v))
	}
	for si, s := range m.shifts {
		res.StaffShortfalls[s.ID()] = nonNegative(sol.Value(m.staffShort[si]))
	}
	return res
}

// nonNegative clears solver noise around zero.
func nonNegative(v float64) float64 {
	if v < 1e-9 {
		return 0
	}
	return v
}
