package scheduler

import (
	"fmt"
	"math"

	"github.com/kilianp07/roster/core/milp"
	"github.com/kilianp07/roster/core/model"
)

// pair is one feasible (assistant, shift) combination and its 0/1 variable.
type pair struct {
	assistant int
	shift     int
	x         milp.Var
}

type courseVar struct {
	key CourseKey
	v   milp.Var
}

// rosterModel keeps the variable handles needed to read a solution back.
type rosterModel struct {
	problem    *milp.Problem
	assistants []model.Assistant
	shifts     []model.Shift
	baselines  map[string]float64

	pairs       []pair
	courseShort []courseVar
	staffShort  []milp.Var
}

// buildModel assembles the rostering MILP. Only pairs where the assistant is
// available get an assignment variable; every other pair is fixed at zero by
// omission.
//
// Baseline and min-hours slacks exist only while MinHoursPenalty is positive;
// without them the rows are hard when violations are disallowed and absent
// otherwise. The max-hours excess slack exists for every capped assistant.
//
//nolint:gocyclo
func buildModel(assistants []model.Assistant, shifts []model.Shift, baselines map[string]float64, cfg SchedulerConfig) (*rosterModel, error) {
	p := milp.NewProblem()
	m := &rosterModel{
		problem:    p,
		assistants: assistants,
		shifts:     shifts,
		baselines:  baselines,
		staffShort: make([]milp.Var, len(shifts)),
	}

	byShift := make([][]pair, len(shifts))
	byAssistant := make([][]pair, len(assistants))
	for ai, a := range assistants {
		for si, s := range shifts {
			if !a.IsAvailable(s) {
				continue
			}
			pr := pair{assistant: ai, shift: si, x: p.AddBinary(fmt.Sprintf("x[%s,%s]", a.ID(), s.ID()))}
			m.pairs = append(m.pairs, pr)
			byShift[si] = append(byShift[si], pr)
			byAssistant[ai] = append(byAssistant[ai], pr)
		}
	}
	if len(m.pairs) == 0 {
		return nil, fmt.Errorf("%w: %d assistants, %d shifts", ErrNoFeasibleAssignments, len(assistants), len(shifts))
	}

	for si, s := range shifts {
		staffed := make([]milp.Term, 0, len(byShift[si])+1)
		for _, pr := range byShift[si] {
			staffed = append(staffed, milp.T(pr.x, 1))
		}

		for _, d := range s.Demands() {
			key := CourseKey{ShiftID: s.ID(), CourseCode: d.CourseCode}
			short := p.AddContinuous("course_short["+key.String()+"]", 0, float64(d.TutorsRequired))
			p.AddObjective(short, cfg.CourseShortfallPenalty*d.Weight)
			m.courseShort = append(m.courseShort, courseVar{key: key, v: short})

			var capable []milp.Term
			for _, pr := range byShift[si] {
				if assistants[pr.assistant].CanSupport(d.CourseCode) {
					capable = append(capable, milp.T(pr.x, 1))
				}
			}
			p.AddConstraint("course_cap["+key.String()+"]", capable, milp.LessEq, float64(d.TutorsRequired))
			p.AddConstraint("course_cover["+key.String()+"]", append(capable, milp.T(short, 1)), milp.GreaterEq, float64(d.TutorsRequired))
		}

		capStaff := float64(s.MinStaff())
		if cfg.StaffShortfallMax != nil {
			capStaff = float64(*cfg.StaffShortfallMax)
		}
		short := p.AddContinuous("staff_short["+s.ID()+"]", 0, capStaff)
		p.AddObjective(short, cfg.UnderstaffedPenalty)
		m.staffShort[si] = short
		p.AddConstraint("min_staff["+s.ID()+"]", append(staffed, milp.T(short, 1)), milp.GreaterEq, float64(s.MinStaff()))
		if maxStaff, ok := s.MaxStaff(); ok {
			p.AddConstraint("max_staff["+s.ID()+"]", staffed, milp.LessEq, float64(maxStaff))
		}
	}

	capacity := make([]float64, len(assistants))
	maxExtra := p.AddContinuous("max_extra", 0, math.Inf(1))
	p.AddObjective(maxExtra, cfg.MaxExtraPenalty)

	for ai, a := range assistants {
		id := a.ID()
		hours := make([]milp.Term, 0, len(byAssistant[ai]))
		for _, pr := range byAssistant[ai] {
			dur := shifts[pr.shift].DurationHours()
			hours = append(hours, milp.T(pr.x, dur))
			capacity[ai] += dur
			if cost := a.CostPerHour(); cost > 0 {
				p.AddObjective(pr.x, cost*dur)
			}
		}
		baseline := baselines[id]

		switch {
		case baseline > 0 && cfg.MinHoursPenalty > 0:
			slack := p.AddContinuous("base_slack["+id+"]", 0, math.Inf(1))
			p.AddObjective(slack, cfg.MinHoursPenalty)
			p.AddConstraint("baseline["+id+"]", withTerm(hours, slack, 1), milp.GreaterEq, baseline)
		case baseline > 0 && !cfg.AllowMinimumViolation:
			p.AddConstraint("baseline["+id+"]", hours, milp.GreaterEq, baseline)
		}

		// An assistant's own floor above the fairness baseline gets its own
		// row and slack, so the baseline stays min(target, capacity).
		if floor := math.Min(a.MinHours(), capacity[ai]); floor > baseline+1e-9 {
			switch {
			case cfg.MinHoursPenalty > 0:
				slack := p.AddContinuous("min_slack["+id+"]", 0, math.Inf(1))
				p.AddObjective(slack, cfg.MinHoursPenalty)
				p.AddConstraint("min_hours["+id+"]", withTerm(hours, slack, 1), milp.GreaterEq, floor)
			case !cfg.AllowMinimumViolation:
				p.AddConstraint("min_hours["+id+"]", hours, milp.GreaterEq, floor)
			}
		}

		// The excess slack always exists; a zero max-hours penalty leaves the
		// cap unenforced.
		if maxHours, ok := a.MaxHours(); ok {
			excess := p.AddContinuous("max_excess["+id+"]", 0, math.Inf(1))
			p.AddObjective(excess, cfg.MaxHoursPenalty)
			p.AddConstraint("max_hours["+id+"]", withTerm(hours, excess, -1), milp.LessEq, maxHours)
		}

		// extra >= hours - baseline, written as extra - hours >= -baseline.
		extra := p.AddContinuous("extra["+id+"]", 0, math.Inf(1))
		p.AddObjective(extra, cfg.ExtraHoursPenalty)
		excessTerms := make([]milp.Term, 0, len(hours)+1)
		excessTerms = append(excessTerms, milp.T(extra, 1))
		for _, t := range hours {
			excessTerms = append(excessTerms, milp.T(t.Var, -t.Coef))
		}
		p.AddConstraint("extra["+id+"]", excessTerms, milp.GreaterEq, -baseline)
		p.AddConstraint("extra_bound["+id+"]", []milp.Term{milp.T(extra, 1), milp.T(maxExtra, -1)}, milp.LessEq, 0)
	}
	return m, nil
}

// withTerm returns terms plus coef*v without aliasing the input slice.
func withTerm(terms []milp.Term, v milp.Var, coef float64) []milp.Term {
	out := make([]milp.Term, 0, len(terms)+1)
	out = append(out, terms...)
	return append(out, milp.T(v, coef))
}
