package scheduler

import "errors"

var (
	// ErrNoFeasibleAssignments means no assistant is available for any shift.
	ErrNoFeasibleAssignments = errors.New("no feasible assistant/shift pairs")
	// ErrInfeasibleBaseline means the fairness baselines exceed the shift
	// capacity at minimum staffing while violations are disallowed.
	ErrInfeasibleBaseline = errors.New("baseline hours exceed shift capacity")
)
