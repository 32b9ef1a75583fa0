package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/roster/core/milp"
)

// Status is the categorical outcome of a solve.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusUnknown    Status = "unknown"
)

// statusFromSolver maps a solver status onto the result status.
func statusFromSolver(s milp.Status) Status {
	switch s {
	case milp.StatusOptimal:
		return StatusOptimal
	case milp.StatusFeasible:
		return StatusFeasible
	case milp.StatusInfeasible:
		return StatusInfeasible
	case milp.StatusUnbounded:
		return StatusUnbounded
	default:
		return StatusUnknown
	}
}

// HasSolution reports whether the status carries a usable roster.
func (s Status) HasSolution() bool { return s == StatusOptimal || s == StatusFeasible }

// Assignment pairs an assistant with a shift.
type Assignment struct {
	AssistantID string `json:"assistant_id"`
	ShiftID     string `json:"shift_id"`
}

// CourseKey identifies one course demand of one shift. It is text-encoded as
// "shift/COURSE" so it can key JSON objects.
type CourseKey struct {
	ShiftID    string
	CourseCode string
}

func (k CourseKey) String() string { return k.ShiftID + "/" + k.CourseCode }

// MarshalText implements encoding.TextMarshaler.
func (k CourseKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. The course code follows
// the last slash so shift ids may contain slashes.
func (k *CourseKey) UnmarshalText(b []byte) error {
	s := string(b)
	i := strings.LastIndex(s, "/")
	if i <= 0 || i == len(s)-1 {
		return fmt.Errorf("invalid course key %q", s)
	}
	k.ShiftID, k.CourseCode = s[:i], s[i+1:]
	return nil
}

// SolveStats describes the size and effort of a solve.
type SolveStats struct {
	Variables   int           `json:"variables"`
	Integers    int           `json:"integers"`
	Constraints int           `json:"constraints"`
	Nodes       int           `json:"nodes"`
	BestBound   *float64      `json:"best_bound,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
}

// ScheduleResult is the outcome of one solve. Assignments, hours and
// shortfalls are only populated when Status.HasSolution().
type ScheduleResult struct {
	Status           Status                `json:"status"`
	ObjectiveValue   *float64              `json:"objective_value"`
	Assignments      []Assignment          `json:"assignments"`
	AssistantHours   map[string]float64    `json:"assistant_hours"`
	CourseShortfalls map[CourseKey]float64 `json:"course_shortfalls"`
	StaffShortfalls  map[string]float64    `json:"staff_shortfalls"`
	// SolverStatus is the raw code reported by the MILP solver.
	SolverStatus milp.Status `json:"solver_status"`
	// Baselines are the fairness targets the model was built with.
	Baselines map[string]float64 `json:"baselines"`
	Stats     SolveStats         `json:"stats"`
}

// TotalCourseShortfall sums all unmet tutor counts.
func (r ScheduleResult) TotalCourseShortfall() float64 {
	var sum float64
	for _, v := range r.CourseShortfalls {
		sum += v
	}
	return sum
}

// TotalStaffShortfall sums all unmet staff counts.
func (r ScheduleResult) TotalStaffShortfall() float64 {
	var sum float64
	for _, v := range r.StaffShortfalls {
		sum += v
	}
	return sum
}

// AssignmentsFor returns the shift ids assigned to an assistant in result
// order.
func (r ScheduleResult) AssignmentsFor(assistantID string) []string {
	var out []string
	for _, a := range r.Assignments {
		if a.AssistantID == assistantID {
			out = append(out, a.ShiftID)
		}
	}
	return out
}
