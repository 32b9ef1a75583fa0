package metrics

import "time"

// SolveEvent summarizes one scheduler run.
type SolveEvent struct {
	RunID           string
	Status          string
	Objective       float64
	HasObjective    bool
	Assistants      int
	Shifts          int
	Variables       int
	Constraints     int
	Nodes           int
	Assignments     int
	CourseShortfall float64
	StaffShortfall  float64
	// FairnessScore is 100 for perfectly even hours, see stats.Summary.
	FairnessScore float64
	Duration      time.Duration
	Time          time.Time
}

// MetricsSink records solve events for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// ShiftGenerationEvent describes one expansion of operating hours into shifts.
type ShiftGenerationEvent struct {
	Days   int
	Shifts int
	Time   time.Time
}

// ShiftGenerationRecorder is implemented by sinks able to record shift
// generation.
type ShiftGenerationRecorder interface {
	RecordShiftGeneration(ev ShiftGenerationEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error                     { return nil }
func (NopSink) RecordShiftGeneration(ShiftGenerationEvent) error { return nil }
