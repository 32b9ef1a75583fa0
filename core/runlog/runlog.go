// Package runlog records the outcome of every solve so runs can be audited
// and compared later. Stores live in infra/runlog.
package runlog

import (
	"context"
	"time"

	"github.com/kilianp07/roster/core/stats"
)

// Record is one solve outcome.
type Record struct {
	RunID           string        `json:"run_id"`
	Timestamp       time.Time     `json:"timestamp"`
	Input           string        `json:"input"`
	Status          string        `json:"status"`
	Objective       *float64      `json:"objective,omitempty"`
	Assistants      int           `json:"assistants"`
	Shifts          int           `json:"shifts"`
	Assignments     int           `json:"assignments"`
	CourseShortfall float64       `json:"course_shortfall"`
	StaffShortfall  float64       `json:"staff_shortfall"`
	Fairness        stats.Summary `json:"fairness"`
	Duration        time.Duration `json:"duration"`
	// Error is set when the solve failed before producing a result.
	Error string `json:"error,omitempty"`
}

// Query filters records. Zero fields match everything.
type Query struct {
	Start  time.Time
	End    time.Time
	Status string
	RunID  string
	// Limit keeps only the most recent records when positive.
	Limit int
}

// Matches reports whether r passes every set filter except Limit.
func (q Query) Matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	return q.RunID == "" || r.RunID == q.RunID
}

// Tail applies Limit to records sorted oldest first.
func (q Query) Tail(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists run records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore drops records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error          { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
