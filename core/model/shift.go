package model

import (
	"fmt"
	"strings"
)

// CourseDemand describes how many capable assistants a shift needs for one
// course and how heavily a shortfall is penalized.
type CourseDemand struct {
	CourseCode     string
	TutorsRequired int
	Weight         float64
}

// NewCourseDemand validates and normalizes a demand.
func NewCourseDemand(code string, tutors int, weight float64) (CourseDemand, error) {
	d := CourseDemand{CourseCode: NormalizeCourse(code), TutorsRequired: tutors, Weight: weight}
	if err := d.Validate(); err != nil {
		return CourseDemand{}, err
	}
	return d, nil
}

// Validate checks the course code and non-negative counts.
func (d CourseDemand) Validate() error {
	if NormalizeCourse(d.CourseCode) == "" {
		return fmt.Errorf("%w: course demand without course code", ErrInvalidInput)
	}
	if d.TutorsRequired < 0 {
		return fmt.Errorf("%w: course %s tutors_required %d < 0", ErrInvalidInput, d.CourseCode, d.TutorsRequired)
	}
	if d.Weight < 0 {
		return fmt.Errorf("%w: course %s weight %.2f < 0", ErrInvalidInput, d.CourseCode, d.Weight)
	}
	return nil
}

// ShiftSpec holds the raw fields used to build a Shift.
type ShiftSpec struct {
	ID       string
	Day      Weekday
	Start    ClockTime
	End      ClockTime
	Demands  []CourseDemand
	MinStaff int
	MaxStaff *int
	Metadata map[string]string
}

// Shift is a time-bounded slot on one day. Shifts never cross midnight.
type Shift struct {
	id       string
	day      Weekday
	start    ClockTime
	end      ClockTime
	demands  []CourseDemand
	minStaff int
	maxStaff int
	hasMax   bool
	metadata map[string]string
}

// NewShift validates spec and returns an immutable Shift.
//
//nolint:gocyclo
func NewShift(spec ShiftSpec) (Shift, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		return Shift{}, fmt.Errorf("%w: shift id is empty", ErrInvalidInput)
	}
	if !spec.Day.Valid() {
		return Shift{}, fmt.Errorf("%w: shift %s day %d out of range", ErrInvalidInput, id, int(spec.Day))
	}
	if !spec.Start.Valid() || !spec.End.Valid() || spec.Start >= spec.End {
		return Shift{}, fmt.Errorf("%w: shift %s time range %s-%s", ErrInvalidInput, id, spec.Start, spec.End)
	}
	if spec.MinStaff < 0 {
		return Shift{}, fmt.Errorf("%w: shift %s min_staff %d < 0", ErrInvalidInput, id, spec.MinStaff)
	}
	if spec.MaxStaff != nil && *spec.MaxStaff < spec.MinStaff {
		return Shift{}, fmt.Errorf("%w: shift %s max_staff %d < min_staff %d", ErrInvalidInput, id, *spec.MaxStaff, spec.MinStaff)
	}
	s := Shift{
		id:       id,
		day:      spec.Day,
		start:    spec.Start,
		end:      spec.End,
		minStaff: spec.MinStaff,
		demands:  make([]CourseDemand, 0, len(spec.Demands)),
	}
	seen := make(map[string]struct{}, len(spec.Demands))
	for _, d := range spec.Demands {
		if err := d.Validate(); err != nil {
			return Shift{}, fmt.Errorf("shift %s: %w", id, err)
		}
		d.CourseCode = NormalizeCourse(d.CourseCode)
		if _, dup := seen[d.CourseCode]; dup {
			return Shift{}, fmt.Errorf("%w: shift %s lists course %s twice", ErrInvalidInput, id, d.CourseCode)
		}
		seen[d.CourseCode] = struct{}{}
		s.demands = append(s.demands, d)
	}
	if spec.MaxStaff != nil {
		s.maxStaff = *spec.MaxStaff
		s.hasMax = true
	}
	if len(spec.Metadata) > 0 {
		s.metadata = make(map[string]string, len(spec.Metadata))
		for k, v := range spec.Metadata {
			s.metadata[k] = v
		}
	}
	return s, nil
}

func (s Shift) ID() string { return s.id }
func (s Shift) Day() Weekday { return s.day }
func (s Shift) Start() ClockTime { return s.start }
func (s Shift) End() ClockTime { return s.end }
func (s Shift) MinStaff() int { return s.minStaff }
func (s Shift) DurationMinutes() int { return int(s.end - s.start) }

// MaxStaff returns the staffing cap and whether one is set.
func (s Shift) MaxStaff() (int, bool) { return s.maxStaff, s.hasMax }

// Demands returns a copy of the course demands in input order.
func (s Shift) Demands() []CourseDemand { return append([]CourseDemand(nil), s.demands...) }

// Metadata returns a copy of the free-form metadata.
func (s Shift) Metadata() map[string]string {
	out := make(map[string]string, len(s.metadata))
	for k, v := range s.metadata {
		out[k] = v
	}
	return out
}

// DurationHours is the wall-clock length of the shift in hours.
func (s Shift) DurationHours() float64 { return s.start.HoursUntil(s.end) }

func (s Shift) String() string {
	return fmt.Sprintf("%s(%s %s-%s)", s.id, s.day, s.start, s.end)
}
