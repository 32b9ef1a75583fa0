package model

import (
	"fmt"
	"sort"
	"strings"
)

// AssistantSpec holds the raw fields used to build an Assistant.
type AssistantSpec struct {
	ID          string
	Courses     []string
	Windows     []AvailabilityWindow
	MinHours    float64
	MaxHours    *float64
	CostPerHour float64
}

// Assistant is a person that can be rostered onto shifts. It is built once per
// scheduling run and never mutated afterwards.
type Assistant struct {
	id          string
	courses     map[string]struct{}
	courseList  []string
	windows     []AvailabilityWindow
	minHours    float64
	maxHours    float64
	hasMax      bool
	costPerHour float64
}

// NewAssistant validates spec and normalizes course codes (trimmed, upper-cased,
// de-duplicated).
func NewAssistant(spec AssistantSpec) (Assistant, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		return Assistant{}, fmt.Errorf("%w: assistant id is empty", ErrInvalidInput)
	}
	if spec.MinHours < 0 {
		return Assistant{}, fmt.Errorf("%w: assistant %s min_hours %.2f < 0", ErrInvalidInput, id, spec.MinHours)
	}
	if spec.MaxHours != nil && *spec.MaxHours < 0 {
		return Assistant{}, fmt.Errorf("%w: assistant %s max_hours %.2f < 0", ErrInvalidInput, id, *spec.MaxHours)
	}
	if spec.CostPerHour < 0 {
		return Assistant{}, fmt.Errorf("%w: assistant %s cost_per_hour %.2f < 0", ErrInvalidInput, id, spec.CostPerHour)
	}
	a := Assistant{
		id:          id,
		courses:     make(map[string]struct{}, len(spec.Courses)),
		windows:     make([]AvailabilityWindow, 0, len(spec.Windows)),
		minHours:    spec.MinHours,
		costPerHour: spec.CostPerHour,
	}
	for _, c := range spec.Courses {
		code := NormalizeCourse(c)
		if code == "" {
			continue
		}
		if _, dup := a.courses[code]; dup {
			continue
		}
		a.courses[code] = struct{}{}
		a.courseList = append(a.courseList, code)
	}
	sort.Strings(a.courseList)
	for _, w := range spec.Windows {
		if err := w.Validate(); err != nil {
			return Assistant{}, fmt.Errorf("assistant %s: %w", id, err)
		}
		a.windows = append(a.windows, w)
	}
	if spec.MaxHours != nil {
		a.maxHours = *spec.MaxHours
		a.hasMax = true
	}
	return a, nil
}

// NormalizeCourse returns the canonical form of a course code.
func NormalizeCourse(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

func (a Assistant) ID() string { return a.id }

// Courses returns the sorted course codes the assistant can support.
func (a Assistant) Courses() []string { return append([]string(nil), a.courseList...) }

// CanSupport reports whether the assistant is capable of the course.
func (a Assistant) CanSupport(code string) bool {
	_, ok := a.courses[NormalizeCourse(code)]
	return ok
}

// Windows returns a copy of the availability windows in input order.
func (a Assistant) Windows() []AvailabilityWindow {
	return append([]AvailabilityWindow(nil), a.windows...)
}

func (a Assistant) MinHours() float64 { return a.minHours }

// MaxHours returns the hour cap and whether one is set.
func (a Assistant) MaxHours() (float64, bool) { return a.maxHours, a.hasMax }

func (a Assistant) CostPerHour() float64 { return a.costPerHour }

// IsAvailable reports whether any availability window covers the shift.
func (a Assistant) IsAvailable(s Shift) bool {
	for _, w := range a.windows {
		if w.Covers(s) {
			return true
		}
	}
	return false
}
