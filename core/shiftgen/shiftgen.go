// Package shiftgen derives concrete shifts from an operating-hours
// configuration.
package shiftgen

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kilianp07/roster/core/model"
)

// OperatingHours describes when the help desk is open and how it is staffed.
type OperatingHours struct {
	Days          []model.Weekday
	Start         model.ClockTime
	End           model.ClockTime
	ShiftMinutes  int
	StaffPerShift int
	// Demands are attached to every generated shift.
	Demands []model.CourseDemand
}

// Validate checks the configuration before any shift is produced.
func (o OperatingHours) Validate() error {
	if len(o.Days) == 0 {
		return fmt.Errorf("%w: no operating days", model.ErrInvalidInput)
	}
	for _, d := range o.Days {
		if !d.Valid() {
			return fmt.Errorf("%w: operating day %d out of range", model.ErrInvalidInput, int(d))
		}
	}
	if !o.Start.Valid() || !o.End.Valid() || o.Start >= o.End {
		return fmt.Errorf("%w: operating window %s-%s", model.ErrInvalidInput, o.Start, o.End)
	}
	if o.ShiftMinutes <= 0 {
		return fmt.Errorf("%w: shift_minutes must be positive", model.ErrInvalidInput)
	}
	if o.StaffPerShift < 0 {
		return fmt.Errorf("%w: staff_per_shift must not be negative", model.ErrInvalidInput)
	}
	return nil
}

// ShiftID returns the identifier of the index-th shift on day.
func ShiftID(day model.Weekday, index int) string {
	return fmt.Sprintf("d%d-s%d", int(day), index)
}

// Generate tiles each operating day into consecutive shifts of ShiftMinutes.
// Days are processed in ascending order. A trailing remainder shorter than a
// full shift is dropped rather than clipped.
func Generate(o OperatingHours) ([]model.Shift, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	days := uniqueDays(o.Days)
	perDay := int(o.End-o.Start) / o.ShiftMinutes
	shifts := make([]model.Shift, 0, perDay*len(days))
	for _, day := range days {
		for i := 0; i < perDay; i++ {
			start := o.Start.Add(i * o.ShiftMinutes)
			end := start.Add(o.ShiftMinutes)
			if end > o.End || end > model.MinutesPerDay {
				break
			}
			staff := o.StaffPerShift
			s, err := model.NewShift(model.ShiftSpec{
				ID:       ShiftID(day, i),
				Day:      day,
				Start:    start,
				End:      end,
				Demands:  o.Demands,
				MinStaff: staff,
				MaxStaff: &staff,
				Metadata: map[string]string{
					"day":       day.String(),
					"sequence":  strconv.Itoa(i),
					"generated": "true",
				},
			})
			if err != nil {
				return nil, err
			}
			shifts = append(shifts, s)
		}
	}
	return shifts, nil
}

func uniqueDays(in []model.Weekday) []model.Weekday {
	seen := make(map[model.Weekday]struct{}, len(in))
	out := make([]model.Weekday, 0, len(in))
	for _, d := range in {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
