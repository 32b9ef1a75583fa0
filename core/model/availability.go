package model

import "fmt"

// AvailabilityWindow is one contiguous interval an assistant can work.
type AvailabilityWindow struct {
	Day   Weekday
	Start ClockTime
	End   ClockTime
}

// NewAvailabilityWindow validates and returns a window.
func NewAvailabilityWindow(day Weekday, start, end ClockTime) (AvailabilityWindow, error) {
	w := AvailabilityWindow{Day: day, Start: start, End: end}
	if err := w.Validate(); err != nil {
		return AvailabilityWindow{}, err
	}
	return w, nil
}

// Validate checks the day range and that Start < End within one day.
func (w AvailabilityWindow) Validate() error {
	if !w.Day.Valid() {
		return fmt.Errorf("%w: availability day %d out of range", ErrInvalidInput, int(w.Day))
	}
	if !w.Start.Valid() || !w.End.Valid() {
		return fmt.Errorf("%w: availability %s-%s outside the day", ErrInvalidInput, w.Start, w.End)
	}
	if w.Start >= w.End {
		return fmt.Errorf("%w: availability start %s not before end %s", ErrInvalidInput, w.Start, w.End)
	}
	return nil
}

// Covers reports whether the window fully contains the shift's [start,end).
func (w AvailabilityWindow) Covers(s Shift) bool {
	return w.Day == s.day && w.Start <= s.start && s.end <= w.End
}

func (w AvailabilityWindow) String() string {
	return fmt.Sprintf("%s %s-%s", w.Day, w.Start, w.End)
}
