package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustShift(t *testing.T, id string, day Weekday, start, end ClockTime) Shift {
	t.Helper()
	s, err := NewShift(ShiftSpec{ID: id, Day: day, Start: start, End: end, MinStaff: 1})
	if err != nil {
		t.Fatalf("shift %s: %v", id, err)
	}
	return s
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want ClockTime
		ok   bool
	}{
		{"09:00", Clock(9, 0), true},
		{"9:30", Clock(9, 30), true},
		{"24:00", MinutesPerDay, true},
		{"24:01", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"-1:00", 0, false},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("%s: got %v err %v", c.in, got, err)
		}
		if !c.ok && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected invalid input, got %v", c.in, err)
		}
	}
	if Clock(7, 5).String() != "07:05" {
		t.Fatalf("bad format %s", Clock(7, 5))
	}
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]Weekday{"0": Monday, "mon": Monday, "Friday": Friday, "6": Sunday} {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Errorf("%s: got %v err %v", in, got, err)
		}
	}
	if _, err := ParseWeekday("7"); err == nil {
		t.Fatalf("expected error for 7")
	}
}

func TestAvailabilityWindowValidation(t *testing.T) {
	if _, err := NewAvailabilityWindow(Monday, Clock(12, 0), Clock(9, 0)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected inverted window error, got %v", err)
	}
	if _, err := NewAvailabilityWindow(Weekday(7), Clock(9, 0), Clock(12, 0)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected day error, got %v", err)
	}
	if _, err := NewAvailabilityWindow(Monday, Clock(9, 0), Clock(9, 0)); err == nil {
		t.Fatalf("expected empty window error")
	}
}

func TestCoversMatchesDefinition(t *testing.T) {
	w, err := NewAvailabilityWindow(Monday, Clock(9, 0), Clock(12, 0))
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	cases := []struct {
		shift Shift
		want  bool
	}{
		{mustShift(t, "inside", Monday, Clock(9, 0), Clock(10, 0)), true},
		{mustShift(t, "exact", Monday, Clock(9, 0), Clock(12, 0)), true},
		{mustShift(t, "tail", Monday, Clock(11, 0), Clock(12, 0)), true},
		{mustShift(t, "early", Monday, Clock(8, 30), Clock(9, 30)), false},
		{mustShift(t, "late", Monday, Clock(11, 30), Clock(12, 30)), false},
		{mustShift(t, "other-day", Tuesday, Clock(9, 0), Clock(10, 0)), false},
	}
	for _, c := range cases {
		if got := w.Covers(c.shift); got != c.want {
			t.Errorf("%s: covers=%v want %v", c.shift.ID(), got, c.want)
		}
	}
}

func TestAssistantIsAvailableAnyWindow(t *testing.T) {
	mon, _ := NewAvailabilityWindow(Monday, Clock(9, 0), Clock(10, 0))
	wed, _ := NewAvailabilityWindow(Wednesday, Clock(13, 0), Clock(17, 0))
	a, err := NewAssistant(AssistantSpec{ID: "a1", Windows: []AvailabilityWindow{mon, wed}})
	if err != nil {
		t.Fatalf("assistant: %v", err)
	}
	if !a.IsAvailable(mustShift(t, "s1", Wednesday, Clock(14, 0), Clock(15, 0))) {
		t.Fatalf("expected availability through second window")
	}
	if a.IsAvailable(mustShift(t, "s2", Monday, Clock(9, 30), Clock(10, 30))) {
		t.Fatalf("partial overlap must not count as available")
	}
}

func TestAssistantNormalizesCourses(t *testing.T) {
	a, err := NewAssistant(AssistantSpec{ID: " a1 ", Courses: []string{"comp2000", " COMP2000", "math1001", ""}})
	if err != nil {
		t.Fatalf("assistant: %v", err)
	}
	if a.ID() != "a1" {
		t.Fatalf("id not trimmed: %q", a.ID())
	}
	courses := a.Courses()
	if len(courses) != 2 || courses[0] != "COMP2000" || courses[1] != "MATH1001" {
		t.Fatalf("unexpected courses %v", courses)
	}
	if !a.CanSupport("Comp2000") {
		t.Fatalf("course lookup must be case-insensitive")
	}
}

func TestAssistantValidation(t *testing.T) {
	neg := -1.0
	specs := []AssistantSpec{
		{ID: ""},
		{ID: "a", MinHours: -1},
		{ID: "a", MaxHours: &neg},
		{ID: "a", CostPerHour: -5},
		{ID: "a", Windows: []AvailabilityWindow{{Day: Monday, Start: Clock(10, 0), End: Clock(9, 0)}}},
	}
	for i, s := range specs {
		if _, err := NewAssistant(s); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("spec %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestShiftValidation(t *testing.T) {
	one := 1
	cases := []ShiftSpec{
		{ID: "", Day: Monday, Start: Clock(9, 0), End: Clock(10, 0)},
		{ID: "s", Day: Weekday(-1), Start: Clock(9, 0), End: Clock(10, 0)},
		{ID: "s", Day: Monday, Start: Clock(10, 0), End: Clock(9, 0)},
		{ID: "s", Day: Monday, Start: Clock(23, 0), End: Clock(25, 0)},
		{ID: "s", Day: Monday, Start: Clock(9, 0), End: Clock(10, 0), MinStaff: -1},
		{ID: "s", Day: Monday, Start: Clock(9, 0), End: Clock(10, 0), MinStaff: 2, MaxStaff: &one},
		{ID: "s", Day: Monday, Start: Clock(9, 0), End: Clock(10, 0), Demands: []CourseDemand{{CourseCode: "X", TutorsRequired: -1}}},
		{ID: "s", Day: Monday, Start: Clock(9, 0), End: Clock(10, 0), Demands: []CourseDemand{{CourseCode: "x", TutorsRequired: 1}, {CourseCode: "X", TutorsRequired: 1}}},
	}
	for i, c := range cases {
		if _, err := NewShift(c); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestShiftDurationAndCopies(t *testing.T) {
	s, err := NewShift(ShiftSpec{
		ID: "s", Day: Friday, Start: Clock(9, 15), End: Clock(10, 45),
		Demands:  []CourseDemand{{CourseCode: "comp2000", TutorsRequired: 1, Weight: 1}},
		Metadata: map[string]string{"room": "lab1"},
	})
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if s.DurationHours() != 1.5 {
		t.Fatalf("duration %.2f", s.DurationHours())
	}
	if s.Demands()[0].CourseCode != "COMP2000" {
		t.Fatalf("course not normalized")
	}
	md := s.Metadata()
	md["room"] = "changed"
	if s.Metadata()["room"] != "lab1" {
		t.Fatalf("metadata must be copied")
	}
	if _, ok := s.MaxStaff(); ok {
		t.Fatalf("max staff should be unset")
	}
}

func TestWeekdayJSON(t *testing.T) {
	var days []Weekday
	if err := json.Unmarshal([]byte(`[0, "tue", "Wednesday", "6"]`), &days); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Weekday{Monday, Tuesday, Wednesday, Sunday}
	if !reflect.DeepEqual(days, want) {
		t.Fatalf("got %v want %v", days, want)
	}
	out, err := json.Marshal(Friday)
	if err != nil || string(out) != `"friday"` {
		t.Fatalf("marshal: %s %v", out, err)
	}
	var bad Weekday
	if err := json.Unmarshal([]byte(`9`), &bad); err == nil {
		t.Fatal("expected error for day 9")
	}
}
