package shiftgen

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kilianp07/roster/core/model"
)

func TestGenerateTilesOperatingWindow(t *testing.T) {
	cfg := OperatingHours{
		Days:          []model.Weekday{0, 1, 2},
		Start:         model.Clock(10, 0),
		End:           model.Clock(14, 0),
		ShiftMinutes:  60,
		StaffPerShift: 1,
	}
	shifts, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(shifts) != 12 {
		t.Fatalf("expected 12 shifts got %d", len(shifts))
	}
	for i, s := range shifts {
		if s.DurationMinutes() != 60 {
			t.Fatalf("shift %s lasts %d minutes", s.ID(), s.DurationMinutes())
		}
		if s.End() > model.Clock(14, 0) {
			t.Fatalf("shift %s ends after closing", s.ID())
		}
		maxStaff, ok := s.MaxStaff()
		if s.MinStaff() != 1 || !ok || maxStaff != 1 {
			t.Fatalf("shift %s staffing %d/%d", s.ID(), s.MinStaff(), maxStaff)
		}
		if i > 0 && shifts[i-1].Day() == s.Day() && shifts[i-1].End() != s.Start() {
			t.Fatalf("shifts not consecutive: %s then %s", shifts[i-1], s)
		}
	}
	if shifts[0].ID() != "d0-s0" || shifts[11].ID() != "d2-s3" {
		t.Fatalf("unexpected ids %s .. %s", shifts[0].ID(), shifts[11].ID())
	}
}

func TestGenerateDropsPartialShift(t *testing.T) {
	cfg := OperatingHours{
		Days:          []model.Weekday{model.Thursday},
		Start:         model.Clock(9, 0),
		End:           model.Clock(11, 30),
		ShiftMinutes:  60,
		StaffPerShift: 2,
	}
	shifts, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(shifts) != 2 {
		t.Fatalf("expected trailing 30 minutes dropped, got %d shifts", len(shifts))
	}
	if shifts[1].End() != model.Clock(11, 0) {
		t.Fatalf("last shift ends at %s", shifts[1].End())
	}
}

func TestGenerateUntilMidnight(t *testing.T) {
	cfg := OperatingHours{
		Days:         []model.Weekday{model.Sunday},
		Start:        model.Clock(22, 0),
		End:          model.MinutesPerDay,
		ShiftMinutes: 45,
	}
	shifts, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(shifts) != 2 || shifts[1].End() != model.Clock(23, 30) {
		t.Fatalf("unexpected shifts %v", shifts)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	demand, _ := model.NewCourseDemand("comp2000", 1, 1)
	cfg := OperatingHours{
		Days:          []model.Weekday{model.Friday, model.Monday, model.Friday},
		Start:         model.Clock(8, 0),
		End:           model.Clock(12, 0),
		ShiftMinutes:  90,
		StaffPerShift: 1,
		Demands:       []model.CourseDemand{demand},
	}
	first, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("generation is not idempotent")
	}
	if len(first) != 4 || first[0].Day() != model.Monday {
		t.Fatalf("expected days sorted and de-duplicated, got %v", first)
	}
	if d := first[0].Demands(); len(d) != 1 || d[0].CourseCode != "COMP2000" {
		t.Fatalf("demands not attached: %v", d)
	}
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	base := OperatingHours{Days: []model.Weekday{0}, Start: model.Clock(9, 0), End: model.Clock(17, 0), ShiftMinutes: 60}
	mutations := []func(*OperatingHours){
		func(o *OperatingHours) { o.Days = nil },
		func(o *OperatingHours) { o.Days = []model.Weekday{9} },
		func(o *OperatingHours) { o.Start, o.End = o.End, o.Start },
		func(o *OperatingHours) { o.ShiftMinutes = 0 },
		func(o *OperatingHours) { o.StaffPerShift = -1 },
	}
	for i, m := range mutations {
		cfg := base
		m(&cfg)
		if _, err := Generate(cfg); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("mutation %d: expected invalid input, got %v", i, err)
		}
	}
}
