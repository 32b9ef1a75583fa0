package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/roster/core/model"
	"github.com/kilianp07/roster/core/shiftgen"
)

// InputFile is the on-disk roster problem. Shifts win over OperatingHours
// when both are given.
type InputFile struct {
	Assistants     []AssistantDTO     `json:"assistants" yaml:"assistants"`
	Shifts         []ShiftDTO         `json:"shifts" yaml:"shifts"`
	OperatingHours *OperatingHoursDTO `json:"operating_hours,omitempty" yaml:"operating_hours,omitempty"`
}

type WindowDTO struct {
	Day   model.Weekday   `json:"day" yaml:"day"`
	Start model.ClockTime `json:"start" yaml:"start"`
	End   model.ClockTime `json:"end" yaml:"end"`
}

type AssistantDTO struct {
	ID           string      `json:"id" yaml:"id"`
	Courses      []string    `json:"courses" yaml:"courses"`
	Availability []WindowDTO `json:"availability" yaml:"availability"`
	MinHours     float64     `json:"min_hours" yaml:"min_hours"`
	MaxHours     *float64    `json:"max_hours,omitempty" yaml:"max_hours,omitempty"`
	CostPerHour  float64     `json:"cost_per_hour" yaml:"cost_per_hour"`
}

type DemandDTO struct {
	Course         string   `json:"course" yaml:"course"`
	TutorsRequired int      `json:"tutors_required" yaml:"tutors_required"`
	Weight         *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

type ShiftDTO struct {
	ID       string            `json:"id" yaml:"id"`
	Day      model.Weekday     `json:"day" yaml:"day"`
	Start    model.ClockTime   `json:"start" yaml:"start"`
	End      model.ClockTime   `json:"end" yaml:"end"`
	Demands  []DemandDTO       `json:"demands" yaml:"demands"`
	MinStaff *int              `json:"min_staff,omitempty" yaml:"min_staff,omitempty"`
	MaxStaff *int              `json:"max_staff,omitempty" yaml:"max_staff,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type OperatingHoursDTO struct {
	Days          []model.Weekday `json:"days" yaml:"days"`
	Start         model.ClockTime `json:"start" yaml:"start"`
	End           model.ClockTime `json:"end" yaml:"end"`
	ShiftMinutes  int             `json:"shift_minutes" yaml:"shift_minutes"`
	StaffPerShift int             `json:"staff_per_shift" yaml:"staff_per_shift"`
	Demands       []DemandDTO     `json:"demands" yaml:"demands"`
}

// Input is a decoded, validated roster problem.
type Input struct {
	Name       string
	Assistants []model.Assistant
	Shifts     []model.Shift
	// Generated is set when Shifts came from operating hours.
	Generated bool
	// Days is the number of distinct operating days for generated shifts.
	Days int
}

// LoadInput reads a YAML or JSON input file.
func LoadInput(path string) (*Input, error) {
	file, err := readInputFile(path)
	if err != nil {
		return nil, err
	}
	in, err := file.Build()
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}
	in.Name = path
	return in, nil
}

// LoadOperatingHours reads only the operating_hours section of an input
// file.
func LoadOperatingHours(path string) (shiftgen.OperatingHours, error) {
	file, err := readInputFile(path)
	if err != nil {
		return shiftgen.OperatingHours{}, err
	}
	if file.OperatingHours == nil {
		return shiftgen.OperatingHours{}, fmt.Errorf("input %s: %w: no operating_hours section", path, model.ErrInvalidInput)
	}
	return file.OperatingHours.Build()
}

// DecodeInput reads an input document in format "yaml" or "json".
func DecodeInput(r io.Reader, format string) (*Input, error) {
	file, err := decodeInputFile(r, format)
	if err != nil {
		return nil, err
	}
	return file.Build()
}

func readInputFile(path string) (*InputFile, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	file, err := decodeInputFile(f, format)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}
	return file, nil
}

func decodeInputFile(r io.Reader, format string) (*InputFile, error) {
	var file InputFile
	switch format {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
		}
	default:
		return nil, fmt.Errorf("unsupported input format: %q", format)
	}
	return &file, nil
}

// Build converts the file into domain values.
func (f InputFile) Build() (*Input, error) {
	in := &Input{Assistants: make([]model.Assistant, 0, len(f.Assistants))}
	for i, dto := range f.Assistants {
		a, err := dto.build()
		if err != nil {
			return nil, fmt.Errorf("assistants[%d]: %w", i, err)
		}
		in.Assistants = append(in.Assistants, a)
	}

	switch {
	case len(f.Shifts) > 0:
		in.Shifts = make([]model.Shift, 0, len(f.Shifts))
		for i, dto := range f.Shifts {
			s, err := dto.build()
			if err != nil {
				return nil, fmt.Errorf("shifts[%d]: %w", i, err)
			}
			in.Shifts = append(in.Shifts, s)
		}
	case f.OperatingHours != nil:
		oh, err := f.OperatingHours.Build()
		if err != nil {
			return nil, err
		}
		shifts, err := shiftgen.Generate(oh)
		if err != nil {
			return nil, fmt.Errorf("operating_hours: %w", err)
		}
		in.Shifts = shifts
		in.Generated = true
		in.Days = countDays(oh.Days)
	}
	return in, nil
}

// Build converts the DTO into shiftgen settings.
func (o OperatingHoursDTO) Build() (shiftgen.OperatingHours, error) {
	demands, err := buildDemands(o.Demands)
	if err != nil {
		return shiftgen.OperatingHours{}, fmt.Errorf("operating_hours: %w", err)
	}
	return shiftgen.OperatingHours{
		Days:          o.Days,
		Start:         o.Start,
		End:           o.End,
		ShiftMinutes:  o.ShiftMinutes,
		StaffPerShift: o.StaffPerShift,
		Demands:       demands,
	}, nil
}

func (dto AssistantDTO) build() (model.Assistant, error) {
	windows := make([]model.AvailabilityWindow, 0, len(dto.Availability))
	for _, w := range dto.Availability {
		windows = append(windows, model.AvailabilityWindow{Day: w.Day, Start: w.Start, End: w.End})
	}
	return model.NewAssistant(model.AssistantSpec{
		ID:          dto.ID,
		Courses:     dto.Courses,
		Windows:     windows,
		MinHours:    dto.MinHours,
		MaxHours:    dto.MaxHours,
		CostPerHour: dto.CostPerHour,
	})
}

// build defaults min_staff to 1.
func (dto ShiftDTO) build() (model.Shift, error) {
	demands, err := buildDemands(dto.Demands)
	if err != nil {
		return model.Shift{}, err
	}
	minStaff := 1
	if dto.MinStaff != nil {
		minStaff = *dto.MinStaff
	}
	return model.NewShift(model.ShiftSpec{
		ID:       dto.ID,
		Day:      dto.Day,
		Start:    dto.Start,
		End:      dto.End,
		Demands:  demands,
		MinStaff: minStaff,
		MaxStaff: dto.MaxStaff,
		Metadata: dto.Metadata,
	})
}

// buildDemands defaults a missing weight to 1.
func buildDemands(dtos []DemandDTO) ([]model.CourseDemand, error) {
	out := make([]model.CourseDemand, 0, len(dtos))
	for _, d := range dtos {
		weight := 1.0
		if d.Weight != nil {
			weight = *d.Weight
		}
		cd, err := model.NewCourseDemand(d.Course, d.TutorsRequired, weight)
		if err != nil {
			return nil, err
		}
		out = append(out, cd)
	}
	return out, nil
}

func countDays(days []model.Weekday) int {
	seen := make(map[model.Weekday]struct{}, len(days))
	for _, d := range days {
		seen[d] = struct{}{}
	}
	return len(seen)
}
