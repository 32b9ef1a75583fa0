package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/roster/core/milp"
)

// SchedulerConfig holds the penalty weights and solver limits of one solve.
// Every assistant with max_hours gets an excess slack priced at
// MaxHoursPenalty, so a zero penalty leaves the cap unenforced.
type SchedulerConfig struct {
	CourseShortfallPenalty float64 `json:"course_shortfall_penalty" yaml:"course_shortfall_penalty" validate:"gte=0"`
	MinHoursPenalty        float64 `json:"min_hours_penalty" yaml:"min_hours_penalty" validate:"gte=0"`
	MaxHoursPenalty        float64 `json:"max_hours_penalty" yaml:"max_hours_penalty" validate:"gte=0"`
	UnderstaffedPenalty    float64 `json:"understaffed_penalty" yaml:"understaffed_penalty" validate:"gte=0"`
	ExtraHoursPenalty      float64 `json:"extra_hours_penalty" yaml:"extra_hours_penalty" validate:"gte=0"`
	MaxExtraPenalty        float64 `json:"max_extra_penalty" yaml:"max_extra_penalty" validate:"gte=0"`
	BaselineHoursTarget    int     `json:"baseline_hours_target" yaml:"baseline_hours_target" validate:"gte=0"`
	AllowMinimumViolation  bool    `json:"allow_minimum_violation" yaml:"allow_minimum_violation"`
	// StaffShortfallMax caps the per-shift staff shortfall; nil uses the
	// shift's min_staff.
	StaffShortfallMax *int    `json:"staff_shortfall_max,omitempty" yaml:"staff_shortfall_max,omitempty" validate:"omitempty,gte=0"`
	TimeLimitSeconds  float64 `json:"time_limit_seconds" yaml:"time_limit_seconds" validate:"gte=0"`
	OptimalityGap     float64 `json:"optimality_gap" yaml:"optimality_gap" validate:"gte=0,lte=1"`
	// NodeLimit stops branch and bound after this many LP solves; zero means
	// no limit.
	NodeLimit int  `json:"node_limit,omitempty" yaml:"node_limit,omitempty" validate:"gte=0"`
	Verbose   bool `json:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the weights used when nothing is configured.
func DefaultConfig() SchedulerConfig {
	return SchedulerConfig{
		CourseShortfallPenalty: 1000,
		MinHoursPenalty:        100,
		MaxHoursPenalty:        200,
		UnderstaffedPenalty:    500,
		ExtraHoursPenalty:      1,
		MaxExtraPenalty:        5,
		BaselineHoursTarget:    6,
		AllowMinimumViolation:  true,
		TimeLimitSeconds:       30,
		OptimalityGap:          1e-4,
	}
}

// Validate checks the configured weights and limits.
func (c SchedulerConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("scheduler config: %w", err)
	}
	return nil
}

// TimeLimit returns the solver wall-clock limit.
func (c SchedulerConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds * float64(time.Second))
}

func (c SchedulerConfig) solverOptions() milp.Options {
	opts := milp.DefaultOptions()
	opts.TimeLimit = c.TimeLimit()
	opts.RelativeGap = c.OptimalityGap
	opts.MaxNodes = c.NodeLimit
	return opts
}

// LoadConfig loads a SchedulerConfig from a JSON or YAML file. Fields missing
// from the file keep their DefaultConfig value.
func LoadConfig(path string) (SchedulerConfig, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext != "yaml" && ext != "yml" && ext != "json" {
		return SchedulerConfig{}, fmt.Errorf("unsupported config format: .%s", ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return SchedulerConfig{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeConfig(f, ext)
}

// DecodeConfig reads a SchedulerConfig in the given format ("yaml" or "json")
// on top of DefaultConfig and validates it.
func DecodeConfig(r io.Reader, format string) (SchedulerConfig, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
