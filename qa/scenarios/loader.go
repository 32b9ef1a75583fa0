// Package scenarios runs roster regression scenarios described in YAML.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/roster/app"
	"github.com/kilianp07/roster/core/scheduler"
)

// Expected lists the checks of a scenario. Unset fields are not checked.
type Expected struct {
	// Error is the failure class: invalid_input, no_feasible_assignments or
	// infeasible_baseline.
	Error string `yaml:"error,omitempty"`
	// Status is the set of accepted result statuses.
	Status      []string `yaml:"status,omitempty"`
	Assignments *int     `yaml:"assignments,omitempty"`
	Shifts      *int     `yaml:"shifts,omitempty"`
	TotalHours  *float64 `yaml:"total_hours,omitempty"`
	Objective   *float64 `yaml:"objective,omitempty"`
	// MaxShortfall bounds every course and staff shortfall.
	MaxShortfall *float64           `yaml:"max_shortfall,omitempty"`
	Hours        map[string]float64 `yaml:"hours,omitempty"`
	Baselines    map[string]float64 `yaml:"baselines,omitempty"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Scheduler overrides scheduler.DefaultConfig field by field.
	Scheduler yaml.Node     `yaml:"scheduler,omitempty"`
	Input     app.InputFile `yaml:"input"`
	Expected  Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &sc, nil
}

// Config returns the scheduler configuration of the scenario.
func (sc *Scenario) Config() (scheduler.SchedulerConfig, error) {
	cfg := scheduler.DefaultConfig()
	if sc.Scheduler.Kind == 0 {
		return cfg, nil
	}
	if err := sc.Scheduler.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("scenario %s scheduler: %w", sc.Name, err)
	}
	return cfg, nil
}
