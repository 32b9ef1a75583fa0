package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/roster/core/metrics"
	"github.com/kilianp07/roster/core/scheduler"
)

// EnvPrefix marks environment variables that override file settings.
// ROSTER_SCHEDULER__TIME_LIMIT_SECONDS=5 sets scheduler.time_limit_seconds.
const EnvPrefix = "ROSTER_"

type Config struct {
	Scheduler scheduler.SchedulerConfig `json:"scheduler"`
	Metrics   metrics.Config            `json:"metrics"`
	RunLog    RunLogConfig              `json:"run_log"`
	Logging   LoggingConfig             `json:"logging"`
	Sentry    SentryConfig              `json:"sentry"`
	Batch     BatchConfig               `json:"batch"`
}

// BatchConfig bounds parallel solves of several inputs.
type BatchConfig struct {
	// Concurrency is the number of solves run at once; 0 means one per CPU.
	Concurrency int `json:"concurrency" validate:"gte=0"`
}

// Default returns the base that files and environment are decoded onto.
// Run log and logging defaults depend on the decoded backend and are applied
// by Load afterwards.
func Default() Config {
	return Config{Scheduler: scheduler.DefaultConfig()}
}

// Load reads path (YAML or JSON) over Default, then applies ROSTER_
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.RunLog.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.RunLog.Validate(); err != nil {
		return fmt.Errorf("config run_log: %w", err)
	}
	return nil
}
