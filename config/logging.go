package config

// LoggingConfig sets the process log level.
type LoggingConfig struct {
	Level string `json:"level" validate:"oneof=trace debug info warn error disabled"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}
