package app

import (
	"errors"
	"fmt"
	"log/slog"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RulesPath string   // path to .hcl rules files
	Targets   []string // rule names to build; empty means all

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates the configuration and returns it. Empty LogFormat and
// LogLevel are allowed and fall back to the logger's defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RulesPath == "" {
		return nil, errors.New("RulesPath is a required configuration field and cannot be empty")
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
		}
	}
	return &cfg, nil
}
