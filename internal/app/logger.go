package app

import (
	"io"
	"log/slog"
)

// newLogger builds the app's isolated logger from a validated config. It
// never touches the global logger. An empty level falls back to info.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		// NewConfig already rejected unparseable levels.
		_ = level.UnmarshalText([]byte(cfg.LogLevel))
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
