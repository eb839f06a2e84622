package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tonyfettes/dune/internal/ctxlog"
	"github.com/tonyfettes/dune/internal/library"
	"github.com/tonyfettes/dune/internal/rules"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *rules.Model
	resolver *library.Resolver
}

// NewApp is the constructor for the main application. It loads every rules
// file under the configured path and returns a fully initialized App
// instance with its own isolated logger.
func NewApp(outW io.Writer, config *Config) (*App, error) {
	logger := newLogger(config, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := rules.Load(ctx, config.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	logger.Debug("Rules loaded into unified model.", "rules", len(model.Rules))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		model:    model,
		resolver: library.NewResolver(model.Registry),
	}, nil
}

// Model returns the loaded rules model. This is primarily for testing.
func (a *App) Model() *rules.Model {
	return a.model
}
