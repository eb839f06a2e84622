package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/tonyfettes/dune/internal/action"
	"github.com/tonyfettes/dune/internal/ctxlog"
	"github.com/tonyfettes/dune/internal/diag"
	"github.com/tonyfettes/dune/internal/memo"
	"github.com/tonyfettes/dune/internal/rules"
)

// Run executes the main application logic: generate a step per rule, select
// the requested targets, and execute them against a fresh build session.
// Diagnostics from failed steps are rendered to the configured output.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	steps := rules.Steps(a.model, a.resolver)
	a.logger.Debug("Rule generation complete.", "steps", len(steps))

	steps, err := selectTargets(steps, a.config.Targets)
	if err != nil {
		return err
	}

	if len(steps) == 0 {
		a.logger.Warn("No rules selected, execution not required.")
		return nil
	}

	a.logger.Info("Starting execution.", "steps", len(steps), "workers", a.config.WorkerCount)
	session := memo.NewSession()
	exec := action.NewExecutor(a.config.WorkerCount)
	outcomes, err := exec.Run(ctx, session, steps)

	var failedDiags hcl.Diagnostics
	for _, o := range outcomes {
		failedDiags = append(failedDiags, o.Diags...)
	}
	if len(failedDiags) > 0 {
		if renderErr := diag.Render(a.outW, a.model.Files, failedDiags); renderErr != nil {
			a.logger.Error("Failed to render diagnostics.", "error", renderErr)
		}
	}
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Info("Execution finished.")
	return nil
}

// selectTargets filters steps down to the requested rule names, preserving
// input order. Naming a rule that does not exist is a usage error.
func selectTargets(steps []action.Step, targets []string) ([]action.Step, error) {
	if len(targets) == 0 {
		return steps, nil
	}
	byName := make(map[string]action.Step, len(steps))
	for _, step := range steps {
		byName[step.Name] = step
	}
	selected := make([]action.Step, 0, len(targets))
	var unknown []string
	for _, target := range targets {
		step, ok := byName[target]
		if !ok {
			unknown = append(unknown, target)
			continue
		}
		selected = append(selected, step)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown rule(s): %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}
