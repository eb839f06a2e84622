package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tonyfettes/dune/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dune", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
dune - A build orchestrator with deferred dependency resolution.

Usage:
  dune [options] RULES_PATH [TARGET...]

Arguments:
  RULES_PATH
    Path to a single .hcl rules file or a directory containing .hcl files.
  TARGET
    Names of rules to build. Builds every rule when omitted.

Options:
`)
		flagSet.PrintDefaults()
	}

	rulesFlag := flagSet.String("rules", "", "Path to the rules file or directory.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 10, "Number of concurrent workers for the executor.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *rulesFlag
	targets := flagSet.Args()
	if path == "" && len(targets) > 0 {
		path, targets = targets[0], targets[1:]
	}
	slog.Debug("Rules path determined.", "path", path, "targets", targets)

	if path == "" {
		slog.Debug("No rules path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	// Format and level validation belongs to app.NewConfig; a rejection
	// there is a usage error here.
	config, err := app.NewConfig(app.Config{
		RulesPath:   path,
		Targets:     targets,
		LogFormat:   strings.ToLower(*logFormatFlag),
		LogLevel:    strings.ToLower(*logLevelFlag),
		WorkerCount: *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
