package action

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/tonyfettes/dune/internal/ctxlog"
	"github.com/tonyfettes/dune/internal/diag"
	"github.com/tonyfettes/dune/internal/memo"
)

// Step is one named build action ready for execution.
type Step struct {
	Name  string
	Build Builder[struct{}]
}

// Outcome is the result of executing one step. Diags is nil on success.
type Outcome struct {
	Name  string
	Diags hcl.Diagnostics
}

// Executor runs a set of independent steps against one session using a
// fixed-size worker pool. Steps are isolated: one step's failure never
// aborts or skips another, and a step that never reads a failed resolution
// is unaffected by it.
type Executor struct {
	numWorkers int
}

// NewExecutor creates an executor. A non-positive worker count falls back
// to serial execution.
func NewExecutor(numWorkers int) *Executor {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Executor{numWorkers: numWorkers}
}

// Run executes every step and collects per-step outcomes in input order.
// The returned error summarizes which steps failed; the outcomes carry the
// rendered diagnostics.
func (e *Executor) Run(ctx context.Context, s *memo.Session, steps []Step) ([]Outcome, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executor starting.", "steps", len(steps), "workers", e.numWorkers)

	outcomes := make([]Outcome, len(steps))
	indexChan := make(chan int, len(steps))
	for i := range steps {
		indexChan <- i
	}
	close(indexChan)

	var wg sync.WaitGroup
	wg.Add(e.numWorkers)
	for w := 0; w < e.numWorkers; w++ {
		go func(workerID int) {
			defer wg.Done()
			for i := range indexChan {
				step := steps[i]
				workerLogger := logger.With("workerID", workerID, "step", step.Name)
				workerLogger.Debug("Worker picked up step.")
				_, err := Run(ctx, s, step.Build)
				outcomes[i] = Outcome{Name: step.Name}
				if err != nil {
					workerLogger.Error("Step failed.", "error", err)
					outcomes[i].Diags = diag.FromError(err)
					continue
				}
				workerLogger.Debug("Step succeeded.")
			}
		}(w)
	}
	wg.Wait()

	var failed []string
	for _, o := range outcomes {
		if o.Diags.HasErrors() {
			failed = append(failed, o.Name)
		}
	}
	if len(failed) > 0 {
		return outcomes, fmt.Errorf("execution failed for %s", strings.Join(failed, ", "))
	}
	logger.Debug("Executor finished, all steps succeeded.")
	return outcomes, nil
}
