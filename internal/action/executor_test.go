package action

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonyfettes/dune/internal/memo"
)

func succeedingStep(name string, ran *atomic.Int32) Step {
	return Step{Name: name, Build: Suspend(func(context.Context, *memo.Session) (struct{}, error) {
		ran.Add(1)
		return struct{}{}, nil
	})}
}

func failingStep(name, message string) Step {
	return Step{Name: name, Build: Suspend(func(context.Context, *memo.Session) (struct{}, error) {
		return struct{}{}, errors.New(message)
	})}
}

func TestExecutor_AllSucceed(t *testing.T) {
	var ran atomic.Int32
	steps := []Step{
		succeedingStep("a", &ran),
		succeedingStep("b", &ran),
		succeedingStep("c", &ran),
	}

	outcomes, err := NewExecutor(2).Run(context.Background(), memo.NewSession(), steps)
	require.NoError(t, err)
	assert.Equal(t, int32(3), ran.Load())
	require.Len(t, outcomes, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, outcomes[i].Name, "outcomes keep input order")
		assert.False(t, outcomes[i].Diags.HasErrors())
	}
}

func TestExecutor_FailureIsIsolated(t *testing.T) {
	var ran atomic.Int32
	steps := []Step{
		succeedingStep("ok-before", &ran),
		failingStep("broken", "missing library foo"),
		succeedingStep("ok-after", &ran),
	}

	outcomes, err := NewExecutor(1).Run(context.Background(), memo.NewSession(), steps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	assert.Equal(t, int32(2), ran.Load(), "unrelated steps still run after a failure")
	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[0].Diags.HasErrors())
	require.True(t, outcomes[1].Diags.HasErrors())
	assert.Equal(t, "missing library foo", outcomes[1].Diags[0].Summary)
	assert.False(t, outcomes[2].Diags.HasErrors())
}

func TestExecutor_WorkerFallback(t *testing.T) {
	var ran atomic.Int32
	outcomes, err := NewExecutor(0).Run(context.Background(), memo.NewSession(), []Step{
		succeedingStep("only", &ran),
	})
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)
	assert.Equal(t, int32(1), ran.Load())
}
