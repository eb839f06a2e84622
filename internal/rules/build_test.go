package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonyfettes/dune/internal/action"
	"github.com/tonyfettes/dune/internal/library"
	"github.com/tonyfettes/dune/internal/memo"
	"github.com/zclconf/go-cty/cty"
)

func TestSteps_GenerationIsTotal(t *testing.T) {
	// Rule generation must not fail even when every library is missing.
	model := &Model{
		Registry: library.NewRegistry(),
		Rules: []*Rule{
			{Name: "broken", Libraries: []string{"nope"}},
		},
	}
	steps := Steps(model, library.NewResolver(model.Registry))
	require.Len(t, steps, 1)
	assert.Equal(t, "broken", steps[0].Name)
}

func TestSteps_Execution(t *testing.T) {
	reg := library.NewRegistry()
	reg.Add(&library.Library{Name: "base", LinkArgs: []cty.Value{cty.StringVal("-lbase")}})
	model := &Model{
		Registry: reg,
		Rules: []*Rule{
			{Name: "good", Libraries: []string{"base"}, Args: []cty.Value{cty.StringVal("-o"), cty.StringVal("good")}},
			{Name: "bad", Libraries: []string{"missing"}},
		},
	}

	steps := Steps(model, library.NewResolver(reg))
	outcomes, err := action.NewExecutor(2).Run(context.Background(), memo.NewSession(), steps)
	require.Error(t, err, "one failing rule fails the run")
	require.Len(t, outcomes, 2)

	assert.False(t, outcomes[0].Diags.HasErrors(), "the good rule is unaffected by the bad one")
	require.True(t, outcomes[1].Diags.HasErrors())
	assert.Equal(t, `library "missing" not found in scope`, outcomes[1].Diags[0].Summary)
}

func TestSteps_UnreadFailureIsSilent(t *testing.T) {
	// A broken library that no executed rule reads must not surface at all.
	reg := library.NewRegistry()
	reg.Add(&library.Library{Name: "ok"})
	model := &Model{
		Registry: reg,
		Rules: []*Rule{
			{Name: "only", Libraries: []string{"ok"}},
		},
	}
	resolver := library.NewResolver(reg)

	// Force the broken resolution to exist before the run.
	_ = resolver.Lookup("phantom")

	steps := Steps(model, resolver)
	outcomes, err := action.NewExecutor(1).Run(context.Background(), memo.NewSession(), steps)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Diags.HasErrors())
}

func TestRenderArgv(t *testing.T) {
	got := renderArgv([]cty.Value{cty.StringVal("-o"), cty.StringVal("app"), cty.NumberIntVal(3)})
	assert.Equal(t, "-o app cty.NumberIntVal(3)", got)
}
