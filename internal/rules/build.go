package rules

import (
	"context"
	"strings"

	"github.com/tonyfettes/dune/internal/action"
	"github.com/tonyfettes/dune/internal/ctxlog"
	"github.com/tonyfettes/dune/internal/library"
	"github.com/tonyfettes/dune/internal/memo"
	"github.com/tonyfettes/dune/internal/resolve"
	"github.com/zclconf/go-cty/cty"
)

// Steps generates one executable step per rule. Generation never fails:
// unresolvable libraries surface only when the generated step runs.
func Steps(model *Model, resolver *library.Resolver) []action.Step {
	steps := make([]action.Step, 0, len(model.Rules))
	for _, rule := range model.Rules {
		steps = append(steps, generateStep(rule, resolver))
	}
	return steps
}

// generateStep describes a rule's command line as two spliced fragments:
// the rule's own arguments, and the link arguments contributed by the
// transitive closure of its libraries. Neither fragment is forced here.
func generateStep(rule *Rule, resolver *library.Resolver) action.Step {
	closure := resolver.Closure(rule.Libraries)
	linkArgs := resolve.MapMemo("linkargs:"+rule.Name, closure, func(libs []*library.Library) []cty.Value {
		var args []cty.Value
		for _, lib := range libs {
			args = append(args, lib.LinkArgs...)
		}
		return args
	})

	fragments := []action.Builder[[]cty.Value]{
		resolve.Args(resolve.Of(rule.Args)),
		linkArgs.Read(),
	}
	argv := action.Map(action.All(fragments), func(parts [][]cty.Value) []cty.Value {
		var flat []cty.Value
		for _, part := range parts {
			flat = append(flat, part...)
		}
		return flat
	})

	name := rule.Name
	build := action.Bind(argv, func(args []cty.Value) action.Builder[struct{}] {
		return action.Suspend(func(ctx context.Context, s *memo.Session) (struct{}, error) {
			ctxlog.FromContext(ctx).Info("Running rule.", "rule", name, "argv", renderArgv(args))
			return struct{}{}, nil
		})
	})

	return action.Step{Name: rule.Name, Build: build}
}

// renderArgv flattens argument values into a loggable command line.
func renderArgv(args []cty.Value) string {
	parts := make([]string, 0, len(args))
	for _, v := range args {
		if v.Type() == cty.String && !v.IsNull() {
			parts = append(parts, v.AsString())
			continue
		}
		parts = append(parts, v.GoString())
	}
	return strings.Join(parts, " ")
}
