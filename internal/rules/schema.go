// Package rules loads build-rule definitions from HCL files and generates
// executable build actions from them. Generation is total: a rule that
// mentions an unresolvable library still generates, and the failure only
// surfaces if that rule's action is executed.
package rules

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/tonyfettes/dune/internal/library"
	"github.com/zclconf/go-cty/cty"
)

// libraryBlock is the raw `library` block as it appears in a rules file.
type libraryBlock struct {
	Name     string         `hcl:"name,label"`
	Sources  []string       `hcl:"sources,optional"`
	Deps     []string       `hcl:"deps,optional"`
	LinkArgs hcl.Expression `hcl:"link_args,optional"`
}

// ruleBlock is the raw `rule` block as it appears in a rules file.
type ruleBlock struct {
	Name      string         `hcl:"name,label"`
	Libraries []string       `hcl:"libraries,optional"`
	Args      hcl.Expression `hcl:"args,optional"`
}

// rulesFile is the top-level structure of one rules file.
type rulesFile struct {
	Libraries []*libraryBlock `hcl:"library,block"`
	Rules     []*ruleBlock    `hcl:"rule,block"`
}

// Rule is one translated build rule.
type Rule struct {
	Name      string
	Libraries []string
	Args      []cty.Value
}

// Model is the unified view of every rules file found under one path.
type Model struct {
	Registry *library.Registry
	Rules    []*Rule
	// Files maps file names to their parsed sources, for diagnostic
	// rendering with source context.
	Files map[string]*hcl.File
}
