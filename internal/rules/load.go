package rules

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/tonyfettes/dune/internal/ctxlog"
	"github.com/tonyfettes/dune/internal/fsutil"
	"github.com/tonyfettes/dune/internal/library"
	"github.com/zclconf/go-cty/cty"
)

// Load finds and parses all .hcl rules files under the given path into a
// single Model. Users may split libraries and rules across many files; the
// Model consolidates them so resolution can span file boundaries.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading rules from path.", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find rules files in %s: %w", path, err)
	}

	model := &Model{Registry: library.NewRegistry()}
	if len(files) == 0 {
		logger.Warn("No .hcl rules files found in path, returning empty model.", "path", path)
		model.Files = map[string]*hcl.File{}
		return model, nil
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		if err := loadFile(file, parser, model); err != nil {
			return nil, err
		}
	}
	model.Files = parser.Files()

	logger.Info("Rules loaded successfully.", "libraries", len(model.Registry.Names()), "rules", len(model.Rules))
	return model, nil
}

// loadFile parses one file and folds its blocks into the model.
func loadFile(filePath string, parser *hclparse.Parser, model *Model) error {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse rules file %s: %w", filePath, diags)
	}

	var parsed rulesFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode rules file %s: %w", filePath, diags)
	}

	for _, block := range parsed.Libraries {
		linkArgs, diags := exprList(block.LinkArgs)
		if diags.HasErrors() {
			return fmt.Errorf("invalid link_args for library %q in %s: %w", block.Name, filePath, diags)
		}
		model.Registry.Add(&library.Library{
			Name:     block.Name,
			Sources:  block.Sources,
			Deps:     block.Deps,
			LinkArgs: linkArgs,
		})
	}

	for _, block := range parsed.Rules {
		args, diags := exprList(block.Args)
		if diags.HasErrors() {
			return fmt.Errorf("invalid args for rule %q in %s: %w", block.Name, filePath, diags)
		}
		model.Rules = append(model.Rules, &Rule{
			Name:      block.Name,
			Libraries: block.Libraries,
			Args:      args,
		})
	}

	return nil
}

// exprList statically evaluates an optional list expression into its
// elements. Absent attributes yield nil.
func exprList(expr hcl.Expression) ([]cty.Value, hcl.Diagnostics) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() {
		return nil, hcl.Diagnostics{&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid argument list",
			Detail:   fmt.Sprintf("Expected a list, got %s.", val.Type().FriendlyName()),
			Subject:  expr.Range().Ptr(),
		}}
	}
	vals := make([]cty.Value, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		vals = append(vals, v)
	}
	return vals, nil
}
