// Package library holds the registry of named libraries that build rules
// link against, and the resolver that turns a name into a deferred
// resolution. Resolution failures (missing name, ambiguous name, dependency
// cycle) are captured as resolve values, never raised: a rule that mentions
// a broken library only fails if its action actually reads it.
package library

import (
	"github.com/zclconf/go-cty/cty"
)

// Library is one resolvable library definition.
type Library struct {
	Name     string
	Sources  []string
	Deps     []string
	LinkArgs []cty.Value
}

// Registry maps library names to their definitions. Several definitions may
// share one name; the resolver reports that as an ambiguity.
type Registry struct {
	defs map[string][]*Library
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string][]*Library)}
}

// Add registers a library definition.
func (r *Registry) Add(lib *Library) {
	r.defs[lib.Name] = append(r.defs[lib.Name], lib)
}

// Candidates returns every definition registered under the name.
func (r *Registry) Candidates(name string) []*Library {
	return r.defs[name]
}

// Names returns the set of registered names, in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}
