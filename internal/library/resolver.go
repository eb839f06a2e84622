package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/tonyfettes/dune/internal/diag"
	"github.com/tonyfettes/dune/internal/memo"
	"github.com/tonyfettes/dune/internal/resolve"
)

// Resolver resolves library names against a registry. Every name gets one
// memoized graph node, so within a build session a given name is resolved
// at most once, including when that resolution fails.
type Resolver struct {
	reg *Registry

	mu     sync.Mutex
	byName map[string]resolve.Memo[*Library]
}

// NewResolver creates a resolver over the registry.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{reg: reg, byName: make(map[string]resolve.Memo[*Library])}
}

// Lookup resolves a single name. The returned Memo is stable per name:
// repeated lookups of the same name share one graph node. A successful
// lookup guarantees the library's transitive dependencies resolve too;
// nested failures carry a frame naming the requiring library.
func (r *Resolver) Lookup(name string) resolve.Memo[*Library] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byName[name]; ok {
		return m
	}
	m := resolve.NewMemo("library:"+name, func(ctx context.Context, s *memo.Session) resolve.Resolve[*Library] {
		return r.resolveOne(ctx, s, name)
	})
	r.byName[name] = m
	return m
}

func (r *Resolver) resolveOne(ctx context.Context, s *memo.Session, name string) resolve.Resolve[*Library] {
	candidates := r.reg.Candidates(name)
	switch len(candidates) {
	case 0:
		return resolve.Fail[*Library](diag.Errorf("library %q not found in scope", name))
	case 1:
		// fall through
	default:
		return resolve.Fail[*Library](diag.Errorf("library %q is defined %d times", name, len(candidates)))
	}
	lib := candidates[0]

	deps := resolve.IterSlice(lib.Deps, func(dep string) resolve.Resolve[resolve.Unit] {
		rd, err := r.Lookup(dep).Node().Read(ctx, s)
		if err != nil {
			// The graph engine refused the read (a dependency cycle, a
			// canceled session). Capture it so it surfaces through the
			// normal deferred channel, not as an engine abort.
			rd = resolve.OfResult[*Library](nil, err)
		}
		return resolve.PushStackFrame(func() string {
			return fmt.Sprintf("library %q required by library %q", dep, name)
		}, resolve.Map(rd, func(*Library) resolve.Unit { return resolve.Unit{} }))
	})
	return resolve.Bind(deps, func(resolve.Unit) resolve.Resolve[*Library] {
		return resolve.Of(lib)
	})
}

// Closure resolves the transitive closure of the given names, dependencies
// before dependents, each library appearing once. The first failing name in
// input order wins.
func (r *Resolver) Closure(names []string) resolve.Memo[[]*Library] {
	return resolve.NewMemo("closure", func(ctx context.Context, s *memo.Session) resolve.Resolve[[]*Library] {
		var out []*Library
		seen := make(map[string]bool)

		var visit func(name string) resolve.Resolve[resolve.Unit]
		visit = func(name string) resolve.Resolve[resolve.Unit] {
			if seen[name] {
				return resolve.Of(resolve.Unit{})
			}
			seen[name] = true
			rl, err := r.Lookup(name).Node().Read(ctx, s)
			if err != nil {
				rl = resolve.OfResult[*Library](nil, err)
			}
			return resolve.Bind(rl, func(lib *Library) resolve.Resolve[resolve.Unit] {
				deps := resolve.IterSlice(lib.Deps, visit)
				return resolve.Map(deps, func(resolve.Unit) resolve.Unit {
					out = append(out, lib)
					return resolve.Unit{}
				})
			})
		}

		done := resolve.IterSlice(names, visit)
		return resolve.Map(done, func(resolve.Unit) []*Library { return out })
	})
}
