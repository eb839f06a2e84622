// Package memo provides the memoized computation graph that backs a single
// build session. A Node is a named computation; reading it through a Session
// evaluates it at most once per session and caches the outcome, whether that
// outcome is a value or an error. Concurrent readers of the same node share
// one evaluation.
package memo

import (
	"context"
	"fmt"
	"sync"

	"github.com/tonyfettes/dune/internal/ctxlog"
)

// Session is one build run. It owns the cache of node outcomes; nothing is
// shared between sessions.
type Session struct {
	mu      sync.Mutex
	cells   map[*cellKey]*cell
	waiting map[*cellKey]*cellKey
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		cells:   make(map[*cellKey]*cell),
		waiting: make(map[*cellKey]*cellKey),
	}
}

// cellKey is an identity token. Every memoized node allocates one; the
// pointer itself is the cache key, so two nodes never collide.
type cellKey struct {
	name string
}

// cell holds the cached outcome of one node within one session.
type cell struct {
	done  chan struct{}
	value any
	err   error
}

// Node is a memoized computation producing a T. The zero value is not
// usable; construct nodes with NewNode, Pure, BindNode or MapNode.
type Node[T any] struct {
	key     *cellKey
	compute func(ctx context.Context, s *Session) (T, error)
}

// NewNode creates a memoized node. The name appears in logs and in cycle
// diagnostics; it does not have to be unique.
func NewNode[T any](name string, compute func(ctx context.Context, s *Session) (T, error)) *Node[T] {
	return &Node[T]{key: &cellKey{name: name}, compute: compute}
}

// Pure wraps an already-known value as a trivial node. Reading it incurs no
// session cache traffic.
func Pure[T any](v T) *Node[T] {
	return &Node[T]{compute: func(context.Context, *Session) (T, error) { return v, nil }}
}

// Suspend wraps a computation as an unmemoized node. Use it for outcomes
// that are already resolved or too cheap to be worth a cache cell.
func Suspend[T any](f func(ctx context.Context, s *Session) (T, error)) *Node[T] {
	return &Node[T]{compute: f}
}

// stackKey carries the evaluation stack through the context so re-entrant
// reads of an in-flight node can be reported as a dependency cycle instead
// of deadlocking on the shared cell.
type stackKey struct{}

func evalStack(ctx context.Context) []*cellKey {
	stack, _ := ctx.Value(stackKey{}).([]*cellKey)
	return stack
}

// Read evaluates the node within the session, or returns the cached outcome
// if this session evaluated it before. A cached error is returned as-is; a
// failing node is never recomputed within one session.
func (n *Node[T]) Read(ctx context.Context, s *Session) (T, error) {
	if n.key == nil {
		// Pure nodes have no identity and nothing worth caching.
		return n.compute(ctx, s)
	}
	stack := evalStack(ctx)

	s.mu.Lock()
	c, ok := s.cells[n.key]
	if !ok {
		c = &cell{done: make(chan struct{})}
		s.cells[n.key] = c
		s.mu.Unlock()

		ctxlog.FromContext(ctx).Debug("Evaluating memo node.", "node", n.key.name)
		evalCtx := context.WithValue(ctx, stackKey{}, append(stack, n.key))
		c.value, c.err = n.compute(evalCtx, s)
		close(c.done)
		return cellOutcome[T](c)
	}

	// Another reader owns the evaluation. Waiting is only safe if that
	// evaluation is not, directly or through other blocked readers,
	// waiting on a node this goroutine is itself evaluating. The check
	// and the wait registration happen under one lock hold, so two
	// readers closing a cycle cannot both slip past the check.
	if s.wouldDeadlock(stack, n.key) {
		s.mu.Unlock()
		var zero T
		return zero, fmt.Errorf("dependency cycle detected while computing %q", n.key.name)
	}
	for _, k := range stack {
		s.waiting[k] = n.key
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		for _, k := range stack {
			delete(s.waiting, k)
		}
		s.mu.Unlock()
	}()

	select {
	case <-c.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	return cellOutcome[T](c)
}

// wouldDeadlock reports whether blocking on target would close a wait cycle:
// following the wait-for edges of already-blocked evaluations from target
// reaches a node on this goroutine's own evaluation stack. Edges are only
// added after this check passes, so the wait-for graph stays acyclic and the
// walk terminates. The caller holds s.mu.
func (s *Session) wouldDeadlock(stack []*cellKey, target *cellKey) bool {
	mine := make(map[*cellKey]bool, len(stack))
	for _, k := range stack {
		mine[k] = true
	}
	for k := target; k != nil; k = s.waiting[k] {
		if mine[k] {
			return true
		}
	}
	return false
}

func cellOutcome[T any](c *cell) (T, error) {
	if c.err != nil {
		var zero T
		return zero, c.err
	}
	// Comma-ok keeps a cached nil interface value from panicking.
	v, _ := c.value.(T)
	return v, nil
}

// BindNode sequences two nodes: the derived node reads n, then reads the
// node produced by f. The derived node is itself memoized, so the whole
// chain is evaluated at most once per session.
func BindNode[A, B any](name string, n *Node[A], f func(A) *Node[B]) *Node[B] {
	return NewNode(name, func(ctx context.Context, s *Session) (B, error) {
		a, err := n.Read(ctx, s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a).Read(ctx, s)
	})
}

// MapNode applies a pure function to the node's value.
func MapNode[A, B any](name string, n *Node[A], f func(A) B) *Node[B] {
	return NewNode(name, func(ctx context.Context, s *Session) (B, error) {
		a, err := n.Read(ctx, s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a), nil
	})
}
