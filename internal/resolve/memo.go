package resolve

import (
	"context"

	"github.com/tonyfettes/dune/internal/action"
	"github.com/tonyfettes/dune/internal/memo"
)

// Memo is a resolution produced as the output of a memoized graph node:
// conceptually a memo.Node of Resolve. The graph engine exclusively owns the
// node's sharing and caching: evaluating the same Memo twice in one session
// shares a single evaluation, including when that evaluation captures a
// failure. This package only owns the shape of the value the node produces.
type Memo[T any] struct {
	node *memo.Node[Resolve[T]]
}

// Node exposes the underlying graph node.
func (m Memo[T]) Node() *memo.Node[Resolve[T]] { return m.node }

// NewMemo creates a memoized resolution. The compute function runs at most
// once per session; its captured failures are cached like any other outcome.
func NewMemo[T any](name string, compute func(ctx context.Context, s *memo.Session) Resolve[T]) Memo[T] {
	return Memo[T]{node: memo.NewNode(name, func(ctx context.Context, s *memo.Session) (Resolve[T], error) {
		return compute(ctx, s), nil
	})}
}

// LiftNode wraps an always-succeeding graph computation.
func LiftNode[T any](n *memo.Node[T]) Memo[T] {
	return Memo[T]{node: memo.Suspend(func(ctx context.Context, s *memo.Session) (Resolve[T], error) {
		v, err := n.Read(ctx, s)
		if err != nil {
			var zero Resolve[T]
			return zero, err
		}
		return Of(v), nil
	})}
}

// Lift wraps an already-known resolution as a trivial node; no graph effect
// is incurred reading it.
func Lift[T any](r Resolve[T]) Memo[T] {
	return Memo[T]{node: memo.Suspend(func(context.Context, *memo.Session) (Resolve[T], error) {
		return r, nil
	})}
}

// BindMemo sequences two memoized resolutions: the graph effect's own
// sequencing first, then the inner success/failure short-circuit. Failure
// propagation never duplicates the short-circuit logic; it is exactly Bind
// run inside the node.
func BindMemo[A, B any](name string, m Memo[A], f func(A) Memo[B]) Memo[B] {
	return Memo[B]{node: memo.NewNode(name, func(ctx context.Context, s *memo.Session) (Resolve[B], error) {
		ra, err := m.node.Read(ctx, s)
		if err != nil {
			var zero Resolve[B]
			return zero, err
		}
		if v, ok := ra.Peek(); ok {
			return f(v).node.Read(ctx, s)
		}
		return Resolve[B]{err: ra.err}, nil
	})}
}

// MapMemo applies a pure function inside the memoized resolution.
func MapMemo[A, B any](name string, m Memo[A], f func(A) B) Memo[B] {
	return Memo[B]{node: memo.NewNode(name, func(ctx context.Context, s *memo.Session) (Resolve[B], error) {
		ra, err := m.node.Read(ctx, s)
		if err != nil {
			var zero Resolve[B]
			return zero, err
		}
		return Map(ra, f), nil
	})}
}

// PushStackFrameMemo attaches a context frame around a memoized resolution.
// The thunk produces the Memo rather than taking it directly, since
// obtaining it may itself require running further graph computation; the
// description stays unevaluated unless the failure is displayed.
func PushStackFrameMemo[T any](description func() string, thunk func() Memo[T]) Memo[T] {
	return Memo[T]{node: memo.Suspend(func(ctx context.Context, s *memo.Session) (Resolve[T], error) {
		r, err := thunk().node.Read(ctx, s)
		if err != nil {
			var zero Resolve[T]
			return zero, err
		}
		return PushStackFrame(description, r), nil
	})}
}

// Peek runs the node and inspects the outcome, discarding the diagnostic.
// The returned error is the graph engine's own failure (a dependency cycle,
// a canceled session), never a captured resolution failure.
func (m Memo[T]) Peek(ctx context.Context, s *memo.Session) (T, bool, error) {
	r, err := m.node.Read(ctx, s)
	if err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := r.Peek()
	return v, ok, nil
}

// IsOK runs the node and reports whether the resolution succeeded.
func (m Memo[T]) IsOK(ctx context.Context, s *memo.Session) (bool, error) {
	_, ok, err := m.Peek(ctx, s)
	return ok, err
}

// IsError runs the node and reports whether the resolution failed.
func (m Memo[T]) IsError(ctx context.Context, s *memo.Session) (bool, error) {
	ok, err := m.IsOK(ctx, s)
	return !ok, err
}

// Read lifts the memoized resolution into a build-action description.
// Constructing the action runs nothing; when the action executes it reads
// the node through the session (preserving at-most-once evaluation) and
// surfaces a captured failure as that action's error.
func (m Memo[T]) Read() action.Builder[T] {
	return action.Suspend(func(ctx context.Context, s *memo.Session) (T, error) {
		r, err := m.node.Read(ctx, s)
		if err != nil {
			var zero T
			return zero, err
		}
		v, h := r.ToResult()
		if h != nil {
			var zero T
			return zero, h
		}
		return v, nil
	})
}
