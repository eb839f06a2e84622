// Package action models descriptions of build steps. A Builder is a lazily
// described, fallible computation: constructing and combining builders never
// runs anything. Only Run forces the description, and a failure there
// terminates that one action without touching any other.
package action

import (
	"context"

	"github.com/tonyfettes/dune/internal/memo"
)

// Builder describes a build-step computation producing a T. Builders are
// immutable; every combinator returns a new one.
type Builder[T any] struct {
	run func(ctx context.Context, s *memo.Session) (T, error)
}

// Pure wraps an already-known value.
func Pure[T any](v T) Builder[T] {
	return Builder[T]{run: func(context.Context, *memo.Session) (T, error) { return v, nil }}
}

// Suspend wraps a fallible computation. The function is not called until the
// builder is run.
func Suspend[T any](f func(ctx context.Context, s *memo.Session) (T, error)) Builder[T] {
	return Builder[T]{run: f}
}

// OfNode embeds a memoized graph read into an action. The node is read
// through the running session, so its at-most-once caching is preserved.
func OfNode[T any](n *memo.Node[T]) Builder[T] {
	return Builder[T]{run: n.Read}
}

// Bind sequences two builders. The second is only described once the first
// has produced a value at run time.
func Bind[A, B any](b Builder[A], f func(A) Builder[B]) Builder[B] {
	return Builder[B]{run: func(ctx context.Context, s *memo.Session) (B, error) {
		a, err := b.run(ctx, s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a).run(ctx, s)
	}}
}

// Map applies a pure function to the builder's result.
func Map[A, B any](b Builder[A], f func(A) B) Builder[B] {
	return Builder[B]{run: func(ctx context.Context, s *memo.Session) (B, error) {
		a, err := b.run(ctx, s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a), nil
	}}
}

// All combines builders left to right into one producing all results. The
// first run-time failure wins and later builders are not run.
func All[T any](bs []Builder[T]) Builder[[]T] {
	return Builder[[]T]{run: func(ctx context.Context, s *memo.Session) ([]T, error) {
		out := make([]T, 0, len(bs))
		for _, b := range bs {
			v, err := b.run(ctx, s)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}}
}

// Run executes one action description against the session.
func Run[T any](ctx context.Context, s *memo.Session, b Builder[T]) (T, error) {
	return b.run(ctx, s)
}
