// Package resolve provides the deferred-result value used throughout rule
// generation. Resolving a named dependency can fail, but most rules never
// read the dependencies they mention; a Resolve captures the failure as
// inert data and only surfaces it when a build action actually consumes the
// value. Until then, building on a failed value is free: combinators
// short-circuit without reporting anything, and diagnostic context attached
// along the way stays unevaluated.
package resolve

import (
	"context"

	"github.com/tonyfettes/dune/internal/action"
	"github.com/tonyfettes/dune/internal/memo"
	"github.com/zclconf/go-cty/cty"
)

// Unit is the result type of resolutions performed only for their effect.
type Unit = struct{}

// Resolve is a tagged union: either a value or a captured failure. It is
// immutable once constructed; combinators always return a new value. The
// zero value is not usable; construct resolutions with Of, OfResult or
// Fail, which guarantee that a failure always carries a handle.
type Resolve[T any] struct {
	ok  bool
	val T
	err *ErrorHandle
}

// Of wraps a plain value.
func Of[T any](v T) Resolve[T] {
	return Resolve[T]{ok: true, val: v}
}

// OfResult wraps a conventional (value, error) pair from outside. A nil
// error wraps the value unchanged; a non-nil error is boxed opaquely into a
// fresh handle with no context frames. The error's payload is never
// inspected here; it is stored and forwarded as-is.
func OfResult[T any](v T, err error) Resolve[T] {
	if err == nil {
		return Of(v)
	}
	if h, ok := err.(*ErrorHandle); ok {
		return Resolve[T]{err: h}
	}
	return Resolve[T]{err: &ErrorHandle{cause: err}}
}

// ToResult exposes the value or the captured handle. The handle implements
// error, so this is the inverse of OfResult.
func (m Resolve[T]) ToResult() (T, *ErrorHandle) {
	return m.val, m.err
}

// Bind sequences two resolutions. A failed m short-circuits without calling
// f; the failure propagates untouched.
func Bind[A, B any](m Resolve[A], f func(A) Resolve[B]) Resolve[B] {
	if !m.ok {
		return Resolve[B]{err: m.err}
	}
	return f(m.val)
}

// Map applies a pure function to the value. A failed m short-circuits
// without calling f.
func Map[A, B any](m Resolve[A], f func(A) B) Resolve[B] {
	if !m.ok {
		return Resolve[B]{err: m.err}
	}
	return Of(f(m.val))
}

// Peek inspects the outcome immediately, discarding the diagnostic on
// failure. This is the escape hatch: callers branching on it must still
// route the original value through Read, Args or ReadMemo wherever the
// failure needs to be user-visible, so the real error is reported exactly
// once through the normal channel.
func (m Resolve[T]) Peek() (T, bool) {
	return m.val, m.ok
}

// IsOK reports whether the resolution succeeded.
func (m Resolve[T]) IsOK() bool { return m.ok }

// IsError reports whether the resolution failed.
func (m Resolve[T]) IsError() bool { return !m.ok }

// errHashSentinel is the shared hash bucket for all failures. Failures only
// compare equal by handle identity, so hashing them apart buys nothing.
const errHashSentinel = uint64(0x64756e65)

// Equal compares two resolutions. Values delegate to eq; failures are equal
// only when both sides hold the same handle instance. Distinct failures are
// never interchangeable, even if they would render identically.
func Equal[T any](eq func(a, b T) bool, a, b Resolve[T]) bool {
	if a.ok != b.ok {
		return false
	}
	if !a.ok {
		return a.err == b.err
	}
	return eq(a.val, b.val)
}

// Hash hashes the value via h; every failure hashes to one fixed sentinel,
// consistent with identity-only equality.
func Hash[T any](h func(T) uint64, m Resolve[T]) uint64 {
	if !m.ok {
		return errHashSentinel
	}
	return h(m.val)
}

// Read lifts the resolution into a build-action description. Constructing
// the action never inspects m; only when the action executes does a failure
// abort it, reporting the message and its context frames. Actions that
// never read m are unaffected.
func Read[T any](m Resolve[T]) action.Builder[T] {
	return action.Suspend(func(context.Context, *memo.Session) (T, error) {
		if m.err != nil {
			var zero T
			return zero, m.err
		}
		return m.val, nil
	})
}

// Args lifts a deferred argument list into an action so it can be spliced
// into a larger command line. It is Read specialized to argument fragments;
// combine fragments with action.All and flatten.
func Args(m Resolve[[]cty.Value]) action.Builder[[]cty.Value] {
	return Read(m)
}

// ReadMemo lifts the resolution into the memoized graph effect with the
// same fail-at-consumption contract as Read. The value is already resolved,
// so the node carries no cache cell of its own.
func ReadMemo[T any](m Resolve[T]) *memo.Node[T] {
	return memo.Suspend(func(context.Context, *memo.Session) (T, error) {
		if m.err != nil {
			var zero T
			return zero, m.err
		}
		return m.val, nil
	})
}
