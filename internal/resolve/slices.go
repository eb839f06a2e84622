package resolve

// Traversal helpers over ordered inputs. All of them apply the per-element
// function to every element unconditionally (application is pure and cannot
// surface a deferred failure), then combine outcomes left to right: if every
// outcome succeeded the aggregate succeeds in input order, otherwise the
// first failure in input order wins and all later outcomes, including later
// failures, are discarded.

// MapSlice applies f to each element and collects the results.
func MapSlice[A, B any](xs []A, f func(A) Resolve[B]) Resolve[[]B] {
	return combine(xs, f, func(out *[]B, b B) { *out = append(*out, b) })
}

// FilterMapSlice applies f to each element and collects the present results,
// preserving input order.
func FilterMapSlice[A, B any](xs []A, f func(A) Resolve[*B]) Resolve[[]B] {
	return combine(xs, f, func(out *[]B, b *B) {
		if b != nil {
			*out = append(*out, *b)
		}
	})
}

// ConcatMapSlice applies f to each element and concatenates the resulting
// slices in input order.
func ConcatMapSlice[A, B any](xs []A, f func(A) Resolve[[]B]) Resolve[[]B] {
	return combine(xs, f, func(out *[]B, bs []B) { *out = append(*out, bs...) })
}

// IterSlice applies f to each element for its effect.
func IterSlice[A any](xs []A, f func(A) Resolve[Unit]) Resolve[Unit] {
	rs := make([]Resolve[Unit], len(xs))
	for i, x := range xs {
		rs[i] = f(x)
	}
	for _, r := range rs {
		if !r.ok {
			return r
		}
	}
	return Of(Unit{})
}

// FoldSlice threads an accumulator through the elements in order. Unlike the
// map-shaped helpers, folding is inherently sequential: the first failure
// stops the fold and the remaining elements are not visited.
func FoldSlice[A, Acc any](xs []A, init Acc, f func(Acc, A) Resolve[Acc]) Resolve[Acc] {
	acc := init
	for _, x := range xs {
		r := f(acc, x)
		if !r.ok {
			return r
		}
		acc = r.val
	}
	return Of(acc)
}

// All combines an already-built slice of resolutions: every success yields
// the values in order, otherwise the first failure wins.
func All[T any](rs []Resolve[T]) Resolve[[]T] {
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		if !r.ok {
			return Resolve[[]T]{err: r.err}
		}
		out = append(out, r.val)
	}
	return Of(out)
}

// IterOption applies f to the optional value, if present.
func IterOption[A any](opt *A, f func(A) Resolve[Unit]) Resolve[Unit] {
	if opt == nil {
		return Of(Unit{})
	}
	return f(*opt)
}

// combine is the shared map/filter/concat shape: apply everywhere, then
// first failure in input order wins.
func combine[A, B, Out any](xs []A, f func(A) Resolve[B], add func(*Out, B)) Resolve[Out] {
	rs := make([]Resolve[B], len(xs))
	for i, x := range xs {
		rs[i] = f(x)
	}
	var out Out
	for _, r := range rs {
		if !r.ok {
			return Resolve[Out]{err: r.err}
		}
		add(&out, r.val)
	}
	return Of(out)
}
