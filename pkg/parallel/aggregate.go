// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"cmp"
	"context"
	"iter"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Number is the set of element types Sum accepts.
type Number interface {
	constraints.Integer | constraints.Float
}

// Fold folds every leaf sequentially, starting each from identity(), then
// merges leaf results in order with combine.
func Fold[T, A any, P Producer[T, P]](ctx context.Context, p P, opts Options, identity func() A, fold func(A, T) A, combine func(A, A) A) (A, error) {
	return Drive[T, A, P](ctx, p, opts, func(ctx context.Context, seq iter.Seq[T]) (A, error) {
		acc := identity()
		i := 0
		for v := range seq {
			if i++; i%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return acc, err
				}
			}
			acc = fold(acc, v)
		}
		return acc, nil
	}, combine)
}

// Reduce combines all elements with op, which must be associative.
// identity() must be a neutral element for op.
func Reduce[T any, P Producer[T, P]](ctx context.Context, p P, opts Options, identity func() T, op func(T, T) T) (T, error) {
	return Fold[T, T, P](ctx, p, opts, identity, op, op)
}

// ForEach calls fn on every element. Calls happen concurrently across leaves.
func ForEach[T any, P Producer[T, P]](ctx context.Context, p P, opts Options, fn func(T)) error {
	_, err := Fold[T, struct{}, P](ctx, p, opts,
		func() struct{} { return struct{}{} },
		func(s struct{}, v T) struct{} {
			fn(v)
			return s
		},
		func(struct{}, struct{}) struct{} { return struct{}{} })
	return err
}

// Sum returns the sum of all elements.
func Sum[T Number, P Producer[T, P]](ctx context.Context, p P, opts Options) (T, error) {
	return Reduce[T, P](ctx, p, opts,
		func() T { return 0 },
		func(a, b T) T { return a + b })
}

// Count returns the number of elements that satisfy pred.
func Count[T any, P Producer[T, P]](ctx context.Context, p P, opts Options, pred func(T) bool) (int, error) {
	return Fold[T, int, P](ctx, p, opts,
		func() int { return 0 },
		func(n int, v T) int {
			if pred(v) {
				n++
			}
			return n
		},
		func(a, b int) int { return a + b })
}

func concat[T any](a, b []T) []T {
	return append(a, b...)
}

// Map returns fn applied to every element, in producer order.
func Map[T, U any, P Producer[T, P]](ctx context.Context, p P, opts Options, fn func(T) U) ([]U, error) {
	return Fold[T, []U, P](ctx, p, opts,
		func() []U { return nil },
		func(out []U, v T) []U { return append(out, fn(v)) },
		concat[U])
}

// Filter returns the elements that satisfy pred, in producer order.
func Filter[T any, P Producer[T, P]](ctx context.Context, p P, opts Options, pred func(T) bool) ([]T, error) {
	return Fold[T, []T, P](ctx, p, opts,
		func() []T { return nil },
		func(out []T, v T) []T {
			if pred(v) {
				out = append(out, v)
			}
			return out
		},
		concat[T])
}

// Collect returns all elements in producer order.
func Collect[T any, P Producer[T, P]](ctx context.Context, p P, opts Options) ([]T, error) {
	return Fold[T, []T, P](ctx, p, opts,
		func() []T { return nil },
		func(out []T, v T) []T { return append(out, v) },
		concat[T])
}

// extremum is an optional element.
type extremum[T any] struct {
	v  T
	ok bool
}

func best[T cmp.Ordered](better func(a, b T) bool) func(a, b extremum[T]) extremum[T] {
	return func(a, b extremum[T]) extremum[T] {
		switch {
		case !a.ok:
			return b
		case !b.ok:
			return a
		case better(b.v, a.v):
			return b
		default:
			return a
		}
	}
}

func extreme[T cmp.Ordered, P Producer[T, P]](ctx context.Context, p P, opts Options, better func(a, b T) bool) (T, bool, error) {
	pick := best(better)
	e, err := Fold[T, extremum[T], P](ctx, p, opts,
		func() extremum[T] { return extremum[T]{} },
		func(acc extremum[T], v T) extremum[T] {
			return pick(acc, extremum[T]{v: v, ok: true})
		},
		pick)
	return e.v, e.ok, err
}

// Max returns the largest element. The bool is false if p is empty.
func Max[T cmp.Ordered, P Producer[T, P]](ctx context.Context, p P, opts Options) (T, bool, error) {
	return extreme[T, P](ctx, p, opts, func(a, b T) bool { return cmp.Less(b, a) })
}

// Min returns the smallest element. The bool is false if p is empty.
func Min[T cmp.Ordered, P Producer[T, P]](ctx context.Context, p P, opts Options) (T, bool, error) {
	return extreme[T, P](ctx, p, opts, cmp.Less[T])
}

// FindAny returns some element that satisfies pred, not necessarily the
// first. Once any leaf finds a match the others stop early.
func FindAny[T any, P Producer[T, P]](ctx context.Context, p P, opts Options, pred func(T) bool) (T, bool, error) {
	var stop atomic.Bool
	e, err := Drive[T, extremum[T], P](ctx, p, opts, func(ctx context.Context, seq iter.Seq[T]) (extremum[T], error) {
		i := 0
		for v := range seq {
			if stop.Load() {
				break
			}
			if i++; i%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return extremum[T]{}, err
				}
			}
			if pred(v) {
				stop.Store(true)
				return extremum[T]{v: v, ok: true}, nil
			}
		}
		return extremum[T]{}, nil
	}, func(a, b extremum[T]) extremum[T] {
		if a.ok {
			return a
		}
		return b
	})
	return e.v, e.ok, err
}

// Any reports whether some element satisfies pred.
func Any[T any, P Producer[T, P]](ctx context.Context, p P, opts Options, pred func(T) bool) (bool, error) {
	_, ok, err := FindAny[T, P](ctx, p, opts, pred)
	return ok, err
}

// All reports whether every element satisfies pred. It is true for an empty
// producer.
func All[T any, P Producer[T, P]](ctx context.Context, p P, opts Options, pred func(T) bool) (bool, error) {
	found, err := Any[T, P](ctx, p, opts, func(v T) bool { return !pred(v) })
	return !found, err
}
