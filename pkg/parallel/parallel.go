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

// Package parallel drives splittable producers with fork/join parallelism.
//
// A producer is halved recursively while the split budget lasts and the
// halves stay at least MinLen long. Each leaf is drained sequentially on its
// own goroutine, and leaf results are combined strictly left to right, so
// order-sensitive results (Map, Filter, Collect) match a sequential pass.
package parallel

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gvisor.dev/xorlist/pkg/log"
)

// Producer is a length-bounded sequence that can be split in two. P is the
// producer type itself.
type Producer[T, P any] interface {
	// Len returns the number of elements.
	Len() int

	// SplitAt returns the elements [0, mid) and [mid, Len()).
	SplitAt(mid int) (P, P)

	// All returns the elements in order.
	All() iter.Seq[T]
}

// Options controls how far producers are split.
type Options struct {
	// MinLen is the smallest length a split may produce. Values below 1 are
	// treated as 1.
	MinLen int

	// Splits bounds the number of leaves. Each split halves the budget
	// available to each side, and a producer is not split once its budget
	// is 1.
	Splits int
}

// DefaultOptions returns Options that split into roughly one leaf per
// available CPU.
func DefaultOptions() Options {
	return Options{
		MinLen: 1,
		Splits: runtime.GOMAXPROCS(0),
	}
}

func (o Options) normalize() Options {
	if o.MinLen < 1 {
		o.MinLen = 1
	}
	if o.Splits < 1 {
		o.Splits = 1
	}
	return o
}

// checkEvery is how many elements a leaf processes between checks for
// cancellation.
const checkEvery = 1024

var splitLog = log.BasicRateLimitedLogger(100 * time.Millisecond)

// Drive splits p according to opts, runs leaf on every piece concurrently, and
// folds the leaf results together in order with combine.
//
// The only errors are those returned by leaf and context cancellation.
func Drive[T, A any, P Producer[T, P]](ctx context.Context, p P, opts Options, leaf func(ctx context.Context, seq iter.Seq[T]) (A, error), combine func(left, right A) A) (A, error) {
	opts = opts.normalize()
	a, err := drive[T, A, P](ctx, p, opts.Splits, opts.MinLen, leaf, combine)
	if err != nil {
		return a, fmt.Errorf("parallel traversal of %d elements: %w", p.Len(), err)
	}
	return a, nil
}

func drive[T, A any, P Producer[T, P]](ctx context.Context, p P, splits, minLen int, leaf func(context.Context, iter.Seq[T]) (A, error), combine func(A, A) A) (A, error) {
	var zero A
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	n := p.Len()
	if splits <= 1 || n < 2*minLen {
		return leaf(ctx, p.All())
	}

	mid := n / 2
	left, right := p.SplitAt(mid)
	if splitLog.IsLogging(log.Debug) {
		splitLog.Debugf("split %d elements into %d+%d, budget %d", n, mid, n-mid, splits)
	}

	var la, ra A
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		la, err = drive[T, A, P](gctx, left, splits/2, minLen, leaf, combine)
		return err
	})
	g.Go(func() error {
		var err error
		ra, err = drive[T, A, P](gctx, right, splits-splits/2, minLen, leaf, combine)
		return err
	})
	if err := g.Wait(); err != nil {
		return zero, err
	}
	return combine(la, ra), nil
}
