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
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gvisor.dev/xorlist/pkg/xorlist"
)

// wide splits down to single elements.
var wide = Options{MinLen: 1, Splits: 1 << 10}

var sizes = []int{0, 1, 2, 100, 10000}

func newList(n int) *xorlist.List[int] {
	l := xorlist.New[int](xorlist.ComputeLength)
	for i := 0; i < n; i++ {
		l.PushBack(i)
	}
	return l
}

func seq(n int) []int {
	if n == 0 {
		return nil
	}
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// leaves records the length of every leaf Drive produces.
func leaves(t *testing.T, p xorlist.Producer[int], opts Options) []int {
	t.Helper()
	var mu sync.Mutex
	var got []int
	_, err := Drive[int, struct{}](context.Background(), p, opts, func(_ context.Context, s iter.Seq[int]) (struct{}, error) {
		n := 0
		for range s {
			n++
		}
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
		return struct{}{}, nil
	}, func(struct{}, struct{}) struct{} { return struct{}{} })
	if err != nil {
		t.Fatalf("Drive failed: %v", err)
	}
	return got
}

func TestDriveSplitting(t *testing.T) {
	for _, tc := range []struct {
		name   string
		n      int
		opts   Options
		leaves int
	}{
		{name: "no budget", n: 100, opts: Options{MinLen: 1, Splits: 1}, leaves: 1},
		{name: "zero options", n: 100, opts: Options{}, leaves: 1},
		{name: "budget of four", n: 100, opts: Options{MinLen: 1, Splits: 4}, leaves: 4},
		{name: "min len bounds", n: 100, opts: Options{MinLen: 30, Splits: 64}, leaves: 2},
		{name: "too short to split", n: 5, opts: Options{MinLen: 3, Splits: 64}, leaves: 1},
		{name: "single elements", n: 16, opts: wide, leaves: 16},
		{name: "empty", n: 0, opts: wide, leaves: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := leaves(t, newList(tc.n).Producer(), tc.opts)
			if len(got) != tc.leaves {
				t.Errorf("got %d leaves %v, want %d", len(got), got, tc.leaves)
			}
			total := 0
			for _, n := range got {
				if n < tc.opts.normalize().MinLen && tc.n >= tc.opts.normalize().MinLen {
					t.Errorf("leaf of length %d is shorter than MinLen %d", n, tc.opts.MinLen)
				}
				total += n
			}
			if total != tc.n {
				t.Errorf("leaves cover %d elements, want %d", total, tc.n)
			}
		})
	}
}

func TestSumScenario(t *testing.T) {
	l := newList(1000)
	seqSum := 0
	for v := range l.All() {
		seqSum += v
	}
	parSum, err := Sum[int](context.Background(), l.Producer(), DefaultOptions())
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if seqSum != 499500 || parSum != 499500 {
		t.Errorf("sequential sum %d, parallel sum %d, want 499500", seqSum, parSum)
	}
}

func TestAggregatesMatchSequential(t *testing.T) {
	ctx := context.Background()
	even := func(v int) bool { return v%2 == 0 }
	double := func(v int) int { return 2 * v }
	for _, n := range sizes {
		for _, opts := range []Options{wide, DefaultOptions(), {MinLen: 64, Splits: 8}} {
			t.Run(fmt.Sprintf("n=%d/minlen=%d/splits=%d", n, opts.MinLen, opts.Splits), func(t *testing.T) {
				l := newList(n)
				want := seq(n)

				got, err := Collect[int](ctx, l.Producer(), opts)
				if err != nil {
					t.Fatalf("Collect failed: %v", err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("Collect mismatch (-want +got):\n%s", diff)
				}

				var wantMapped, wantEven []int
				wantSum, wantCount := 0, 0
				for _, v := range want {
					wantMapped = append(wantMapped, double(v))
					wantSum += v
					if even(v) {
						wantEven = append(wantEven, v)
						wantCount++
					}
				}

				mapped, err := Map(ctx, l.Producer(), opts, double)
				if err != nil {
					t.Fatalf("Map failed: %v", err)
				}
				if diff := cmp.Diff(wantMapped, mapped); diff != "" {
					t.Errorf("Map mismatch (-want +got):\n%s", diff)
				}

				filtered, err := Filter(ctx, l.Producer(), opts, even)
				if err != nil {
					t.Fatalf("Filter failed: %v", err)
				}
				if diff := cmp.Diff(wantEven, filtered); diff != "" {
					t.Errorf("Filter mismatch (-want +got):\n%s", diff)
				}

				if sum, err := Sum[int](ctx, l.Producer(), opts); err != nil || sum != wantSum {
					t.Errorf("Sum = %d, %v, want %d", sum, err, wantSum)
				}
				if count, err := Count(ctx, l.Producer(), opts, even); err != nil || count != wantCount {
					t.Errorf("Count = %d, %v, want %d", count, err, wantCount)
				}

				folded, err := Fold(ctx, l.Producer(), opts,
					func() int64 { return 0 },
					func(acc int64, v int) int64 { return acc + int64(v) },
					func(a, b int64) int64 { return a + b })
				if err != nil || folded != int64(wantSum) {
					t.Errorf("Fold = %d, %v, want %d", folded, err, wantSum)
				}

				var visited atomic.Int64
				if err := ForEach(ctx, l.Producer(), opts, func(int) { visited.Add(1) }); err != nil {
					t.Errorf("ForEach failed: %v", err)
				}
				if got := visited.Load(); got != int64(n) {
					t.Errorf("ForEach visited %d elements, want %d", got, n)
				}

				hi, ok, err := Max[int](ctx, l.Producer(), opts)
				if err != nil || ok != (n > 0) || (ok && hi != n-1) {
					t.Errorf("Max = %d, %t, %v, want %d, %t", hi, ok, err, n-1, n > 0)
				}
				lo, ok, err := Min[int](ctx, l.Producer(), opts)
				if err != nil || ok != (n > 0) || (ok && lo != 0) {
					t.Errorf("Min = %d, %t, %v, want 0, %t", lo, ok, err, n > 0)
				}
			})
		}
	}
}

func TestReduceOrdered(t *testing.T) {
	l := xorlist.New[string](xorlist.CountLength)
	var want string
	for i := 0; i < 200; i++ {
		s := fmt.Sprintf("%d,", i)
		l.PushBack(s)
		want += s
	}
	got, err := Reduce(context.Background(), l.Producer(), wide,
		func() string { return "" },
		func(a, b string) string { return a + b })
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if got != want {
		t.Errorf("Reduce lost element order:\n got %q\nwant %q", got, want)
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	for _, n := range sizes {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			p := newList(n).Producer()
			target := n / 2

			v, ok, err := FindAny(ctx, p, wide, func(v int) bool { return v == target })
			if err != nil {
				t.Fatalf("FindAny failed: %v", err)
			}
			if ok != (n > 0) || (ok && v != target) {
				t.Errorf("FindAny = %d, %t, want %d, %t", v, ok, target, n > 0)
			}

			if found, err := Any(ctx, p, wide, func(v int) bool { return v < 0 }); err != nil || found {
				t.Errorf("Any(negative) = %t, %v, want false", found, err)
			}
			if all, err := All(ctx, p, wide, func(v int) bool { return v >= 0 }); err != nil || !all {
				t.Errorf("All(non-negative) = %t, %v, want true", all, err)
			}
			if all, err := All(ctx, p, wide, func(v int) bool { return v != target }); err != nil || all != (n == 0) {
				t.Errorf("All(!= %d) = %t, %v, want %t", target, all, err, n == 0)
			}
		})
	}
}

func TestFindAnyStopsEarly(t *testing.T) {
	const n = 1 << 16
	var checked atomic.Int64
	// One leaf, so the stop flag is observed on the very next element.
	_, ok, err := FindAny(context.Background(), newList(n).Producer(), Options{MinLen: 1, Splits: 1}, func(v int) bool {
		checked.Add(1)
		return v == 10
	})
	if err != nil || !ok {
		t.Fatalf("FindAny = %t, %v, want a match", ok, err)
	}
	if got := checked.Load(); got != 11 {
		t.Errorf("predicate evaluated %d times, want 11", got)
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sum[int](ctx, newList(100).Producer(), wide)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sum on a cancelled context returned %v, want %v", err, context.Canceled)
	}
}

func TestCancelDuringLeaf(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var once sync.Once
	_, err := Count(ctx, newList(4*checkEvery).Producer(), Options{MinLen: 1, Splits: 1}, func(int) bool {
		once.Do(cancel)
		return true
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Count returned %v, want %v", err, context.Canceled)
	}
}

func TestLeafErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	_, err := Drive[int, int](context.Background(), newList(64).Producer(), wide, func(_ context.Context, s iter.Seq[int]) (int, error) {
		for v := range s {
			if v == 40 {
				return 0, boom
			}
		}
		return 1, nil
	}, func(a, b int) int { return a + b })
	if !errors.Is(err, boom) {
		t.Errorf("Drive returned %v, want %v", err, boom)
	}
}

func TestSharedArenaAfterSplice(t *testing.T) {
	a := newList(50)
	b := xorlist.NewInArena(a.Arena(), xorlist.CountLength)
	for i := 50; i < 100; i++ {
		b.PushBack(i)
	}
	a.PushBackList(b)
	got, err := Collect[int](context.Background(), a.Producer(), wide)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if diff := cmp.Diff(seq(100), got); diff != "" {
		t.Errorf("Collect after splice mismatch (-want +got):\n%s", diff)
	}
	if !slices.Equal(got, slices.Collect(a.All())) {
		t.Errorf("parallel and sequential traversal disagree")
	}
}
