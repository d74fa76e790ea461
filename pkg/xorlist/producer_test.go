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

package xorlist

import (
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func drainBack(p Producer[int]) []int {
	var out []int
	it := p.IntoIter()
	for {
		v, ok := it.NextBack()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestProducerLen(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, policy LengthPolicy) {
		for _, n := range []int{0, 1, 2, 100} {
			if got := newIntList(policy, n).Producer().Len(); got != n {
				t.Errorf("Producer().Len() = %d, want %d", got, n)
			}
		}
	})
}

func TestSplitAtEveryPoint(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 17} {
		l := newIntList(CountLength, n)
		want := seq(n)
		for mid := 0; mid <= n; mid++ {
			left, right := l.Producer().SplitAt(mid)
			if left.Len() != mid || right.Len() != n-mid {
				t.Errorf("n=%d mid=%d: lengths %d, %d", n, mid, left.Len(), right.Len())
			}
			got := append(slices.Collect(left.All()), slices.Collect(right.All())...)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("n=%d mid=%d: forward concatenation mismatch (-want +got):\n%s", n, mid, diff)
			}

			// Backward traversal of each half must stop at the split too.
			back := append(drainBack(right), drainBack(left)...)
			wantBack := slices.Clone(want)
			slices.Reverse(wantBack)
			if len(wantBack) == 0 {
				wantBack = nil
			}
			if diff := cmp.Diff(wantBack, back); diff != "" {
				t.Errorf("n=%d mid=%d: backward concatenation mismatch (-want +got):\n%s", n, mid, diff)
			}
		}
	}
}

// splitRandomly splits p at random points until pieces are at most leaf long
// and returns the pieces in order.
func splitRandomly(r *rand.Rand, p Producer[int], leaf int) []Producer[int] {
	if p.Len() <= leaf {
		return []Producer[int]{p}
	}
	left, right := p.SplitAt(r.Intn(p.Len() + 1))
	return append(splitRandomly(r, left, leaf), splitRandomly(r, right, leaf)...)
}

func TestSplitLawRecursive(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, n := range []int{1, 2, 100, 1000} {
		l := newIntList(ComputeLength, n)
		for trial := 0; trial < 20; trial++ {
			pieces := splitRandomly(r, l.Producer(), 1+r.Intn(8))
			var fwd, back []int
			total := 0
			for _, p := range pieces {
				total += p.Len()
				fwd = append(fwd, slices.Collect(p.All())...)
			}
			for i := len(pieces) - 1; i >= 0; i-- {
				back = append(back, drainBack(pieces[i])...)
			}
			if total != n {
				t.Fatalf("n=%d trial=%d: piece lengths sum to %d", n, trial, total)
			}
			if diff := cmp.Diff(seq(n), fwd); diff != "" {
				t.Fatalf("n=%d trial=%d: forward mismatch (-want +got):\n%s", n, trial, diff)
			}
			slices.Reverse(back)
			if diff := cmp.Diff(seq(n), back); diff != "" {
				t.Fatalf("n=%d trial=%d: backward mismatch (-want +got):\n%s", n, trial, diff)
			}
		}
	}
}

func TestSplitAtOutOfRangePanics(t *testing.T) {
	p := newIntList(ComputeLength, 3).Producer()
	mustPanic(t, "SplitAt(4)", func() { p.SplitAt(4) })
	mustPanic(t, "SplitAt(-1)", func() { p.SplitAt(-1) })

	left, _ := p.SplitAt(1)
	mustPanic(t, "left.SplitAt(2)", func() { left.SplitAt(2) })
}

func TestSeqIterMixedEnds(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 6} {
		_, right := newIntList(ComputeLength, n+2).Producer().SplitAt(1)
		mid, _ := right.SplitAt(n)
		it := mid.IntoIter()
		var got []int
		for i := 0; ; i++ {
			if it.Len() != n-len(got) {
				t.Fatalf("n=%d: Len() = %d after %d elements", n, it.Len(), len(got))
			}
			var (
				v  int
				ok bool
			)
			if i%2 == 0 {
				v, ok = it.Next()
			} else {
				v, ok = it.NextBack()
			}
			if !ok {
				break
			}
			got = append(got, v)
		}
		slices.Sort(got)
		want := make([]int, n)
		for i := range want {
			want[i] = i + 1
		}
		if len(want) == 0 {
			want = nil
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("n=%d: mixed-end traversal mismatch (-want +got):\n%s", n, diff)
		}
		if _, ok := it.NextBack(); ok {
			t.Errorf("n=%d: NextBack() yielded after exhaustion", n)
		}
	}
}

func TestProducerConcurrentHalves(t *testing.T) {
	const n = 10000
	l := newIntList(CountLength, n)
	pieces := splitRandomly(rand.New(rand.NewSource(2)), l.Producer(), 64)
	sums := make([]int, len(pieces))
	var wg sync.WaitGroup
	for i, p := range pieces {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range p.All() {
				sums[i] += v
			}
		}()
	}
	wg.Wait()
	total := 0
	for _, s := range sums {
		total += s
	}
	if want := n * (n - 1) / 2; total != want {
		t.Errorf("sum over concurrent pieces = %d, want %d", total, want)
	}
}
