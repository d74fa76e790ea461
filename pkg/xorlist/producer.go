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
	"fmt"
	"iter"
)

// Producer is a contiguous, length-bounded range of a List that can be split
// in two. It is the unit a divide-and-conquer driver halves recursively
// before draining each piece sequentially.
//
// A range [start, end] carries the addresses just outside it: prevStart
// precedes start and prevEnd follows end. Stepping forward from start stops
// on reaching prevEnd, and stepping backward from end stops on reaching
// prevStart, so no traversal ever crosses into a sibling range.
//
// Producers obtained from the same SplitAt address disjoint nodes and may be
// traversed concurrently. The list must not be mutated while any of its
// producers is in use.
type Producer[T any] struct {
	arena     *Arena[T]
	prevStart Addr
	start     Addr
	end       Addr
	prevEnd   Addr
	length    int
}

// Producer returns a producer covering all of l. Len is taken once, so under
// ComputeLength this walks the list.
func (l *List[T]) Producer() Producer[T] {
	l.checkBounds()
	return Producer[T]{
		arena:  l.arena,
		start:  l.begin,
		end:    l.end,
		length: l.Len(),
	}
}

// Len returns the number of elements in p.
func (p Producer[T]) Len() int {
	return p.length
}

// SplitAt splits p into [0, mid) and [mid, Len()).
//
// The boundary is found by walking mid nodes from the front, so a split
// costs O(mid). There is no random access to shortcut it.
//
// Precondition: 0 <= mid <= p.Len().
func (p Producer[T]) SplitAt(mid int) (Producer[T], Producer[T]) {
	if mid < 0 || mid > p.length {
		panic(fmt.Sprintf("split point %d out of range [0, %d]", mid, p.length))
	}

	prev, curr := p.prevStart, p.start
	for i := 0; i < mid; i++ {
		prev, curr = curr, p.arena.next(prev, curr)
	}

	left := Producer[T]{
		arena:     p.arena,
		prevStart: p.prevStart,
		start:     p.start,
		end:       prev,
		prevEnd:   curr,
		length:    mid,
	}
	right := Producer[T]{
		arena:     p.arena,
		prevStart: prev,
		start:     curr,
		end:       p.end,
		prevEnd:   p.prevEnd,
		length:    p.length - mid,
	}
	return left, right
}

// IntoIter returns a double-ended iterator over p.
func (p Producer[T]) IntoIter() *SeqIter[T] {
	return &SeqIter[T]{p: p}
}

// All returns an iterator over the elements of p, front to back.
func (p Producer[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for it := p.IntoIter(); ; {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// SeqIter drains a Producer from either end. Front and back stepping may be
// mixed; together they yield every element of the range exactly once.
type SeqIter[T any] struct {
	// p is consumed in place: p.start/p.prevStart advance on Next and
	// p.end/p.prevEnd retreat on NextBack. p.length counts the elements not
	// yet yielded.
	p Producer[T]
}

// Len returns the number of elements not yet yielded.
func (it *SeqIter[T]) Len() int {
	return it.p.length
}

// Next returns the element at the front of the remaining range.
func (it *SeqIter[T]) Next() (T, bool) {
	p := &it.p
	if p.length == 0 || p.start == nilAddr || p.start == p.prevEnd {
		var zero T
		return zero, false
	}
	addr := p.start
	p.prevStart, p.start = addr, p.arena.next(p.prevStart, addr)
	p.length--
	return p.arena.value(addr), true
}

// NextBack returns the element at the back of the remaining range.
func (it *SeqIter[T]) NextBack() (T, bool) {
	p := &it.p
	if p.length == 0 || p.end == nilAddr || p.end == p.prevStart {
		var zero T
		return zero, false
	}
	addr := p.end
	p.prevEnd, p.end = addr, p.arena.next(p.prevEnd, addr)
	p.length--
	return p.arena.value(addr), true
}
