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

// Package xorlist provides a doubly-traversable linked list that keeps a
// single link word per node. Each node stores addr(prev) XOR addr(next);
// walking in either direction only needs the address of the node the walk
// came from:
//
//	next = prev ^ link(curr)
//
// Addresses are handles into an Arena rather than machine pointers, so the
// garbage collector never sees a mangled pointer and every access is
// liveness-checked.
//
// The list header is two addresses, begin and end. A Producer splits a list
// into disjoint contiguous ranges for a divide-and-conquer parallel driver
// (see package parallel).
//
// Lists are not safe for concurrent use. Any number of readers (iterators,
// producers) may traverse a list at once, but no reader may be active while
// the list is being mutated. Use Guarded when that discipline must be
// enforced with a lock.
package xorlist

import (
	"fmt"
)

// LengthPolicy selects how a List answers Len.
type LengthPolicy int

const (
	// ComputeLength computes Len by walking the list. This keeps the header
	// at two addresses.
	ComputeLength LengthPolicy = iota

	// CountLength keeps an element counter that every push and pop
	// maintains, making Len O(1).
	CountLength
)

// String implements fmt.Stringer.String.
func (p LengthPolicy) String() string {
	switch p {
	case ComputeLength:
		return "computed"
	case CountLength:
		return "counted"
	default:
		return fmt.Sprintf("LengthPolicy(%d)", int(p))
	}
}

// ParseLengthPolicy parses the String form of a LengthPolicy.
func ParseLengthPolicy(s string) (LengthPolicy, error) {
	switch s {
	case "computed":
		return ComputeLength, nil
	case "counted":
		return CountLength, nil
	default:
		return 0, fmt.Errorf("invalid length policy %q, must be one of: computed, counted", s)
	}
}

// MarshalText implements encoding.TextMarshaler.MarshalText.
func (p LengthPolicy) MarshalText() ([]byte, error) {
	switch p {
	case ComputeLength, CountLength:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("invalid length policy %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.UnmarshalText.
func (p *LengthPolicy) UnmarshalText(b []byte) error {
	v, err := ParseLengthPolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// List is a XOR-linked list.
//
// The zero value for List is an empty list with the ComputeLength policy,
// ready to use. Its arena is created on the first push.
type List[T any] struct {
	arena *Arena[T]

	// begin and end address the first and last node, or are both nil.
	begin Addr
	end   Addr

	policy LengthPolicy

	// length is maintained only under CountLength.
	length int
}

// New returns an empty list with a private arena.
func New[T any](policy LengthPolicy) *List[T] {
	return NewInArena(NewArena[T](), policy)
}

// NewInArena returns an empty list whose nodes live in a. Lists sharing an
// arena can be concatenated in O(1) with PushBackList.
func NewInArena[T any](a *Arena[T], policy LengthPolicy) *List[T] {
	return &List[T]{
		arena:  a,
		policy: policy,
	}
}

// Arena returns the arena holding l's nodes, or nil if l has never held any.
func (l *List[T]) Arena() *Arena[T] {
	return l.arena
}

// Policy returns the length policy l was created with.
func (l *List[T]) Policy() LengthPolicy {
	return l.policy
}

// checkBounds panics if begin and end disagree about emptiness. That can only
// happen if the link structure has been corrupted, and there is no redundant
// information to repair it from.
func (l *List[T]) checkBounds() {
	if (l.begin == nilAddr) != (l.end == nilAddr) {
		panic(fmt.Sprintf("invalid list state: begin=%v end=%v", l.begin, l.end))
	}
}

// Empty returns true iff the list is empty.
func (l *List[T]) Empty() bool {
	l.checkBounds()
	return l.begin == nilAddr
}

// Len returns the number of elements in the list.
//
// NOTE: This is an O(n) operation under ComputeLength.
func (l *List[T]) Len() int {
	if l.policy == CountLength {
		return l.length
	}
	count := 0
	for it := l.Iter(); ; count++ {
		if _, ok := it.Next(); !ok {
			return count
		}
	}
}

// Front returns the first element of l.
func (l *List[T]) Front() (T, bool) {
	if l.Empty() {
		var zero T
		return zero, false
	}
	return l.arena.value(l.begin), true
}

// Back returns the last element of l.
func (l *List[T]) Back() (T, bool) {
	if l.Empty() {
		var zero T
		return zero, false
	}
	return l.arena.value(l.end), true
}

// PushBack appends elem to l and returns a pointer to the stored element. The
// pointer stays valid until the element is popped.
func (l *List[T]) PushBack(elem T) *T {
	l.checkBounds()
	if l.arena == nil {
		l.arena = NewArena[T]()
	}
	addr := l.arena.alloc(elem)
	if l.policy == CountLength {
		l.length++
	}

	if l.begin == nilAddr {
		l.begin = addr
		l.end = addr
	} else {
		l.arena.link(l.end, addr)
		l.end = addr
	}
	return l.arena.ref(addr)
}

// PopBack removes and returns the last element of l.
func (l *List[T]) PopBack() (T, bool) {
	if l.Empty() {
		var zero T
		return zero, false
	}
	if l.policy == CountLength {
		l.length--
	}

	old := l.end
	if l.begin == old {
		l.begin = nilAddr
		l.end = nilAddr
		return l.arena.consume(old), true
	}

	prev := l.arena.next(nilAddr, old)
	l.arena.link(prev, old)
	l.end = prev
	return l.arena.consume(old), true
}

// PopFront removes and returns the first element of l.
func (l *List[T]) PopFront() (T, bool) {
	if l.Empty() {
		var zero T
		return zero, false
	}
	if l.policy == CountLength {
		l.length--
	}

	old := l.begin
	if l.end == old {
		l.begin = nilAddr
		l.end = nilAddr
		return l.arena.consume(old), true
	}

	next := l.arena.next(nilAddr, old)
	l.arena.link(next, old)
	l.begin = next
	return l.arena.consume(old), true
}

// PushBackList appends the elements of m to l in order, emptying m.
//
// If both lists live in the same arena (or l has no arena yet) the nodes are
// spliced in O(1) and keep their addresses. Otherwise every element is moved
// across, which is O(len(m)).
func (l *List[T]) PushBackList(m *List[T]) {
	if l == m {
		panic("appending a list to itself")
	}
	l.checkBounds()
	if m.Empty() {
		return
	}
	if l.arena == nil && l.begin == nilAddr {
		l.arena = m.arena
	}
	if l.arena != m.arena {
		for {
			elem, ok := m.PopFront()
			if !ok {
				return
			}
			l.PushBack(elem)
		}
	}

	if l.policy == CountLength {
		l.length += m.Len()
	}
	if l.begin == nilAddr {
		l.begin = m.begin
	} else {
		l.arena.link(l.end, m.begin)
	}
	l.end = m.end

	m.begin = nilAddr
	m.end = nilAddr
	m.length = 0
}

// Release pops every element, returning all of l's slots to its arena. The
// list is empty and reusable afterwards.
func (l *List[T]) Release() {
	for {
		if _, ok := l.PopBack(); !ok {
			return
		}
	}
}
