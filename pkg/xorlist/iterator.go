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
	"iter"
)

// cursor walks the link algebra in one direction. Which direction depends only
// on which end it starts from.
type cursor[T any] struct {
	arena *Arena[T]
	prev  Addr
	curr  Addr
}

// step returns the current address and advances, or returns nil at the end.
func (c *cursor[T]) step() Addr {
	if c.curr == nilAddr {
		return nilAddr
	}
	addr := c.curr
	c.prev, c.curr = addr, c.arena.next(c.prev, addr)
	return addr
}

// Iterator yields the elements of a List by value, front to back or back to
// front. The list must not be mutated while an Iterator is in use.
type Iterator[T any] struct {
	c cursor[T]
}

// Next returns the next element, or false once the sequence is exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	addr := it.c.step()
	if addr == nilAddr {
		var zero T
		return zero, false
	}
	return it.c.arena.value(addr), true
}

// MutIterator yields pointers to the elements of a List. No other access to
// the list may happen while a MutIterator is in use.
type MutIterator[T any] struct {
	c cursor[T]
}

// Next returns a pointer to the next element, or false once the sequence is
// exhausted.
func (it *MutIterator[T]) Next() (*T, bool) {
	addr := it.c.step()
	if addr == nilAddr {
		return nil, false
	}
	return it.c.arena.ref(addr), true
}

func (l *List[T]) cursor(reverse bool) cursor[T] {
	l.checkBounds()
	c := cursor[T]{arena: l.arena, curr: l.begin}
	if reverse {
		c.curr = l.end
	}
	return c
}

// Iter returns an iterator from the front of l to the back.
func (l *List[T]) Iter() *Iterator[T] {
	return &Iterator[T]{c: l.cursor(false)}
}

// IterRev returns an iterator from the back of l to the front.
func (l *List[T]) IterRev() *Iterator[T] {
	return &Iterator[T]{c: l.cursor(true)}
}

// IterMut returns a mutable iterator from the front of l to the back.
func (l *List[T]) IterMut() *MutIterator[T] {
	return &MutIterator[T]{c: l.cursor(false)}
}

// IterMutRev returns a mutable iterator from the back of l to the front.
func (l *List[T]) IterMutRev() *MutIterator[T] {
	return &MutIterator[T]{c: l.cursor(true)}
}

// All returns an iterator over the elements of l, front to back.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for it := l.Iter(); ; {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Backward returns an iterator over the elements of l, back to front.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for it := l.IterRev(); ; {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// AllMut returns an iterator over pointers to the elements of l, front to
// back.
func (l *List[T]) AllMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for it := l.IterMut(); ; {
			p, ok := it.Next()
			if !ok || !yield(p) {
				return
			}
		}
	}
}

// BackwardMut returns an iterator over pointers to the elements of l, back to
// front.
func (l *List[T]) BackwardMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for it := l.IterMutRev(); ; {
			p, ok := it.Next()
			if !ok || !yield(p) {
				return
			}
		}
	}
}
