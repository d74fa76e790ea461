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
	"sync"
)

// Guarded is a List protected by a reader/writer lock. Readers share the
// list, including across a parallel traversal; a writer has it alone.
//
// The zero value for Guarded is an empty ComputeLength list, ready to use.
type Guarded[T any] struct {
	mu sync.RWMutex

	// +checklocks:mu
	list List[T]
}

// NewGuarded returns an empty Guarded list using the given length policy.
func NewGuarded[T any](policy LengthPolicy) *Guarded[T] {
	g := &Guarded[T]{}
	g.list.policy = policy
	return g
}

// Read calls fn with the list held for reading. fn must not mutate the list,
// and neither the list nor anything derived from it (iterators, producers,
// element pointers) may be retained after fn returns.
func (g *Guarded[T]) Read(fn func(l *List[T])) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(&g.list)
}

// Write calls fn with the list held exclusively.
func (g *Guarded[T]) Write(fn func(l *List[T])) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.list)
}
