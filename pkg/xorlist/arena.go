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
)

const (
	// chunkShift is log2(chunkSize).
	chunkShift = 8

	// chunkSize is the number of node slots in each arena chunk. Chunks are
	// never moved once allocated, so pointers to elements stay valid while
	// their node is live.
	chunkSize = 1 << chunkShift // 256
)

// Addr names a node slot in an Arena. It plays the role of a node address in
// the link algebra: link words are XORs of Addrs.
//
// The low 32 bits hold the slot index plus one and the high 32 bits hold the
// slot's generation at allocation time. The zero Addr never names a node.
type Addr uint64

// nilAddr is the sentinel Addr, "no node here".
const nilAddr Addr = 0

func makeAddr(index, gen uint32) Addr {
	return Addr(uint64(gen)<<32 | uint64(index+1))
}

// index returns the slot index named by a.
//
// Precondition: a != nilAddr.
func (a Addr) index() uint32 {
	return uint32(a) - 1
}

// gen returns the generation recorded in a.
func (a Addr) gen() uint32 {
	return uint32(a >> 32)
}

// String implements fmt.Stringer.String.
func (a Addr) String() string {
	if a == nilAddr {
		return "nil"
	}
	return fmt.Sprintf("%d@%d", a.index(), a.gen())
}

// node owns exactly one element and one compressed link word.
type node[T any] struct {
	elem T

	// link is addr(prev) ^ addr(next), with nilAddr standing in for a
	// missing neighbour.
	link Addr

	// gen is incremented every time the slot is handed out.
	gen uint32
}

// Arena is the slot store backing one or more Lists. Nodes are placed in
// fixed-size chunks; freed slots are recycled lowest-index first.
//
// An Arena is not safe for concurrent mutation. Concurrent reads (iteration
// and parallel traversal) are safe as long as nothing allocates or removes.
type Arena[T any] struct {
	chunks []*[chunkSize]node[T]

	// live tracks which slots currently hold a node.
	live liveSet

	// freeHint is a lower bound on the lowest free slot.
	freeHint uint32
}

// NewArena returns an empty Arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Live returns the number of live nodes in the arena.
func (a *Arena[T]) Live() int {
	return int(a.live.live)
}

// Cap returns the number of slots the arena has allocated.
func (a *Arena[T]) Cap() int {
	return len(a.chunks) * chunkSize
}

func (a *Arena[T]) slot(i uint32) *node[T] {
	return &a.chunks[i>>chunkShift][i&(chunkSize-1)]
}

// alloc stores elem in a free slot and returns its address. The new node has
// an empty link word.
func (a *Arena[T]) alloc(elem T) Addr {
	i, ok := a.live.firstFree(a.freeHint)
	if !ok {
		i = uint32(len(a.chunks)) * chunkSize
		if i >= maxSlots {
			panic(fmt.Sprintf("arena exhausted: %d slots in use", a.live.live))
		}
		a.chunks = append(a.chunks, new([chunkSize]node[T]))
		a.live.grow(chunkSize)
	}
	a.live.add(i)
	a.freeHint = i + 1

	n := a.slot(i)
	n.gen++
	n.elem = elem
	n.link = nilAddr
	return makeAddr(i, n.gen)
}

// node returns the live node named by addr. It panics if addr is nil, out of
// range, free, or from an earlier generation of its slot.
func (a *Arena[T]) node(addr Addr) *node[T] {
	if addr == nilAddr {
		panic("access through nil address")
	}
	i := addr.index()
	if i >= uint32(len(a.chunks))*chunkSize {
		panic(fmt.Sprintf("address %v out of range (%d slots)", addr, a.Cap()))
	}
	if !a.live.contains(i) {
		panic(fmt.Sprintf("address %v refers to a free slot", addr))
	}
	n := a.slot(i)
	if n.gen != addr.gen() {
		panic(fmt.Sprintf("stale address %v: slot is at generation %d", addr, n.gen))
	}
	return n
}

// remove frees the node at addr and returns its element. addr must not be
// used again; a second remove of the same address panics.
func (a *Arena[T]) remove(addr Addr) T {
	n := a.node(addr)
	elem := n.elem

	var zero T
	n.elem = zero
	n.link = nilAddr

	i := addr.index()
	a.live.remove(i)
	if i < a.freeHint {
		a.freeHint = i
	}
	return elem
}
