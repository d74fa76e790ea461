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
	"math"
	"math/bits"
)

// maxSlots is the upper limit on the number of slots an Arena can hold. Slot
// indices are stored off by one in the low half of an Addr, so the limit
// keeps index+1 representable.
const maxSlots uint32 = math.MaxInt32

// liveSet records which arena slots currently hold a node. Bit i is set iff
// slot i is live.
type liveSet struct {
	// live is the number of set bits.
	live uint32

	// words holds the bits, 64 slots per word.
	words []uint64
}

// size returns the number of slots the set can describe without growing.
func (s *liveSet) size() uint32 {
	return uint32(len(s.words)) * 64
}

// grow extends the set by at least n slots, all initially free.
func (s *liveSet) grow(n uint32) {
	s.words = append(s.words, make([]uint64, (n+63)/64)...)
}

// contains reports whether slot i is live.
func (s *liveSet) contains(i uint32) bool {
	w := int(i / 64)
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(uint64(1)<<(i%64)) != 0
}

// add marks slot i live. It returns false if it already was.
func (s *liveSet) add(i uint32) bool {
	w, mask := i/64, uint64(1)<<(i%64)
	if x, y := int(w), len(s.words); x >= y {
		s.words = append(s.words, make([]uint64, x-y+1)...)
	}
	if s.words[w]&mask != 0 {
		return false
	}
	s.words[w] |= mask
	s.live++
	return true
}

// remove marks slot i free. It returns false if it already was.
func (s *liveSet) remove(i uint32) bool {
	w, mask := int(i/64), uint64(1)<<(i%64)
	if w >= len(s.words) || s.words[w]&mask == 0 {
		return false
	}
	s.words[w] &^= mask
	s.live--
	return true
}

// firstFree returns the lowest free slot in [start, size()), or false if
// every slot in that range is live.
func (s *liveSet) firstFree(start uint32) (uint32, bool) {
	i, nbit := int(start/64), start%64
	if i >= len(s.words) {
		return 0, false
	}
	w := s.words[i] | ((uint64(1) << nbit) - 1)
	for {
		if w != ^uint64(0) {
			return uint32(bits.TrailingZeros64(^w) + i*64), true
		}
		i++
		if i == len(s.words) {
			return 0, false
		}
		w = s.words[i]
	}
}
