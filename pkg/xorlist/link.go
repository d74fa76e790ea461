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

// The link algebra. Every operation below works on addresses only; liveness
// and generation checks happen in Arena.node.

// next returns the neighbour of curr that is not prev.
//
// Precondition: curr != nilAddr.
func (a *Arena[T]) next(prev, curr Addr) Addr {
	return prev ^ a.node(curr).link
}

// value returns a copy of the element at addr.
func (a *Arena[T]) value(addr Addr) T {
	return a.node(addr).elem
}

// ref returns a pointer to the element at addr. The pointer is valid until
// the node is consumed.
func (a *Arena[T]) ref(addr Addr) *T {
	return &a.node(addr).elem
}

// consume destroys the node at addr and returns its element.
func (a *Arena[T]) consume(addr Addr) T {
	return a.remove(addr)
}

// link toggles the neighbour relation between x and y: y is XORed into x's
// link word and, unless y is nil, x is XORed into y's. Linking the same pair
// twice severs the relation again.
func (a *Arena[T]) link(x, y Addr) {
	if x == nilAddr {
		panic("link from nil address")
	}
	a.node(x).link ^= y
	if y == nilAddr {
		return
	}
	a.node(y).link ^= x
}
