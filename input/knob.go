// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package input

// Knob decodes a two-channel quadrature encoder. Channel levels are given as
// active (pulled low) or not. Rotation is only reported once the encoder is
// back at rest, so contact bounce inside a detent cancels out.
//
// Knob is not safe for concurrent use.
type Knob struct {
	state int
	count int
	a, b  bool
}

// SetA records a change on channel A and returns the detent completed by
// it: +1 clockwise, -1 counter-clockwise or 0.
func (k *Knob) SetA(active bool) int {
	k.a = active
	return k.update()
}

// SetB records a change on channel B. See SetA.
func (k *Knob) SetB(active bool) int {
	k.b = active
	return k.update()
}

func bit(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (k *Knob) update() int {
	a, b := bit(k.a), bit(k.b)
	next := b<<1 | (a ^ b)
	if next == k.state {
		return 0
	}

	// Gray code position difference in (-2, 2]; the result of % is made
	// non-negative first
	k.count += ((next-k.state)%4+4)%4 - 2
	k.state = next
	if k.state != 0 {
		return 0
	}

	count := k.count
	k.count = 0
	switch {
	case count < 0:
		return -1
	case count > 0:
		return 1
	default:
		return 0
	}
}
