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

// Package input decodes the rotary knob, push button and buzzer that sit
// next to a panel on a Raspberry Pi style GPIO header.
package input

import (
	"fmt"
	"time"
)

// EventKind identifies what happened on an input.
type EventKind int

const (
	// RotateCW is one detent clockwise; Delta is +1
	RotateCW EventKind = iota + 1
	// RotateCCW is one detent counter-clockwise; Delta is -1
	RotateCCW
	// Pressed is sent as soon as the button goes down
	Pressed
	// Held is sent once the button has been down for the hold time
	Held
	// Released is sent when the button goes up, unless Held was sent
	Released
)

func (k EventKind) String() string {
	switch k {
	case RotateCW:
		return "rotate-cw"
	case RotateCCW:
		return "rotate-ccw"
	case Pressed:
		return "pressed"
	case Held:
		return "held"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one decoded input change.
type Event struct {
	Time  time.Time
	Kind  EventKind
	Delta int
}

func (e Event) String() string {
	if e.Delta != 0 {
		return fmt.Sprintf("%s(%+d)", e.Kind, e.Delta)
	}
	return e.Kind.String()
}
