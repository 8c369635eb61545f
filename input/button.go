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

import (
	"time"

	"github.com/ZaparooProject/go-dwin/internal/syncutil"
	"github.com/jonboulle/clockwork"
)

// DefaultHoldTime is how long the button must stay down to count as held.
const DefaultHoldTime = time.Second

// Button turns debounced level changes into Pressed, Held and Released
// events. A release that ends a hold is not reported.
type Button struct {
	clock     clockwork.Clock
	emit      func(Event)
	holdTimer clockwork.Timer
	lastEdge  time.Time
	holdTime  time.Duration
	debounce  time.Duration
	gen       uint64
	mu        syncutil.Mutex
	pressed   bool
	wasHeld   bool
}

// NewButton creates a button that reports through emit. emit is called with
// the button's lock held and must not call back into the button.
func NewButton(clock clockwork.Clock, holdTime, debounce time.Duration, emit func(Event)) *Button {
	if holdTime <= 0 {
		holdTime = DefaultHoldTime
	}
	return &Button{
		clock:    clock,
		emit:     emit,
		holdTime: holdTime,
		debounce: debounce,
	}
}

// Set records the button level. Changes closer than the debounce interval
// to the previous accepted change are ignored.
func (b *Button) Set(pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pressed == b.pressed {
		return
	}
	now := b.clock.Now()
	if b.debounce > 0 && !b.lastEdge.IsZero() && now.Sub(b.lastEdge) < b.debounce {
		return
	}
	b.lastEdge = now
	b.pressed = pressed
	b.gen++

	if pressed {
		b.wasHeld = false
		b.emit(Event{Kind: Pressed, Time: now})
		gen := b.gen
		b.holdTimer = b.clock.AfterFunc(b.holdTime, func() { b.hold(gen) })
		return
	}

	b.stopTimer()
	if !b.wasHeld {
		b.emit(Event{Kind: Released, Time: now})
	}
	b.wasHeld = false
}

func (b *Button) hold(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A release, or a release and a new press, happened since the timer
	// was armed
	if gen != b.gen || !b.pressed {
		return
	}
	b.wasHeld = true
	b.emit(Event{Kind: Held, Time: b.clock.Now()})
}

// stopTimer must be called with the lock held.
func (b *Button) stopTimer() {
	if b.holdTimer != nil {
		b.holdTimer.Stop()
		b.holdTimer = nil
	}
}

// Stop cancels a pending hold.
func (b *Button) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopTimer()
	b.gen++
}
