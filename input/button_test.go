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
	"context"
	"testing"
	"time"

	"github.com/ZaparooProject/go-dwin/internal/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []EventKind
	mu     syncutil.Mutex
}

func (r *recorder) emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev.Kind)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EventKind(nil), r.events...)
}

func newTestButton(debounce time.Duration) (*Button, *clockwork.FakeClock, *recorder) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	return NewButton(clock, time.Second, debounce, rec.emit), clock, rec
}

func TestButton_ClickReportsPressAndRelease(t *testing.T) {
	t.Parallel()
	b, clock, rec := newTestButton(0)

	b.Set(true)
	clock.Advance(500 * time.Millisecond)
	b.Set(false)

	assert.Equal(t, []EventKind{Pressed, Released}, rec.kinds())
}

func TestButton_HoldSuppressesRelease(t *testing.T) {
	t.Parallel()
	b, clock, rec := newTestButton(0)

	b.Set(true)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	// The hold callback runs on its own goroutine
	require.Eventually(t, func() bool { return len(rec.kinds()) == 2 }, time.Second, time.Millisecond)
	b.Set(false)

	assert.Equal(t, []EventKind{Pressed, Held}, rec.kinds())

	// The next click is reported normally
	b.Set(true)
	b.Set(false)
	assert.Equal(t, []EventKind{Pressed, Held, Pressed, Released}, rec.kinds())
}

func TestButton_ReleaseCancelsHold(t *testing.T) {
	t.Parallel()
	b, clock, rec := newTestButton(0)

	b.Set(true)
	b.Set(false)
	clock.Advance(2 * time.Second)
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, []EventKind{Pressed, Released}, rec.kinds())
}

func TestButton_StaleHoldAfterRepress(t *testing.T) {
	t.Parallel()
	b, clock, rec := newTestButton(0)

	b.Set(true)
	clock.Advance(600 * time.Millisecond)
	b.Set(false)
	b.Set(true)

	// Only the second press's timer may fire, 1s after it
	clock.Advance(600 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []EventKind{Pressed, Released, Pressed}, rec.kinds())

	clock.Advance(400 * time.Millisecond)
	require.Eventually(t, func() bool { return len(rec.kinds()) == 4 }, time.Second, time.Millisecond)
	assert.Equal(t, Held, rec.kinds()[3])
}

func TestButton_Debounce(t *testing.T) {
	t.Parallel()
	b, clock, rec := newTestButton(10 * time.Millisecond)

	b.Set(true)
	clock.Advance(2 * time.Millisecond)
	b.Set(false) // bounce
	clock.Advance(20 * time.Millisecond)
	b.Set(false)

	assert.Equal(t, []EventKind{Pressed, Released}, rec.kinds())
}

func TestButton_StopCancelsHold(t *testing.T) {
	t.Parallel()
	b, clock, rec := newTestButton(0)

	b.Set(true)
	b.Stop()
	clock.Advance(2 * time.Second)
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, []EventKind{Pressed}, rec.kinds())
}

func TestEvent_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "rotate-cw(+1)", Event{Kind: RotateCW, Delta: 1}.String())
	assert.Equal(t, "rotate-ccw(-1)", Event{Kind: RotateCCW, Delta: -1}.String())
	assert.Equal(t, "held", Event{Kind: Held}.String())
	assert.Equal(t, "event(42)", EventKind(42).String())
}
