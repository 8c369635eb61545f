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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-dwin"
	"github.com/ZaparooProject/go-dwin/internal/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when a pin name is unknown to the host.
var ErrPinNotFound = errors.New("gpio pin not found")

// edgeWait bounds each WaitForEdge call so Close is noticed.
const edgeWait = 100 * time.Millisecond

// Pins names the GPIO lines the controls are wired to. An empty Buzzer
// leaves the buzzer out.
type Pins struct {
	A      string
	B      string
	Enter  string
	Buzzer string
}

// DefaultPins returns the BCM lines used by the reference wiring.
func DefaultPins() Pins {
	return Pins{A: "GPIO17", B: "GPIO18", Enter: "GPIO27", Buzzer: "GPIO4"}
}

// Config tunes event decoding.
type Config struct {
	Clock       clockwork.Clock
	HoldTime    time.Duration
	Debounce    time.Duration
	EventBuffer int
}

// Option is a functional option for Open and New
type Option func(*Config) error

// WithHoldTime sets how long the button must be down to count as held.
func WithHoldTime(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("%w: hold time %v", dwin.ErrInvalidArgument, d)
		}
		c.HoldTime = d
		return nil
	}
}

// WithDebounce sets the minimum interval between accepted button changes.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 {
			return fmt.Errorf("%w: debounce %v", dwin.ErrInvalidArgument, d)
		}
		c.Debounce = d
		return nil
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("%w: event buffer %d", dwin.ErrInvalidArgument, n)
		}
		c.EventBuffer = n
		return nil
	}
}

// WithClock replaces the real clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Config) error {
		if clock == nil {
			return fmt.Errorf("%w: nil clock", dwin.ErrInvalidArgument)
		}
		c.Clock = clock
		return nil
	}
}

// Controls watches the knob and button pins and delivers decoded events.
type Controls struct {
	clock  clockwork.Clock
	events chan Event
	stop   chan struct{}
	button *Button
	buzzer *Buzzer
	pins   []gpio.PinIn
	knob   Knob
	wg     sync.WaitGroup
	knobMu syncutil.Mutex
	mu     syncutil.Mutex
	closed bool
}

// Open initializes the host GPIO drivers and starts watching pins.
func Open(pins Pins, opts ...Option) (*Controls, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	lookup := func(name string) (gpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
		}
		return p, nil
	}

	a, err := lookup(pins.A)
	if err != nil {
		return nil, err
	}
	b, err := lookup(pins.B)
	if err != nil {
		return nil, err
	}
	enter, err := lookup(pins.Enter)
	if err != nil {
		return nil, err
	}

	var buzzer gpio.PinOut
	if pins.Buzzer != "" {
		if buzzer, err = lookup(pins.Buzzer); err != nil {
			return nil, err
		}
	}

	return New(a, b, enter, buzzer, opts...)
}

// New starts watching already resolved pins. The inputs are configured with
// pull-ups and both-edge detection; a line pulled low is active. buzzer may
// be nil.
func New(a, b, enter gpio.PinIn, buzzer gpio.PinOut, opts ...Option) (*Controls, error) {
	cfg := &Config{
		Clock:       clockwork.NewRealClock(),
		HoldTime:    DefaultHoldTime,
		Debounce:    5 * time.Millisecond,
		EventBuffer: 16,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	for _, p := range []gpio.PinIn{a, b, enter} {
		if p == nil {
			return nil, fmt.Errorf("%w: nil pin", dwin.ErrInvalidArgument)
		}
		if err := p.In(gpio.PullUp, gpio.BothEdges); err != nil {
			return nil, fmt.Errorf("configure %s: %w", p.Name(), err)
		}
	}

	c := &Controls{
		clock:  cfg.Clock,
		events: make(chan Event, cfg.EventBuffer),
		stop:   make(chan struct{}),
		pins:   []gpio.PinIn{a, b, enter},
	}
	c.button = NewButton(cfg.Clock, cfg.HoldTime, cfg.Debounce, c.emit)
	if buzzer != nil {
		z, err := NewBuzzer(buzzer, cfg.Clock)
		if err != nil {
			return nil, err
		}
		c.buzzer = z
	}

	c.wg.Add(3)
	go c.watch(a, func(active bool) { c.turn(c.knob.SetA, active) })
	go c.watch(b, func(active bool) { c.turn(c.knob.SetB, active) })
	go c.watch(enter, c.button.Set)
	return c, nil
}

// Events delivers decoded input events. Events are dropped when the channel
// is full. The channel is closed by Close.
func (c *Controls) Events() <-chan Event {
	return c.events
}

// Buzzer returns the buzzer, or nil when none was configured.
func (c *Controls) Buzzer() *Buzzer {
	return c.buzzer
}

// Close stops watching the pins and closes the Events channel.
func (c *Controls) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()
	c.button.Stop()

	var errs []error
	for _, p := range c.pins {
		if err := p.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt %s: %w", p.Name(), err))
		}
	}
	if c.buzzer != nil {
		if err := c.buzzer.SetAlarm(false); err != nil {
			errs = append(errs, err)
		}
	}

	c.mu.Lock()
	close(c.events)
	c.mu.Unlock()
	return errors.Join(errs...)
}

func (c *Controls) watch(pin gpio.PinIn, onChange func(active bool)) {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		default:
		}
		if pin.WaitForEdge(edgeWait) {
			onChange(pin.Read() == gpio.Low)
		}
	}
}

func (c *Controls) turn(set func(bool) int, active bool) {
	c.knobMu.Lock()
	defer c.knobMu.Unlock()

	switch set(active) {
	case 1:
		c.emit(Event{Kind: RotateCW, Delta: 1, Time: c.clock.Now()})
	case -1:
		c.emit(Event{Kind: RotateCCW, Delta: -1, Time: c.clock.Now()})
	}
}

func (c *Controls) logger() *zerolog.Logger {
	l := dwin.Logger().With().Str("component", "input").Logger()
	return &l
}

func (c *Controls) emit(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
		c.logger().Warn().Stringer("event", ev).Msg("input event dropped")
	}
}

// Buzzer drives an active buzzer. While the alarm is on, blips are
// suppressed and the buzzer sounds continuously.
type Buzzer struct {
	pin   gpio.PinOut
	clock clockwork.Clock
	mu    syncutil.Mutex
	alarm bool
}

// NewBuzzer drives pin low and returns a silent buzzer.
func NewBuzzer(pin gpio.PinOut, clock clockwork.Clock) (*Buzzer, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure %s: %w", pin.Name(), err)
	}
	return &Buzzer{pin: pin, clock: clock}, nil
}

// Blip sounds the buzzer for d, or until ctx is done.
func (z *Buzzer) Blip(ctx context.Context, d time.Duration) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.alarm {
		return nil
	}

	if err := z.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("buzzer on: %w", err)
	}
	select {
	case <-z.clock.After(d):
	case <-ctx.Done():
	}
	if err := z.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("buzzer off: %w", err)
	}
	return nil
}

// SetAlarm turns the continuous alarm on or off.
func (z *Buzzer) SetAlarm(on bool) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if on == z.alarm {
		return nil
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := z.pin.Out(level); err != nil {
		return fmt.Errorf("buzzer alarm: %w", err)
	}
	z.alarm = on
	return nil
}

// Alarm reports whether the alarm is on.
func (z *Buzzer) Alarm() bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.alarm
}
