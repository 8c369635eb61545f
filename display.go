// go-dwin
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-dwin.
//
// go-dwin is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-dwin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-dwin; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package dwin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-dwin/internal/queue"
	"github.com/jonboulle/clockwork"
)

// Config contains configuration options for a Display
type Config struct {
	// Clock drives read timeouts and trace timestamps
	Clock clockwork.Clock
	// PortName labels logs and errors; defaults to the port's own name
	PortName string
	// ReadTimeout bounds each phase of waiting for a reply frame
	ReadTimeout time.Duration
	// PollInterval is the read timeout set on the port for each read call
	PollInterval time.Duration
	// ReplyBuffer is the capacity of the Replies channel
	ReplyBuffer int
	// TraceSize is how many wire operations are kept for fault reports
	TraceSize int
}

// DefaultConfig returns default display configuration
func DefaultConfig() *Config {
	return &Config{
		Clock:        clockwork.NewRealClock(),
		ReadTimeout:  1 * time.Second,
		PollInterval: 50 * time.Millisecond,
		ReplyBuffer:  16,
		TraceSize:    32,
	}
}

// Option is a functional option for New
type Option func(*Config) error

// WithReadTimeout sets how long a reply may take to start, and to finish.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: read timeout %v", ErrInvalidArgument, timeout)
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithPollInterval sets the per-read port timeout.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval <= 0 {
			return fmt.Errorf("%w: poll interval %v", ErrInvalidArgument, interval)
		}
		c.PollInterval = interval
		return nil
	}
}

// WithReplyBuffer sets the capacity of the Replies channel.
func WithReplyBuffer(size int) Option {
	return func(c *Config) error {
		if size < 0 {
			return fmt.Errorf("%w: reply buffer %d", ErrInvalidArgument, size)
		}
		c.ReplyBuffer = size
		return nil
	}
}

// WithTraceSize sets how many wire operations are attached to port faults.
func WithTraceSize(size int) Option {
	return func(c *Config) error {
		c.TraceSize = size
		return nil
	}
}

// WithPortName overrides the name used in logs and errors.
func WithPortName(name string) Option {
	return func(c *Config) error {
		c.PortName = name
		return nil
	}
}

// WithClock replaces the real clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Config) error {
		if clock == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidArgument)
		}
		c.Clock = clock
		return nil
	}
}

// Display drives one panel. Every operation encodes its frame on the
// calling goroutine and queues it for the port worker, so methods never
// block on I/O and are safe for concurrent use.
//
// Operations that expect a reply queue a transmit item and then a read
// item. Two goroutines issuing such operations at once may have their
// reads served in either order.
type Display struct {
	worker   *worker
	queue    *queue.Queue
	closeErr error
	once     sync.Once
	closed   atomic.Bool
}

// New takes ownership of port and starts its worker.
func New(port Port, opts ...Option) (*Display, error) {
	if port == nil {
		return nil, fmt.Errorf("%w: nil port", ErrInvalidArgument)
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	cfg.PollInterval = min(cfg.PollInterval, cfg.ReadTimeout)

	d := newDisplay(port, cfg)
	d.worker.start()
	return d, nil
}

// newDisplay builds a display whose worker has not been started.
func newDisplay(port Port, cfg *Config) *Display {
	q := queue.New()
	return &Display{
		queue:  q,
		worker: newWorker(port, q, cfg),
	}
}

// Run opens a display on port, calls fn and closes the display on every
// exit path, panics included. A worker fault is joined into fn's error.
func Run(port Port, fn func(*Display) error, opts ...Option) (err error) {
	d, err := New(port, opts...)
	if err != nil {
		if port != nil {
			_ = port.Close()
		}
		return err
	}

	defer func() {
		_ = d.Close()
		fault, closeErr := d.worker.errors()
		if fault != nil && errors.Is(err, fault) {
			fault = nil
		}
		if fault != nil || closeErr != nil {
			err = errors.Join(err, fault, closeErr)
		}
	}()

	return fn(d)
}

// Close stops the worker after the item it is processing, waits for it to
// release the port and returns the worker fault, if any. Queued items that
// were not yet taken are discarded. Close is idempotent.
func (d *Display) Close() error {
	d.once.Do(func() {
		d.closed.Store(true)
		d.queue.Terminate()
		d.worker.wait()
		fault, closeErr := d.worker.errors()
		switch {
		case fault == nil:
			d.closeErr = closeErr
		case closeErr == nil:
			d.closeErr = fault
		default:
			d.closeErr = errors.Join(fault, closeErr)
		}
	})
	return d.closeErr
}

// Err returns the port fault that stopped the worker, or nil.
func (d *Display) Err() error {
	return d.worker.Fault()
}

// State returns the worker lifecycle state.
func (d *Display) State() State {
	return d.worker.State()
}

// Pending returns the number of queued items not yet taken by the worker.
func (d *Display) Pending() int {
	return d.queue.Len()
}

// PortName returns the name used for this display's port.
func (d *Display) PortName() string {
	return d.worker.name
}

// Replies delivers the outcome of every read request in order. Replies are
// dropped when the channel is full. The channel is closed when the worker
// stops.
func (d *Display) Replies() <-chan Reply {
	return d.worker.replies
}

// AwaitReply waits for the next reply. The returned error is the reply's
// own error, the worker fault, ErrClosed or the context error.
func (d *Display) AwaitReply(ctx context.Context) (Reply, error) {
	select {
	case reply, ok := <-d.worker.replies:
		if !ok {
			if fault := d.worker.Fault(); fault != nil {
				return Reply{}, fault
			}
			return Reply{}, ErrClosed
		}
		return reply, reply.Err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// usable returns the error every operation reports once the display can no
// longer accept work.
func (d *Display) usable() error {
	if fault := d.worker.Fault(); fault != nil {
		return fault
	}
	if d.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Send encodes cmd and queues it. Nothing is queued when encoding fails.
func (d *Display) Send(cmd Command) error {
	if err := d.usable(); err != nil {
		return err
	}
	data, err := Encode(cmd)
	if err != nil {
		return err
	}
	d.queue.PutTransmit(data)
	if cmd.ExpectsReply() {
		d.queue.PutRead()
	}
	return nil
}

// Handshake asks the panel to answer with OK. The answer arrives on Replies.
func (d *Display) Handshake() error {
	return d.Send(Handshake{})
}

// handshakeBody is the payload of a successful handshake reply.
var handshakeBody = []byte{cmdHandshake, 'O', 'K'}

// Ping performs a handshake and waits for the panel's answer.
func (d *Display) Ping(ctx context.Context) error {
	if err := d.Handshake(); err != nil {
		return err
	}
	reply, err := d.AwaitReply(ctx)
	if err != nil {
		return err
	}
	if !bytes.Equal(reply.Frame.Body, handshakeBody) {
		return fmt.Errorf("%w: handshake answered with %q", ErrUnexpectedReply, reply.Frame.Body)
	}
	return nil
}

// SetRotation rotates the display. Angle must be 0, 90, 180 or 270.
func (d *Display) SetRotation(angle int) error {
	return d.Send(SetRotation{Angle: angle})
}

// SetBacklight sets the backlight level in [0, 1].
func (d *Display) SetBacklight(level float64) error {
	return d.Send(SetBacklight{Level: level})
}

// Update copies the frame buffer to the screen.
func (d *Display) Update() error {
	return d.Send(UpdateLCD{})
}

// Clear fills the frame buffer with color.
func (d *Display) Clear(color Color) error {
	return d.Send(ClearFrame{Color: color})
}

// DrawString draws text at (x, y). A nil bg leaves the background as is.
func (d *Display) DrawString(x, y uint16, text string, font Font, fg Color, bg *Color, fixedWidth bool) error {
	return d.Send(DrawString{
		X: x, Y: y, Text: text, Font: font,
		FG: fg, BG: bg, FixedWidth: fixedWidth,
	})
}

// DrawNumber draws value at (x, y) using format.
func (d *Display) DrawNumber(x, y uint16, value float64, font Font, fg Color, bg *Color, format NumberFormat) error {
	return d.Send(DrawNumber{
		X: x, Y: y, Value: value, Font: font,
		FG: fg, BG: bg, Format: format,
	})
}

// DrawLine draws a line from (x0, y0) to (x1, y1).
func (d *Display) DrawLine(x0, y0, x1, y1 uint16, color Color) error {
	return d.Send(DrawLine{X0: x0, Y0: y0, X1: x1, Y1: y1, Color: color})
}

// DrawRect draws a rectangle with corners (x0, y0) and (x1, y1).
func (d *Display) DrawRect(x0, y0, x1, y1 uint16, color Color, fill FillMode) error {
	return d.Send(DrawRect{X0: x0, Y0: y0, X1: x1, Y1: y1, Color: color, Fill: fill})
}

// DrawQR draws text as a QR code at (x, y).
func (d *Display) DrawQR(x, y uint16, text string, pixelSize uint8) error {
	return d.Send(DrawQR{X: x, Y: y, Text: text, PixelSize: pixelSize})
}

// LoadJPEG shows the image stored under id.
func (d *Display) LoadJPEG(id uint8) error {
	return d.Send(LoadJPEG{ID: id})
}
