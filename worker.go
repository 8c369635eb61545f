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
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-dwin/internal/frame"
	"github.com/ZaparooProject/go-dwin/internal/queue"
	"github.com/ZaparooProject/go-dwin/internal/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// State is the port worker lifecycle. Transitions only move forward:
// Idle, Running, Draining, Stopped.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Reply is the outcome of one read request.
type Reply struct {
	// Err is ErrNoResponse when no complete frame arrived in time.
	Err error
	// Raw holds every byte consumed for this reply, noise included.
	Raw []byte
	// Frame is the recognized frame, or the partial one on timeout.
	Frame frame.Parts
}

// OK reports whether a complete frame was received.
func (r Reply) OK() bool {
	return r.Err == nil && r.Frame.Complete()
}

const readChunkSize = 64

// worker owns the port for the lifetime of a Display. It is the only
// goroutine that reads from, writes to or closes the port.
type worker struct {
	port         Port
	clock        clockwork.Clock
	fault        error
	closeErr     error
	queue        *queue.Queue
	trace        *TraceBuffer
	replies      chan Reply
	done         chan struct{}
	name         string
	pending      []byte
	readBuf      []byte
	readTimeout  time.Duration
	pollInterval time.Duration
	mu           syncutil.Mutex
	state        atomic.Int32
}

func newWorker(port Port, q *queue.Queue, cfg *Config) *worker {
	name := portName(port, cfg.PortName)
	trace := NewTraceBuffer(name, cfg.TraceSize)
	trace.now = cfg.Clock.Now
	return &worker{
		port:         port,
		queue:        q,
		clock:        cfg.Clock,
		trace:        trace,
		replies:      make(chan Reply, cfg.ReplyBuffer),
		done:         make(chan struct{}),
		name:         name,
		readBuf:      make([]byte, readChunkSize),
		readTimeout:  cfg.ReadTimeout,
		pollInterval: cfg.PollInterval,
	}
}

// logger tags the current driver logger with this worker's port. It is
// looked up on every call so SetLogger and session log changes reach
// displays that are already open.
func (w *worker) logger() *zerolog.Logger {
	l := Logger().With().Str("port", w.name).Logger()
	return &l
}

// start launches the worker goroutine. It may only be called once.
func (w *worker) start() {
	if !w.transition(StateIdle, StateRunning) {
		panic("dwin: worker started twice")
	}
	go w.run()
}

func (w *worker) transition(from, to State) bool {
	return w.state.CompareAndSwap(int32(from), int32(to))
}

func (w *worker) State() State {
	return State(w.state.Load())
}

func (w *worker) run() {
	defer close(w.done)
	defer close(w.replies)

	if err := w.port.SetReadTimeout(w.pollInterval); err != nil {
		w.stop(NewPortError("set read timeout", w.name, err))
		return
	}

	for {
		item := w.queue.Take()
		switch item.Kind {
		case queue.Terminate:
			w.stop(nil)
			return
		case queue.Transmit:
			if err := w.transmit(item.Data); err != nil {
				w.stop(err)
				return
			}
		case queue.Read:
			reply, err := w.receive()
			if err != nil {
				w.stop(err)
				return
			}
			w.publish(reply)
		}
	}
}

// stop drains the worker to Stopped, recording fault if non-nil, and
// releases the port.
func (w *worker) stop(fault error) {
	w.transition(StateRunning, StateDraining)

	if fault != nil {
		fault = w.trace.WrapError(fault)
		if IsFatal(fault) {
			w.logger().Error().Err(fault).Msg("port worker stopped, device gone")
		} else {
			w.logger().Error().Err(fault).Msg("port worker stopped on fault")
		}
		w.queue.Terminate()
	}

	closeErr := w.port.Close()
	if closeErr != nil {
		closeErr = NewPortError("close", w.name, closeErr)
	}

	w.mu.Lock()
	w.fault = fault
	w.closeErr = closeErr
	w.mu.Unlock()

	w.transition(StateDraining, StateStopped)
	w.logger().Debug().Msg("port worker stopped")
}

// Fault returns the error that stopped the worker, if any.
func (w *worker) Fault() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fault
}

func (w *worker) errors() (fault, closeErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fault, w.closeErr
}

func (w *worker) transmit(data []byte) error {
	w.logger().Debug().Msgf(">>> %s", frame.FormatHex(data))
	w.trace.RecordTX(data, "")

	for written := 0; written < len(data); {
		n, err := w.port.Write(data[written:])
		written += n
		if err != nil {
			if IsInterrupted(err) {
				continue
			}
			return NewPortError("write", w.name, err)
		}
		if n == 0 {
			return NewPortError("write", w.name, io.ErrShortWrite)
		}
	}
	return nil
}

// fill performs one bounded read and appends the result to pending.
func (w *worker) fill() error {
	n, err := w.port.Read(w.readBuf)
	if n > 0 {
		w.pending = append(w.pending, w.readBuf[:n]...)
		w.trace.RecordRX(w.readBuf[:n], "")
	}
	if err != nil && !IsInterrupted(err) {
		return NewPortError("read", w.name, err)
	}
	return nil
}

// receive reads until a prefix is seen and then until the suffix is seen,
// each phase bounded by the read timeout. Bytes past the frame are kept for
// the next read request.
func (w *worker) receive() (Reply, error) {
	deadline := w.clock.Now().Add(w.readTimeout)
	for !frame.HasPrefix(w.pending) {
		if !w.clock.Now().Before(deadline) {
			return w.timeout("no response"), nil
		}
		if err := w.fill(); err != nil {
			return Reply{}, err
		}
	}

	deadline = w.clock.Now().Add(w.readTimeout)
	for {
		parts, rest, ok := frame.Extract(w.pending)
		if ok {
			reply := Reply{
				Raw: bytes.Clone(w.pending[:len(w.pending)-len(rest)]),
			}
			reply.Frame = frame.Split(reply.Raw[len(parts.Skipped):])
			reply.Frame.Skipped = reply.Raw[:len(parts.Skipped)]
			w.pending = append(w.pending[:0], rest...)

			if len(reply.Frame.Skipped) > 0 {
				w.logger().Debug().Msgf("<<< skipped %s", frame.FormatHex(reply.Frame.Skipped))
			}
			w.logger().Debug().Msgf("<<< %s", reply.Frame)
			return reply, nil
		}
		if !w.clock.Now().Before(deadline) {
			return w.timeout("incomplete frame"), nil
		}
		if err := w.fill(); err != nil {
			return Reply{}, err
		}
	}
}

// timeout consumes whatever partial data is pending and reports it.
func (w *worker) timeout(note string) Reply {
	reply := Reply{Err: ErrNoResponse, Raw: w.pending}
	if start := bytes.IndexByte(w.pending, frame.Prefix); start >= 0 {
		reply.Frame = frame.Split(w.pending[start:])
		reply.Frame.Skipped = w.pending[:start]
	} else {
		reply.Frame.Skipped = w.pending
	}
	w.pending = nil

	w.trace.RecordTimeout(note)
	if len(reply.Raw) > 0 {
		w.logger().Debug().Msgf("<<< %s: %s", note, frame.FormatHex(reply.Raw))
	} else {
		w.logger().Debug().Msgf("<<< %s", note)
	}
	return reply
}

// publish hands a reply to the caller side without ever blocking the worker.
func (w *worker) publish(reply Reply) {
	select {
	case w.replies <- reply:
	default:
		w.logger().Warn().Err(reply.Err).Msg("reply dropped, nobody is reading replies")
	}
}

// wait blocks until the worker goroutine has exited.
func (w *worker) wait() {
	<-w.done
}
