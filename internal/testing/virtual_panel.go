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

// Package testing provides a wire-level DWIN panel simulator and connection
// wrappers for exercising the port worker without hardware.
//
// It must not import the dwin package so that in-package dwin tests can use it.
package testing

import (
	"bytes"
	"io"
	"time"

	"github.com/ZaparooProject/go-dwin/internal/frame"
	"github.com/ZaparooProject/go-dwin/internal/syncutil"
)

// HandshakeReply is the body a panel answers a handshake with.
var HandshakeReply = []byte{0x00, 'O', 'K'}

var rotationHeader = []byte{0x34, 0x5A, 0xA5}

// DefaultReadTimeout is how long Read waits for data before returning 0.
const DefaultReadTimeout = 5 * time.Millisecond

// VirtualPanel emulates a DWIN panel behind a serial port. It parses frames
// written by the host, records their payloads, and queues replies for
// handshake and rotation commands. Read follows serial port semantics: it
// returns (0, nil) when nothing arrives within the read timeout.
type VirtualPanel struct {
	writeErr    error
	readErr     error
	inbound     []byte
	outbound    []byte
	written     []byte
	frames      [][]byte
	readTimeout time.Duration
	closeCount  int
	mu          syncutil.Mutex
	closed      bool
	silent      bool
}

// NewVirtualPanel creates a panel that answers handshakes and rotations.
func NewVirtualPanel() *VirtualPanel {
	return &VirtualPanel{readTimeout: DefaultReadTimeout}
}

// Write accepts host bytes, extracting complete frames as they arrive.
func (p *VirtualPanel) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}

	p.written = append(p.written, data...)
	p.inbound = append(p.inbound, data...)

	for {
		parts, rest, ok := frame.Extract(p.inbound)
		if !ok {
			break
		}
		body := bytes.Clone(parts.Body)
		p.frames = append(p.frames, body)
		p.respond(body)
		p.inbound = append([]byte(nil), rest...)
	}

	return len(data), nil
}

// respond must be called with the lock held.
func (p *VirtualPanel) respond(body []byte) {
	if p.silent {
		return
	}
	switch {
	case len(body) == 1 && body[0] == 0x00:
		p.outbound = append(p.outbound, frame.Wrap(HandshakeReply)...)
	case len(body) == 4 && bytes.HasPrefix(body, rotationHeader):
		p.outbound = append(p.outbound, frame.Wrap(body)...)
	}
}

// Read returns queued reply bytes, waiting up to the read timeout.
func (p *VirtualPanel) Read(buf []byte) (int, error) {
	p.mu.Lock()
	deadline := time.Now().Add(p.readTimeout)
	p.mu.Unlock()

	for {
		p.mu.Lock()
		switch {
		case p.closed:
			p.mu.Unlock()
			return 0, io.EOF
		case p.readErr != nil:
			err := p.readErr
			p.mu.Unlock()
			return 0, err
		case len(p.outbound) > 0:
			n := copy(buf, p.outbound)
			p.outbound = p.outbound[n:]
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()

		if !time.Now().Before(deadline) {
			return 0, nil
		}
		time.Sleep(time.Millisecond)
	}
}

// SetReadTimeout sets how long Read waits for data.
func (p *VirtualPanel) SetReadTimeout(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = timeout
	return nil
}

// Close marks the panel disconnected. Later reads and writes fail.
func (p *VirtualPanel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closeCount++
	return nil
}

// SetSilent stops the panel from answering anything.
func (p *VirtualPanel) SetSilent(silent bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.silent = silent
}

// FailWrites makes every following Write return err.
func (p *VirtualPanel) FailWrites(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// FailReads makes every following Read return err.
func (p *VirtualPanel) FailReads(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErr = err
}

// Inject queues raw bytes for the host to read, e.g. line noise.
func (p *VirtualPanel) Inject(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outbound = append(p.outbound, data...)
}

// Frames returns copies of every payload received so far, in order.
func (p *VirtualPanel) Frames() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([][]byte, len(p.frames))
	for i, f := range p.frames {
		out[i] = bytes.Clone(f)
	}
	return out
}

// Written returns every raw byte the host has written.
func (p *VirtualPanel) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return bytes.Clone(p.written)
}

// CloseCount returns how many times Close was called.
func (p *VirtualPanel) CloseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCount
}

// WaitForFrames polls until at least n frames were received or the timeout
// elapses, and reports whether the count was reached.
func (p *VirtualPanel) WaitForFrames(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		p.mu.Lock()
		count := len(p.frames)
		p.mu.Unlock()
		if count >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}
