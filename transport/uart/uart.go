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

// Package uart opens DWIN panels on serial ports.
package uart

import (
	"fmt"
	"time"

	"github.com/ZaparooProject/go-dwin"
	"github.com/ZaparooProject/go-dwin/internal/syncutil"
	"go.bug.st/serial"
)

// BaudRate is the factory default of DWIN T5 panels.
const BaudRate = 115200

// openPort is replaced in tests.
var openPort = serial.Open

// Port is a DWIN panel connection on a serial port. It satisfies dwin.Port.
type Port struct {
	port   serial.Port
	name   string
	mu     syncutil.Mutex
	closed bool
}

// Options tunes how the port is opened.
type Options struct {
	// BaudRate defaults to 115200
	BaudRate int
	// ReadTimeout is the initial per-read timeout; the worker replaces it
	ReadTimeout time.Duration
}

// Open opens portName at 8N1.
func Open(portName string, opts ...Options) (*Port, error) {
	o := Options{BaudRate: BaudRate, ReadTimeout: 50 * time.Millisecond}
	if len(opts) > 0 {
		if opts[0].BaudRate > 0 {
			o.BaudRate = opts[0].BaudRate
		}
		if opts[0].ReadTimeout > 0 {
			o.ReadTimeout = opts[0].ReadTimeout
		}
	}

	port, err := openPort(portName, &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, dwin.NewPortError("open", portName, err)
	}

	if err := port.SetReadTimeout(o.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, dwin.NewPortError("set read timeout", portName, err)
	}

	// Stale bytes from a previous session would be read as a reply
	if err := port.ResetInputBuffer(); err != nil {
		dwin.Debugf("UART %s: reset input buffer failed: %v", portName, err)
	}

	return &Port{port: port, name: portName}, nil
}

// Name returns the device path the port was opened with.
func (p *Port) Name() string {
	return p.name
}

// Read reads up to len(buf) bytes, returning (0, nil) when the read
// timeout elapses first. Interrupted system calls are retried.
func (p *Port) Read(buf []byte) (int, error) {
	for {
		n, err := p.port.Read(buf)
		if err != nil && n == 0 && dwin.IsInterrupted(err) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("UART read failed: %w", err)
		}
		return n, nil
	}
}

// Write writes data. Interrupted system calls are retried.
func (p *Port) Write(data []byte) (int, error) {
	written := 0
	for written < len(data) {
		n, err := p.port.Write(data[written:])
		written += n
		if err != nil {
			if dwin.IsInterrupted(err) {
				continue
			}
			return written, fmt.Errorf("UART write failed: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return written, nil
}

// SetReadTimeout sets the per-read timeout.
func (p *Port) SetReadTimeout(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("UART set timeout failed: %w", err)
	}
	return nil
}

// Close closes the port. Further calls return nil.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	err := p.port.Close()
	if err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}
