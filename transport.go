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
	"io"
	"time"
)

// Port is the serial link to a panel. Only the display's worker goroutine
// touches it once the display is started.
//
// Read must follow serial-port semantics: it waits at most the configured
// read timeout and returns (0, nil) when nothing arrived.
type Port interface {
	io.ReadWriter

	// SetReadTimeout bounds how long a single Read may block.
	SetReadTimeout(timeout time.Duration) error

	// Close releases the port.
	Close() error
}

// PortNamer is implemented by ports that know their device path. The name
// is used in logs, traces and errors.
type PortNamer interface {
	Name() string
}

// portName returns the best available identifier for p.
func portName(p Port, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if n, ok := p.(PortNamer); ok {
		return n.Name()
	}
	return "port"
}
