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

package testing

import (
	"io"
	"math/rand/v2"
	"time"
)

// JitterConfig configures the behavior of JitteryPort.
type JitterConfig struct {
	MaxLatencyMs     int
	FragmentMinBytes int
	StallAfterBytes  int
	StallDuration    time.Duration
	Seed             uint64
	FragmentReads    bool
}

// DefaultJitterConfig returns a sensible default configuration for testing.
func DefaultJitterConfig() JitterConfig {
	return JitterConfig{
		MaxLatencyMs:     2,
		FragmentReads:    true,
		FragmentMinBytes: 1,
	}
}

// port is the subset of dwin.Port the wrapper forwards.
type port interface {
	io.ReadWriter
	SetReadTimeout(timeout time.Duration) error
	Close() error
}

// JitteryPort wraps a port to simulate USB-UART bridges that deliver reply
// bytes late and in arbitrary fragments. Reads are buffered so fragmentation
// never loses data; writes pass straight through.
type JitteryPort struct {
	backend             port
	rng                 *rand.Rand
	readBuf             []byte
	config              JitterConfig
	bytesReadSinceStall int
	stallTriggered      bool
}

// NewJitteryPort wraps backend with jitter simulation.
func NewJitteryPort(backend port, config JitterConfig) *JitteryPort {
	var rng *rand.Rand
	if config.Seed != 0 {
		rng = rand.New(rand.NewPCG(config.Seed, config.Seed^0xDEADBEEF)) //nolint:gosec // Test code, not crypto
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Test code, not crypto
	}

	if config.FragmentMinBytes < 1 {
		config.FragmentMinBytes = 1
	}

	return &JitteryPort{
		backend: backend,
		config:  config,
		rng:     rng,
		readBuf: make([]byte, 0, 256),
	}
}

// Write passes writes through to the backend without modification.
func (j *JitteryPort) Write(data []byte) (int, error) {
	return j.backend.Write(data) //nolint:wrapcheck // Pass-through wrapper
}

// SetReadTimeout forwards to the backend.
func (j *JitteryPort) SetReadTimeout(timeout time.Duration) error {
	return j.backend.SetReadTimeout(timeout) //nolint:wrapcheck // Pass-through wrapper
}

// Close forwards to the backend.
func (j *JitteryPort) Close() error {
	return j.backend.Close() //nolint:wrapcheck // Pass-through wrapper
}

// Read reads from the backend with simulated latency, stalls and
// fragmentation.
//
//nolint:gocognit,nestif // Jitter simulation inherently requires multiple conditions
func (j *JitteryPort) Read(buf []byte) (int, error) {
	if j.config.MaxLatencyMs > 0 {
		delay := time.Duration(j.rng.IntN(j.config.MaxLatencyMs+1)) * time.Millisecond
		if delay > 0 {
			time.Sleep(delay)
		}
	}

	if len(j.readBuf) == 0 {
		tempBuf := make([]byte, 256)
		bytesRead, err := j.backend.Read(tempBuf)
		if err != nil {
			return 0, err //nolint:wrapcheck // Pass-through wrapper
		}
		if bytesRead == 0 {
			return 0, nil
		}
		j.readBuf = append(j.readBuf, tempBuf[:bytesRead]...)
	}

	toReturn := min(len(j.readBuf), len(buf))

	// Limit data before the stall point, then stall once
	if j.config.StallAfterBytes > 0 && !j.stallTriggered {
		if j.bytesReadSinceStall >= j.config.StallAfterBytes {
			j.stallTriggered = true
			if j.config.StallDuration > 0 {
				time.Sleep(j.config.StallDuration)
			}
		} else if remaining := j.config.StallAfterBytes - j.bytesReadSinceStall; toReturn > remaining {
			toReturn = remaining
		}
	}

	if j.config.FragmentReads && toReturn > j.config.FragmentMinBytes {
		minReturn := j.config.FragmentMinBytes
		toReturn = minReturn + j.rng.IntN(toReturn-minReturn+1)
	}

	copy(buf, j.readBuf[:toReturn])
	j.readBuf = j.readBuf[toReturn:]
	j.bytesReadSinceStall += toReturn

	return toReturn, nil
}

// ResetStallState resets the stall tracking state.
func (j *JitteryPort) ResetStallState() {
	j.bytesReadSinceStall = 0
	j.stallTriggered = false
}
