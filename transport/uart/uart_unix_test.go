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

//go:build unix

//nolint:paralleltest // Shares the mock helpers with uart_test.go
package uart

import (
	"testing"

	"github.com/ZaparooProject/go-dwin/internal/frame"
	virt "github.com/ZaparooProject/go-dwin/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPort_RetriesInterruptedCalls(t *testing.T) {
	panel := virt.NewVirtualPanel()
	mock := NewMockSerialPort(panel)
	mock.writeErrs = []error{unix.EINTR}
	mock.readErrs = []error{unix.EINTR, unix.EINTR}
	port := &Port{port: mock, name: "mock"}

	wire := frame.Wrap([]byte{0x00})
	n, err := port.Write(wire)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)

	require.NoError(t, port.SetReadTimeout(virt.DefaultReadTimeout))
	buf := make([]byte, 16)
	n, err = port.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, frame.Wrap(virt.HandshakeReply), buf[:n])
}
