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

//nolint:paralleltest // Tests replace the package-level openPort
package uart

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ZaparooProject/go-dwin"
	virt "github.com/ZaparooProject/go-dwin/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// errPortClosed is returned when operations are attempted on a closed port
var errPortClosed = errors.New("port is closed")

// MockSerialPort wraps VirtualPanel to implement serial.Port interface
type MockSerialPort struct {
	sim         *virt.VirtualPanel
	readErrs    []error
	writeErrs   []error
	mode        *serial.Mode
	readTimeout time.Duration
	resets      int
	closed      bool
}

// NewMockSerialPort creates a mock serial port backed by the panel simulator
func NewMockSerialPort(sim *virt.VirtualPanel) *MockSerialPort {
	return &MockSerialPort{
		sim:         sim,
		readTimeout: 100 * time.Millisecond,
	}
}

func (m *MockSerialPort) SetMode(mode *serial.Mode) error {
	m.mode = mode
	return nil
}

func (m *MockSerialPort) Read(p []byte) (n int, err error) {
	if m.closed {
		return 0, errPortClosed
	}
	if len(m.readErrs) > 0 {
		err, m.readErrs = m.readErrs[0], m.readErrs[1:]
		return 0, err
	}
	n, err = m.sim.Read(p)
	if err != nil {
		return n, fmt.Errorf("mock read: %w", err)
	}
	return n, nil
}

func (m *MockSerialPort) Write(p []byte) (n int, err error) {
	if m.closed {
		return 0, errPortClosed
	}
	if len(m.writeErrs) > 0 {
		err, m.writeErrs = m.writeErrs[0], m.writeErrs[1:]
		return 0, err
	}
	n, err = m.sim.Write(p)
	if err != nil {
		return n, fmt.Errorf("mock write: %w", err)
	}
	return n, nil
}

func (*MockSerialPort) Drain() error {
	return nil
}

func (m *MockSerialPort) ResetInputBuffer() error {
	m.resets++
	return nil
}

func (*MockSerialPort) ResetOutputBuffer() error {
	return nil
}

func (*MockSerialPort) SetDTR(_ bool) error {
	return nil
}

func (*MockSerialPort) SetRTS(_ bool) error {
	return nil
}

func (*MockSerialPort) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	return &serial.ModemStatusBits{}, nil
}

func (m *MockSerialPort) SetReadTimeout(t time.Duration) error {
	m.readTimeout = t
	return m.sim.SetReadTimeout(min(t, virt.DefaultReadTimeout))
}

func (m *MockSerialPort) Close() error {
	m.closed = true
	return m.sim.Close()
}

func (*MockSerialPort) Break(_ time.Duration) error {
	return nil
}

// Verify interface implementation
var _ serial.Port = (*MockSerialPort)(nil)

// useMock makes Open return mock for the duration of the test.
func useMock(t *testing.T, mock *MockSerialPort, openErr error) *string {
	t.Helper()
	var opened string
	orig := openPort
	openPort = func(name string, mode *serial.Mode) (serial.Port, error) {
		opened = name
		if openErr != nil {
			return nil, openErr
		}
		_ = mock.SetMode(mode)
		return mock, nil
	}
	t.Cleanup(func() { openPort = orig })
	return &opened
}

func TestOpen_ConfiguresPort(t *testing.T) {
	mock := NewMockSerialPort(virt.NewVirtualPanel())
	opened := useMock(t, mock, nil)

	port, err := Open("/dev/ttyUSB0")
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", *opened)
	assert.Equal(t, "/dev/ttyUSB0", port.Name())
	require.NotNil(t, mock.mode)
	assert.Equal(t, BaudRate, mock.mode.BaudRate)
	assert.Equal(t, 8, mock.mode.DataBits)
	assert.Equal(t, serial.NoParity, mock.mode.Parity)
	assert.Equal(t, serial.OneStopBit, mock.mode.StopBits)
	assert.Equal(t, 50*time.Millisecond, mock.readTimeout)
	assert.Equal(t, 1, mock.resets)

	require.NoError(t, port.Close())
	require.NoError(t, port.Close(), "second close is a no-op")
}

func TestOpen_Options(t *testing.T) {
	mock := NewMockSerialPort(virt.NewVirtualPanel())
	useMock(t, mock, nil)

	port, err := Open("COM3", Options{BaudRate: 9600, ReadTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = port.Close() }()

	assert.Equal(t, 9600, mock.mode.BaudRate)
	assert.Equal(t, 20*time.Millisecond, mock.readTimeout)
}

func TestOpen_Failure(t *testing.T) {
	boom := errors.New("no such file or directory")
	useMock(t, nil, boom)

	_, err := Open("/dev/ttyUSB9")
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, dwin.ErrPort)

	var pe *dwin.PortError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "open", pe.Op)
	assert.Equal(t, "/dev/ttyUSB9", pe.Port)
}

func TestPort_ErrorsAreWrapped(t *testing.T) {
	mock := NewMockSerialPort(virt.NewVirtualPanel())
	boom := errors.New("device unplugged")
	mock.readErrs = []error{boom}
	mock.writeErrs = []error{boom}
	port := &Port{port: mock, name: "mock"}

	_, err := port.Read(make([]byte, 8))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "UART read failed")

	_, err = port.Write([]byte{0x01})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "UART write failed")
}

func TestPort_DrivesDisplay(t *testing.T) {
	panel := virt.NewVirtualPanel()
	mock := NewMockSerialPort(panel)
	useMock(t, mock, nil)

	port, err := Open("/dev/ttyACM0")
	require.NoError(t, err)

	d, err := dwin.New(port, dwin.WithReadTimeout(500*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", d.PortName())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Ping(ctx))
	require.NoError(t, d.Clear(dwin.White))
	require.NoError(t, d.Update())
	require.NoError(t, d.Close())

	assert.Equal(t, [][]byte{
		{0x00},
		{0x01, 0xFF, 0xFF},
		{0x3D},
	}, panel.Frames())
	assert.True(t, mock.closed)
}
