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

//go:build unix

package dwin

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// isDeviceGoneError checks for errno values a USB-serial adapter produces
// when it is unplugged during I/O.
func isDeviceGoneError(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	//nolint:exhaustive // Only checking specific device-gone errors
	switch errno {
	case unix.EIO, unix.ENXIO, unix.ENODEV:
		return true
	}
	return false
}

// IsInterrupted reports whether err is EINTR, which callers should retry.
func IsInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}
