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

package detection

import (
	"path/filepath"
	"slices"
	"strings"
)

// DefaultBlocklist returns USB devices that must not be opened during
// detection. Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno resets when the port is opened
		"2341:0001",
	}
}

// IsBlocked checks if a USB device is in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.TrimSpace(vidpid)
	return slices.ContainsFunc(blocklist, func(blocked string) bool {
		return strings.EqualFold(vidpid, strings.TrimSpace(blocked))
	})
}

// IsPathIgnored checks if a device path should be ignored. Paths are
// compared cleaned and case-insensitively, so "COM2" matches "com2".
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := normalizedPath(devicePath)
	return slices.ContainsFunc(ignorePaths, func(ignored string) bool {
		return ignored != "" && normalizedPath(ignored) == device
	})
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
