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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-dwin"
	"go.bug.st/serial/enumerator"
)

// serialPort represents a serial port with metadata
type serialPort struct {
	Path         string
	Name         string
	VIDPID       string
	Product      string
	SerialNumber string
}

// Board UARTs the enumerator may miss, such as the Raspberry Pi PL011.
var builtinPatterns = []string{"/dev/ttyAMA*", "/dev/ttyS0"}

// Bridge chips panels and their adapter boards ship with.
var knownBridges = []string{
	"1A86:7523", // QinHeng CH340
	"1A86:55D4", // QinHeng CH9102
	"10C4:EA60", // Silicon Labs CP210x
	"0403:6001", // FTDI FT232
	"067B:2303", // Prolific PL2303
}

var (
	getDetailedPorts = enumerator.GetDetailedPortsList
	globPorts        = filepath.Glob
)

// getSerialPorts lists USB serial ports with metadata, then board UARTs.
func getSerialPorts(_ context.Context) ([]serialPort, error) {
	var ports []serialPort
	seen := make(map[string]bool)

	details, enumErr := getDetailedPorts()
	if enumErr != nil {
		dwin.Debugf("detection: enumerator failed: %v", enumErr)
	}
	for _, d := range details {
		if d == nil || seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		port := serialPort{
			Path: d.Name,
			Name: filepath.Base(d.Name),
		}
		if d.IsUSB {
			port.VIDPID = strings.ToUpper(d.VID + ":" + d.PID)
			port.Product = d.Product
			port.SerialNumber = d.SerialNumber
		}
		ports = append(ports, port)
	}

	for _, pattern := range builtinPatterns {
		matches, err := globPorts(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			if seen[path] {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				continue
			}
			seen[path] = true
			ports = append(ports, serialPort{Path: path, Name: filepath.Base(path)})
		}
	}

	if len(ports) == 0 && enumErr != nil {
		return nil, fmt.Errorf("list serial ports: %w", enumErr)
	}
	return ports, nil
}

// isLikelyPanel reports whether a port is worth a handshake in Safe mode.
func isLikelyPanel(port *serialPort) bool {
	upper := strings.ToUpper(port.VIDPID)
	for _, known := range knownBridges {
		if upper == known {
			return true
		}
	}

	if strings.Contains(strings.ToLower(port.Product), "dwin") {
		return true
	}

	name := filepath.Base(port.Path)
	return strings.HasPrefix(name, "ttyAMA") || name == "ttyS0"
}
