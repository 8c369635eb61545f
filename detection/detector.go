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

// Package detection finds serial ports that may have a DWIN panel attached
// and optionally confirms them with a handshake.
package detection

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ZaparooProject/go-dwin"
)

// Mode represents the level of invasiveness for device detection
type Mode int

const (
	// Passive mode only checks port metadata without any communication
	Passive Mode = iota
	// Safe mode sends a handshake to ports that look like USB-UART bridges
	// or board UARTs
	Safe
	// Full mode sends a handshake to every port not ignored or blocked and
	// also reports the ports that stayed silent
	Full
)

// Confidence represents the confidence level of device detection
type Confidence int

const (
	// Low confidence - a serial port nothing is known about
	Low Confidence = iota
	// Medium confidence - a bridge chip or UART panels are commonly wired to
	Medium
	// High confidence - the port answered a handshake
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// DeviceInfo represents a serial port that may have a panel attached
type DeviceInfo struct {
	// Additional metadata (vidpid, product, serial)
	Metadata map[string]string
	// Connection path (e.g., "/dev/ttyAMA0", "COM3")
	Path string
	// Human-readable device name
	Name string
	// Detection confidence level
	Confidence Confidence
}

// String returns a human-readable representation of the device
func (d DeviceInfo) String() string {
	return fmt.Sprintf("serial port %s (confidence: %s)", d.Path, d.Confidence)
}

// ProbeFunc reports whether a panel answers on path.
type ProbeFunc func(ctx context.Context, path string) bool

// Options configures the detection behavior
type Options struct {
	// Probe replaces the handshake probe; nil uses ProbeHandshake
	Probe ProbeFunc
	// USB VID:PID pairs to skip (e.g., ["1234:5678", "ABCD:EF01"])
	Blocklist []string
	// Device paths to explicitly ignore (e.g., ["/dev/ttyUSB0", "COM2"])
	IgnorePaths []string
	// Cache TTL duration
	CacheTTL time.Duration
	// Maximum time to wait for a single probe
	ProbeTimeout time.Duration
	// Detection invasiveness level
	Mode Mode
	// Enable result caching
	EnableCache bool
}

// DefaultOptions returns sensible default detection options
func DefaultOptions() Options {
	return Options{
		Mode:         Safe,
		ProbeTimeout: 2 * time.Second,
		Blocklist:    DefaultBlocklist(),
		EnableCache:  true,
		CacheTTL:     30 * time.Second,
	}
}

var (
	// ErrNoDevicesFound indicates no panels were detected
	ErrNoDevicesFound = errors.New("no DWIN displays found")
	// ErrDetectionTimeout indicates detection timed out
	ErrDetectionTimeout = errors.New("detection timeout")
)

// listPorts is replaced in tests.
var listPorts = getSerialPorts

// Detect searches the serial ports for panels. Results are ordered by
// confidence, highest first.
func Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts.EnableCache {
		if cached, found := getCached(opts.CacheTTL); found {
			// Cached results bypass enumeration, so filter them again
			if devices := filterDevices(cached, opts); len(devices) > 0 {
				return devices, nil
			}
			return nil, ErrNoDevicesFound
		}
	}

	ports, err := listPorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	devices := processPorts(ctx, filterPorts(ports, opts), opts)
	if ctx.Err() != nil {
		return nil, ErrDetectionTimeout
	}

	if opts.EnableCache {
		if len(devices) > 0 {
			setCached(devices)
		} else {
			// A stale entry would point callers at a disconnected panel
			clearCache()
		}
	}

	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	sortByConfidence(devices)
	return devices, nil
}

// First returns the most likely panel port.
func First(ctx context.Context, opts *Options) (DeviceInfo, error) {
	devices, err := Detect(ctx, opts)
	if err != nil {
		return DeviceInfo{}, err
	}
	return devices[0], nil
}

// filterPorts removes blocked and ignored ports
func filterPorts(ports []serialPort, opts *Options) []serialPort {
	var filtered []serialPort
	for _, port := range ports {
		if port.VIDPID != "" && IsBlocked(port.VIDPID, opts.Blocklist) {
			continue
		}
		if IsPathIgnored(port.Path, opts.IgnorePaths) {
			continue
		}
		filtered = append(filtered, port)
	}
	return filtered
}

// filterDevices applies IgnorePaths and Blocklist filtering to a device list.
func filterDevices(devices []DeviceInfo, opts *Options) []DeviceInfo {
	if len(opts.IgnorePaths) == 0 && len(opts.Blocklist) == 0 {
		return devices
	}

	var filtered []DeviceInfo
	for _, device := range devices {
		if IsPathIgnored(device.Path, opts.IgnorePaths) {
			continue
		}
		if vidpid, ok := device.Metadata["vidpid"]; ok && IsBlocked(vidpid, opts.Blocklist) {
			continue
		}
		filtered = append(filtered, device)
	}
	return filtered
}

func processPorts(ctx context.Context, ports []serialPort, opts *Options) []DeviceInfo {
	var devices []DeviceInfo
	for i := range ports {
		if ctx.Err() != nil {
			return devices
		}
		if device, ok := processPort(ctx, &ports[i], opts); ok {
			devices = append(devices, device)
		}
	}
	return devices
}

// processPort handles a single port's detection logic
func processPort(ctx context.Context, port *serialPort, opts *Options) (DeviceInfo, bool) {
	likely := isLikelyPanel(port)

	var shouldProbe bool
	confidence := Low
	if likely {
		confidence = Medium
	}
	switch opts.Mode {
	case Passive:
		if !likely {
			return DeviceInfo{}, false
		}
	case Safe:
		if !likely {
			return DeviceInfo{}, false
		}
		shouldProbe = true
	case Full:
		shouldProbe = true
	}

	device := createDeviceInfo(port, confidence)
	if !shouldProbe {
		return device, true
	}

	probe := opts.Probe
	if probe == nil {
		probe = ProbeHandshake
	}
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !probe(probeCtx, port.Path) {
		dwin.Debugf("detection: no handshake on %s", port.Path)
		// Full mode reports silent ports too, ranked below answering ones
		if opts.Mode == Safe {
			return DeviceInfo{}, false
		}
		return device, true
	}
	device.Confidence = High
	return device, true
}

func createDeviceInfo(port *serialPort, confidence Confidence) DeviceInfo {
	device := DeviceInfo{
		Path:       port.Path,
		Name:       port.Name,
		Confidence: confidence,
		Metadata:   make(map[string]string),
	}
	if port.VIDPID != "" {
		device.Metadata["vidpid"] = port.VIDPID
	}
	if port.Product != "" {
		device.Metadata["product"] = port.Product
	}
	if port.SerialNumber != "" {
		device.Metadata["serial"] = port.SerialNumber
	}
	return device
}

// sortByConfidence keeps enumeration order among equal confidences.
func sortByConfidence(devices []DeviceInfo) {
	slices.SortStableFunc(devices, func(a, b DeviceInfo) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
}

// ClearDetectionCache removes all cached detection results
func ClearDetectionCache() {
	clearCache()
}
