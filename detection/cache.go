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

package detection

import (
	"time"

	"github.com/ZaparooProject/go-dwin/internal/syncutil"
	"github.com/jonboulle/clockwork"
)

// detectionCache holds the last non-empty detection result.
type detectionCache struct {
	timestamp time.Time
	clock     clockwork.Clock
	devices   []DeviceInfo
	mu        syncutil.RWMutex
}

var cache = &detectionCache{clock: clockwork.NewRealClock()}

// getCached returns cached devices if available and not expired
func getCached(ttl time.Duration) ([]DeviceInfo, bool) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()

	if cache.devices == nil || cache.clock.Since(cache.timestamp) > ttl {
		return nil, false
	}

	devices := make([]DeviceInfo, len(cache.devices))
	copy(devices, cache.devices)
	return devices, true
}

func setCached(devices []DeviceInfo) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.devices = make([]DeviceInfo, len(devices))
	copy(cache.devices, devices)
	cache.timestamp = cache.clock.Now()
}

func clearCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.devices = nil
}
