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
	"time"

	"github.com/ZaparooProject/go-dwin"
	"github.com/ZaparooProject/go-dwin/transport/uart"
)

// ProbeHandshake opens path and reports whether a panel answers a
// handshake before ctx expires.
//
// Only one attempt is made per port: anything else on the bus gets a single
// six-byte frame and nothing more.
func ProbeHandshake(ctx context.Context, path string) bool {
	port, err := uart.Open(path)
	if err != nil {
		dwin.Debugf("detection: open %s: %v", path, err)
		return false
	}

	timeout := time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = max(time.Until(deadline), time.Millisecond)
	}

	err = dwin.Run(port, func(d *dwin.Display) error {
		return d.Ping(ctx)
	}, dwin.WithReadTimeout(timeout), dwin.WithReplyBuffer(1), dwin.WithTraceSize(4))
	if err != nil {
		dwin.Debugf("detection: probe %s: %v", path, err)
		return false
	}
	return true
}
