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

package frame

import (
	"bytes"
	"testing"
)

// =============================================================================
// Fuzz Tests for Reply Recognition
// =============================================================================
// Line noise and partial replies from the panel must never panic the worker
// or produce a window that is not bounded by both markers.
//
// Run with: go test -fuzz=FuzzExtract -fuzztime=30s ./internal/frame/

// FuzzExtract checks that any recognized frame is bounded by the markers and
// that skipped bytes, frame and remainder add back up to the input.
func FuzzExtract(f *testing.F) {
	f.Add([]byte{0xAA, 0x01, 0x02, 0x03, 0xCC, 0x33, 0xC3, 0x3C})
	f.Add([]byte{0xAA, 0x00, 0x4F, 0x4B, 0xCC, 0x33, 0xC3, 0x3C}) // Handshake reply
	f.Add([]byte{0xAA, 0xCC, 0x33, 0xC3})                         // Truncated suffix
	f.Add([]byte{0xCC, 0x33, 0xC3, 0x3C, 0xAA})                   // Markers reversed
	f.Add([]byte{})
	f.Add([]byte{0xAA, 0xAA, 0xAA})

	f.Fuzz(func(t *testing.T, buf []byte) {
		parts, rest, ok := Extract(buf)
		if !ok {
			if !bytes.Equal(rest, buf) {
				t.Fatalf("incomplete extract changed remainder: %x -> %x", buf, rest)
			}
			return
		}

		if len(parts.Head) != 1 || parts.Head[0] != Prefix {
			t.Fatalf("head %x is not the prefix", parts.Head)
		}
		if !bytes.Equal(parts.Tail, Suffix) {
			t.Fatalf("tail %x is not the suffix", parts.Tail)
		}
		if bytes.IndexByte(parts.Skipped, Prefix) >= 0 {
			t.Fatalf("skipped bytes %x contain a prefix", parts.Skipped)
		}
		if bytes.Contains(parts.Body, Suffix) {
			t.Fatalf("body %x contains a suffix", parts.Body)
		}

		var joined []byte
		joined = append(joined, parts.Skipped...)
		joined = append(joined, parts.Bytes()...)
		joined = append(joined, rest...)
		if !bytes.Equal(joined, buf) {
			t.Fatalf("parts do not reassemble input: %x != %x", joined, buf)
		}
	})
}

// FuzzText checks the ASCII encoder never accepts a high byte.
func FuzzText(f *testing.F) {
	f.Add("Monkeys!")
	f.Add("ÅÄÖ")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		out, err := Text(s)
		if err != nil {
			return
		}
		for _, b := range out {
			if b >= 0x80 {
				t.Fatalf("accepted non-ASCII byte 0x%02X in %q", b, s)
			}
		}
	})
}
