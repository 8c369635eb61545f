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
	"fmt"
	"strings"
)

// Parts is a frame split into its markers and body.
// Slices alias the buffer they were extracted from.
type Parts struct {
	Skipped []byte // Bytes seen before the prefix
	Head    []byte // Prefix, or empty when absent
	Body    []byte // Payload between the markers
	Tail    []byte // Suffix, or empty when absent
}

// Complete reports whether both markers are present.
func (p Parts) Complete() bool {
	return len(p.Head) > 0 && len(p.Tail) > 0
}

// Bytes reassembles head, body and tail into a new slice.
func (p Parts) Bytes() []byte {
	out := make([]byte, 0, len(p.Head)+len(p.Body)+len(p.Tail))
	out = append(out, p.Head...)
	out = append(out, p.Body...)
	return append(out, p.Tail...)
}

// String formats the parts the way the wire log prints received frames.
func (p Parts) String() string {
	return fmt.Sprintf("%x %x %x  %q", p.Head, p.Body, p.Tail, p.Body)
}

// Extract finds the first window in buf bounded by the prefix and the suffix.
// It returns ok=false when buf holds no complete frame yet, in which case
// rest is buf unchanged. Bytes before the prefix are reported in Skipped.
func Extract(buf []byte) (parts Parts, rest []byte, ok bool) {
	start := bytes.IndexByte(buf, Prefix)
	if start < 0 {
		return Parts{}, buf, false
	}

	end := bytes.Index(buf[start+1:], Suffix)
	if end < 0 {
		return Parts{}, buf, false
	}
	end += start + 1

	parts = Parts{
		Skipped: buf[:start],
		Head:    buf[start : start+1],
		Body:    buf[start+1 : end],
		Tail:    buf[end : end+len(Suffix)],
	}
	return parts, buf[end+len(Suffix):], true
}

// HasPrefix reports whether buf contains the frame prefix anywhere.
func HasPrefix(buf []byte) bool {
	return bytes.IndexByte(buf, Prefix) >= 0
}

// Split strips the prefix into Head when data starts with it and the suffix
// into Tail when data ends with it. Partial frames keep whatever markers
// they have.
func Split(data []byte) Parts {
	var parts Parts
	if len(data) > 0 && data[0] == Prefix {
		parts.Head, data = data[:1], data[1:]
	}
	if bytes.HasSuffix(data, Suffix) {
		cut := len(data) - len(Suffix)
		data, parts.Tail = data[:cut], data[cut:]
	}
	parts.Body = data
	return parts
}

// FormatHex formats data as space-separated uppercase hex, truncating
// anything longer than 32 bytes.
func FormatHex(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}

	shown := data
	if len(shown) > 32 {
		shown = shown[:32]
	}
	parts := make([]string, len(shown))
	for i, b := range shown {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	out := strings.Join(parts, " ")
	if len(data) > 32 {
		out += fmt.Sprintf(" ... (%d bytes total)", len(data))
	}
	return out
}
