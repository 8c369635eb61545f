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
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Codec errors. The dwin package re-exports both.
var (
	ErrEncoding = errors.New("value cannot be encoded")
	ErrDomain   = errors.New("value outside protocol range")
)

// Byte encodes v as a single byte.
func Byte(v int64, signed bool) ([]byte, error) {
	return encodeInt(v, 1, signed)
}

// Word encodes v as a 2-byte big-endian integer.
func Word(v int64, signed bool) ([]byte, error) {
	return encodeInt(v, 2, signed)
}

// Long encodes v as a 4-byte big-endian integer.
func Long(v int64, signed bool) ([]byte, error) {
	return encodeInt(v, 4, signed)
}

// VeryLong encodes v as an 8-byte big-endian integer.
func VeryLong(v int64, signed bool) ([]byte, error) {
	return encodeInt(v, 8, signed)
}

// Uint16 encodes a coordinate or color word. It cannot fail.
func Uint16(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

// fits reports whether v is representable in width bytes.
func fits(v int64, width int, signed bool) bool {
	bits := uint(width) * 8
	if signed {
		if width >= 8 {
			return true
		}
		limit := int64(1) << (bits - 1)
		return v >= -limit && v < limit
	}
	if v < 0 {
		return false
	}
	if width >= 8 {
		return true
	}
	return v < int64(1)<<bits
}

func encodeInt(v int64, width int, signed bool) ([]byte, error) {
	if !fits(v, width, signed) {
		kind := "unsigned"
		if signed {
			kind = "signed"
		}
		return nil, fmt.Errorf("%w: %d does not fit in %d-byte %s integer", ErrEncoding, v, width, kind)
	}

	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(v))
	return out[8-width:], nil
}

// Text encodes s as 7-bit ASCII.
func Text(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return nil, fmt.Errorf("%w: non-ASCII byte 0x%02X at offset %d", ErrEncoding, s[i], i)
		}
	}
	return []byte(s), nil
}

// inUnitRange also rejects NaN.
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func quantize(maxValue, v float64) uint16 {
	return uint16(math.Floor(maxValue*v + 0.5))
}

// RGB565 packs normalized channels into a 16-bit color word.
func RGB565(r, g, b float64) (uint16, error) {
	if !inUnitRange(r) || !inUnitRange(g) || !inUnitRange(b) {
		return 0, fmt.Errorf("%w: color (%g, %g, %g) outside [0, 1]", ErrDomain, r, g, b)
	}
	red := quantize(MaxRed, r)
	green := quantize(MaxGreen, g)
	blue := quantize(MaxBlue, b)
	return red<<11 | green<<5 | blue, nil
}

// Color encodes normalized channels as a 2-byte RGB565 word.
func Color(r, g, b float64) ([]byte, error) {
	word, err := RGB565(r, g, b)
	if err != nil {
		return nil, err
	}
	return Uint16(word), nil
}

// Luminance quantizes a normalized backlight level to 5 bits.
func Luminance(l float64) (byte, error) {
	if !inUnitRange(l) {
		return 0, fmt.Errorf("%w: luminance %g outside [0, 1]", ErrDomain, l)
	}
	return byte(quantize(MaxLuminance, l)), nil
}

// Wrap builds a complete frame around the concatenated payload parts.
func Wrap(parts ...[]byte) []byte {
	size := Overhead
	for _, p := range parts {
		size += len(p)
	}

	out := make([]byte, 0, size)
	out = append(out, Prefix)
	for _, p := range parts {
		out = append(out, p...)
	}
	return append(out, Suffix...)
}
