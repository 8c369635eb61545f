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

package dwin

import (
	"fmt"

	"github.com/ZaparooProject/go-dwin/internal/frame"
)

// Color is a normalized RGB triple. Each channel must lie in [0, 1].
type Color struct {
	R, G, B float64
}

// Common colors.
var (
	Black   = Color{0, 0, 0}
	White   = Color{1, 1, 1}
	Red     = Color{1, 0, 0}
	Green   = Color{0, 1, 0}
	Blue    = Color{0, 0, 1}
	Yellow  = Color{1, 1, 0}
	Cyan    = Color{0, 1, 1}
	Magenta = Color{1, 0, 1}
	Gray    = Color{0.5, 0.5, 0.5}
)

// RGB565 quantizes c to the panel's 16-bit color word.
func (c Color) RGB565() (uint16, error) {
	v, err := frame.RGB565(c.R, c.G, c.B)
	if err != nil {
		return 0, fmt.Errorf("color %v: %w", c, err)
	}
	return v, nil
}

// bytes returns the 2-byte wire encoding of c.
func (c Color) bytes() ([]byte, error) {
	v, err := c.RGB565()
	if err != nil {
		return nil, err
	}
	return frame.Uint16(v), nil
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%.3f, %.3f, %.3f)", c.R, c.G, c.B)
}

// ColorFromRGB565 expands a 16-bit color word back to normalized channels.
func ColorFromRGB565(v uint16) Color {
	return Color{
		R: float64(v>>11&frame.MaxRed) / frame.MaxRed,
		G: float64(v>>5&frame.MaxGreen) / frame.MaxGreen,
		B: float64(v&frame.MaxBlue) / frame.MaxBlue,
	}
}

// Luminance quantizes a backlight level in [0, 1] to the 5-bit wire value.
func Luminance(level float64) (byte, error) {
	v, err := frame.Luminance(level)
	if err != nil {
		return 0, fmt.Errorf("luminance %v: %w", level, err)
	}
	return v, nil
}
