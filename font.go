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

import "fmt"

// Font indexes the panel's built-in fixed fonts, smallest first.
type Font uint8

// NumFonts is the number of built-in fonts.
const NumFonts = 10

var (
	fontHeights = [NumFonts]uint16{12, 16, 20, 24, 28, 32, 40, 48, 56, 64}
	fontWidths  = [NumFonts]uint16{6, 8, 10, 12, 14, 16, 20, 24, 28, 32}
)

// Valid reports whether f is one of the built-in fonts.
func (f Font) Valid() bool {
	return f < NumFonts
}

// Height returns the glyph height in pixels, or 0 for an invalid font.
func (f Font) Height() uint16 {
	if !f.Valid() {
		return 0
	}
	return fontHeights[f]
}

// Width returns the glyph advance in pixels, or 0 for an invalid font.
func (f Font) Width() uint16 {
	if !f.Valid() {
		return 0
	}
	return fontWidths[f]
}

func (f Font) String() string {
	if !f.Valid() {
		return fmt.Sprintf("font(%d)", uint8(f))
	}
	return fmt.Sprintf("font%d(%dx%d)", uint8(f), f.Width(), f.Height())
}

func (f Font) check() error {
	if !f.Valid() {
		return fmt.Errorf("%w: font index %d, want 0-%d", ErrDomain, uint8(f), NumFonts-1)
	}
	return nil
}

// FontHeight returns the height of font in pixels.
func FontHeight(font Font) uint16 { return font.Height() }

// FontWidth returns the width of font in pixels.
func FontWidth(font Font) uint16 { return font.Width() }

// LargestFontForHeight returns the largest font whose height is at most h.
// The bool is false when even the smallest font does not fit.
func LargestFontForHeight(h int) (Font, bool) {
	for i := NumFonts - 1; i >= 0; i-- {
		if int(fontHeights[i]) <= h {
			return Font(i), true
		}
	}
	return 0, false
}

// LargestFontForWidth returns the largest font that fits n characters in w
// pixels. n below 1 is treated as 1.
func LargestFontForWidth(w, n int) (Font, bool) {
	n = max(n, 1)
	for i := NumFonts - 1; i >= 0; i-- {
		if int(fontWidths[i])*n <= w {
			return Font(i), true
		}
	}
	return 0, false
}
