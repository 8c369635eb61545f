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
	"math"

	"github.com/ZaparooProject/go-dwin/internal/frame"
)

// DWIN command codes
const (
	cmdHandshake    = 0x00
	cmdClear        = 0x01
	cmdDrawLine     = 0x03
	cmdDrawRect     = 0x05
	cmdDrawString   = 0x11
	cmdDrawNumber   = 0x14
	cmdDrawQR       = 0x21
	cmdLoadJPEG     = 0x22
	cmdSetBacklight = 0x30
	cmdSetRotation  = 0x34
	cmdUpdateLCD    = 0x3D
)

// Rotation commands carry a fixed three-byte header before the angle index.
var rotationHeader = []byte{cmdSetRotation, 0x5A, 0xA5}

// Angles accepted by SetRotation, in wire index order.
var rotationAngles = [...]int{0, 90, 180, 270}

// Draw flag bits
const (
	stringVariableWidth = 1 << 7
	stringDrawBG        = 1 << 6

	numberDrawBG      = 1 << 7
	numberSigned      = 1 << 6
	numberRightAdjust = 1 << 5
	numberZeroPad     = 1 << 4

	fontMask = 0x0F
)

// DefaultDigits is the total digit count DrawNumber uses when none is given.
const DefaultDigits = 5

// Command is a single panel operation. Payload returns the frame body
// without prefix or suffix; every encoding or range problem is reported
// here so nothing invalid ever reaches the queue.
type Command interface {
	Payload() ([]byte, error)
	// ExpectsReply reports whether the panel answers this command.
	ExpectsReply() bool
}

// Encode returns the complete wire frame for cmd.
func Encode(cmd Command) ([]byte, error) {
	payload, err := cmd.Payload()
	if err != nil {
		return nil, err
	}
	return frame.Wrap(payload), nil
}

// Handshake asks the panel to answer with "OK".
type Handshake struct{}

func (Handshake) Payload() ([]byte, error) { return []byte{cmdHandshake}, nil }
func (Handshake) ExpectsReply() bool       { return true }

// SetRotation rotates the frame buffer. Angle must be 0, 90, 180 or 270.
type SetRotation struct {
	Angle int
}

func (c SetRotation) Payload() ([]byte, error) {
	for i, a := range rotationAngles {
		if a == c.Angle {
			return append(append([]byte(nil), rotationHeader...), byte(i)), nil
		}
	}
	return nil, &domainError{
		msg: fmt.Sprintf("unsupported rotation angle %d: want 0, 90, 180 or 270", c.Angle),
	}
}

func (SetRotation) ExpectsReply() bool { return true }

// SetBacklight sets the backlight level in [0, 1].
type SetBacklight struct {
	Level float64
}

func (c SetBacklight) Payload() ([]byte, error) {
	lum, err := Luminance(c.Level)
	if err != nil {
		return nil, err
	}
	return []byte{cmdSetBacklight, lum}, nil
}

func (SetBacklight) ExpectsReply() bool { return false }

// UpdateLCD copies the frame buffer to the screen.
type UpdateLCD struct{}

func (UpdateLCD) Payload() ([]byte, error) { return []byte{cmdUpdateLCD}, nil }
func (UpdateLCD) ExpectsReply() bool       { return false }

// ClearFrame fills the frame buffer with a single color.
type ClearFrame struct {
	Color Color
}

func (c ClearFrame) Payload() ([]byte, error) {
	color, err := c.Color.bytes()
	if err != nil {
		return nil, err
	}
	return append([]byte{cmdClear}, color...), nil
}

func (ClearFrame) ExpectsReply() bool { return false }

// DrawString renders ASCII text with its top-left corner at (X, Y).
// A nil BG leaves the background untouched.
type DrawString struct {
	BG         *Color
	Text       string
	FG         Color
	X, Y       uint16
	Font       Font
	FixedWidth bool
}

func (c DrawString) Payload() ([]byte, error) {
	if err := c.Font.check(); err != nil {
		return nil, err
	}

	flags := byte(c.Font) & fontMask
	if !c.FixedWidth {
		flags |= stringVariableWidth
	}
	if c.BG != nil {
		flags |= stringDrawBG
	}

	colors, err := colorPair(c.FG, c.BG)
	if err != nil {
		return nil, err
	}
	text, err := frame.Text(c.Text)
	if err != nil {
		return nil, fmt.Errorf("draw string: %w", err)
	}

	out := make([]byte, 0, 2+len(colors)+4+len(text))
	out = append(out, cmdDrawString, flags)
	out = append(out, colors...)
	out = append(out, frame.Uint16(c.X)...)
	out = append(out, frame.Uint16(c.Y)...)
	return append(out, text...), nil
}

func (DrawString) ExpectsReply() bool { return false }

// NumberFormat controls how DrawNumber lays out a value.
type NumberFormat struct {
	// Digits is the total number of digits shown; 0 means DefaultDigits.
	Digits uint8
	// Decimals is how many of Digits follow the decimal point.
	Decimals   uint8
	Signed     bool
	LeftAdjust bool
	ZeroPad    bool
}

func (f NumberFormat) digits() uint8 {
	if f.Digits == 0 {
		return DefaultDigits
	}
	return f.Digits
}

// DrawNumber renders a fixed-point number. Value is scaled by 10^Decimals
// and rounded half away from zero before encoding.
//
// A signed, right-adjusted number that rounds non-negative is shifted right
// by one glyph so that it lines up with negative values, whose sign takes
// that column.
type DrawNumber struct {
	BG     *Color
	FG     Color
	Value  float64
	Format NumberFormat
	X, Y   uint16
	Font   Font
}

// Scaled returns the integer sent on the wire.
func (c DrawNumber) Scaled() (int64, error) {
	scaled := math.Round(c.Value * math.Pow10(int(c.Format.Decimals)))
	if math.IsNaN(scaled) || scaled < math.MinInt64 || scaled >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: number %v with %d decimals", ErrEncoding, c.Value, c.Format.Decimals)
	}
	return int64(scaled), nil
}

// Position returns the x coordinate after the sign-column shift.
func (c DrawNumber) Position(scaled int64) (uint16, error) {
	if !c.Format.Signed || c.Format.LeftAdjust || scaled < 0 {
		return c.X, nil
	}
	x := uint32(c.X) + uint32(c.Font.Width())
	if x > math.MaxUint16 {
		return 0, fmt.Errorf("%w: x %d shifted past %d", ErrEncoding, c.X, math.MaxUint16)
	}
	return uint16(x), nil
}

func (c DrawNumber) Payload() ([]byte, error) {
	if err := c.Font.check(); err != nil {
		return nil, err
	}
	digits, decimals := c.Format.digits(), c.Format.Decimals
	if decimals > digits {
		return nil, fmt.Errorf("%w: %d decimals exceed %d digits", ErrDomain, decimals, digits)
	}

	scaled, err := c.Scaled()
	if err != nil {
		return nil, err
	}
	value, err := frame.Long(scaled, c.Format.Signed)
	if err != nil {
		return nil, fmt.Errorf("draw number: %w", err)
	}
	x, err := c.Position(scaled)
	if err != nil {
		return nil, err
	}

	flags := byte(c.Font) & fontMask
	if c.BG != nil {
		flags |= numberDrawBG
	}
	if c.Format.Signed {
		flags |= numberSigned
	}
	if !c.Format.LeftAdjust {
		flags |= numberRightAdjust
	}
	if c.Format.ZeroPad {
		flags |= numberZeroPad
	}

	colors, err := colorPair(c.FG, c.BG)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 20)
	out = append(out, cmdDrawNumber, flags)
	out = append(out, colors...)
	out = append(out, digits-decimals, decimals)
	out = append(out, frame.Uint16(x)...)
	out = append(out, frame.Uint16(c.Y)...)
	return append(out, value...), nil
}

func (DrawNumber) ExpectsReply() bool { return false }

// DrawLine draws a one-pixel line between two points.
type DrawLine struct {
	Color          Color
	X0, Y0, X1, Y1 uint16
}

func (c DrawLine) Payload() ([]byte, error) {
	color, err := c.Color.bytes()
	if err != nil {
		return nil, err
	}
	out := append([]byte{cmdDrawLine}, color...)
	return appendCorners(out, c.X0, c.Y0, c.X1, c.Y1), nil
}

func (DrawLine) ExpectsReply() bool { return false }

// FillMode selects how DrawRect paints the rectangle.
type FillMode byte

const (
	FillNone  FillMode = 0 // Outline only
	FillSolid FillMode = 1
	FillXOR   FillMode = 2 // Invert the pixels inside
)

// DrawRect draws a rectangle between two corners.
type DrawRect struct {
	Color          Color
	X0, Y0, X1, Y1 uint16
	Fill           FillMode
}

func (c DrawRect) Payload() ([]byte, error) {
	if c.Fill > FillXOR {
		return nil, fmt.Errorf("%w: fill mode %d", ErrDomain, c.Fill)
	}
	color, err := c.Color.bytes()
	if err != nil {
		return nil, err
	}
	out := append([]byte{cmdDrawRect, byte(c.Fill)}, color...)
	return appendCorners(out, c.X0, c.Y0, c.X1, c.Y1), nil
}

func (DrawRect) ExpectsReply() bool { return false }

// DrawQR renders Text as a QR code. PixelSize 0 is treated as 1.
type DrawQR struct {
	Text      string
	X, Y      uint16
	PixelSize uint8
}

func (c DrawQR) Payload() ([]byte, error) {
	text, err := frame.Text(c.Text)
	if err != nil {
		return nil, fmt.Errorf("draw qr: %w", err)
	}
	out := make([]byte, 0, 6+len(text))
	out = append(out, cmdDrawQR)
	out = append(out, frame.Uint16(c.X)...)
	out = append(out, frame.Uint16(c.Y)...)
	out = append(out, max(c.PixelSize, 1))
	return append(out, text...), nil
}

func (DrawQR) ExpectsReply() bool { return false }

// LoadJPEG shows an image stored in the panel's flash.
type LoadJPEG struct {
	ID uint8
}

func (c LoadJPEG) Payload() ([]byte, error) {
	return []byte{cmdLoadJPEG, 0x00, c.ID}, nil
}

func (LoadJPEG) ExpectsReply() bool { return false }

// colorPair encodes a foreground and optional background color. A missing
// background is sent as black.
func colorPair(fg Color, bg *Color) ([]byte, error) {
	fgBytes, err := fg.bytes()
	if err != nil {
		return nil, err
	}
	background := Black
	if bg != nil {
		background = *bg
	}
	bgBytes, err := background.bytes()
	if err != nil {
		return nil, err
	}
	return append(fgBytes, bgBytes...), nil
}

func appendCorners(out []byte, x0, y0, x1, y1 uint16) []byte {
	for _, v := range [...]uint16{x0, y0, x1, y1} {
		out = append(out, frame.Uint16(v)...)
	}
	return out
}
