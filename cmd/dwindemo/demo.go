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

package main

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/go-dwin"
)

// Panel size of the DMT48270C043 the demo was laid out for.
const (
	screenWidth  = 480
	screenHeight = 272
)

// numberTestValues exercise sign, rounding, padding and overflow.
var numberTestValues = []float64{0, 123, -48342, 2.21231, -87.8, 923.9898}

// setup performs the panel bring-up sequence.
func setup(ctx context.Context, d *dwin.Display, cfg *config) error {
	if err := d.Ping(ctx); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if err := d.SetRotation(cfg.Rotation); err != nil {
		return err
	}
	// The panel echoes the rotation frame
	if _, err := d.AwaitReply(ctx); err != nil {
		return fmt.Errorf("rotation: %w", err)
	}
	if err := d.SetBacklight(cfg.Backlight); err != nil {
		return err
	}
	if err := d.Update(); err != nil {
		return err
	}
	return d.Clear(dwin.Black)
}

// numberTest draws every value in four columns: plain, zero padded, left
// adjusted, and left adjusted with zero padding.
func numberTest(d *dwin.Display) error {
	const font = dwin.Font(5)
	columns := []dwin.NumberFormat{
		{Decimals: 2, Signed: true},
		{Decimals: 2, Signed: true, ZeroPad: true},
		{Decimals: 2, Signed: true, LeftAdjust: true},
		{Decimals: 2, Signed: true, LeftAdjust: true, ZeroPad: true},
	}

	for row, v := range numberTestValues {
		y := uint16(row) * font.Height()
		for col, format := range columns {
			x := uint16(col * screenWidth / len(columns))
			if err := d.DrawNumber(x, y, v, font, dwin.White, nil, format); err != nil {
				return fmt.Errorf("draw %v: %w", v, err)
			}
		}
	}
	return nil
}

// showcase draws one of each remaining primitive below the number grid.
func showcase(d *dwin.Display) error {
	bg := dwin.Blue
	steps := []func() error{
		func() error { return d.DrawRect(0, 200, screenWidth-1, screenHeight-1, dwin.Gray, dwin.FillSolid) },
		func() error { return d.DrawLine(0, 200, screenWidth-1, 200, dwin.Yellow) },
		func() error { return d.DrawString(8, 212, "go-dwin", dwin.Font(4), dwin.White, &bg, false) },
		func() error { return d.DrawRect(4, 208, 160, 244, dwin.White, dwin.FillNone) },
		func() error { return d.DrawQR(400, 204, "https://zaparoo.org", 2) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// flush waits until everything queued so far has been written, since reads
// are only served once no transmit is pending.
func flush(ctx context.Context, d *dwin.Display) error {
	if err := d.Ping(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func runDemo(ctx context.Context, d *dwin.Display, cfg *config) error {
	if err := setup(ctx, d, cfg); err != nil {
		return err
	}
	if err := numberTest(d); err != nil {
		return err
	}
	if err := showcase(d); err != nil {
		return err
	}
	if err := d.Update(); err != nil {
		return err
	}
	return flush(ctx, d)
}
