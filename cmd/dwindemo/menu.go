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
	"time"

	"github.com/ZaparooProject/go-dwin"
	"github.com/ZaparooProject/go-dwin/input"
)

const (
	menuRows       = 4
	sidebarWidth   = 180
	scrollbarWidth = 10
)

var (
	scrollTrack = dwin.Color{R: 0.25, G: 0.25, B: 0.25}
	scrollThumb = dwin.Color{R: 0.75, G: 0.75, B: 0.75}
)

// menu is a scrolling list with a selection marker, moved by the knob.
type menu struct {
	d        *dwin.Display
	items    []string
	x, y     int
	width    int
	height   int
	selected int
	offset   int
	font     dwin.Font
}

func newMenu(d *dwin.Display, items []string, x, y, width, height int) *menu {
	// Rows shorter than the smallest font still get font 0
	font, _ := dwin.LargestFontForHeight(height / menuRows)
	return &menu{d: d, items: items, x: x, y: y, width: width, height: height, font: font}
}

func (m *menu) rowHeight() int {
	return m.height / menuRows
}

func (m *menu) scrollable() bool {
	return len(m.items) > menuRows
}

// move shifts the selection by delta rows, keeping one row of context
// visible above and below it where possible.
func (m *menu) move(delta int) error {
	next := m.selected + delta
	if next == m.selected || next < 0 || next >= len(m.items) {
		return nil
	}
	switch {
	case next < m.offset+1 && m.offset > 0:
		m.offset--
	case next >= m.offset+menuRows-1 && m.offset < len(m.items)-menuRows:
		m.offset++
	}
	m.selected = next
	if err := m.draw(); err != nil {
		return err
	}
	return m.d.Update()
}

func (m *menu) draw() error {
	itemWidth := m.width
	if m.scrollable() {
		itemWidth -= scrollbarWidth
	}
	for row := range menuRows {
		if err := m.drawRow(row, itemWidth); err != nil {
			return err
		}
	}
	return m.drawScrollbar()
}

func (m *menu) drawRow(row, itemWidth int) error {
	h := m.rowHeight()
	x0, y0 := uint16(m.x), uint16(m.y+row*h)
	x1, y1 := uint16(m.x+itemWidth-1), uint16(m.y+(row+1)*h-1)

	bg := dwin.Black
	if err := m.d.DrawRect(x0, y0, x1, y1, bg, dwin.FillSolid); err != nil {
		return err
	}
	idx := m.offset + row
	if idx < len(m.items) {
		if err := m.d.DrawString(x0, y0, m.items[idx], m.font, dwin.White, &bg, true); err != nil {
			return err
		}
	}
	marker := dwin.Black
	if idx == m.selected {
		marker = dwin.White
	}
	return m.d.DrawRect(x0, y0, x1, y1, marker, dwin.FillNone)
}

func (m *menu) drawScrollbar() error {
	if !m.scrollable() {
		return nil
	}
	n := len(m.items)
	before := m.offset
	after := n - menuRows - before
	x0, x1 := uint16(m.x+m.width-scrollbarWidth), uint16(m.x+m.width-1)
	thumbTop := m.y + before*m.height/n
	thumbBottom := m.y + m.height - after*m.height/n - 1

	if err := m.d.DrawRect(x0, uint16(m.y), x1, uint16(m.y+m.height-1), scrollTrack, dwin.FillSolid); err != nil {
		return err
	}
	return m.d.DrawRect(x0, uint16(thumbTop), x1, uint16(thumbBottom), scrollThumb, dwin.FillSolid)
}

// showSelection writes the chosen item in the sidebar.
func showSelection(d *dwin.Display, text string) error {
	bg := dwin.Black
	if err := d.DrawRect(0, 0, sidebarWidth-1, 40, bg, dwin.FillSolid); err != nil {
		return err
	}
	if err := d.DrawString(4, 4, text, dwin.Font(3), dwin.Green, &bg, false); err != nil {
		return err
	}
	return d.Update()
}

var menuItems = []string{"one", "two", "three", "monkeys", "file", "four", "last"}

// runMenu draws the menu and follows knob and button events until ctx is
// done or the events channel closes.
func runMenu(ctx context.Context, d *dwin.Display, controls *input.Controls) error {
	if err := d.Clear(dwin.Black); err != nil {
		return err
	}
	m := newMenu(d, menuItems, sidebarWidth, 0, screenWidth-sidebarWidth, screenHeight)
	if err := m.draw(); err != nil {
		return err
	}
	if err := d.Update(); err != nil {
		return err
	}

	buzzer := controls.Buzzer()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-controls.Events():
			if !ok {
				return nil
			}
			if err := handleEvent(ctx, d, m, buzzer, ev); err != nil {
				return err
			}
		}
	}
}

func handleEvent(ctx context.Context, d *dwin.Display, m *menu, buzzer *input.Buzzer, ev input.Event) error {
	dwin.Debugf("input: %s", ev)
	switch ev.Kind {
	case input.RotateCW, input.RotateCCW:
		return m.move(ev.Delta)
	case input.Pressed:
		if buzzer != nil {
			return buzzer.Blip(ctx, 10*time.Millisecond)
		}
	case input.Held:
		if buzzer != nil {
			return buzzer.SetAlarm(!buzzer.Alarm())
		}
	case input.Released:
		return showSelection(d, fmt.Sprintf("> %s", m.items[m.selected]))
	}
	return nil
}
