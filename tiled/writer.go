// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tiled

import (
	"github.com/GermanBionicSystems/epaper/panel"
	"github.com/GermanBionicSystems/epaper/transport"
)

// writer sends to any subset of controllers. Once a write failed every
// following call is a no-op and done returns the first error.
type writer struct {
	d   *Dev
	err error
}

func (d *Dev) writer() *writer {
	return &writer{d: d}
}

func (w *writer) write(c Chips, p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	if w.err = w.d.setControl(c); w.err != nil {
		return
	}
	if err := w.d.c.Tx(p, nil); err != nil {
		w.err = &transport.Error{Role: transport.RoleSPI, Err: err}
	}
}

func (w *writer) cmd(c Chips, cmd byte, args ...byte) {
	w.write(c, []byte{cmd})
	w.write(c|data, args)
}

// done deselects every controller and returns the first error.
func (w *writer) done() error {
	err := w.d.flush()
	if w.err != nil {
		return w.err
	}
	return err
}

// partialWindows sets the partial window of each controller to its part of
// r. Controllers r does not cover get an empty window.
func (w *writer) partialWindows(r panel.Rect) {
	for _, s := range []struct {
		c       Chips
		r       panel.Rect
		reverse bool
	}{
		{S2, rectS2, true},
		{M2, rectM2, true},
		{M1, rectM1, false},
		{S1, rectS1, false},
	} {
		part := r.Intersect(s.r).Offset(-s.r.X, -s.r.Y)
		w.cmd(s.c, partialWindow, partialWindowData(part, s.r.Width, s.reverse)...)
	}
}

// partialWindowData encodes r, mirrored horizontally in a sub-panel width
// wide for the controllers scanning right to left.
func partialWindowData(r panel.Rect, width int, reverse bool) []byte {
	if r.Empty() {
		return []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0xFF, 0xFF, 0x01}
	}
	x0 := r.X
	if reverse {
		x0 = width - r.X - r.Width
	}
	x1 := x0 + r.Width - 1
	y0 := r.Y
	y1 := y0 + r.Height - 1
	return []byte{
		byte(x0 >> 8), byte(x0),
		byte(x1 >> 8), byte(x1),
		byte(y0 >> 8), byte(y0),
		byte(y1 >> 8), byte(y1),
		0x01,
	}
}

// windowData sends each controller the rows of pixels overlapping it. pixels
// rows are r.Width/8 bytes; they repeat when pixels is shorter than r.
func (w *writer) windowData(cmd byte, r panel.Rect, pixels []byte) {
	top := overlap(r.Y, r.Y+r.Height, 0, topHeight)
	bottom := overlap(r.Y, r.Y+r.Height, topHeight, Height)
	left := overlap(r.X, r.X+r.Width, 0, leftWidth) / 8
	right := overlap(r.X, r.X+r.Width, leftWidth, Width) / 8
	row := left + right
	offset := func(y int) int {
		return (y * row) % len(pixels)
	}
	for _, q := range []struct {
		c       Chips
		y0, n   int
		skip, m int
	}{
		{S2, 0, top, 0, left},
		{M2, 0, top, left, right},
		{M1, top, bottom, 0, left},
		{S1, top, bottom, left, right},
	} {
		if q.n == 0 || q.m == 0 {
			continue
		}
		w.write(q.c, []byte{cmd})
		for y := q.y0; y < q.y0+q.n; y++ {
			o := offset(y) + q.skip
			w.write(q.c|data, pixels[o:o+q.m])
		}
	}
}
