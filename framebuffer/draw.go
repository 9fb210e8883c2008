// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// HLine draws n pixels to the right of (x, y). On an unrotated 1 bit canvas
// whole bytes are written at once.
func (c *Canvas) HLine(x, y, n int, col color.Color) {
	w, h := c.Size()
	if x < 0 {
		n += x
		x = 0
	}
	if x+n > w {
		n = w - x
	}
	if n <= 0 || y < 0 || y >= h {
		return
	}
	ec := c.convert(col)
	end := x + n
	if c.rotation != Rotate0 || c.format.BitsPerPixel != 1 {
		for ; x < end; x++ {
			c.set(x, y, ec)
		}
		return
	}
	for ; x < end && x%8 != 0; x++ {
		c.set(x, y, ec)
	}
	fills := c.fills(ec)
	row := y * c.rowBytes
	for ; x+8 <= end; x += 8 {
		for i := 0; i < c.format.Planes; i++ {
			c.buf[i*c.planeSize+row+x/8] = fills[i]
		}
	}
	for ; x < end; x++ {
		c.set(x, y, ec)
	}
}

// VLine draws n pixels below (x, y).
func (c *Canvas) VLine(x, y, n int, col color.Color) {
	ec := c.convert(col)
	for i := 0; i < n; i++ {
		c.set(x, y+i, ec)
	}
}

// Line draws a line between both end points, inclusive, using Bresenham's
// algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int, col color.Color) {
	if y0 == y1 {
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		c.HLine(x0, y0, x1-x0+1, col)
		return
	}
	ec := c.convert(col)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, ec)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Rect draws the outline of r.
func (c *Canvas) Rect(r image.Rectangle, col color.Color) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	c.HLine(r.Min.X, r.Min.Y, r.Dx(), col)
	c.HLine(r.Min.X, r.Max.Y-1, r.Dx(), col)
	c.VLine(r.Min.X, r.Min.Y, r.Dy(), col)
	c.VLine(r.Max.X-1, r.Min.Y, r.Dy(), col)
}

// FillRect fills r.
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	r = r.Canon()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		c.HLine(r.Min.X, y, r.Dx(), col)
	}
}

// Circle draws a circle outline with the midpoint algorithm.
func (c *Canvas) Circle(cx, cy, radius int, col color.Color) {
	if radius < 0 {
		return
	}
	ec := c.convert(col)
	x, y := radius, 0
	d := 1 - radius
	for x >= y {
		for _, p := range [...]image.Point{
			{cx + x, cy + y}, {cx + y, cy + x}, {cx - y, cy + x}, {cx - x, cy + y},
			{cx - x, cy - y}, {cx - y, cy - x}, {cx + y, cy - x}, {cx + x, cy - y},
		} {
			c.set(p.X, p.Y, ec)
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// FillCircle draws a filled disc.
func (c *Canvas) FillCircle(cx, cy, radius int, col color.Color) {
	if radius < 0 {
		return
	}
	x, y := radius, 0
	d := 1 - radius
	for x >= y {
		c.HLine(cx-x, cy+y, 2*x+1, col)
		c.HLine(cx-x, cy-y, 2*x+1, col)
		c.HLine(cx-y, cy+x, 2*y+1, col)
		c.HLine(cx-y, cy-x, 2*y+1, col)
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// Text draws s with its baseline starting at dot.
func (c *Canvas) Text(dot image.Point, s string, face font.Face, col color.Color) {
	d := font.Drawer{
		Dst:  c,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	d.DrawString(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
