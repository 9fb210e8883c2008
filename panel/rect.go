// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"fmt"
	"image"
)

// Rect is a window in physical panel coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// RectOf converts an image.Rectangle.
func RectOf(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether r contains no pixel.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the largest window contained by both r and o. The zero
// Rect is returned when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	i := r.Image().Intersect(o.Image())
	if i.Empty() {
		return Rect{}
	}
	return RectOf(i)
}

// Offset translates r by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}
