// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"fmt"
)

// Rotation is the clockwise rotation applied to logical coordinates.
type Rotation uint8

// Valid Rotation.
const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (r Rotation) String() string {
	switch r {
	case Rotate90:
		return "90"
	case Rotate180:
		return "180"
	case Rotate270:
		return "270"
	}
	return "0"
}

// Set sets the Rotation to a value represented by the string s. Set
// implements the flag.Value interface.
func (r *Rotation) Set(s string) error {
	switch s {
	case "0":
		*r = Rotate0
	case "90":
		*r = Rotate90
	case "180":
		*r = Rotate180
	case "270":
		*r = Rotate270
	default:
		return fmt.Errorf("unknown rotation %q: expected 0, 90, 180 or 270", s)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rotation) UnmarshalText(text []byte) error {
	return r.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rotation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// swapsAxes reports whether logical width and height are exchanged.
func (r Rotation) swapsAxes() bool {
	return r == Rotate90 || r == Rotate270
}

// Scheme selects how a rotated logical pixel is mapped onto memory.
//
// Controller families disagree on the Rotate90 bit order: ByteMirror reverses
// the bit order inside the byte for Rotate90 and Rotate180, CoordinateMap
// rotates the coordinate and packs it like Rotate0. Both produce the same
// bytes when the width is a multiple of 8; only CoordinateMap supports other
// widths and multi-bit pixels.
type Scheme uint8

// Valid Scheme.
const (
	CoordinateMap Scheme = iota
	ByteMirror
)

func (s Scheme) String() string {
	if s == ByteMirror {
		return "byte-mirror"
	}
	return "coordinate-map"
}

// Set implements the flag.Value interface.
func (s *Scheme) Set(v string) error {
	switch v {
	case "coordinate-map", "":
		*s = CoordinateMap
	case "byte-mirror":
		*s = ByteMirror
	default:
		return fmt.Errorf("unknown rotation scheme %q: expected coordinate-map or byte-mirror", v)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// outside reports whether the logical point (x, y) has no physical pixel
// under rotation r on a width×height panel.
func outside(x, y, width, height int, r Rotation) bool {
	if x < 0 || y < 0 {
		return true
	}
	if r.swapsAxes() {
		return y >= width || x >= height
	}
	return x >= width || y >= height
}

// rotate maps a logical point to its physical coordinates.
func rotate(x, y, width, height int, r Rotation) (int, int) {
	switch r {
	case Rotate90:
		return width - 1 - y, x
	case Rotate180:
		return width - 1 - x, height - 1 - y
	case Rotate270:
		return y, height - 1 - x
	}
	return x, y
}

// byteMirror returns the byte index and bit position (counted from the most
// significant bit) of a 1 bit per pixel plane with width%8 == 0.
func byteMirror(x, y, width, height int, r Rotation) (int, int) {
	wb := width / 8
	switch r {
	case Rotate90:
		return (width-1-y)/8 + wb*x, 7 - y%8
	case Rotate180:
		return (wb*height - 1) - (x/8 + wb*y), 7 - x%8
	case Rotate270:
		return y/8 + (height-1-x)*wb, y % 8
	}
	return x/8 + wb*y, x % 8
}
