// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epdcolor defines the pixel encodings used by e-paper controllers.
//
// Three encodings exist: 1-bit monochrome (Mono), 1-bit per plane tri-color
// with a black/white plane and a chromatic plane (TriColor), and 4-bit
// eight-color packed two pixels per byte (OctColor).
package epdcolor

import (
	"fmt"
	"image/color"
)

// Format describes how pixels of one encoding are laid out in memory.
type Format struct {
	Name string
	// BitsPerPixel is the number of bits a pixel occupies in each plane.
	BitsPerPixel int
	// Planes is the number of separate byte arrays the encoding uses.
	Planes int
}

// Supported formats.
var (
	MonoFormat = Format{Name: "mono", BitsPerPixel: 1, Planes: 1}
	TriFormat  = Format{Name: "tri", BitsPerPixel: 1, Planes: 2}
	OctFormat  = Format{Name: "oct", BitsPerPixel: 4, Planes: 1}
)

// String implements fmt.Stringer.
func (f Format) String() string {
	return f.Name
}

// PixelsPerByte returns how many pixels share one byte of a plane.
func (f Format) PixelsPerByte() int {
	return 8 / f.BitsPerPixel
}

// RowBytes returns the number of bytes needed for width pixels in one plane.
func (f Format) RowBytes(width int) int {
	return (width*f.BitsPerPixel + 7) / 8
}

// PlaneSize returns the byte length of one plane for a width×height image.
func (f Format) PlaneSize(width, height int) int {
	return f.RowBytes(width) * height
}

// Set sets the Format to a value represented by the string s. Set implements
// the flag.Value interface.
func (f *Format) Set(s string) error {
	switch s {
	case "mono":
		*f = MonoFormat
	case "tri":
		*f = TriFormat
	case "oct":
		*f = OctFormat
	default:
		return fmt.Errorf("unknown color format %q: expected mono, tri or oct", s)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	return f.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.Name), nil
}

// Model returns the color.Model that converts arbitrary colors to this
// encoding.
func (f Format) Model() color.Model {
	switch f.Name {
	case "tri":
		return TriModel
	case "oct":
		return OctModel
	default:
		return MonoModel
	}
}

// Color is a pixel value of one of the encodings.
type Color interface {
	color.Color

	// Format returns the encoding the value belongs to.
	Format() Format
	// Bitmask returns the mask that clears the pixel at position pos within
	// a byte, and the bits to set afterwards. The low byte of bits belongs to
	// the first plane, the high byte to the second plane.
	//
	// setUnused selects whether the complement bit in the non-primary plane
	// is set, for controllers that store chromatic pixels in both planes.
	Bitmask(setUnused bool, pos int) (mask byte, bits uint16)
	// FillByte returns the byte that fills a plane with this color.
	FillByte() byte
}
