// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epdcolor

import (
	"image/color"
)

// TriColor is a pixel of a black/white/chromatic (red or yellow) panel.
//
// It is stored in two planes: the black/white plane (1 is white) and the
// chromatic plane (1 is chromatic).
type TriColor uint8

// Valid TriColor.
const (
	TriBlack TriColor = iota
	TriWhite
	Chromatic
)

// TriFromByte parses a TriColor value.
func TriFromByte(b byte) (TriColor, error) {
	if b > byte(Chromatic) {
		return TriBlack, &ParseError{Format: TriFormat, Value: b}
	}
	return TriColor(b), nil
}

// Format implements Color.
func (TriColor) Format() Format {
	return TriFormat
}

// Bitmask implements Color.
func (t TriColor) Bitmask(setUnused bool, pos int) (byte, uint16) {
	bit := byte(0x80) >> uint(pos%8)
	switch t {
	case TriWhite:
		return ^bit, uint16(bit)
	case Chromatic:
		if setUnused {
			return ^bit, uint16(bit)<<8 | uint16(bit)
		}
		return ^bit, uint16(bit) << 8
	default:
		return ^bit, 0
	}
}

// FillByte implements Color. It is the byte of the plane carrying the
// color: the black/white plane for TriBlack and TriWhite, the chromatic plane
// for Chromatic.
func (t TriColor) FillByte() byte {
	if t == TriBlack {
		return 0x00
	}
	return 0xFF
}

// FillBytes returns the fill byte of both planes.
func (t TriColor) FillBytes(setUnused bool) (bw, chromatic byte) {
	switch t {
	case TriWhite:
		return 0xFF, 0x00
	case Chromatic:
		if setUnused {
			return 0xFF, 0xFF
		}
		return 0x00, 0xFF
	default:
		return 0x00, 0x00
	}
}

// RGBA implements color.Color. Chromatic renders as red.
func (t TriColor) RGBA() (r, g, b, a uint32) {
	switch t {
	case TriWhite:
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	case Chromatic:
		return 0xFFFF, 0, 0, 0xFFFF
	default:
		return 0, 0, 0, 0xFFFF
	}
}

func (t TriColor) String() string {
	switch t {
	case TriWhite:
		return "White"
	case Chromatic:
		return "Chromatic"
	default:
		return "Black"
	}
}

// TriModel converts colors to TriColor. Saturated colors become Chromatic,
// the rest is split on luminance like MonoModel.
var TriModel = color.ModelFunc(func(c color.Color) color.Color {
	switch v := c.(type) {
	case TriColor:
		return v
	case Mono:
		if v == White {
			return TriWhite
		}
		return TriBlack
	}
	r, g, b, _ := c.RGBA()
	hi, lo := r, r
	for _, v := range []uint32{g, b} {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	if hi-lo >= 0x6000 {
		return Chromatic
	}
	if MonoModel.Convert(c) == White {
		return TriWhite
	}
	return TriBlack
})
