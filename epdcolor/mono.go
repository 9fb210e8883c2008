// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epdcolor

import (
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Mono is a black or white pixel. Its value is the bit stored in memory.
type Mono uint8

// Valid Mono.
const (
	Black Mono = 0
	White Mono = 1
)

// MonoFromBit parses a stored bit. Any value other than 0 or 1 is rejected.
func MonoFromBit(b byte) (Mono, error) {
	switch b {
	case 0:
		return Black, nil
	case 1:
		return White, nil
	}
	return Black, &ParseError{Format: MonoFormat, Value: b}
}

// BitValue returns the bit encoding the color.
func (m Mono) BitValue() byte {
	return byte(m)
}

// FillByte implements Color.
func (m Mono) FillByte() byte {
	if m == White {
		return 0xFF
	}
	return 0x00
}

// Inverse returns the opposite color.
func (m Mono) Inverse() Mono {
	if m == White {
		return Black
	}
	return White
}

// Format implements Color.
func (Mono) Format() Format {
	return MonoFormat
}

// Bitmask implements Color. pos counts from the most significant bit.
func (m Mono) Bitmask(_ bool, pos int) (byte, uint16) {
	bit := byte(0x80) >> uint(pos%8)
	if m == White {
		return ^bit, uint16(bit)
	}
	return ^bit, 0
}

// RGBA implements color.Color.
func (m Mono) RGBA() (r, g, b, a uint32) {
	if m == White {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (m Mono) String() string {
	if m == White {
		return "White"
	}
	return "Black"
}

// MonoModel converts any color to Mono using the luminance threshold of
// image1bit.BitModel.
var MonoModel = color.ModelFunc(func(c color.Color) color.Color {
	switch v := c.(type) {
	case Mono:
		return v
	case TriColor:
		if v == TriWhite {
			return White
		}
		return Black
	}
	if image1bit.BitModel.Convert(c).(image1bit.Bit) == image1bit.On {
		return White
	}
	return Black
})
