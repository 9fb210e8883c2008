// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epdcolor

import (
	"fmt"
	"image/color"
)

// OctColor is a pixel of a seven color panel, plus the high impedance
// "clean" state. Its value is the nibble stored in memory.
type OctColor uint8

// Valid OctColor.
const (
	OctBlack OctColor = iota
	OctWhite
	OctGreen
	OctBlue
	OctRed
	OctYellow
	OctOrange
	HiZ
)

var octRGB = [...]color.NRGBA{
	{0, 0, 0, 255},
	{255, 255, 255, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 0, 0, 255},
	{255, 255, 0, 255},
	{255, 128, 0, 255},
}

// OctPalette holds every OctColor with an RGB representation.
var OctPalette = color.Palette{OctBlack, OctWhite, OctGreen, OctBlue, OctRed, OctYellow, OctOrange}

// OctFromNibble parses the lower four bits of a byte.
func OctFromNibble(n byte) (OctColor, error) {
	if n > byte(HiZ) {
		return OctBlack, &ParseError{Format: OctFormat, Value: n}
	}
	return OctColor(n), nil
}

// Nibble returns the 4-bit encoding.
func (o OctColor) Nibble() byte {
	return byte(o) & 0x0F
}

// ColorsByte packs two pixels, a on the left in the high nibble.
func ColorsByte(a, b OctColor) byte {
	return a.Nibble()<<4 | b.Nibble()
}

// SplitByte unpacks a byte produced by ColorsByte.
func SplitByte(v byte) (OctColor, OctColor, error) {
	a, err := OctFromNibble(v >> 4)
	if err != nil {
		return OctBlack, OctBlack, err
	}
	b, err := OctFromNibble(v & 0x0F)
	if err != nil {
		return OctBlack, OctBlack, err
	}
	return a, b, nil
}

// Format implements Color.
func (OctColor) Format() Format {
	return OctFormat
}

// Bitmask implements Color. Even positions use the high nibble.
func (o OctColor) Bitmask(_ bool, pos int) (byte, uint16) {
	if pos%2 == 0 {
		return 0x0F, uint16(o.Nibble()) << 4
	}
	return 0xF0, uint16(o.Nibble())
}

// FillByte implements Color.
func (o OctColor) FillByte() byte {
	return ColorsByte(o, o)
}

// RGB returns the nominal color. HiZ has none.
func (o OctColor) RGB() (color.NRGBA, error) {
	if int(o) >= len(octRGB) {
		return color.NRGBA{}, ErrNoRGB
	}
	return octRGB[o], nil
}

// RGBA implements color.Color. HiZ is transparent.
func (o OctColor) RGBA() (r, g, b, a uint32) {
	c, err := o.RGB()
	if err != nil {
		return 0, 0, 0, 0
	}
	return c.RGBA()
}

func (o OctColor) String() string {
	switch o {
	case OctBlack:
		return "Black"
	case OctWhite:
		return "White"
	case OctGreen:
		return "Green"
	case OctBlue:
		return "Blue"
	case OctRed:
		return "Red"
	case OctYellow:
		return "Yellow"
	case OctOrange:
		return "Orange"
	case HiZ:
		return "HiZ"
	}
	return "OctColor(invalid)"
}

// Set sets the OctColor to a value represented by the string s. Set
// implements the flag.Value interface.
func (o *OctColor) Set(s string) error {
	for c := OctBlack; c <= HiZ; c++ {
		if c.String() == s {
			*o = c
			return nil
		}
	}
	if s == "clean" {
		*o = HiZ
		return nil
	}
	return fmt.Errorf("unknown color %q: expected Black, White, Green, Blue, Red, Yellow, Orange, HiZ or clean", s)
}

// OctFromRGB returns the palette entry exactly matching r, g, b.
func OctFromRGB(r, g, b uint8) (OctColor, error) {
	for i, c := range octRGB {
		if c.R == r && c.G == g && c.B == b {
			return OctColor(i), nil
		}
	}
	return OctBlack, ErrNoExactMatch
}

// OctNearest returns the palette entry closest to c by Euclidean distance in
// RGB space.
func OctNearest(c color.Color) OctColor {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	best, bestDist := OctBlack, -1
	for i, p := range octRGB {
		dr := int(n.R) - int(p.R)
		dg := int(n.G) - int(p.G)
		db := int(n.B) - int(p.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = OctColor(i), d
		}
	}
	return best
}

// OctModel converts colors to the nearest OctColor.
var OctModel = color.ModelFunc(func(c color.Color) color.Color {
	if o, ok := c.(OctColor); ok {
		return o
	}
	return OctNearest(c)
})
