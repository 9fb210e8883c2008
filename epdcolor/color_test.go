// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epdcolor

import (
	"errors"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMonoBitRoundTrip(t *testing.T) {
	for _, c := range []Mono{Black, White} {
		got, err := MonoFromBit(c.BitValue())
		if err != nil {
			t.Fatalf("MonoFromBit(%d) failed: %v", c.BitValue(), err)
		}
		if got != c {
			t.Errorf("MonoFromBit(%d) = %v, want %v", c.BitValue(), got, c)
		}
	}
}

func TestMonoFromBitRejects(t *testing.T) {
	for v := 2; v <= 0xFF; v++ {
		_, err := MonoFromBit(byte(v))
		if err == nil {
			t.Fatalf("MonoFromBit(%d) succeeded", v)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Value != byte(v) {
			t.Errorf("MonoFromBit(%d) error = %v, want ParseError carrying the value", v, err)
		}
		if !errors.Is(err, ErrParse) {
			t.Errorf("MonoFromBit(%d) error does not match ErrParse", v)
		}
	}
}

func TestMono(t *testing.T) {
	if Black.FillByte() != 0x00 || White.FillByte() != 0xFF {
		t.Errorf("FillByte() = %#x/%#x", Black.FillByte(), White.FillByte())
	}
	if Black.Inverse() != White || White.Inverse() != Black {
		t.Error("Inverse() did not swap")
	}
	for pos := 0; pos < 8; pos++ {
		bit := byte(0x80) >> uint(pos)
		mask, bits := White.Bitmask(false, pos)
		if mask != ^bit || bits != uint16(bit) {
			t.Errorf("White.Bitmask(%d) = %#x, %#x", pos, mask, bits)
		}
		mask, bits = Black.Bitmask(false, pos)
		if mask != ^bit || bits != 0 {
			t.Errorf("Black.Bitmask(%d) = %#x, %#x", pos, mask, bits)
		}
	}
	if got := MonoModel.Convert(color.Gray{Y: 250}); got != White {
		t.Errorf("MonoModel.Convert(light) = %v", got)
	}
	if got := MonoModel.Convert(color.Gray{Y: 10}); got != Black {
		t.Errorf("MonoModel.Convert(dark) = %v", got)
	}
}

func TestTriColorBitmask(t *testing.T) {
	for _, tc := range []struct {
		name      string
		c         TriColor
		setUnused bool
		wantBW    byte
		wantChrom byte
	}{
		{name: "black", c: TriBlack},
		{name: "white", c: TriWhite, wantBW: 0x20},
		{name: "chromatic", c: Chromatic, wantChrom: 0x20},
		{name: "chromatic set unused", c: Chromatic, setUnused: true, wantBW: 0x20, wantChrom: 0x20},
		{name: "white set unused", c: TriWhite, setUnused: true, wantBW: 0x20},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mask, bits := tc.c.Bitmask(tc.setUnused, 2)
			if mask != 0xDF {
				t.Errorf("mask = %#x, want 0xDF", mask)
			}
			got := []byte{byte(bits), byte(bits >> 8)}
			if diff := cmp.Diff(got, []byte{tc.wantBW, tc.wantChrom}); diff != "" {
				t.Errorf("Bitmask() difference (-got +want):\n%s", diff)
			}
			// Pattern never sets bits outside the footprint.
			if got[0]&mask != 0 || got[1]&mask != 0 {
				t.Errorf("pattern %#x leaks outside mask %#x", bits, mask)
			}
		})
	}
}

func TestTriFromByte(t *testing.T) {
	if c, err := TriFromByte(2); err != nil || c != Chromatic {
		t.Errorf("TriFromByte(2) = %v, %v", c, err)
	}
	_, err := TriFromByte(3)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Value != 3 {
		t.Errorf("TriFromByte(3) error = %v", err)
	}
}

func TestTriModel(t *testing.T) {
	for _, tc := range []struct {
		in   color.Color
		want TriColor
	}{
		{color.NRGBA{255, 0, 0, 255}, Chromatic},
		{color.NRGBA{255, 255, 0, 255}, Chromatic},
		{color.NRGBA{250, 250, 250, 255}, TriWhite},
		{color.NRGBA{5, 5, 5, 255}, TriBlack},
		{White, TriWhite},
	} {
		if got := TriModel.Convert(tc.in); got != tc.want {
			t.Errorf("TriModel.Convert(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestOctColorsByteRoundTrip(t *testing.T) {
	for a := OctBlack; a <= HiZ; a++ {
		for b := OctBlack; b <= HiZ; b++ {
			ga, gb, err := SplitByte(ColorsByte(a, b))
			if err != nil {
				t.Fatalf("SplitByte(ColorsByte(%v, %v)) failed: %v", a, b, err)
			}
			if ga != a || gb != b {
				t.Errorf("SplitByte(ColorsByte(%v, %v)) = %v, %v", a, b, ga, gb)
			}
		}
	}
}

func TestOctSplitByteInvalid(t *testing.T) {
	for _, v := range []byte{0x80, 0x08, 0xFF, 0x9A} {
		if _, _, err := SplitByte(v); !errors.Is(err, ErrParse) {
			t.Errorf("SplitByte(%#x) error = %v, want ErrParse", v, err)
		}
	}
}

func TestOctBitmask(t *testing.T) {
	mask, bits := OctRed.Bitmask(false, 0)
	if mask != 0x0F || bits != 0x40 {
		t.Errorf("Bitmask(0) = %#x, %#x", mask, bits)
	}
	mask, bits = OctRed.Bitmask(false, 1)
	if mask != 0xF0 || bits != 0x04 {
		t.Errorf("Bitmask(1) = %#x, %#x", mask, bits)
	}
	if got := OctOrange.FillByte(); got != 0x66 {
		t.Errorf("FillByte() = %#x, want 0x66", got)
	}
}

func TestOctRGB(t *testing.T) {
	for c := OctBlack; c < HiZ; c++ {
		rgb, err := c.RGB()
		if err != nil {
			t.Fatalf("%v.RGB() failed: %v", c, err)
		}
		got, err := OctFromRGB(rgb.R, rgb.G, rgb.B)
		if err != nil || got != c {
			t.Errorf("OctFromRGB(%v) = %v, %v, want %v", rgb, got, err, c)
		}
	}
	if _, err := HiZ.RGB(); !errors.Is(err, ErrNoRGB) {
		t.Errorf("HiZ.RGB() error = %v", err)
	}
	if _, err := OctFromRGB(1, 2, 3); !errors.Is(err, ErrNoExactMatch) {
		t.Errorf("OctFromRGB(1, 2, 3) error = %v", err)
	}
}

func TestOctNearest(t *testing.T) {
	for _, tc := range []struct {
		in   color.Color
		want OctColor
	}{
		{color.NRGBA{10, 10, 10, 255}, OctBlack},
		{color.NRGBA{240, 250, 245, 255}, OctWhite},
		{color.NRGBA{230, 20, 10, 255}, OctRed},
		{color.NRGBA{250, 140, 10, 255}, OctOrange},
		{color.NRGBA{20, 30, 200, 255}, OctBlue},
		{OctGreen, OctGreen},
	} {
		if got := OctModel.Convert(tc.in); got != tc.want {
			t.Errorf("OctModel.Convert(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormat(t *testing.T) {
	for _, tc := range []struct {
		in            string
		want          Format
		wantPlaneSize int
	}{
		{"mono", MonoFormat, 16 * 250},
		{"tri", TriFormat, 16 * 250},
		{"oct", OctFormat, 61 * 250},
	} {
		var f Format
		if err := f.Set(tc.in); err != nil {
			t.Fatalf("Set(%q) failed: %v", tc.in, err)
		}
		if diff := cmp.Diff(f, tc.want); diff != "" {
			t.Errorf("Set(%q) difference (-got +want):\n%s", tc.in, diff)
		}
		if got := f.PlaneSize(122, 250); got != tc.wantPlaneSize {
			t.Errorf("%s.PlaneSize(122, 250) = %d, want %d", f, got, tc.wantPlaneSize)
		}
	}
	var f Format
	if err := f.Set("rgb"); err == nil {
		t.Error("Set(rgb) succeeded")
	}
}
