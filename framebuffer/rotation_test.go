// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"testing"

	"github.com/GermanBionicSystems/epaper/epdcolor"
)

var rotations = []Rotation{Rotate0, Rotate90, Rotate180, Rotate270}

func TestPositionInBounds(t *testing.T) {
	for _, tc := range []struct {
		name   string
		width  int
		height int
		format epdcolor.Format
		scheme Scheme
	}{
		{name: "4in2 byte mirror", width: 400, height: 300, format: epdcolor.MonoFormat, scheme: ByteMirror},
		{name: "4in2 coordinate map", width: 400, height: 300, format: epdcolor.MonoFormat},
		{name: "2in13 unaligned", width: 122, height: 250, format: epdcolor.MonoFormat},
		{name: "tri", width: 104, height: 212, format: epdcolor.TriFormat},
		{name: "oct", width: 61, height: 30, format: epdcolor.OctFormat},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(&Opts{Width: tc.width, Height: tc.height, Format: tc.format, Scheme: tc.scheme})
			if err != nil {
				t.Fatal(err)
			}
			for _, r := range rotations {
				c.SetRotation(r)
				w, h := c.Size()
				for x := -1; x <= w; x++ {
					for y := -1; y <= h; y++ {
						in := x >= 0 && y >= 0 && x < w && y < h
						if c.Outside(x, y) == in {
							t.Fatalf("rotation %s: Outside(%d, %d) = %t", r, x, y, !in)
						}
						if !in {
							continue
						}
						idx, _, ok := c.Position(x, y)
						if !ok || idx < 0 || idx >= c.PlaneSize() {
							t.Fatalf("rotation %s: Position(%d, %d) = %d, plane size %d", r, x, y, idx, c.PlaneSize())
						}
					}
				}
			}
		})
	}
}

func TestSchemesAgreeOnAlignedWidth(t *testing.T) {
	for _, r := range rotations {
		for x := 0; x < 24; x++ {
			for y := 0; y < 16; y++ {
				if outside(x, y, 16, 24, r) {
					continue
				}
				nx, ny := rotate(x, y, 16, 24, r)
				wantIdx, wantPos := nx/8+2*ny, nx%8
				idx, pos := byteMirror(x, y, 16, 24, r)
				if idx != wantIdx || pos != wantPos {
					t.Errorf("rotation %s (%d, %d): byteMirror = (%d, %d), coordinate map = (%d, %d)", r, x, y, idx, pos, wantIdx, wantPos)
				}
			}
		}
	}
}

func TestRotationFormulas(t *testing.T) {
	// Literal values of the byte mirror formulas on a 16×4 panel.
	for _, tc := range []struct {
		r       Rotation
		x, y    int
		wantIdx int
		wantBit byte
	}{
		{Rotate0, 9, 1, 3, 0x40},
		{Rotate90, 1, 9, 2, 0x02},
		{Rotate180, 9, 1, 4, 0x02},
		{Rotate270, 1, 9, 5, 0x40},
	} {
		idx, pos := byteMirror(tc.x, tc.y, 16, 4, tc.r)
		if idx != tc.wantIdx || byte(0x80)>>uint(pos) != tc.wantBit {
			t.Errorf("rotation %s (%d, %d) = (%d, %#x), want (%d, %#x)", tc.r, tc.x, tc.y, idx, byte(0x80)>>uint(pos), tc.wantIdx, tc.wantBit)
		}
	}
}

func TestRotationSet(t *testing.T) {
	var r Rotation
	if err := r.Set("270"); err != nil || r != Rotate270 {
		t.Errorf("Set(270) = %v, %v", r, err)
	}
	if err := r.Set("45"); err == nil {
		t.Error("Set(45) succeeded")
	}
	var s Scheme
	if err := s.UnmarshalText([]byte("byte-mirror")); err != nil || s != ByteMirror {
		t.Errorf("UnmarshalText(byte-mirror) = %v, %v", s, err)
	}
}
