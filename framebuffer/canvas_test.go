// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/GermanBionicSystems/epaper/epdcolor"
)

func newCanvas(t *testing.T, opts *Opts) *Canvas {
	t.Helper()
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New(%+v) failed: %v", opts, err)
	}
	return c
}

func TestNewRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts Opts
	}{
		{name: "zero width", opts: Opts{Height: 8}},
		{name: "negative height", opts: Opts{Width: 8, Height: -1}},
		{name: "byte mirror unaligned", opts: Opts{Width: 122, Height: 250, Scheme: ByteMirror}},
		{name: "byte mirror oct", opts: Opts{Width: 16, Height: 8, Format: epdcolor.OctFormat, Scheme: ByteMirror}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(&tc.opts); !errors.Is(err, ErrInvalidSize) {
				t.Errorf("New() error = %v, want ErrInvalidSize", err)
			}
		})
	}
}

func TestClear(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts Opts
		col  color.Color
		want []byte
	}{
		{name: "mono white", opts: Opts{Width: 16, Height: 1}, col: color.White, want: []byte{0xFF, 0xFF}},
		{name: "mono black", opts: Opts{Width: 16, Height: 1}, col: epdcolor.Black, want: []byte{0x00, 0x00}},
		{name: "tri chromatic", opts: Opts{Width: 8, Height: 1, Format: epdcolor.TriFormat}, col: epdcolor.Chromatic, want: []byte{0x00, 0xFF}},
		{name: "tri chromatic set unused", opts: Opts{Width: 8, Height: 1, Format: epdcolor.TriFormat, SetUnused: true}, col: epdcolor.Chromatic, want: []byte{0xFF, 0xFF}},
		{name: "tri white inverted", opts: Opts{Width: 8, Height: 1, Format: epdcolor.TriFormat, InvertChromatic: true}, col: epdcolor.TriWhite, want: []byte{0xFF, 0xFF}},
		{name: "oct orange", opts: Opts{Width: 4, Height: 1, Format: epdcolor.OctFormat}, col: epdcolor.OctOrange, want: []byte{0x66, 0x66}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newCanvas(t, &tc.opts)
			c.Clear(tc.col)
			if diff := cmp.Diff(c.Buffer(), tc.want); diff != "" {
				t.Errorf("Clear() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestDrawPixelOutside(t *testing.T) {
	c := newCanvas(t, &Opts{Width: 8, Height: 4})
	for _, r := range rotations {
		c.SetRotation(r)
		w, h := c.Size()
		for _, p := range []image.Point{{-1, 0}, {0, -1}, {w, 0}, {0, h}, {w + 100, h + 100}} {
			c.DrawPixel(p.X, p.Y, epdcolor.Black)
		}
	}
	if diff := cmp.Diff(c.Buffer(), []byte{0xFF, 0xFF, 0xFF, 0xFF}); diff != "" {
		t.Errorf("DrawPixel() outside changed the buffer (-got +want):\n%s", diff)
	}
}

func TestTriPlanes(t *testing.T) {
	for _, tc := range []struct {
		name    string
		opts    Opts
		wantBW  byte
		wantChr byte
	}{
		{name: "plain", opts: Opts{Width: 8, Height: 1, Format: epdcolor.TriFormat}, wantBW: 0xDF, wantChr: 0x20},
		{name: "set unused", opts: Opts{Width: 8, Height: 1, Format: epdcolor.TriFormat, SetUnused: true}, wantBW: 0xFF, wantChr: 0x20},
		{name: "inverted", opts: Opts{Width: 8, Height: 1, Format: epdcolor.TriFormat, InvertChromatic: true}, wantBW: 0xDF, wantChr: 0xDF},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newCanvas(t, &tc.opts)
			c.DrawPixel(2, 0, epdcolor.Chromatic)
			if diff := cmp.Diff([]byte{c.BWBuffer()[0], c.ChromaticBuffer()[0]}, []byte{tc.wantBW, tc.wantChr}); diff != "" {
				t.Errorf("planes difference (-got +want):\n%s", diff)
			}
			if got, ok := c.Pixel(2, 0); !ok || got != epdcolor.Chromatic {
				t.Errorf("Pixel(2, 0) = %v, %t", got, ok)
			}
			if got, _ := c.Pixel(3, 0); got != epdcolor.TriWhite {
				t.Errorf("Pixel(3, 0) = %v", got)
			}
			c.DrawPixel(2, 0, epdcolor.TriBlack)
			if got, _ := c.Pixel(2, 0); got != epdcolor.TriBlack {
				t.Errorf("Pixel(2, 0) after black = %v", got)
			}
		})
	}
	if off := newCanvas(t, &Opts{Width: 16, Height: 3, Format: epdcolor.TriFormat}).ChromaticOffset(); off != 6 {
		t.Errorf("ChromaticOffset() = %d, want 6", off)
	}
}

func TestOctPixels(t *testing.T) {
	c := newCanvas(t, &Opts{Width: 4, Height: 1, Format: epdcolor.OctFormat})
	c.DrawPixel(1, 0, epdcolor.OctRed)
	c.DrawPixel(2, 0, epdcolor.OctBlue)
	if diff := cmp.Diff(c.Buffer(), []byte{0x14, 0x31}); diff != "" {
		t.Errorf("DrawPixel() difference (-got +want):\n%s", diff)
	}
	want := []epdcolor.OctColor{epdcolor.OctWhite, epdcolor.OctRed, epdcolor.OctBlue, epdcolor.OctWhite}
	for x, w := range want {
		if got, ok := c.Pixel(x, 0); !ok || got != w {
			t.Errorf("Pixel(%d, 0) = %v, want %v", x, got, w)
		}
	}
	// Non palette colors are mapped to the nearest entry.
	c.Set(3, 0, color.NRGBA{R: 10, G: 20, B: 220, A: 255})
	if got, _ := c.Pixel(3, 0); got != epdcolor.OctBlue {
		t.Errorf("Pixel(3, 0) = %v, want Blue", got)
	}
}

func TestRotatedBounds(t *testing.T) {
	c := newCanvas(t, &Opts{Width: 16, Height: 4})
	c.SetRotation(Rotate90)
	if got, want := c.Bounds(), image.Rect(0, 0, 4, 16); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	// Logical (0, 0) at 90° is the physical top right corner.
	c.DrawPixel(0, 0, epdcolor.Black)
	if diff := cmp.Diff(c.Buffer()[:2], []byte{0xFF, 0xFE}); diff != "" {
		t.Errorf("DrawPixel() difference (-got +want):\n%s", diff)
	}
	if got := c.At(4, 0); got != color.Transparent {
		t.Errorf("At(4, 0) = %v, want transparent", got)
	}
}

func TestWindow(t *testing.T) {
	c := newCanvas(t, &Opts{Width: 16, Height: 2})
	c.FillRect(image.Rect(8, 0, 16, 1), epdcolor.Black)
	got, err := c.Window(0, image.Rect(8, 0, 16, 2))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, []byte{0x00, 0xFF}); diff != "" {
		t.Errorf("Window() difference (-got +want):\n%s", diff)
	}
	for _, r := range []image.Rectangle{
		image.Rect(1, 0, 9, 1),
		image.Rect(0, 0, 7, 1),
		image.Rect(0, 0, 24, 1),
		image.Rect(0, 0, 0, 0),
	} {
		if _, err := c.Window(0, r); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("Window(%v) error = %v", r, err)
		}
	}
	if _, err := c.Window(1, image.Rect(0, 0, 8, 1)); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Window() on missing plane error = %v", err)
	}
}

func TestDrawImage1bit(t *testing.T) {
	src := image1bit.NewVerticalLSB(image.Rect(0, 0, 8, 8))
	src.SetBit(3, 2, image1bit.On)
	c := newCanvas(t, &Opts{Width: 8, Height: 8})
	draw.Draw(c, c.Bounds(), src, image.Point{}, draw.Src)
	want := make([]byte, 8)
	want[2] = 0x10
	if diff := cmp.Diff(c.Buffer(), want); diff != "" {
		t.Errorf("draw.Draw() difference (-got +want):\n%s", diff)
	}
}
