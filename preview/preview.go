// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview implements a display.Drawer that renders e-paper canvases
// to a terminal using ANSI 256 color codes.
//
// Useful to check a layout or a rotation without a panel attached.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/epaper/framebuffer"
)

// Opts represents the options available for this display.
type Opts struct {
	// Width and Height are the Drawer bounds. Show ignores them.
	Width  int
	Height int
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Step prints one pixel out of Step in both directions. Defaults to 1.
	Step int

	_ struct{}
}

// Dev prints frames to a terminal.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette
	step    int

	img *image.NRGBA
	buf bytes.Buffer
}

// New returns a Dev printing to w, or to stdout when w is nil.
func New(w io.Writer, opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	d := &Dev{
		w:       w,
		palette: *p,
		step:    opts.Step,
		img:     image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
	}
	if d.step <= 0 {
		d.step = 1
	}
	draw.Draw(d.img, d.img.Bounds(), image.White, image.Point{}, draw.Src)
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("preview{%dx%d}", d.img.Rect.Dx(), d.img.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Show prints c in its logical orientation.
func (d *Dev) Show(c *framebuffer.Canvas) error {
	return d.refresh(c)
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Bounds()
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d.img, r.Intersect(d.img.Bounds()), src, sp, draw.Src)
	return d.refresh(d.img)
}

func (d *Dev) refresh(img image.Image) error {
	d.buf.Reset()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += d.step {
		_, _ = d.buf.WriteString("\033[0m")
		for x := b.Min.X; x < b.Max.X; x += d.step {
			_, _ = io.WriteString(&d.buf, d.palette.Block(color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
