// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package framebuffer implements a rotation-aware bit-packed pixel buffer
// matching the memory layout of e-paper controllers.
//
// A Canvas owns one contiguous byte slice holding one or two planes. It
// implements draw.Image so any image/draw, x/image/font or gg rendering can
// target it directly.
package framebuffer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/GermanBionicSystems/epaper/epdcolor"
)

var (
	// ErrInvalidSize is returned for canvas dimensions the scheme cannot hold.
	ErrInvalidSize = errors.New("framebuffer: invalid canvas size")
	// ErrInvalidWindow is returned for windows that are not byte aligned or
	// do not fit the canvas.
	ErrInvalidWindow = errors.New("framebuffer: invalid window")
)

// Opts describes a canvas.
type Opts struct {
	// Physical width and height in pixels.
	Width  int
	Height int

	// Format defaults to epdcolor.MonoFormat.
	Format epdcolor.Format
	Scheme Scheme

	// SetUnused also sets the black/white bit of chromatic pixels.
	SetUnused bool
	// InvertChromatic stores the chromatic plane active low.
	InvertChromatic bool

	// Background is the initial color. Defaults to white.
	Background color.Color
}

// Canvas is a bit-packed framebuffer.
type Canvas struct {
	width  int
	height int
	format epdcolor.Format
	scheme Scheme

	rotation        Rotation
	setUnused       bool
	invertChromatic bool

	rowBytes  int
	planeSize int
	buf       []byte
}

var _ draw.Image = &Canvas{}

// New returns a canvas cleared to opts.Background.
func New(opts *Opts) (*Canvas, error) {
	f := opts.Format
	if f.Planes == 0 {
		f = epdcolor.MonoFormat
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}
	if opts.Scheme == ByteMirror && (f.BitsPerPixel != 1 || opts.Width%8 != 0) {
		return nil, fmt.Errorf("%w: %s needs a 1 bit format and a width multiple of 8, got %s %d", ErrInvalidSize, opts.Scheme, f, opts.Width)
	}
	c := &Canvas{
		width:           opts.Width,
		height:          opts.Height,
		format:          f,
		scheme:          opts.Scheme,
		setUnused:       opts.SetUnused,
		invertChromatic: opts.InvertChromatic,
		rowBytes:        f.RowBytes(opts.Width),
		planeSize:       f.PlaneSize(opts.Width, opts.Height),
	}
	c.buf = make([]byte, c.planeSize*f.Planes)
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	c.Clear(bg)
	return c, nil
}

// Width returns the physical width.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the physical height.
func (c *Canvas) Height() int {
	return c.height
}

// Format returns the pixel encoding.
func (c *Canvas) Format() epdcolor.Format {
	return c.format
}

// Rotation returns the current rotation.
func (c *Canvas) Rotation() Rotation {
	return c.rotation
}

// SetRotation changes how logical coordinates map to the buffer. The buffer
// content is left untouched.
func (c *Canvas) SetRotation(r Rotation) {
	c.rotation = r
}

// Size returns the logical width and height for the current rotation.
func (c *Canvas) Size() (int, int) {
	if c.rotation.swapsAxes() {
		return c.height, c.width
	}
	return c.width, c.height
}

// Buffer returns all planes, black/white first.
func (c *Canvas) Buffer() []byte {
	return c.buf
}

// Plane returns plane i, or nil if the format has fewer planes.
func (c *Canvas) Plane(i int) []byte {
	if i < 0 || i >= c.format.Planes {
		return nil
	}
	return c.buf[i*c.planeSize : (i+1)*c.planeSize]
}

// BWBuffer returns the black/white plane.
func (c *Canvas) BWBuffer() []byte {
	return c.Plane(0)
}

// ChromaticBuffer returns the chromatic plane, nil for single plane formats.
func (c *Canvas) ChromaticBuffer() []byte {
	return c.Plane(1)
}

// ChromaticOffset is the offset of the chromatic plane within Buffer.
func (c *Canvas) ChromaticOffset() int {
	return c.planeSize
}

// PlaneSize returns the byte length of one plane.
func (c *Canvas) PlaneSize() int {
	return c.planeSize
}

// Outside reports whether the logical point has no pixel under the current
// rotation.
func (c *Canvas) Outside(x, y int) bool {
	return outside(x, y, c.width, c.height, c.rotation)
}

// Position returns the byte index within a plane and the pixel position
// inside that byte for the logical point (x, y).
func (c *Canvas) Position(x, y int) (idx, pos int, ok bool) {
	if c.Outside(x, y) {
		return 0, 0, false
	}
	if c.scheme == ByteMirror {
		idx, pos = byteMirror(x, y, c.width, c.height, c.rotation)
	} else {
		nx, ny := rotate(x, y, c.width, c.height, c.rotation)
		ppb := c.format.PixelsPerByte()
		idx, pos = nx/ppb+c.rowBytes*ny, nx%ppb
	}
	return idx, pos, idx < c.planeSize
}

// Clear fills every plane with col.
func (c *Canvas) Clear(col color.Color) {
	fills := c.fills(c.convert(col))
	for i := 0; i < c.format.Planes; i++ {
		p := c.Plane(i)
		for j := range p {
			p[j] = fills[i]
		}
	}
}

// DrawPixel sets one logical pixel. Points outside the canvas are ignored.
func (c *Canvas) DrawPixel(x, y int, col color.Color) {
	c.set(x, y, c.convert(col))
}

// Pixel decodes the logical pixel at (x, y).
func (c *Canvas) Pixel(x, y int) (epdcolor.Color, bool) {
	idx, pos, ok := c.Position(x, y)
	if !ok {
		return nil, false
	}
	switch c.format {
	case epdcolor.OctFormat:
		v := c.buf[idx]
		if pos%2 == 0 {
			v >>= 4
		}
		o, err := epdcolor.OctFromNibble(v & 0x0F)
		return o, err == nil
	case epdcolor.TriFormat:
		bit := byte(0x80) >> uint(pos)
		chrom := c.buf[c.planeSize+idx]
		if c.invertChromatic {
			chrom = ^chrom
		}
		if chrom&bit != 0 {
			return epdcolor.Chromatic, true
		}
		if c.buf[idx]&bit != 0 {
			return epdcolor.TriWhite, true
		}
		return epdcolor.TriBlack, true
	}
	if c.buf[idx]&(byte(0x80)>>uint(pos)) != 0 {
		return epdcolor.White, true
	}
	return epdcolor.Black, true
}

// Window copies the physical rectangle r of plane i. r.Min.X and r.Dx() must
// be aligned to whole bytes.
func (c *Canvas) Window(i int, r image.Rectangle) ([]byte, error) {
	ppb := c.format.PixelsPerByte()
	if !r.In(image.Rect(0, 0, c.width, c.height)) || r.Empty() || r.Min.X%ppb != 0 || r.Dx()%ppb != 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, r)
	}
	p := c.Plane(i)
	if p == nil {
		return nil, fmt.Errorf("%w: no plane %d", ErrInvalidWindow, i)
	}
	rb := r.Dx() / ppb
	out := make([]byte, 0, rb*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := y*c.rowBytes + r.Min.X/ppb
		out = append(out, p[start:start+rb]...)
	}
	return out, nil
}

// ColorModel implements image.Image.
func (c *Canvas) ColorModel() color.Model {
	return c.format.Model()
}

// Bounds implements image.Image, in logical coordinates.
func (c *Canvas) Bounds() image.Rectangle {
	w, h := c.Size()
	return image.Rect(0, 0, w, h)
}

// At implements image.Image.
func (c *Canvas) At(x, y int) color.Color {
	p, ok := c.Pixel(x, y)
	if !ok {
		return color.Transparent
	}
	return p
}

// Set implements draw.Image.
func (c *Canvas) Set(x, y int, col color.Color) {
	c.DrawPixel(x, y, col)
}

// convert returns col in an encoding the canvas can store.
func (c *Canvas) convert(col color.Color) epdcolor.Color {
	if ec, ok := col.(epdcolor.Color); ok {
		f := ec.Format()
		if f.BitsPerPixel == c.format.BitsPerPixel && f.Planes <= c.format.Planes {
			return ec
		}
	}
	return c.format.Model().Convert(col).(epdcolor.Color)
}

func (c *Canvas) set(x, y int, ec epdcolor.Color) {
	idx, pos, ok := c.Position(x, y)
	if !ok {
		return
	}
	mask, bits := ec.Bitmask(c.setUnused, pos)
	for i := 0; i < c.format.Planes; i++ {
		p := byte(bits >> uint(8*i))
		if i == 1 && c.invertChromatic {
			p = ^p &^ mask
		}
		j := i*c.planeSize + idx
		c.buf[j] = c.buf[j]&mask | p
	}
}

// fills returns the byte that repeats ec across a whole plane, per plane.
func (c *Canvas) fills(ec epdcolor.Color) [2]byte {
	var f [2]byte
	for pos := 0; pos < c.format.PixelsPerByte(); pos++ {
		_, bits := ec.Bitmask(c.setUnused, pos)
		f[0] |= byte(bits)
		f[1] |= byte(bits >> 8)
	}
	if c.invertChromatic {
		f[1] = ^f[1]
	}
	return f
}
