// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package imageconv prepares arbitrary images for e-paper canvases.
//
// It scales, rotates and dithers images, renders text, and converts the
// result into the bit-packed layout of a framebuffer.Canvas.
package imageconv

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/MaxHalford/halfgone"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/epaper/epdcolor"
	"github.com/GermanBionicSystems/epaper/framebuffer"
)

// Dither selects how gray levels are reduced to black and white.
type Dither uint8

// Valid Dither.
const (
	FloydSteinberg Dither = iota
	Threshold
	None
)

func (d Dither) String() string {
	switch d {
	case Threshold:
		return "threshold"
	case None:
		return "none"
	}
	return "floyd-steinberg"
}

// Set implements the flag.Value interface.
func (d *Dither) Set(s string) error {
	switch s {
	case "floyd-steinberg", "fs":
		*d = FloydSteinberg
	case "threshold":
		*d = Threshold
	case "none":
		*d = None
	default:
		return fmt.Errorf("unknown dither %q: expected floyd-steinberg, threshold or none", s)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dither) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (d Dither) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Fit scales img down to fit in w x h, keeping its aspect ratio.
func Fit(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

// Fill scales and crops img to exactly w x h around its center.
func Fill(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

// Rotate rotates img clockwise by r.
func Rotate(img image.Image, r framebuffer.Rotation) *image.NRGBA {
	switch r {
	case framebuffer.Rotate90:
		return imaging.Rotate270(img)
	case framebuffer.Rotate180:
		return imaging.Rotate180(img)
	case framebuffer.Rotate270:
		return imaging.Rotate90(img)
	}
	return imaging.Clone(img)
}

// ToMono returns img as gray levels of only black and white. The result
// bounds start at the origin.
func ToMono(img image.Image, d Dither) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	switch d {
	case FloydSteinberg:
		return halfgone.FloydSteinbergDitherer{}.Apply(gray)
	case Threshold:
		return halfgone.ThresholdDitherer{Threshold: 127}.Apply(gray)
	}
	for i, v := range gray.Pix {
		if v < 128 {
			gray.Pix[i] = 0
		} else {
			gray.Pix[i] = 255
		}
	}
	return gray
}

// Into draws img into c from its top left corner, in logical coordinates.
// Pixels outside c are dropped.
//
// Two color canvases use d. Saturated colors become Chromatic on three color
// canvases, the rest is dithered with d. Seven color canvases always use
// Floyd-Steinberg error diffusion over epdcolor.OctPalette.
func Into(c *framebuffer.Canvas, img image.Image, d Dither) {
	b := img.Bounds()
	r := c.Bounds().Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch c.Format().Planes {
	case 2:
		mono := ToMono(img, d)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if epdcolor.TriModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)) == epdcolor.Chromatic {
					c.Set(x, y, epdcolor.Chromatic)
				} else {
					c.Set(x, y, mono.GrayAt(x, y))
				}
			}
		}
		return
	}
	if c.Format().BitsPerPixel == 4 {
		draw.FloydSteinberg.Draw(c, r, img, b.Min)
		return
	}
	mono := ToMono(img, d)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.Set(x, y, monoOf(mono.GrayAt(x, y)))
		}
	}
}

func monoOf(g color.Gray) epdcolor.Mono {
	if g.Y >= 128 {
		return epdcolor.White
	}
	return epdcolor.Black
}

// Face returns the Go Regular font at size points, at 72 DPI.
func Face(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

// TextImage renders text in black on a white w x h image, centered and
// wrapped to the image width.
func TextImage(w, h int, text string, size float64) (image.Image, error) {
	face, err := Face(size)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetColor(color.Black)
	dc.DrawStringWrapped(text, float64(w)/2, float64(h)/2, 0.5, 0.5, float64(w), 1.5, gg.AlignCenter)
	return dc.Image(), nil
}
