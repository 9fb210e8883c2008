// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/epaper/epdcolor"
	"github.com/GermanBionicSystems/epaper/framebuffer"
	"github.com/GermanBionicSystems/epaper/imageconv"
	"github.com/GermanBionicSystems/epaper/internal/config"
	"github.com/GermanBionicSystems/epaper/internal/log"
	"github.com/GermanBionicSystems/epaper/panel"
	"github.com/GermanBionicSystems/epaper/tiled"
)

// tiledFormat is the memory layout of the 12.48" panel: black/white plus red.
var tiledFormat = epdcolor.TriFormat

// screen is a panel ready to show images.
type screen interface {
	// Bounds is the logical size, after rotation.
	Bounds() image.Rectangle
	// Show fits img to the panel and displays it. full forces a full refresh
	// on panels configured for quick refreshes.
	Show(img image.Image, full bool) error
	// Clear displays the background.
	Clear() error
	// Halt puts the panel in deep sleep and releases the bus.
	Halt() error
}

func openScreen(cfg *config.Config) (screen, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, err
	}
	freq := physic.Frequency(cfg.Frequency) * physic.Hertz
	var s screen
	if cfg.Model == config.TiledModel {
		s, err = openTiled(cfg, port, freq)
	} else {
		s, err = openPanel(cfg, port, freq)
	}
	if err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

func lookupPin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}

func lookupPins(names ...string) ([]gpio.PinIO, error) {
	out := make([]gpio.PinIO, len(names))
	for i, n := range names {
		p, err := lookupPin(n)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

type panelScreen struct {
	dev    *panel.Dev
	port   spi.PortCloser
	dither imageconv.Dither
}

func openPanel(cfg *config.Config, port spi.PortCloser, freq physic.Frequency) (*panelScreen, error) {
	desc, err := panel.Lookup(cfg.Model)
	if err != nil {
		return nil, err
	}
	p, err := lookupPins(cfg.Pins.DC, cfg.Pins.Reset, cfg.Pins.Busy)
	if err != nil {
		return nil, err
	}
	var cs gpio.PinOut
	if cfg.Pins.CS != "" {
		if cs, err = lookupPin(cfg.Pins.CS); err != nil {
			return nil, err
		}
	}
	dev, err := panel.New(port, p[0], cs, p[1], p[2], desc, &panel.Opts{
		Frequency:   freq,
		Mode:        cfg.Mode,
		Rotation:    cfg.Rotation,
		BusyTimeout: cfg.BusyTimeout,
		UseEdge:     true,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("dev", dev).Stringer("mode", dev.RefreshMode()).Msg("panel ready")
	return &panelScreen{dev: dev, port: port, dither: cfg.Dither}, nil
}

func (s *panelScreen) Bounds() image.Rectangle {
	return s.dev.Bounds()
}

func (s *panelScreen) Show(img image.Image, full bool) error {
	mode := s.dev.RefreshMode()
	if full && mode != panel.Full {
		if err := s.dev.SetRefreshMode(panel.Full); err != nil {
			return err
		}
	}
	c, err := s.dev.NewCanvas()
	if err != nil {
		return err
	}
	b := c.Bounds()
	imageconv.Into(c, imageconv.Fit(img, b.Dx(), b.Dy()), s.dither)
	if err := s.dev.Draw(b, c, image.Point{}); err != nil {
		return err
	}
	if s.dev.RefreshMode() != mode {
		return s.dev.SetRefreshMode(mode)
	}
	return nil
}

func (s *panelScreen) Clear() error {
	if err := s.dev.ClearFrame(); err != nil {
		return err
	}
	return s.dev.DisplayFrame()
}

func (s *panelScreen) Halt() error {
	err := s.dev.Halt()
	if err2 := s.port.Close(); err == nil {
		err = err2
	}
	return err
}

// tiledScreen always refreshes the whole panel; it has no quick waveform.
type tiledScreen struct {
	dev    *tiled.Dev
	port   spi.PortCloser
	canvas *framebuffer.Canvas
	dither imageconv.Dither
}

func openTiled(cfg *config.Config, port spi.PortCloser, freq physic.Frequency) (*tiledScreen, error) {
	t := cfg.Tiled
	p, err := lookupPins(
		t.M1CS, t.S1CS, t.M2CS, t.S2CS,
		t.M1S1DC, t.M2S2DC, t.M1S1RST, t.M2S2RST,
		t.M1Busy, t.S1Busy, t.M2Busy, t.S2Busy,
	)
	if err != nil {
		return nil, err
	}
	// Chip select is driven through the GPIOs, one per controller.
	c, err := port.Connect(freq, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		return nil, err
	}
	dev, err := tiled.New(c, &tiled.Pins{
		M1CS: p[0], S1CS: p[1], M2CS: p[2], S2CS: p[3],
		M1S1DC: p[4], M2S2DC: p[5], M1S1RST: p[6], M2S2RST: p[7],
		M1Busy: p[8], S1Busy: p[9], M2Busy: p[10], S2Busy: p[11],
	}, &tiled.Opts{BusyTimeout: cfg.BusyTimeout})
	if err != nil {
		return nil, err
	}
	if err := dev.Reset(); err != nil {
		return nil, err
	}
	if err := dev.Init(nil); err != nil {
		return nil, err
	}
	canvas, err := newCanvas(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("dev", dev).Msg("panel ready")
	return &tiledScreen{dev: dev, port: port, canvas: canvas, dither: cfg.Dither}, nil
}

func (s *tiledScreen) Bounds() image.Rectangle {
	return s.canvas.Bounds()
}

func (s *tiledScreen) Show(img image.Image, _ bool) error {
	s.canvas.Clear(color.White)
	b := s.canvas.Bounds()
	imageconv.Into(s.canvas, imageconv.Fit(img, b.Dx(), b.Dy()), s.dither)
	return s.refresh()
}

func (s *tiledScreen) Clear() error {
	s.canvas.Clear(color.White)
	return s.refresh()
}

func (s *tiledScreen) refresh() error {
	if err := s.dev.WriteData1(s.canvas.BWBuffer()); err != nil {
		return err
	}
	if err := s.dev.WriteData2(s.canvas.ChromaticBuffer()); err != nil {
		return err
	}
	return s.dev.RefreshDisplay()
}

func (s *tiledScreen) Halt() error {
	err := s.dev.Halt()
	if err2 := s.port.Close(); err == nil {
		err = err2
	}
	return err
}
