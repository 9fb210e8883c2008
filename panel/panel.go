// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package panel drives e-paper panels through one generic update protocol.
//
// Every panel model is a Description: its geometry, pixel format, busy
// polarity and the ordered command sequences of the reset, init, LUT, frame
// transfer, refresh and sleep phases. Dev runs those sequences over a
// transport.Bus and tracks the protocol state:
//
//	Uninitialized -> Initialized(Full|Quick) -> AsleepDeep
//	Initialized -> OldFrameStaged -> NewFrameStaged -> Initialized
//
// Buffers and windows are validated before any I/O; a failing transfer
// aborts the sequence and is returned as is. The controller is then in an
// undefined state and must be initialized again.
//
// Quick refresh accumulates ghosting. Callers must interleave full
// refreshes; Dev does not do it for them.
package panel

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3/rpi"

	"github.com/GermanBionicSystems/epaper/epdcolor"
	"github.com/GermanBionicSystems/epaper/framebuffer"
	"github.com/GermanBionicSystems/epaper/transport"
)

// State is the protocol state of a panel.
type State uint8

// Valid State.
const (
	Uninitialized State = iota
	Initialized
	OldFrameStaged
	NewFrameStaged
	AsleepDeep
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case OldFrameStaged:
		return "old frame staged"
	case NewFrameStaged:
		return "new frame staged"
	case AsleepDeep:
		return "asleep"
	}
	return "uninitialized"
}

// Opts configures a Dev.
type Opts struct {
	// Frequency of the SPI bus. Defaults to 4MHz.
	Frequency physic.Frequency
	// Mode is the refresh mode loaded by Init.
	Mode RefreshMode
	// Rotation applied by Draw.
	Rotation framebuffer.Rotation
	// Background defaults to white.
	Background color.Color

	PollInterval time.Duration
	BusyTimeout  time.Duration
	UseEdge      bool
}

// Dev is a handle to one panel.
type Dev struct {
	bus  *transport.Bus
	desc *Description
	opts Opts

	state      State
	mode       RefreshMode
	powered    bool
	background epdcolor.Color

	// canvas and shown back Draw; shown is the last frame sent.
	canvas *framebuffer.Canvas
	shown  []byte
}

// New connects to the panel, resets and initializes it.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, desc *Description, opts *Opts) (*Dev, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Frequency == 0 {
		o.Frequency = 4 * physic.MegaHertz
	}
	c, err := p.Connect(o.Frequency, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	b, err := transport.New(c, dc, cs, rst, busy, &transport.Opts{
		BusyLevel:       desc.Busy.Level(),
		PollInterval:    o.PollInterval,
		BusyTimeout:     o.BusyTimeout,
		UseEdge:         o.UseEdge,
		SingleByteWrite: desc.SingleByteWrite,
	})
	if err != nil {
		return nil, err
	}
	return NewBus(b, desc, &o)
}

// NewHat connects to a panel wired to the Waveshare e-Paper HAT.
func NewHat(p spi.Port, desc *Description, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, desc, opts)
}

// NewBus initializes a panel reachable through b. The busy polarity of b
// must match desc.
func NewBus(b *transport.Bus, desc *Description, opts *Opts) (*Dev, error) {
	d := desc.withDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	dev := &Dev{bus: b, desc: d}
	if opts != nil {
		dev.opts = *opts
	}
	if dev.opts.Mode == Quick && !d.SupportsQuick() {
		return nil, fmt.Errorf("%w: %s has no quick mode", ErrUnsupported, d.Name)
	}
	bg := dev.opts.Background
	if bg == nil {
		bg = color.White
	}
	dev.SetBackground(bg)
	if err := dev.init(dev.opts.Mode); err != nil {
		return nil, err
	}
	return dev, nil
}

// Init resets the controller and runs the init sequence with the LUT of the
// current refresh mode.
func (d *Dev) Init() error {
	return d.init(d.mode)
}

func (d *Dev) init(m RefreshMode) error {
	eh := errorHandler{b: d.bus}
	initPanel(&eh, d.desc, m)
	if eh.err != nil {
		d.state = Uninitialized
		return eh.err
	}
	d.mode = m
	d.state = Initialized
	d.powered = d.desc.Power.StayOn || len(d.desc.Power.On) == 0
	return nil
}

// WakeUp leaves deep sleep by initializing the controller again.
func (d *Dev) WakeUp() error {
	return d.Init()
}

// SetRefreshMode selects the waveform of the following refreshes.
func (d *Dev) SetRefreshMode(m RefreshMode) error {
	if err := d.ready(); err != nil {
		return err
	}
	if m == d.mode {
		return nil
	}
	if m == Quick && !d.desc.SupportsQuick() {
		return fmt.Errorf("%w: %s has no quick mode", ErrUnsupported, d.desc.Name)
	}
	if d.desc.ModeSwitch == Reinit {
		return d.init(m)
	}
	eh := errorHandler{b: d.bus}
	eh.waitUntilIdle()
	loadMode(&eh, d.desc, m)
	if eh.err != nil {
		return eh.err
	}
	d.mode = m
	return nil
}

// RefreshMode returns the current refresh mode.
func (d *Dev) RefreshMode() RefreshMode {
	return d.mode
}

// UpdateFrame transfers a whole frame. buf holds every plane, as returned by
// framebuffer.Canvas.Buffer.
func (d *Dev) UpdateFrame(buf []byte) error {
	return d.updateFrame(buf, d.desc.full())
}

// UpdatePartialFrame transfers buf into the window r.
func (d *Dev) UpdatePartialFrame(buf []byte, r Rect) error {
	if !d.desc.Partial {
		return fmt.Errorf("%w: %s has no partial update", ErrUnsupported, d.desc.Name)
	}
	return d.updateFrame(buf, r)
}

func (d *Dev) updateFrame(buf []byte, r Rect) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.checkWindow(r); err != nil {
		return err
	}
	if err := d.checkBuffer(buf, r, d.desc.Color.Planes); err != nil {
		return err
	}
	n := d.desc.planeSize(r.Width, r.Height)
	planes := make([][]byte, d.desc.Color.Planes)
	for i := range planes {
		planes[i] = buf[i*n : (i+1)*n]
	}
	d.shown = nil
	eh := errorHandler{b: d.bus}
	updateFrame(&eh, d.desc, d.mode, r, planes, d.background.FillByte())
	if eh.err != nil {
		return eh.err
	}
	d.state = Initialized
	return nil
}

// UpdateColorFrame transfers both planes of a tri-color frame.
func (d *Dev) UpdateColorFrame(bw, chromatic []byte) error {
	return d.updatePlanes(bw, chromatic)
}

// UpdateAchromaticFrame transfers the black/white plane only.
func (d *Dev) UpdateAchromaticFrame(bw []byte) error {
	return d.updatePlanes(bw, nil)
}

// UpdateChromaticFrame transfers the chromatic plane only.
func (d *Dev) UpdateChromaticFrame(chromatic []byte) error {
	return d.updatePlanes(nil, chromatic)
}

func (d *Dev) updatePlanes(bw, chromatic []byte) error {
	if d.desc.Color.Planes != 2 {
		return fmt.Errorf("%w: %s has a single plane", ErrUnsupported, d.desc.Name)
	}
	if err := d.ready(); err != nil {
		return err
	}
	r := d.desc.full()
	var banks []bank
	for _, p := range []struct {
		cmd  byte
		data []byte
	}{{d.desc.Opcodes.Frame, bw}, {d.desc.Opcodes.Chromatic, chromatic}} {
		if p.data == nil {
			continue
		}
		if err := d.checkBuffer(p.data, r, 1); err != nil {
			return err
		}
		banks = append(banks, bank{cmd: p.cmd, data: p.data})
	}
	d.shown = nil
	eh := errorHandler{b: d.bus}
	updateBanks(&eh, d.desc, r, banks)
	if eh.err != nil {
		return eh.err
	}
	d.state = Initialized
	return nil
}

// DisplayFrame refreshes the panel with the transferred frame.
func (d *Dev) DisplayFrame() error {
	return d.displayFrame(true)
}

func (d *Dev) displayFrame(wait bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	eh := errorHandler{b: d.bus}
	powered := displayFrame(&eh, d.desc, d.mode, d.powered, wait)
	if eh.err != nil {
		return eh.err
	}
	d.powered = powered
	d.state = Initialized
	return nil
}

// UpdateAndDisplayFrame transfers buf and refreshes the panel.
func (d *Dev) UpdateAndDisplayFrame(buf []byte) error {
	if err := d.UpdateFrame(buf); err != nil {
		return err
	}
	// The transfer does not make the controller busy.
	return d.displayFrame(false)
}

// ClearFrame fills the panel RAM with the background color. The panel
// changes on the next DisplayFrame.
func (d *Dev) ClearFrame() error {
	return d.clearFrame(d.desc.full())
}

// ClearPartialFrame fills the window r with the background color.
func (d *Dev) ClearPartialFrame(r Rect) error {
	if !d.desc.Partial {
		return fmt.Errorf("%w: %s has no partial update", ErrUnsupported, d.desc.Name)
	}
	return d.clearFrame(r)
}

func (d *Dev) clearFrame(r Rect) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.checkWindow(r); err != nil {
		return err
	}
	fills, err := d.fillBytes()
	if err != nil {
		return err
	}
	eh := errorHandler{b: d.bus}
	clearFrame(&eh, d.desc, d.mode, r, fills)
	if eh.err != nil {
		return eh.err
	}
	d.shown = nil
	d.state = Initialized
	return nil
}

// UpdateOldFrame stores the frame currently shown on the panel. It must be
// the exact bytes last displayed, otherwise the quick refresh ghosts.
func (d *Dev) UpdateOldFrame(buf []byte) error {
	return d.updateOldFrame(buf, d.desc.full(), false)
}

// UpdatePartialOldFrame stores the window r of the frame currently shown.
func (d *Dev) UpdatePartialOldFrame(buf []byte, r Rect) error {
	return d.updateOldFrame(buf, r, true)
}

func (d *Dev) updateOldFrame(buf []byte, r Rect, partial bool) error {
	if err := d.checkQuick(partial); err != nil {
		return err
	}
	if err := d.checkWindow(r); err != nil {
		return err
	}
	if err := d.checkBuffer(buf, r, 1); err != nil {
		return err
	}
	d.shown = nil
	eh := errorHandler{b: d.bus}
	updateOldFrame(&eh, d.desc, r, buf)
	if eh.err != nil {
		return eh.err
	}
	d.state = OldFrameStaged
	return nil
}

// UpdateNewFrame loads the quick waveform and stores the frame to show.
func (d *Dev) UpdateNewFrame(buf []byte) error {
	return d.updateNewFrame(buf, d.desc.full(), false)
}

// UpdatePartialNewFrame stores the window r of the frame to show.
func (d *Dev) UpdatePartialNewFrame(buf []byte, r Rect) error {
	return d.updateNewFrame(buf, r, true)
}

func (d *Dev) updateNewFrame(buf []byte, r Rect, partial bool) error {
	if err := d.checkQuick(partial); err != nil {
		return err
	}
	if err := d.checkWindow(r); err != nil {
		return err
	}
	if err := d.checkBuffer(buf, r, 1); err != nil {
		return err
	}
	d.shown = nil
	eh := errorHandler{b: d.bus}
	updateNewFrame(&eh, d.desc, r, buf)
	if eh.err != nil {
		return eh.err
	}
	d.state = NewFrameStaged
	return nil
}

// DisplayNewFrame runs the quick refresh of the staged new frame.
func (d *Dev) DisplayNewFrame() error {
	if err := d.checkQuick(false); err != nil {
		return err
	}
	if d.state != NewFrameStaged {
		return ErrNoNewFrame
	}
	eh := errorHandler{b: d.bus}
	displayNewFrame(&eh, d.desc)
	if eh.err != nil {
		return eh.err
	}
	d.state = Initialized
	return nil
}

// UpdateAndDisplayNewFrame stages buf and runs the quick refresh.
func (d *Dev) UpdateAndDisplayNewFrame(buf []byte) error {
	if err := d.UpdateNewFrame(buf); err != nil {
		return err
	}
	return d.DisplayNewFrame()
}

// PowerOff turns the booster off. The next DisplayFrame turns it on again.
func (d *Dev) PowerOff() error {
	if err := d.ready(); err != nil {
		return err
	}
	if len(d.desc.Power.Off) == 0 {
		return fmt.Errorf("%w: %s has no power off sequence", ErrUnsupported, d.desc.Name)
	}
	eh := errorHandler{b: d.bus}
	eh.waitUntilIdle()
	runSteps(&eh, d.desc.Power.Off)
	if eh.err != nil {
		return eh.err
	}
	d.powered = false
	return nil
}

// Sleep puts the controller in deep sleep. Only WakeUp or Init leave it.
func (d *Dev) Sleep() error {
	if err := d.ready(); err != nil {
		return err
	}
	eh := errorHandler{b: d.bus}
	sleep(&eh, d.desc)
	if eh.err != nil {
		return eh.err
	}
	d.powered = false
	d.state = AsleepDeep
	return nil
}

// State returns the protocol state.
func (d *Dev) State() State {
	return d.state
}

// IsBusy reports whether the controller is working.
func (d *Dev) IsBusy() bool {
	return d.bus.IsBusy()
}

// Background returns the color used by ClearFrame and prefilled banks.
func (d *Dev) Background() epdcolor.Color {
	return d.background
}

// SetBackground changes the background color. On eight color panels the
// border follows it from the next init or full frame.
func (d *Dev) SetBackground(c color.Color) {
	d.background = d.desc.Color.Model().Convert(c).(epdcolor.Color)
	if o, ok := d.background.(epdcolor.OctColor); ok {
		d.desc.Init = withBorder(d.desc.Init, o)
		d.desc.FramePrelude = withBorder(d.desc.FramePrelude, o)
	}
}

// Description returns a copy of the panel description.
func (d *Dev) Description() Description {
	return *d.desc
}

// NewCanvas returns a canvas matching the panel memory layout, cleared to the
// background and rotated by Opts.Rotation.
func (d *Dev) NewCanvas() (*framebuffer.Canvas, error) {
	c, err := framebuffer.New(&framebuffer.Opts{
		Width:           d.desc.Width,
		Height:          d.desc.Height,
		Format:          d.desc.Color,
		Scheme:          d.desc.Scheme,
		SetUnused:       d.desc.SetUnused,
		InvertChromatic: d.desc.InvertChromatic,
		Background:      d.background,
	})
	if err != nil {
		return nil, err
	}
	c.SetRotation(d.opts.Rotation)
	return c, nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return d.desc.Color.Model()
}

// Bounds implements display.Drawer. The bounds are rotated by Opts.Rotation.
func (d *Dev) Bounds() image.Rectangle {
	w, h := d.desc.Width, d.desc.Height
	if d.opts.Rotation == framebuffer.Rotate90 || d.opts.Rotation == framebuffer.Rotate270 {
		w, h = h, w
	}
	return image.Rect(0, 0, w, h)
}

// Draw implements display.Drawer. The image is composed into an internal
// canvas which is then displayed whole; in Quick mode the previous frame is
// used for a quick refresh.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	if err := d.ready(); err != nil {
		return err
	}
	if d.canvas == nil {
		c, err := d.NewCanvas()
		if err != nil {
			return err
		}
		d.canvas = c
	}
	draw.Draw(d.canvas, dstRect, src, sp, draw.Src)
	buf := d.canvas.Buffer()
	if d.mode == Quick && d.desc.Quick != nil && d.shown != nil {
		if err := d.UpdateOldFrame(d.shown); err != nil {
			return err
		}
		if err := d.UpdateAndDisplayNewFrame(buf); err != nil {
			return err
		}
	} else if err := d.UpdateAndDisplayFrame(buf); err != nil {
		return err
	}
	d.shown = append(d.shown[:0], buf...)
	return nil
}

// Halt implements conn.Resource. It puts the panel in deep sleep; the image
// stays visible.
func (d *Dev) Halt() error {
	if d.state == AsleepDeep {
		return nil
	}
	return d.Sleep()
}

func (d *Dev) String() string {
	return fmt.Sprintf("panel.Dev{%s, %s, Width: %d, Height: %d}", d.desc.Name, d.bus, d.desc.Width, d.desc.Height)
}

func (d *Dev) ready() error {
	switch d.state {
	case AsleepDeep:
		return ErrAsleep
	case Uninitialized:
		return ErrNotInitialized
	}
	return nil
}

func (d *Dev) checkQuick(partial bool) error {
	q := d.desc.Quick
	if q == nil || (partial && !q.Partial) {
		return fmt.Errorf("%w: %s has no quick refresh", ErrUnsupported, d.desc.Name)
	}
	return d.ready()
}

// checkWindow verifies r lies on the panel and starts on a byte boundary. It
// must also end on one, or on the right edge of the panel.
func (d *Dev) checkWindow(r Rect) error {
	if r.Empty() || r.X < 0 || r.Y < 0 || r.X+r.Width > d.desc.Width || r.Y+r.Height > d.desc.Height {
		return fmt.Errorf("%w: window %s outside %dx%d", ErrInvalidArgument, r, d.desc.Width, d.desc.Height)
	}
	if r == d.desc.full() {
		return nil
	}
	if ppb := d.desc.Color.PixelsPerByte(); r.X%ppb != 0 || (r.Width%ppb != 0 && r.X+r.Width != d.desc.Width) {
		return fmt.Errorf("%w: window %s not aligned to %d pixels", ErrInvalidArgument, r, ppb)
	}
	return nil
}

func (d *Dev) checkBuffer(buf []byte, r Rect, planes int) error {
	if want := d.desc.planeSize(r.Width, r.Height) * planes; len(buf) != want {
		return fmt.Errorf("%w: buffer is %d bytes, want %d for %s", ErrInvalidArgument, len(buf), want, r)
	}
	return nil
}

// fillBytes returns the byte filling each plane with the background.
func (d *Dev) fillBytes() ([]byte, error) {
	c, err := framebuffer.New(&framebuffer.Opts{
		Width:           8,
		Height:          1,
		Format:          d.desc.Color,
		SetUnused:       d.desc.SetUnused,
		InvertChromatic: d.desc.InvertChromatic,
		Background:      d.background,
	})
	if err != nil {
		return nil, err
	}
	out := make([]byte, d.desc.Color.Planes)
	for i := range out {
		out[i] = c.Plane(i)[0]
	}
	return out, nil
}

var _ display.Drawer = &Dev{}
