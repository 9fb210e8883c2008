// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tiled

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/epaper/panel"
	"github.com/GermanBionicSystems/epaper/transport"
)

// Panel size.
const (
	Width  = 1304
	Height = 984

	leftWidth = 648
	topHeight = 492
)

// Chips is a set of sub-panel controllers.
type Chips uint8

// Valid Chips.
const (
	M1 Chips = 1 << iota
	S1
	M2
	S2
	All = M1 | S1 | M2 | S2

	// data is set on the control state while the D/C lines are high.
	data Chips = 0x10
)

func (c Chips) String() string {
	if c&All == 0 {
		return "none"
	}
	var out []string
	for _, v := range []struct {
		c    Chips
		name string
	}{{M1, "M1"}, {S1, "S1"}, {M2, "M2"}, {S2, "S2"}} {
		if c&v.c != 0 {
			out = append(out, v.name)
		}
	}
	return strings.Join(out, "|")
}

// Sub-panel layout:
//
//	    0        648      1304
//	  0 +--------+--------+
//	    |   S2   |   M2   |
//	492 +--------+--------+
//	    |   M1   |   S1   |
//	984 +--------+--------+
var (
	rectS2 = panel.Rect{X: 0, Y: 0, Width: leftWidth, Height: topHeight}
	rectM2 = panel.Rect{X: leftWidth, Y: 0, Width: Width - leftWidth, Height: topHeight}
	rectM1 = panel.Rect{X: 0, Y: topHeight, Width: leftWidth, Height: Height - topHeight}
	rectS1 = panel.Rect{X: leftWidth, Y: topHeight, Width: Width - leftWidth, Height: Height - topHeight}

	// Full is the whole panel.
	Full = panel.Rect{Width: Width, Height: Height}
)

// Pins are the control lines of the four controllers. CS lines are active
// low, busy lines report busy with a low level.
type Pins struct {
	M1CS, S1CS, M2CS, S2CS         gpio.PinOut
	M1S1DC, M2S2DC                 gpio.PinOut
	M1S1RST, M2S2RST               gpio.PinOut
	M1Busy, S1Busy, M2Busy, S2Busy gpio.PinIn
}

// Opts contains the timing of busy waits.
type Opts struct {
	// PollInterval defaults to 200ms.
	PollInterval time.Duration
	// BusyTimeout disables the timeout when 0.
	BusyTimeout time.Duration
}

// Dev is a handle to a 12.48" (B) v2 panel.
type Dev struct {
	c    conn.Conn
	pins Pins
	opts Opts

	// control is the chip select and D/C state currently driven.
	control Chips
	sleep   func(time.Duration)
}

// New returns a handle to the panel. c is a SPI connection that does not
// drive chip select itself. Call Reset and Init before writing frames.
func New(c conn.Conn, pins *Pins, opts *Opts) (*Dev, error) {
	// control starts unknown so the first flush drives every line.
	d := &Dev{c: c, pins: *pins, control: 0xFF, sleep: time.Sleep}
	if opts != nil {
		d.opts = *opts
	}
	if d.opts.PollInterval <= 0 {
		d.opts.PollInterval = 200 * time.Millisecond
	}
	for _, p := range []gpio.PinOut{pins.M1CS, pins.S1CS, pins.M2CS, pins.S2CS, pins.M1S1DC, pins.M2S2DC, pins.M1S1RST, pins.M2S2RST} {
		if p == nil {
			return nil, errors.New("tiled: every control pin must be wired")
		}
	}
	for _, p := range []gpio.PinIn{pins.M1Busy, pins.S1Busy, pins.M2Busy, pins.S2Busy} {
		if p == nil {
			return nil, errors.New("tiled: every busy pin must be wired")
		}
		if err := p.In(gpio.Float, gpio.NoEdge); err != nil {
			return nil, &transport.Error{Role: transport.RoleBusy, Err: err}
		}
	}
	if err := d.flush(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("tiled.Dev{%s}", d.c)
}

// Reset pulses both reset lines, waking the controllers from deep sleep.
func (d *Dev) Reset() error {
	if err := d.flush(); err != nil {
		return err
	}
	for _, p := range []gpio.PinOut{d.pins.M1S1RST, d.pins.M2S2RST} {
		if err := p.Out(gpio.High); err != nil {
			return &transport.Error{Role: transport.RoleReset, Err: err}
		}
	}
	d.sleep(time.Millisecond)
	for _, p := range []gpio.PinOut{d.pins.M1S1RST, d.pins.M2S2RST} {
		if err := p.Out(gpio.Low); err != nil {
			return &transport.Error{Role: transport.RoleReset, Err: err}
		}
		// Reset must stay low at least 50µs, then 10ms before any command.
		d.sleep(100 * time.Microsecond)
		if err := p.Out(gpio.High); err != nil {
			return &transport.Error{Role: transport.RoleReset, Err: err}
		}
		d.sleep(100 * time.Millisecond)
	}
	return nil
}

// Init configures the controllers.
func (d *Dev) Init(cfg *Config) error {
	w := d.writer()
	w.cmd(All, boosterSoftStart, 0x17, 0x17, 0x39, 0x17)
	for _, s := range []struct {
		c Chips
		r panel.Rect
	}{{M1, rectM1}, {S1, rectS1}, {M2, rectM2}, {S2, rectS2}} {
		w.cmd(s.c, tconResolution, byte(s.r.Width>>8), byte(s.r.Width), byte(s.r.Height>>8), byte(s.r.Height))
	}
	w.cmd(All, dualSPI, 0x20)
	w.cmd(All, tconSetting, 0x22)
	w.cmd(All, powerSaving, 0x00)
	w.cmd(All, cascadeSetting, 0x03)
	w.cmd(All, forceTemperature, 25)
	if err := w.done(); err != nil {
		return err
	}
	return d.SetMode(cfg)
}

// SetMode changes the data polarity and LUT selection without touching the
// other registers.
func (d *Dev) SetMode(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	ps, vcom := cfg.registers()
	w := d.writer()
	w.cmd(M1, panelSetting, ps|0x0F)
	w.cmd(S1, panelSetting, ps|0x0F)
	w.cmd(M2, panelSetting, ps|0x03)
	w.cmd(S2, panelSetting, ps|0x03)
	w.cmd(All, vcomAndDataIntervalSetting, vcom, 0x07)
	return w.done()
}

// WriteData1 fills the black/white RAM. pixels may hold fewer rows than the
// panel; they are repeated.
func (d *Dev) WriteData1(pixels []byte) error {
	return d.writeFull(dataStartTransmission1, pixels)
}

// WriteData2 fills the red RAM. Red pixels override the black/white ones.
func (d *Dev) WriteData2(pixels []byte) error {
	return d.writeFull(dataStartTransmission2, pixels)
}

// WriteData1Partial fills the window r of the black/white RAM. r must start
// and end on byte boundaries.
func (d *Dev) WriteData1Partial(r panel.Rect, pixels []byte) error {
	return d.writePartial(dataStartTransmission1, r, pixels)
}

// WriteData2Partial fills the window r of the red RAM.
func (d *Dev) WriteData2Partial(r panel.Rect, pixels []byte) error {
	return d.writePartial(dataStartTransmission2, r, pixels)
}

// SetLUTC stores the VCOM waveform. Short tables are zero padded. Stored
// tables are only used with Config.ExternalLUT.
func (d *Dev) SetLUTC(lut []byte) error {
	return d.setLUT(lutC, lut, 60)
}

// SetLUTWW stores the white to white waveform.
func (d *Dev) SetLUTWW(lut []byte) error {
	return d.setLUT(lutWW, lut, 42)
}

// SetLUTKW stores the black to white waveform, red in KWR mode.
func (d *Dev) SetLUTKW(lut []byte) error {
	return d.setLUT(lutKWR, lut, 60)
}

// SetLUTWK stores the white to black waveform, white in KWR mode.
func (d *Dev) SetLUTWK(lut []byte) error {
	return d.setLUT(lutWKW, lut, 60)
}

// SetLUTKK stores the black to black waveform, black in KWR mode.
func (d *Dev) SetLUTKK(lut []byte) error {
	return d.setLUT(lutKKK, lut, 60)
}

// SetLUTBD stores the border waveform.
func (d *Dev) SetLUTBD(lut []byte) error {
	return d.setLUT(lutBD, lut, 42)
}

// RefreshDisplay refreshes the whole panel and waits for completion.
func (d *Dev) RefreshDisplay() error {
	if err := d.BeginRefreshDisplay(); err != nil {
		return err
	}
	return d.waitReady(All)
}

// BeginRefreshDisplay starts a refresh. Poll IsBusy for completion.
func (d *Dev) BeginRefreshDisplay() error {
	if err := d.powerOn(); err != nil {
		return err
	}
	w := d.writer()
	w.cmd(All, displayRefresh)
	return w.done()
}

// RefreshDisplayPartial refreshes the window r and waits for completion.
//
// The rest of the image degrades visibly after a few partial refreshes.
func (d *Dev) RefreshDisplayPartial(r panel.Rect) error {
	if err := d.BeginRefreshDisplayPartial(r); err != nil {
		return err
	}
	return d.waitReady(All)
}

// BeginRefreshDisplayPartial starts a refresh of the window r.
func (d *Dev) BeginRefreshDisplayPartial(r panel.Rect) error {
	if err := checkWindow(r); err != nil {
		return err
	}
	w := d.writer()
	w.partialWindows(r)
	if err := w.done(); err != nil {
		return err
	}
	if err := d.powerOn(); err != nil {
		return err
	}
	w = d.writer()
	w.cmd(All, partialIn)
	w.cmd(All, displayRefresh)
	w.cmd(All, partialOut)
	return w.done()
}

// PowerOff turns the boosters off. The RAM content is retained.
func (d *Dev) PowerOff() error {
	w := d.writer()
	w.cmd(All, powerOff)
	if err := w.done(); err != nil {
		return err
	}
	return d.waitReady(All)
}

// Hibernate puts the controllers in deep sleep. Only Reset wakes them up and
// the RAM content is lost.
func (d *Dev) Hibernate() error {
	if err := d.PowerOff(); err != nil {
		return err
	}
	w := d.writer()
	w.cmd(All, deepSleep, 0xA5)
	return w.done()
}

// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	return d.Hibernate()
}

// Busy returns the controllers currently working.
func (d *Dev) Busy() Chips {
	var out Chips
	for _, p := range []struct {
		c   Chips
		pin gpio.PinIn
	}{{M1, d.pins.M1Busy}, {S1, d.pins.S1Busy}, {M2, d.pins.M2Busy}, {S2, d.pins.S2Busy}} {
		if p.pin.Read() == gpio.Low {
			out |= p.c
		}
	}
	return out
}

// IsBusy reports whether any controller is working.
func (d *Dev) IsBusy() bool {
	return d.Busy() != 0
}

// Status returns the status byte of each controller, in the order M1, S1, M2,
// S2.
func (d *Dev) Status() ([4]byte, error) {
	var out [4]byte
	for i, s := range []struct {
		cs, dc gpio.PinOut
	}{
		{d.pins.M1CS, d.pins.M1S1DC},
		{d.pins.S1CS, d.pins.M1S1DC},
		{d.pins.M2CS, d.pins.M2S2DC},
		{d.pins.S2CS, d.pins.M2S2DC},
	} {
		// The pins are driven directly; force the next write to restore them.
		d.control = 0xFF
		if err := d.readStatus(s.cs, s.dc, out[i:i+1]); err != nil {
			return out, err
		}
	}
	return out, d.flush()
}

func (d *Dev) readStatus(cs, dc gpio.PinOut, r []byte) error {
	if err := cs.Out(gpio.Low); err != nil {
		return &transport.Error{Role: transport.RoleCS, Err: err}
	}
	if err := dc.Out(gpio.Low); err != nil {
		return &transport.Error{Role: transport.RoleDC, Err: err}
	}
	if err := d.c.Tx([]byte{getStatus}, nil); err != nil {
		return &transport.Error{Role: transport.RoleSPI, Err: err}
	}
	if err := dc.Out(gpio.High); err != nil {
		return &transport.Error{Role: transport.RoleDC, Err: err}
	}
	if err := d.c.Tx(nil, r); err != nil {
		return &transport.Error{Role: transport.RoleSPI, Err: err}
	}
	if err := dc.Out(gpio.Low); err != nil {
		return &transport.Error{Role: transport.RoleDC, Err: err}
	}
	if err := cs.Out(gpio.High); err != nil {
		return &transport.Error{Role: transport.RoleCS, Err: err}
	}
	return nil
}

func (d *Dev) powerOn() error {
	w := d.writer()
	w.cmd(All, powerOn)
	if err := w.done(); err != nil {
		return err
	}
	if err := d.waitReady(All); err != nil {
		return err
	}
	// The refresh is not reliably triggered right after power on.
	d.sleep(100 * time.Millisecond)
	return nil
}

func (d *Dev) waitReady(c Chips) error {
	var deadline time.Time
	if d.opts.BusyTimeout > 0 {
		deadline = time.Now().Add(d.opts.BusyTimeout)
	}
	for d.Busy()&c != 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return &transport.Error{Role: transport.RoleBusy, Err: transport.ErrBusyTimeout}
		}
		d.sleep(d.opts.PollInterval)
	}
	return nil
}

func (d *Dev) writeFull(cmd byte, pixels []byte) error {
	if err := checkPixels(Full, pixels); err != nil {
		return err
	}
	w := d.writer()
	w.windowData(cmd, Full, pixels)
	return w.done()
}

func (d *Dev) writePartial(cmd byte, r panel.Rect, pixels []byte) error {
	if err := checkWindow(r); err != nil {
		return err
	}
	if err := checkPixels(r, pixels); err != nil {
		return err
	}
	w := d.writer()
	w.cmd(All, partialIn)
	w.partialWindows(r)
	w.windowData(cmd, r, pixels)
	w.cmd(All, partialOut)
	return w.done()
}

func (d *Dev) setLUT(cmd byte, lut []byte, n int) error {
	if len(lut) > n {
		return fmt.Errorf("%w: LUT %#02x is %d bytes, at most %d", panel.ErrInvalidArgument, cmd, len(lut), n)
	}
	w := d.writer()
	w.cmd(All, cmd, lut...)
	if pad := n - len(lut); pad > 0 {
		w.write(All|data, make([]byte, pad))
	}
	return w.done()
}

// setControl drives the chip select and D/C lines for c. Nothing is toggled
// when they already match.
func (d *Dev) setControl(c Chips) error {
	if d.control == c {
		return nil
	}
	for _, p := range []struct {
		c   Chips
		pin gpio.PinOut
	}{{M1, d.pins.M1CS}, {S1, d.pins.S1CS}, {M2, d.pins.M2CS}, {S2, d.pins.S2CS}} {
		if err := p.pin.Out(c&p.c == 0); err != nil {
			d.control = 0xFF
			return &transport.Error{Role: transport.RoleCS, Err: err}
		}
	}
	l := c&data != 0
	for _, p := range []gpio.PinOut{d.pins.M1S1DC, d.pins.M2S2DC} {
		if err := p.Out(gpio.Level(l)); err != nil {
			d.control = 0xFF
			return &transport.Error{Role: transport.RoleDC, Err: err}
		}
	}
	d.control = c
	return nil
}

// flush deselects every controller.
func (d *Dev) flush() error {
	return d.setControl(0)
}

// checkWindow verifies r lies on the panel and is 8 pixel aligned
// horizontally.
func checkWindow(r panel.Rect) error {
	if r.Empty() || r.X < 0 || r.Y < 0 || r.X+r.Width > Width || r.Y+r.Height > Height {
		return fmt.Errorf("%w: window %s outside %dx%d", panel.ErrInvalidArgument, r, Width, Height)
	}
	if r.X%8 != 0 || r.Width%8 != 0 {
		return fmt.Errorf("%w: window %s not aligned to 8 pixels", panel.ErrInvalidArgument, r)
	}
	return nil
}

// checkPixels verifies pixels holds whole rows of r.
func checkPixels(r panel.Rect, pixels []byte) error {
	row := r.Width / 8
	if len(pixels) == 0 || len(pixels)%row != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of the %d bytes rows of %s", panel.ErrInvalidArgument, len(pixels), row, r)
	}
	return nil
}

// overlap returns the length of [a0, a1) ∩ [b0, b1).
func overlap(a0, a1, b0, b1 int) int {
	return max(0, min(a1, b1)-max(a0, b0))
}
