// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/epaper/epdcolor"
	"github.com/GermanBionicSystems/epaper/framebuffer"
	"github.com/GermanBionicSystems/epaper/transport"
)

// Busy is the level the busy line takes while the controller works.
type Busy uint8

// Valid Busy.
const (
	BusyActiveHigh Busy = iota
	BusyActiveLow
)

func (b Busy) String() string {
	if b == BusyActiveLow {
		return "low"
	}
	return "high"
}

// Level returns the gpio level reported while busy.
func (b Busy) Level() gpio.Level {
	return b == BusyActiveHigh
}

// Set implements the flag.Value interface.
func (b *Busy) Set(s string) error {
	switch s {
	case "high":
		*b = BusyActiveHigh
	case "low":
		*b = BusyActiveLow
	default:
		return fmt.Errorf("unknown busy polarity %q: expected high or low", s)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Busy) UnmarshalText(text []byte) error {
	return b.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (b Busy) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Addressing is how a controller selects the RAM region written by the next
// data transfer.
type Addressing uint8

const (
	// RAMWindow controllers take explicit X/Y start/end ranges and address
	// counters before every transfer (SSD16xx family).
	RAMWindow Addressing = iota
	// PartialWindow controllers always receive the whole frame unless a
	// partial window is opened around the transfer (UC81xx family).
	PartialWindow
)

func (a Addressing) String() string {
	if a == PartialWindow {
		return "partial-window"
	}
	return "ram-window"
}

// Set implements the flag.Value interface.
func (a *Addressing) Set(s string) error {
	switch s {
	case "ram-window":
		*a = RAMWindow
	case "partial-window":
		*a = PartialWindow
	default:
		return fmt.Errorf("unknown addressing %q: expected ram-window or partial-window", s)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Addressing) UnmarshalText(text []byte) error {
	return a.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (a Addressing) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// RefreshMode selects the waveform used by the next refresh.
type RefreshMode uint8

// Valid RefreshMode.
const (
	Full RefreshMode = iota
	Quick
)

func (m RefreshMode) String() string {
	if m == Quick {
		return "quick"
	}
	return "full"
}

// Set implements the flag.Value interface.
func (m *RefreshMode) Set(s string) error {
	switch s {
	case "full":
		*m = Full
	case "quick":
		*m = Quick
	default:
		return fmt.Errorf("unknown refresh mode %q: expected full or quick", s)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RefreshMode) UnmarshalText(text []byte) error {
	return m.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (m RefreshMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ModeSwitch is how a panel changes its refresh mode.
type ModeSwitch uint8

const (
	// Reinit resets the controller and runs the whole init sequence with the
	// LUT of the new mode.
	Reinit ModeSwitch = iota
	// ReloadLUT only uploads the LUT and mode steps of the new mode.
	ReloadLUT
)

func (s ModeSwitch) String() string {
	if s == ReloadLUT {
		return "reload-lut"
	}
	return "reinit"
}

// Set implements the flag.Value interface.
func (s *ModeSwitch) Set(v string) error {
	switch v {
	case "reinit":
		*s = Reinit
	case "reload-lut":
		*s = ReloadLUT
	default:
		return fmt.Errorf("unknown mode switch %q: expected reinit or reload-lut", v)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ModeSwitch) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (s ModeSwitch) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Step is one entry of a command sequence: an optional command with its
// parameters, then an optional busy wait and delay.
//
// Border marks the VCOM and data interval register of eight color
// controllers: bits 5 to 7 of the first data byte follow the background.
type Step struct {
	Cmd    byte
	Data   Bytes
	NoCmd  bool
	Wait   bool
	Delay  time.Duration
	Border bool
}

// Cmd returns a step sending cmd and data.
func Cmd(cmd byte, data ...byte) Step {
	return Step{Cmd: cmd, Data: data}
}

// CmdWait returns a step sending cmd and data, then waiting for idle.
func CmdWait(cmd byte, data ...byte) Step {
	return Step{Cmd: cmd, Data: data, Wait: true}
}

// BorderCmd returns a step sending cmd and v, with the border bits of v driven
// to the background color.
func BorderCmd(cmd, v byte) Step {
	return Step{Cmd: cmd, Data: Bytes{v}, Border: true}
}

// withBorder returns steps with every Border step driven to c. The steps are
// copied before the first change.
func withBorder(steps []Step, c epdcolor.OctColor) []Step {
	var out []Step
	for i := range steps {
		if !steps[i].Border || len(steps[i].Data) == 0 {
			continue
		}
		if out == nil {
			out = append([]Step(nil), steps...)
		}
		data := append(Bytes(nil), steps[i].Data...)
		data[0] = data[0]&0x1F | (c.Nibble()&0x07)<<5
		out[i].Data = data
	}
	if out == nil {
		return steps
	}
	return out
}

// WaitIdle returns a step that only waits for the busy line.
func WaitIdle() Step {
	return Step{NoCmd: true, Wait: true}
}

// Pause returns a step that only sleeps.
func Pause(d time.Duration) Step {
	return Step{NoCmd: true, Delay: d}
}

// PerMode holds one sequence per refresh mode.
type PerMode struct {
	Full  []Step `yaml:"full,omitempty"`
	Quick []Step `yaml:"quick,omitempty"`
}

func (p *PerMode) of(m RefreshMode) []Step {
	if m == Quick {
		return p.Quick
	}
	return p.Full
}

// Opcodes are the controller commands the engine composes itself.
type Opcodes struct {
	// Frame receives the first plane.
	Frame byte `yaml:"frame"`
	// Chromatic receives the second plane of tri-color panels.
	Chromatic byte `yaml:"chromatic,omitempty"`
	// Prefill banks are filled with the background before a full frame.
	Prefill Bytes `yaml:"prefill,omitempty"`
	// Mirror banks receive a copy of the first plane in Full mode.
	Mirror Bytes `yaml:"mirror,omitempty"`

	RAMXRange   byte `yaml:"ram_x_range,omitempty"`
	RAMYRange   byte `yaml:"ram_y_range,omitempty"`
	RAMXCounter byte `yaml:"ram_x_counter,omitempty"`
	RAMYCounter byte `yaml:"ram_y_counter,omitempty"`

	PartialIn     byte `yaml:"partial_in,omitempty"`
	PartialWindow byte `yaml:"partial_window,omitempty"`
	PartialOut    byte `yaml:"partial_out,omitempty"`
}

// Power holds the booster sequences.
type Power struct {
	On  []Step `yaml:"on,omitempty"`
	Off []Step `yaml:"off,omitempty"`
	// StayOn keeps the booster running after a refresh.
	StayOn bool `yaml:"stay_on,omitempty"`
}

// QuickRefresh describes the differential update of panels that keep the
// previously displayed frame in a second RAM bank.
type QuickRefresh struct {
	// OldFrame banks receive the frame currently shown.
	OldFrame Bytes `yaml:"old_frame"`
	// NewFrame receives the frame to show.
	NewFrame byte `yaml:"new_frame"`
	// Reset pulses the reset line before Prelude.
	Reset bool `yaml:"reset,omitempty"`
	// Prelude loads the quick waveform before the new frame is sent.
	Prelude []Step `yaml:"prelude,omitempty"`
	// Display triggers the quick refresh.
	Display []Step `yaml:"display"`
	// Partial enables windowed old and new frames.
	Partial bool `yaml:"partial,omitempty"`
}

// Description is everything the engine needs to drive one panel model.
type Description struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	Color           epdcolor.Format    `yaml:"color"`
	Scheme          framebuffer.Scheme `yaml:"scheme"`
	SetUnused       bool               `yaml:"set_unused,omitempty"`
	InvertChromatic bool               `yaml:"invert_chromatic,omitempty"`

	Busy            Busy                  `yaml:"busy"`
	SingleByteWrite bool                  `yaml:"single_byte_write,omitempty"`
	Reset           transport.ResetTiming `yaml:"reset"`

	Addressing Addressing `yaml:"addressing"`
	Opcodes    Opcodes    `yaml:"opcodes"`

	// Init runs after the hardware reset, before the LUT of the current mode.
	Init []Step  `yaml:"init"`
	LUT  PerMode `yaml:"lut,omitempty"`
	// ModeSwitch and ModeSteps define how the refresh mode changes. ModeSteps
	// run after the LUT, both at init and on a mode change.
	ModeSwitch ModeSwitch `yaml:"mode_switch"`
	ModeSteps  PerMode    `yaml:"mode_steps,omitempty"`

	// FramePrelude runs before every full frame transfer.
	FramePrelude []Step `yaml:"frame_prelude,omitempty"`
	Power        Power  `yaml:"power,omitempty"`
	Display      []Step `yaml:"display"`
	// QuickDisplay replaces Display in Quick mode when set.
	QuickDisplay []Step `yaml:"quick_display,omitempty"`
	Sleep        []Step `yaml:"sleep"`

	// Partial enables windowed frame transfers.
	Partial bool          `yaml:"partial,omitempty"`
	Quick   *QuickRefresh `yaml:"quick,omitempty"`
}

// Validate reports descriptions the engine cannot drive.
func (d *Description) Validate() error {
	fail := func(format string, a ...interface{}) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidDescription, d.Name, fmt.Sprintf(format, a...))
	}
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDescription)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fail("invalid size %dx%d", d.Width, d.Height)
	}
	switch d.Color {
	case epdcolor.MonoFormat, epdcolor.TriFormat, epdcolor.OctFormat:
	default:
		return fail("unknown color format %q", d.Color.Name)
	}
	if d.Scheme == framebuffer.ByteMirror && (d.Width%8 != 0 || d.Color.BitsPerPixel != 1) {
		return fail("%s needs a 1 bit format and a width multiple of 8", d.Scheme)
	}
	if d.Opcodes.Frame == 0 {
		return fail("missing frame opcode")
	}
	if d.Color.Planes == 2 && d.Opcodes.Chromatic == 0 {
		return fail("missing chromatic opcode")
	}
	if d.Addressing == RAMWindow && (d.Opcodes.RAMXRange == 0 || d.Opcodes.RAMYRange == 0 || d.Opcodes.RAMXCounter == 0 || d.Opcodes.RAMYCounter == 0) {
		return fail("missing RAM window opcodes")
	}
	if d.Addressing == PartialWindow && (d.Partial || (d.Quick != nil && d.Quick.Partial)) && d.Opcodes.PartialWindow == 0 {
		return fail("missing partial window opcode")
	}
	if len(d.Display) == 0 {
		return fail("missing display sequence")
	}
	if q := d.Quick; q != nil {
		if len(q.OldFrame) == 0 || q.NewFrame == 0 || len(q.Display) == 0 {
			return fail("incomplete quick refresh")
		}
		if d.Color.Planes != 1 {
			return fail("quick refresh needs a single plane format")
		}
	}
	return nil
}

// SupportsQuick reports whether the panel can run in Quick mode, either with
// a differential refresh or with a quick waveform.
func (d *Description) SupportsQuick() bool {
	return d.Quick != nil || len(d.LUT.Quick) != 0 || len(d.ModeSteps.Quick) != 0 || len(d.QuickDisplay) != 0
}

// withDefaults returns a copy with zero values replaced.
func (d *Description) withDefaults() *Description {
	c := *d
	if c.Color.Planes == 0 {
		c.Color = epdcolor.MonoFormat
	}
	if c.Reset == (transport.ResetTiming{}) {
		c.Reset = transport.DefaultResetTiming
	}
	return &c
}

// planeSize returns the byte length of one plane of a w×h window.
func (d *Description) planeSize(w, h int) int {
	return d.Color.PlaneSize(w, h)
}

// full is the whole panel.
func (d *Description) full() Rect {
	return Rect{Width: d.Width, Height: d.Height}
}
