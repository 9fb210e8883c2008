// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"time"

	"github.com/GermanBionicSystems/epaper/transport"
)

type controller interface {
	sendCommand(cmd byte)
	sendData(data []byte)
	fill(v byte, n int)
	waitUntilIdle()
	delay(d time.Duration)
	reset(t transport.ResetTiming)
}

// bank is one RAM bank transfer: a command followed by either data or n
// copies of a fill byte.
type bank struct {
	cmd  byte
	data []byte
	fill byte
	n    int
}

func (b *bank) send(ctrl controller) {
	ctrl.sendCommand(b.cmd)
	if b.data != nil {
		ctrl.sendData(b.data)
	} else {
		ctrl.fill(b.fill, b.n)
	}
}

func runSteps(ctrl controller, steps []Step) {
	for i := range steps {
		s := &steps[i]
		if !s.NoCmd {
			ctrl.sendCommand(s.Cmd)
			ctrl.sendData(s.Data)
		}
		if s.Wait {
			ctrl.waitUntilIdle()
		}
		if s.Delay > 0 {
			ctrl.delay(s.Delay)
		}
	}
}

// initPanel resets the controller, configures its registers and loads the
// waveform of mode m.
func initPanel(ctrl controller, d *Description, m RefreshMode) {
	ctrl.reset(d.Reset)
	runSteps(ctrl, d.Init)
	loadMode(ctrl, d, m)
}

func loadMode(ctrl controller, d *Description, m RefreshMode) {
	runSteps(ctrl, d.LUT.of(m))
	runSteps(ctrl, d.ModeSteps.of(m))
}

// setRAMWindow sets the RAM X range in bytes and the Y range in lines.
func setRAMWindow(ctrl controller, op *Opcodes, r Rect) {
	x1 := r.X + r.Width - 1
	y1 := r.Y + r.Height - 1
	ctrl.sendCommand(op.RAMXRange)
	ctrl.sendData([]byte{byte(r.X >> 3), byte(x1 >> 3)})
	ctrl.sendCommand(op.RAMYRange)
	ctrl.sendData([]byte{byte(r.Y), byte(r.Y >> 8), byte(y1), byte(y1 >> 8)})
}

// setRAMCounter positions the RAM address counter. x is rounded down to a
// byte.
func setRAMCounter(ctrl controller, op *Opcodes, x, y int) {
	ctrl.sendCommand(op.RAMXCounter)
	ctrl.sendData([]byte{byte(x >> 3)})
	ctrl.sendCommand(op.RAMYCounter)
	ctrl.sendData([]byte{byte(y), byte(y >> 8)})
}

// partialWindowData returns the parameters of the partial window command.
// The last byte makes the gates scan both inside and outside the window.
func partialWindowData(r Rect) []byte {
	x1 := r.X + r.Width - 1
	y1 := r.Y + r.Height - 1
	return []byte{
		byte(r.X >> 8), byte(r.X & 0xF8),
		byte(x1 >> 8), byte(x1 | 0x07),
		byte(r.Y >> 8), byte(r.Y),
		byte(y1 >> 8), byte(y1),
		0x01,
	}
}

// writeBanks streams banks into the window r. full is set when r covers the
// whole panel.
func writeBanks(ctrl controller, d *Description, r Rect, full bool, banks []bank) {
	switch d.Addressing {
	case RAMWindow:
		setRAMWindow(ctrl, &d.Opcodes, r)
		for i := range banks {
			setRAMCounter(ctrl, &d.Opcodes, r.X, r.Y)
			banks[i].send(ctrl)
		}
	case PartialWindow:
		if !full {
			ctrl.sendCommand(d.Opcodes.PartialIn)
			ctrl.sendCommand(d.Opcodes.PartialWindow)
			ctrl.sendData(partialWindowData(r))
		}
		for i := range banks {
			banks[i].send(ctrl)
		}
		if !full {
			ctrl.sendCommand(d.Opcodes.PartialOut)
		}
	}
}

// planeBanks pairs each plane with its RAM bank command.
func planeBanks(d *Description, planes [][]byte) []bank {
	cmds := [2]byte{d.Opcodes.Frame, d.Opcodes.Chromatic}
	out := make([]bank, 0, len(planes))
	for i, p := range planes {
		out = append(out, bank{cmd: cmds[i], data: p})
	}
	return out
}

// prefillBanks fills the prefill banks of window r with v.
func prefillBanks(d *Description, r Rect, v byte) []bank {
	n := d.planeSize(r.Width, r.Height)
	out := make([]bank, 0, len(d.Opcodes.Prefill))
	for _, cmd := range d.Opcodes.Prefill {
		out = append(out, bank{cmd: cmd, fill: v, n: n})
	}
	return out
}

// updateFrame transfers planes into window r.
func updateFrame(ctrl controller, d *Description, m RefreshMode, r Rect, planes [][]byte, background byte) {
	full := r == d.full()
	ctrl.waitUntilIdle()
	var banks []bank
	if full {
		runSteps(ctrl, d.FramePrelude)
		banks = prefillBanks(d, r, background)
	}
	banks = append(banks, planeBanks(d, planes)...)
	if m == Full {
		for _, cmd := range d.Opcodes.Mirror {
			banks = append(banks, bank{cmd: cmd, data: planes[0]})
		}
	}
	writeBanks(ctrl, d, r, full, banks)
}

// clearFrame fills every bank of window r. fills holds one byte per plane.
func clearFrame(ctrl controller, d *Description, m RefreshMode, r Rect, fills []byte) {
	full := r == d.full()
	n := d.planeSize(r.Width, r.Height)
	ctrl.waitUntilIdle()
	if full {
		runSteps(ctrl, d.FramePrelude)
	}
	banks := prefillBanks(d, r, fills[0])
	cmds := [2]byte{d.Opcodes.Frame, d.Opcodes.Chromatic}
	for i, f := range fills {
		banks = append(banks, bank{cmd: cmds[i], fill: f, n: n})
	}
	if m == Full {
		for _, cmd := range d.Opcodes.Mirror {
			banks = append(banks, bank{cmd: cmd, fill: fills[0], n: n})
		}
	}
	writeBanks(ctrl, d, r, full, banks)
}

// displayFrame triggers a refresh in mode m and returns whether the booster
// is still powered.
func displayFrame(ctrl controller, d *Description, m RefreshMode, powered, wait bool) bool {
	if wait {
		ctrl.waitUntilIdle()
	}
	if !powered {
		runSteps(ctrl, d.Power.On)
	}
	steps := d.Display
	if m == Quick && len(d.QuickDisplay) != 0 {
		steps = d.QuickDisplay
	}
	runSteps(ctrl, steps)
	if !d.Power.StayOn && len(d.Power.Off) != 0 {
		runSteps(ctrl, d.Power.Off)
		return false
	}
	return true
}

// updateOldFrame stores the frame currently shown into every old frame bank.
func updateOldFrame(ctrl controller, d *Description, r Rect, buf []byte) {
	ctrl.waitUntilIdle()
	banks := make([]bank, 0, len(d.Quick.OldFrame))
	for _, cmd := range d.Quick.OldFrame {
		banks = append(banks, bank{cmd: cmd, data: buf})
	}
	writeBanks(ctrl, d, r, r == d.full(), banks)
}

// updateNewFrame loads the quick waveform and stores the frame to show.
func updateNewFrame(ctrl controller, d *Description, r Rect, buf []byte) {
	ctrl.waitUntilIdle()
	if d.Quick.Reset {
		ctrl.reset(d.Reset)
	}
	runSteps(ctrl, d.Quick.Prelude)
	writeBanks(ctrl, d, r, r == d.full(), []bank{{cmd: d.Quick.NewFrame, data: buf}})
}

func displayNewFrame(ctrl controller, d *Description) {
	ctrl.waitUntilIdle()
	runSteps(ctrl, d.Quick.Display)
}

func sleep(ctrl controller, d *Description) {
	ctrl.waitUntilIdle()
	runSteps(ctrl, d.Sleep)
}

// updateBanks transfers banks into window r without any prelude.
func updateBanks(ctrl controller, d *Description, r Rect, banks []bank) {
	ctrl.waitUntilIdle()
	writeBanks(ctrl, d, r, r == d.full(), banks)
}
