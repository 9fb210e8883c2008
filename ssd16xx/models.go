// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd16xx

import (
	"time"

	"github.com/GermanBionicSystems/epaper/panel"
	"github.com/GermanBionicSystems/epaper/transport"
)

// lut2in13v2Full and lut2in13v2Partial are the Waveshare waveforms of the
// 2.13" v2: five 7 byte voltage selections then seven 5 byte phase timings.
var (
	lut2in13v2Full = panel.Bytes{
		0x80, 0x60, 0x40, 0x00, 0x00, 0x00, 0x00,
		0x10, 0x60, 0x20, 0x00, 0x00, 0x00, 0x00,
		0x80, 0x60, 0x40, 0x00, 0x00, 0x00, 0x00,
		0x10, 0x60, 0x20, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

		0x03, 0x03, 0x00, 0x00, 0x02,
		0x09, 0x09, 0x00, 0x00, 0x02,
		0x03, 0x03, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
	}
	lut2in13v2Partial = panel.Bytes{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

		0x0A, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
	}
)

// lut2in9v2Partial is the differential waveform of the 2.9" v2.
var lut2in9v2Partial = panel.Bytes{
	0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x80, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x40, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x22, 0x22, 0x22, 0x22, 0x22, 0x22, 0x00, 0x00, 0x00,
}

// EPD2in13v2 is the Waveshare 2.13" v2, 122x250.
//
// Full mode writes each frame to both RAM banks; Quick mode only to the
// first so the controller drives the difference.
var EPD2in13v2 = panel.Description{
	Name:   "2in13v2",
	Width:  122,
	Height: 250,
	Busy:   panel.BusyActiveHigh,
	Reset:  transport.DefaultResetTiming,

	Addressing: panel.RAMWindow,
	Opcodes:    withMirror(Opcodes, writeRAMRed),

	Init: concat(
		[]panel.Step{
			panel.WaitIdle(),
			panel.CmdWait(swReset),
			panel.Cmd(setAnalogBlockControl, 0x54),
			panel.Cmd(setDigitalBlockControl, 0x3B),
			DriverOutput(250),
			panel.Cmd(dataEntryModeSetting, 0x03),
		},
		RAMWindow(122, 250),
		[]panel.Step{
			panel.Cmd(gateDrivingVoltageControl, gateDrivingVoltage19V),
			panel.Cmd(sourceDrivingVoltageControl, sourceDrivingVoltageVSH1_15V, sourceDrivingVoltageVSH2_5V, sourceDrivingVoltageVSL_neg15V),
			panel.Cmd(setDummyLinePeriod, 0x30),
			panel.Cmd(setGateTime, 0x0A),
		},
	),
	LUT: panel.PerMode{
		Full:  []panel.Step{{Cmd: writeLutRegister, Data: lut2in13v2Full}},
		Quick: []panel.Step{{Cmd: writeLutRegister, Data: lut2in13v2Partial}},
	},
	ModeSwitch: panel.ReloadLUT,
	ModeSteps: panel.PerMode{
		Full: []panel.Step{
			panel.Cmd(borderWaveformControl, 0x03),
			panel.Cmd(writeVcomRegister, 0x55),
		},
		Quick: []panel.Step{
			panel.CmdWait(writeVcomRegister, 0x26),
			// Undocumented command used in vendor example code.
			panel.Cmd(writeRegisterForDisplayOption, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00),
			panel.Cmd(displayUpdateControl2, displayUpdateEnableClock|displayUpdateEnableAnalog),
			panel.CmdWait(masterActivation),
			panel.Cmd(borderWaveformControl, 0x01),
		},
	},
	Display: displayUpdate(displayUpdateEnableClock | displayUpdateEnableAnalog | displayUpdateDisplay |
		displayUpdateDisableAnalog | displayUpdateDisableClock),
	QuickDisplay: displayUpdate(displayUpdateDisplay),
	Sleep: []panel.Step{
		panel.Cmd(displayUpdateControl2, displayUpdateEnableClock|displayUpdateEnableAnalog|displayUpdateDisableAnalog|displayUpdateDisableClock),
		panel.Cmd(masterActivation),
		panel.Cmd(deepSleepMode, 0x01),
	},
	Partial: true,
}

// EPD2in13v4 is the Waveshare 2.13" v4, 122x250.
//
// Quick mode is the "fast" refresh: the temperature register is forced so the
// OTP loads its short waveform. Quick refresh uses the differential update
// of the second RAM bank.
var EPD2in13v4 = panel.Description{
	Name:   "2in13v4",
	Width:  122,
	Height: 250,
	Busy:   panel.BusyActiveHigh,
	Reset:  transport.ResetTiming{Initial: 20 * time.Millisecond, Pulse: 2 * time.Millisecond, Settle: 20 * time.Millisecond},

	Addressing: panel.RAMWindow,
	Opcodes:    Opcodes,

	Init: concat(
		[]panel.Step{
			panel.WaitIdle(),
			panel.CmdWait(swReset),
			DriverOutput(250),
			panel.Cmd(dataEntryModeSetting, 0x03),
		},
		RAMWindow(122, 250),
		[]panel.Step{
			panel.Cmd(borderWaveformControl, 0x05),
			panel.Cmd(displayUpdateControl1, 0x80, 0x80),
			panel.Cmd(tempSensorSelect, 0x80),
			panel.WaitIdle(),
		},
	),
	ModeSwitch: panel.Reinit,
	ModeSteps: panel.PerMode{
		Quick: []panel.Step{
			panel.Cmd(displayUpdateControl2, 0xB1),
			panel.CmdWait(masterActivation),
			panel.Cmd(tempSensorRegWrite, 0x64, 0x00),
			panel.Cmd(displayUpdateControl2, 0x91),
			panel.CmdWait(masterActivation),
		},
	},
	Display:      displayUpdate(0xF7),
	QuickDisplay: displayUpdate(0xC7),
	Sleep:        []panel.Step{panel.Cmd(deepSleepMode, 0x01)},
	Partial:      true,
	Quick: &panel.QuickRefresh{
		OldFrame: panel.Bytes{writeRAMBW, writeRAMRed},
		NewFrame: writeRAMBW,
		Reset:    true,
		Prelude: []panel.Step{
			panel.Cmd(borderWaveformControl, 0x80),
			DriverOutput(250),
			panel.Cmd(dataEntryModeSetting, 0x03),
		},
		Display: displayUpdate(0xFF),
		Partial: true,
	},
}

// EPD2in9v2 is the Waveshare 2.9" v2, 128x296.
var EPD2in9v2 = panel.Description{
	Name:   "2in9v2",
	Width:  128,
	Height: 296,
	Busy:   panel.BusyActiveHigh,
	Reset:  transport.ResetTiming{Initial: 10 * time.Millisecond, Pulse: 2 * time.Millisecond, Settle: 200 * time.Millisecond},

	Addressing: panel.RAMWindow,
	Opcodes:    Opcodes,

	Init: concat(
		[]panel.Step{
			panel.WaitIdle(),
			panel.CmdWait(swReset),
			DriverOutput(296),
			panel.Cmd(dataEntryModeSetting, 0x03),
			panel.Cmd(displayUpdateControl1, 0x00, 0x80),
		},
		RAMWindow(128, 296),
		[]panel.Step{panel.WaitIdle()},
	),
	Display: displayUpdate(0xF7),
	Sleep:   []panel.Step{panel.Cmd(deepSleepMode, 0x01)},
	Partial: true,
	Quick: &panel.QuickRefresh{
		OldFrame: panel.Bytes{writeRAMBW, writeRAMRed},
		NewFrame: writeRAMBW,
		Reset:    true,
		Prelude: []panel.Step{
			{Cmd: writeLutRegister, Data: lut2in9v2Partial, Wait: true},
			panel.Cmd(writeRegisterForDisplayOption, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00),
			panel.Cmd(borderWaveformControl, 0x80),
			panel.Cmd(displayUpdateControl2, 0xC0),
			panel.CmdWait(masterActivation),
		},
		Display: displayUpdate(0x0F),
	},
}

func withMirror(op panel.Opcodes, mirror ...byte) panel.Opcodes {
	op.Mirror = mirror
	return op
}

func init() {
	panel.MustRegister(&EPD2in13v2)
	panel.MustRegister(&EPD2in13v4)
	panel.MustRegister(&EPD2in9v2)
}
