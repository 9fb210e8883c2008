// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uc81xx

import (
	"time"

	"github.com/GermanBionicSystems/epaper/epdcolor"
	"github.com/GermanBionicSystems/epaper/panel"
	"github.com/GermanBionicSystems/epaper/transport"
)

// Waveforms of the 4.2": six 6 byte phases per table, VCOM padded to 44
// bytes.
var (
	lut4in2Vcom0 = panel.Bytes{
		0x00, 0x17, 0x00, 0x00, 0x00, 0x02,
		0x00, 0x17, 0x17, 0x00, 0x00, 0x02,
		0x00, 0x0A, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x0E, 0x0E, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}
	lut4in2WW = panel.Bytes{
		0x40, 0x17, 0x00, 0x00, 0x00, 0x02,
		0x90, 0x17, 0x17, 0x00, 0x00, 0x02,
		0x40, 0x0A, 0x01, 0x00, 0x00, 0x01,
		0xA0, 0x0E, 0x0E, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	lut4in2BB = panel.Bytes{
		0x80, 0x17, 0x00, 0x00, 0x00, 0x02,
		0x90, 0x17, 0x17, 0x00, 0x00, 0x02,
		0x80, 0x0A, 0x01, 0x00, 0x00, 0x01,
		0x50, 0x0E, 0x0E, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	lut4in2Vcom0Quick = padLUT(44, 0x00, 0x0E, 0x00, 0x00, 0x00, 0x01)
	lut4in2WWQuick    = padLUT(42, 0xA0, 0x0E, 0x00, 0x00, 0x00, 0x01)
	lut4in2BBQuick    = padLUT(42, 0x50, 0x0E, 0x00, 0x00, 0x00, 0x01)
)

// EPD4in2 is the Waveshare 4.2", 400x300.
//
// Quick mode switches to a single phase waveform; the controller is
// reinitialized with it.
var EPD4in2 = panel.Description{
	Name:   "4in2",
	Width:  400,
	Height: 300,
	Busy:   panel.BusyActiveLow,
	Reset:  transport.DefaultResetTiming,

	Addressing: panel.PartialWindow,
	Opcodes:    Opcodes,

	Init: []panel.Step{
		panel.Cmd(powerSetting, 0x03, 0x00, 0x2B, 0x2B, 0xFF),
		panel.Cmd(boosterSoftStart, 0x17, 0x17, 0x17),
		{Cmd: powerOn, Delay: 5 * time.Millisecond, Wait: true},
		panel.Cmd(panelSetting, 0x3F),
		panel.Cmd(pllControl, 0x3A),
		Resolution(400, 300),
		panel.Cmd(vcmDCSetting, 0x12),
		panel.Cmd(vcomAndDataIntervalSetting, 0x97),
	},
	LUT: panel.PerMode{
		Full:  lutSteps(lut4in2Vcom0, lut4in2WW, lut4in2WW, lut4in2BB, lut4in2BB),
		Quick: lutSteps(lut4in2Vcom0Quick, lut4in2WWQuick, lut4in2WWQuick, lut4in2BBQuick, lut4in2BBQuick),
	},
	ModeSwitch: panel.Reinit,
	Display:    []panel.Step{panel.Cmd(displayRefresh)},
	Sleep: []panel.Step{
		// Floating border, VCOM to 0V, VG and VS to 0V fast.
		panel.Cmd(vcomAndDataIntervalSetting, 0x17),
		panel.Cmd(vcmDCSetting),
		panel.Cmd(panelSetting),
		panel.Cmd(powerSetting, 0x00, 0x00, 0x00, 0x00),
		panel.CmdWait(powerOff),
		panel.Cmd(deepSleep, deepSleepCheckCode),
	},
	Partial: true,
	Quick: &panel.QuickRefresh{
		OldFrame: panel.Bytes{dataStartTransmission1},
		NewFrame: dataStartTransmission2,
		Prelude:  lutSteps(lut4in2Vcom0Quick, lut4in2WWQuick, lut4in2WWQuick, lut4in2BBQuick, lut4in2BBQuick),
		Display:  []panel.Step{panel.Cmd(displayRefresh)},
		Partial:  true,
	},
}

// EPD2in13bc is the Waveshare 2.13" b/c three color panel, 104x212.
var EPD2in13bc = panel.Description{
	Name:   "2in13bc",
	Width:  104,
	Height: 212,
	Color:  epdcolor.TriFormat,
	Busy:   panel.BusyActiveLow,
	Reset:  transport.DefaultResetTiming,

	Addressing: panel.PartialWindow,
	Opcodes: panel.Opcodes{
		Frame:     dataStartTransmission1,
		Chromatic: dataStartTransmission2,
	},

	Init: []panel.Step{
		panel.Cmd(boosterSoftStart, 0x17, 0x17, 0x17),
		{Cmd: powerOn, Delay: 5 * time.Millisecond, Wait: true},
		panel.Cmd(panelSetting, 0x8F),
		panel.Cmd(vcomAndDataIntervalSetting, TriBorder(epdcolor.TriWhite)),
		// Width fits a single byte on this controller.
		panel.Cmd(resolutionSetting, 104, 212>>8, 212&0xFF),
		panel.Cmd(vcmDCSetting, 0x0A),
		panel.WaitIdle(),
	},
	Display: []panel.Step{panel.CmdWait(displayRefresh)},
	Sleep: []panel.Step{
		panel.Cmd(vcomAndDataIntervalSetting, triBorderFloat|triDataInterval),
		panel.CmdWait(powerOff),
		panel.Cmd(deepSleep, deepSleepCheckCode),
	},
}

// EPD5in65f is the Waveshare 5.65" seven color panel, 600x448.
//
// The booster is only powered during a refresh. The border follows the
// background color.
var EPD5in65f = panel.Description{
	Name:   "5in65f",
	Width:  600,
	Height: 448,
	Color:  epdcolor.OctFormat,
	Busy:   panel.BusyActiveLow,
	Reset:  transport.ResetTiming{Initial: 10 * time.Millisecond, Pulse: 2 * time.Millisecond, Settle: 200 * time.Millisecond},

	Addressing: panel.PartialWindow,
	Opcodes:    panel.Opcodes{Frame: dataStartTransmission1},

	Init: []panel.Step{
		panel.Cmd(panelSetting, 0xEF, 0x08),
		panel.Cmd(powerSetting, 0x37, 0x00, 0x23, 0x23),
		panel.Cmd(powerOffSequenceSetting, 0x00),
		panel.Cmd(boosterSoftStart, 0xC7, 0xC7, 0x1D),
		panel.Cmd(pllControl, 0x3C),
		panel.Cmd(temperatureSensorSelection, 0x00),
		panel.BorderCmd(vcomAndDataIntervalSetting, VCOMInterval(epdcolor.OctWhite)),
		panel.Cmd(tconSetting, 0x22),
		Resolution(600, 448),
		{Cmd: flashMode, Data: panel.Bytes{0xAA}, Delay: 100 * time.Millisecond},
		panel.BorderCmd(vcomAndDataIntervalSetting, VCOMInterval(epdcolor.OctWhite)),
	},
	FramePrelude: []panel.Step{
		panel.BorderCmd(vcomAndDataIntervalSetting, VCOMInterval(epdcolor.OctWhite)),
		Resolution(600, 448),
	},
	Power: panel.Power{
		On:  []panel.Step{panel.CmdWait(powerOn)},
		Off: []panel.Step{panel.CmdWait(powerOff)},
	},
	Display: []panel.Step{panel.CmdWait(displayRefresh)},
	Sleep:   []panel.Step{panel.Cmd(deepSleep, deepSleepCheckCode)},
}

// EPD7in5v2 is the Waveshare 7.5" v2, 800x480.
var EPD7in5v2 = panel.Description{
	Name:   "7in5v2",
	Width:  800,
	Height: 480,
	Busy:   panel.BusyActiveLow,
	Reset:  transport.ResetTiming{Initial: 10 * time.Millisecond, Pulse: 2 * time.Millisecond, Settle: 200 * time.Millisecond},

	Addressing: panel.PartialWindow,
	Opcodes:    panel.Opcodes{Frame: dataStartTransmission2},

	Init: []panel.Step{
		panel.Cmd(boosterSoftStart, 0x17, 0x17, 0x27, 0x17),
		panel.Cmd(powerSetting, 0x07, 0x17, 0x3F, 0x3F),
		panel.CmdWait(powerOn),
		panel.Cmd(panelSetting, 0x1F),
		panel.Cmd(pllControl, 0x06),
		Resolution(800, 480),
		panel.Cmd(dualSPI, 0x00),
		panel.Cmd(tconSetting, 0x22),
		panel.Cmd(vcomAndDataIntervalSetting, 0x10, 0x07),
		panel.WaitIdle(),
	},
	Display: []panel.Step{panel.Cmd(displayRefresh)},
	Sleep: []panel.Step{
		panel.CmdWait(powerOff),
		panel.Cmd(deepSleep, deepSleepCheckCode),
	},
}

// padLUT returns phase followed by zeros up to n bytes.
func padLUT(n int, phase ...byte) panel.Bytes {
	out := make(panel.Bytes, n)
	copy(out, phase)
	return out
}

func init() {
	panel.MustRegister(&EPD4in2)
	panel.MustRegister(&EPD2in13bc)
	panel.MustRegister(&EPD5in65f)
	panel.MustRegister(&EPD7in5v2)
}
