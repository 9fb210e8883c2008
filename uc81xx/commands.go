// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uc81xx

import (
	"github.com/GermanBionicSystems/epaper/epdcolor"
	"github.com/GermanBionicSystems/epaper/panel"
)

// Commands
const (
	panelSetting               byte = 0x00
	powerSetting               byte = 0x01
	powerOff                   byte = 0x02
	powerOffSequenceSetting    byte = 0x03
	powerOn                    byte = 0x04
	boosterSoftStart           byte = 0x06
	deepSleep                  byte = 0x07
	dataStartTransmission1     byte = 0x10
	displayRefresh             byte = 0x12
	dataStartTransmission2     byte = 0x13
	dualSPI                    byte = 0x15
	lutForVcom                 byte = 0x20
	lutWhiteToWhite            byte = 0x21
	lutBlackToWhite            byte = 0x22
	lutWhiteToBlack            byte = 0x23
	lutBlackToBlack            byte = 0x24
	pllControl                 byte = 0x30
	temperatureSensorSelection byte = 0x41
	vcomAndDataIntervalSetting byte = 0x50
	tconSetting                byte = 0x60
	resolutionSetting          byte = 0x61
	vcmDCSetting               byte = 0x82
	partialWindow              byte = 0x90
	partialIn                  byte = 0x91
	partialOut                 byte = 0x92
	flashMode                  byte = 0xE3
)

// deepSleep only executes with this check code.
const deepSleepCheckCode byte = 0xA5

// VCOM and data interval register values.
const (
	triDataInterval byte = 0x07
	triBorderBlack  byte = 0x30
	triBorderWhite  byte = 0x70
	triBorderRed    byte = 0xB0
	triBorderFloat  byte = 0xF0
	octDataInterval byte = 0x17
)

// Opcodes is the frame addressing of UC81xx controllers: the previous frame
// in DTM1, the frame to show in DTM2 and a partial window around windowed
// transfers.
var Opcodes = panel.Opcodes{
	Frame:         dataStartTransmission2,
	Prefill:       panel.Bytes{dataStartTransmission1},
	PartialIn:     partialIn,
	PartialWindow: partialWindow,
	PartialOut:    partialOut,
}

// Resolution returns the resolution setting step, width and height on 16
// bits each.
func Resolution(width, height int) panel.Step {
	return panel.Cmd(resolutionSetting, byte(width>>8), byte(width), byte(height>>8), byte(height))
}

// VCOMInterval returns the VCOM and data interval register of eight color
// controllers with the border driven to c. HiZ leaves the border clean.
func VCOMInterval(c epdcolor.OctColor) byte {
	return octDataInterval | (c.Nibble()&0x07)<<5
}

// TriBorder returns the VCOM and data interval register of three color
// controllers with the border driven to c.
func TriBorder(c epdcolor.TriColor) byte {
	switch c {
	case epdcolor.TriBlack:
		return triBorderBlack | triDataInterval
	case epdcolor.Chromatic:
		return triBorderRed | triDataInterval
	default:
		return triBorderWhite | triDataInterval
	}
}

// lutSteps uploads the five waveform tables, VCOM first.
func lutSteps(vcom, ww, bw, wb, bb panel.Bytes) []panel.Step {
	return []panel.Step{
		panel.WaitIdle(),
		{Cmd: lutForVcom, Data: vcom},
		{Cmd: lutWhiteToWhite, Data: ww},
		{Cmd: lutBlackToWhite, Data: bw},
		{Cmd: lutWhiteToBlack, Data: wb},
		{Cmd: lutBlackToBlack, Data: bb},
	}
}
