// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd16xx

import (
	"fmt"

	"github.com/GermanBionicSystems/epaper/panel"
)

// Commands
const (
	driverOutputControl            byte = 0x01
	gateDrivingVoltageControl      byte = 0x03
	sourceDrivingVoltageControl    byte = 0x04
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	tempSensorSelect               byte = 0x18
	tempSensorRegWrite             byte = 0x1A
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAMBW                     byte = 0x24
	writeRAMRed                    byte = 0x26
	writeVcomRegister              byte = 0x2C
	writeLutRegister               byte = 0x32
	writeRegisterForDisplayOption  byte = 0x37
	setDummyLinePeriod             byte = 0x3A
	setGateTime                    byte = 0x3B
	borderWaveformControl          byte = 0x3C
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
	setAnalogBlockControl          byte = 0x74
	setDigitalBlockControl         byte = 0x7E
)

// Flags for the displayUpdateControl2 command
const (
	displayUpdateDisableClock byte = 1 << iota
	displayUpdateDisableAnalog
	displayUpdateDisplay
	displayUpdateMode2
	displayUpdateLoadLUTFromOTP
	displayUpdateLoadTemperature
	displayUpdateEnableClock
	displayUpdateEnableAnalog
)

// Driving voltages used by the built-in models.
const (
	gateDrivingVoltage19V          byte = 0x15
	sourceDrivingVoltageVSH1_15V   byte = 0x41
	sourceDrivingVoltageVSH2_5V    byte = 0xA8
	sourceDrivingVoltageVSL_neg15V byte = 0x32
)

// Opcodes is the RAM addressing of every SSD16xx controller.
var Opcodes = panel.Opcodes{
	Frame:       writeRAMBW,
	RAMXRange:   setRAMXAddressStartEndPosition,
	RAMYRange:   setRAMYAddressStartEndPosition,
	RAMXCounter: setRAMXAddressCounter,
	RAMYCounter: setRAMYAddressCounter,
}

// GateVoltage returns the gate driving voltage register value for dV
// decivolts, from 10V to 21V in steps of 0.5V.
func GateVoltage(dV int) (byte, error) {
	if dV < 100 || dV > 210 || dV%5 != 0 {
		return 0, fmt.Errorf("ssd16xx: gate voltage %d dV out of range", dV)
	}
	return byte((dV-100)/5 + 0x03), nil
}

// SourceVoltage returns the source driving voltage register value for dV
// decivolts. VSH accepts 2.4V to 8.8V in steps of 0.1V and 9V to 18V in steps
// of 0.5V, VSL accepts -9V to -18V in steps of 0.5V.
func SourceVoltage(dV int) (byte, error) {
	switch {
	case dV >= 24 && dV <= 88:
		return byte(dV - 24 + 0x8E), nil
	case dV >= 90 && dV <= 180 && dV%5 == 0:
		return byte((dV-90)/2 + 0x23), nil
	case dV >= -180 && dV <= -90 && dV%5 == 0:
		return byte((-dV-90)/5*2 + 0x1A), nil
	}
	return 0, fmt.Errorf("ssd16xx: source voltage %d dV out of range", dV)
}

// DriverOutput returns the driver output control step for a panel with
// height gate lines.
func DriverOutput(height int) panel.Step {
	return panel.Cmd(driverOutputControl, byte(height-1), byte((height-1)>>8), 0x00)
}

// RAMWindow returns the steps selecting the whole RAM of a width×height
// panel and resetting the address counters.
func RAMWindow(width, height int) []panel.Step {
	x1 := (width - 1) >> 3
	y1 := height - 1
	return []panel.Step{
		panel.Cmd(setRAMXAddressStartEndPosition, 0x00, byte(x1)),
		panel.Cmd(setRAMYAddressStartEndPosition, 0x00, 0x00, byte(y1), byte(y1>>8)),
		panel.Cmd(setRAMXAddressCounter, 0x00),
		panel.Cmd(setRAMYAddressCounter, 0x00, 0x00),
	}
}

// displayUpdate returns the steps running the display update sequence
// selected by flags.
func displayUpdate(flags byte) []panel.Step {
	return []panel.Step{
		panel.Cmd(displayUpdateControl2, flags),
		panel.CmdWait(masterActivation),
	}
}

func concat(s ...[]panel.Step) []panel.Step {
	var out []panel.Step
	for _, v := range s {
		out = append(out, v...)
	}
	return out
}
