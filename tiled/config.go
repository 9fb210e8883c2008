// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tiled

import "fmt"

// Commands
const (
	panelSetting               byte = 0x00
	powerOff                   byte = 0x02
	powerOn                    byte = 0x04
	boosterSoftStart           byte = 0x06
	deepSleep                  byte = 0x07
	dataStartTransmission1     byte = 0x10
	displayRefresh             byte = 0x12
	dataStartTransmission2     byte = 0x13
	dualSPI                    byte = 0x15
	lutC                       byte = 0x20
	lutWW                      byte = 0x21
	lutKWR                     byte = 0x22
	lutWKW                     byte = 0x23
	lutKKK                     byte = 0x24
	lutBD                      byte = 0x25
	vcomAndDataIntervalSetting byte = 0x50
	tconSetting                byte = 0x60
	tconResolution             byte = 0x61
	getStatus                  byte = 0x71
	partialWindow              byte = 0x90
	partialIn                  byte = 0x91
	partialOut                 byte = 0x92
	cascadeSetting             byte = 0xE0
	powerSaving                byte = 0xE3
	forceTemperature           byte = 0xE5
)

// BorderLUT selects the waveform driving the border.
type BorderLUT uint8

// Valid BorderLUT.
const (
	LUTBD BorderLUT = iota
	LUTK
	LUTW
	LUTR
)

var borderNames = [...]string{"bd", "k", "w", "r"}

func (b BorderLUT) String() string {
	if int(b) < len(borderNames) {
		return borderNames[b]
	}
	return fmt.Sprintf("BorderLUT(%d)", b)
}

// Set implements the flag.Value interface.
func (b *BorderLUT) Set(s string) error {
	for i, n := range borderNames {
		if n == s {
			*b = BorderLUT(i)
			return nil
		}
	}
	return fmt.Errorf("unknown border LUT %q: expected bd, k, w or r", s)
}

// Config is the data polarity and waveform selection.
type Config struct {
	// InvertedKW maps data1 bit 0 to black when false, white when true.
	InvertedKW bool
	// InvertedR maps data2 bit 1 to red when false, bit 0 when true.
	InvertedR bool
	// Border is the border waveform.
	Border BorderLUT
	// ExternalLUT uses the waveforms stored with the SetLUT methods instead of
	// the built-in ones.
	ExternalLUT bool
}

// registers returns the panel setting bits shared by all controllers and the
// first VCOM and data interval byte.
func (c *Config) registers() (byte, byte) {
	var ddx byte
	switch {
	case !c.InvertedR && c.InvertedKW:
		ddx = 0
	case !c.InvertedR && !c.InvertedKW:
		ddx = 1
	case c.InvertedR && c.InvertedKW:
		ddx = 2
	default:
		ddx = 3
	}
	// The border data value depends on the DDX[0] polarity.
	bdv := [...]byte{0, 3, 2, 1}[c.Border&3]
	if ddx&1 == 1 {
		bdv = [...]byte{3, 0, 1, 2}[c.Border&3]
	}
	var ps byte
	if c.ExternalLUT {
		ps = 1 << 5
	}
	return ps, bdv<<4 | ddx
}
