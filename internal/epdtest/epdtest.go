// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epdtest records controller traffic for tests.
package epdtest

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/GermanBionicSystems/epaper/transport"
)

// Wire is a conn.Conn logging every command byte as "cmd xx" and the data
// following it as one "data ..." entry, whatever the chunking.
type Wire struct {
	DC     *gpiotest.Pin
	Events []string
	Err    error
}

func (w *Wire) String() string {
	return "epdtest"
}

// Duplex implements conn.Conn.
func (w *Wire) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements conn.Conn.
func (w *Wire) Tx(p, r []byte) error {
	if w.Err != nil {
		return w.Err
	}
	for i := range r {
		r[i] = 0
	}
	if len(p) == 0 {
		return nil
	}
	if w.DC.Read() == gpio.Low {
		for _, c := range p {
			w.Events = append(w.Events, fmt.Sprintf("cmd %02x", c))
		}
		return nil
	}
	if n := len(w.Events); n != 0 && strings.HasPrefix(w.Events[n-1], "data ") {
		w.Events[n-1] += fmt.Sprintf("%x", p)
		return nil
	}
	w.Events = append(w.Events, fmt.Sprintf("data %x", p))
	return nil
}

// Commands returns the command bytes seen so far, in order.
func (w *Wire) Commands() []byte {
	var out []byte
	for _, e := range w.Events {
		var c byte
		if _, err := fmt.Sscanf(e, "cmd %02x", &c); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// DataAfter returns the data sent after the n-th occurrence (from 0) of cmd,
// hex encoded, or "" if there was none.
func (w *Wire) DataAfter(cmd byte, n int) string {
	want := fmt.Sprintf("cmd %02x", cmd)
	for i, e := range w.Events {
		if e != want {
			continue
		}
		if n--; n >= 0 {
			continue
		}
		if i+1 < len(w.Events) && strings.HasPrefix(w.Events[i+1], "data ") {
			return strings.TrimPrefix(w.Events[i+1], "data ")
		}
		return ""
	}
	return ""
}

// Reset forgets the recorded events.
func (w *Wire) Reset() {
	w.Events = nil
}

// NewBus returns a bus over a new Wire. The busy pin always reports idle
// for a controller signalling busy with level.
func NewBus(level gpio.Level) (*transport.Bus, *Wire, error) {
	w := &Wire{DC: &gpiotest.Pin{N: "dc"}}
	busy := &gpiotest.Pin{N: "busy", L: !level}
	b, err := transport.New(w, w.DC, nil, &gpiotest.Pin{N: "rst"}, busy, &transport.Opts{BusyLevel: level})
	if err != nil {
		return nil, nil, err
	}
	return b, w, nil
}
