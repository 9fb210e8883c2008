// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transport implements the command/data line protocol spoken by
// e-paper controllers over SPI.
//
// A Bus owns the SPI connection and the data/command, chip select, reset and
// busy pins of one controller. Every method returns the first failure tagged
// with the line that raised it; nothing is retried.
package transport

import (
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// DefaultMaxTxSize is used when the connection does not report a limit.
const DefaultMaxTxSize = 4096

// ResetTiming is the shape of a hardware reset: the reset line is driven high
// for Initial, low for Pulse, then high again followed by Settle.
type ResetTiming struct {
	Initial time.Duration `yaml:"initial"`
	Pulse   time.Duration `yaml:"pulse"`
	Settle  time.Duration `yaml:"settle"`
}

// DefaultResetTiming works for most panels.
var DefaultResetTiming = ResetTiming{
	Initial: 10 * time.Millisecond,
	Pulse:   10 * time.Millisecond,
	Settle:  200 * time.Millisecond,
}

// Opts configures a Bus.
type Opts struct {
	// BusyLevel is the level of the busy line while the controller works.
	BusyLevel gpio.Level
	// PollInterval between two reads of the busy line. Defaults to 10ms.
	PollInterval time.Duration
	// BusyTimeout bounds WaitUntilIdle. Zero waits forever.
	BusyTimeout time.Duration
	// UseEdge waits for edges on the busy line instead of sleeping between
	// polls, when the pin supports it.
	UseEdge bool
	// SingleByteWrite sends data one byte per transaction.
	SingleByteWrite bool
	// MaxTxSize overrides the transaction size limit of the connection.
	MaxTxSize int
}

type mode uint8

const (
	modeUnknown mode = iota
	modeCommand
	modeData
)

// Bus drives one controller.
type Bus struct {
	c    conn.Conn
	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	maxTxSize int
	useEdge   bool
	last      mode
	opts      Opts

	sleep func(time.Duration)
}

// New returns a Bus. cs may be nil when the SPI controller drives chip select,
// rst and busy may be nil when they are not wired.
func New(c conn.Conn, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Bus, error) {
	b := &Bus{
		c:     c,
		dc:    dc,
		cs:    cs,
		rst:   rst,
		busy:  busy,
		sleep: time.Sleep,
	}
	if opts != nil {
		b.opts = *opts
	}
	if b.opts.PollInterval <= 0 {
		b.opts.PollInterval = 10 * time.Millisecond
	}

	// Get the maxTxSize from the conn if it implements the conn.Limits interface,
	// otherwise use 4096 bytes.
	b.maxTxSize = b.opts.MaxTxSize
	if b.maxTxSize == 0 {
		if limits, ok := c.(conn.Limits); ok {
			b.maxTxSize = limits.MaxTxSize()
		}
	}
	if b.maxTxSize <= 0 {
		b.maxTxSize = DefaultMaxTxSize
	}
	if b.opts.SingleByteWrite {
		b.maxTxSize = 1
	}

	if busy != nil {
		edge := gpio.NoEdge
		if b.opts.UseEdge {
			edge = gpio.FallingEdge
			if b.opts.BusyLevel == gpio.Low {
				edge = gpio.RisingEdge
			}
		}
		if err := busy.In(gpio.Float, edge); err != nil {
			if edge == gpio.NoEdge {
				return nil, wrap(RoleBusy, err)
			}
			log.Warn().Err(err).Str("bus", c.String()).Msg("busy edge detection unavailable, polling")
			if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
				return nil, wrap(RoleBusy, err)
			}
		} else {
			b.useEdge = edge != gpio.NoEdge
		}
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, wrap(RoleCS, err)
		}
	}
	return b, nil
}

// MaxTxSize returns the largest write sent in one transaction.
func (b *Bus) MaxTxSize() int {
	return b.maxTxSize
}

// String implements conn.Resource.
func (b *Bus) String() string {
	return b.c.String()
}

// Command sends one command byte with the D/C line low.
func (b *Bus) Command(cmd byte) error {
	if err := b.setMode(modeCommand); err != nil {
		return err
	}
	return b.write([]byte{cmd})
}

// Data streams data with the D/C line high.
func (b *Bus) Data(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := b.setMode(modeData); err != nil {
		return err
	}
	return b.write(data)
}

// CommandData sends cmd followed by its parameters.
func (b *Bus) CommandData(cmd byte, data ...byte) error {
	if err := b.Command(cmd); err != nil {
		return err
	}
	return b.Data(data)
}

// RepeatData streams n copies of v.
func (b *Bus) RepeatData(v byte, n int) error {
	if n <= 0 {
		return nil
	}
	chunk := make([]byte, min(n, b.maxTxSize))
	for i := range chunk {
		chunk[i] = v
	}
	if err := b.setMode(modeData); err != nil {
		return err
	}
	for n > 0 {
		l := min(n, len(chunk))
		if err := b.write(chunk[:l]); err != nil {
			return err
		}
		n -= l
	}
	return nil
}

// Read clocks len(r) bytes out of the controller with the D/C line high.
func (b *Bus) Read(r []byte) error {
	if err := b.setMode(modeData); err != nil {
		return err
	}
	return b.selected(func() error {
		return wrap(RoleSPI, b.c.Tx(nil, r))
	})
}

// Reset pulses the reset line. It is a no-op when reset is not wired.
func (b *Bus) Reset(t ResetTiming) error {
	if b.rst == nil {
		return nil
	}
	for _, s := range []struct {
		l gpio.Level
		d time.Duration
	}{
		{gpio.High, t.Initial},
		{gpio.Low, t.Pulse},
		{gpio.High, t.Settle},
	} {
		if err := b.rst.Out(s.l); err != nil {
			return wrap(RoleReset, err)
		}
		b.sleep(s.d)
	}
	return nil
}

// IsBusy reports whether the controller is working.
func (b *Bus) IsBusy() bool {
	if b.busy == nil {
		return false
	}
	return b.busy.Read() == b.opts.BusyLevel
}

// WaitUntilIdle blocks until the busy line reports idle.
func (b *Bus) WaitUntilIdle() error {
	var deadline time.Time
	if b.opts.BusyTimeout > 0 {
		deadline = time.Now().Add(b.opts.BusyTimeout)
	}
	for b.IsBusy() {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return wrap(RoleBusy, ErrBusyTimeout)
		}
		if b.useEdge {
			// Re-read the level on timeout in case the edge was missed.
			b.busy.WaitForEdge(b.opts.PollInterval)
		} else {
			b.sleep(b.opts.PollInterval)
		}
	}
	return nil
}

// Delay sleeps for d.
func (b *Bus) Delay(d time.Duration) {
	if d > 0 {
		b.sleep(d)
	}
}

func (b *Bus) setMode(m mode) error {
	if b.last == m {
		return nil
	}
	l := gpio.Low
	if m == modeData {
		l = gpio.High
	}
	if err := b.dc.Out(l); err != nil {
		b.last = modeUnknown
		return wrap(RoleDC, err)
	}
	b.last = m
	return nil
}

func (b *Bus) csOut(l gpio.Level) error {
	if b.cs == nil {
		return nil
	}
	return wrap(RoleCS, b.cs.Out(l))
}

// selected runs f with chip select low. Chip select is raised again on every
// path and the first error wins.
func (b *Bus) selected(f func() error) error {
	if err := b.csOut(gpio.Low); err != nil {
		return err
	}
	err := f()
	if err2 := b.csOut(gpio.High); err == nil {
		err = err2
	}
	return err
}

func (b *Bus) write(p []byte) error {
	return b.selected(func() error {
		for len(p) > 0 {
			n := min(len(p), b.maxTxSize)
			if err := b.c.Tx(p[:n], nil); err != nil {
				return wrap(RoleSPI, err)
			}
			p = p[n:]
		}
		return nil
	})
}
