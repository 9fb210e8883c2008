// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// recorder collects pin, bus and delay activity in order.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, a ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, a...))
}

type logPin struct {
	*gpiotest.Pin
	r   *recorder
	err error
}

func (p *logPin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	p.r.add("%s=%s", p.N, l)
	return p.Pin.Out(l)
}

type logConn struct {
	r   *recorder
	err error
}

func (c *logConn) String() string {
	return "log"
}

func (c *logConn) Tx(w, r []byte) error {
	if c.err != nil {
		return c.err
	}
	if len(w) != 0 {
		c.r.add("tx %x", w)
	}
	for i := range r {
		r[i] = 0x5A
	}
	return nil
}

func (c *logConn) Duplex() conn.Duplex {
	return conn.Half
}

type fixture struct {
	r    *recorder
	c    *logConn
	dc   *logPin
	cs   *logPin
	rst  *logPin
	busy *gpiotest.Pin
	bus  *Bus
}

func newFixture(t *testing.T, opts *Opts) *fixture {
	t.Helper()
	r := &recorder{}
	f := &fixture{
		r:    r,
		c:    &logConn{r: r},
		dc:   &logPin{Pin: &gpiotest.Pin{N: "dc"}, r: r},
		cs:   &logPin{Pin: &gpiotest.Pin{N: "cs"}, r: r},
		rst:  &logPin{Pin: &gpiotest.Pin{N: "rst"}, r: r},
		busy: &gpiotest.Pin{N: "busy"},
	}
	b, err := New(f.c, f.dc, f.cs, f.rst, f.busy, opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	b.sleep = func(d time.Duration) {
		r.add("sleep %s", d)
	}
	f.bus = b
	r.events = nil
	return f
}

func TestCommandData(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.bus.CommandData(0x12, 0x01, 0x02); err != nil {
		t.Fatal(err)
	}
	if err := f.bus.Command(0x20); err != nil {
		t.Fatal(err)
	}
	if err := f.bus.Command(0x22); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"dc=Low", "cs=Low", "tx 12", "cs=High",
		"dc=High", "cs=Low", "tx 0102", "cs=High",
		"dc=Low", "cs=Low", "tx 20", "cs=High",
		// The D/C line is already low.
		"cs=Low", "tx 22", "cs=High",
	}
	if diff := cmp.Diff(f.r.events, want); diff != "" {
		t.Errorf("CommandData() difference (-got +want):\n%s", diff)
	}
}

func TestChunking(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts Opts
		run  func(b *Bus) error
		want []string
	}{
		{
			name: "data",
			opts: Opts{MaxTxSize: 4},
			run: func(b *Bus) error {
				return b.Data([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
			},
			want: []string{"dc=High", "cs=Low", "tx 01020304", "tx 05060708", "tx 090a", "cs=High"},
		},
		{
			name: "single byte",
			opts: Opts{SingleByteWrite: true},
			run: func(b *Bus) error {
				return b.Data([]byte{1, 2, 3})
			},
			want: []string{"dc=High", "cs=Low", "tx 01", "tx 02", "tx 03", "cs=High"},
		},
		{
			name: "repeat",
			opts: Opts{MaxTxSize: 4},
			run: func(b *Bus) error {
				return b.RepeatData(0xFF, 9)
			},
			want: []string{
				"dc=High",
				"cs=Low", "tx ffffffff", "cs=High",
				"cs=Low", "tx ffffffff", "cs=High",
				"cs=Low", "tx ff", "cs=High",
			},
		},
		{
			name: "empty",
			run: func(b *Bus) error {
				if err := b.Data(nil); err != nil {
					return err
				}
				return b.RepeatData(0, 0)
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, &tc.opts)
			if err := tc.run(f.bus); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(f.r.events, tc.want); diff != "" {
				t.Errorf("difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestMaxTxSizeDefault(t *testing.T) {
	f := newFixture(t, nil)
	if got := f.bus.MaxTxSize(); got != DefaultMaxTxSize {
		t.Errorf("MaxTxSize() = %d, want %d", got, DefaultMaxTxSize)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.bus.Reset(ResetTiming{Initial: 10 * time.Millisecond, Pulse: 2 * time.Millisecond, Settle: 200 * time.Millisecond}); err != nil {
		t.Fatal(err)
	}
	want := []string{"rst=High", "sleep 10ms", "rst=Low", "sleep 2ms", "rst=High", "sleep 200ms"}
	if diff := cmp.Diff(f.r.events, want); diff != "" {
		t.Errorf("Reset() difference (-got +want):\n%s", diff)
	}
}

func TestWaitUntilIdle(t *testing.T) {
	for _, tc := range []struct {
		name  string
		level gpio.Level
	}{
		{"active high", gpio.High},
		{"active low", gpio.Low},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, &Opts{BusyLevel: tc.level, PollInterval: time.Millisecond})
			f.busy.L = tc.level
			polls := 0
			f.bus.sleep = func(time.Duration) {
				polls++
				if polls == 3 {
					f.busy.L = !tc.level
				}
			}
			if !f.bus.IsBusy() {
				t.Fatal("IsBusy() = false")
			}
			if err := f.bus.WaitUntilIdle(); err != nil {
				t.Fatal(err)
			}
			if polls != 3 {
				t.Errorf("polled %d times, want 3", polls)
			}
		})
	}
}

func TestWaitUntilIdleTimeout(t *testing.T) {
	f := newFixture(t, &Opts{BusyLevel: gpio.High, PollInterval: time.Millisecond, BusyTimeout: 5 * time.Millisecond})
	f.bus.sleep = time.Sleep
	f.busy.L = gpio.High
	err := f.bus.WaitUntilIdle()
	if !errors.Is(err, ErrBusyTimeout) {
		t.Fatalf("WaitUntilIdle() = %v, want ErrBusyTimeout", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Role != RoleBusy {
		t.Errorf("WaitUntilIdle() = %v, want busy role", err)
	}
}

func TestWaitForEdge(t *testing.T) {
	busy := &gpiotest.Pin{N: "busy", EdgesChan: make(chan gpio.Level, 1)}
	b, err := New(&logConn{r: &recorder{}}, &gpiotest.Pin{N: "dc"}, nil, nil, busy, &Opts{BusyLevel: gpio.High, UseEdge: true, PollInterval: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if !b.useEdge {
		t.Fatal("edge detection not armed")
	}
	busy.L = gpio.High
	busy.EdgesChan <- gpio.Low
	if err := b.WaitUntilIdle(); err != nil {
		t.Fatal(err)
	}
	if b.IsBusy() {
		t.Error("IsBusy() = true after edge")
	}
}

func TestEdgeFallback(t *testing.T) {
	// Without EdgesChan the fake pin refuses edge detection.
	b, err := New(&logConn{r: &recorder{}}, &gpiotest.Pin{N: "dc"}, nil, nil, &gpiotest.Pin{N: "busy"}, &Opts{UseEdge: true})
	if err != nil {
		t.Fatal(err)
	}
	if b.useEdge {
		t.Error("edge detection armed on a pin without edge support")
	}
}

func TestUnwired(t *testing.T) {
	b, err := New(&logConn{r: &recorder{}}, &gpiotest.Pin{N: "dc"}, nil, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.IsBusy() {
		t.Error("IsBusy() = true without busy pin")
	}
	if err := b.WaitUntilIdle(); err != nil {
		t.Error(err)
	}
	if err := b.Reset(DefaultResetTiming); err != nil {
		t.Error(err)
	}
}

func TestRead(t *testing.T) {
	f := newFixture(t, nil)
	r := make([]byte, 2)
	if err := f.bus.Read(r); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r, []byte{0x5A, 0x5A}); diff != "" {
		t.Errorf("Read() difference (-got +want):\n%s", diff)
	}
}

func TestErrorRole(t *testing.T) {
	errPin := errors.New("pin fault")
	errBus := errors.New("bus fault")
	for _, tc := range []struct {
		name  string
		setup func(f *fixture)
		run   func(b *Bus) error
		want  Role
		cause error
	}{
		{
			name:  "dc",
			setup: func(f *fixture) { f.dc.err = errPin },
			run:   func(b *Bus) error { return b.Command(0x12) },
			want:  RoleDC,
			cause: errPin,
		},
		{
			name:  "cs",
			setup: func(f *fixture) { f.cs.err = errPin },
			run:   func(b *Bus) error { return b.Data([]byte{1}) },
			want:  RoleCS,
			cause: errPin,
		},
		{
			name:  "rst",
			setup: func(f *fixture) { f.rst.err = errPin },
			run:   func(b *Bus) error { return b.Reset(DefaultResetTiming) },
			want:  RoleReset,
			cause: errPin,
		},
		{
			name:  "spi",
			setup: func(f *fixture) { f.c.err = errBus },
			run:   func(b *Bus) error { return b.CommandData(0x12, 1) },
			want:  RoleSPI,
			cause: errBus,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			tc.setup(f)
			err := tc.run(f.bus)
			var e *Error
			if !errors.As(err, &e) || e.Role != tc.want {
				t.Fatalf("error = %v, want role %s", err, tc.want)
			}
			if !errors.Is(err, tc.cause) {
				t.Errorf("error = %v does not wrap %v", err, tc.cause)
			}
		})
	}
}

func TestModeCacheResetOnFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.dc.err = errors.New("pin fault")
	if err := f.bus.Data([]byte{1}); err == nil {
		t.Fatal("Data() succeeded")
	}
	f.dc.err = nil
	if err := f.bus.Data([]byte{1}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(f.r.events, []string{"dc=High", "cs=Low", "tx 01", "cs=High"}); diff != "" {
		t.Errorf("Data() difference (-got +want):\n%s", diff)
	}
}

func TestChipSelectReleasedOnFailure(t *testing.T) {
	errBus := errors.New("bus fault")
	for _, tc := range []struct {
		name string
		run  func(b *Bus) error
	}{
		{"data", func(b *Bus) error { return b.Data([]byte{1, 2}) }},
		{"repeat", func(b *Bus) error { return b.RepeatData(0xFF, 10) }},
		{"read", func(b *Bus) error { return b.Read(make([]byte, 2)) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.c.err = errBus
			if err := tc.run(f.bus); !errors.Is(err, errBus) {
				t.Fatalf("error = %v, want %v", err, errBus)
			}
			if diff := cmp.Diff(f.r.events, []string{"dc=High", "cs=Low", "cs=High"}); diff != "" {
				t.Errorf("%s difference (-got +want):\n%s", tc.name, diff)
			}
			if l := f.cs.Read(); l != gpio.High {
				t.Errorf("cs = %s, want High", l)
			}
		})
	}
}
