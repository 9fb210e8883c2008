// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/GermanBionicSystems/epaper/epdcolor"
	"github.com/GermanBionicSystems/epaper/framebuffer"
	"github.com/GermanBionicSystems/epaper/transport"
)

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		edit func(d *Description)
	}{
		{"name", func(d *Description) { d.Name = "" }},
		{"size", func(d *Description) { d.Width = 0 }},
		{"format", func(d *Description) { d.Color = epdcolor.Format{Name: "rgb", BitsPerPixel: 24, Planes: 1} }},
		{"byte mirror width", func(d *Description) { d.Scheme = framebuffer.ByteMirror; d.Width = 12 }},
		{"byte mirror oct", func(d *Description) { d.Scheme = framebuffer.ByteMirror; d.Color = epdcolor.OctFormat }},
		{"frame", func(d *Description) { d.Opcodes.Frame = 0 }},
		{"chromatic", func(d *Description) { d.Color = epdcolor.TriFormat }},
		{"ram window", func(d *Description) { d.Opcodes.RAMYCounter = 0 }},
		{"display", func(d *Description) { d.Display = nil }},
		{"quick", func(d *Description) { d.Quick.NewFrame = 0 }},
		{"quick tri", func(d *Description) { d.Color = epdcolor.TriFormat; d.Opcodes.Chromatic = 0x26 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := ssdDesc()
			if err := d.Validate(); err != nil {
				t.Fatal(err)
			}
			tc.edit(d)
			if err := d.Validate(); !errors.Is(err, ErrInvalidDescription) {
				t.Fatalf("Validate() = %v, want ErrInvalidDescription", err)
			}
		})
	}

	d := ucDesc()
	d.Opcodes.PartialWindow = 0
	if err := d.Validate(); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("Validate() = %v, want ErrInvalidDescription", err)
	}
	d.Partial = false
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestWithDefaults(t *testing.T) {
	d := &Description{Name: "x"}
	c := d.withDefaults()
	if c.Color != epdcolor.MonoFormat {
		t.Errorf("Color = %s", c.Color)
	}
	if c.Reset != transport.DefaultResetTiming {
		t.Errorf("Reset = %+v", c.Reset)
	}
	if d.Reset != (transport.ResetTiming{}) {
		t.Error("withDefaults() modified its receiver")
	}
}

const testYAML = `
name: yaml-test
width: 16
height: 2
color: mono
busy: low
reset: {initial: 10ms, pulse: 2ms, settle: 200ms}
addressing: partial-window
opcodes:
  frame: 0x13
  prefill: [0x10]
  partial_in: 0x91
  partial_window: 0x90
  partial_out: 0x92
init:
  - {cmd: 0x06, data: [0x17, 0x17, 0x17]}
  - {cmd: 0x04, wait: true}
  - {delay: 5ms}
  - {cmd: 0x50, data: [0x37], border: true}
lut:
  full:
    - {cmd: 0x20, data: [0x00, 0x0A]}
  quick:
    - {cmd: 0x20, data: [0x00, 0x19]}
mode_switch: reload-lut
display:
  - {cmd: 0x12, wait: true}
sleep:
  - {cmd: 0x02, wait: true}
  - {cmd: 0x07, data: [0xA5]}
partial: true
`

func TestParseDescription(t *testing.T) {
	d, err := ParseDescription([]byte(testYAML))
	if err != nil {
		t.Fatal(err)
	}
	want := &Description{
		Name:       "yaml-test",
		Width:      16,
		Height:     2,
		Color:      epdcolor.MonoFormat,
		Busy:       BusyActiveLow,
		Reset:      transport.ResetTiming{Initial: 10 * time.Millisecond, Pulse: 2 * time.Millisecond, Settle: 200 * time.Millisecond},
		Addressing: PartialWindow,
		Opcodes: Opcodes{
			Frame:         0x13,
			Prefill:       Bytes{0x10},
			PartialIn:     0x91,
			PartialWindow: 0x90,
			PartialOut:    0x92,
		},
		Init: []Step{
			Cmd(0x06, 0x17, 0x17, 0x17),
			CmdWait(0x04),
			Pause(5 * time.Millisecond),
			BorderCmd(0x50, 0x37),
		},
		LUT: PerMode{
			Full:  []Step{Cmd(0x20, 0x00, 0x0A)},
			Quick: []Step{Cmd(0x20, 0x00, 0x19)},
		},
		ModeSwitch: ReloadLUT,
		Display:    []Step{CmdWait(0x12)},
		Sleep:      []Step{CmdWait(0x02), Cmd(0x07, 0xA5)},
		Partial:    true,
	}
	if diff := cmp.Diff(d, want); diff != "" {
		t.Errorf("ParseDescription() difference (-got +want):\n%s", diff)
	}
	if !d.SupportsQuick() {
		t.Error("SupportsQuick() = false")
	}

	b, err := MarshalDescription(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "data: [0x17, 0x17, 0x17]") {
		t.Errorf("MarshalDescription() did not write bytes as hex:\n%s", b)
	}
	again, err := LoadDescription(strings.NewReader(string(b)))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(again, d); diff != "" {
		t.Errorf("LoadDescription() difference (-got +want):\n%s", diff)
	}
}

func TestParseDescriptionErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		yaml string
	}{
		{"syntax", "name: [x"},
		{"byte", strings.Replace(testYAML, "prefill: [0x10]", "prefill: [0x100]", 1)},
		{"opcode", strings.Replace(testYAML, "frame: 0x13", "frame: 0x113", 1)},
		{"command", strings.Replace(testYAML, "cmd: 0x12", "cmd: 300", 1)},
		{"busy", strings.Replace(testYAML, "busy: low", "busy: sideways", 1)},
		{"color", strings.Replace(testYAML, "color: mono", "color: rgb", 1)},
		{"invalid", strings.Replace(testYAML, "  frame: 0x13\n", "", 1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseDescription([]byte(tc.yaml)); !errors.Is(err, ErrInvalidDescription) {
				t.Fatalf("ParseDescription() = %v, want ErrInvalidDescription", err)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	d := ssdDesc()
	d.Name = "registry-test"
	if err := Register(d); err != nil {
		t.Fatal(err)
	}
	if err := Register(d); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("Register() twice = %v", err)
	}
	got, err := Lookup("registry-test")
	if err != nil {
		t.Fatal(err)
	}
	if got.Reset != transport.DefaultResetTiming {
		t.Errorf("Lookup() did not apply defaults: %+v", got.Reset)
	}
	got.Width = 1
	if again, _ := Lookup("registry-test"); again.Width != 16 {
		t.Error("Lookup() returned a shared description")
	}
	if _, err := Lookup("nope"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("Lookup() = %v, want ErrUnknownModel", err)
	}
	found := false
	for _, n := range Names() {
		found = found || n == "registry-test"
	}
	if !found {
		t.Errorf("Names() = %q", Names())
	}
	if err := Register(&Description{Name: "broken"}); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("Register() = %v, want ErrInvalidDescription", err)
	}
}

func TestEnumSet(t *testing.T) {
	var b Busy
	var a Addressing
	var m RefreshMode
	var s ModeSwitch
	for _, err := range []error{b.Set("low"), a.Set("partial-window"), m.Set("quick"), s.Set("reload-lut")} {
		if err != nil {
			t.Fatal(err)
		}
	}
	if b != BusyActiveLow || a != PartialWindow || m != Quick || s != ReloadLUT {
		t.Errorf("Set() = %s %s %s %s", b, a, m, s)
	}
	if err := m.Set("fast"); err == nil {
		t.Error("Set(fast) succeeded")
	}
}

func TestSupportsQuick(t *testing.T) {
	for _, tc := range []struct {
		name string
		d    Description
		want bool
	}{
		{"full only", Description{Display: []Step{Cmd(0x12)}}, false},
		{"quick lut", Description{LUT: PerMode{Quick: []Step{Cmd(0x32)}}}, true},
		{"mode steps", Description{ModeSteps: PerMode{Quick: []Step{Cmd(0x22, 0xFF)}}}, true},
		{"quick display", Description{QuickDisplay: []Step{Cmd(0x20)}}, true},
		{"differential", Description{Quick: &QuickRefresh{NewFrame: 0x24}}, true},
	} {
		if got := tc.d.SupportsQuick(); got != tc.want {
			t.Errorf("%s: SupportsQuick() = %t, want %t", tc.name, got, tc.want)
		}
	}
}

func TestWithBorder(t *testing.T) {
	in := []Step{Cmd(0x01, 0x37), BorderCmd(0x50, 0x37), WaitIdle()}
	got := withBorder(in, epdcolor.OctRed)
	want := []Step{Cmd(0x01, 0x37), BorderCmd(0x50, 0x97), WaitIdle()}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("withBorder() difference (-got +want):\n%s", diff)
	}
	if in[1].Data[0] != 0x37 {
		t.Errorf("input modified: %#x", in[1].Data[0])
	}
	plain := []Step{Cmd(0x50, 0x37)}
	if got := withBorder(plain, epdcolor.OctRed); &got[0] != &plain[0] {
		t.Error("steps without border copied")
	}
}
