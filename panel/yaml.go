// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Bytes is a byte sequence written as a YAML list of integers.
type Bytes []byte

// MarshalYAML implements yaml.Marshaler.
func (b Bytes) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range b {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("0x%02X", v)})
	}
	return n, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Bytes) UnmarshalYAML(value *yaml.Node) error {
	var ints []int
	if err := value.Decode(&ints); err != nil {
		return err
	}
	out := make(Bytes, len(ints))
	for i, v := range ints {
		if v < 0 || v > 0xFF {
			return fmt.Errorf("line %d: value %d does not fit in a byte", value.Line, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// yamlStep is the serialized form of Step; a missing cmd means NoCmd.
type yamlStep struct {
	Cmd    *int          `yaml:"cmd,omitempty"`
	Data   Bytes         `yaml:"data,omitempty"`
	Wait   bool          `yaml:"wait,omitempty"`
	Delay  time.Duration `yaml:"delay,omitempty"`
	Border bool          `yaml:"border,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (s Step) MarshalYAML() (interface{}, error) {
	y := yamlStep{Data: s.Data, Wait: s.Wait, Delay: s.Delay, Border: s.Border}
	if !s.NoCmd {
		c := int(s.Cmd)
		y.Cmd = &c
	}
	return y, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var y yamlStep
	if err := value.Decode(&y); err != nil {
		return err
	}
	*s = Step{Data: y.Data, Wait: y.Wait, Delay: y.Delay, Border: y.Border, NoCmd: y.Cmd == nil}
	if y.Cmd != nil {
		if *y.Cmd < 0 || *y.Cmd > 0xFF {
			return fmt.Errorf("line %d: command %d does not fit in a byte", value.Line, *y.Cmd)
		}
		s.Cmd = byte(*y.Cmd)
	}
	return nil
}

// ParseDescription decodes and validates a YAML panel description.
func ParseDescription(b []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescription, err)
	}
	out := d.withDefaults()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadDescription reads a YAML panel description from r.
func LoadDescription(r io.Reader) (*Description, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseDescription(b)
}

// MarshalDescription encodes d as YAML.
func MarshalDescription(d *Description) ([]byte, error) {
	return yaml.Marshal(d)
}
