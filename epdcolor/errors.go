// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epdcolor

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every ParseError.
	ErrParse = errors.New("epdcolor: invalid color value")
	// ErrNoRGB is returned for colors without an RGB representation.
	ErrNoRGB = errors.New("epdcolor: color has no RGB representation")
	// ErrNoExactMatch is returned when an RGB value is not a palette entry.
	ErrNoExactMatch = errors.New("epdcolor: no exact palette match")
)

// ParseError reports a byte that is not a valid value of an encoding.
type ParseError struct {
	Format Format
	Value  byte
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("epdcolor: %s cannot parse value 0x%02X", e.Format, e.Value)
}

// Is makes errors.Is(err, ErrParse) hold.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
