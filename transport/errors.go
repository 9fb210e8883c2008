// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"errors"
	"fmt"
)

// Role identifies the bus line an error was raised on.
type Role string

// Valid Role.
const (
	RoleSPI   Role = "spi"
	RoleDC    Role = "dc"
	RoleCS    Role = "cs"
	RoleReset Role = "rst"
	RoleBusy  Role = "busy"
)

// ErrBusyTimeout is wrapped by the Error returned when the busy line did not
// return to idle within Opts.BusyTimeout.
var ErrBusyTimeout = errors.New("busy timeout")

// Error is a failure of one of the bus lines.
type Error struct {
	Role Role
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Role, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(r Role, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Role: r, Err: err}
}
