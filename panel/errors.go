// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import "errors"

var (
	// ErrInvalidArgument is returned before any I/O for buffers of the wrong
	// length and misaligned or out of bounds windows.
	ErrInvalidArgument = errors.New("panel: invalid argument")
	// ErrUnsupported is returned for operations the panel does not offer.
	ErrUnsupported = errors.New("panel: operation not supported by this panel")
	// ErrAsleep is returned when the panel is in deep sleep. Call WakeUp.
	ErrAsleep = errors.New("panel: panel is in deep sleep")
	// ErrNotInitialized is returned after a failed initialization.
	ErrNotInitialized = errors.New("panel: panel is not initialized")
	// ErrNoNewFrame is returned by DisplayNewFrame without a staged frame.
	ErrNoNewFrame = errors.New("panel: no new frame staged")
	// ErrInvalidDescription is returned for unusable panel descriptions.
	ErrInvalidDescription = errors.New("panel: invalid description")
	// ErrUnknownModel is returned by Lookup.
	ErrUnknownModel = errors.New("panel: unknown model")
)
