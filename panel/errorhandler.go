// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"time"

	"github.com/GermanBionicSystems/epaper/transport"
)

// errorHandler is a wrapper for error management. Once a step fails every
// following step is skipped and err holds the first failure.
type errorHandler struct {
	b   *transport.Bus
	err error
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.Command(cmd)
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.Data(data)
}

func (eh *errorHandler) fill(v byte, n int) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.RepeatData(v, n)
}

func (eh *errorHandler) waitUntilIdle() {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.WaitUntilIdle()
}

func (eh *errorHandler) delay(d time.Duration) {
	if eh.err != nil {
		return
	}
	eh.b.Delay(d)
}

func (eh *errorHandler) reset(t transport.ResetTiming) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.Reset(t)
}
