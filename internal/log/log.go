// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package log sets up the zerolog logger of the command line tools.
//
// The library packages log through the global zerolog logger, so Setup also
// routes their messages.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Level is the minimum severity written.
type Level zerolog.Level

// Valid Level.
const (
	LevelDebug = Level(zerolog.DebugLevel)
	LevelInfo  = Level(zerolog.InfoLevel)
	LevelWarn  = Level(zerolog.WarnLevel)
	LevelError = Level(zerolog.ErrorLevel)
)

// Set implements the flag.Value interface.
func (l *Level) Set(s string) error {
	v, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || v < zerolog.DebugLevel || v > zerolog.ErrorLevel {
		return fmt.Errorf("unknown level %q: expected debug, info, warn or error", s)
	}
	*l = Level(v)
	return nil
}

func (l Level) String() string {
	return zerolog.Level(l).String()
}

// Setup routes the global logger to w at level l. A terminal gets colored
// console lines, anything else one JSON object per line.
func Setup(w io.Writer, l Level) {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: colorable.NewColorable(f), TimeFormat: time.RFC3339}
	}
	zlog.Logger = zerolog.New(w).Level(zerolog.Level(l)).With().Timestamp().Logger()
}

// Debug starts a debug message.
func Debug() *zerolog.Event {
	return zlog.Debug()
}

// Info starts an info message.
func Info() *zerolog.Event {
	return zlog.Info()
}

// Warn starts a warning.
func Warn() *zerolog.Event {
	return zlog.Warn()
}

// Error starts an error message carrying err.
func Error(err error) *zerolog.Event {
	return zlog.Error().Err(err)
}
