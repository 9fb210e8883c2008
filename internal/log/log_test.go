// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	old, oldNow := zlog.Logger, zerolog.TimestampFunc
	var buf bytes.Buffer
	zerolog.TimestampFunc = func() time.Time { return time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC) }
	Setup(&buf, level)
	t.Cleanup(func() {
		zlog.Logger = old
		zerolog.TimestampFunc = oldNow
	})
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(l), &m); err != nil {
			t.Fatalf("%q: %v", l, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLevels(t *testing.T) {
	buf := capture(t, LevelInfo)
	Debug().Msg("hidden")
	Info().Str("model", "2in13v4").Str("mode", "quick").Msg("refresh")
	Error(errors.New("busy timeout")).Str("model", "4in2").Msg("sleep failed")
	want := []map[string]any{
		{"level": "info", "time": "2021-01-02T03:04:05Z", "model": "2in13v4", "mode": "quick", "message": "refresh"},
		{"level": "error", "time": "2021-01-02T03:04:05Z", "error": "busy timeout", "model": "4in2", "message": "sleep failed"},
	}
	if diff := cmp.Diff(lines(t, buf), want); diff != "" {
		t.Errorf("output difference (-got +want):\n%s", diff)
	}
}

func TestErrorOnly(t *testing.T) {
	buf := capture(t, LevelError)
	Info().Msg("dropped")
	Warn().Msg("dropped")
	Debug().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestGlobalLogger(t *testing.T) {
	buf := capture(t, LevelDebug)
	zlog.Warn().Str("bus", "spi0").Msg("polling")
	want := []map[string]any{
		{"level": "warn", "time": "2021-01-02T03:04:05Z", "bus": "spi0", "message": "polling"},
	}
	if diff := cmp.Diff(lines(t, buf), want); diff != "" {
		t.Errorf("output difference (-got +want):\n%s", diff)
	}
}

func TestLevelSet(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"WARN", LevelWarn, true},
		{"error", LevelError, true},
		{"trace", 0, false},
		{"loud", 0, false},
		{"", 0, false},
	} {
		var l Level
		err := l.Set(tc.in)
		if (err == nil) != tc.ok || (tc.ok && l != tc.want) {
			t.Errorf("Set(%q) = %v, %s", tc.in, err, l)
		}
	}
	if got := LevelInfo.String(); got != "info" {
		t.Errorf("String() = %q", got)
	}
}
