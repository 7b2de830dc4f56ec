// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{" INFO ", zerolog.InfoLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"", DefaultLevel, false},
		{"loud", DefaultLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseLevel(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestResolveLevel(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "error")
		assert.Equal(t, zerolog.DebugLevel, resolveLevel(Options{FlagLevel: "debug", ConfigLevel: "info"}))
	})

	t.Run("environment beats config", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "error")
		assert.Equal(t, zerolog.ErrorLevel, resolveLevel(Options{ConfigLevel: "info"}))
	})

	t.Run("config", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "")
		assert.Equal(t, zerolog.InfoLevel, resolveLevel(Options{ConfigLevel: "info"}))
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "")
		assert.Equal(t, DefaultLevel, resolveLevel(Options{}))
	})
}

func TestNew(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer

	logger := New(Options{FlagLevel: "info", NoColor: true, Out: &buf})
	logger.Debug().Msg("hidden")
	logger.Info().Str("port", "/dev/ttyUSB0").Msg("connected")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "port=/dev/ttyUSB0")
}
