// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package logging builds the zerolog logger shared by the commands.
// Diagnostics go to stderr so command output on stdout stays clean.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "UARTBENCH_LOG_LEVEL"
	EnvLogNoColor = "UARTBENCH_LOG_NOCOLOR"

	DefaultLevel = zerolog.WarnLevel
)

// Options selects the logger output
type Options struct {
	// FlagLevel wins over the environment, which wins over ConfigLevel
	FlagLevel   string
	ConfigLevel string
	NoColor     bool
	Out         io.Writer
}

// New builds a console logger and installs it as the zerolog global
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	noColor := opts.NoColor
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		noColor = v
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}

	logger := zerolog.New(writer).
		Level(resolveLevel(opts)).
		With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func resolveLevel(opts Options) zerolog.Level {
	if lvl, ok := ParseLevel(opts.FlagLevel); ok {
		return lvl
	}
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		return lvl
	}
	if lvl, ok := ParseLevel(opts.ConfigLevel); ok {
		return lvl
	}
	return DefaultLevel
}

// ParseLevel maps a level name to a zerolog level. ok is false for empty or
// unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return DefaultLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
