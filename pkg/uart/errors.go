// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotConnected is returned by Exchange when no port is open
	ErrNotConnected = errors.New("serial port not connected")

	// ErrPortUnavailable matches every *PortUnavailableError
	ErrPortUnavailable = errors.New("serial port unavailable")

	// ErrWriteTimeout is returned when a frame is not flushed within Timeouts.Write
	ErrWriteTimeout = errors.New("timeout writing to serial port")

	// ErrNoResponse is returned when no byte arrives within Timeouts.FirstByte
	ErrNoResponse = errors.New("no response from serial device")

	// ErrBridgeClosed is returned by bridge reads after the WebSocket has gone away
	ErrBridgeClosed = errors.New("websocket bridge closed")
)

// PortUnavailableError indicates that a port could not be opened.
// Err carries the underlying OS or dial error.
type PortUnavailableError struct {
	Port string
	Err  error
}

func (e *PortUnavailableError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("serial port unavailable: %v", e.Err)
	}
	return fmt.Sprintf("could not connect to %s: %v", e.Port, e.Err)
}

func (e *PortUnavailableError) Unwrap() error {
	return e.Err
}

// Is reports ErrPortUnavailable as a match
func (e *PortUnavailableError) Is(target error) bool {
	return target == ErrPortUnavailable
}

// timeoutError is implemented by net and os errors that represent deadlines
type timeoutError interface {
	Timeout() bool
}

// reportable filters errors for the asynchronous error path. Timeouts are an
// expected outcome of the exchange loop and never reported.
func reportable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, ErrWriteTimeout) ||
		errors.Is(err, ErrNoResponse) {
		return false
	}
	var te timeoutError
	if errors.As(err, &te) && te.Timeout() {
		return false
	}
	return true
}
