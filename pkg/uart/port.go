// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package uart owns the connection to the board's debug UART and performs
// blocking command/response exchanges over it.
package uart

import (
	"io"
	"time"
)

// Port is a byte-oriented transport to the debug UART.
//
// Read must return (0, nil) when the read timeout elapses with no data,
// matching the go.bug.st/serial contract.
type Port interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds the next Read calls
	SetReadTimeout(timeout time.Duration) error

	// Drain blocks until all written bytes have been transmitted
	Drain() error
}

// errorSource is implemented by ports that observe failures outside of
// Read/Write calls (for example a bridge whose socket drops)
type errorSource interface {
	Errors() <-chan error
}

// Opener opens a named port with the fixed line configuration
type Opener func(name string) (Port, error)

// Enumerator lists the port identifiers currently available
type Enumerator func() ([]string, error)

// ErrorHandler receives transport errors observed asynchronously
type ErrorHandler func(err error)

// LostHandler is called after a port that failed on its own has been
// closed by the session
type LostHandler func(name string, err error)

// Timeouts bound each phase of an exchange
type Timeouts struct {
	// Write is how long the frame may take to flush
	Write time.Duration

	// FirstByte is how long to wait for the start of a reply
	FirstByte time.Duration

	// Idle ends the reply once no more bytes arrive for this long
	Idle time.Duration
}

// DefaultTimeouts returns the fixed exchange timeouts
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Write:     1000 * time.Millisecond,
		FirstByte: 3000 * time.Millisecond,
		Idle:      100 * time.Millisecond,
	}
}

// Line configuration used for every port
const (
	BaudRate = 115200
	DataBits = 8
)
