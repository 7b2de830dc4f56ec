// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"fmt"
	"strings"
	"time"
)

// Exchange states
const (
	stateWrite = iota
	stateAwaitFirst
	stateDrain
	stateDone
)

const readChunkSize = 256

// exchanger runs one request/response round trip against a port.
//
// The reply has no terminator, so its end is inferred from timing: a long
// deadline for the first bytes, then short idle polls until the line goes
// quiet.
type exchanger struct {
	port     Port
	timeouts Timeouts
	now      func() time.Time

	state    int
	deadline time.Time
	response []byte
	buf      []byte
	err      error
	drainErr error

	// pending is the result of a write abandoned on timeout
	pending <-chan error
}

func newExchanger(port Port, timeouts Timeouts) *exchanger {
	return &exchanger{
		port:     port,
		timeouts: timeouts,
		now:      time.Now,
		state:    stateWrite,
		buf:      make([]byte, readChunkSize),
	}
}

// run sends wire and returns the raw reply bytes
func (e *exchanger) run(wire []byte) ([]byte, error) {
	for e.state != stateDone {
		e.step(wire)
	}
	return e.response, e.err
}

// step advances the state machine by one transition
func (e *exchanger) step(wire []byte) {
	switch e.state {
	case stateWrite:
		if err := e.write(wire); err != nil {
			e.fail(err)
			return
		}
		e.deadline = e.now().Add(e.timeouts.FirstByte)
		e.state = stateAwaitFirst

	case stateAwaitFirst:
		remaining := e.deadline.Sub(e.now())
		if remaining <= 0 {
			e.fail(ErrNoResponse)
			return
		}
		n, err := e.read(remaining)
		if err != nil {
			e.fail(err)
			return
		}
		if n > 0 {
			e.state = stateDrain
		}

	case stateDrain:
		n, err := e.read(e.timeouts.Idle)
		if err != nil {
			// The reply already started; keep what arrived
			e.drainErr = err
			e.state = stateDone
			return
		}
		if n == 0 {
			e.state = stateDone
		}

	default:
		e.fail(fmt.Errorf("invalid exchange state: %d", e.state))
	}
}

func (e *exchanger) fail(err error) {
	e.err = err
	e.state = stateDone
}

// write sends the frame and waits for it to flush within the write timeout.
// A port stuck in Write or Drain is left to its goroutine and the channel is
// kept in pending, so the session can wait for it before writing again.
func (e *exchanger) write(wire []byte) error {
	done := make(chan error, 1)
	go func() {
		if _, err := e.port.Write(wire); err != nil {
			done <- fmt.Errorf("write failed: %w", err)
			return
		}
		if err := e.port.Drain(); err != nil {
			done <- fmt.Errorf("drain failed: %w", err)
			return
		}
		done <- nil
	}()

	timer := time.NewTimer(e.timeouts.Write)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		e.pending = done
		return ErrWriteTimeout
	}
}

// read performs one bounded read and appends whatever arrived
func (e *exchanger) read(timeout time.Duration) (int, error) {
	if err := e.port.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("set read timeout: %w", err)
	}
	n, err := e.port.Read(e.buf)
	if n > 0 {
		e.response = append(e.response, e.buf[:n]...)
	}
	if err != nil {
		return n, fmt.Errorf("read failed: %w", err)
	}
	return n, nil
}

// decodeResponse converts raw reply bytes to trimmed text. Invalid UTF-8
// sequences become U+FFFD.
func decodeResponse(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), "�"))
}
