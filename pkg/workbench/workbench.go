// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package workbench is the function-call surface used by the CLI and the
// console. It owns the serial session, the error-code directory and the
// file codec, and reports every outcome as a status string plus events.
package workbench

import (
	"sync"

	"github.com/Thermoquad/uartbench/pkg/errdb"
	"github.com/Thermoquad/uartbench/pkg/norfile"
	"github.com/Thermoquad/uartbench/pkg/notify"
	"github.com/Thermoquad/uartbench/pkg/uart"
	"github.com/rs/zerolog"
)

// Workbench ties the session, directory and codec to one event bus
type Workbench struct {
	session *uart.Session
	dir     *errdb.Directory
	codec   norfile.Codec
	bus     *notify.Bus
	log     zerolog.Logger

	sessionOpts []uart.Option

	mu     sync.RWMutex
	status string
}

// Option configures a Workbench
type Option func(*Workbench)

// WithSessionOptions passes options to the serial session
func WithSessionOptions(opts ...uart.Option) Option {
	return func(w *Workbench) {
		w.sessionOpts = append(w.sessionOpts, opts...)
	}
}

// WithCodec replaces the NOR field codec
func WithCodec(c norfile.Codec) Option {
	return func(w *Workbench) {
		w.codec = c
	}
}

// WithLogger sets the workbench logger
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workbench) {
		w.log = l
	}
}

// New creates a workbench around dir. Asynchronous transport errors from
// the session are published as Error events.
func New(dir *errdb.Directory, opts ...Option) *Workbench {
	w := &Workbench{
		dir:   dir,
		codec: norfile.Passthrough{},
		bus:   notify.NewBus(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	sessionOpts := append([]uart.Option{uart.WithLogger(w.log)}, w.sessionOpts...)
	sessionOpts = append(sessionOpts,
		uart.WithErrorHandler(w.transportError),
		uart.WithLostHandler(w.connectionLost),
	)
	w.session = uart.NewSession(sessionOpts...)
	return w
}

// Session returns the serial session
func (w *Workbench) Session() *uart.Session {
	return w.session
}

// Directory returns the error-code directory
func (w *Workbench) Directory() *errdb.Directory {
	return w.dir
}

// Status returns the outcome of the latest operation
func (w *Workbench) Status() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// Events subscribes to workbench events. Call cancel to unsubscribe.
func (w *Workbench) Events(buffer int) (events <-chan notify.Event, cancel func()) {
	return w.bus.Subscribe(buffer)
}

// DroppedEvents returns how many event deliveries were skipped because a
// subscriber fell behind
func (w *Workbench) DroppedEvents() uint64 {
	return w.bus.Dropped()
}

// Close closes the serial port and the event bus
func (w *Workbench) Close() error {
	err := w.session.Close()
	w.bus.Close()
	return err
}

func (w *Workbench) setStatus(message string, ok bool) {
	w.mu.Lock()
	w.status = message
	w.mu.Unlock()

	if ok {
		w.log.Debug().Msg(message)
	} else {
		w.log.Warn().Msg(message)
	}
	w.bus.Publish(notify.Event{Kind: notify.Status, Message: message, OK: ok})
}

// raise publishes a failure that warrants the user's attention
func (w *Workbench) raise(title, message string) {
	w.bus.Publish(notify.Event{Kind: notify.Error, Title: title, Message: message})
}

func (w *Workbench) publish(kind notify.Kind, message string, ok bool) {
	w.bus.Publish(notify.Event{Kind: kind, Message: message, OK: ok})
}

func (w *Workbench) transportError(err error) {
	message := "Serial port error: " + err.Error()
	w.setStatus(message, false)
	w.raise("Serial Port Error", message)
}

// connectionLost runs after the session closed a port that failed on its own
func (w *Workbench) connectionLost(name string, err error) {
	w.log.Warn().Err(err).Str("port", name).Msg("connection lost")
	w.setStatus("Connection to "+name+" lost.", false)
	w.publish(notify.ConnectionChanged, name, false)
}
