// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Thermoquad/uartbench/pkg/frame"
	"github.com/rs/zerolog"
)

// Session owns at most one open port.
//
// ioMu serializes everything that touches the wire (open, close, exchange),
// so a second caller waits rather than interleaving bytes. stateMu guards the
// fields read by status queries, which stay responsive during an exchange.
type Session struct {
	ioMu    sync.Mutex
	stateMu sync.RWMutex

	open      Opener
	enumerate Enumerator
	timeouts  Timeouts
	onError   ErrorHandler
	onLost    LostHandler
	log       zerolog.Logger
	stats     *Statistics

	port      Port
	portName  string
	selected  string
	available []string

	// pendingWrite is a write still in flight on port after a write
	// timeout. Guarded by ioMu.
	pendingWrite <-chan error
}

// Option configures a Session
type Option func(*Session)

// WithOpener replaces the serial opener (bridges, tests)
func WithOpener(open Opener) Option {
	return func(s *Session) {
		s.open = open
	}
}

// WithEnumerator replaces the OS port enumerator
func WithEnumerator(enumerate Enumerator) Option {
	return func(s *Session) {
		s.enumerate = enumerate
	}
}

// WithTimeouts overrides the exchange timeouts
func WithTimeouts(t Timeouts) Option {
	return func(s *Session) {
		s.timeouts = t
	}
}

// WithErrorHandler sets the receiver for asynchronous transport errors
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Session) {
		s.onError = h
	}
}

// WithLostHandler sets the receiver notified when the open port drops
func WithLostHandler(h LostHandler) Option {
	return func(s *Session) {
		s.onLost = h
	}
}

// WithLogger sets the session logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// NewSession creates a closed session backed by local serial devices
func NewSession(opts ...Option) *Session {
	s := &Session{
		open:      SerialOpener,
		enumerate: SerialEnumerator,
		timeouts:  DefaultTimeouts(),
		log:       zerolog.Nop(),
		stats:     NewStatistics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPorts refreshes the available port list. The connection is untouched;
// if nothing is selected yet, the first port becomes the selection.
func (s *Session) ListPorts() ([]string, error) {
	ports, err := s.enumerate()
	if err != nil {
		return nil, err
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.available = append([]string(nil), ports...)
	if s.selected == "" && len(ports) > 0 {
		s.selected = ports[0]
	}
	return append([]string(nil), ports...), nil
}

// Available returns the port list from the last ListPorts call
func (s *Session) Available() []string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return append([]string(nil), s.available...)
}

// Select sets the port used by Connect
func (s *Session) Select(name string) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.selected = name
}

// Selected returns the port used by Connect
func (s *Session) Selected() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.selected
}

// IsOpen reports whether a port is open
func (s *Session) IsOpen() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.port != nil
}

// PortName returns the open port, or "" when closed
func (s *Session) PortName() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.portName
}

// Statistics returns the session's exchange statistics
func (s *Session) Statistics() *Statistics {
	return s.stats
}

// Connect opens the selected port
func (s *Session) Connect() error {
	name := s.Selected()
	if name == "" {
		return &PortUnavailableError{Err: errors.New("no serial port selected")}
	}
	return s.Open(name)
}

// Open opens name. Opening the port that is already open is a no-op; any
// other open port is closed first.
func (s *Session) Open(name string) error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.stateMu.RLock()
	current, currentName := s.port, s.portName
	s.stateMu.RUnlock()

	if current != nil {
		if currentName == name {
			s.log.Debug().Str("port", name).Msg("already connected")
			return nil
		}
		s.closeLocked()
	}

	port, err := s.open(name)
	if err != nil {
		s.log.Warn().Err(err).Str("port", name).Msg("open failed")
		return &PortUnavailableError{Port: name, Err: err}
	}

	s.stateMu.Lock()
	s.port = port
	s.portName = name
	s.selected = name
	s.stateMu.Unlock()

	if src, ok := port.(errorSource); ok {
		go s.watch(name, port, src.Errors())
	}

	s.log.Info().Str("port", name).Int("baud", BaudRate).Msg("connected")
	return nil
}

// Close closes the open port. Closing a closed session is a no-op.
func (s *Session) Close() error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	s.stateMu.Lock()
	port, name := s.port, s.portName
	s.port = nil
	s.portName = ""
	s.stateMu.Unlock()
	s.pendingWrite = nil

	if port == nil {
		return nil
	}

	s.log.Info().Str("port", name).Msg("disconnected")
	return port.Close()
}

// Exchange sends command as a checksummed frame and returns the trimmed
// reply. It blocks for up to Timeouts.Write + Timeouts.FirstByte plus the
// idle drain.
func (s *Session) Exchange(command string) (string, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.stateMu.RLock()
	port := s.port
	s.stateMu.RUnlock()

	if port == nil {
		return "", ErrNotConnected
	}

	wire := frame.Encode(command)
	start := time.Now()

	if err := s.settleWrite(port); err != nil {
		s.stats.Update(0, 0, time.Since(start), err)
		s.report(err)
		s.log.Debug().Err(err).Str("command", command).Msg("previous write still pending")
		return "", err
	}

	s.log.Debug().Str("frame", string(wire[:len(wire)-1])).Msg("sending command")

	x := newExchanger(port, s.timeouts)
	raw, err := x.run(wire)
	s.pendingWrite = x.pending
	s.stats.Update(len(wire), len(raw), time.Since(start), err)

	if x.drainErr != nil {
		s.report(x.drainErr)
	}
	if err != nil {
		s.report(err)
		s.log.Debug().Err(err).Str("command", command).Msg("exchange failed")
		return "", err
	}

	response := decodeResponse(raw)
	s.log.Debug().Str("command", command).Str("response", response).Msg("exchange complete")
	return response, nil
}

// settleWrite waits up to the write timeout for a write abandoned by an
// earlier exchange. Nothing else is written until it completes. Once it has,
// whatever the board sent back for it is read and discarded.
func (s *Session) settleWrite(port Port) error {
	if s.pendingWrite == nil {
		return nil
	}

	timer := time.NewTimer(s.timeouts.Write)
	defer timer.Stop()

	select {
	case err := <-s.pendingWrite:
		s.pendingWrite = nil
		if err != nil {
			s.log.Debug().Err(err).Msg("abandoned write failed")
		}
	case <-timer.C:
		return ErrWriteTimeout
	}

	return s.discardInput(port)
}

// discardInput reads until the line stays quiet for one idle timeout, bounded
// by the first-byte deadline
func (s *Session) discardInput(port Port) error {
	buf := make([]byte, readChunkSize)
	deadline := time.Now().Add(s.timeouts.FirstByte)
	for time.Now().Before(deadline) {
		if err := port.SetReadTimeout(s.timeouts.Idle); err != nil {
			return fmt.Errorf("set read timeout: %w", err)
		}
		n, err := port.Read(buf)
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		if n == 0 {
			return nil
		}
		s.log.Debug().Int("bytes", n).Msg("discarded stale reply")
	}
	return nil
}

// report forwards a transport error to the error handler unless it is a
// timeout, which the exchange loop already handles
func (s *Session) report(err error) {
	if s.onError == nil || !reportable(err) {
		return
	}
	s.onError(err)
}

// watch forwards errors raised by a port outside of Read/Write until the
// port stops producing them. A port that reported an error before going
// quiet is dead: the session closes it, unless it was already replaced.
func (s *Session) watch(name string, port Port, errs <-chan error) {
	var lost error
	for err := range errs {
		s.log.Warn().Err(err).Str("port", name).Msg("transport error")
		s.report(err)
		lost = err
	}
	if lost == nil {
		return
	}

	s.ioMu.Lock()
	s.stateMu.RLock()
	current := s.port
	s.stateMu.RUnlock()
	if current != port {
		s.ioMu.Unlock()
		return
	}
	s.closeLocked()
	s.ioMu.Unlock()

	s.log.Warn().Str("port", name).Msg("connection lost")
	if s.onLost != nil {
		s.onLost(name, lost)
	}
}
