// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"sync"
	"time"

	"github.com/Thermoquad/uartbench/pkg/frame"
)

// chunk is one burst of reply bytes, sent delay after the previous one
type chunk struct {
	delay time.Duration
	data  string
}

// fakePort simulates the board: every written frame is parsed and answered
// with the chunks returned by respond
type fakePort struct {
	mu      sync.Mutex
	written []string
	closed  bool

	respond    func(command string) []chunk
	drainDelay time.Duration
	readErr    error

	// stall delays the next Write once
	stall      time.Duration
	writers    int
	maxWriters int

	rx      chan []byte
	pending []byte
	timeout time.Duration
}

func newFakePort(respond func(command string) []chunk) *fakePort {
	return &fakePort{
		respond: respond,
		rx:      make(chan []byte, 64),
		timeout: -1,
	}
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	f.writers++
	if f.writers > f.maxWriters {
		f.maxWriters = f.writers
	}
	stall := f.stall
	f.stall = 0
	f.mu.Unlock()

	time.Sleep(stall)

	f.mu.Lock()
	f.written = append(f.written, string(p))
	f.writers--
	f.mu.Unlock()

	command, err := frame.Parse(p)
	if err != nil || f.respond == nil {
		return len(p), nil
	}

	chunks := f.respond(command)
	go func() {
		for _, c := range chunks {
			time.Sleep(c.delay)
			f.rx <- []byte(c.data)
		}
	}()
	return len(p), nil
}

func (f *fakePort) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.pending) > 0 {
		n := copy(p, f.pending)
		f.pending = f.pending[n:]
		return n, nil
	}

	var expired <-chan time.Time
	if f.timeout >= 0 {
		timer := time.NewTimer(f.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case data := <-f.rx:
		n := copy(p, data)
		f.pending = data[n:]
		return n, nil
	case <-expired:
		return 0, nil
	}
}

func (f *fakePort) SetReadTimeout(timeout time.Duration) error {
	f.timeout = timeout
	return nil
}

func (f *fakePort) Drain() error {
	time.Sleep(f.drainDelay)
	return nil
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePort) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.written...)
}

func (f *fakePort) MaxConcurrentWrites() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxWriters
}

func (f *fakePort) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeOpener hands out fake ports by name and counts open calls
type fakeOpener struct {
	mu     sync.Mutex
	ports  map[string]*fakePort
	opened []string
	err    error
}

func (o *fakeOpener) Open(name string) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened = append(o.opened, name)
	if o.err != nil {
		return nil, o.err
	}
	if p, ok := o.ports[name]; ok {
		return p, nil
	}
	p := newFakePort(nil)
	if o.ports == nil {
		o.ports = make(map[string]*fakePort)
	}
	o.ports[name] = p
	return p, nil
}

func (o *fakeOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// testTimeouts keeps the two-phase behaviour while running quickly
func testTimeouts() Timeouts {
	return Timeouts{
		Write:     50 * time.Millisecond,
		FirstByte: 300 * time.Millisecond,
		Idle:      40 * time.Millisecond,
	}
}

func openSession(port *fakePort, opts ...Option) *Session {
	opener := &fakeOpener{ports: map[string]*fakePort{"/dev/ttyUSB0": port}}
	opts = append([]Option{WithOpener(opener.Open), WithTimeouts(testTimeouts())}, opts...)
	s := NewSession(opts...)
	if err := s.Open("/dev/ttyUSB0"); err != nil {
		panic(err)
	}
	return s
}
