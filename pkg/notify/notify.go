// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package notify carries status and error events from the workbench to
// whatever front end is listening.
package notify

import (
	"sync"
	"time"
)

// Kind identifies an event
type Kind int

const (
	Status Kind = iota
	Error
	PortsChanged
	ConnectionChanged
	DirectoryRefreshed
	FileOpened
	OnlineResult
	LogsCollected
	LogsCleared
)

var kindNames = map[Kind]string{
	Status:             "status",
	Error:              "error",
	PortsChanged:       "ports",
	ConnectionChanged:  "connection",
	DirectoryRefreshed: "directory",
	FileOpened:         "file",
	OnlineResult:       "online",
	LogsCollected:      "logs",
	LogsCleared:        "logs-cleared",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one notification. Error events carry a title and message; the
// others carry the status text in Message.
type Event struct {
	Kind    Kind
	Title   string
	Message string
	OK      bool
	Time    time.Time
}

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	nextID  int
	closed  bool
	dropped uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel receiving future events and a function that
// cancels the subscription and closes the channel
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers e to every subscriber that has room
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped++
		}
	}
}

// Dropped returns how many deliveries were skipped on full subscribers
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close closes every subscriber channel. Later publishes are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
