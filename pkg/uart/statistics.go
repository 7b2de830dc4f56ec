// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Counters is a point-in-time copy of session statistics
type Counters struct {
	StartTime time.Time

	Exchanges     uint64
	Responses     uint64
	WriteTimeouts uint64
	NoResponses   uint64
	IOErrors      uint64
	BytesSent     uint64
	BytesReceived uint64

	// Round trip of answered exchanges
	TotalRoundTrip time.Duration
	MaxRoundTrip   time.Duration
}

// Statistics tracks exchange outcomes for a session
type Statistics struct {
	mu       sync.Mutex
	counters Counters
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{counters: Counters{StartTime: time.Now()}}
}

// Update records the outcome of one exchange
func (s *Statistics) Update(sent, received int, roundTrip time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &s.counters
	c.Exchanges++
	c.BytesSent += uint64(sent)
	c.BytesReceived += uint64(received)

	switch {
	case err == nil:
		c.Responses++
		c.TotalRoundTrip += roundTrip
		if roundTrip > c.MaxRoundTrip {
			c.MaxRoundTrip = roundTrip
		}
	case errors.Is(err, ErrWriteTimeout):
		c.WriteTimeouts++
	case errors.Is(err, ErrNoResponse):
		c.NoResponses++
	default:
		c.IOErrors++
	}
}

// Snapshot returns a copy of the current counters
func (s *Statistics) Snapshot() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	return s.Snapshot().String()
}

// MeanRoundTrip returns the average round trip of answered exchanges
func (c Counters) MeanRoundTrip() time.Duration {
	if c.Responses == 0 {
		return 0
	}
	return c.TotalRoundTrip / time.Duration(c.Responses)
}

// String returns a formatted statistics summary
func (c Counters) String() string {
	var answeredPercent float64
	if c.Exchanges > 0 {
		answeredPercent = float64(c.Responses) * 100.0 / float64(c.Exchanges)
	}

	elapsed := time.Since(c.StartTime)

	result := fmt.Sprintf("=== Exchange Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Commands Sent:   %8d\n", c.Exchanges)
	result += fmt.Sprintf("Answered:        %8d (%.1f%%)\n", c.Responses, answeredPercent)

	if c.WriteTimeouts > 0 {
		result += fmt.Sprintf("Write Timeouts:  %8d\n", c.WriteTimeouts)
	}
	if c.NoResponses > 0 {
		result += fmt.Sprintf("No Response:     %8d\n", c.NoResponses)
	}
	if c.IOErrors > 0 {
		result += fmt.Sprintf("I/O Errors:      %8d\n", c.IOErrors)
	}

	result += fmt.Sprintf("Bytes Out/In:    %8d / %d\n", c.BytesSent, c.BytesReceived)
	result += fmt.Sprintf("Round Trip:      %8s mean, %s max\n",
		c.MeanRoundTrip().Round(time.Millisecond), c.MaxRoundTrip.Round(time.Millisecond))
	result += "=========================================\n"

	return result
}
