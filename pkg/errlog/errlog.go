// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package errlog reads and clears the board's error log over the UART
// command channel.
package errlog

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// FirstSlot and LastSlot bound the log slots read by CollectAll
	FirstSlot = 0
	LastSlot  = 10

	clearCommand = "clear"
)

// ErrNotConnected is returned when no serial session is open
var ErrNotConnected = errors.New("serial port not connected")

// Exchanger sends one command and returns the board's reply
type Exchanger interface {
	Exchange(command string) (string, error)
	IsOpen() bool
}

// Entry is one command and the reply (or failure text) it produced
type Entry struct {
	Command  string
	Response string
	Err      error
}

// Report is the ordered result of a full log read
type Report struct {
	Entries        []Entry
	PartialFailure bool
}

// String renders the entries in command order
func (r Report) String() string {
	var b strings.Builder
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "Command: %s\nResponse: %s\n\n", e.Command, e.Response)
	}
	return b.String()
}

// Command returns the wire command for a log slot
func Command(slot int) string {
	return fmt.Sprintf("errlog %d", slot)
}

// CollectAll reads every log slot in order. A failing slot is recorded as
// "Error: ..." and the loop moves on; PartialFailure is set if any reply
// carries an error marker.
func CollectAll(x Exchanger) (Report, error) {
	if !x.IsOpen() {
		return Report{}, ErrNotConnected
	}

	report := Report{Entries: make([]Entry, 0, LastSlot-FirstSlot+1)}
	for slot := FirstSlot; slot <= LastSlot; slot++ {
		command := Command(slot)
		response, err := x.Exchange(command)
		if err != nil {
			response = "Error: " + err.Error()
		}

		report.Entries = append(report.Entries, Entry{
			Command:  command,
			Response: response,
			Err:      err,
		})
		if IsFailure(response) {
			report.PartialFailure = true
		}
	}
	return report, nil
}

// Clear erases the board's error log and returns its reply
func Clear(x Exchanger) (string, error) {
	if !x.IsOpen() {
		return "", ErrNotConnected
	}
	return x.Exchange("errlog " + clearCommand)
}

// IsFailure reports whether a reply starts with an error marker: "Error"
// for a failed exchange, or the board's "NG" negative acknowledgement
func IsFailure(response string) bool {
	return strings.HasPrefix(response, "Error") || strings.HasPrefix(response, "NG")
}
