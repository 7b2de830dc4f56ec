// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package frame builds and parses checksummed command frames for the
// debug UART.
//
// Wire format:
//
//	{command}:{XX}\n
//
// XX is the low byte of the sum of the command's UTF-16 code units,
// rendered as two uppercase hex digits.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf16"
)

const (
	Separator  = ':'
	Terminator = '\n'

	// checksumDigits is the width of the rendered checksum
	checksumDigits = 2
)

// ErrMalformedFrame is returned by Parse when the frame layout is wrong
var ErrMalformedFrame = errors.New("malformed frame")

// ChecksumError indicates a frame whose checksum does not match its command
type ChecksumError struct {
	Command  string
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %q: expected 0x%02X, got 0x%02X", e.Command, e.Expected, e.Actual)
}

// Checksum computes the mod-256 sum of the command's UTF-16 code units
func Checksum(command string) byte {
	var sum uint32
	for _, unit := range utf16.Encode([]rune(command)) {
		sum += uint32(unit)
	}
	return byte(sum & 0xFF)
}

// Encode returns the wire bytes for command, ready for transmission
func Encode(command string) []byte {
	out := make([]byte, 0, len(command)+checksumDigits+2)
	out = append(out, command...)
	out = append(out, Separator)
	out = fmt.Appendf(out, "%02X", Checksum(command))
	out = append(out, Terminator)
	return out
}

// Parse validates a wire frame and returns the command it carries.
// The trailing terminator is optional so that line-split input can be fed
// directly.
func Parse(wire []byte) (string, error) {
	wire = bytes.TrimSuffix(wire, []byte{Terminator})
	wire = bytes.TrimSuffix(wire, []byte{'\r'})

	sep := bytes.LastIndexByte(wire, Separator)
	if sep < 0 {
		return "", fmt.Errorf("%w: missing '%c' separator", ErrMalformedFrame, Separator)
	}

	digits := wire[sep+1:]
	if len(digits) != checksumDigits {
		return "", fmt.Errorf("%w: checksum must be %d hex digits, got %q", ErrMalformedFrame, checksumDigits, digits)
	}

	actual, err := strconv.ParseUint(string(digits), 16, 8)
	if err != nil {
		return "", fmt.Errorf("%w: invalid checksum %q", ErrMalformedFrame, digits)
	}

	command := string(wire[:sep])
	if expected := Checksum(command); expected != byte(actual) {
		return "", &ChecksumError{Command: command, Expected: expected, Actual: byte(actual)}
	}

	return command, nil
}
