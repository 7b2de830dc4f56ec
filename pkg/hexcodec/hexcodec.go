// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hexcodec converts between raw bytes and the space-separated hex
// text used by the editable file view.
package hexcodec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformedHex is returned when hex text cannot be decoded
var ErrMalformedHex = errors.New("malformed hex")

const digits = "0123456789abcdef"

// Encode renders every byte as two lowercase hex digits separated by a
// single space
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(data)*3 - 1)
	for i, v := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(digits[v>>4])
		b.WriteByte(digits[v&0x0F])
	}
	return b.String()
}

// Decode strips all whitespace from text and parses the remaining hex pairs.
// Both upper and lower case digits are accepted.
func Decode(text string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	if len(cleaned)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of digits (%d)", ErrMalformedHex, len(cleaned))
	}

	data, err := hex.DecodeString(cleaned)
	if err != nil {
		var invalid hex.InvalidByteError
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("%w: invalid character %q", ErrMalformedHex, rune(invalid))
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	return data, nil
}

// Dump formats data as a canonical offset/hex/ASCII listing, 16 bytes per line
func Dump(data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 16 {
		fmt.Fprintf(&b, "%08x  ", i)

		for j := 0; j < 16; j++ {
			if i+j < len(data) {
				fmt.Fprintf(&b, "%02x ", data[i+j])
			} else {
				b.WriteString("   ")
			}
			if j == 7 {
				b.WriteByte(' ')
			}
		}

		b.WriteString(" |")
		for j := 0; j < 16 && i+j < len(data); j++ {
			c := data[i+j]
			if c >= 32 && c < 127 {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
