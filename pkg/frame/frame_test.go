// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		command string
		want    byte
	}{
		// e(101) r(114) r(114) l(108) o(111) g(103) ' '(32) 0(48) = 731 -> 0xDB
		{"errlog 0", 0xDB},
		// 683 + '1'(49) + '0'(48) = 780 -> 0x0C, exercises zero padding
		{"errlog 10", 0x0C},
		{"errlog clear", 0xB2},
		{"", 0x00},
		// UTF-16 code unit of U+00E9 is 0xE9
		{"é", 0xE9},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.command))
		})
	}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "errlog 0:DB\n", string(Encode("errlog 0")))
	assert.Equal(t, "errlog 10:0C\n", string(Encode("errlog 10")))
	assert.Equal(t, "errlog clear:B2\n", string(Encode("errlog clear")))
}

func TestEncode_RecomputedAfterEdit(t *testing.T) {
	cmd := "errlog 1"
	first := string(Encode(cmd))
	cmd = "errlog 2"
	second := string(Encode(cmd))

	assert.NotEqual(t, first, second)
	assert.Equal(t, "errlog 2:DD\n", second)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		wire    string
		want    string
		wantErr error
	}{
		{"valid with terminator", "errlog 0:DB\n", "errlog 0", nil},
		{"valid without terminator", "errlog clear:B2", "errlog clear", nil},
		{"crlf", "errlog 0:DB\r\n", "errlog 0", nil},
		{"command containing separator", "a:b:FD", "a:b", nil},
		{"missing separator", "errlog 0\n", "", ErrMalformedFrame},
		{"short checksum", "errlog 0:D\n", "", ErrMalformedFrame},
		{"non hex checksum", "errlog 0:ZZ\n", "", ErrMalformedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.wire))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_ChecksumMismatch(t *testing.T) {
	_, err := Parse([]byte("errlog 0:DC\n"))

	var csErr *ChecksumError
	require.True(t, errors.As(err, &csErr))
	assert.Equal(t, byte(0xDB), csErr.Expected)
	assert.Equal(t, byte(0xDC), csErr.Actual)
}

func TestParse_RoundTrip(t *testing.T) {
	for _, cmd := range []string{"errlog 0", "errlog 10", "version", "errlog clear"} {
		got, err := Parse(Encode(cmd))
		require.NoError(t, err)
		assert.Equal(t, cmd, got)
	}
}
