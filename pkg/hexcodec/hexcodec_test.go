// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexcodec

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"single byte", []byte{0x0A}, "0a"},
		{"multiple bytes", []byte{0x00, 0xFF, 0x7E, 0x10}, "00 ff 7e 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{"spaced lowercase", "00 ff 7e", []byte{0x00, 0xFF, 0x7E}, false},
		{"uppercase", "DEADBEEF", []byte{0xDE, 0xAD, 0xBE, 0xEF}, false},
		{"mixed whitespace", " 01\t02\n03\r\n04 ", []byte{1, 2, 3, 4}, false},
		{"empty", "   ", []byte{}, false},
		{"odd length", "0 1 2", nil, true},
		{"non hex character", "0g", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedHex)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_RoundTripRandom(t *testing.T) {
	seed := time.Now().UnixNano()
	if env := os.Getenv("FUZZ_SEED"); env != "" {
		if s, err := strconv.ParseInt(env, 10, 64); err == nil {
			seed = s
		}
	}
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < 500; i++ {
		data := make([]byte, rng.Intn(300))
		rng.Read(data)

		got, err := Decode(Encode(data))
		require.NoError(t, err, "round %d", i)
		assert.Equal(t, data, got, "round %d", i)
	}
}

func TestDump(t *testing.T) {
	out := Dump([]byte("PS5 NOR\x00\x01"))
	assert.Equal(t, "00000000  50 53 35 20 4e 4f 52 00  01                       |PS5 NOR..|\n", out)
}
