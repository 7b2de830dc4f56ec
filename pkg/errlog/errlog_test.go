// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package errlog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedExchanger struct {
	open     bool
	replies  map[string]string
	failures map[string]error
	sent     []string
}

func (s *scriptedExchanger) IsOpen() bool { return s.open }

func (s *scriptedExchanger) Exchange(command string) (string, error) {
	s.sent = append(s.sent, command)
	if err, ok := s.failures[command]; ok {
		return "", err
	}
	if reply, ok := s.replies[command]; ok {
		return reply, nil
	}
	return "OK 00000000:3A", nil
}

func TestCommand(t *testing.T) {
	assert.Equal(t, "errlog 0", Command(0))
	assert.Equal(t, "errlog 10", Command(10))
}

func TestCollectAll_NotConnected(t *testing.T) {
	x := &scriptedExchanger{}

	_, err := CollectAll(x)

	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, x.sent)
}

func TestCollectAll_AllSlotsInOrder(t *testing.T) {
	x := &scriptedExchanger{open: true}

	report, err := CollectAll(x)

	require.NoError(t, err)
	require.Len(t, x.sent, 11)
	require.Len(t, report.Entries, 11)
	for i := 0; i <= 10; i++ {
		want := fmt.Sprintf("errlog %d", i)
		assert.Equal(t, want, x.sent[i])
		assert.Equal(t, want, report.Entries[i].Command)
	}
	assert.False(t, report.PartialFailure)
}

func TestCollectAll_FailuresDoNotAbort(t *testing.T) {
	x := &scriptedExchanger{
		open: true,
		failures: map[string]error{
			"errlog 3": errors.New("no response from serial device"),
		},
		replies: map[string]string{
			"errlog 7": "NG 00000001",
		},
	}

	report, err := CollectAll(x)

	require.NoError(t, err)
	assert.Len(t, x.sent, 11)
	assert.True(t, report.PartialFailure)
	assert.Equal(t, "Error: no response from serial device", report.Entries[3].Response)
	assert.Error(t, report.Entries[3].Err)
	assert.Equal(t, "NG 00000001", report.Entries[7].Response)
	assert.NoError(t, report.Entries[7].Err)
	assert.Equal(t, "errlog 10", report.Entries[10].Command)
}

func TestReport_String(t *testing.T) {
	report := Report{Entries: []Entry{
		{Command: "errlog 0", Response: "OK 80800001"},
		{Command: "errlog 1", Response: "Error: timeout"},
	}}

	want := "Command: errlog 0\nResponse: OK 80800001\n\n" +
		"Command: errlog 1\nResponse: Error: timeout\n\n"
	assert.Equal(t, want, report.String())
}

func TestClear(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		x := &scriptedExchanger{}
		_, err := Clear(x)
		assert.ErrorIs(t, err, ErrNotConnected)
		assert.Empty(t, x.sent)
	})

	t.Run("sends a single clear", func(t *testing.T) {
		x := &scriptedExchanger{open: true, replies: map[string]string{"errlog clear": "OK"}}
		got, err := Clear(x)
		require.NoError(t, err)
		assert.Equal(t, "OK", got)
		assert.Equal(t, []string{"errlog clear"}, x.sent)
	})
}

func TestIsFailure(t *testing.T) {
	tests := []struct {
		response string
		want     bool
	}{
		{"OK 00000000:3A", false},
		{"NG 00000001", true},
		{"Error: no response", true},
		{"", false},
		{"ok NG", false},
	}
	for _, tt := range tests {
		t.Run(tt.response, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFailure(tt.response))
		})
	}
}
