// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_OpenSamePortIsNoop(t *testing.T) {
	opener := &fakeOpener{}
	s := NewSession(WithOpener(opener.Open))

	require.NoError(t, s.Open("/dev/ttyUSB0"))
	require.NoError(t, s.Open("/dev/ttyUSB0"))

	assert.Equal(t, []string{"/dev/ttyUSB0"}, opener.Opened())
	assert.True(t, s.IsOpen())
	assert.Equal(t, "/dev/ttyUSB0", s.PortName())
}

func TestSession_OpenOtherPortClosesFirst(t *testing.T) {
	opener := &fakeOpener{}
	s := NewSession(WithOpener(opener.Open))

	require.NoError(t, s.Open("/dev/ttyUSB0"))
	first := opener.ports["/dev/ttyUSB0"]

	require.NoError(t, s.Open("/dev/ttyUSB1"))

	assert.True(t, first.IsClosed())
	assert.Equal(t, "/dev/ttyUSB1", s.PortName())
	assert.Equal(t, "/dev/ttyUSB1", s.Selected())
}

func TestSession_OpenFailure(t *testing.T) {
	opener := &fakeOpener{err: fmt.Errorf("open /dev/ttyUSB9: %w", os.ErrNotExist)}
	s := NewSession(WithOpener(opener.Open))

	err := s.Open("/dev/ttyUSB9")

	require.ErrorIs(t, err, ErrPortUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var pue *PortUnavailableError
	require.True(t, errors.As(err, &pue))
	assert.Equal(t, "/dev/ttyUSB9", pue.Port)
	assert.Contains(t, err.Error(), "could not connect to /dev/ttyUSB9")
	assert.False(t, s.IsOpen())
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	opener := &fakeOpener{}
	s := NewSession(WithOpener(opener.Open))

	assert.NoError(t, s.Close())

	require.NoError(t, s.Open("/dev/ttyUSB0"))
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	assert.False(t, s.IsOpen())
	assert.Empty(t, s.PortName())
	assert.True(t, opener.ports["/dev/ttyUSB0"].IsClosed())
}

func TestSession_ListPorts(t *testing.T) {
	ports := []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}
	enumerate := func() ([]string, error) { return ports, nil }

	t.Run("selects first port when nothing is selected", func(t *testing.T) {
		s := NewSession(WithEnumerator(enumerate))

		got, err := s.ListPorts()

		require.NoError(t, err)
		assert.Equal(t, ports, got)
		assert.Equal(t, ports, s.Available())
		assert.Equal(t, "/dev/ttyUSB0", s.Selected())
	})

	t.Run("keeps an existing selection", func(t *testing.T) {
		s := NewSession(WithEnumerator(enumerate))
		s.Select("/dev/ttyUSB1")

		_, err := s.ListPorts()

		require.NoError(t, err)
		assert.Equal(t, "/dev/ttyUSB1", s.Selected())
	})

	t.Run("does not touch the connection", func(t *testing.T) {
		opener := &fakeOpener{}
		s := NewSession(WithEnumerator(enumerate), WithOpener(opener.Open))
		require.NoError(t, s.Open("/dev/ttyACM0"))

		_, err := s.ListPorts()

		require.NoError(t, err)
		assert.True(t, s.IsOpen())
		assert.Equal(t, "/dev/ttyACM0", s.PortName())
	})

	t.Run("empty list leaves selection empty", func(t *testing.T) {
		s := NewSession(WithEnumerator(func() ([]string, error) { return nil, nil }))

		got, err := s.ListPorts()

		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Empty(t, s.Selected())
	})

	t.Run("enumeration error", func(t *testing.T) {
		s := NewSession(WithEnumerator(func() ([]string, error) {
			return nil, errors.New("permission denied")
		}))

		_, err := s.ListPorts()

		assert.EqualError(t, err, "permission denied")
	})
}

func TestSession_ConnectWithoutSelection(t *testing.T) {
	opener := &fakeOpener{}
	s := NewSession(WithOpener(opener.Open))

	err := s.Connect()

	require.ErrorIs(t, err, ErrPortUnavailable)
	assert.Contains(t, err.Error(), "no serial port selected")
	assert.Empty(t, opener.Opened())
}

func TestSession_ConnectOpensSelection(t *testing.T) {
	opener := &fakeOpener{}
	s := NewSession(WithOpener(opener.Open))
	s.Select("/dev/ttyUSB1")

	require.NoError(t, s.Connect())

	assert.Equal(t, []string{"/dev/ttyUSB1"}, opener.Opened())
	assert.Equal(t, "/dev/ttyUSB1", s.PortName())
}

func TestSession_ExchangeAfterClose(t *testing.T) {
	port := newFakePort(func(string) []chunk { return []chunk{{0, "OK"}} })
	s := openSession(port)
	require.NoError(t, s.Close())

	_, err := s.Exchange("errlog 0")

	require.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, port.Written())
}

func TestReportable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", os.ErrDeadlineExceeded, false},
		{"wrapped deadline", fmt.Errorf("read failed: %w", os.ErrDeadlineExceeded), false},
		{"write timeout", ErrWriteTimeout, false},
		{"no response", ErrNoResponse, false},
		{"timeout interface", timeoutErr{}, false},
		{"device removed", errors.New("device removed"), true},
		{"bridge closed", ErrBridgeClosed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reportable(tt.err))
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
