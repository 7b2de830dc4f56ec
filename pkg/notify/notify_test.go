// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe(4)
	b, cancelB := bus.Subscribe(4)
	defer cancelA()
	defer cancelB()

	bus.Publish(Event{Kind: Status, Message: "Serial ports refreshed.", OK: true})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case e := <-ch:
			assert.Equal(t, Status, e.Kind)
			assert.Equal(t, "Serial ports refreshed.", e.Message)
			assert.False(t, e.Time.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(Event{Kind: Status})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Len(t, ch, 1)
	assert.Equal(t, uint64(9), bus.Dropped())
}

func TestBus_Cancel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)

	cancel()
	cancel()
	bus.Publish(Event{Kind: Error})

	_, open := <-ch
	assert.False(t, open)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)

	bus.Close()
	bus.Close()
	cancel()
	bus.Publish(Event{Kind: Status})

	_, open := <-ch
	assert.False(t, open)

	late, _ := bus.Subscribe(1)
	_, open = <-late
	require.False(t, open, "subscribing to a closed bus yields a closed channel")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "status", Status.String())
	assert.Equal(t, "logs-cleared", LogsCleared.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
