package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemoryBusDeliversToSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	bus.Publish(Event{ID: "e-1", Type: TypeUserLogin, Payload: UserPayload{Username: "alice"}})

	select {
	case e := <-events:
		require.Equal(t, TypeUserLogin, e.Type)
		payload, ok := e.Payload.(UserPayload)
		require.True(t, ok)
		require.Equal(t, "alice", payload.Username)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestInMemoryBusDoesNotBlockOnSlowSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	_, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	// Overflow the subscriber buffer; Publish must stay non-blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			bus.Publish(Event{ID: "e", Type: TypeUserLogin})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestInMemoryBusUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	events, unsubscribe := bus.Subscribe()
	unsubscribe()

	_, open := <-events
	require.False(t, open)

	// A second call is a no-op.
	unsubscribe()
}
