package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func TestHub(t *testing.T) {
	t.Run("should deliver broadcasts to registered clients", func(t *testing.T) {
		hub := startHub(t)
		first, second := NewClient(), NewClient()
		hub.Register(first)
		hub.Register(second)

		hub.Broadcast([]byte("hello"))

		for _, c := range []*Client{first, second} {
			select {
			case msg := <-c.Send():
				assert.Equal(t, "hello", string(msg))
			case <-time.After(time.Second):
				t.Fatal("message not delivered")
			}
		}
		assert.Equal(t, 2, hub.ClientCount())
	})

	t.Run("should close channel on unregister", func(t *testing.T) {
		hub := startHub(t)
		c := NewClient()
		hub.Register(c)

		hub.Unregister(c)

		select {
		case _, ok := <-c.Send():
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel not closed")
		}
		assert.Equal(t, 0, hub.ClientCount())
	})

	t.Run("should drop clients that do not read", func(t *testing.T) {
		hub := startHub(t)
		c := NewClient()
		hub.Register(c)

		for i := 0; i <= clientBuffer; i++ {
			hub.Broadcast([]byte("tick"))
		}

		require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("should not block once stopped", func(t *testing.T) {
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			hub.Run(ctx)
			close(stopped)
		}()
		connected := NewClient()
		hub.Register(connected)
		cancel()
		<-stopped

		late := NewClient()
		hub.Register(late)
		hub.Unregister(connected)

		_, ok := <-late.Send()
		assert.False(t, ok)
		_, ok = <-connected.Send()
		assert.False(t, ok)
	})
}
