package ws

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/scorewire/warroom/internal/domain"
)

// memBus is an in-memory SignalBus whose subscription channels the test
// feeds directly.
type memBus struct {
	mu   sync.Mutex
	subs map[string]chan domain.BusMessage
}

func newMemBus() *memBus {
	return &memBus{subs: map[string]chan domain.BusMessage{}}
}

func (b *memBus) Publish(context.Context, string, []byte) error { return nil }

func (b *memBus) Subscribe(_ context.Context, channel string) (<-chan domain.BusMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan domain.BusMessage, 8)
	b.subs[channel] = ch
	return ch, nil
}

// sub waits for the hub to open its subscription on the given channel.
func (b *memBus) sub(t *testing.T, channel string) chan domain.BusMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		ch, ok := b.subs[channel]
		b.mu.Unlock()
		if ok {
			return ch
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never subscribed to %s", channel)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(h *Hub, subs ...string) *client {
	c := &client{
		hub:  h,
		send: make(chan []byte, 8),
		subs: make(map[string]bool),
	}
	for _, s := range subs {
		c.subs[s] = true
	}
	return c
}

func recv(t *testing.T, c *client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client delivery")
		return nil
	}
}

func TestNarrowedClientReceivesItsSessionSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newMemBus()
	h := NewHub(bus, discardLogger())
	go h.Run(ctx)

	sessionSub := bus.sub(t, "session:*")

	// A client connected with ?session=abc subscribes to the concrete
	// channel, not the wildcard.
	c := newTestClient(h, "session:abc", "leaderboard")
	h.register <- c

	sessionSub <- domain.BusMessage{Channel: "session:abc", Payload: []byte(`{"id":"abc"}`)}
	if got := string(recv(t, c)); got != `{"id":"abc"}` {
		t.Fatalf("payload = %s", got)
	}

	// Snapshots for other sessions stay out.
	sessionSub <- domain.BusMessage{Channel: "session:other", Payload: []byte(`{"id":"other"}`)}
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected delivery for foreign session: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWildcardClientReceivesAllSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newMemBus()
	h := NewHub(bus, discardLogger())
	go h.Run(ctx)

	sessionSub := bus.sub(t, "session:*")
	lbSub := bus.sub(t, "leaderboard")

	c := newTestClient(h, defaultChannels...)
	h.register <- c

	sessionSub <- domain.BusMessage{Channel: "session:abc", Payload: []byte(`1`)}
	if got := string(recv(t, c)); got != `1` {
		t.Fatalf("session payload = %s", got)
	}

	lbSub <- domain.BusMessage{Channel: "leaderboard", Payload: []byte(`2`)}
	if got := string(recv(t, c)); got != `2` {
		t.Fatalf("leaderboard payload = %s", got)
	}
}
