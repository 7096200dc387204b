package gateway

import (
	"sync"
	"time"

	"github.com/meshcore-go/meshcore/internal/session"
)

// subscriber holds a buffered channel for one WebSocket connection.
type subscriber struct {
	ch chan session.Event
}

// EventBus fans session events out to every registered WebSocket client.
// It implements session.Sink, so a Session can publish directly into it.
// Channel-based subscribers instead of raw *websocket.Conn keep the bus
// transport-agnostic and testable without a real WebSocket.
type EventBus struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewEventBus constructs a ready EventBus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a new client. Returns a receive channel and an
// unsubscribe function that must be called when the client disconnects
// (it closes the channel).
func (b *EventBus) Subscribe() (<-chan session.Event, func()) {
	s := &subscriber{ch: make(chan session.Event, 64)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.subs, s)
		b.mu.Unlock()
		close(s.ch)
	}
	return s.ch, unsub
}

// Publish sends an Event to all current subscribers. Slow consumers are
// skipped (their buffer is full) to avoid stalling the session dispatch
// loop. Dropped events are not replayed; contacts and channels can be
// re-read over REST, message history cannot.
func (b *EventBus) Publish(e session.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		select {
		case s.ch <- e:
		default:
			// slow consumer, drop silently
		}
	}
}

// Len returns the current subscriber count.
func (b *EventBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
