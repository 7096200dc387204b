package session

import (
	"time"

	"github.com/meshcore-go/meshcore/internal/codec"
)

// EventType identifies the category of a session Event.
type EventType string

const (
	EventStateChanged      EventType = "state_changed"
	EventNewMessage        EventType = "new_message"
	EventContactUpdated    EventType = "contact_updated"
	EventChannelDiscovered EventType = "channel_discovered"
	EventRawRX             EventType = "raw_rx"
	EventError             EventType = "error"
)

// Event is a broadcastable notification a Session emits for external
// observers (the gateway's WebSocket stream, tests, a future CLI).
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      any
}

// Sink receives Events as the session produces them. Implementations must
// not block: a Session stalls on a blocking Publish.
type Sink interface {
	Publish(Event)
}

// DeviceError is the EventError payload: a steady-state ERR response,
// correlated to the command the session last sent since the radio's ERR
// frames carry no request ID of their own.
type DeviceError struct {
	Code        codec.ErrorCode
	LastCommand codec.CommandCode
	Err         error
}

// noopSink discards everything. Used when a Session is constructed
// without an external Sink.
type noopSink struct{}

func (noopSink) Publish(Event) {}
