// Package session drives the companion protocol state machine: the
// connect-time handshake (device info, self info, contacts, channel
// discovery) and the steady-state dispatch of responses and pushes once
// the device is ready.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meshcore-go/meshcore/internal/codec"
	"github.com/meshcore-go/meshcore/internal/model"
	"github.com/meshcore-go/meshcore/internal/transport"
)

// State is a step in the session's init/sync state machine.
type State int32

const (
	StateIdle State = iota
	StateAwaitDeviceInfo
	StateAwaitSelfInfo
	StateAwaitContacts
	StateDiscoverChannels
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitDeviceInfo:
		return "await_device_info"
	case StateAwaitSelfInfo:
		return "await_self_info"
	case StateAwaitContacts:
		return "await_contacts"
	case StateDiscoverChannels:
		return "discover_channels"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Store is the persistence surface a Session uses. A nil Store (or a nil
// StoreOpener) disables persistence without changing protocol behavior.
type Store interface {
	SaveDeviceInfo(model.DeviceInfo, model.SelfInfo) error
	SaveContact(model.Contact) error
	SaveChannel(model.Channel) error
	SaveMessage(model.Message) error
	ClearAllData() error
}

// StoreOpener opens a Store scoped to the host's own public key, learned
// from RESP_SELF_INFO partway through the init handshake — mirroring the
// original client, which opens its per-device database as soon as it
// knows which device it is talking to.
type StoreOpener func(selfPublicKey []byte) (Store, error)

const appName = "meshcore-go"
const appVer = 1
const appTargetVer = 3

// Session owns one Transport and drives it through the companion
// protocol. It is single-threaded: all state transitions happen on the
// dispatch loop goroutine started by Run.
type Session struct {
	transport   transport.Transport
	storeOpener StoreOpener
	store       Store
	sink        Sink
	log         *zap.Logger

	mu    sync.RWMutex
	state State

	deviceInfo model.DeviceInfo
	selfInfo   model.SelfInfo
	contacts   map[string]model.Contact
	channels   map[uint8]model.Channel

	discoveringIdx uint8
	lastSentCmd    codec.CommandCode

	rawRX chan RawRXEvent
}

// RawRXEvent is the decoded PUSH_LOG_RX_DATA payload, exposed as an
// optional diagnostic stream.
type RawRXEvent struct {
	SNR     float32
	RSSI    int8
	Payload []byte
}

// New constructs a Session over transport t. storeOpener may be nil to
// disable persistence entirely. sink may be nil to disable event
// broadcast.
func New(t transport.Transport, storeOpener StoreOpener, sink Sink, log *zap.Logger) *Session {
	if sink == nil {
		sink = noopSink{}
	}
	return &Session{
		transport:   t,
		storeOpener: storeOpener,
		sink:        sink,
		log:         log,
		contacts:    make(map[string]model.Contact),
		channels:    make(map[uint8]model.Channel),
		rawRX:       make(chan RawRXEvent, 32),
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RawRX returns a channel of diagnostic RX telemetry pushes. Reading from
// it is optional; pushes are dropped if nobody is listening.
func (s *Session) RawRX() <-chan RawRXEvent {
	return s.rawRX
}

// Contacts returns a snapshot of known contacts, keyed by hex public key.
func (s *Session) Contacts() map[string]model.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Contact, len(s.contacts))
	for k, v := range s.contacts {
		out[k] = v
	}
	return out
}

// Channels returns a snapshot of discovered channels, keyed by index.
func (s *Session) Channels() map[uint8]model.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uint8]model.Channel, len(s.channels))
	for k, v := range s.channels {
		out[k] = v
	}
	return out
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()
	if prev != next {
		s.log.Info("session: state transition", zap.String("from", prev.String()), zap.String("to", next.String()))
		s.sink.Publish(Event{Type: EventStateChanged, Timestamp: time.Now().UTC(), Data: next})
	}
}

// Run opens the transport and drives the session until ctx is cancelled
// or the transport closes.
func (s *Session) Run(ctx context.Context) error {
	if err := s.transport.Open(); err != nil {
		s.setState(StateFailed)
		return newError(KindTransport, "Run", err)
	}
	defer s.transport.Close()

	if err := s.send(codec.BuildDeviceQuery(appTargetVer)); err != nil {
		s.setState(StateFailed)
		return err
	}
	s.setState(StateAwaitDeviceInfo)

	frames := s.transport.Receive()
	for {
		select {
		case <-ctx.Done():
			return newError(KindCancelled, "Run", ctx.Err())
		case frame, ok := <-frames:
			if !ok {
				return newError(KindTransport, "Run", fmt.Errorf("transport closed"))
			}
			s.handleFrame(frame.Data)
		}
	}
}

func (s *Session) send(cmd codec.Command) error {
	payload, err := cmd.Encode()
	if err != nil {
		return newError(KindInvalidArgument, "send", err)
	}
	if err := s.transport.Send(transport.Frame{Data: payload, Timestamp: time.Now().UTC()}); err != nil {
		return newError(sendErrorKind(err), "send", err)
	}
	s.mu.Lock()
	s.lastSentCmd = cmd.Code
	s.mu.Unlock()
	return nil
}

// sendErrorKind classifies a Transport.Send failure by the three failure
// modes its contract names: an oversize frame is the caller's mistake, a
// closed link isn't ready yet, anything else (including a partial write)
// is a transport-level failure.
func sendErrorKind(err error) Kind {
	switch {
	case errors.Is(err, transport.ErrFrameTooLarge):
		return KindInvalidArgument
	case errors.Is(err, transport.ErrNotOpen):
		return KindNotReady
	default:
		return KindTransport
	}
}

func (s *Session) handleFrame(frame []byte) {
	if codec.IsPush(frame) {
		s.handlePush(frame)
		return
	}
	s.handleResponse(frame)
}
