package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/meshcore-go/meshcore/internal/session"
	"github.com/meshcore-go/meshcore/internal/transport"
)

// idleTransport never produces frames; it's only here so a Session can be
// constructed for handler tests that never call Session.Run.
type idleTransport struct {
	frames chan transport.Frame
}

func newIdleTransport() *idleTransport {
	return &idleTransport{frames: make(chan transport.Frame)}
}

func (t *idleTransport) Open() error                   { return nil }
func (t *idleTransport) Close() error                   { close(t.frames); return nil }
func (t *idleTransport) Send(transport.Frame) error     { return nil }
func (t *idleTransport) Receive() <-chan transport.Frame { return t.frames }
func (t *idleTransport) State() transport.State         { return transport.Connected }

func newTestServer() *Server {
	sess := session.New(newIdleTransport(), nil, nil, zap.NewNop())
	bus := NewEventBus()
	return &Server{sess: sess, bus: bus, log: zap.NewNop()}
}

func TestListContactsEmpty(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
	rec := httptest.NewRecorder()
	s.listContacts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["count"].(float64) != 0 {
		t.Errorf("count = %v, want 0", body["count"])
	}
}

func TestStatusReportsState(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	s.status(rec, req)

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["state"] != "idle" {
		t.Errorf("state = %v, want idle", body["state"])
	}
}

func TestSendMessageRequiresTarget(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", jsonBody(t, sendMessageRequest{Text: "hi"}))
	rec := httptest.NewRecorder()
	s.sendMessage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	s := newTestServer()
	idx := uint8(0)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", jsonBody(t, sendMessageRequest{ChannelIdx: &idx}))
	rec := httptest.NewRecorder()
	s.sendMessage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEventBusPublishReachesSubscriber(t *testing.T) {
	bus := NewEventBus()
	ch, unsub := bus.Subscribe()
	defer unsub()

	bus.Publish(session.Event{Type: session.EventRawRX})

	select {
	case evt := <-ch:
		if evt.Type != session.EventRawRX {
			t.Errorf("type = %v, want EventRawRX", evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(data)
}
