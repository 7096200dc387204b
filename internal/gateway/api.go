// Package gateway is the thin external-facing data surface over a
// Session: a REST API for contacts/channels/messages, and a WebSocket
// stream of session events. It is not the interactive text UI — no
// command dispatch, no prompt rendering, just a data plane a separate
// front end (or a script) can poll or subscribe to.
package gateway

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/meshcore-go/meshcore/internal/session"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// Server holds the HTTP handler dependencies.
type Server struct {
	sess *session.Session
	bus  *EventBus
	log  *zap.Logger
}

// NewRouter wires every /api/v1/* route and returns a http.Handler.
func NewRouter(sess *session.Session, bus *EventBus, log *zap.Logger) http.Handler {
	s := &Server{sess: sess, bus: bus, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/contacts", s.listContacts)
	mux.HandleFunc("GET /api/v1/channels", s.listChannels)
	mux.HandleFunc("GET /api/v1/messages", s.listMessages)
	mux.HandleFunc("POST /api/v1/messages", s.sendMessage)
	mux.HandleFunc("GET /api/v1/status", s.status)
	mux.HandleFunc("GET /api/v1/events", s.eventStream)

	return withLogging(log, mux)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts := s.sess.Contacts()
	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

func (s *Server) listChannels(w http.ResponseWriter, r *http.Request) {
	channels := s.sess.Channels()
	writeJSON(w, http.StatusOK, map[string]any{
		"channels": channels,
		"count":    len(channels),
	})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := queryInt(r, "limit", 50, 1, 500)
	// Live message history is delivered via the event stream; this
	// endpoint is a placeholder for a future query into internal/store
	// directly from the gateway once it is given a *store.DB reference.
	writeJSON(w, http.StatusOK, map[string]any{"messages": []any{}, "limit": limit})
}

type sendMessageRequest struct {
	Text       string `json:"text"`
	ChannelIdx *uint8 `json:"channel_idx,omitempty"`
	ToPubKey   string `json:"to_pubkey,omitempty"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text must not be empty", http.StatusBadRequest)
		return
	}

	var err error
	switch {
	case req.ChannelIdx != nil:
		err = s.sess.SendChannelText(*req.ChannelIdx, req.Text)
	case req.ToPubKey != "":
		prefix, decodeErr := hex.DecodeString(req.ToPubKey)
		if decodeErr != nil {
			http.Error(w, "to_pubkey must be hex", http.StatusBadRequest)
			return
		}
		err = s.sess.SendContactText(prefix, req.Text)
	default:
		http.Error(w, "either channel_idx or to_pubkey is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Warn("gateway: send message", zap.Error(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "sent"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":       s.sess.State().String(),
		"time":        time.Now().UTC().Format(time.RFC3339),
		"subscribers": s.bus.Len(),
	})
}

func (s *Server) eventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("gateway: ws upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ch, unsub := s.bus.Subscribe()
	defer unsub()

	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()

	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				s.log.Debug("gateway: ws write", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Debug("gateway",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.code),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	code int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.code = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func queryInt(r *http.Request, key string, def, min, max int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return def, nil
	}
	return n, nil
}
