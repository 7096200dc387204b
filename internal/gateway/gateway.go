package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/meshcore-go/meshcore/internal/config"
	"github.com/meshcore-go/meshcore/internal/session"
)

// Gateway serves the REST+WebSocket front end over a running Session.
// It does not own the Session's lifecycle — the caller runs Session.Run
// separately and passes a Sink (this Gateway's EventBus) into it.
type Gateway struct {
	cfg    *config.Config
	log    *zap.Logger
	bus    *EventBus
	server *http.Server
}

// New constructs a Gateway without starting it. bus should already have
// been passed as the Sink when constructing the Session this Gateway
// serves, so events published during the handshake aren't missed.
func New(cfg *config.Config, sess *session.Session, bus *EventBus, log *zap.Logger) *Gateway {
	router := NewRouter(sess, bus, log)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Gateway{cfg: cfg, log: log, bus: bus, server: srv}
}

// Start listens and serves HTTP until ctx is cancelled, then shuts down
// gracefully.
func (g *Gateway) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("gateway: listen %s: %w", g.cfg.ListenAddr, err)
	}
	g.log.Info("gateway: listening", zap.String("addr", ln.Addr().String()))

	srvErr := make(chan error, 1)
	go func() {
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		g.log.Info("gateway: context cancelled, shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return g.server.Shutdown(shutCtx)
	case err := <-srvErr:
		return err
	}
}
