// Command meshcored is the MeshCore companion daemon: it opens a
// transport to a radio, drives the companion protocol session, persists
// contacts/channels/messages, and serves a REST+WebSocket view of it all.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/meshcore-go/meshcore/internal/config"
	"github.com/meshcore-go/meshcore/internal/gateway"
	"github.com/meshcore-go/meshcore/internal/session"
	"github.com/meshcore-go/meshcore/internal/store"
	"github.com/meshcore-go/meshcore/internal/transport"
)

func main() {
	configPath := flag.String("config", "meshcored.json", "path to the JSON settings file")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "meshcored: logger init:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*configPath, log); err != nil {
		log.Fatal("meshcored: fatal", zap.Error(err))
	}
}

func run(configPath string, log *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tr, err := buildTransport(cfg, log)
	if err != nil {
		return fmt.Errorf("build transport: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opener := func(selfPublicKey []byte) (session.Store, error) {
		return store.Open(cfg.DataDir, selfPublicKey)
	}

	bus := gateway.NewEventBus()
	sess := session.New(tr, opener, bus, log)
	gw := gateway.New(&cfg, sess, bus, log)

	errCh := make(chan error, 2)
	go func() { errCh <- sess.Run(ctx) }()
	go func() { errCh <- gw.Start(ctx) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func buildTransport(cfg config.Config, log *zap.Logger) (transport.Transport, error) {
	switch cfg.Transport {
	case config.TransportSerial:
		return transport.NewSerialTransport(cfg.SerialPort, cfg.SerialBaud, log), nil
	case config.TransportBLE:
		adapter := bluetooth.DefaultAdapter
		if err := adapter.Enable(); err != nil {
			return nil, fmt.Errorf("enable ble adapter: %w", err)
		}
		addr, err := parseBLEAddress(cfg.BLEAddress)
		if err != nil {
			return nil, err
		}
		return transport.NewBLETransport(adapter, addr, log), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func parseBLEAddress(s string) (bluetooth.Address, error) {
	var addr bluetooth.Address
	mac, err := bluetooth.ParseMAC(s)
	if err != nil {
		return addr, fmt.Errorf("parse ble address %q: %w", s, err)
	}
	addr.MACAddress.MAC = mac
	return addr, nil
}
