package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/meshcore-go/meshcore/internal/codec"
)

// Nordic UART Service UUIDs: the GATT service MeshCore BLE firmware
// exposes for the companion protocol.
var (
	uartServiceUUID = bluetooth.NewUUID([16]byte{
		0x6e, 0x40, 0x00, 0x01, 0xb5, 0xa3, 0xf3, 0x93,
		0xe0, 0xa9, 0xe5, 0x0e, 0x24, 0xdc, 0xca, 0x9e,
	})
	uartRXCharUUID = bluetooth.NewUUID([16]byte{ // app writes here
		0x6e, 0x40, 0x00, 0x02, 0xb5, 0xa3, 0xf3, 0x93,
		0xe0, 0xa9, 0xe5, 0x0e, 0x24, 0xdc, 0xca, 0x9e,
	})
	uartTXCharUUID = bluetooth.NewUUID([16]byte{ // device notifies here
		0x6e, 0x40, 0x00, 0x03, 0xb5, 0xa3, 0xf3, 0x93,
		0xe0, 0xa9, 0xe5, 0x0e, 0x24, 0xdc, 0xca, 0x9e,
	})
)

const bleFrameChanSize = 256

// BLETransport connects to a MeshCore device over BLE, using the Nordic
// UART Service. Each GATT notification or write is one complete frame —
// there is no serial-style length prefix to strip.
type BLETransport struct {
	adapter    *bluetooth.Adapter
	address    bluetooth.Address
	log        *zap.Logger
	frames     chan Frame
	state      atomic.Int32

	mu     sync.Mutex
	device *bluetooth.Device
	rxChar bluetooth.DeviceCharacteristic
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBLETransport constructs a BLETransport targeting a specific device
// address, discovered beforehand via Scan.
func NewBLETransport(adapter *bluetooth.Adapter, address bluetooth.Address, log *zap.Logger) *BLETransport {
	t := &BLETransport{
		adapter: adapter,
		address: address,
		log:     log,
		frames:  make(chan Frame, bleFrameChanSize),
	}
	t.state.Store(int32(Disconnected))
	return t
}

// Scan discovers nearby BLE peripherals advertising the Nordic UART
// Service, for up to timeout, and returns their addresses.
func Scan(adapter *bluetooth.Adapter, timeout time.Duration) ([]bluetooth.Address, error) {
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: enable adapter: %w", err)
	}
	var found []bluetooth.Address
	seen := map[string]bool{}
	deadline := time.Now().Add(timeout)
	err := adapter.Scan(func(a *bluetooth.Adapter, res bluetooth.ScanResult) {
		if time.Now().After(deadline) {
			a.StopScan()
			return
		}
		if !res.HasServiceUUID(uartServiceUUID) {
			return
		}
		key := res.Address.String()
		if seen[key] {
			return
		}
		seen[key] = true
		found = append(found, res.Address)
	})
	if err != nil {
		return nil, fmt.Errorf("ble: scan: %w", err)
	}
	return found, nil
}

func (t *BLETransport) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if State(t.state.Load()) == Connected {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)
	go t.connectLoop(ctx)
	return nil
}

func (t *BLETransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.device != nil {
		t.device.Disconnect()
		t.device = nil
	}
	t.wg.Wait()
	t.state.Store(int32(Disconnected))
	return nil
}

func (t *BLETransport) Send(frame Frame) error {
	if len(frame.Data) > codec.MaxFrameSize {
		return fmt.Errorf("ble: payload %d bytes: %w", len(frame.Data), ErrFrameTooLarge)
	}
	if State(t.state.Load()) != Connected {
		return fmt.Errorf("ble: %w", ErrNotOpen)
	}

	t.mu.Lock()
	rx := t.rxChar
	connected := t.device != nil
	t.mu.Unlock()

	if !connected {
		return fmt.Errorf("ble: %w", ErrNotOpen)
	}
	n, err := rx.WriteWithoutResponse(frame.Data)
	if err != nil {
		return fmt.Errorf("ble: send: %w", err)
	}
	if n != len(frame.Data) {
		return fmt.Errorf("ble: wrote %d of %d bytes: %w", n, len(frame.Data), ErrWriteIncomplete)
	}
	return nil
}

func (t *BLETransport) Receive() <-chan Frame { return t.frames }

func (t *BLETransport) State() State {
	return State(t.state.Load())
}

func (t *BLETransport) connectLoop(ctx context.Context) {
	defer t.wg.Done()

	backoff := serialInitialBackoff
	for {
		if ctx.Err() != nil {
			t.state.Store(int32(Disconnected))
			return
		}

		t.state.Store(int32(Connecting))
		if err := t.connectOnce(ctx); err != nil {
			t.log.Warn("ble: connect failed",
				zap.String("address", t.address.String()),
				zap.Duration("retry_in", backoff),
				zap.Error(err),
			)
			t.state.Store(int32(Failed))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
				backoff = minDuration(backoff*2, serialMaxBackoff)
				continue
			}
		}
		backoff = serialInitialBackoff

		if ctx.Err() != nil {
			return
		}
		t.log.Info("ble: connection lost, reconnecting")
	}
}

func (t *BLETransport) connectOnce(ctx context.Context) error {
	device, err := t.adapter.Connect(t.address, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{uartServiceUUID})
	if err != nil || len(services) == 0 {
		device.Disconnect()
		return fmt.Errorf("discover uart service: %w", err)
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{uartRXCharUUID, uartTXCharUUID})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("discover uart characteristics: %w", err)
	}
	var rxChar, txChar bluetooth.DeviceCharacteristic
	for _, c := range chars {
		switch c.UUID() {
		case uartRXCharUUID:
			rxChar = c
		case uartTXCharUUID:
			txChar = c
		}
	}

	err = txChar.EnableNotifications(func(data []byte) {
		frame := make([]byte, len(data))
		copy(frame, data)
		select {
		case t.frames <- Frame{Data: frame, Timestamp: time.Now().UTC()}:
		default:
			t.log.Warn("ble: frame channel full – dropping frame")
		}
	})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("enable notifications: %w", err)
	}

	t.mu.Lock()
	t.device = &device
	t.rxChar = rxChar
	t.mu.Unlock()
	t.state.Store(int32(Connected))
	t.log.Info("ble: connected", zap.String("address", t.address.String()))

	<-ctx.Done()

	t.mu.Lock()
	t.device = nil
	t.mu.Unlock()
	t.state.Store(int32(Disconnected))
	return nil
}
