package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/meshcore-go/meshcore/internal/codec"
)

const (
	serialInitialBackoff = 2 * time.Second
	serialMaxBackoff      = 60 * time.Second
	serialReadBufSize     = 256
	serialFrameChanSize   = 256
)

// SerialTransport connects to a MeshCore device over a USB-serial port,
// using the companion protocol's stream framing (marker byte, 16-bit LE
// length, payload).
type SerialTransport struct {
	portName string
	baudRate int
	log      *zap.Logger
	frames   chan Frame
	state    atomic.Int32

	mu     sync.Mutex
	port   serial.Port
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSerialTransport constructs a SerialTransport bound to portName (e.g.
// "/dev/ttyUSB0" or "COM5") at baudRate (115200 is the companion protocol default).
func NewSerialTransport(portName string, baudRate int, log *zap.Logger) *SerialTransport {
	t := &SerialTransport{
		portName: portName,
		baudRate: baudRate,
		log:      log,
		frames:   make(chan Frame, serialFrameChanSize),
	}
	t.state.Store(int32(Disconnected))
	return t
}

func (t *SerialTransport) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if State(t.state.Load()) == Connected {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)
	go t.readLoop(ctx)
	return nil
}

func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.port != nil {
		t.port.Close()
		t.port = nil
	}
	t.wg.Wait()
	t.state.Store(int32(Disconnected))
	return nil
}

func (t *SerialTransport) Send(frame Frame) error {
	if len(frame.Data) > codec.MaxFrameSize {
		return fmt.Errorf("serial: payload %d bytes: %w", len(frame.Data), ErrFrameTooLarge)
	}
	if State(t.state.Load()) != Connected {
		return fmt.Errorf("serial: %w", ErrNotOpen)
	}

	t.mu.Lock()
	port := t.port
	t.mu.Unlock()

	if port == nil {
		return fmt.Errorf("serial: %w", ErrNotOpen)
	}
	encoded := EncodeStreamFrame(frame.Data)
	n, err := port.Write(encoded)
	if err != nil {
		return fmt.Errorf("serial: send: %w", err)
	}
	if n != len(encoded) {
		return fmt.Errorf("serial: wrote %d of %d bytes: %w", n, len(encoded), ErrWriteIncomplete)
	}
	return nil
}

func (t *SerialTransport) Receive() <-chan Frame { return t.frames }

func (t *SerialTransport) State() State {
	return State(t.state.Load())
}

func (t *SerialTransport) readLoop(ctx context.Context) {
	defer t.wg.Done()

	backoff := serialInitialBackoff
	for {
		if ctx.Err() != nil {
			t.state.Store(int32(Disconnected))
			return
		}

		t.state.Store(int32(Connecting))
		mode := &serial.Mode{BaudRate: t.baudRate}
		port, err := serial.Open(t.portName, mode)
		if err != nil {
			t.log.Warn("serial: open failed",
				zap.String("port", t.portName),
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
		t.mu.Lock()
		t.port = port
		t.mu.Unlock()
		t.state.Store(int32(Connected))
		t.log.Info("serial: connected", zap.String("port", t.portName))

		t.readFrames(ctx, port)

		t.mu.Lock()
		t.port = nil
		t.mu.Unlock()
		t.state.Store(int32(Disconnected))

		if ctx.Err() != nil {
			return
		}
		t.log.Info("serial: connection lost, reconnecting", zap.Duration("backoff", backoff))
	}
}

func (t *SerialTransport) readFrames(ctx context.Context, port serial.Port) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			port.Close()
		case <-done:
		}
	}()
	defer close(done)

	deframer := NewDeframer()
	buf := make([]byte, serialReadBufSize)
	for {
		n, err := port.Read(buf)
		if err != nil {
			if ctx.Err() == nil {
				t.log.Debug("serial: read", zap.Error(err))
			}
			return
		}
		if n == 0 {
			continue
		}
		for _, b := range buf[:n] {
			payload, ok := deframer.Feed(b)
			if !ok {
				continue
			}
			select {
			case t.frames <- Frame{Data: payload, Timestamp: time.Now().UTC()}:
			case <-ctx.Done():
				return
			default:
				t.log.Warn("serial: frame channel full – dropping frame")
			}
		}
	}
}

// EnumeratePorts lists every serial port the operating system reports. It
// does not filter by USB vendor ID; IsLikelyMeshCoreDevice is a separate
// check and is not applied here.
func EnumeratePorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serial: enumerate: %w", err)
	}
	return ports, nil
}

var knownVendorIDs = map[string]bool{
	"0403": true, // FTDI
	"10c4": true, // Silicon Labs
	"1a86": true, // WCH (CH340/CH9102)
	"067b": true, // Prolific
}

// IsLikelyMeshCoreDevice reports whether a USB vendor ID (4 lowercase hex
// digits, no "0x" prefix) belongs to a chipset commonly used on MeshCore
// radios.
func IsLikelyMeshCoreDevice(usbVendorID string) bool {
	return knownVendorIDs[usbVendorID]
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
