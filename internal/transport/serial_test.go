package transport

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/meshcore-go/meshcore/internal/codec"
)

func TestSerialTransportSendFailsNotOpen(t *testing.T) {
	tr := NewSerialTransport("/dev/null", 115200, zap.NewNop())
	err := tr.Send(Frame{Data: []byte("hello")})
	if !errors.Is(err, ErrNotOpen) {
		t.Fatalf("Send on unopened transport = %v, want ErrNotOpen", err)
	}
}

func TestSerialTransportSendFailsFrameTooLarge(t *testing.T) {
	tr := NewSerialTransport("/dev/null", 115200, zap.NewNop())
	oversize := make([]byte, codec.MaxFrameSize+1)
	err := tr.Send(Frame{Data: oversize})
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("Send with oversize frame = %v, want ErrFrameTooLarge", err)
	}
}
