package transport

import "github.com/meshcore-go/meshcore/internal/codec"

// EncodeStreamFrame wraps a logical frame in the outbound serial envelope:
// marker byte, 16-bit little-endian length, payload.
func EncodeStreamFrame(payload []byte) []byte {
	out := make([]byte, 3+len(payload))
	out[0] = codec.FrameInboundMarker
	out[1] = byte(len(payload))
	out[2] = byte(len(payload) >> 8)
	copy(out[3:], payload)
	return out
}
