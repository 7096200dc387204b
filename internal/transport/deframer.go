package transport

import "github.com/meshcore-go/meshcore/internal/codec"

type deframerState int

const (
	stateIdle deframerState = iota
	stateHeaderFound
	stateLen1Found
	stateLen2Found
)

// Deframer is the byte-at-a-time state machine that recovers logical
// frames from the serial stream envelope: a marker byte, a 16-bit
// little-endian length, then that many payload bytes. It never resyncs
// mid-frame on a malformed length — an oversize frame is truncated to
// MaxFrameSize and delivered anyway, matching the radio firmware's own
// behavior on the other end of the link.
type Deframer struct {
	state    deframerState
	lenLo    byte
	frameLen int
	consumed int
	buf      []byte
}

// NewDeframer returns a Deframer ready to process an inbound byte stream.
func NewDeframer() *Deframer {
	return &Deframer{}
}

// Feed processes one byte of the stream. It returns a complete frame and
// true once enough bytes have arrived; otherwise ok is false and frame is
// nil.
func (d *Deframer) Feed(b byte) (frame []byte, ok bool) {
	switch d.state {
	case stateIdle:
		if b == codec.FrameOutboundMarker {
			d.state = stateHeaderFound
		}
	case stateHeaderFound:
		d.lenLo = b
		d.state = stateLen1Found
	case stateLen1Found:
		d.frameLen = int(d.lenLo) | int(b)<<8
		d.buf = d.buf[:0]
		d.consumed = 0
		if d.frameLen == 0 {
			d.state = stateIdle
		} else {
			d.state = stateLen2Found
		}
	case stateLen2Found:
		if len(d.buf) < codec.MaxFrameSize {
			d.buf = append(d.buf, b)
		}
		d.consumed++
		if d.consumed >= d.frameLen {
			out := make([]byte, len(d.buf))
			copy(out, d.buf)
			d.state = stateIdle
			d.buf = d.buf[:0]
			return out, true
		}
	}
	return nil, false
}

// Reset returns the deframer to its idle state, discarding any partial frame.
func (d *Deframer) Reset() {
	d.state = stateIdle
	d.buf = d.buf[:0]
}
