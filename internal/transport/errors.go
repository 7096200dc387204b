package transport

import "errors"

// Sentinel errors a Transport's Send returns for the three failure modes
// its contract names explicitly: a frame over the wire limit, an attempt
// to write while not connected, and a write the underlying medium only
// partially accepted.
var (
	ErrFrameTooLarge   = errors.New("transport: frame exceeds max frame size")
	ErrNotOpen         = errors.New("transport: not open")
	ErrWriteIncomplete = errors.New("transport: write incomplete")
)
