// Package model holds the plain value types shared between the session,
// the store, and the gateway: contacts, channels, messages and the
// device-identity records the companion protocol exchanges at startup.
package model

import (
	"encoding/hex"
	"time"

	"github.com/meshcore-go/meshcore/internal/codec"
)

// Contact is a known node on the mesh, as tracked by the host.
type Contact struct {
	PublicKey           []byte
	Name                string
	Type                codec.ContactType
	Flags               uint8
	PathLen             int8 // -1 means flood routing, a read-only hint from the radio
	Path                []byte
	LastAdvertTimestamp time.Time
	Latitude            float64
	Longitude           float64
	LastModified        time.Time
}

// KeyHex renders the contact's public key as a lowercase hex string,
// used as the persistence key and the wire "key prefix" match target.
func (c Contact) KeyHex() string {
	return hex.EncodeToString(c.PublicKey)
}

// KeyPrefix returns the first n bytes of the public key, as used in
// contact-message frames to identify the sender.
func (c Contact) KeyPrefix(n int) []byte {
	if n > len(c.PublicKey) {
		n = len(c.PublicKey)
	}
	return c.PublicKey[:n]
}

// Valid reports whether the contact has a usable identity: the wire format
// always carries a full 32-byte public key and a non-empty name.
func (c Contact) Valid() bool {
	return len(c.PublicKey) == codec.PubKeySize && c.Name != ""
}

// IsFlood reports whether the contact's path length marks flood routing
// rather than a known direct path.
func (c Contact) IsFlood() bool {
	return c.PathLen == codec.PathLenFlood
}

// FromWireContact converts a decoded RESP_CONTACT payload into a Contact,
// translating the fixed-point lat/lon micro-degrees and epoch timestamps.
func FromWireContact(w codec.Contact) Contact {
	return Contact{
		PublicKey:           w.PublicKey,
		Name:                w.Name,
		Type:                w.Type,
		Flags:               w.Flags,
		PathLen:             w.PathLen,
		Path:                w.Path,
		LastAdvertTimestamp: time.Unix(int64(w.LastAdvertTimestamp), 0).UTC(),
		Latitude:            float64(w.Latitude) / 1e6,
		Longitude:           float64(w.Longitude) / 1e6,
		LastModified:        time.Unix(int64(w.LastModified), 0).UTC(),
	}
}
