package model

import (
	"encoding/base64"
	"strings"

	"github.com/meshcore-go/meshcore/internal/codec"
)

// PublicChannelIdx is the well-known index of the shared public channel
// every device has available out of the box.
const PublicChannelIdx = 0

// Channel is a shared-secret group the device can send and receive text on.
type Channel struct {
	Idx    uint8
	Name   string
	Secret []byte
}

// IsEmpty reports whether the channel slot holds no real channel: an empty
// trimmed name, or an all-zero secret.
func (c Channel) IsEmpty() bool {
	if strings.TrimSpace(c.Name) == "" {
		return true
	}
	for _, b := range c.Secret {
		if b != 0 {
			return false
		}
	}
	return true
}

// PublicChannel returns the well-known public channel definition, derived
// from the companion protocol's published pre-shared key.
func PublicChannel() Channel {
	secret, err := base64.StdEncoding.DecodeString(codec.PublicChannelPSKBase64)
	if err != nil {
		// the constant is fixed and known-good; a decode failure here
		// would mean the constant itself was edited incorrectly.
		panic("model: invalid embedded public channel PSK: " + err.Error())
	}
	return Channel{Idx: PublicChannelIdx, Name: "Public", Secret: secret}
}
