package session

import (
	"time"

	"github.com/meshcore-go/meshcore/internal/codec"
	"github.com/meshcore-go/meshcore/internal/model"
)

// SendChannelText sends a plain text message on the given channel index.
func (s *Session) SendChannelText(channelIdx uint8, text string) error {
	if s.State() != StateReady {
		return newError(KindNotReady, "SendChannelText", nil)
	}
	cmd := codec.BuildSendChannelTxtMsg(codec.TextPlain, channelIdx, uint32(time.Now().Unix()), text)
	return s.send(cmd)
}

// SendContactText sends a plain text message to a contact identified by
// its first 6 public-key bytes.
func (s *Session) SendContactText(recipientKeyPrefix []byte, text string) error {
	if s.State() != StateReady {
		return newError(KindNotReady, "SendContactText", nil)
	}
	cmd, err := codec.BuildSendTxtMsg(codec.TextPlain, 0, uint32(time.Now().Unix()), recipientKeyPrefix, text)
	if err != nil {
		return newError(KindInvalidArgument, "SendContactText", err)
	}
	return s.send(cmd)
}

// SetAdvertName sets the host's own advertised node name.
func (s *Session) SetAdvertName(name string) error {
	return s.send(codec.BuildSetAdvertName(name))
}

// SetAdvertLatLon sets the host's own advertised location, in degrees.
func (s *Session) SetAdvertLatLon(lat, lon float64) error {
	return s.send(codec.BuildSetAdvertLatLon(int32(lat*1e6), int32(lon*1e6)))
}

// SendSelfAdvert requests the radio broadcast a self-advertisement.
func (s *Session) SendSelfAdvert(flood bool) error {
	return s.send(codec.BuildSendSelfAdvert(flood))
}

// SetRadioParams applies raw LoRa radio parameters.
func (s *Session) SetRadioParams(cfg model.RadioConfig) error {
	if !cfg.Valid() {
		return newError(KindInvalidArgument, "SetRadioParams", nil)
	}
	return s.send(codec.BuildSetRadioParams(cfg.FrequencyKHz, cfg.BandwidthHz, cfg.SpreadingFactor, cfg.CodingRate))
}

// SetRadioPreset applies a named regional radio preset.
func (s *Session) SetRadioPreset(name string) error {
	cfg, ok := model.RadioPresetByName(name)
	if !ok {
		return newError(KindInvalidArgument, "SetRadioPreset", nil)
	}
	return s.SetRadioParams(cfg)
}

// SetRadioTxPower sets the radio's transmit power, in dBm.
func (s *Session) SetRadioTxPower(dbm uint8) error {
	return s.send(codec.BuildSetRadioTxPower(dbm))
}

// SetChannel writes a channel slot's name and shared secret.
func (s *Session) SetChannel(idx uint8, name string, secret []byte) error {
	cmd, err := codec.BuildSetChannel(idx, name, secret)
	if err != nil {
		return newError(KindInvalidArgument, "SetChannel", err)
	}
	return s.send(cmd)
}

// AddUpdateContact pushes a contact record to the radio's contact table.
func (s *Session) AddUpdateContact(c model.Contact) error {
	cmd, err := codec.BuildAddUpdateContact(codec.AddUpdateContactParams{
		PublicKey:      c.PublicKey,
		Type:           c.Type,
		Flags:          c.Flags,
		PathLen:        c.PathLen,
		Path:           c.Path,
		Name:           c.Name,
		LastAdvertTS:   uint32(c.LastAdvertTimestamp.Unix()),
		Latitude:       int32(c.Latitude * 1e6),
		Longitude:      int32(c.Longitude * 1e6),
		LastModifiedTS: uint32(c.LastModified.Unix()),
	})
	if err != nil {
		return newError(KindInvalidArgument, "AddUpdateContact", err)
	}
	return s.send(cmd)
}

// RemoveContact removes a contact by public key.
func (s *Session) RemoveContact(publicKey []byte) error {
	cmd, err := codec.BuildRemoveContact(publicKey)
	if err != nil {
		return newError(KindInvalidArgument, "RemoveContact", err)
	}
	return s.send(cmd)
}

// Reboot requests the radio restart.
func (s *Session) Reboot() error {
	return s.send(codec.BuildReboot())
}
