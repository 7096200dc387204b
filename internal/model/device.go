package model

import "github.com/meshcore-go/meshcore/internal/codec"

// DeviceInfo is the static identity and firmware build of the connected
// radio, learned once at session startup from RESP_DEVICE_INFO.
type DeviceInfo struct {
	FirmwareVersion uint8
	Manufacturer    string
	FirmwareVerStr  string
}

// SelfInfo is the host's own contact identity on the mesh, learned once at
// session startup from RESP_SELF_INFO.
type SelfInfo struct {
	ContactType codec.ContactType
	PublicKey   []byte
	NodeName    string
}

// KeyHex is the lowercase hex encoding of the self public key, used to
// name the per-device store file.
func (s SelfInfo) KeyHex() string {
	return Contact{PublicKey: s.PublicKey}.KeyHex()
}
