package codec

import (
	"encoding/binary"
	"fmt"
)

// Malformed reports that a frame was too short or otherwise structurally
// invalid for the response/push code it claimed to carry.
type Malformed struct {
	Code   byte
	Reason string
}

func (e *Malformed) Error() string {
	return fmt.Sprintf("codec: malformed frame (code=0x%02x): %s", e.Code, e.Reason)
}

func malformed(code byte, reason string) error {
	return &Malformed{Code: code, Reason: reason}
}

func readUint32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b[:4])
}

func readUint16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b[:2])
}

func readInt32LE(b []byte) int32 {
	return int32(readUint32LE(b))
}

// readString reads a null-terminated string from b, bounded by maxLen,
// whichever ends first.
func readString(b []byte, maxLen int) string {
	if maxLen > len(b) {
		maxLen = len(b)
	}
	n := 0
	for n < maxLen && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// GetResponseCode returns the first byte of a response frame.
func GetResponseCode(frame []byte) (ResponseCode, error) {
	if len(frame) == 0 {
		return 0, malformed(0, "empty frame")
	}
	return ResponseCode(frame[0]), nil
}

// GetErrorCode returns the sub-code carried by byte 1 of an ERR response.
func GetErrorCode(frame []byte) (ErrorCode, error) {
	if len(frame) < 2 {
		return 0, malformed(frameCode(frame), "ERR frame too short for error sub-code")
	}
	return ErrorCode(frame[1]), nil
}

func frameCode(frame []byte) byte {
	if len(frame) == 0 {
		return 0
	}
	return frame[0]
}

// DeviceInfo is the decoded RESP_DEVICE_INFO payload.
type DeviceInfo struct {
	FirmwareVersion  uint8
	Manufacturer     string
	FirmwareVerStr   string
}

// DecodeDeviceInfo decodes a RESP_DEVICE_INFO frame (minimum 80 bytes).
func DecodeDeviceInfo(frame []byte) (DeviceInfo, error) {
	const minLen = 80
	if len(frame) < minLen {
		return DeviceInfo{}, malformed(frameCode(frame), fmt.Sprintf("device info frame shorter than %d bytes", minLen))
	}
	manufacturer := trimNulls(string(frame[20:60]))
	fw := trimNulls(string(frame[60:80]))
	verStr := manufacturer
	if fw != "" {
		if verStr != "" {
			verStr += " "
		}
		verStr += fw
	}
	return DeviceInfo{
		FirmwareVersion: frame[1],
		Manufacturer:    manufacturer,
		FirmwareVerStr:  verStr,
	}, nil
}

func trimNulls(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return s[:i]
		}
	}
	return s
}

// SelfInfo is the decoded RESP_SELF_INFO payload.
type SelfInfo struct {
	ContactType ContactType
	PublicKey   []byte // 32 bytes
	NodeName    string
}

// DecodeSelfInfo decodes a RESP_SELF_INFO frame (minimum 46 bytes).
func DecodeSelfInfo(frame []byte) (SelfInfo, error) {
	const minLen = 46
	if len(frame) < minLen {
		return SelfInfo{}, malformed(frameCode(frame), fmt.Sprintf("self info frame shorter than %d bytes", minLen))
	}
	pubKey := make([]byte, PubKeySize)
	copy(pubKey, frame[4:36])
	return SelfInfo{
		ContactType: ContactType(frame[1]),
		PublicKey:   pubKey,
		NodeName:    "Node", // not carried in the frame
	}, nil
}

// ChannelInfo is the decoded RESP_CHANNEL_INFO payload.
type ChannelInfo struct {
	Idx    uint8
	Name   string
	Secret []byte // 16 bytes
}

// DecodeChannelInfo decodes a RESP_CHANNEL_INFO frame (minimum 50 bytes).
func DecodeChannelInfo(frame []byte) (ChannelInfo, error) {
	const minLen = 50
	if len(frame) < minLen {
		return ChannelInfo{}, malformed(frameCode(frame), fmt.Sprintf("channel info frame shorter than %d bytes", minLen))
	}
	secret := make([]byte, 16)
	copy(secret, frame[34:50])
	return ChannelInfo{
		Idx:    frame[1],
		Name:   readString(frame[2:34], MaxNameSize),
		Secret: secret,
	}, nil
}

// Contact is the decoded RESP_CONTACT payload.
type Contact struct {
	PublicKey            []byte // 32 bytes
	Type                 ContactType
	Flags                uint8
	PathLen              int8
	Path                 []byte // up to 64 bytes
	Name                 string
	LastAdvertTimestamp  uint32
	Latitude             int32
	Longitude            int32
	LastModified         uint32
}

// DecodeContact decodes a RESP_CONTACT frame (minimum 148 bytes).
func DecodeContact(frame []byte) (Contact, error) {
	const minLen = 148
	if len(frame) < minLen {
		return Contact{}, malformed(frameCode(frame), fmt.Sprintf("contact frame shorter than %d bytes", minLen))
	}
	pubKey := make([]byte, PubKeySize)
	copy(pubKey, frame[1:33])
	path := make([]byte, MaxPathSize)
	copy(path, frame[36:100])
	return Contact{
		PublicKey:           pubKey,
		Type:                ContactType(frame[33]),
		Flags:               frame[34],
		PathLen:             int8(frame[35]),
		Path:                path,
		Name:                readString(frame[100:132], MaxNameSize),
		LastAdvertTimestamp: readUint32LE(frame[132:136]),
		Latitude:            readInt32LE(frame[136:140]),
		Longitude:           readInt32LE(frame[140:144]),
		LastModified:        readUint32LE(frame[144:148]),
	}, nil
}

// BattAndStorage is the decoded RESP_BATT_AND_STORAGE payload.
type BattAndStorage struct {
	BatteryMillivolts uint16
	UsedStorageKB     uint32
	TotalStorageKB    uint32
}

// DecodeBattAndStorage decodes a RESP_BATT_AND_STORAGE frame (minimum 12 bytes).
func DecodeBattAndStorage(frame []byte) (BattAndStorage, error) {
	const minLen = 12
	if len(frame) < minLen {
		return BattAndStorage{}, malformed(frameCode(frame), fmt.Sprintf("batt/storage frame shorter than %d bytes", minLen))
	}
	return BattAndStorage{
		BatteryMillivolts: readUint16LE(frame[1:3]),
		UsedStorageKB:     readUint32LE(frame[4:8]),
		TotalStorageKB:    readUint32LE(frame[8:12]),
	}, nil
}

// DecodeCurrTime decodes a RESP_CURR_TIME frame (minimum 5 bytes) and
// returns the device clock in epoch seconds.
func DecodeCurrTime(frame []byte) (uint32, error) {
	const minLen = 5
	if len(frame) < minLen {
		return 0, malformed(frameCode(frame), fmt.Sprintf("curr time frame shorter than %d bytes", minLen))
	}
	return readUint32LE(frame[1:5]), nil
}
