package codec

import (
	"encoding/binary"
	"fmt"
)

// Command is a typed app -> radio command, ready for transmission as a
// single frame. Short-lived: built by the session or caller, consumed by
// Encode, then discarded.
type Command struct {
	Code    CommandCode
	Payload []byte // already-encoded body, Code excluded
}

// Encode renders a Command to wire bytes: opcode followed by payload.
func (c Command) Encode() ([]byte, error) {
	frame := make([]byte, 1+len(c.Payload))
	frame[0] = byte(c.Code)
	copy(frame[1:], c.Payload)
	if len(frame) > MaxFrameSize {
		return nil, fmt.Errorf("codec: encoded command %d is %d bytes, exceeds max frame size %d", c.Code, len(frame), MaxFrameSize)
	}
	return frame, nil
}

func appendUint32LE(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint16LE(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendInt32LE(buf []byte, v int32) []byte {
	return appendUint32LE(buf, uint32(v))
}

func appendCString(buf []byte, s string) []byte {
	buf = append(buf, []byte(s)...)
	return append(buf, 0)
}

func appendFixed(buf []byte, data []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, data)
	return append(buf, out...)
}

// BuildDeviceQuery builds CMD_DEVICE_QUERY(app_target_ver).
func BuildDeviceQuery(appTargetVer uint8) Command {
	return Command{Code: CmdDeviceQuery, Payload: []byte{appTargetVer}}
}

// BuildAppStart builds CMD_APP_START(app_ver, app_name).
func BuildAppStart(appVer uint8, appName string) Command {
	payload := append([]byte{appVer}, []byte(appName)...)
	payload = append(payload, 0)
	return Command{Code: CmdAppStart, Payload: payload}
}

// BuildGetContacts builds CMD_GET_CONTACTS(since).
func BuildGetContacts(since uint32) Command {
	payload := appendUint32LE(nil, since)
	return Command{Code: CmdGetContacts, Payload: payload}
}

// BuildGetChannel builds CMD_GET_CHANNEL(idx).
func BuildGetChannel(idx uint8) Command {
	return Command{Code: CmdGetChannel, Payload: []byte{idx}}
}

// BuildSetChannel builds CMD_SET_CHANNEL(idx, name[32 zero-padded], secret).
func BuildSetChannel(idx uint8, name string, secret []byte) (Command, error) {
	if len(secret) != 16 && len(secret) != 32 {
		return Command{}, fmt.Errorf("codec: channel secret must be 16 or 32 bytes, got %d", len(secret))
	}
	payload := []byte{idx}
	payload = appendFixed(payload, []byte(name), MaxNameSize)
	payload = append(payload, secret...)
	return Command{Code: CmdSetChannel, Payload: payload}, nil
}

// BuildSendChannelTxtMsg builds CMD_SEND_CHANNEL_TXT_MSG.
func BuildSendChannelTxtMsg(txtType TextType, channelIdx uint8, timestamp uint32, text string) Command {
	payload := []byte{byte(txtType), channelIdx}
	payload = appendUint32LE(payload, timestamp)
	payload = append(payload, []byte(text)...)
	payload = append(payload, 0)
	return Command{Code: CmdSendChannelTxtMsg, Payload: payload}
}

// BuildSendTxtMsg builds CMD_SEND_TXT_MSG(txt_type, attempt, ts, recipient_key_prefix[6], text).
func BuildSendTxtMsg(txtType TextType, attempt uint8, timestamp uint32, recipientKeyPrefix []byte, text string) (Command, error) {
	if len(recipientKeyPrefix) < 6 {
		return Command{}, fmt.Errorf("codec: recipient key prefix must be at least 6 bytes, got %d", len(recipientKeyPrefix))
	}
	payload := []byte{byte(txtType), attempt}
	payload = appendUint32LE(payload, timestamp)
	payload = append(payload, recipientKeyPrefix[:6]...)
	payload = append(payload, []byte(text)...)
	payload = append(payload, 0)
	return Command{Code: CmdSendTxtMsg, Payload: payload}, nil
}

// AddUpdateContactParams bundles the fixed-size 147-byte ADD_UPDATE_CONTACT body.
type AddUpdateContactParams struct {
	PublicKey        []byte // 32 bytes
	Type             ContactType
	Flags            uint8
	PathLen          int8
	Path             []byte // up to 64 bytes
	Name             string // up to 32 bytes
	LastAdvertTS     uint32
	Latitude         int32
	Longitude        int32
	LastModifiedTS   uint32
}

// BuildAddUpdateContact builds CMD_ADD_UPDATE_CONTACT.
func BuildAddUpdateContact(p AddUpdateContactParams) (Command, error) {
	if len(p.PublicKey) != PubKeySize {
		return Command{}, fmt.Errorf("codec: public key must be %d bytes, got %d", PubKeySize, len(p.PublicKey))
	}
	payload := appendFixed(nil, p.PublicKey, PubKeySize)
	payload = append(payload, byte(p.Type), p.Flags, byte(p.PathLen))
	payload = appendFixed(payload, p.Path, MaxPathSize)
	payload = appendFixed(payload, []byte(p.Name), MaxNameSize)
	payload = appendUint32LE(payload, p.LastAdvertTS)
	payload = appendInt32LE(payload, p.Latitude)
	payload = appendInt32LE(payload, p.Longitude)
	payload = appendUint32LE(payload, p.LastModifiedTS)
	return Command{Code: CmdAddUpdateContact, Payload: payload}, nil
}

// BuildRemoveContact builds CMD_REMOVE_CONTACT(pubkey).
func BuildRemoveContact(publicKey []byte) (Command, error) {
	if len(publicKey) != PubKeySize {
		return Command{}, fmt.Errorf("codec: public key must be %d bytes, got %d", PubKeySize, len(publicKey))
	}
	payload := appendFixed(nil, publicKey, PubKeySize)
	return Command{Code: CmdRemoveContact, Payload: payload}, nil
}

// BuildGetContactByKey builds CMD_GET_CONTACT_BY_KEY(pubkey).
func BuildGetContactByKey(publicKey []byte) (Command, error) {
	if len(publicKey) != PubKeySize {
		return Command{}, fmt.Errorf("codec: public key must be %d bytes, got %d", PubKeySize, len(publicKey))
	}
	return Command{Code: CmdGetContactByKey, Payload: appendFixed(nil, publicKey, PubKeySize)}, nil
}

// BuildSyncNextMessage builds CMD_SYNC_NEXT_MESSAGE.
func BuildSyncNextMessage() Command {
	return Command{Code: CmdSyncNextMessage}
}

// BuildGetDeviceTime builds CMD_GET_DEVICE_TIME.
func BuildGetDeviceTime() Command {
	return Command{Code: CmdGetDeviceTime}
}

// BuildSetDeviceTime builds CMD_SET_DEVICE_TIME(epoch_secs).
func BuildSetDeviceTime(epochSecs uint32) Command {
	return Command{Code: CmdSetDeviceTime, Payload: appendUint32LE(nil, epochSecs)}
}

// BuildSetAdvertName builds CMD_SET_ADVERT_NAME(name).
func BuildSetAdvertName(name string) Command {
	return Command{Code: CmdSetAdvertName, Payload: appendCString(nil, name)}
}

// BuildSetAdvertLatLon builds CMD_SET_ADVERT_LATLON(lat, lon) in micro-degrees.
func BuildSetAdvertLatLon(latMicroDeg, lonMicroDeg int32) Command {
	payload := appendInt32LE(nil, latMicroDeg)
	payload = appendInt32LE(payload, lonMicroDeg)
	return Command{Code: CmdSetAdvertLatLon, Payload: payload}
}

// BuildSendSelfAdvert builds CMD_SEND_SELF_ADVERT(flood).
func BuildSendSelfAdvert(flood bool) Command {
	var b byte
	if flood {
		b = 1
	}
	return Command{Code: CmdSendSelfAdvert, Payload: []byte{b}}
}

// BuildSetRadioParams builds CMD_SET_RADIO_PARAMS.
func BuildSetRadioParams(freqKhz, bwHz uint32, sf, cr uint8) Command {
	payload := appendUint32LE(nil, freqKhz)
	payload = appendUint32LE(payload, bwHz)
	payload = append(payload, sf, cr)
	return Command{Code: CmdSetRadioParams, Payload: payload}
}

// BuildSetRadioTxPower builds CMD_SET_RADIO_TX_POWER(dbm).
func BuildSetRadioTxPower(dbm uint8) Command {
	return Command{Code: CmdSetRadioTxPower, Payload: []byte{dbm}}
}

// BuildReboot builds CMD_REBOOT.
func BuildReboot() Command {
	return Command{Code: CmdReboot}
}

// BuildGetBattAndStorage builds CMD_GET_BATT_AND_STORAGE.
func BuildGetBattAndStorage() Command {
	return Command{Code: CmdGetBattAndStorage}
}

// BuildExportContact builds CMD_EXPORT_CONTACT(pubkey).
func BuildExportContact(publicKey []byte) (Command, error) {
	if len(publicKey) != PubKeySize {
		return Command{}, fmt.Errorf("codec: public key must be %d bytes, got %d", PubKeySize, len(publicKey))
	}
	return Command{Code: CmdExportContact, Payload: appendFixed(nil, publicKey, PubKeySize)}, nil
}

// BuildImportContact builds CMD_IMPORT_CONTACT(cardBytes), a raw advert-packet blob.
func BuildImportContact(cardBytes []byte) Command {
	return Command{Code: CmdImportContact, Payload: append([]byte(nil), cardBytes...)}
}
