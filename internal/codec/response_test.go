package codec

import (
	"errors"
	"testing"
)

func TestDecodeDeviceInfoParsesFixedFields(t *testing.T) {
	frame := make([]byte, 80)
	frame[0] = byte(RespDeviceInfo)
	frame[1] = 3
	copy(frame[20:], "Acme")
	copy(frame[60:], "1.2.3")

	info, err := DecodeDeviceInfo(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.FirmwareVersion != 3 {
		t.Errorf("firmware version = %d, want 3", info.FirmwareVersion)
	}
	if info.Manufacturer != "Acme" {
		t.Errorf("manufacturer = %q, want Acme", info.Manufacturer)
	}
	if info.FirmwareVerStr != "Acme 1.2.3" {
		t.Errorf("firmware ver str = %q, want %q", info.FirmwareVerStr, "Acme 1.2.3")
	}
}

func TestDecodeDeviceInfoRejectsShortFrame(t *testing.T) {
	_, err := DecodeDeviceInfo(make([]byte, 10))
	assertMalformed(t, err)
}

func TestDecodeSelfInfoParsesPublicKey(t *testing.T) {
	frame := make([]byte, 46)
	frame[0] = byte(RespSelfInfo)
	frame[1] = byte(ContactChat)
	pubKey := make([]byte, PubKeySize)
	pubKey[0] = 0xAB
	copy(frame[4:36], pubKey)

	info, err := DecodeSelfInfo(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ContactType != ContactChat {
		t.Errorf("contact type = %v, want %v", info.ContactType, ContactChat)
	}
	if info.PublicKey[0] != 0xAB {
		t.Errorf("public key[0] = %x, want ab", info.PublicKey[0])
	}
}

func TestDecodeSelfInfoRejectsShortFrame(t *testing.T) {
	_, err := DecodeSelfInfo(make([]byte, 45))
	assertMalformed(t, err)
}

func TestDecodeChannelInfoParsesNameAndSecret(t *testing.T) {
	frame := make([]byte, 50)
	frame[0] = byte(RespChannelInfo)
	frame[1] = 4
	copy(frame[2:34], "General")
	secret := make([]byte, 16)
	secret[0] = 0x11
	copy(frame[34:50], secret)

	ch, err := DecodeChannelInfo(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Idx != 4 || ch.Name != "General" || ch.Secret[0] != 0x11 {
		t.Errorf("got %+v", ch)
	}
}

func TestDecodeChannelInfoRejectsShortFrame(t *testing.T) {
	_, err := DecodeChannelInfo(make([]byte, 49))
	assertMalformed(t, err)
}

func TestDecodeContactParsesFixedLayout(t *testing.T) {
	frame := make([]byte, 148)
	frame[0] = byte(RespContact)
	pubKey := make([]byte, PubKeySize)
	pubKey[0] = 0x01
	copy(frame[1:33], pubKey)
	frame[33] = byte(ContactRepeater)
	frame[34] = 0x02
	frame[35] = 0xFF // path len sentinel
	copy(frame[100:132], "Relay")

	c, err := DecodeContact(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Type != ContactRepeater || c.Flags != 0x02 || c.PathLen != -1 || c.Name != "Relay" {
		t.Errorf("got %+v", c)
	}
}

func TestDecodeContactRejectsShortFrame(t *testing.T) {
	_, err := DecodeContact(make([]byte, 147))
	assertMalformed(t, err)
}

func TestDecodeBattAndStorageParsesFields(t *testing.T) {
	frame := make([]byte, 12)
	frame[0] = byte(RespBattAndStorage)
	frame[1], frame[2] = 0x10, 0x0F // 0x0F10 mV little-endian
	frame[4] = 5                    // used storage KB

	b, err := DecodeBattAndStorage(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.BatteryMillivolts != 0x0F10 {
		t.Errorf("battery millivolts = %d, want %d", b.BatteryMillivolts, 0x0F10)
	}
	if b.UsedStorageKB != 5 {
		t.Errorf("used storage = %d, want 5", b.UsedStorageKB)
	}
}

func TestDecodeBattAndStorageRejectsShortFrame(t *testing.T) {
	_, err := DecodeBattAndStorage(make([]byte, 11))
	assertMalformed(t, err)
}

func TestDecodeCurrTimeRejectsShortFrame(t *testing.T) {
	_, err := DecodeCurrTime(make([]byte, 4))
	assertMalformed(t, err)
}

func TestGetResponseCodeRejectsEmptyFrame(t *testing.T) {
	_, err := GetResponseCode(nil)
	assertMalformed(t, err)
}

func TestGetErrorCodeRejectsShortFrame(t *testing.T) {
	_, err := GetErrorCode([]byte{byte(RespErr)})
	assertMalformed(t, err)
}

// assertMalformed fails the test unless err is a *Malformed: every decoder
// in this package must report a short or structurally invalid frame this
// way, never by panicking on an out-of-bounds slice read.
func assertMalformed(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error for a short frame")
	}
	var m *Malformed
	if !errors.As(err, &m) {
		t.Fatalf("got error of type %T, want *Malformed", err)
	}
}
