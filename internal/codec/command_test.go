package codec

import (
	"bytes"
	"testing"
)

func TestBuildDeviceQueryEncodesOpcodeAndPayload(t *testing.T) {
	cmd := BuildDeviceQuery(3)
	got, err := cmd.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{byte(CmdDeviceQuery), 3}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBuildAppStartEncodesNullTerminatedName(t *testing.T) {
	cmd := BuildAppStart(1, "meshcore-go")
	got, err := cmd.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := append([]byte{byte(CmdAppStart), 1}, append([]byte("meshcore-go"), 0)...)
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBuildSendChannelTxtMsgEncodesFixedHeader(t *testing.T) {
	cmd := BuildSendChannelTxtMsg(TextPlain, 2, 0x01020304, "hi")
	got, err := cmd.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != byte(CmdSendChannelTxtMsg) {
		t.Fatalf("opcode = %d, want %d", got[0], CmdSendChannelTxtMsg)
	}
	if got[1] != byte(TextPlain) || got[2] != 2 {
		t.Fatalf("txt_type/channel_idx = %v, want [%d 2]", got[1:3], TextPlain)
	}
	if string(got[7:9]) != "hi" || got[9] != 0 {
		t.Errorf("text tail = %v, want null-terminated \"hi\"", got[7:])
	}
}

func TestBuildSendTxtMsgRejectsShortKeyPrefix(t *testing.T) {
	_, err := BuildSendTxtMsg(TextPlain, 0, 0, []byte{1, 2, 3}, "hi")
	if err == nil {
		t.Fatal("expected an error for a key prefix shorter than 6 bytes")
	}
}

func TestBuildSetChannelRejectsBadSecretLength(t *testing.T) {
	_, err := BuildSetChannel(0, "Public", make([]byte, 10))
	if err == nil {
		t.Fatal("expected an error for a non-16/32-byte secret")
	}
}

func TestBuildAddUpdateContactRejectsShortPublicKey(t *testing.T) {
	_, err := BuildAddUpdateContact(AddUpdateContactParams{PublicKey: make([]byte, 10)})
	if err == nil {
		t.Fatal("expected an error for a public key shorter than PubKeySize")
	}
}

func TestCommandEncodeRejectsOversizePayload(t *testing.T) {
	cmd := Command{Code: CmdImportContact, Payload: make([]byte, MaxFrameSize)}
	if _, err := cmd.Encode(); err == nil {
		t.Fatal("expected an error encoding a payload that overflows MaxFrameSize")
	}
}

func TestBuildRemoveContactRoundTripsPublicKey(t *testing.T) {
	key := make([]byte, PubKeySize)
	key[0] = 0xAB
	cmd, err := BuildRemoveContact(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := cmd.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != byte(CmdRemoveContact) {
		t.Fatalf("opcode = %d, want %d", got[0], CmdRemoveContact)
	}
	if !bytes.Equal(got[1:], key) {
		t.Errorf("payload = %v, want %v", got[1:], key)
	}
}
