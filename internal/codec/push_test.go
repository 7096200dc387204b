package codec

import (
	"bytes"
	"testing"
)

func TestDecodeChannelMsgRecvParsesTxtTypeAndSplitsSenderText(t *testing.T) {
	frame := make([]byte, 11)
	frame[0] = byte(RespChannelMsgRecvV3)
	snrRaw := int8(-8)
	frame[1] = byte(snrRaw) // SNR = -8/4 = -2.0
	frame[4] = 2              // channel idx
	frame[5] = 0xFF           // path len sentinel
	frame[6] = byte(TextSignedPlain)
	frame = append(frame[:11], []byte("Alice: hello")...)
	frame = append(frame, 0)

	got, err := DecodeChannelMsgRecv(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ChannelIdx != 2 {
		t.Errorf("channel idx = %d, want 2", got.ChannelIdx)
	}
	if got.TxtType != TextSignedPlain {
		t.Errorf("txt type = %v, want %v", got.TxtType, TextSignedPlain)
	}
	if got.SNR != -2.0 {
		t.Errorf("SNR = %v, want -2.0", got.SNR)
	}
	if got.Sender != "Alice" || got.Text != "hello" {
		t.Errorf("sender/text = %q/%q, want Alice/hello", got.Sender, got.Text)
	}
}

func TestDecodeChannelMsgRecvRejectsShortFrame(t *testing.T) {
	_, err := DecodeChannelMsgRecv(make([]byte, 11))
	assertMalformed(t, err)
}

func TestDecodeContactMsgRecvParsesFixedHeader(t *testing.T) {
	frame := make([]byte, 16)
	frame[0] = byte(RespContactMsgRecvV3)
	copy(frame[4:10], []byte{1, 2, 3, 4, 5, 6})
	frame[10] = 0xFF
	frame[11] = byte(TextCLIData)
	frame = append(frame[:16], []byte("hi there")...)
	frame = append(frame, 0)

	got, err := DecodeContactMsgRecv(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got.SenderKeyPrefix, []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("sender key prefix = %v, want [1 2 3 4 5 6]", got.SenderKeyPrefix)
	}
	if got.TxtType != TextCLIData {
		t.Errorf("txt type = %v, want %v", got.TxtType, TextCLIData)
	}
	if got.Text != "hi there" {
		t.Errorf("text = %q, want %q", got.Text, "hi there")
	}
}

func TestDecodeContactMsgRecvRejectsShortFrame(t *testing.T) {
	_, err := DecodeContactMsgRecv(make([]byte, 15))
	assertMalformed(t, err)
}

func TestSplitSenderAndTextHandlesMissingColon(t *testing.T) {
	sender, text := splitSenderAndText("no colon here")
	if sender != "Unknown" || text != "no colon here" {
		t.Errorf("sender/text = %q/%q, want Unknown/%q", sender, text, "no colon here")
	}
}

func TestDecodeAdvertCopiesPayload(t *testing.T) {
	frame := []byte{byte(PushAdvert), 1, 2, 3}
	got, err := DecodeAdvert(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got.Raw, []byte{1, 2, 3}) {
		t.Errorf("raw = %v, want [1 2 3]", got.Raw)
	}
}

func TestDecodeAdvertRejectsEmptyFrame(t *testing.T) {
	_, err := DecodeAdvert(nil)
	assertMalformed(t, err)
}

func TestDecodePathUpdatedParsesPrefixAndPath(t *testing.T) {
	frame := make([]byte, 10)
	frame[0] = byte(PushPathUpdated)
	copy(frame[1:7], []byte{1, 2, 3, 4, 5, 6})
	frame[7] = 0xFF
	frame[8], frame[9] = 0xAA, 0xBB

	got, err := DecodePathUpdated(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PathLen != -1 {
		t.Errorf("path len = %d, want -1", got.PathLen)
	}
	if !bytes.Equal(got.Path, []byte{0xAA, 0xBB}) {
		t.Errorf("path = %v, want [aa bb]", got.Path)
	}
}

func TestDecodePathUpdatedRejectsShortFrame(t *testing.T) {
	_, err := DecodePathUpdated(make([]byte, 7))
	assertMalformed(t, err)
}

func TestDecodeSendConfirmedParsesFields(t *testing.T) {
	frame := make([]byte, 9)
	frame[0] = byte(PushSendConfirmed)
	frame[1] = 0x01
	frame[5] = 0x02

	got, err := DecodeSendConfirmed(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AckCRC != 1 || got.RoundTrip != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestDecodeSendConfirmedRejectsShortFrame(t *testing.T) {
	_, err := DecodeSendConfirmed(make([]byte, 8))
	assertMalformed(t, err)
}

func TestDecodeMsgWaitingRejectsEmptyFrame(t *testing.T) {
	_, err := DecodeMsgWaiting(nil)
	assertMalformed(t, err)
}

func TestDecodeRawRXParsesSNRAndRSSI(t *testing.T) {
	snr, rssi := int8(-4), int8(-90)
	frame := []byte{byte(PushLogRxData), byte(snr), byte(rssi), 1, 2}
	got, err := DecodeRawRX(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SNR != -1.0 {
		t.Errorf("SNR = %v, want -1.0", got.SNR)
	}
	if got.RSSI != -90 {
		t.Errorf("RSSI = %d, want -90", got.RSSI)
	}
	if !bytes.Equal(got.Payload, []byte{1, 2}) {
		t.Errorf("payload = %v, want [1 2]", got.Payload)
	}
}

func TestDecodeRawRXRejectsShortFrame(t *testing.T) {
	_, err := DecodeRawRX(make([]byte, 2))
	assertMalformed(t, err)
}
