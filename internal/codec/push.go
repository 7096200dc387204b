package codec

import "fmt"

// ChannelMsgRecv is the decoded RESP_CHANNEL_MSG_RECV_V3 payload.
type ChannelMsgRecv struct {
	SNR        float32
	ChannelIdx uint8
	PathLen    int8 // raw byte, 0xFF/-1 means direct / no route info
	TxtType    TextType
	Timestamp  uint32
	Sender     string
	Text       string
}

// DecodeChannelMsgRecv decodes a RESP_CHANNEL_MSG_RECV_V3 frame (minimum 12 bytes).
func DecodeChannelMsgRecv(frame []byte) (ChannelMsgRecv, error) {
	const minLen = 12
	if len(frame) < minLen {
		return ChannelMsgRecv{}, malformed(frameCode(frame), fmt.Sprintf("channel msg frame shorter than %d bytes", minLen))
	}
	sender, text := splitSenderAndText(readString(frame[11:], len(frame)-11))
	return ChannelMsgRecv{
		SNR:        float32(int8(frame[1])) / 4,
		ChannelIdx: frame[4],
		PathLen:    int8(frame[5]),
		TxtType:    TextType(frame[6]),
		Timestamp:  readUint32LE(frame[7:11]),
		Sender:     sender,
		Text:       text,
	}, nil
}

// ContactMsgRecv is the decoded RESP_CONTACT_MSG_RECV_V3 payload.
type ContactMsgRecv struct {
	SNR              float32
	SenderKeyPrefix  []byte // 6 bytes
	PathLen          int8
	TxtType          TextType
	Timestamp        uint32
	Text             string
}

// DecodeContactMsgRecv decodes a RESP_CONTACT_MSG_RECV_V3 frame (minimum 16 bytes).
func DecodeContactMsgRecv(frame []byte) (ContactMsgRecv, error) {
	const minLen = 16
	if len(frame) < minLen {
		return ContactMsgRecv{}, malformed(frameCode(frame), fmt.Sprintf("contact msg frame shorter than %d bytes", minLen))
	}
	prefix := make([]byte, 6)
	copy(prefix, frame[4:10])
	return ContactMsgRecv{
		SNR:             float32(int8(frame[1])) / 4,
		SenderKeyPrefix: prefix,
		PathLen:         int8(frame[10]),
		TxtType:         TextType(frame[11]),
		Timestamp:       readUint32LE(frame[12:16]),
		Text:            readString(frame[16:], len(frame)-16),
	}, nil
}

// splitSenderAndText splits a "Sender: text" payload on the first colon.
// If there's no colon at position > 0, the whole string is the text and
// the sender is reported as "Unknown".
func splitSenderAndText(raw string) (sender, text string) {
	colon := -1
	for i := 0; i < len(raw); i++ {
		if raw[i] == ':' {
			colon = i
			break
		}
	}
	if colon <= 0 {
		return "Unknown", raw
	}
	sender = raw[:colon]
	text = raw[colon+1:]
	if len(text) > 0 && text[0] == ' ' {
		text = text[1:]
	}
	return sender, text
}

// Advert is the decoded PUSH_ADVERT / PUSH_NEW_ADVERT payload: a raw
// self-advertisement packet relayed verbatim from the mesh. The companion
// protocol does not further structure this payload at the push layer —
// callers that need contact fields re-run GET_CONTACTS.
type Advert struct {
	Raw []byte
}

// DecodeAdvert decodes a PUSH_ADVERT or PUSH_NEW_ADVERT frame.
func DecodeAdvert(frame []byte) (Advert, error) {
	if len(frame) < 1 {
		return Advert{}, malformed(frameCode(frame), "advert push frame empty")
	}
	return Advert{Raw: append([]byte(nil), frame[1:]...)}, nil
}

// PathUpdated is the decoded PUSH_PATH_UPDATED payload.
type PathUpdated struct {
	PublicKeyPrefix []byte
	PathLen         int8
	Path            []byte
}

// DecodePathUpdated decodes a PUSH_PATH_UPDATED frame (minimum 8 bytes).
func DecodePathUpdated(frame []byte) (PathUpdated, error) {
	const minLen = 8
	if len(frame) < minLen {
		return PathUpdated{}, malformed(frameCode(frame), fmt.Sprintf("path updated frame shorter than %d bytes", minLen))
	}
	prefix := make([]byte, 6)
	copy(prefix, frame[1:7])
	pathLen := int8(frame[7])
	path := append([]byte(nil), frame[8:]...)
	return PathUpdated{PublicKeyPrefix: prefix, PathLen: pathLen, Path: path}, nil
}

// SendConfirmed is the decoded PUSH_SEND_CONFIRMED payload.
type SendConfirmed struct {
	AckCRC  uint32
	RoundTrip uint32
}

// DecodeSendConfirmed decodes a PUSH_SEND_CONFIRMED frame (minimum 9 bytes).
func DecodeSendConfirmed(frame []byte) (SendConfirmed, error) {
	const minLen = 9
	if len(frame) < minLen {
		return SendConfirmed{}, malformed(frameCode(frame), fmt.Sprintf("send confirmed frame shorter than %d bytes", minLen))
	}
	return SendConfirmed{
		AckCRC:    readUint32LE(frame[1:5]),
		RoundTrip: readUint32LE(frame[5:9]),
	}, nil
}

// MsgWaiting carries no payload beyond the push code: it signals the app
// should issue CMD_SYNC_NEXT_MESSAGE.
type MsgWaiting struct{}

// DecodeMsgWaiting decodes a PUSH_MSG_WAITING frame.
func DecodeMsgWaiting(frame []byte) (MsgWaiting, error) {
	if len(frame) < 1 {
		return MsgWaiting{}, malformed(frameCode(frame), "msg waiting push frame empty")
	}
	return MsgWaiting{}, nil
}

// RawRX is the decoded PUSH_LOG_RX_DATA payload: diagnostic radio telemetry
// for a received packet, surfaced as an optional subscribe-only stream.
type RawRX struct {
	SNR     float32
	RSSI    int8
	Payload []byte
}

// DecodeRawRX decodes a PUSH_LOG_RX_DATA frame (minimum 3 bytes).
func DecodeRawRX(frame []byte) (RawRX, error) {
	const minLen = 3
	if len(frame) < minLen {
		return RawRX{}, malformed(frameCode(frame), fmt.Sprintf("log rx data frame shorter than %d bytes", minLen))
	}
	return RawRX{
		SNR:     float32(int8(frame[1])) / 4,
		RSSI:    int8(frame[2]),
		Payload: append([]byte(nil), frame[3:]...),
	}, nil
}
