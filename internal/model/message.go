package model

import (
	"time"

	"github.com/meshcore-go/meshcore/internal/codec"
)

// MessageType distinguishes a channel broadcast from a direct contact message.
type MessageType int

const (
	ChannelMessage MessageType = iota
	ContactMessage
)

func (t MessageType) String() string {
	if t == ContactMessage {
		return "contact"
	}
	return "channel"
}

// Message is a single text message, sent or received, on a channel or
// with a specific contact.
type Message struct {
	ID                 int64
	Type                MessageType
	ChannelIdx          uint8
	SenderKeyPrefix     []byte
	SenderName          string
	Text                string
	Timestamp           time.Time
	ReceivedAt          time.Time
	PathLen             int8
	TxtType             codec.TextType
	SNR                 float32
	IsSentByMe          bool
}

// FromChannelRecv builds a Message from a decoded RESP_CHANNEL_MSG_RECV_V3
// payload, splitting the "Sender: text" convention the firmware uses for
// channel broadcasts.
func FromChannelRecv(w codec.ChannelMsgRecv, receivedAt time.Time) Message {
	return Message{
		Type:        ChannelMessage,
		ChannelIdx:  w.ChannelIdx,
		SenderName:  w.Sender,
		Text:        w.Text,
		Timestamp:   time.Unix(int64(w.Timestamp), 0).UTC(),
		ReceivedAt:  receivedAt,
		PathLen:     w.PathLen,
		TxtType:     w.TxtType,
		SNR:         w.SNR,
	}
}

// FromContactRecv builds a Message from a decoded RESP_CONTACT_MSG_RECV_V3
// payload.
func FromContactRecv(w codec.ContactMsgRecv, receivedAt time.Time) Message {
	return Message{
		Type:            ContactMessage,
		SenderKeyPrefix: w.SenderKeyPrefix,
		Text:            w.Text,
		Timestamp:       time.Unix(int64(w.Timestamp), 0).UTC(),
		ReceivedAt:      receivedAt,
		PathLen:         w.PathLen,
		TxtType:         w.TxtType,
		SNR:             w.SNR,
	}
}
