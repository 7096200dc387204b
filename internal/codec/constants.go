// Package codec implements the companion protocol wire format: the
// command encoder and the response/push decoder. It is pure and
// stateless — no I/O, no retained state between calls.
package codec

// ProtocolVersion is the companion protocol version this codec speaks.
const ProtocolVersion = 3

// Frame size and field bounds, per the wire format.
const (
	MaxFrameSize = 172
	PubKeySize   = 32
	MaxPathSize  = 64
	MaxNameSize  = 32
)

// Frame delimiters used by the serial stream envelope.
const (
	FrameInboundMarker  byte = 0x3C // app -> radio
	FrameOutboundMarker byte = 0x3E // radio -> app
)

// CommandCode identifies an app -> radio command.
type CommandCode uint8

const (
	CmdAppStart             CommandCode = 1
	CmdSendTxtMsg           CommandCode = 2
	CmdSendChannelTxtMsg    CommandCode = 3
	CmdGetContacts          CommandCode = 4
	CmdGetDeviceTime        CommandCode = 5
	CmdSetDeviceTime        CommandCode = 6
	CmdSendSelfAdvert       CommandCode = 7
	CmdSetAdvertName        CommandCode = 8
	CmdAddUpdateContact     CommandCode = 9
	CmdSyncNextMessage      CommandCode = 10
	CmdSetRadioParams       CommandCode = 11
	CmdSetRadioTxPower      CommandCode = 12
	CmdResetPath            CommandCode = 13
	CmdSetAdvertLatLon      CommandCode = 14
	CmdRemoveContact        CommandCode = 15
	CmdShareContact         CommandCode = 16
	CmdExportContact        CommandCode = 17
	CmdImportContact        CommandCode = 18
	CmdReboot               CommandCode = 19
	CmdGetBattAndStorage    CommandCode = 20
	CmdSetTuningParams      CommandCode = 21
	CmdDeviceQuery          CommandCode = 22
	CmdExportPrivateKey     CommandCode = 23
	CmdImportPrivateKey     CommandCode = 24
	CmdSendRawData          CommandCode = 25
	CmdSendLogin            CommandCode = 26
	CmdSendStatusReq        CommandCode = 27
	CmdHasConnection        CommandCode = 28
	CmdLogout               CommandCode = 29
	CmdGetContactByKey      CommandCode = 30
	CmdGetChannel           CommandCode = 31
	CmdSetChannel           CommandCode = 32
	CmdSignStart            CommandCode = 33
	CmdSignData             CommandCode = 34
	CmdSignFinish           CommandCode = 35
	CmdSendTracePath        CommandCode = 36
	CmdSetDevicePin         CommandCode = 37
	CmdSetOtherParams       CommandCode = 38
	CmdSendTelemetryReq     CommandCode = 39
	CmdGetCustomVars        CommandCode = 40
	CmdSetCustomVar         CommandCode = 41
	CmdGetAdvertPath        CommandCode = 42
	CmdGetTuningParams      CommandCode = 43
	CmdSendBinaryReq        CommandCode = 50
	CmdFactoryReset         CommandCode = 51
	CmdSendPathDiscoveryReq CommandCode = 52
	CmdSetFloodScope        CommandCode = 54
	CmdSendControlData      CommandCode = 55
	CmdGetStats             CommandCode = 56
)

// ResponseCode identifies a radio -> app synchronous response (top bit 0).
type ResponseCode uint8

const (
	RespOK                ResponseCode = 0
	RespErr               ResponseCode = 1
	RespContactsStart     ResponseCode = 2
	RespContact           ResponseCode = 3
	RespEndOfContacts     ResponseCode = 4
	RespSelfInfo          ResponseCode = 5
	RespSent              ResponseCode = 6
	RespContactMsgRecv    ResponseCode = 7
	RespChannelMsgRecv    ResponseCode = 8
	RespCurrTime          ResponseCode = 9
	RespNoMoreMessages    ResponseCode = 10
	RespExportContact     ResponseCode = 11
	RespBattAndStorage    ResponseCode = 12
	RespDeviceInfo        ResponseCode = 13
	RespPrivateKey        ResponseCode = 14
	RespDisabled          ResponseCode = 15
	RespContactMsgRecvV3  ResponseCode = 16
	RespChannelMsgRecvV3  ResponseCode = 17
	RespChannelInfo       ResponseCode = 18
	RespSignStart         ResponseCode = 19
	RespSignature         ResponseCode = 20
	RespCustomVars        ResponseCode = 21
	RespAdvertPath        ResponseCode = 22
	RespTuningParams      ResponseCode = 23
	RespStats             ResponseCode = 24
)

// PushCode identifies an asynchronous radio -> app push (top bit 1, code >= 0x80).
type PushCode uint8

const (
	PushAdvert                PushCode = 0x80
	PushPathUpdated           PushCode = 0x81
	PushSendConfirmed         PushCode = 0x82
	PushMsgWaiting            PushCode = 0x83
	PushRawData               PushCode = 0x84
	PushLoginSuccess          PushCode = 0x85
	PushLoginFail             PushCode = 0x86
	PushStatusResponse        PushCode = 0x87
	PushLogRxData             PushCode = 0x88
	PushTraceData             PushCode = 0x89
	PushNewAdvert             PushCode = 0x8A
	PushTelemetryResponse     PushCode = 0x8B
	PushBinaryResponse        PushCode = 0x8C
	PushPathDiscoveryResponse PushCode = 0x8D
	PushControlData           PushCode = 0x8E
)

// ErrorCode is the sub-code carried by the second byte of an ERR response.
type ErrorCode uint8

const (
	ErrUnsupportedCmd ErrorCode = 1
	ErrNotFound       ErrorCode = 2
	ErrTableFull      ErrorCode = 3
	ErrBadState       ErrorCode = 4
	ErrFileIOError    ErrorCode = 5
	ErrIllegalArg     ErrorCode = 6
)

// TextType classifies a text message payload.
type TextType uint8

const (
	TextPlain       TextType = 0
	TextCLIData     TextType = 1
	TextSignedPlain TextType = 2
)

// ContactType classifies a Contact record.
type ContactType uint8

const (
	ContactNone     ContactType = 0
	ContactChat     ContactType = 1
	ContactRepeater ContactType = 2
	ContactRoom     ContactType = 3
)

// Path length sentinels. Both are the same bit pattern reinterpreted: a
// stored int8 of -1 means "flood routing" for a self-originated contact
// and "direct link / no route info" for a received message — the caller's
// context picks the label, the codec never coerces the value.
const (
	PathLenFlood  int8 = -1
	PathLenDirect int8 = -1
)

// PublicChannelPSKBase64 is the well-known pre-shared key for channel index 0.
const PublicChannelPSKBase64 = "izOH6cXN6mrJ5e26oRXNcg=="

// IsPush reports whether the first byte of a frame marks it as a push
// notification rather than a synchronous response.
func IsPush(frame []byte) bool {
	if len(frame) == 0 {
		return false
	}
	return frame[0] >= 0x80
}
