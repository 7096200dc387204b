package session

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meshcore-go/meshcore/internal/codec"
	"github.com/meshcore-go/meshcore/internal/model"
)

// handleResponse processes a synchronous radio->app response, branching
// on the current init-phase state first and falling through to
// steady-state handling once the session is ready.
func (s *Session) handleResponse(frame []byte) {
	code, err := codec.GetResponseCode(frame)
	if err != nil {
		s.log.Warn("session: malformed response", zap.Error(err))
		return
	}

	if code == codec.RespErr {
		s.handleErr(frame)
		return
	}

	switch s.State() {
	case StateAwaitDeviceInfo:
		if code == codec.RespDeviceInfo {
			s.onDeviceInfo(frame)
		}
		return
	case StateAwaitSelfInfo:
		if code == codec.RespSelfInfo {
			s.onSelfInfo(frame)
		}
		return
	case StateAwaitContacts:
		s.handleContactsPhase(code, frame)
		return
	case StateDiscoverChannels:
		s.handleChannelDiscoveryPhase(code, frame)
		return
	}

	s.handleSteadyState(code, frame)
}

// handleErr collapses an ERR response forward during init: each init
// state treats an unexpected ERR as "nothing more here, advance anyway"
// rather than failing the whole session, mirroring the original client's
// tolerance for a radio that answers out of order. Once the session is
// ready there is no more init sequence to collapse into, so an ERR is
// correlated against the last command sent and surfaced as an event
// instead of being dropped.
func (s *Session) handleErr(frame []byte) {
	errCode, _ := codec.GetErrorCode(frame)
	s.log.Debug("session: received ERR", zap.Uint8("code", uint8(errCode)))

	switch s.State() {
	case StateAwaitDeviceInfo:
		s.advanceTo(StateAwaitSelfInfo)
	case StateAwaitSelfInfo:
		s.advanceTo(StateAwaitContacts)
	case StateAwaitContacts:
		s.beginChannelDiscovery()
	case StateDiscoverChannels:
		if errCode == codec.ErrNotFound {
			s.setState(StateReady)
		} else {
			s.advanceChannelDiscovery()
		}
	case StateReady:
		s.reportDeviceError(errCode)
	}
}

// reportDeviceError surfaces a steady-state ERR as a DeviceError event,
// naming the command it most likely answers so a caller waiting on
// SendChannelText or similar can tell a rejection apart from silence.
func (s *Session) reportDeviceError(code codec.ErrorCode) {
	s.mu.RLock()
	cmd := s.lastSentCmd
	s.mu.RUnlock()
	err := newError(KindDevice, "handleErr", fmt.Errorf("device rejected command %d: error code %d", cmd, code))
	s.log.Warn("session: device error", zap.Uint8("code", uint8(code)), zap.Uint8("last_command", uint8(cmd)))
	s.sink.Publish(Event{Type: EventError, Timestamp: time.Now().UTC(), Data: DeviceError{Code: code, LastCommand: cmd, Err: err}})
}

func (s *Session) onDeviceInfo(frame []byte) {
	info, err := codec.DecodeDeviceInfo(frame)
	if err != nil {
		s.log.Warn("session: decode device info", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.deviceInfo = model.DeviceInfo{
		FirmwareVersion: info.FirmwareVersion,
		Manufacturer:    info.Manufacturer,
		FirmwareVerStr:  info.FirmwareVerStr,
	}
	s.mu.Unlock()
	s.advanceTo(StateAwaitSelfInfo)
}

func (s *Session) advanceTo(next State) {
	switch next {
	case StateAwaitSelfInfo:
		if err := s.send(codec.BuildAppStart(appVer, appName)); err != nil {
			s.log.Warn("session: send app start", zap.Error(err))
		}
	case StateAwaitContacts:
		if err := s.send(codec.BuildGetContacts(0)); err != nil {
			s.log.Warn("session: send get contacts", zap.Error(err))
		}
	}
	s.setState(next)
}

func (s *Session) onSelfInfo(frame []byte) {
	info, err := codec.DecodeSelfInfo(frame)
	if err != nil {
		s.log.Warn("session: decode self info", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.selfInfo = model.SelfInfo{
		ContactType: info.ContactType,
		PublicKey:   info.PublicKey,
		NodeName:    info.NodeName,
	}
	s.mu.Unlock()

	if s.storeOpener != nil {
		st, err := s.storeOpener(info.PublicKey)
		if err != nil {
			s.log.Warn("session: open store, continuing without persistence", zap.Error(err))
		} else {
			s.mu.Lock()
			s.store = st
			s.mu.Unlock()
			s.mu.RLock()
			deviceInfo, selfInfo := s.deviceInfo, s.selfInfo
			s.mu.RUnlock()
			if err := st.SaveDeviceInfo(deviceInfo, selfInfo); err != nil {
				s.log.Warn("session: save device info", zap.Error(err))
			}
		}
	}

	s.advanceTo(StateAwaitContacts)
}

func (s *Session) handleContactsPhase(code codec.ResponseCode, frame []byte) {
	switch code {
	case codec.RespContactsStart:
		s.mu.Lock()
		s.contacts = make(map[string]model.Contact)
		s.mu.Unlock()
	case codec.RespContact:
		s.ingestContact(frame)
	case codec.RespEndOfContacts:
		s.beginChannelDiscovery()
	}
}

func (s *Session) ingestContact(frame []byte) {
	wire, err := codec.DecodeContact(frame)
	if err != nil {
		s.log.Warn("session: decode contact", zap.Error(err))
		return
	}
	c := model.FromWireContact(wire)
	if !c.Valid() {
		s.log.Debug("session: discarding invalid contact", zap.String("name", c.Name))
		return
	}
	s.mu.Lock()
	s.contacts[c.KeyHex()] = c
	s.mu.Unlock()
	if s.store != nil {
		if err := s.store.SaveContact(c); err != nil {
			s.log.Warn("session: save contact", zap.Error(err))
		}
	}
	s.sink.Publish(Event{Type: EventContactUpdated, Timestamp: time.Now().UTC(), Data: c})
}

func (s *Session) beginChannelDiscovery() {
	s.discoveringIdx = 0
	s.setState(StateDiscoverChannels)
	if err := s.send(codec.BuildGetChannel(s.discoveringIdx)); err != nil {
		s.log.Warn("session: send get channel", zap.Error(err))
	}
}

func (s *Session) handleChannelDiscoveryPhase(code codec.ResponseCode, frame []byte) {
	if code != codec.RespChannelInfo {
		return
	}
	wire, err := codec.DecodeChannelInfo(frame)
	if err != nil {
		s.log.Warn("session: decode channel info", zap.Error(err))
		s.advanceChannelDiscovery()
		return
	}
	ch := model.Channel{Idx: wire.Idx, Name: wire.Name, Secret: wire.Secret}
	if !ch.IsEmpty() {
		s.mu.Lock()
		s.channels[ch.Idx] = ch
		s.mu.Unlock()
		if s.store != nil {
			if err := s.store.SaveChannel(ch); err != nil {
				s.log.Warn("session: save channel", zap.Error(err))
			}
		}
		s.sink.Publish(Event{Type: EventChannelDiscovered, Timestamp: time.Now().UTC(), Data: ch})
	}
	s.advanceChannelDiscovery()
}

const maxChannelIdx = 254

func (s *Session) advanceChannelDiscovery() {
	s.discoveringIdx++
	if s.discoveringIdx > maxChannelIdx {
		s.setState(StateReady)
		return
	}
	if err := s.send(codec.BuildGetChannel(s.discoveringIdx)); err != nil {
		s.log.Warn("session: send get channel", zap.Error(err))
	}
}

func (s *Session) handleSteadyState(code codec.ResponseCode, frame []byte) {
	switch code {
	case codec.RespContact:
		s.ingestContact(frame)
	case codec.RespChannelMsgRecvV3:
		s.ingestChannelMessage(frame)
	case codec.RespContactMsgRecvV3:
		s.ingestContactMessage(frame)
	case codec.RespNoMoreMessages, codec.RespOK, codec.RespSent:
		// nothing to do: acknowledgements with no further state change
	}
}

func (s *Session) ingestChannelMessage(frame []byte) {
	wire, err := codec.DecodeChannelMsgRecv(frame)
	if err != nil {
		s.log.Warn("session: decode channel message", zap.Error(err))
		return
	}
	msg := model.FromChannelRecv(wire, time.Now().UTC())
	s.persistAndPublish(msg)
}

func (s *Session) ingestContactMessage(frame []byte) {
	wire, err := codec.DecodeContactMsgRecv(frame)
	if err != nil {
		s.log.Warn("session: decode contact message", zap.Error(err))
		return
	}
	msg := model.FromContactRecv(wire, time.Now().UTC())
	s.mu.RLock()
	for _, c := range s.contacts {
		if len(c.PublicKey) >= 6 && string(c.PublicKey[:6]) == string(msg.SenderKeyPrefix) {
			msg.SenderName = c.Name
			break
		}
	}
	s.mu.RUnlock()
	s.persistAndPublish(msg)
}

func (s *Session) persistAndPublish(msg model.Message) {
	if s.store != nil {
		if err := s.store.SaveMessage(msg); err != nil {
			s.log.Warn("session: save message", zap.Error(err))
		}
	}
	s.sink.Publish(Event{Type: EventNewMessage, Timestamp: time.Now().UTC(), Data: msg})
}

// handlePush processes an asynchronous radio->app push. Most pushes are
// informational; PUSH_MSG_WAITING is the one that drives further protocol
// traffic, by requesting the waiting message.
func (s *Session) handlePush(frame []byte) {
	code := codec.PushCode(frame[0])
	switch code {
	case codec.PushMsgWaiting:
		if err := s.send(codec.BuildSyncNextMessage()); err != nil {
			s.log.Warn("session: send sync next message", zap.Error(err))
		}
	case codec.PushAdvert, codec.PushNewAdvert:
		// advert pushes carry a raw re-advertisement packet; the session
		// neither decodes it nor re-requests contacts in response.
	case codec.PushPathUpdated:
		if _, err := codec.DecodePathUpdated(frame); err != nil {
			s.log.Debug("session: decode path updated", zap.Error(err))
		}
	case codec.PushSendConfirmed:
		if _, err := codec.DecodeSendConfirmed(frame); err != nil {
			s.log.Debug("session: decode send confirmed", zap.Error(err))
		}
	case codec.PushLogRxData:
		s.handleRawRX(frame)
	}
}

func (s *Session) handleRawRX(frame []byte) {
	wire, err := codec.DecodeRawRX(frame)
	if err != nil {
		s.log.Debug("session: decode log rx data", zap.Error(err))
		return
	}
	ev := RawRXEvent{SNR: wire.SNR, RSSI: wire.RSSI, Payload: wire.Payload}
	select {
	case s.rawRX <- ev:
	default:
		// nobody listening; drop
	}
	s.sink.Publish(Event{Type: EventRawRX, Timestamp: time.Now().UTC(), Data: ev})
}
