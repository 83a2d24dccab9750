// Package session implements the per-peer encrypted conversation state
// machine: the Diffie-Hellman handshake, the encrypted message loop with
// its replay/deletion counters, and the SMP sub-handler that runs a
// zero-knowledge shared-secret check over that loop.
//
// A Session owns its crypto state exclusively; callers interact with it
// only through HandleMessage (inbound) and SendMessage/StartSMP/
// ProvideSMPAnswer (outbound), with results delivered through Callbacks.
// This mirrors the single-owner-actor model the rest of the protocol
// assumes: a Session is meant to be driven from one goroutine consuming
// its own inbound queue, not called concurrently from many.
package session

import (
	"encoding/base64"
	"math/big"
	"strconv"

	"github.com/pion/logging"

	"hingechat/pkg/crypto"
	"hingechat/pkg/smp"
	"hingechat/pkg/wire"
)

// Session is the client-side encrypted conversation with one peer.
type Session struct {
	role  Role
	state State

	ownID    int
	remoteID int

	dh     *crypto.DHKey
	aesKey []byte
	iv     []byte

	outgoingCounter uint64
	incomingCounter uint64

	smp           *smp.Session
	smpQuestion   string
	pendingSMPBuf []byte

	send      func(*wire.Message) error
	callbacks Callbacks
	log       logging.LeveledLogger
}

// NewSession creates a Session for one peer. send hands an outbound
// Message to the owning Connection's send queue; it must not block
// indefinitely. callbacks must have all four fields set.
func NewSession(role Role, ownID, remoteID int, send func(*wire.Message) error, callbacks Callbacks) (*Session, error) {
	if role != RoleInitiator && role != RoleResponder {
		return nil, ErrInvalidRole
	}
	if send == nil {
		return nil, ErrNilSend
	}
	if err := callbacks.validate(); err != nil {
		return nil, err
	}
	return &Session{
		role:      role,
		state:     StateInit,
		ownID:     ownID,
		remoteID:  remoteID,
		send:      send,
		callbacks: callbacks,
	}, nil
}

// SetLogger attaches a logger for diagnostics. Nil disables logging; a
// Session logs nothing by default.
func (s *Session) SetLogger(log logging.LeveledLogger) { s.log = log }

// State returns the Session's current state.
func (s *Session) State() State { return s.state }

// Role returns the Session's handshake role.
func (s *Session) Role() Role { return s.role }

// Start begins the handshake: the initiator sends HELO and waits for
// REDY; the responder sends REDY and waits for the initiator's PUB_KEY.
func (s *Session) Start() error {
	if s.state != StateInit {
		return ErrInvalidState
	}

	key, err := crypto.GenerateDHKey()
	if err != nil {
		return err
	}
	s.dh = key

	switch s.role {
	case RoleInitiator:
		s.state = StateWaitingReady
		return s.send(wire.NewMessage(wire.CmdHello, s.ownID, s.remoteID))
	case RoleResponder:
		s.state = StateWaitingPubKey
		return s.send(wire.NewMessage(wire.CmdReady, s.ownID, s.remoteID))
	default:
		return ErrInvalidRole
	}
}

// Terminate sends END to the peer and moves the Session to Terminated.
// It is idempotent.
func (s *Session) Terminate() error {
	if s.state == StateTerminated {
		return nil
	}
	err := s.send(wire.NewMessage(wire.CmdEnd, s.ownID, s.remoteID))
	s.state = StateTerminated
	return err
}

// HandleMessage processes one inbound Message already addressed to this
// Session. It dispatches to the handshake or encrypted-loop handler
// depending on state.
func (s *Session) HandleMessage(msg *wire.Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	switch s.state {
	case StateTerminated:
		return nil
	case StateInit, StateWaitingReady, StateWaitingPubKey:
		return s.handleHandshake(msg)
	case StateEncryptedLoop:
		return s.handleLoop(msg)
	default:
		return ErrInvalidState
	}
}

func (s *Session) handleHandshake(msg *wire.Message) error {
	switch msg.Command {
	case wire.CmdEnd:
		s.state = StateTerminated
		s.callbacks.Err(s.ownID, wire.ErrConnEnded)
		return nil
	case wire.CmdReject:
		s.state = StateTerminated
		s.callbacks.Err(s.ownID, wire.ErrConnRejected)
		return nil
	}

	switch s.role {
	case RoleInitiator:
		switch s.state {
		case StateInit:
			if msg.Command == wire.CmdReady {
				return nil
			}
		case StateWaitingReady:
			if msg.Command != wire.CmdReady {
				return s.badHandshake()
			}
			s.state = StateWaitingPubKey
			return s.sendPubKey()
		case StateWaitingPubKey:
			if msg.Command != wire.CmdPubKey {
				return s.badHandshake()
			}
			if err := s.deriveShared(msg.Data); err != nil {
				return s.badHandshake()
			}
			s.completeHandshake(false)
			return nil
		}
	case RoleResponder:
		if s.state == StateWaitingPubKey {
			if msg.Command == wire.CmdHello {
				return s.send(wire.NewMessage(wire.CmdReady, s.ownID, s.remoteID))
			}
			if msg.Command != wire.CmdPubKey {
				return s.badHandshake()
			}
			if err := s.deriveShared(msg.Data); err != nil {
				return s.badHandshake()
			}
			if err := s.sendPubKey(); err != nil {
				return err
			}
			s.completeHandshake(true)
			return nil
		}
	}
	return s.badHandshake()
}

func (s *Session) badHandshake() error {
	s.send(wire.NewMessage(wire.CmdErr, s.ownID, s.remoteID).WithError(wire.ErrBadHandshake))
	s.state = StateTerminated
	s.callbacks.Err(s.ownID, wire.ErrBadHandshake)
	return nil
}

func (s *Session) sendPubKey() error {
	data := base64.StdEncoding.EncodeToString([]byte(s.dh.Public.String()))
	return s.send(wire.NewMessage(wire.CmdPubKey, s.ownID, s.remoteID).WithData(data))
}

func (s *Session) deriveShared(data string) error {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return ErrBadHandshakePayload
	}
	peerPublic, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return ErrBadHandshakePayload
	}
	aesKey, iv, err := s.dh.ComputeShared(peerPublic)
	if err != nil {
		return err
	}
	s.aesKey = aesKey
	s.iv = iv
	return nil
}

// completeHandshake finishes the handshake. serverInitiated is true when
// the local Session ran as the responder, i.e. the peer opened the
// handshake.
func (s *Session) completeHandshake(serverInitiated bool) {
	s.state = StateEncryptedLoop
	if s.log != nil {
		s.log.Infof("session %s: handshake complete (serverInitiated=%v)", crypto.Fingerprint(s.aesKey), serverInitiated)
	}
	s.callbacks.HandshakeDone(s.ownID, serverInitiated)
}

func (s *Session) handleLoop(msg *wire.Message) error {
	if msg.Command == wire.CmdEnd {
		s.state = StateTerminated
		s.callbacks.Err(s.ownID, wire.ErrConnEnded)
		return nil
	}

	if !msg.Command.IsLoopCommand() {
		s.send(wire.NewMessage(wire.CmdErr, s.ownID, s.remoteID).WithError(wire.ErrInvalidCommand))
		s.state = StateTerminated
		s.callbacks.Err(s.ownID, wire.ErrInvalidCommand)
		return nil
	}

	if msg.Command == wire.CmdErr {
		if code, ok := wire.ParseErrorCode(msg.Error); ok {
			s.callbacks.Err(s.ownID, code)
		}
		return nil
	}

	plaintext, err := s.decryptFrame(msg)
	if err != nil {
		// Cryptographic errors are surfaced but the session stays open:
		// the user decides whether to terminate on a tampering signal.
		if s.log != nil {
			s.log.Warnf("session %s: %v", crypto.Fingerprint(s.aesKey), err)
		}
		s.callbacks.Err(s.ownID, classifyDecryptError(err))
		return nil
	}

	if msg.Command.IsSMPCommand() {
		s.handleSMP(msg.Command, plaintext)
		return nil
	}

	s.callbacks.Recv(msg.Command, msg.Route, plaintext)
	return nil
}

func classifyDecryptError(err error) wire.ErrorCode {
	switch err {
	case ErrBadHMAC:
		return wire.ErrBadHMAC
	case ErrMessageReplay:
		return wire.ErrMessageReplay
	case ErrMessageDeletion:
		return wire.ErrMessageDeletion
	default:
		return wire.ErrBadDecrypt
	}
}

// decryptFrame implements the encrypted-frame validation: HMAC check,
// then counter check, then decrypt. The HMAC is computed over ciphertext
// only, under the session's AES key.
func (s *Session) decryptFrame(msg *wire.Message) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		return "", ErrMalformedFrame
	}
	encNum, err := base64.StdEncoding.DecodeString(msg.Num)
	if err != nil {
		return "", ErrMalformedFrame
	}
	mac, err := base64.StdEncoding.DecodeString(msg.HMAC)
	if err != nil {
		return "", ErrMalformedFrame
	}

	computed := crypto.HMACSHA256Slice(s.aesKey, ct)
	if !crypto.SecureCompare(computed, mac) {
		return "", ErrBadHMAC
	}

	numPlain, err := crypto.AESDecrypt(s.aesKey, s.iv, encNum)
	if err != nil {
		return "", err
	}
	n, err := strconv.ParseUint(string(numPlain), 10, 64)
	if err != nil {
		return "", ErrMalformedFrame
	}

	switch {
	case n < s.incomingCounter:
		return "", ErrMessageReplay
	case n > s.incomingCounter:
		return "", ErrMessageDeletion
	}
	s.incomingCounter++

	plain, err := crypto.AESDecrypt(s.aesKey, s.iv, ct)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// SendMessage encrypts plaintext (if non-empty) and sends it as command.
// A command with no payload (e.g. a bare TYPING tick) is sent with empty
// data/hmac/num fields and no counter advance.
func (s *Session) SendMessage(command wire.Command, plaintext string) error {
	if s.state != StateEncryptedLoop {
		return ErrNotEncrypted
	}
	return s.sendEncrypted(command, plaintext)
}

func (s *Session) sendEncrypted(command wire.Command, plaintext string) error {
	msg := wire.NewMessage(command, s.ownID, s.remoteID)
	if plaintext == "" {
		return s.send(msg)
	}

	ct, err := crypto.AESEncrypt(s.aesKey, s.iv, []byte(plaintext))
	if err != nil {
		return err
	}
	encNum, err := crypto.AESEncrypt(s.aesKey, s.iv, []byte(strconv.FormatUint(s.outgoingCounter, 10)))
	if err != nil {
		return err
	}
	mac := crypto.HMACSHA256Slice(s.aesKey, ct)

	msg.Data = base64.StdEncoding.EncodeToString(ct)
	msg.Num = base64.StdEncoding.EncodeToString(encNum)
	msg.HMAC = base64.StdEncoding.EncodeToString(mac)
	s.outgoingCounter++

	return s.send(msg)
}

// StartSMP begins a Socialist Millionaires Protocol exchange as the
// initiator: it sends the question plaintext (SMP0) followed by the
// step1 buffer (SMP1).
func (s *Session) StartSMP(question, answer string) error {
	if s.state != StateEncryptedLoop {
		return ErrNotEncrypted
	}
	s.smp = smp.NewInitiator(answer)
	s.smpQuestion = question

	buf1, err := s.smp.Step1()
	if err != nil {
		return err
	}
	if err := s.sendEncrypted(wire.CmdSMP0, question); err != nil {
		return err
	}
	return s.sendEncrypted(wire.CmdSMP1, encodeSMPBuffer(buf1))
}

// ProvideSMPAnswer supplies the responder's answer to a pending SMP
// request. If an SMP1 buffer was stashed while waiting for the answer,
// it is processed immediately.
func (s *Session) ProvideSMPAnswer(answer string) error {
	if s.smp == nil {
		s.smp = smp.NewResponder()
	}
	s.smp.SetAnswer(answer)

	if s.pendingSMPBuf == nil {
		return nil
	}
	buf1 := s.pendingSMPBuf
	s.pendingSMPBuf = nil
	return s.advanceSMPResponderStep2(buf1)
}

func (s *Session) handleSMP(command wire.Command, payload string) {
	switch command {
	case wire.CmdSMP0:
		s.smpQuestion = payload
		s.callbacks.SMP(smp.PhaseRequest, s.ownID, payload, nil)
		return
	case wire.CmdSMP1:
		buf, err := decodeSMPBuffer(payload)
		if err != nil {
			s.failSMP()
			return
		}
		if s.smp == nil {
			s.smp = smp.NewResponder()
		}
		if err := s.advanceSMPResponderStep2(buf); err != nil {
			if err == smp.ErrNoAnswer {
				s.pendingSMPBuf = buf
				return
			}
			s.failSMP()
		}
		return
	case wire.CmdSMP2:
		buf, err := decodeSMPBuffer(payload)
		if err != nil {
			s.failSMP()
			return
		}
		buf3, err := s.smp.Step3(buf)
		if err != nil {
			s.failSMP()
			return
		}
		if err := s.sendEncrypted(wire.CmdSMP3, encodeSMPBuffer(buf3)); err != nil {
			s.callbacks.Err(s.ownID, wire.ErrNetworkError)
		}
		return
	case wire.CmdSMP3:
		buf, err := decodeSMPBuffer(payload)
		if err != nil {
			s.failSMP()
			return
		}
		buf4, match, err := s.smp.Step4(buf)
		if err != nil {
			s.failSMP()
			return
		}
		if err := s.sendEncrypted(wire.CmdSMP4, encodeSMPBuffer(buf4)); err != nil {
			s.callbacks.Err(s.ownID, wire.ErrNetworkError)
		}
		s.finishSMP(match)
		return
	case wire.CmdSMP4:
		buf, err := decodeSMPBuffer(payload)
		if err != nil {
			s.failSMP()
			return
		}
		match, err := s.smp.Step5(buf)
		if err != nil {
			s.failSMP()
			return
		}
		s.finishSMP(match)
		return
	}
}

func (s *Session) advanceSMPResponderStep2(buf1 []byte) error {
	buf2, err := s.smp.Step2(buf1)
	if err != nil {
		return err
	}
	return s.sendEncrypted(wire.CmdSMP2, encodeSMPBuffer(buf2))
}

func (s *Session) finishSMP(match bool) {
	if s.log != nil {
		s.log.Debugf("session %s: smp match=%v", crypto.Fingerprint(s.aesKey), match)
	}
	if match {
		s.callbacks.SMP(smp.PhaseComplete, s.ownID, "", nil)
	} else {
		s.callbacks.Err(s.ownID, wire.ErrSMPMatchFailed)
		s.callbacks.SMP(smp.PhaseError, s.ownID, "", ErrSMPMatchFailed)
	}
	s.smp = nil
	s.smpQuestion = ""
}

func (s *Session) failSMP() {
	s.callbacks.Err(s.ownID, wire.ErrSMPCheckFailed)
	s.callbacks.SMP(smp.PhaseError, s.ownID, "", ErrSMPCheckFailed)
	s.smp = nil
	s.smpQuestion = ""
	s.pendingSMPBuf = nil
}

func encodeSMPBuffer(buf []byte) string {
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeSMPBuffer(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(payload)
}
