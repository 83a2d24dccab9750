package session

import (
	"hingechat/pkg/smp"
	"hingechat/pkg/wire"
)

// Callbacks is the fixed-shape record of upward events a Session emits.
// All four fields are required; NewSession rejects a Callbacks value with
// any nil field rather than silently treating a missing handler as a
// no-op.
type Callbacks struct {
	// Recv fires for every loop command that isn't part of the SMP
	// sub-handler, once its ciphertext has been verified and decrypted.
	Recv func(command wire.Command, route [2]int, plaintext string)

	// HandshakeDone fires once when the DH handshake completes.
	// serverInitiated is true when the remote peer opened the handshake
	// (this Session ran as RoleResponder).
	HandshakeDone func(sessionID int, serverInitiated bool)

	// Err fires for every error the Session surfaces upward: transport,
	// protocol, and cryptographic (including the four tampering signals,
	// which callers MUST NOT ignore).
	Err func(sessionID int, code wire.ErrorCode)

	// SMP fires at each phase transition of the SMP sub-handler: a
	// REQUEST when a question arrives, COMPLETE or ERROR once the
	// exchange resolves. payload carries the question on REQUEST; err is
	// set only on ERROR.
	SMP func(phase smp.Phase, sessionID int, payload string, err error)
}

func (c Callbacks) validate() error {
	if c.Recv == nil || c.HandshakeDone == nil || c.Err == nil || c.SMP == nil {
		return ErrMissingCallback
	}
	return nil
}
