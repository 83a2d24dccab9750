package session

import "errors"

// Session package errors.
var (
	// ErrInvalidRole is returned when a Session is constructed with a role
	// other than RoleInitiator or RoleResponder.
	ErrInvalidRole = errors.New("session: invalid role")

	// ErrInvalidState is returned when a method is called in a state that
	// doesn't permit it (e.g. Start called twice).
	ErrInvalidState = errors.New("session: invalid state for operation")

	// ErrMissingCallback is returned when a Callbacks value has a nil
	// function field; all four are required at construction.
	ErrMissingCallback = errors.New("session: missing callback")

	// ErrNilSend is returned when NewSession is given a nil send function.
	ErrNilSend = errors.New("session: nil send function")

	// ErrNilMessage is returned when HandleMessage is given a nil Message.
	ErrNilMessage = errors.New("session: nil message")

	// ErrNotEncrypted is returned by SendMessage before the handshake has
	// completed.
	ErrNotEncrypted = errors.New("session: session is not in the encrypted loop")

	// ErrBadHandshakePayload is returned when a PUB_KEY frame's data isn't
	// valid base64 of a decimal integer.
	ErrBadHandshakePayload = errors.New("session: malformed handshake payload")

	// ErrBadHMAC is returned when an encrypted frame's HMAC doesn't match.
	ErrBadHMAC = errors.New("session: hmac verification failed")

	// ErrMessageReplay is returned when an encrypted frame's counter is
	// behind the expected value.
	ErrMessageReplay = errors.New("session: message replay detected")

	// ErrMessageDeletion is returned when an encrypted frame's counter is
	// ahead of the expected value.
	ErrMessageDeletion = errors.New("session: message deletion detected")

	// ErrMalformedFrame is returned when an encrypted frame's data/num/hmac
	// fields aren't valid base64.
	ErrMalformedFrame = errors.New("session: malformed encrypted frame")

	// ErrSMPMatchFailed is delivered via Callbacks.SMP when an otherwise
	// valid SMP exchange concludes with mismatched secrets.
	ErrSMPMatchFailed = errors.New("session: smp secrets do not match")

	// ErrSMPCheckFailed is delivered via Callbacks.SMP when an SMP proof
	// fails to verify or a buffer is malformed.
	ErrSMPCheckFailed = errors.New("session: smp proof verification failed")
)
