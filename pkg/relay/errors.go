package relay

import "errors"

// Relay package errors.
var (
	// ErrEmptyNick is returned by ValidateNick for an empty nick.
	ErrEmptyNick = errors.New("relay: nick is empty")

	// ErrInvalidNickContent is returned by ValidateNick for a nick
	// containing non-alphanumeric characters.
	ErrInvalidNickContent = errors.New("relay: nick contains invalid characters")

	// ErrInvalidNickLength is returned by ValidateNick for a nick longer
	// than wire.NickMaxLen.
	ErrInvalidNickLength = errors.New("relay: nick exceeds maximum length")

	// ErrNickAlreadyInUse is returned by ClientRegistry.Register when the
	// requested nick is already registered.
	ErrNickAlreadyInUse = errors.New("relay: nick already in use")

	// ErrSendQueueFull is returned by Connection.Send when the outbound
	// queue is at capacity.
	ErrSendQueueFull = errors.New("relay: send queue full")

	// ErrConnectionClosed is returned by Connection.Send after Close.
	ErrConnectionClosed = errors.New("relay: connection closed")
)
