package wire

import "errors"

// Errors returned by the framing layer.
var (
	// ErrStreamReadFailed is returned when the underlying connection
	// fails mid-frame (after the length prefix but before the payload).
	ErrStreamReadFailed = errors.New("wire: failed to read from stream")

	// ErrInvalidLengthPrefix is returned for a zero-length frame.
	ErrInvalidLengthPrefix = errors.New("wire: invalid length prefix")

	// ErrFrameTooLarge is returned when a frame's declared length
	// exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")

	// ErrMalformedMessage is returned when a frame's JSON is invalid or
	// missing one of the Message schema's required fields.
	ErrMalformedMessage = errors.New("wire: malformed message")
)
