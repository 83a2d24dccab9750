package wire

import (
	"encoding/binary"
	"encoding/json"
	"io"
)

// LengthPrefixSize is the size of the frame length prefix in bytes.
const LengthPrefixSize = 4

// MaxFrameSize bounds a single frame's JSON payload, guarding against a
// peer that sends a bogus length prefix and forcing an enormous
// allocation.
const MaxFrameSize = 1 << 20 // 1 MiB

// StreamWriter wraps an io.Writer to add TCP length-prefix framing. The
// length prefix is big-endian per the wire schema; this deliberately
// differs from the source's little-endian framing.
type StreamWriter struct {
	w io.Writer
}

// NewStreamWriter creates a stream writer for TCP framing.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// Write writes a message with a 4-byte big-endian length prefix.
func (sw *StreamWriter) Write(frame []byte) (int, error) {
	var lenBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(frame)))

	n, err := sw.w.Write(lenBuf[:])
	if err != nil {
		return n, err
	}
	m, err := sw.w.Write(frame)
	return n + m, err
}

// WriteMessage JSON-encodes msg and writes it as a length-prefixed frame.
func (sw *StreamWriter) WriteMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = sw.Write(data)
	return err
}

// StreamReader wraps an io.Reader to read TCP length-prefixed frames.
type StreamReader struct {
	r io.Reader
}

// NewStreamReader creates a stream reader for TCP framing.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// Read reads one length-prefixed frame and returns its payload.
func (sr *StreamReader) Read() ([]byte, error) {
	var lenBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(sr.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, ErrStreamReadFailed
	}

	frameLen := binary.BigEndian.Uint32(lenBuf[:])
	if frameLen == 0 {
		return nil, ErrInvalidLengthPrefix
	}
	if frameLen > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(sr.r, frame); err != nil {
		return nil, ErrStreamReadFailed
	}
	return frame, nil
}

// ReadMessage reads one frame and JSON-decodes it into a Message. A field
// missing from the JSON object is indistinguishable from a malformed
// frame at this layer, so both surface as ErrMalformedMessage; the relay
// drops the Connection on this error without replying.
func (sr *StreamReader) ReadMessage() (*Message, error) {
	data, err := sr.Read()
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrMalformedMessage
	}
	for _, field := range []string{"command", "route", "data", "hmac", "error", "num"} {
		if _, ok := raw[field]; !ok {
			return nil, ErrMalformedMessage
		}
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, ErrMalformedMessage
	}
	return &msg, nil
}
