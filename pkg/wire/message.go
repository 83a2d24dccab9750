// Package wire implements the length-prefixed JSON message framing the
// relay and its peers speak over TCP: one Message per frame, preceded by
// a 4-byte big-endian length.
package wire

// ServerRoute is the sentinel id meaning "the relay itself" rather than a
// registered peer.
const ServerRoute = 0

// ProtocolVersion is the value every client must send in a VERSION frame
// during the connection preamble.
const ProtocolVersion = "1"

// NickMaxLen is the maximum length of a registered nick.
const NickMaxLen = 32

// Message is one frame's worth of protocol state. All fields are present
// on the wire; a missing field decodes as MALFORMED_MESSAGE rather than
// a Go zero value silently standing in for it.
type Message struct {
	Command Command `json:"command"`
	Route   [2]int  `json:"route"`
	Data    string  `json:"data"`
	HMAC    string  `json:"hmac"`
	Error   string  `json:"error"`
	Num     string  `json:"num"`
}

// NewMessage builds a Message with the given route and no payload, error,
// or crypto fields set — the shape most control-plane frames take.
func NewMessage(command Command, src, dst int) *Message {
	return &Message{
		Command: command,
		Route:   [2]int{src, dst},
	}
}

// Src returns the message's source id.
func (m *Message) Src() int { return m.Route[0] }

// Dst returns the message's destination id.
func (m *Message) Dst() int { return m.Route[1] }

// WithData returns m with Data set, for chaining at construction time.
func (m *Message) WithData(data string) *Message {
	m.Data = data
	return m
}

// WithError returns m with Error set to code's wire representation.
func (m *Message) WithError(code ErrorCode) *Message {
	m.Error = code.WireString()
	return m
}
