package wire

import "strconv"

// ErrorCode is the numeric tag carried in a Message's Error field. It is
// deliberately not a Go error: it crosses the wire as a decimal string
// and identifies a failure to the *other* peer, where Go's error values
// are for this process's own control flow.
type ErrorCode int

const (
	ErrConnEnded               ErrorCode = 0
	ErrNickNotFound            ErrorCode = 1
	ErrConnRejected            ErrorCode = 2
	ErrBadHandshake            ErrorCode = 3
	ErrClientExists            ErrorCode = 4
	ErrSelfConnect             ErrorCode = 5
	ErrServerShutdown          ErrorCode = 6
	ErrInvalidCommand          ErrorCode = 7
	ErrAlreadyConnected        ErrorCode = 8
	ErrNetworkError            ErrorCode = 9
	ErrBadHMAC                 ErrorCode = 10
	ErrBadDecrypt              ErrorCode = 11
	ErrInvalidNick             ErrorCode = 12
	ErrNickInUse               ErrorCode = 13
	ErrClosedConn              ErrorCode = 14
	ErrKicked                  ErrorCode = 15
	ErrSMPCheckFailed          ErrorCode = 16
	ErrSMPMatchFailed          ErrorCode = 17
	ErrMessageReplay           ErrorCode = 18
	ErrMessageDeletion         ErrorCode = 19
	ErrProtocolVersionMismatch ErrorCode = 20
)

var errorCodeNames = map[ErrorCode]string{
	ErrConnEnded:               "CONN_ENDED",
	ErrNickNotFound:            "NICK_NOT_FOUND",
	ErrConnRejected:            "CONN_REJECTED",
	ErrBadHandshake:            "BAD_HANDSHAKE",
	ErrClientExists:            "CLIENT_EXISTS",
	ErrSelfConnect:             "SELF_CONNECT",
	ErrServerShutdown:          "SERVER_SHUTDOWN",
	ErrInvalidCommand:          "INVALID_COMMAND",
	ErrAlreadyConnected:        "ALREADY_CONNECTED",
	ErrNetworkError:            "NETWORK_ERROR",
	ErrBadHMAC:                 "BAD_HMAC",
	ErrBadDecrypt:              "BAD_DECRYPT",
	ErrInvalidNick:             "INVALID_NICK",
	ErrNickInUse:               "NICK_IN_USE",
	ErrClosedConn:              "CLOSED_CONN",
	ErrKicked:                  "KICKED",
	ErrSMPCheckFailed:          "SMP_CHECK_FAILED",
	ErrSMPMatchFailed:          "SMP_MATCH_FAILED",
	ErrMessageReplay:           "MESSAGE_REPLAY",
	ErrMessageDeletion:         "MESSAGE_DELETION",
	ErrProtocolVersionMismatch: "PROTOCOL_VERSION_MISMATCH",
}

// String returns the code's human-readable name, for logging.
func (e ErrorCode) String() string {
	if name, ok := errorCodeNames[e]; ok {
		return name
	}
	return "UNKNOWN_ERROR"
}

// WireString returns the code's wire representation: a decimal string.
func (e ErrorCode) WireString() string {
	return strconv.Itoa(int(e))
}

// ParseErrorCode parses a Message's Error field. An empty string means
// "no error" and is reported as ok=false.
func ParseErrorCode(s string) (code ErrorCode, ok bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return ErrorCode(n), true
}

// IsTamperingSignal reports whether e is one of the four codes the spec
// designates as must-surface tampering signals: BAD_HMAC, MESSAGE_REPLAY,
// MESSAGE_DELETION, SMP_MATCH_FAILED.
func (e ErrorCode) IsTamperingSignal() bool {
	switch e {
	case ErrBadHMAC, ErrMessageReplay, ErrMessageDeletion, ErrSMPMatchFailed:
		return true
	default:
		return false
	}
}
