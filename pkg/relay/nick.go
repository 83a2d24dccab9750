package relay

import (
	"hingechat/pkg/wire"
)

// ValidateNick enforces the registration rule: a nick must be non-empty,
// alphanumeric, and no longer than wire.NickMaxLen.
func ValidateNick(nick string) error {
	if nick == "" {
		return ErrEmptyNick
	}
	if len(nick) > wire.NickMaxLen {
		return ErrInvalidNickLength
	}
	for _, r := range nick {
		if !isAlphanumeric(r) {
			return ErrInvalidNickContent
		}
	}
	return nil
}

func isAlphanumeric(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	default:
		return false
	}
}
