package crypto

import "crypto/subtle"

// SecureCompare reports whether a and b are equal, in constant time over
// the shorter of the two lengths. It returns false immediately (without
// comparing contents) when the lengths differ, same as the rest of this
// codebase's HMAC verification calls expect.
//
// This is the primitive behind the session layer's tampering check (HMAC
// verification); never replace it with bytes.Equal.
func SecureCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
