package smp

import "math/big"

// deriveSecret maps a UTF-8 answer string into a big integer the same way
// the source does: secret |= byte_i << (8*(len-1-i)), i.e. the string's
// bytes read as a big-endian integer. This is equivalent to
// big.Int.SetBytes, spelled out here because the byte order is
// wire-critical, not an implementation detail.
func deriveSecret(answer string) *big.Int {
	return new(big.Int).SetBytes([]byte(answer))
}
