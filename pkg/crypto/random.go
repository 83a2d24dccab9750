package crypto

import (
	"crypto/rand"
	"math/big"
)

// RandomBytes returns n cryptographically random bytes, read from the
// operating system's CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// randBigInt returns a uniform random integer in [0, max).
func randBigInt(max *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, max)
}
