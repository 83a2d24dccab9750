package smp

import (
	"crypto/sha256"
	"math/big"
	"strconv"
	"strings"
)

// fiatShamirHash reproduces the source protocol's peculiar challenge hash
// bit-for-bit: SHA-256 over the ASCII decimal concatenation of a
// domain-separation tag and a list of group elements, then the digest is
// reinterpreted as an integer, rendered back to hex, and truncated by one
// character before being reparsed. The truncation comes from the source's
// `hex(int)[2:-1]` slice, which drops Python's "0x" prefix and also the
// final hex digit. Both peers must drop that same digit or every proof in
// the exchange fails to verify, so this is preserved exactly rather than
// "corrected" to a full-length hash.
func fiatShamirHash(tag string, items ...*big.Int) *big.Int {
	var sb strings.Builder
	sb.WriteString(tag)
	for _, it := range items {
		sb.WriteString(it.String())
	}

	digest := sha256.Sum256([]byte(sb.String()))
	digestInt := new(big.Int).SetBytes(digest[:])

	hexStr := digestInt.Text(16)
	if len(hexStr) == 0 {
		hexStr = "0"
	}
	truncated := strings.ToUpper(hexStr[:len(hexStr)-1])

	result := new(big.Int)
	if truncated != "" {
		result.SetString(truncated, 16)
	}
	return result
}

// tagString renders a domain-separation tag ('1'..'8') the way the source
// embeds it: the decimal digits of the tag number.
func tagString(n int) string {
	return strconv.Itoa(n)
}
