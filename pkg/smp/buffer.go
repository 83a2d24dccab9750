package smp

import (
	"encoding/binary"
	"math/big"
)

// PackBuffer encodes items as the wire's SMP buffer format: each item is a
// 4-byte big-endian length n followed by n bytes of its unsigned
// big-endian representation. Zero encodes as a zero-length item (an empty
// byte string), not a single zero byte — big.Int.Bytes() already returns
// nil for zero, so this falls out for free, but it matters for wire
// compatibility and must not be "fixed" into a 1-byte encoding.
func PackBuffer(items ...*big.Int) []byte {
	buf := make([]byte, 0, 64*len(items))
	var lenBytes [4]byte
	for _, it := range items {
		b := it.Bytes()
		binary.BigEndian.PutUint32(lenBytes[:], uint32(len(b)))
		buf = append(buf, lenBytes[:]...)
		buf = append(buf, b...)
	}
	return buf
}

// UnpackBuffer decodes exactly count items from buf, in PackBuffer's
// format. It returns ErrMalformedBuffer if buf is truncated or holds a
// different number of items than count.
func UnpackBuffer(buf []byte, count int) ([]*big.Int, error) {
	items := make([]*big.Int, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		if pos+4 > len(buf) {
			return nil, ErrMalformedBuffer
		}
		n := int(binary.BigEndian.Uint32(buf[pos : pos+4]))
		pos += 4
		if pos+n > len(buf) {
			return nil, ErrMalformedBuffer
		}
		items = append(items, new(big.Int).SetBytes(buf[pos:pos+n]))
		pos += n
	}
	if pos != len(buf) {
		return nil, ErrMalformedBuffer
	}
	return items, nil
}
