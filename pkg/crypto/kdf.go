package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"
)

// FingerprintSize is the length of the log-correlation id returned by Fingerprint.
const FingerprintSize = 8

// HKDFSHA256 derives key material using HKDF-SHA256 (RFC 5869).
//
// Parameters:
//   - inputKey: Input keying material (IKM)
//   - salt: Optional salt value (can be nil or empty)
//   - info: Optional context/application-specific info (can be nil or empty)
//   - length: Number of bytes to derive
//
// Returns the derived key material of the specified length.
func HKDFSHA256(inputKey, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(sha256.New, inputKey, salt, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// HKDFExtractSHA256 performs only the HKDF-Extract operation.
// This extracts a pseudorandom key (PRK) from the input keying material.
func HKDFExtractSHA256(inputKey, salt []byte) []byte {
	return hkdf.Extract(sha256.New, inputKey, salt)
}

// HKDFExpandSHA256 performs only the HKDF-Expand operation.
// This expands a pseudorandom key into output keying material.
func HKDFExpandSHA256(prk, info []byte, length int) ([]byte, error) {
	reader := hkdf.Expand(sha256.New, prk, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Fingerprint derives a short, non-reversible id from a session's AES key
// for use in log lines. It exists so logging can name a session
// by a 16-hex-digit id without ever printing key
// material, ciphertext, or plaintext.
func Fingerprint(aesKey []byte) string {
	out, err := HKDFSHA256(aesKey, nil, []byte("hingechat-log-fingerprint"), FingerprintSize)
	if err != nil {
		// HKDF-Expand only fails when the requested length exceeds
		// 255*HashLen; FingerprintSize is a small constant.
		panic("crypto: fingerprint derivation failed: " + err.Error())
	}
	return hex.EncodeToString(out)
}
