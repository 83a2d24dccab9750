package crypto

import "errors"

// Errors returned by the crypto package.
var (
	// ErrBadDecrypt is returned when AES-CBC padding is invalid after decryption.
	ErrBadDecrypt = errors.New("crypto: bad decrypt")

	// ErrInvalidKeySize is returned when a key is not AESKeySize bytes.
	ErrInvalidKeySize = errors.New("crypto: invalid key size, must be 32 bytes")

	// ErrInvalidIVSize is returned when an IV is not AESBlockSize bytes.
	ErrInvalidIVSize = errors.New("crypto: invalid IV size, must be 16 bytes")

	// ErrInvalidCiphertext is returned when ciphertext is empty or not a
	// multiple of the AES block size.
	ErrInvalidCiphertext = errors.New("crypto: ciphertext is not a valid length")

	// ErrInvalidPublicValue is returned when a peer's DH public value is
	// outside [2, p-2].
	ErrInvalidPublicValue = errors.New("crypto: dh public value out of range")
)
