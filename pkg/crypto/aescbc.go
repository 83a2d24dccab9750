// AES-256-CBC with PKCS#7 padding, keyed and IV'd the way Session derives
// them from a Diffie-Hellman secret: a single IV fixed for the lifetime of
// the session, not a fresh IV per message. That is a known protocol
// weakness (an attacker who can force plaintext repeats can exploit CBC's
// determinism across messages), but it is load-bearing for wire
// compatibility and MUST NOT be "fixed" unilaterally by one side — see
// decryptFrame in the session package for the companion HMAC-over-ciphertext
// check that catches tampering regardless.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
)

// AES-256 constants.
const (
	// AESKeySize is the AES-256 key size in bytes.
	AESKeySize = 32

	// AESBlockSize is the AES block size in bytes (also the CBC IV size).
	AESBlockSize = 16
)

// AESEncrypt pads plaintext to a multiple of AESBlockSize with PKCS#7
// padding, then encrypts it with AES-256-CBC under (key, iv).
func AESEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != AESBlockSize {
		return nil, ErrInvalidIVSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, AESBlockSize)
	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, padded)

	return ciphertext, nil
}

// AESDecrypt decrypts ciphertext with AES-256-CBC under (key, iv) and
// removes PKCS#7 padding. Returns ErrInvalidCiphertext if the ciphertext is
// empty or its length is not a multiple of the block size, and
// ErrBadDecrypt if the padding is invalid.
func AESDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != AESBlockSize {
		return nil, ErrInvalidIVSize
	}
	if len(ciphertext) == 0 || len(ciphertext)%AESBlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(padded, ciphertext)

	return pkcs7Unpad(padded, AESBlockSize)
}

// pkcs7Pad appends PKCS#7 padding: 1-blockSize bytes, each holding the
// pad length, so a plaintext that is already block-aligned still gets a
// full extra block of padding.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad validates and strips PKCS#7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadDecrypt
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrBadDecrypt
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrBadDecrypt
		}
	}

	return data[:len(data)-padLen], nil
}
