// Diffie-Hellman key agreement over the fixed 4096-bit MODP group (RFC 3526
// Group 16, generator 2) that sessions use to establish their AES key and
// IV. The prime is embedded as a big.Int parsed from hex literals, the same
// way golang.org/x/crypto/ssh embeds its kex group primes.
package crypto

import (
	"crypto/sha256"
	"math/big"
)

var dhP = mustHexBig(
	"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
		"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
		"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
		"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
		"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
		"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
		"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
		"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
		"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9" +
		"DE2BCBF6955817183995497CEA956AE515D2261898FA0510" +
		"15728E5A8AAAC42DAD33170D04507A33A85521ABDF1CBA64" +
		"ECFB850458DBEF0A8AEA71575D060C7DB3970F85A6E1E4C7" +
		"ABF5AE8CDB0933D71E8C94E04A25619DCEE3D2261AD2EE6B" +
		"F12FFA06D98A0864D87602733EC86A64521F2B18177B200C" +
		"BBE117577A615D6C770988C0BAD946E208E24FA074E5AB31" +
		"43DB5BFCE0FD108E4B82D120A92108011A723C12A787E6D7" +
		"88719A10BDBA5B2699C327186AF4E23C1A946834B6150BDA" +
		"2583E9CA2AD44CE8DBBBC2DB04DE8EF92E8EFC141FBECAA6" +
		"287C59474E6BC05D99B2964FA090C3A2233BA186515BE7ED" +
		"1F612970CEE2D7AFB81BDD762170481CD0069127D5B05AA9" +
		"93B4EA988D8FDDC186FFB7DC90A6C08F4DF435C934063199" +
		"FFFFFFFFFFFFFFFF")

var dhG = big.NewInt(2)

func mustHexBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("crypto: invalid embedded DH prime")
	}
	return n
}

// DHKey is a Diffie-Hellman keypair over the fixed 4096-bit group.
type DHKey struct {
	private *big.Int
	Public  *big.Int
}

// GenerateDHKey draws a private exponent uniformly from [2, p-2] and
// computes the corresponding public value g^x mod p.
func GenerateDHKey() (*DHKey, error) {
	pMinus2 := new(big.Int).Sub(dhP, big.NewInt(2))

	var x *big.Int
	for {
		candidate, err := randBigInt(pMinus2)
		if err != nil {
			return nil, err
		}
		// randBigInt returns a value in [0, pMinus2); shift into [2, p-2].
		x = new(big.Int).Add(candidate, big.NewInt(2))
		if x.Cmp(big.NewInt(2)) >= 0 && x.Cmp(pMinus2) <= 0 {
			break
		}
	}

	public := new(big.Int).Exp(dhG, x, dhP)
	return &DHKey{private: x, Public: public}, nil
}

// ComputeShared validates the peer's public value, computes the shared
// secret s = peerPublic^x mod p, and derives the session's AES key and IV
// from it: hash = SHA-256(decimal(s)); aes_key = hash[0:32]; iv =
// hash[16:32]. The 16-byte overlap between key and IV is a deliberate
// wire-compat detail, not a design choice, and must not be "corrected".
func (k *DHKey) ComputeShared(peerPublic *big.Int) (aesKey, iv []byte, err error) {
	pMinus2 := new(big.Int).Sub(dhP, big.NewInt(2))
	if peerPublic.Cmp(big.NewInt(2)) < 0 || peerPublic.Cmp(pMinus2) > 0 {
		return nil, nil, ErrInvalidPublicValue
	}

	shared := new(big.Int).Exp(peerPublic, k.private, dhP)
	digest := sha256.Sum256([]byte(shared.String()))

	aesKey = digest[0:32]
	iv = digest[16:32]
	return aesKey, iv, nil
}
