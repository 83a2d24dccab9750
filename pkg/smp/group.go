// Package smp implements the Socialist Millionaires Protocol: an
// interactive zero-knowledge proof that two session peers hold the same
// secret, without revealing it to each other or to anyone relaying the
// exchange. It runs over its own 1536-bit MODP group, distinct from (and
// smaller than) the 4096-bit group the session's Diffie-Hellman handshake
// uses in package crypto.
package smp

import (
	"math/big"

	"hingechat/pkg/crypto"
)

// p is the fixed 1536-bit MODP safe prime the protocol runs over, embedded
// the same way package crypto embeds its 4096-bit Diffie-Hellman prime.
var p = mustHexBig(
	"FFFFFFFFFFFFFFFF" +
		"C90FDAA22168C234" +
		"C4C6628B80DC1CD1" +
		"29024E088A67CC74" +
		"020BBEA63B139B22" +
		"514A08798E3404DD" +
		"EF9519B3CD3A431B" +
		"302B0A6DF25F1437" +
		"4FE1356D6D51C245" +
		"E485B576625E7EC6" +
		"F44C42E9A637ED6B" +
		"0BFF5CB6F406B7ED" +
		"EE386BFB5A899FA5" +
		"AE9F24117C4B1FE6" +
		"49286651ECE45B3D" +
		"C2007CB8A163BF05" +
		"98DA48361C55D39A" +
		"69163FA8FD24CF5F" +
		"83655D23DCA3AD96" +
		"1C62F356208552BB" +
		"9ED529077096966D" +
		"670C354E4ABC9804" +
		"F1746C08CA237327" +
		"FFFFFFFFFFFFFFFF")

// g is the group generator.
var g = big.NewInt(2)

// q is the subgroup order, (p-1)/2.
var q = new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1)

func mustHexBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("smp: invalid embedded prime")
	}
	return n
}

// inGroupRange reports whether x lies in [2, p-2], the validity range the
// protocol requires of every group element it receives from a peer.
func inGroupRange(x *big.Int) bool {
	pMinus2 := new(big.Int).Sub(p, big.NewInt(2))
	return x.Cmp(big.NewInt(2)) >= 0 && x.Cmp(pMinus2) <= 0
}

// expMod computes base^exp mod p.
func expMod(base, exp *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, p)
}

// invm computes x^(p-2) mod p, the Fermat inverse of x in the group.
func invm(x *big.Int) *big.Int {
	pMinus2 := new(big.Int).Sub(p, big.NewInt(2))
	return new(big.Int).Exp(x, pMinus2, p)
}

// mulMod computes a*b mod p.
func mulMod(a, b *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Mul(a, b), p)
}

// randomExponent draws 192 random bytes and interprets them as a
// big-endian integer, used directly without reduction mod q. Preserving
// this un-reduced draw (rather than the more conventional rand.Int(q)) is
// wire-critical: the peer performs the same unreduced computation.
func randomExponent() (*big.Int, error) {
	b, err := crypto.RandomBytes(192)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
