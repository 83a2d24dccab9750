package smp

import "math/big"

// DLProof is a zero-knowledge proof of knowledge of x given y = g^x mod p.
type DLProof struct {
	C, D *big.Int
}

// proveDL proves knowledge of x such that y = g^x mod p.
func proveDL(tag string, x *big.Int) (*DLProof, error) {
	r, err := randomExponent()
	if err != nil {
		return nil, err
	}
	t := expMod(g, r)
	c := fiatShamirHash(tag, t)
	d := new(big.Int).Mod(new(big.Int).Sub(r, new(big.Int).Mul(x, c)), q)
	return &DLProof{C: c, D: d}, nil
}

// verifyDL checks a DLProof against the claimed value y = g^x mod p.
func verifyDL(tag string, y *big.Int, proof *DLProof) bool {
	t := mulMod(expMod(g, proof.D), expMod(y, proof.C))
	return fiatShamirHash(tag, t).Cmp(proof.C) == 0
}

// CoordProof is a zero-knowledge proof for the pair (P = g3^r, Q = g^r *
// g2^secret), used by step2 and step3 to bind pb/qb and pa/qa to a single
// (r, secret) pair without revealing either.
type CoordProof struct {
	C, D1, D2 *big.Int
}

// proveCoordinate proves knowledge of (rVal, secretVal) underlying P =
// g3^rVal, Q = g^rVal * g2^secretVal.
func proveCoordinate(tag string, g2, g3, rVal, secretVal *big.Int) (*CoordProof, error) {
	r1, err := randomExponent()
	if err != nil {
		return nil, err
	}
	r2, err := randomExponent()
	if err != nil {
		return nil, err
	}

	t1 := expMod(g3, r1)
	t2 := mulMod(expMod(g, r1), expMod(g2, r2))
	c := fiatShamirHash(tag, t1, t2)

	d1 := new(big.Int).Mod(new(big.Int).Sub(r1, new(big.Int).Mul(rVal, c)), q)
	d2 := new(big.Int).Mod(new(big.Int).Sub(r2, new(big.Int).Mul(secretVal, c)), q)

	return &CoordProof{C: c, D1: d1, D2: d2}, nil
}

// verifyCoordinate checks a CoordProof against the claimed pair (P, Q).
func verifyCoordinate(tag string, g2, g3, p, qv *big.Int, proof *CoordProof) bool {
	t1 := mulMod(expMod(g3, proof.D1), expMod(p, proof.C))
	t2 := mulMod(mulMod(expMod(g, proof.D1), expMod(g2, proof.D2)), expMod(qv, proof.C))
	return fiatShamirHash(tag, t1, t2).Cmp(proof.C) == 0
}

// EqualLogsProof is a zero-knowledge proof that two group elements share
// the same discrete log relative to g and to a second base qab.
type EqualLogsProof struct {
	C, D *big.Int
}

// proveEqualLogs proves that x underlies both gx = g^x and qabx = qab^x.
func proveEqualLogs(tag string, qab, x *big.Int) (*EqualLogsProof, error) {
	r, err := randomExponent()
	if err != nil {
		return nil, err
	}
	t1 := expMod(g, r)
	t2 := expMod(qab, r)
	c := fiatShamirHash(tag, t1, t2)
	d := new(big.Int).Mod(new(big.Int).Sub(r, new(big.Int).Mul(x, c)), q)
	return &EqualLogsProof{C: c, D: d}, nil
}

// verifyEqualLogs checks an EqualLogsProof against the claimed pair (gx,
// qabx = qab^x).
func verifyEqualLogs(tag string, qab, gx, qabx *big.Int, proof *EqualLogsProof) bool {
	t1 := mulMod(expMod(g, proof.D), expMod(gx, proof.C))
	t2 := mulMod(expMod(qab, proof.D), expMod(qabx, proof.C))
	return fiatShamirHash(tag, t1, t2).Cmp(proof.C) == 0
}
