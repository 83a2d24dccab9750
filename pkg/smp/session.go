package smp

import (
	"math/big"
	"sync"
)

// Domain-separation tags for the Fiat-Shamir hashes, one per proof in the
// five-step exchange. These values cross the wire implicitly (both sides
// must hash the same tag for a proof to verify) and must match the
// source's numbering exactly.
const (
	tagG2Proof    = 1
	tagG3Proof    = 2
	tagG2bProof   = 3
	tagG3bProof   = 4
	tagCoordB     = 5
	tagCoordA     = 6
	tagEqualLogsA = 7
	tagEqualLogsB = 8
)

// Session implements the five-step SMP state machine described by
// DESIGN.md's grounding ledger for this package. One Session answers one
// question; it is destroyed after step4 (responder) or step5 (initiator).
//
// Usage (Initiator):
//
//	session := smp.NewInitiator(answer)
//	buf1, _ := session.Step1()
//	// send buf1, receive buf2
//	buf3, _ := session.Step3(buf2)
//	// send buf3, receive buf4
//	match, _ := session.Step5(buf4)
//
// Usage (Responder):
//
//	session := smp.NewResponder()
//	// receive buf1; if the answer isn't ready yet, stash buf1 and call
//	// session.SetAnswer(answer) once the user supplies one
//	session.SetAnswer(answer)
//	buf2, _ := session.Step2(buf1)
//	// send buf2, receive buf3
//	buf4, match, _ := session.Step4(buf3)
//	// send buf4
type Session struct {
	role  Role
	state State

	secret     *big.Int
	haveAnswer bool

	x2, x3 *big.Int

	ownG2, ownG3     *big.Int
	peerG2, peerG3   *big.Int
	crossG2, crossG3 *big.Int

	ownP, ownQ   *big.Int
	peerP, peerQ *big.Int

	qab *big.Int

	match bool

	mu sync.Mutex
}

// NewInitiator creates an SMP session as the initiator, bound to answer
// immediately since the initiator always knows it up front.
func NewInitiator(answer string) *Session {
	return &Session{
		role:       RoleInitiator,
		state:      StateInit,
		secret:     deriveSecret(answer),
		haveAnswer: true,
	}
}

// NewResponder creates an SMP session as the responder, with no answer
// bound yet. Step2 fails with ErrNoAnswer until SetAnswer is called.
func NewResponder() *Session {
	return &Session{
		role:  RoleResponder,
		state: StateInit,
	}
}

// SetAnswer binds the responder's answer to the question, after the
// upper layer has prompted the user and received a reply. Safe to call
// before or after Step2 is attempted.
func (s *Session) SetAnswer(answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = deriveSecret(answer)
	s.haveAnswer = true
}

// State returns the session's current step position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Match reports the outcome set by Step4 (responder) or Step5 (initiator).
// It is only meaningful once State() == StateComplete.
func (s *Session) Match() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

// Step1 is the initiator's opening move: publish g2a, g3a with discrete-log
// proofs of x2, x3.
func (s *Session) Step1() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role != RoleInitiator || s.state != StateInit {
		return nil, ErrInvalidState
	}

	x2, err := randomExponent()
	if err != nil {
		return nil, err
	}
	x3, err := randomExponent()
	if err != nil {
		return nil, err
	}
	s.x2, s.x3 = x2, x3
	s.ownG2 = expMod(g, x2)
	s.ownG3 = expMod(g, x3)

	proof1, err := proveDL(tagString(tagG2Proof), x2)
	if err != nil {
		return nil, err
	}
	proof2, err := proveDL(tagString(tagG3Proof), x3)
	if err != nil {
		return nil, err
	}

	s.state = StateWaitingStep2
	return PackBuffer(s.ownG2, s.ownG3, proof1.C, proof1.D, proof2.C, proof2.D), nil
}

// Step2 is the responder's reply to step1: validate the initiator's
// proofs, then publish g2b, g3b, pb, qb with their own proofs.
func (s *Session) Step2(buf1 []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role != RoleResponder || s.state != StateInit {
		return nil, ErrInvalidState
	}
	if !s.haveAnswer {
		return nil, ErrNoAnswer
	}

	items, err := UnpackBuffer(buf1, 6)
	if err != nil {
		return nil, ErrCheckFailed
	}
	peerG2, peerG3, c1, d1, c2, d2 := items[0], items[1], items[2], items[3], items[4], items[5]

	if !inGroupRange(peerG2) || !inGroupRange(peerG3) {
		return nil, ErrCheckFailed
	}
	if !verifyDL(tagString(tagG2Proof), peerG2, &DLProof{C: c1, D: d1}) {
		return nil, ErrCheckFailed
	}
	if !verifyDL(tagString(tagG3Proof), peerG3, &DLProof{C: c2, D: d2}) {
		return nil, ErrCheckFailed
	}
	s.peerG2, s.peerG3 = peerG2, peerG3

	x2, err := randomExponent()
	if err != nil {
		return nil, err
	}
	x3, err := randomExponent()
	if err != nil {
		return nil, err
	}
	s.x2, s.x3 = x2, x3
	s.ownG2 = expMod(g, x2)
	s.ownG3 = expMod(g, x3)
	s.crossG2 = expMod(peerG2, x2)
	s.crossG3 = expMod(peerG3, x3)

	r, err := randomExponent()
	if err != nil {
		return nil, err
	}
	s.ownP = expMod(s.crossG3, r)
	s.ownQ = mulMod(expMod(g, r), expMod(s.crossG2, s.secret))

	proof3, err := proveDL(tagString(tagG2bProof), x2)
	if err != nil {
		return nil, err
	}
	proof4, err := proveDL(tagString(tagG3bProof), x3)
	if err != nil {
		return nil, err
	}
	proof5, err := proveCoordinate(tagString(tagCoordB), s.crossG2, s.crossG3, r, s.secret)
	if err != nil {
		return nil, err
	}

	s.state = StateWaitingStep3
	return PackBuffer(
		s.ownG2, s.ownG3,
		proof3.C, proof3.D,
		proof4.C, proof4.D,
		s.ownP, s.ownQ,
		proof5.C, proof5.D1, proof5.D2,
	), nil
}

// Step3 is the initiator's reply to step2: validate the responder's
// proofs, then publish pa, qa, ra with a coordinate proof and an
// equal-logs proof binding ra to the x3 already published in step1.
func (s *Session) Step3(buf2 []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role != RoleInitiator || s.state != StateWaitingStep2 {
		return nil, ErrInvalidState
	}

	items, err := UnpackBuffer(buf2, 11)
	if err != nil {
		return nil, ErrCheckFailed
	}
	peerG2, peerG3 := items[0], items[1]
	c3, d3, c4, d4 := items[2], items[3], items[4], items[5]
	peerP, peerQ := items[6], items[7]
	c5, d5, d6 := items[8], items[9], items[10]

	if !inGroupRange(peerG2) || !inGroupRange(peerG3) || !inGroupRange(peerP) || !inGroupRange(peerQ) {
		return nil, ErrCheckFailed
	}
	if !verifyDL(tagString(tagG2bProof), peerG2, &DLProof{C: c3, D: d3}) {
		return nil, ErrCheckFailed
	}
	if !verifyDL(tagString(tagG3bProof), peerG3, &DLProof{C: c4, D: d4}) {
		return nil, ErrCheckFailed
	}
	s.peerG2, s.peerG3 = peerG2, peerG3
	s.crossG2 = expMod(peerG2, s.x2)
	s.crossG3 = expMod(peerG3, s.x3)

	if !verifyCoordinate(tagString(tagCoordB), s.crossG2, s.crossG3, peerP, peerQ, &CoordProof{C: c5, D1: d5, D2: d6}) {
		return nil, ErrCheckFailed
	}
	s.peerP, s.peerQ = peerP, peerQ

	sVal, err := randomExponent()
	if err != nil {
		return nil, err
	}
	s.ownP = expMod(s.crossG3, sVal)
	s.ownQ = mulMod(expMod(g, sVal), expMod(s.crossG2, s.secret))

	s.qab = mulMod(s.ownQ, invm(s.peerQ))
	ra := expMod(s.qab, s.x3)

	proof6, err := proveCoordinate(tagString(tagCoordA), s.crossG2, s.crossG3, sVal, s.secret)
	if err != nil {
		return nil, err
	}
	proof7, err := proveEqualLogs(tagString(tagEqualLogsA), s.qab, s.x3)
	if err != nil {
		return nil, err
	}

	s.state = StateWaitingStep4
	return PackBuffer(
		s.ownP, s.ownQ, ra,
		proof6.C, proof6.D1, proof6.D2,
		proof7.C, proof7.D,
	), nil
}

// Step4 is the responder's reply to step3: validate the coordinate and
// equal-logs proofs, compute the match flag, publish rb with its own
// equal-logs proof. match is valid whenever err is nil.
func (s *Session) Step4(buf3 []byte) (buf4 []byte, match bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role != RoleResponder || s.state != StateWaitingStep3 {
		return nil, false, ErrInvalidState
	}

	items, uerr := UnpackBuffer(buf3, 8)
	if uerr != nil {
		return nil, false, ErrCheckFailed
	}
	peerP, peerQ, peerRa := items[0], items[1], items[2]
	c6, d7, d8 := items[3], items[4], items[5]
	c7, d9 := items[6], items[7]

	if !inGroupRange(peerP) || !inGroupRange(peerQ) || !inGroupRange(peerRa) {
		return nil, false, ErrCheckFailed
	}
	if !verifyCoordinate(tagString(tagCoordA), s.crossG2, s.crossG3, peerP, peerQ, &CoordProof{C: c6, D1: d7, D2: d8}) {
		return nil, false, ErrCheckFailed
	}

	qab := mulMod(peerQ, invm(s.ownQ))
	if !verifyEqualLogs(tagString(tagEqualLogsA), qab, s.peerG3, peerRa, &EqualLogsProof{C: c7, D: d9}) {
		return nil, false, ErrCheckFailed
	}
	s.peerP, s.peerQ = peerP, peerQ

	rb := expMod(qab, s.x3)
	proof8, perr := proveEqualLogs(tagString(tagEqualLogsB), qab, s.x3)
	if perr != nil {
		return nil, false, perr
	}

	lhs := expMod(peerRa, s.x3)
	rhs := mulMod(peerP, invm(s.ownP))
	s.match = lhs.Cmp(rhs) == 0
	s.state = StateComplete

	buf4 = PackBuffer(rb, proof8.C, proof8.D)
	return buf4, s.match, nil
}

// Step5 is the initiator's final move: validate the equal-logs proof over
// rb and compute the match flag.
func (s *Session) Step5(buf4 []byte) (match bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role != RoleInitiator || s.state != StateWaitingStep4 {
		return false, ErrInvalidState
	}

	items, uerr := UnpackBuffer(buf4, 3)
	if uerr != nil {
		return false, ErrCheckFailed
	}
	peerRb, c8, d10 := items[0], items[1], items[2]

	if !inGroupRange(peerRb) {
		return false, ErrCheckFailed
	}
	if !verifyEqualLogs(tagString(tagEqualLogsB), s.qab, s.peerG3, peerRb, &EqualLogsProof{C: c8, D: d10}) {
		return false, ErrCheckFailed
	}

	lhs := expMod(peerRb, s.x3)
	rhs := mulMod(s.ownP, invm(s.peerP))
	s.match = lhs.Cmp(rhs) == 0
	s.state = StateComplete

	return s.match, nil
}
