package session

import (
	"testing"

	"github.com/pion/logging"

	"hingechat/pkg/smp"
	"hingechat/pkg/wire"
)

type fakeCallbacks struct {
	recvs      []string
	handshakes int
	serverInit bool
	errs       []wire.ErrorCode
	smpPhases  []smp.Phase
}

func (f *fakeCallbacks) Callbacks() Callbacks {
	return Callbacks{
		Recv: func(command wire.Command, route [2]int, plaintext string) {
			f.recvs = append(f.recvs, plaintext)
		},
		HandshakeDone: func(sessionID int, serverInitiated bool) {
			f.handshakes++
			f.serverInit = serverInitiated
		},
		Err: func(sessionID int, code wire.ErrorCode) {
			f.errs = append(f.errs, code)
		},
		SMP: func(phase smp.Phase, sessionID int, payload string, err error) {
			f.smpPhases = append(f.smpPhases, phase)
		},
	}
}

// pairedTransport wires two Sessions' send functions directly into each
// other's HandleMessage, simulating a relay that forwards frames
// verbatim between two peers.
type pairedTransport struct {
	a, b *Session
}

func newPair(t *testing.T) (*Session, *fakeCallbacks, *Session, *fakeCallbacks) {
	t.Helper()
	var pair pairedTransport
	cbA := &fakeCallbacks{}
	cbB := &fakeCallbacks{}

	a, err := NewSession(RoleInitiator, 101, 202, func(m *wire.Message) error {
		return pair.b.HandleMessage(m)
	}, cbA.Callbacks())
	if err != nil {
		t.Fatalf("NewSession(a) failed: %v", err)
	}
	b, err := NewSession(RoleResponder, 202, 101, func(m *wire.Message) error {
		return pair.a.HandleMessage(m)
	}, cbB.Callbacks())
	if err != nil {
		t.Fatalf("NewSession(b) failed: %v", err)
	}
	pair.a, pair.b = a, b
	return a, cbA, b, cbB
}

func TestFullHandshake(t *testing.T) {
	a, cbA, b, cbB := newPair(t)

	if err := b.Start(); err != nil {
		t.Fatalf("b.Start() failed: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("a.Start() failed: %v", err)
	}

	if a.State() != StateEncryptedLoop {
		t.Errorf("a.State() = %v, want EncryptedLoop", a.State())
	}
	if b.State() != StateEncryptedLoop {
		t.Errorf("b.State() = %v, want EncryptedLoop", b.State())
	}
	if cbA.handshakes != 1 || cbB.handshakes != 1 {
		t.Errorf("handshake callback counts = %d, %d, want 1, 1", cbA.handshakes, cbB.handshakes)
	}
	if cbA.serverInit {
		t.Error("a (initiator) reported serverInitiated = true, want false")
	}
	if !cbB.serverInit {
		t.Error("b (responder) reported serverInitiated = false, want true")
	}
	if string(a.aesKey) != string(b.aesKey) || string(a.iv) != string(b.iv) {
		t.Error("a and b derived different key/iv pairs")
	}
}

func TestHandshakeLogsSessionFingerprint(t *testing.T) {
	a, _, b, _ := newPair(t)

	factory := logging.NewDefaultLoggerFactory()
	log := factory.NewLogger("session")
	a.SetLogger(log)
	b.SetLogger(log)

	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if a.State() != StateEncryptedLoop || b.State() != StateEncryptedLoop {
		t.Fatal("handshake with a logger attached did not complete")
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	a, _, b, cbB := newPair(t)
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	if err := a.SendMessage(wire.CmdMessage, "hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(cbB.recvs) != 1 || cbB.recvs[0] != "hello" {
		t.Fatalf("b received %v, want [hello]", cbB.recvs)
	}
	if b.incomingCounter != 1 {
		t.Errorf("b.incomingCounter = %d, want 1", b.incomingCounter)
	}

	if err := b.SendMessage(wire.CmdMessage, "hi"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if a.incomingCounter != 1 {
		t.Errorf("a.incomingCounter = %d, want 1", a.incomingCounter)
	}
}

func TestReplayDetection(t *testing.T) {
	a, _, b, cbB := newPair(t)
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	var captured *wire.Message
	a.send = func(m *wire.Message) error {
		captured = m
		return b.HandleMessage(m)
	}

	if err := a.SendMessage(wire.CmdMessage, "hello"); err != nil {
		t.Fatal(err)
	}
	if captured == nil {
		t.Fatal("no frame captured")
	}

	// Replay the exact same frame.
	if err := b.HandleMessage(captured); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	last := cbB.errs[len(cbB.errs)-1]
	if last != wire.ErrMessageReplay {
		t.Errorf("last error = %v, want MESSAGE_REPLAY", last)
	}
	if b.incomingCounter != 1 {
		t.Errorf("incomingCounter advanced on replay: got %d, want 1", b.incomingCounter)
	}
}

func TestTamperedCiphertextRaisesBadHMAC(t *testing.T) {
	a, _, b, cbB := newPair(t)
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	var captured *wire.Message
	a.send = func(m *wire.Message) error {
		captured = m
		return nil
	}
	if err := a.SendMessage(wire.CmdMessage, "hello"); err != nil {
		t.Fatal(err)
	}

	tampered := *captured
	tampered.Data = "A" + tampered.Data[1:]
	if tampered.Data == captured.Data {
		tampered.Data = "B" + tampered.Data[1:]
	}

	if err := b.HandleMessage(&tampered); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	last := cbB.errs[len(cbB.errs)-1]
	if last != wire.ErrBadHMAC {
		t.Errorf("last error = %v, want BAD_HMAC", last)
	}
	if b.incomingCounter != 0 {
		t.Errorf("incomingCounter advanced on bad hmac: got %d", b.incomingCounter)
	}
}

func TestBadHandshakeCommand(t *testing.T) {
	_, cbA, _, _ := newPair(t)

	// An initiator waiting for REDY that instead receives a loop command
	// should terminate with BAD_HANDSHAKE.
	bogus, err := NewSession(RoleInitiator, 999, 101, func(*wire.Message) error { return nil }, cbA.Callbacks())
	if err != nil {
		t.Fatal(err)
	}
	if err := bogus.Start(); err != nil {
		t.Fatal(err)
	}
	if err := bogus.HandleMessage(wire.NewMessage(wire.CmdMessage, 101, 999)); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if bogus.State() != StateTerminated {
		t.Errorf("state = %v, want Terminated", bogus.State())
	}
}

func TestSMPExchangeMatch(t *testing.T) {
	a, cbA, b, cbB := newPair(t)
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	if err := b.ProvideSMPAnswer("swordfish"); err != nil {
		t.Fatalf("ProvideSMPAnswer failed: %v", err)
	}
	if err := a.StartSMP("favorite fish?", "swordfish"); err != nil {
		t.Fatalf("StartSMP failed: %v", err)
	}

	wantPhase := func(phases []smp.Phase, want smp.Phase) bool {
		for _, p := range phases {
			if p == want {
				return true
			}
		}
		return false
	}
	if !wantPhase(cbB.smpPhases, smp.PhaseRequest) {
		t.Error("b never saw a REQUEST phase")
	}
	if !wantPhase(cbA.smpPhases, smp.PhaseComplete) {
		t.Error("a never saw a COMPLETE phase")
	}
	if !wantPhase(cbB.smpPhases, smp.PhaseComplete) {
		t.Error("b never saw a COMPLETE phase")
	}
	for _, code := range cbA.errs {
		if code == wire.ErrSMPMatchFailed {
			t.Error("a surfaced SMP_MATCH_FAILED on a matching exchange")
		}
	}
}

func TestSMPExchangeMismatch(t *testing.T) {
	a, cbA, b, cbB := newPair(t)
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	if err := b.ProvideSMPAnswer("SWORDFISH"); err != nil {
		t.Fatal(err)
	}
	if err := a.StartSMP("favorite fish?", "swordfish"); err != nil {
		t.Fatal(err)
	}

	foundA, foundB := false, false
	for _, code := range cbA.errs {
		if code == wire.ErrSMPMatchFailed {
			foundA = true
		}
	}
	for _, code := range cbB.errs {
		if code == wire.ErrSMPMatchFailed {
			foundB = true
		}
	}
	if !foundA || !foundB {
		t.Errorf("expected SMP_MATCH_FAILED on both sides, got a=%v b=%v", cbA.errs, cbB.errs)
	}
}

func TestSMPResponderStashesUntilAnswer(t *testing.T) {
	a, _, b, cbB := newPair(t)
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	// Initiator starts SMP before the responder has an answer prepared.
	if err := a.StartSMP("favorite fish?", "swordfish"); err != nil {
		t.Fatal(err)
	}
	if b.pendingSMPBuf == nil {
		t.Fatal("expected b to stash the step1 buffer")
	}

	if err := b.ProvideSMPAnswer("swordfish"); err != nil {
		t.Fatalf("ProvideSMPAnswer failed: %v", err)
	}
	if b.pendingSMPBuf != nil {
		t.Error("pendingSMPBuf should be cleared once resumed")
	}
	_ = cbB
}
