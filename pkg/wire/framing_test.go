package wire

import (
	"bytes"
	"testing"
)

func TestStreamWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)

	msg := NewMessage(CmdMessage, 1, 2).WithData("hello")
	if err := w.WriteMessage(msg); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	r := NewStreamReader(&buf)
	got, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	if got.Command != CmdMessage {
		t.Errorf("Command = %q, want %q", got.Command, CmdMessage)
	}
	if got.Src() != 1 || got.Dst() != 2 {
		t.Errorf("Route = %v, want [1 2]", got.Route)
	}
	if got.Data != "hello" {
		t.Errorf("Data = %q, want %q", got.Data, "hello")
	}
}

func TestStreamReaderRejectsZeroLengthPrefix(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0})
	r := NewStreamReader(buf)
	if _, err := r.Read(); err != ErrInvalidLengthPrefix {
		t.Errorf("got %v, want ErrInvalidLengthPrefix", err)
	}
}

func TestStreamReaderRejectsOversizedFrame(t *testing.T) {
	var lenBuf [4]byte
	// MaxFrameSize + 1, big-endian.
	oversized := uint32(MaxFrameSize) + 1
	lenBuf[0] = byte(oversized >> 24)
	lenBuf[1] = byte(oversized >> 16)
	lenBuf[2] = byte(oversized >> 8)
	lenBuf[3] = byte(oversized)

	buf := bytes.NewBuffer(lenBuf[:])
	r := NewStreamReader(buf)
	if _, err := r.Read(); err != ErrFrameTooLarge {
		t.Errorf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestStreamReaderUsesBigEndianLength(t *testing.T) {
	// A 5-byte payload should be framed as 00 00 00 05, not 05 00 00 00.
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	prefix := buf.Bytes()[:4]
	want := []byte{0, 0, 0, 5}
	if !bytes.Equal(prefix, want) {
		t.Errorf("length prefix = %v, want %v (big-endian)", prefix, want)
	}
}

func TestReadMessageRejectsMissingField(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)
	// "hmac" is missing entirely, not just empty.
	incomplete := []byte(`{"command":"MSG","route":[1,2],"data":"","error":"","num":""}`)
	if _, err := w.Write(incomplete); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	r := NewStreamReader(&buf)
	if _, err := r.ReadMessage(); err != ErrMalformedMessage {
		t.Errorf("got %v, want ErrMalformedMessage", err)
	}
}

func TestReadMessageRejectsInvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)
	if _, err := w.Write([]byte("not json")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	r := NewStreamReader(&buf)
	if _, err := r.ReadMessage(); err != ErrMalformedMessage {
		t.Errorf("got %v, want ErrMalformedMessage", err)
	}
}
