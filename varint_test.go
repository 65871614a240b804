package mcping

import (
	"bytes"
	"errors"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, 2, 127, 128, 255, 300, 1 << 20, 1<<31 - 1, -1, -2147483648}
	for _, v := range values {
		var buf bytes.Buffer
		if err := writeVarInt(&buf, v); err != nil {
			t.Fatalf("writeVarInt(%d): %v", v, err)
		}
		got, err := readVarInt(&buf)
		if err != nil {
			t.Fatalf("readVarInt after writing %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip mismatch: wrote %d, read %d", v, got)
		}
	}
}

func TestVarIntNeverExceedsFiveBytes(t *testing.T) {
	values := []int32{0, 1 << 31 - 1, -1}
	for _, v := range values {
		var buf bytes.Buffer
		if err := writeVarInt(&buf, v); err != nil {
			t.Fatalf("writeVarInt(%d): %v", v, err)
		}
		if buf.Len() > maxVarIntBytes {
			t.Fatalf("varint for %d used %d bytes, want <= %d", v, buf.Len(), maxVarIntBytes)
		}
		if buf.Len() != varIntLen(v) {
			t.Fatalf("varIntLen(%d) = %d, actual wire length %d", v, varIntLen(v), buf.Len())
		}
	}
}

func TestReadVarIntTooLarge(t *testing.T) {
	// Five continuation bytes and a sixth byte: no terminator within the
	// 5-byte budget.
	buf := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
	_, err := readVarInt(buf)
	if err == nil {
		t.Fatal("expected VarIntTooLarge error, got nil")
	}
	var mcErr *Error
	if !errors.As(err, &mcErr) || mcErr.Kind != InvalidPacket {
		t.Fatalf("expected InvalidPacket error, got %v", err)
	}
}

func TestJavaStringRoundTrip(t *testing.T) {
	cases := []string{"", "hello", "play.example.com", "héllo wörld 日本語"}
	for _, s := range cases {
		var buf bytes.Buffer
		if err := writeJavaString(&buf, s); err != nil {
			t.Fatalf("writeJavaString(%q): %v", s, err)
		}
		wantLen := varIntLen(int32(len(s))) + len(s)
		if buf.Len() != wantLen {
			t.Fatalf("wire length for %q = %d, want %d", s, buf.Len(), wantLen)
		}
		got, err := readJavaString(&buf)
		if err != nil {
			t.Fatalf("readJavaString(%q): %v", s, err)
		}
		if got != s {
			t.Fatalf("round trip mismatch: wrote %q, read %q", s, got)
		}
	}
}

func TestJavaStringInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	_ = writeVarInt(&buf, 2)
	buf.Write([]byte{0xFF, 0xFE})
	_, err := readJavaString(&buf)
	if err == nil {
		t.Fatal("expected error for invalid utf-8")
	}
}

func TestRakStringRoundTrip(t *testing.T) {
	cases := []string{"", "MCPE;Dedicated Server;390"}
	for _, s := range cases {
		var buf bytes.Buffer
		if err := writeRakString(&buf, s); err != nil {
			t.Fatalf("writeRakString(%q): %v", s, err)
		}
		got, err := readRakString(&buf)
		if err != nil {
			t.Fatalf("readRakString(%q): %v", s, err)
		}
		if got != s {
			t.Fatalf("round trip mismatch: wrote %q, read %q", s, got)
		}
	}
}
