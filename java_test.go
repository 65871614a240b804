package mcping

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net"
	"net/netip"
	"strconv"
	"testing"
	"time"
)

// withNoSRV disables SRV lookups for the duration of a test, so loopback
// scenarios don't make a real DNS query for a bare IP literal host.
func withNoSRV(t *testing.T) {
	t.Helper()
	original := lookupJavaSRVFunc
	lookupJavaSRVFunc = func(ctx context.Context, host string) ([]srvRecord, error) {
		return nil, dnsLookupFailed("srv disabled in test", nil)
	}
	t.Cleanup(func() { lookupJavaSRVFunc = original })
}

// readJavaEmuPacket reads one VarInt-framed packet and returns its ID and
// remaining body, using the library's own readFramedPacket (java.go) and
// readVarInt (varint.go).
func readJavaEmuPacket(r net.Conn) (int32, []byte, error) {
	payload, err := readFramedPacket(r)
	if err != nil {
		return 0, nil, err
	}
	reader := bytes.NewReader(payload)
	id, err := readVarInt(reader)
	if err != nil {
		return 0, nil, err
	}
	rest := make([]byte, reader.Len())
	_, _ = reader.Read(rest)
	return id, rest, nil
}

func startJavaEmulator(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()

	return ln.Addr().String()
}

func TestPingJavaHappyPath(t *testing.T) {
	withNoSRV(t)

	statusDoc := `{"version":{"name":"1.20.4","protocol":765},"players":{"max":20,"online":7},"description":{"text":"A server"}}`

	addr := startJavaEmulator(t, func(conn net.Conn) {
		// Handshake
		if _, _, err := readJavaEmuPacket(conn); err != nil {
			return
		}
		// StatusRequest
		if _, _, err := readJavaEmuPacket(conn); err != nil {
			return
		}
		respPayload := &bytes.Buffer{}
		_ = writeVarInt(respPayload, 0x00)
		_ = writeJavaString(respPayload, statusDoc)
		_ = writeFramedPacket(conn, respPayload.Bytes())

		// Ping
		_, body, err := readJavaEmuPacket(conn)
		if err != nil {
			return
		}
		token := binary.BigEndian.Uint64(body)
		pongPayload := &bytes.Buffer{}
		_ = writeVarInt(pongPayload, 0x01)
		_ = binary.Write(pongPayload, binary.BigEndian, token)
		_ = writeFramedPacket(conn, pongPayload.Bytes())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	latency, resp, err := PingJava(ctx, JavaConfig{ServerAddress: addr, Timeout: 3 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latency < 0 {
		t.Fatalf("expected non-negative latency, got %d", latency)
	}
	if resp.Players.Online != 7 || resp.Players.Max != 20 {
		t.Fatalf("unexpected players: %+v", resp.Players)
	}
	if resp.Description.Text() != "A server" {
		t.Fatalf("unexpected description: %q", resp.Description.Text())
	}
}

func TestPingJavaPingMismatch(t *testing.T) {
	withNoSRV(t)

	statusDoc := `{"version":{"name":"1.20.4","protocol":765},"players":{"max":20,"online":0},"description":{"text":"hi"}}`

	addr := startJavaEmulator(t, func(conn net.Conn) {
		if _, _, err := readJavaEmuPacket(conn); err != nil {
			return
		}
		if _, _, err := readJavaEmuPacket(conn); err != nil {
			return
		}
		respPayload := &bytes.Buffer{}
		_ = writeVarInt(respPayload, 0x00)
		_ = writeJavaString(respPayload, statusDoc)
		_ = writeFramedPacket(conn, respPayload.Bytes())

		if _, _, err := readJavaEmuPacket(conn); err != nil {
			return
		}
		pongPayload := &bytes.Buffer{}
		_ = writeVarInt(pongPayload, 0x01)
		_ = binary.Write(pongPayload, binary.BigEndian, uint64(999999))
		_ = writeFramedPacket(conn, pongPayload.Bytes())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, _, err := PingJava(ctx, JavaConfig{ServerAddress: addr, Timeout: 3 * time.Second})
	if err == nil {
		t.Fatal("expected error for ping/pong mismatch")
	}
	var mcErr *Error
	if !errors.As(err, &mcErr) || mcErr.Kind != InvalidPacket {
		t.Fatalf("expected InvalidPacket, got %v", err)
	}
}

func TestPingJavaMalformedJSON(t *testing.T) {
	withNoSRV(t)

	addr := startJavaEmulator(t, func(conn net.Conn) {
		if _, _, err := readJavaEmuPacket(conn); err != nil {
			return
		}
		if _, _, err := readJavaEmuPacket(conn); err != nil {
			return
		}
		respPayload := &bytes.Buffer{}
		_ = writeVarInt(respPayload, 0x00)
		_ = writeJavaString(respPayload, "not json")
		_ = writeFramedPacket(conn, respPayload.Bytes())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, _, err := PingJava(ctx, JavaConfig{ServerAddress: addr, Timeout: 3 * time.Second})
	if err == nil {
		t.Fatal("expected error for malformed json")
	}
	var mcErr *Error
	if !errors.As(err, &mcErr) || mcErr.Kind != JsonError {
		t.Fatalf("expected JsonError, got %v", err)
	}
}

func TestPingJavaSRVOverride(t *testing.T) {
	statusDoc := `{"version":{"name":"1.20.4","protocol":765},"players":{"max":1,"online":0},"description":"hi"}`

	var observedPort uint16
	addr := startJavaEmulator(t, func(conn net.Conn) {
		_, body, err := readJavaEmuPacket(conn)
		if err != nil {
			return
		}
		// body: VarInt protocol_version, string host, u16 port, VarInt next_state
		r := bytes.NewReader(body)
		_, _ = readVarInt(r)
		_, _ = readJavaString(r)
		var port uint16
		_ = binary.Read(r, binary.BigEndian, &port)
		observedPort = port

		if _, _, err := readJavaEmuPacket(conn); err != nil {
			return
		}
		respPayload := &bytes.Buffer{}
		_ = writeVarInt(respPayload, 0x00)
		_ = writeJavaString(respPayload, statusDoc)
		_ = writeFramedPacket(conn, respPayload.Bytes())

		_, pingBody, err := readJavaEmuPacket(conn)
		if err != nil {
			return
		}
		token := binary.BigEndian.Uint64(pingBody)
		pongPayload := &bytes.Buffer{}
		_ = writeVarInt(pongPayload, 0x01)
		_ = binary.Write(pongPayload, binary.BigEndian, token)
		_ = writeFramedPacket(conn, pongPayload.Bytes())
	})

	_, portStr, _ := net.SplitHostPort(addr)
	portNum, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		t.Fatalf("parse emulator port: %v", err)
	}
	emuPort := uint16(portNum)

	originalSRV := lookupJavaSRVFunc
	originalIP := lookupHostIPFunc
	t.Cleanup(func() {
		lookupJavaSRVFunc = originalSRV
		lookupHostIPFunc = originalIP
	})
	lookupJavaSRVFunc = func(ctx context.Context, host string) ([]srvRecord, error) {
		return []srvRecord{{Target: "srv-target.invalid.", Port: emuPort}}, nil
	}
	lookupHostIPFunc = func(ctx context.Context, host string) (netip.Addr, error) {
		if host == "srv-target.invalid" {
			return netip.MustParseAddr("127.0.0.1"), nil
		}
		return netip.Addr{}, dnsLookupFailed("unexpected host "+host, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, _, err = PingJava(ctx, JavaConfig{ServerAddress: "some-srv-host.invalid", Timeout: 3 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observedPort != emuPort {
		t.Fatalf("handshake carried port %d, want SRV-supplied port %d", observedPort, emuPort)
	}
}
