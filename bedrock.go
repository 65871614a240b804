package mcping

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"time"
)

// offlineMessageDataID is RakNet's fixed 16-byte magic constant that
// marks offline discovery packets.
var offlineMessageDataID = mustDecodeHex("00ffff00fefefefefdfdfdfd12345678")

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

const (
	unconnectedPingID = 0x01
	unconnectedPongID = 0x1C
	maxPongReadSize   = 1024
)

func pingBedrock(ctx context.Context, cfg BedrockConfig) (int64, BedrockResponse, error) {
	tries := cfg.Tries
	if tries == 0 {
		tries = 1
	}
	candidates := cfg.LocalBindCandidates
	if len(candidates) == 0 {
		candidates = defaultLocalBindCandidates()
	}

	target, err := resolveBedrockAddress(ctx, cfg.ServerAddress, DefaultBedrockPort)
	if err != nil {
		return 0, BedrockResponse{}, err
	}
	remote := &net.UDPAddr{IP: net.IP(target.IP.AsSlice()), Port: int(target.Port)}

	conn, err := bindFirstAvailable(candidates, remote)
	if err != nil {
		return 0, BedrockResponse{}, err
	}
	defer conn.Close()

	if cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))
	}

	ping, err := buildUnconnectedPing()
	if err != nil {
		return 0, BedrockResponse{}, err
	}

	for attempt := uint(0); attempt < tries; attempt++ {
		if _, err := conn.Write(ping); err != nil {
			return 0, BedrockResponse{}, ioErrorf(err, "send unconnected ping")
		}
		if attempt+1 < tries && cfg.WaitBetweenTries > 0 {
			select {
			case <-ctx.Done():
				return 0, BedrockResponse{}, ioErrorf(ctx.Err(), "wait between tries")
			case <-time.After(cfg.WaitBetweenTries):
			}
		}
	}

	// t0 is captured immediately before the blocking read, after every
	// try has already been sent, per spec §4.4: this measures a lower
	// bound skewed toward the last-sent ping, matching
	// original_source/mcping/src/bedrock.rs's before := Instant::now()
	// placement.
	t0 := time.Now()
	buf := make([]byte, maxPongReadSize)
	n, err := conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, BedrockResponse{}, ioErrorf(err, "timed out waiting for unconnected pong")
		}
		return 0, BedrockResponse{}, ioErrorf(err, "read unconnected pong")
	}
	latency := time.Since(t0)

	resp, err := parseUnconnectedPong(buf[:n])
	if err != nil {
		return 0, BedrockResponse{}, err
	}

	return latency.Milliseconds(), resp, nil
}

// bindFirstAvailable tries each candidate local address in order, dialing
// a UDP socket bound to it and connected to remote; the first successful
// bind wins, per spec §4.4.
func bindFirstAvailable(candidates []*net.UDPAddr, remote *net.UDPAddr) (*net.UDPConn, error) {
	var lastErr error
	for _, candidate := range candidates {
		conn, err := net.DialUDP("udp", candidate, remote)
		if err != nil {
			lastErr = err
			continue
		}
		return conn, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no local bind candidates configured")
	}
	return nil, ioErrorf(lastErr, "bind local udp socket")
}

// buildUnconnectedPing constructs the client->server packet described in
// spec §4.4: packet ID, a timestamp (zero is acceptable), the offline
// message magic, and a client GUID (zero is acceptable).
func buildUnconnectedPing() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := buf.WriteByte(unconnectedPingID); err != nil {
		return nil, ioErrorf(err, "write unconnected ping id")
	}
	if err := binary.Write(buf, binary.BigEndian, int64(0)); err != nil {
		return nil, ioErrorf(err, "write unconnected ping timestamp")
	}
	if _, err := buf.Write(offlineMessageDataID); err != nil {
		return nil, ioErrorf(err, "write offline message magic")
	}
	if err := binary.Write(buf, binary.BigEndian, int64(0)); err != nil {
		return nil, ioErrorf(err, "write unconnected ping client guid")
	}
	return buf.Bytes(), nil
}

// parseUnconnectedPong reads the fixed header of an Unconnected Pong
// (packet ID, echoed timestamp, server GUID, offline message magic),
// checks the packet ID and the magic, and decodes its semicolon payload.
// The timestamp and server GUID are read but not checked.
func parseUnconnectedPong(buf []byte) (BedrockResponse, error) {
	const headerLen = 1 + 8 + 8 + 16 + 2 // id + timestamp + server_guid + magic + payload length
	if len(buf) < headerLen {
		return BedrockResponse{}, invalidPacketf("unconnected pong too short: %d bytes", len(buf))
	}
	r := bytes.NewReader(buf)

	id, err := r.ReadByte()
	if err != nil {
		return BedrockResponse{}, ioErrorf(err, "read pong id")
	}
	if id != unconnectedPongID {
		return BedrockResponse{}, invalidPacketf("unexpected pong packet id: 0x%02x", id)
	}

	var timestamp, serverGUID uint64
	if err := binary.Read(r, binary.BigEndian, &timestamp); err != nil {
		return BedrockResponse{}, ioErrorf(err, "read pong timestamp")
	}
	if err := binary.Read(r, binary.BigEndian, &serverGUID); err != nil {
		return BedrockResponse{}, ioErrorf(err, "read pong server guid")
	}

	magic := make([]byte, len(offlineMessageDataID))
	if _, err := io.ReadFull(r, magic); err != nil {
		return BedrockResponse{}, ioErrorf(err, "read pong magic")
	}
	if !bytes.Equal(magic, offlineMessageDataID) {
		return BedrockResponse{}, invalidPacketf("offline message magic mismatch")
	}

	payload, err := readRakString(r)
	if err != nil {
		return BedrockResponse{}, err
	}

	return decodeBedrockPayload(payload)
}
