package mcping

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math/rand/v2"
	"net"
	"strconv"
	"time"
)

// javaState names the strictly sequential states of a single Java status
// exchange, per spec §4.3. It exists to make the sequencing of pingJava
// self-documenting; transitions are asserted by the order the function
// performs its I/O rather than by an explicit state variable.
type javaState int

const (
	javaFresh javaState = iota
	javaHandshakeSent
	javaStatusRequested
	javaStatusReceived
	javaPingSent
	javaDone
)

func pingJava(ctx context.Context, cfg JavaConfig) (int64, JavaResponse, error) {
	originalHost, target, err := resolveJavaAddress(ctx, cfg.ServerAddress, DefaultJavaPort, cfg.DisableSRV)
	if err != nil {
		return 0, JavaResponse{}, err
	}

	dialCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	addr := net.JoinHostPort(target.IP.String(), strconv.Itoa(int(target.Port)))
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return 0, JavaResponse{}, ioErrorf(err, "connect to %s", addr)
	}
	defer conn.Close()

	// Open Question 1 (SPEC_FULL.md): this implementation propagates the
	// configured timeout to the whole exchange, not just connect.
	if cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))
	}

	state := javaFresh

	if err := writeHandshakePacket(conn, originalHost, target.Port); err != nil {
		return 0, JavaResponse{}, err
	}
	state = javaHandshakeSent

	if err := writeStatusRequestPacket(conn); err != nil {
		return 0, JavaResponse{}, err
	}
	state = javaStatusRequested

	status, err := readStatusResponsePacket(conn)
	if err != nil {
		return 0, JavaResponse{}, err
	}
	state = javaStatusReceived

	latencyMS, err := pingPongRoundTrip(conn)
	if err != nil {
		return 0, JavaResponse{}, err
	}
	state = javaPingSent
	_ = state
	state = javaDone
	_ = state

	return latencyMS, status, nil
}

// writeHandshakePacket sends the client->server Handshake (ID 0x00):
// protocol version, original (unresolved) host string, resolved port,
// and next_state=1 (status).
func writeHandshakePacket(w io.Writer, host string, port uint16) error {
	payload := &bytes.Buffer{}
	if err := writeVarInt(payload, 0x00); err != nil {
		return err
	}
	if err := writeVarInt(payload, javaProtocolVersion); err != nil {
		return err
	}
	if err := writeJavaString(payload, host); err != nil {
		return err
	}
	if err := binary.Write(payload, binary.BigEndian, port); err != nil {
		return ioErrorf(err, "write handshake port")
	}
	if err := writeVarInt(payload, 0x01); err != nil {
		return err
	}
	return writeFramedPacket(w, payload.Bytes())
}

// writeStatusRequestPacket sends the empty-body StatusRequest (ID 0x00),
// distinguished from Handshake only by the server's own state.
func writeStatusRequestPacket(w io.Writer) error {
	payload := &bytes.Buffer{}
	if err := writeVarInt(payload, 0x00); err != nil {
		return err
	}
	return writeFramedPacket(w, payload.Bytes())
}

// readStatusResponsePacket reads and decodes the server's StatusResponse
// (ID 0x00).
func readStatusResponsePacket(r io.Reader) (JavaResponse, error) {
	payload, err := readFramedPacket(r)
	if err != nil {
		return JavaResponse{}, err
	}
	reader := bytes.NewReader(payload)
	id, err := readVarInt(reader)
	if err != nil {
		return JavaResponse{}, err
	}
	if id != 0x00 {
		return JavaResponse{}, invalidPacketf("unexpected status response packet id: %d", id)
	}
	body, err := readJavaString(reader)
	if err != nil {
		return JavaResponse{}, err
	}
	return decodeJavaStatus([]byte(body))
}

// pingPongRoundTrip sends Ping with a random payload, captures t0
// immediately before the write, then reads Pong and computes latency as
// now() - t0 in whole milliseconds. A mismatched payload or wrong packet
// ID is fatal.
func pingPongRoundTrip(conn net.Conn) (int64, error) {
	token := rand.Uint64()

	payload := &bytes.Buffer{}
	if err := writeVarInt(payload, 0x01); err != nil {
		return 0, err
	}
	if err := binary.Write(payload, binary.BigEndian, token); err != nil {
		return 0, ioErrorf(err, "write ping payload")
	}

	t0 := time.Now()
	if err := writeFramedPacket(conn, payload.Bytes()); err != nil {
		return 0, err
	}

	respPayload, err := readFramedPacket(conn)
	if err != nil {
		return 0, err
	}
	latency := time.Since(t0)

	reader := bytes.NewReader(respPayload)
	id, err := readVarInt(reader)
	if err != nil {
		return 0, err
	}
	if id != 0x01 {
		return 0, invalidPacketf("unexpected pong packet id: %d", id)
	}
	var echoed uint64
	if err := binary.Read(reader, binary.BigEndian, &echoed); err != nil {
		return 0, ioErrorf(err, "read pong payload")
	}
	if echoed != token {
		return 0, invalidPacketf("ping/pong payload mismatch: sent %d, got %d", token, echoed)
	}

	return latency.Milliseconds(), nil
}

// writeFramedPacket writes payload behind a VarInt length prefix covering
// the packet ID and body, per spec §4.3.
func writeFramedPacket(w io.Writer, payload []byte) error {
	if err := writeVarInt(w, int32(len(payload))); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return ioErrorf(err, "write packet body")
	}
	return nil
}

// readFramedPacket reads a VarInt length prefix and then that many bytes.
func readFramedPacket(r io.Reader) ([]byte, error) {
	length, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, invalidPacketf("negative packet length: %d", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, ioErrorf(err, "read packet body")
	}
	return payload, nil
}
