package mcping

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"
)

// bedrockEmulator is a UDP server that can selectively drop a configured
// number of leading Unconnected Ping packets before answering, to
// exercise the tries/packet-loss behavior in spec §8 scenario 4.
type bedrockEmulator struct {
	conn *net.UDPConn
	addr string
}

func startBedrockEmulator(t *testing.T, dropCount int, corruptMagic bool) *bedrockEmulator {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	e := &bedrockEmulator{conn: conn, addr: conn.LocalAddr().String()}

	go func() {
		seen := 0
		buf := make([]byte, 2048)
		for {
			n, raddr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			if n < 1 || buf[0] != unconnectedPingID {
				continue
			}
			seen++
			if seen <= dropCount {
				continue
			}

			pong := &bytes.Buffer{}
			pong.WriteByte(unconnectedPongID)
			_ = binary.Write(pong, binary.BigEndian, uint64(0))
			_ = binary.Write(pong, binary.BigEndian, uint64(12345))
			magic := append([]byte{}, offlineMessageDataID...)
			if corruptMagic {
				magic[0] ^= 0xFF
			}
			pong.Write(magic)
			payload := "MCPE;Emulator;390;1.16.200;0;10;1;level;Survival;1;19132;19133"
			_ = writeRakString(pong, payload)

			_, _ = conn.WriteToUDP(pong.Bytes(), raddr)
			return
		}
	}()

	return e
}

func TestPingBedrockHappyPathAfterLoss(t *testing.T) {
	emu := startBedrockEmulator(t, 2, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	latency, resp, err := PingBedrock(ctx, BedrockConfig{
		ServerAddress:    emu.addr,
		Timeout:          2 * time.Second,
		Tries:            3,
		WaitBetweenTries: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latency < 0 {
		t.Fatalf("expected non-negative latency, got %d", latency)
	}
	if !resp.Edition.IsPocket() {
		t.Fatalf("unexpected edition: %v", resp.Edition)
	}
	if resp.MOTD1 != "Emulator" {
		t.Fatalf("unexpected motd: %q", resp.MOTD1)
	}
}

func TestPingBedrockTooFewTries(t *testing.T) {
	emu := startBedrockEmulator(t, 2, false)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, err := PingBedrock(ctx, BedrockConfig{
		ServerAddress:    emu.addr,
		Timeout:          500 * time.Millisecond,
		Tries:            2,
		WaitBetweenTries: 10 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error when tries are exhausted before the server answers")
	}
	var mcErr *Error
	if !errors.As(err, &mcErr) || mcErr.Kind != IoError {
		t.Fatalf("expected IoError, got %v", err)
	}
}

func TestPingBedrockMagicMismatch(t *testing.T) {
	emu := startBedrockEmulator(t, 0, true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, err := PingBedrock(ctx, BedrockConfig{
		ServerAddress: emu.addr,
		Timeout:       1 * time.Second,
		Tries:         1,
	})
	if err == nil {
		t.Fatal("expected error for magic mismatch")
	}
	var mcErr *Error
	if !errors.As(err, &mcErr) || mcErr.Kind != InvalidPacket {
		t.Fatalf("expected InvalidPacket, got %v", err)
	}
}
