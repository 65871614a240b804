// Package mcping queries the status of Minecraft game servers: Java
// Edition over TCP (Server List Ping, the "Modern" protocol) and Bedrock
// Edition over UDP (RakNet Unconnected Ping/Pong). Each call measures a
// round-trip latency and returns a structured description of the server.
//
// The package is single-threaded and synchronous: one call occupies one
// caller goroutine from start to finish, constructs a fresh transport,
// and releases it on every exit path. There is no connection pooling, no
// caching, and no concurrency between calls - callers that want to query
// many servers should run independent calls concurrently themselves.
package mcping

import (
	"context"
	"net"
	"time"
)

// DefaultJavaPort is the default Java Edition Server List Ping port.
const DefaultJavaPort = 25565

// DefaultBedrockPort is the default Bedrock Edition UDP port.
const DefaultBedrockPort = 19132

// javaProtocolVersion is the protocol version sent in the handshake.
// Status queries ignore the client's declared protocol version, so any
// historical value works; the wire contract in spec §6 fixes it at 47.
const javaProtocolVersion = 47

// JavaConfig configures a Java Edition status query.
type JavaConfig struct {
	// ServerAddress is "host[:port]"; default port 25565 applies when no
	// port is given.
	ServerAddress string
	// Timeout bounds the initial TCP connect and, per this
	// implementation's documented choice (SPEC_FULL.md Open Question 1),
	// the whole read/write exchange. Zero means no deadline.
	Timeout time.Duration
	// DisableSRV skips the "_minecraft._tcp" SRV lookup and resolves
	// ServerAddress's host directly, per spec §4.2 step 2.
	DisableSRV bool
}

// BedrockConfig configures a Bedrock Edition status query.
type BedrockConfig struct {
	// ServerAddress is "host[:port]"; default port 19132 applies when no
	// port is given.
	ServerAddress string
	// Timeout sets one read/write deadline on the socket, counted from
	// before the first ping, so it covers every send, the waits between
	// tries and the single read of the reply.
	Timeout time.Duration
	// Tries is the number of Unconnected Ping packets emitted to
	// tolerate UDP packet loss. Must be at least 1.
	Tries uint
	// WaitBetweenTries is slept between successive pings when Tries > 1.
	WaitBetweenTries time.Duration
	// LocalBindCandidates are tried in order for the local UDP bind; the
	// first successful bind is used. Defaults to three wildcard IPv4
	// candidates on ports 25567-25569.
	LocalBindCandidates []*net.UDPAddr
}

func defaultLocalBindCandidates() []*net.UDPAddr {
	return []*net.UDPAddr{
		{IP: net.IPv4zero, Port: 25567},
		{IP: net.IPv4zero, Port: 25568},
		{IP: net.IPv4zero, Port: 25569},
	}
}

// PingJava runs the Java Edition status exchange described in spec §4.3
// and returns the round-trip latency in whole milliseconds and the
// decoded status document.
func PingJava(ctx context.Context, cfg JavaConfig) (latencyMS int64, resp JavaResponse, err error) {
	return pingJava(ctx, cfg)
}

// PingBedrock runs the Bedrock Edition Unconnected Ping/Pong exchange
// described in spec §4.4 and returns the round-trip latency in whole
// milliseconds and the decoded pong payload.
func PingBedrock(ctx context.Context, cfg BedrockConfig) (latencyMS int64, resp BedrockResponse, err error) {
	return pingBedrock(ctx, cfg)
}

// GetStatus dispatches on the concrete type of cfg (JavaConfig or
// BedrockConfig) and returns the edition-appropriate latency and response
// as the dynamically-typed any values. Callers that statically know their
// edition should prefer PingJava/PingBedrock directly.
func GetStatus(ctx context.Context, cfg any) (latencyMS int64, resp any, err error) {
	switch c := cfg.(type) {
	case JavaConfig:
		ms, r, e := PingJava(ctx, c)
		return ms, r, e
	case BedrockConfig:
		ms, r, e := PingBedrock(ctx, c)
		return ms, r, e
	default:
		return 0, nil, invalidAddressf("unsupported config type %T", cfg)
	}
}
