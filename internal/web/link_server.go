// Package web exposes a single ping result over a local loopback HTTP
// endpoint, so a result can be pulled into a browser or another tool
// instead of only being read from the terminal.
package web

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

// StatusServer serves a single snapshotted ping result as JSON.
type StatusServer struct {
	URL      string
	server   *http.Server
	listener net.Listener
}

// StatusPayload is the JSON document served at the root path.
type StatusPayload struct {
	Protocol      string `json:"protocol"`
	ServerAddress string `json:"server_address"`
	LatencyMillis int64  `json:"latency_millis"`
	Result        any    `json:"result"`
}

// StartStatusServer snapshots payload to JSON once and serves it on a
// loopback port until ttl elapses or Close is called.
func StartStatusServer(payload StatusPayload, ttl time.Duration) (*StatusServer, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode status payload: %w", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start status server: %w", err)
	}

	mux := http.NewServeMux()
	server := &http.Server{Handler: mux}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Serve(listener)
	}()

	statusServer := &StatusServer{
		URL:      fmt.Sprintf("http://%s", listener.Addr().String()),
		server:   server,
		listener: listener,
	}

	if ttl > 0 {
		time.AfterFunc(ttl, func() {
			_ = statusServer.Close()
		})
	}

	select {
	case err := <-serverErr:
		return nil, fmt.Errorf("start status server: %w", err)
	default:
	}

	return statusServer, nil
}

func (s *StatusServer) Close() error {
	if s == nil {
		return nil
	}
	if s.server != nil {
		_ = s.server.Close()
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
