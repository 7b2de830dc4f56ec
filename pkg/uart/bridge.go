// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// BridgeConfig configures connections to a serial-over-WebSocket bridge
type BridgeConfig struct {
	Username      string
	Password      string
	SkipTLSVerify bool
}

// IsBridgeURL reports whether name addresses a WebSocket bridge rather than
// a local device
func IsBridgeURL(name string) bool {
	return strings.HasPrefix(name, "ws://") || strings.HasPrefix(name, "wss://")
}

// BridgePort carries UART bytes over a WebSocket.
//
// gorilla/websocket connections are unusable after a read deadline fires, so
// a background goroutine owns ReadMessage and Read waits on its channel
// instead.
type BridgePort struct {
	conn     *websocket.Conn
	incoming chan []byte
	errs     chan error
	done     chan struct{}

	pending []byte
	timeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// OpenBridge dials a bridge URL with optional HTTP Basic auth
func OpenBridge(wsURL string, cfg BridgeConfig) (*BridgePort, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: cfg.SkipTLSVerify,
		}
	}

	headers := http.Header{}
	if cfg.Username != "" && cfg.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return newBridgePort(conn), nil
}

func newBridgePort(conn *websocket.Conn) *BridgePort {
	b := &BridgePort{
		conn:     conn,
		incoming: make(chan []byte, 64),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
		timeout:  -1,
	}
	go b.readLoop()
	return b
}

func (b *BridgePort) readLoop() {
	defer close(b.errs)
	defer close(b.incoming)
	for {
		messageType, data, err := b.conn.ReadMessage()
		if err != nil {
			select {
			case <-b.done:
				// Closed locally, nothing to report
			default:
				select {
				case b.errs <- fmt.Errorf("%w: %v", ErrBridgeClosed, err):
				default:
				}
			}
			return
		}

		// Bridges forward raw UART bytes in either frame type
		if messageType != websocket.BinaryMessage && messageType != websocket.TextMessage {
			continue
		}

		select {
		case b.incoming <- data:
		case <-b.done:
			return
		}
	}
}

func (b *BridgePort) Read(p []byte) (int, error) {
	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}

	var expired <-chan time.Time
	if b.timeout >= 0 {
		timer := time.NewTimer(b.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case data, ok := <-b.incoming:
		if !ok {
			return 0, ErrBridgeClosed
		}
		n := copy(p, data)
		b.pending = data[n:]
		return n, nil
	case <-expired:
		return 0, nil
	}
}

func (b *BridgePort) Write(p []byte) (int, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := b.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetReadTimeout bounds Read; a negative timeout blocks until data arrives
func (b *BridgePort) SetReadTimeout(timeout time.Duration) error {
	b.timeout = timeout
	return nil
}

// Drain is a no-op: WriteMessage returns once the frame is on the socket
func (b *BridgePort) Drain() error {
	return nil
}

func (b *BridgePort) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.conn.Close()
	})
	return err
}

// Errors delivers the error that terminated the bridge, if any, and is
// closed once the reader stops
func (b *BridgePort) Errors() <-chan error {
	return b.errs
}

// DialOpener returns an Opener that dials bridge URLs with cfg and opens
// everything else as a local serial device
func DialOpener(cfg BridgeConfig) Opener {
	return func(name string) (Port, error) {
		if IsBridgeURL(name) {
			bridge, err := OpenBridge(name, cfg)
			if err != nil {
				return nil, err
			}
			return bridge, nil
		}
		return SerialOpener(name)
	}
}
