package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/padws/pad.go/pkg/auth"
	"github.com/padws/pad.go/pkg/codec"
	"github.com/padws/pad.go/pkg/logger"
)

// DefaultDialer is the gorilla dialer used by WebSocketConnection, with
// compression enabled.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
}

// DefaultWriteTimeout bounds a single message write.
const DefaultWriteTimeout = 10 * time.Second

// ErrNotConnected is returned by SendMessage before Connect or after
// Close.
var ErrNotConnected = errors.New("connection: not connected")

// WebSocketConnection sends kind+payload envelopes over a WebSocket. It
// is outbound-only: inbound frames are read and discarded to service
// control messages.
//
// Writes are serialized with a mutex; SendMessage is safe for concurrent
// use.
type WebSocketConnection struct {
	baseURL   string
	session   *auth.Session
	marshaler codec.Marshaler
	log       logger.Logger

	writeTimeout time.Duration

	connLock sync.Mutex
	conn     *gorilla.Conn
	closed   bool
}

// Option configures a WebSocketConnection.
type Option func(*WebSocketConnection)

func WithMarshaler(m codec.Marshaler) Option {
	return func(ws *WebSocketConnection) { ws.marshaler = m }
}

func WithLogger(log logger.Logger) Option {
	return func(ws *WebSocketConnection) { ws.log = log }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(ws *WebSocketConnection) { ws.writeTimeout = d }
}

// NewWebSocketConnection builds a connection to the ws endpoint at
// baseURL (e.g. "ws://pad.example.com/ws"). The session supplies the
// bearer token for the handshake.
func NewWebSocketConnection(baseURL string, session *auth.Session, opts ...Option) *WebSocketConnection {
	ws := &WebSocketConnection{
		baseURL:      baseURL,
		session:      session,
		marshaler:    codec.JSONMarshaler{},
		log:          logger.Default(),
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(ws)
	}
	return ws
}

// Connect dials the backend. The bearer token, when present, is sent as
// an Authorization header on the handshake request.
func (ws *WebSocketConnection) Connect(ctx context.Context) error {
	header := http.Header{}
	if token := ws.session.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, res, err := DefaultDialer.DialContext(ctx, ws.baseURL, header)
	if err != nil {
		return fmt.Errorf("connection: dial %s: %w", ws.baseURL, err)
	}
	defer res.Body.Close()

	ws.connLock.Lock()
	ws.conn = conn
	ws.closed = false
	ws.connLock.Unlock()

	go ws.readLoop(conn)

	return nil
}

// readLoop drains inbound frames so ping/pong and close handshakes are
// serviced. Payloads are discarded; this channel is outbound-only.
func (ws *WebSocketConnection) readLoop(conn *gorilla.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			ws.connLock.Lock()
			closed := ws.closed
			ws.connLock.Unlock()

			if !closed {
				ws.log.Warn("message channel read failed", "error", err)
			}
			return
		}
	}
}

// SendMessage encodes a Message envelope and writes it as one frame.
func (ws *WebSocketConnection) SendMessage(kind string, payload any) error {
	data, err := ws.marshaler.Marshal(Message{Kind: kind, Payload: payload})
	if err != nil {
		return fmt.Errorf("connection: encode %s message: %w", kind, err)
	}

	ws.connLock.Lock()
	defer ws.connLock.Unlock()

	if ws.conn == nil || ws.closed {
		return ErrNotConnected
	}

	if err := ws.conn.SetWriteDeadline(time.Now().Add(ws.writeTimeout)); err != nil {
		return err
	}
	if err := ws.conn.WriteMessage(gorilla.TextMessage, data); err != nil {
		return fmt.Errorf("connection: write %s message: %w", kind, err)
	}

	return nil
}

// Close sends a close frame best-effort and tears down the socket.
func (ws *WebSocketConnection) Close() error {
	ws.connLock.Lock()
	defer ws.connLock.Unlock()

	if ws.conn == nil || ws.closed {
		return nil
	}
	ws.closed = true

	_ = ws.conn.WriteControl(
		gorilla.CloseMessage,
		gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)

	return ws.conn.Close()
}
