package live

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Upgrader accepts dashboard connections from any origin; authentication happens on the token.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocketChannel adapts a websocket connection to Channel. Writes are serialised.
type WebSocketChannel struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// NewWebSocketChannel wraps conn.
func NewWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	return &WebSocketChannel{conn: conn}
}

var errChannelClosed = errors.New("channel closed")

// Send writes msg as a JSON text frame.
func (c *WebSocketChannel) Send(ctx context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errChannelClosed
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// Close sends a normal closure frame and closes the connection. Calling it twice is a no-op.
func (c *WebSocketChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	return c.conn.Close()
}

// Serve registers the connection under owner and reads from it until the peer goes away or ctx is
// cancelled, then unregisters and closes it. Incoming frames are ignored.
func Serve(ctx context.Context, registry *Registry, owner string, conn *websocket.Conn) {
	ch := NewWebSocketChannel(conn)
	id := registry.Register(owner, ch)
	defer func() {
		registry.Unregister(owner, id)
		_ = ch.Close()
	}()

	conn.SetReadLimit(maxMessageSize)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = ch.Close()
		case <-done:
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("live connection closed unexpectedly", slog.String("owner", owner), slog.Any("err", err))
			}
			return
		}
	}
}

// RejectPolicyViolation closes conn with code 1008, used when the handshake carries no valid token.
func RejectPolicyViolation(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(writeWait))
	_ = conn.Close()
}
