// internal/realtime/websocket.go
package realtime

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// WebSocketConn serializes writes to one socket.
type WebSocketConn struct {
	mu   sync.Mutex
	Conn *websocket.Conn
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}

func (w *WebSocketConn) WriteText(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteMessage(websocket.TextMessage, payload)
}
