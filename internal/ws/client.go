package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client is one connected snapshot consumer. Clients only receive; inbound
// messages are read and discarded to service control frames.
type client struct {
	conn    *websocket.Conn
	out     chan []byte
	logger  *zap.Logger
	onClose func(*client)
	once    sync.Once
}

func newClient(conn *websocket.Conn, logger *zap.Logger, onClose func(*client)) *client {
	return &client{
		conn:    conn,
		out:     make(chan []byte, 8),
		logger:  logger,
		onClose: onClose,
	}
}

func (c *client) send(payload []byte) {
	select {
	case c.out <- payload:
	default:
		// Slow consumer: drop the frame, the next snapshot replaces it.
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.out)
	})
}

func (c *client) cleanup() {
	c.onClose(c)
	c.close()
	_ = c.conn.Close()
}

func (c *client) readPump() {
	defer c.cleanup()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
