package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargebook/internal/watch"
)

// Hub fans live station snapshots out to connected browser clients.
type Hub struct {
	watcher  *watch.Watcher
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub builds hub.
func NewHub(watcher *watch.Watcher, logger *zap.Logger) *Hub {
	return &Hub{
		watcher: watcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The UI is served from another origin in every deployment.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]bool),
	}
}

// Run consumes the watcher subscription and broadcasts each snapshot
// until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	sub := h.watcher.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case snapshot, ok := <-sub.Updates():
			if !ok {
				h.closeAll()
				return
			}
			payload, err := json.Marshal(map[string]interface{}{
				"type":     "stations",
				"stations": snapshot,
			})
			if err != nil {
				h.logger.Warn("failed to encode snapshot", zap.Error(err))
				continue
			}
			h.broadcast(payload)
		}
	}
}

// HandleWS upgrades the request and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn, h.logger, h.remove)
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.send(payload)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

// timings shared by client pumps.
const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)
