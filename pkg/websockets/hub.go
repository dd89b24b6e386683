package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub delivers messages to connections held by the local development server.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*hubConn
}

type hubConn struct {
	userID string
	mu     sync.Mutex
	ws     *websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*hubConn)}
}

// Register attaches a live connection.
func (h *Hub) Register(connectionID, userID string, ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connectionID] = &hubConn{userID: userID, ws: ws}
}

func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connectionID)
}

// Publish writes message to every local connection of userID.
func (h *Hub) Publish(_ context.Context, userID string, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.RLock()
	var targets []*hubConn
	for _, c := range h.conns {
		if c.userID == userID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.mu.Lock()
		err := c.ws.WriteMessage(websocket.TextMessage, payload)
		c.mu.Unlock()
		if err != nil {
			slog.Error("failed to write to local connection", "userId", userID, "error", err)
		}
	}
	return nil
}
