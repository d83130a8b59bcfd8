package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/brutalytics/server/internal/domain"
	"github.com/coder/websocket"
)

// Hub tracks active WebSocket connections per user and fans new
// notifications out to them. A user may hold several connections (multiple
// tabs); each gets every notification.
type Hub struct {
	mu     sync.RWMutex
	nextID int64
	active map[string]map[int64]*websocket.Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{active: make(map[string]map[int64]*websocket.Conn)}
}

// Register adds a connection for a user and returns its handle.
func (h *Hub) Register(userID string, conn *websocket.Conn) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if _, ok := h.active[userID]; !ok {
		h.active[userID] = make(map[int64]*websocket.Conn)
	}
	h.active[userID][id] = conn
	slog.Info("Notification stream registered", "user_id", userID, "conn_id", id)
	return id
}

// Unregister removes a connection for a user.
func (h *Hub) Unregister(userID string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.active[userID]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(h.active, userID)
		}
		slog.Info("Notification stream unregistered", "user_id", userID, "conn_id", id)
	}
}

// Publish sends a notification to every active connection of its owner.
// Send failures are logged and skipped; the REST API remains the source of
// truth for missed notifications.
func (h *Hub) Publish(n *domain.Notification) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.active[n.UserID]))
	for _, conn := range h.active[n.UserID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return
	}

	data, err := json.Marshal(n)
	if err != nil {
		slog.Warn("failed to marshal notification for push", "error", err)
		return
	}

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Debug("notification push failed", "user_id", n.UserID, "error", err)
		}
		cancel()
	}
}
