package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatroom-service/internal/models"
	"chatroom-service/internal/observability"
)

// client pairs a connection's bookkeeping with its write lock. Gorilla
// websockets support at most one concurrent writer, and broadcasts run on
// every sender's read-loop goroutine, so all writes to a tracked connection
// go through the lock.
type client struct {
	info    ConnInfo
	writeMu sync.Mutex
}

// Hub tracks the live websocket connections of the single room and fans
// events out to them. Broadcasts reach authenticated members only; unicast
// writes go to any tracked connection.
type Hub struct {
	conns map[*websocket.Conn]*client
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]*client)}
}

// Add registers an admitted (not yet authenticated) connection.
func (h *Hub) Add(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &client{info: info}
}

// SetAuthenticated marks a connection as a room member under displayName.
func (h *Hub) SetAuthenticated(conn *websocket.Conn, displayName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl, ok := h.conns[conn]; ok {
		cl.info.Authenticated = true
		cl.info.DisplayName = displayName
	}
}

// Remove forgets a connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Info returns the bookkeeping for a connection.
func (h *Hub) Info(conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cl, ok := h.conns[conn]
	if !ok {
		return ConnInfo{}, false
	}
	return cl.info, true
}

// Send writes one event to a single connection.
func (h *Hub) Send(conn *websocket.Conn, event models.RoomEvent) {
	payload, _ := json.Marshal(event)
	if err := h.write(conn, payload); err != nil {
		h.dropConn(conn, err)
	}
}

// Broadcast writes one event to every authenticated member.
func (h *Hub) Broadcast(event models.RoomEvent) {
	h.broadcast(nil, event)
}

// BroadcastExcept writes one event to every authenticated member but sender.
func (h *Hub) BroadcastExcept(sender *websocket.Conn, event models.RoomEvent) {
	h.broadcast(sender, event)
}

func (h *Hub) broadcast(skip *websocket.Conn, event models.RoomEvent) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns))
	for conn, cl := range h.conns {
		if !cl.info.Authenticated || conn == skip {
			continue
		}
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range targets {
		if err := h.write(conn, payload); err != nil {
			h.dropConn(conn, err)
		}
	}
}

// write serializes writes to one connection. A connection that was removed
// between target collection and write is no longer shared, so it is written
// without the lock.
func (h *Hub) write(conn *websocket.Conn, payload []byte) error {
	h.mu.RLock()
	cl, ok := h.conns[conn]
	h.mu.RUnlock()

	if !ok {
		return conn.WriteMessage(websocket.TextMessage, payload)
	}

	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Hub) dropConn(conn *websocket.Conn, err error) {
	log.Printf("websocket write error: %v", err)
	conn.Close()

	h.mu.Lock()
	cl, tracked := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()

	if !tracked {
		return
	}
	info := cl.info

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"display_name": info.DisplayName,
			"ip":           info.Origin,
		},
	}
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.room", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}
