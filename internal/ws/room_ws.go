package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chatroom-service/internal/models"
	"chatroom-service/internal/observability"
	"chatroom-service/internal/room"
	"chatroom-service/internal/settings"
)

// RoomWebSocketHandler binds the room core to the websocket transport: it
// admits connections, parses inbound frames into typed requests, and applies
// the effects each dispatch produces.
type RoomWebSocketHandler struct {
	hub      *Hub
	room     *room.Room
	settings settings.Store
}

// NewRoomWebSocketHandler constructs a RoomWebSocketHandler.
func NewRoomWebSocketHandler(hub *Hub, rm *room.Room, st settings.Store) *RoomWebSocketHandler {
	return &RoomWebSocketHandler{hub: hub, room: rm, settings: st}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinPayload struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type sendPayload struct {
	Body       string                `json:"body"`
	ReplyTo    *models.ReplyRef      `json:"reply_to"`
	Attachment *models.AttachmentRef `json:"attachment"`
}

type deletePayload struct {
	MessageID string `json:"message_id"`
}

type deleteAllPayload struct {
	Password string `json:"password"`
}

// Handle upgrades the connection, runs it through the admission guard, and
// starts the read loop.
func (h *RoomWebSocketHandler) Handle(c *gin.Context) {
	enabled, err := h.settings.SiteEnabled(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read site status"})
		return
	}
	if !enabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "site is disabled"})
		return
	}

	ctx, span := otel.Tracer("chatroom-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	origin := observability.IPFromRequest(c.Request)
	if err := h.room.Admit(origin); err != nil {
		h.refuse(conn, err)
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		Origin:      origin,
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Add(conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycle(ctx, "ws_connect", info, "")

	go h.readLoop(ctx, conn, info)
}

// refuse notifies a rejected connection of the admission failure and closes
// it. Rejected connections never enter the hub or the membership table.
func (h *RoomWebSocketHandler) refuse(conn *websocket.Conn, err error) {
	log.Printf("connection refused: %v", err)
	payload, _ := json.Marshal(models.RoomEvent{
		Type: models.EventCapacity,
		Data: models.ErrorPayload{Reason: err.Error()},
	})
	_ = conn.WriteMessage(websocket.TextMessage, payload)
	conn.Close()
	observability.IncWSEvent("ws_refused")
}

func (h *RoomWebSocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		effects, _ := h.room.Dispatch(info.ConnID, info.Origin, room.DisconnectRequest{})
		h.hub.Remove(conn)
		h.applyEffects(conn, effects)
		h.room.Release(info.Origin)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycle(ctx, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}
		h.handleFrame(ctx, conn, info, raw)
	}
}

// handleFrame processes one inbound frame. Malformed input is answered with
// an error event on the same connection and never disturbs the room.
func (h *RoomWebSocketHandler) handleFrame(ctx context.Context, conn *websocket.Conn, info ConnInfo, raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		h.sendError(conn, models.EventError, "invalid message format")
		return
	}

	req, err := h.parseRequest(ctx, conn, frame)
	if err != nil {
		h.reject(conn, err)
		return
	}
	if req == nil {
		return
	}

	effects, err := h.room.Dispatch(info.ConnID, info.Origin, req)
	if err != nil {
		h.reject(conn, err)
		return
	}

	if join, ok := req.(room.JoinRequest); ok {
		h.hub.SetAuthenticated(conn, strings.TrimSpace(join.DisplayName))
		observability.IncWSEvent("member_join")
	}
	switch frame.Type {
	case models.EventSend:
		observability.IncMessage("created")
	case models.EventDeleteOne:
		observability.IncMessage("deleted")
	case models.EventDeleteAll:
		observability.IncMessage("cleared")
	}

	h.applyEffects(conn, effects)
}

// parseRequest maps an inbound frame onto a typed room request. A nil request
// with nil error means the frame was fully handled here.
func (h *RoomWebSocketHandler) parseRequest(ctx context.Context, conn *websocket.Conn, frame inboundFrame) (room.Request, error) {
	switch frame.Type {
	case models.EventJoin:
		var p joinPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, errInvalidFormat
		}
		return room.JoinRequest{DisplayName: p.DisplayName, Password: p.Password}, nil

	case models.EventSend:
		var p sendPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, errInvalidFormat
		}
		return room.SendRequest{Body: p.Body, ReplyTo: p.ReplyTo, Attachment: p.Attachment}, nil

	case models.EventDeleteOne:
		var p deletePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, errInvalidFormat
		}
		return room.DeleteOneRequest{MessageID: p.MessageID}, nil

	case models.EventDeleteAll:
		// The delete password is verified here, at the trust boundary, so a
		// client cannot clear history by skipping the UI prompt.
		var p deleteAllPayload
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &p); err != nil {
				return nil, errInvalidFormat
			}
		}
		current, err := h.settings.DeletePassword(ctx)
		if err != nil {
			log.Printf("read delete password: %v", err)
			return nil, errInternal
		}
		if p.Password != current {
			return nil, errBadDeletePassword
		}
		return room.DeleteAllRequest{}, nil

	default:
		h.sendError(conn, models.EventError, "unknown event type")
		return nil, nil
	}
}

var (
	errInvalidFormat     = errors.New("invalid message format")
	errBadDeletePassword = errors.New("invalid delete password")
	errInternal          = errors.New("internal error")
)

// reject surfaces a refused request to the originating connection only.
func (h *RoomWebSocketHandler) reject(conn *websocket.Conn, err error) {
	log.Printf("request rejected: %v", err)
	h.sendError(conn, errorEventType(err), err.Error())
}

func errorEventType(err error) string {
	switch {
	case errors.Is(err, room.ErrInvalidCredentials),
		errors.Is(err, room.ErrNameTaken),
		errors.Is(err, room.ErrAlreadyJoined),
		errors.Is(err, room.ErrNotAuthenticated):
		return models.EventAuthError
	case errors.Is(err, room.ErrRoomFull), errors.Is(err, room.ErrOriginLimited):
		return models.EventCapacity
	default:
		return models.EventError
	}
}

func (h *RoomWebSocketHandler) sendError(conn *websocket.Conn, eventType, reason string) {
	h.hub.Send(conn, models.RoomEvent{
		Type: eventType,
		Data: models.ErrorPayload{Reason: reason},
	})
}

func (h *RoomWebSocketHandler) applyEffects(conn *websocket.Conn, effects []room.Effect) {
	for _, effect := range effects {
		switch effect.Scope {
		case room.ScopeSender:
			h.hub.Send(conn, effect.Event)
		case room.ScopeOthers:
			h.hub.BroadcastExcept(conn, effect.Event)
		case room.ScopeAll:
			h.hub.Broadcast(effect.Event)
		}
	}
}

func (h *RoomWebSocketHandler) publishLifecycle(ctx context.Context, event string, info ConnInfo, reason string) {
	durationMS := int64(0)
	if event != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"display_name": info.DisplayName,
			"ip":           info.Origin,
		},
	}
	_ = observability.PublishEvent(ctx, "ws_events.room", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
