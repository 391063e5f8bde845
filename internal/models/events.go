package models

// Event names carried over the websocket channel.
const (
	EventJoin       = "join"
	EventSend       = "send-message"
	EventDeleteOne  = "delete-message"
	EventDeleteAll  = "delete-all-messages"
	EventHistory    = "history-replay"
	EventCreated    = "message-created"
	EventDeleted    = "message-deleted"
	EventCleared    = "history-cleared"
	EventJoined     = "member-joined"
	EventLeft       = "member-left"
	EventPresence   = "presence"
	EventAuthError  = "auth-error"
	EventCapacity   = "capacity-error"
	EventError      = "error"
	EventFileUpload = "file-uploaded"
)

// RoomEvent is the envelope written to and read from websocket clients.
type RoomEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// HistoryPayload carries the history replay for a joining member.
type HistoryPayload struct {
	Messages []Message `json:"messages"`
}

// MemberPayload announces a join or leave.
type MemberPayload struct {
	DisplayName string `json:"display_name"`
}

// PresencePayload is the full presence recompute sent after membership changes.
type PresencePayload struct {
	Count   int             `json:"count"`
	Members []PresenceEntry `json:"members"`
}

// DeletedPayload identifies a removed message.
type DeletedPayload struct {
	MessageID string `json:"message_id"`
}

// ErrorPayload carries a human-readable rejection reason to one connection.
type ErrorPayload struct {
	Reason string `json:"reason"`
}
