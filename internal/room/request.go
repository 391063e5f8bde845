package room

import "chatroom-service/internal/models"

// Request is the closed set of inbound operations a connection can perform.
// The transport boundary parses raw JSON into one of these variants; the room
// itself never sees untyped payloads.
type Request interface {
	isRequest()
}

// JoinRequest asks to authenticate into the room.
type JoinRequest struct {
	DisplayName string
	Password    string
}

// SendRequest posts a new message.
type SendRequest struct {
	Body       string
	ReplyTo    *models.ReplyRef
	Attachment *models.AttachmentRef
}

// DeleteOneRequest removes a single message owned by the caller.
type DeleteOneRequest struct {
	MessageID string
}

// DeleteAllRequest clears the whole history. The caller must have performed
// the delete-password check before dispatching this.
type DeleteAllRequest struct{}

// DisconnectRequest tears down the caller's membership.
type DisconnectRequest struct{}

func (JoinRequest) isRequest()       {}
func (SendRequest) isRequest()       {}
func (DeleteOneRequest) isRequest()  {}
func (DeleteAllRequest) isRequest()  {}
func (DisconnectRequest) isRequest() {}

// Scope selects the recipients of one effect.
type Scope int

const (
	// ScopeSender targets only the connection that issued the request.
	ScopeSender Scope = iota
	// ScopeOthers targets every authenticated member except the sender.
	ScopeOthers
	// ScopeAll targets every authenticated member including the sender.
	ScopeAll
)

// Effect is one outbound event produced by a dispatch, in emission order.
type Effect struct {
	Scope Scope
	Event models.RoomEvent
}
