package room

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"chatroom-service/internal/models"
)

const (
	maxMessageLen   = 1000
	replyPreviewLen = 100
)

// Limits are the room's admission and retention bounds.
type Limits struct {
	MaxConnections      int
	MaxConnsPerOrigin   int
	HistoryRetention    int
	HistoryReplayLength int
}

// DefaultLimits returns the standard production bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxConnections:      100,
		MaxConnsPerOrigin:   5,
		HistoryRetention:    500,
		HistoryReplayLength: 100,
	}
}

// PasswordFunc returns the current room password. It is called on every join
// so runtime password changes take effect immediately.
type PasswordFunc func() (string, error)

// Room owns the membership table, the history ring, and the admission guard.
// Every mutation runs to completion under the room mutex, so concurrent
// connections observe each dispatch as one atomic step.
type Room struct {
	mu       sync.Mutex
	limits   Limits
	password PasswordFunc
	guard    *admissionGuard
	members  map[string]models.Member
	history  *historyRing
	now      func() time.Time
}

// New creates an empty room.
func New(password PasswordFunc, limits Limits) *Room {
	return &Room{
		limits:   limits,
		password: password,
		guard:    newAdmissionGuard(limits.MaxConnections, limits.MaxConnsPerOrigin),
		members:  make(map[string]models.Member),
		history:  newHistoryRing(limits.HistoryRetention),
		now:      time.Now,
	}
}

// Admit counts a new connection against the global and per-origin ceilings.
// It runs before authentication and must be paired with Release.
func (r *Room) Admit(origin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.guard.admit(origin)
}

// Release returns a previously admitted connection's admission slots.
func (r *Room) Release(origin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guard.release(origin)
}

// MemberCount reports the number of authenticated members.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// HistoryLen reports the current history size.
func (r *Room) HistoryLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.len()
}

// Dispatch executes one request for the given connection and returns the
// outbound effects in emission order. A non-nil error means the request was
// refused with no state change; the caller surfaces it to the originating
// connection only.
func (r *Room) Dispatch(connID, origin string, req Request) ([]Effect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch req := req.(type) {
	case JoinRequest:
		return r.join(connID, origin, req)
	case SendRequest:
		return r.send(connID, req)
	case DeleteOneRequest:
		return r.deleteOne(connID, req)
	case DeleteAllRequest:
		return r.deleteAll(connID)
	case DisconnectRequest:
		return r.disconnect(connID), nil
	default:
		return nil, fmt.Errorf("unknown request type %T", req)
	}
}

func (r *Room) join(connID, origin string, req JoinRequest) ([]Effect, error) {
	if _, ok := r.members[connID]; ok {
		return nil, ErrAlreadyJoined
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, ErrInvalidCredentials
	}

	current, err := r.password()
	if err != nil {
		return nil, fmt.Errorf("read room password: %w", err)
	}
	if req.Password != current {
		return nil, ErrInvalidCredentials
	}

	for _, m := range r.members {
		if strings.EqualFold(m.DisplayName, name) {
			return nil, ErrNameTaken
		}
	}

	member := models.Member{
		ConnID:      connID,
		DisplayName: name,
		Origin:      origin,
		JoinedAt:    r.now(),
	}
	r.members[connID] = member

	return []Effect{
		{Scope: ScopeSender, Event: models.RoomEvent{
			Type: models.EventHistory,
			Data: models.HistoryPayload{Messages: r.history.tail(r.limits.HistoryReplayLength)},
		}},
		{Scope: ScopeOthers, Event: models.RoomEvent{
			Type: models.EventJoined,
			Data: models.MemberPayload{DisplayName: name},
		}},
		r.presenceEffect(),
	}, nil
}

func (r *Room) send(connID string, req SendRequest) ([]Effect, error) {
	member, ok := r.members[connID]
	if !ok {
		return nil, ErrNotAuthenticated
	}

	body := truncateRunes(strings.TrimSpace(req.Body), maxMessageLen)
	body = stripScriptTags(body)
	if strings.TrimSpace(body) == "" && req.Attachment == nil {
		return nil, ErrEmptyMessage
	}

	msg := models.Message{
		ID:        newMessageID(r.now()),
		Author:    member.DisplayName,
		Body:      body,
		CreatedAt: r.now().UnixMilli(),
	}
	if req.ReplyTo != nil {
		reply := *req.ReplyTo
		reply.Body = truncateRunes(reply.Body, replyPreviewLen)
		msg.ReplyTo = &reply
	}
	if req.Attachment != nil {
		attachment := *req.Attachment
		msg.Attachment = &attachment
	}

	r.history.append(msg)

	return []Effect{{Scope: ScopeAll, Event: models.RoomEvent{
		Type: models.EventCreated,
		Data: msg,
	}}}, nil
}

func (r *Room) deleteOne(connID string, req DeleteOneRequest) ([]Effect, error) {
	member, ok := r.members[connID]
	if !ok {
		return nil, ErrNotAuthenticated
	}

	msg, found := r.history.find(req.MessageID)
	if !found {
		return nil, ErrMessageNotFound
	}
	// Ownership is by current display name, so a reused name inherits the
	// previous holder's messages.
	if msg.Author != member.DisplayName {
		return nil, ErrNotOwner
	}

	r.history.remove(req.MessageID)

	return []Effect{{Scope: ScopeAll, Event: models.RoomEvent{
		Type: models.EventDeleted,
		Data: models.DeletedPayload{MessageID: req.MessageID},
	}}}, nil
}

func (r *Room) deleteAll(connID string) ([]Effect, error) {
	if _, ok := r.members[connID]; !ok {
		return nil, ErrNotAuthenticated
	}

	r.history.clear()

	return []Effect{{Scope: ScopeAll, Event: models.RoomEvent{
		Type: models.EventCleared,
	}}}, nil
}

func (r *Room) disconnect(connID string) []Effect {
	member, ok := r.members[connID]
	if !ok {
		return nil
	}
	delete(r.members, connID)

	return []Effect{
		{Scope: ScopeOthers, Event: models.RoomEvent{
			Type: models.EventLeft,
			Data: models.MemberPayload{DisplayName: member.DisplayName},
		}},
		r.presenceEffect(),
	}
}

func (r *Room) presenceEffect() Effect {
	entries := make([]models.PresenceEntry, 0, len(r.members))
	for _, m := range r.members {
		entries = append(entries, models.PresenceEntry{
			DisplayName: m.DisplayName,
			JoinedAt:    m.JoinedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].JoinedAt.Equal(entries[j].JoinedAt) {
			return entries[i].DisplayName < entries[j].DisplayName
		}
		return entries[i].JoinedAt.Before(entries[j].JoinedAt)
	})

	return Effect{Scope: ScopeAll, Event: models.RoomEvent{
		Type: models.EventPresence,
		Data: models.PresencePayload{Count: len(entries), Members: entries},
	}}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// newMessageID builds an id that is unique enough within the retention
// window: epoch millis plus a short random suffix.
func newMessageID(now time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", now.UnixNano())
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), hex.EncodeToString(buf))
}
