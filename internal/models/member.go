package models

import "time"

// Member is one authenticated room participant. Origin is kept for admission
// bookkeeping only and must never reach other members.
type Member struct {
	ConnID      string    `json:"-"`
	DisplayName string    `json:"display_name"`
	Origin      string    `json:"-"`
	JoinedAt    time.Time `json:"joined_at"`
}

// PresenceEntry is the member view broadcast to the room.
type PresenceEntry struct {
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}
