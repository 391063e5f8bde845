package ws

import (
	"crypto/rand"
	"encoding/hex"
)

// newConnID returns a random identifier for one websocket connection. The
// room keys its membership table off this value.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
