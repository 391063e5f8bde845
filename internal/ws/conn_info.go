package ws

import "time"

// ConnInfo is the per-connection bookkeeping the hub carries alongside each
// websocket. DisplayName stays empty until the connection authenticates.
type ConnInfo struct {
	ConnID        string
	Origin        string
	DisplayName   string
	Authenticated bool
	RequestID     string
	TraceID       string
	ConnectedAt   time.Time
}
