package domain

import "time"

// SessionState marks whether a streaming connection is still live.
type SessionState string

const (
	SessionOpen   SessionState = "open"
	SessionClosed SessionState = "closed"
)

// Session is one streaming client's persistent connection record. The
// connection store is the sole source of truth; the session manager keeps
// no authoritative in-memory copy because it may run as multiple instances.
type Session struct {
	ConnectionID string `json:"connection_id"`
	// Epoch is the connect time in Unix milliseconds, used as the record's
	// ordering key so historical records for one client never overwrite.
	Epoch     int64        `json:"epoch"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}
