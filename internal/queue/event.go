// Package queue defines message payloads exchanged over the message broker
// and the plumbing that publishes and consumes them.
package queue

// Event names carried in AuthActivityEvent.Event.
const (
    EventLogin  = "login"
    EventLogout = "logout"
)

// AuthActivityEvent is published whenever a session is created or revoked.
// It contains enough information for downstream consumers to audit or
// alert without querying the primary database.  No token material is ever
// included.
type AuthActivityEvent struct {
    Event      string `json:"event"`       // "login" or "logout"
    UserID     uint64 `json:"user_id"`
    DeviceInfo string `json:"device_info,omitempty"`
    OccurredAt string `json:"occurred_at"` // RFC3339 UTC
}
