package analytics

import "time"

// Topics for mapping lifecycle events.
const (
	TopicMappingCreated = "mapping.created"
	TopicMappingViewed  = "mapping.viewed"
)

// MappingCreatedEvent is emitted when an image is uploaded or an external
// link is shortened.
type MappingCreatedEvent struct {
	EventID    string    `json:"eventId"`
	Hash       string    `json:"hash"`
	TargetKind string    `json:"targetKind"`
	Extension  string    `json:"extension,omitempty"`
	Protected  bool      `json:"protected"`
	CreatedAt  time.Time `json:"createdAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
}

// MappingViewedEvent is emitted on every successful serve, after the gate
// passes. The consumer applies the view-count increment, keeping the
// response path free of the write.
type MappingViewedEvent struct {
	EventID    string    `json:"eventId"`
	Hash       string    `json:"hash"`
	ViewedAt   time.Time `json:"viewedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
	ClientKind string    `json:"clientKind"`
}
