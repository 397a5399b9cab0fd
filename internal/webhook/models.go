package webhook

import "time"

// Payload is the canonical key-value form of an inbound webhook body,
// produced by Normalize regardless of the original wire encoding.
// Values are strings, numbers, booleans, nested maps, or nil.
type Payload = map[string]any

// Event kinds ActiveCampaign is known to send. Anything else is
// accepted and recorded as-is.
const (
	EventContactUpdate  = "contact_update"
	EventContactAdd     = "contact_add"
	EventTagAdded       = "contact_tag_added"
	EventTagRemoved     = "contact_tag_removed"
	EventSubscriberNote = "subscriber_note"
	EventUnknown        = "unknown"
)

// Classification is the outcome of probing a normalized payload for an
// event kind and an identifying principal.
type Classification struct {
	EventType    string
	ContactEmail string
	ContactID    string
}

// HasPrincipal reports whether the payload carried any identifying
// reference at all.
func (c Classification) HasPrincipal() bool {
	return c.ContactEmail != "" || c.ContactID != ""
}

// NewLogEntry is the write-side shape of an audit record.
type NewLogEntry struct {
	EventType    string
	ContactEmail string
	ContactID    string
	Payload      Payload
}

// LogEntry is an immutable, append-only audit record as read back from
// the store. Raw payloads stay in the database; listings return the
// summary columns only.
type LogEntry struct {
	LogID        int64     `json:"log_id"`
	EventType    string    `json:"event_type"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactID    string    `json:"contact_id,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}

// Stats is an aggregate snapshot over the audit log.
type Stats struct {
	TotalLogs  int64            `json:"total_logs"`
	EventTypes map[string]int64 `json:"event_types"`
	Recent24h  int64            `json:"recent_24h"`
}

// Result is the JSON body returned for an accepted webhook.
type Result struct {
	Status       string   `json:"status"`
	EventType    string   `json:"event_type"`
	Timestamp    string   `json:"timestamp"`
	LogID        int64    `json:"log_id,omitempty"`
	ContactEmail string   `json:"contact_email,omitempty"`
	ContactID    string   `json:"contact_id,omitempty"`
	ActionsTaken []string `json:"actions_taken"`
	Message      string   `json:"message,omitempty"`
}
