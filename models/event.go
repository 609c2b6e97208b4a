package models

import (
	"strings"
	"time"
)

/************************************************
/**** MARK: INNER EVENT TYPES ****/
/************************************************/
const EVENT_TYPE_MESSAGE_IN_CHANNEL = "message-in-channel"
const EVENT_TYPE_MESSAGE_IN_GROUP = "message-in-group"
const EVENT_TYPE_REACTION_ADDED = "reaction-added"
const EVENT_TYPE_APP_MENTION = "app-mention"

// Event is the canonical dedup record for an inbound chat-platform event.
// One row per unique external_event_ref; the row is only ever mutated to flip
// Acknowledged (one-way) or, under explicit reprocessing, to replace the
// payload and classification.
type Event struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID       int64      `gorm:"not null;index" json:"tenant_id"`
	ExternalRef    string     `gorm:"column:external_event_ref;not null;unique_index" json:"external_event_ref"`
	InnerEventType string     `gorm:"column:inner_event_type;not null;index" json:"inner_event_type"`
	DispatchedAt   int64      `gorm:"not null" json:"dispatched_at"` // epoch seconds from the source, preserved verbatim
	RawPayload     string     `gorm:"type:text" json:"raw_payload"`
	Acknowledged   bool       `gorm:"not null;default:false;index" json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

// NormalizeRef canonicalizes an external reference before storage or lookup.
// The same normalization must be applied on both sides, otherwise the dedup
// unique index stops working.
func NormalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}
