package models

import "time"

/************************************************
/**** MARK: ISSUE STATUS ****/
/************************************************/
const ISSUE_STATUS_OPEN = "open"
const ISSUE_STATUS_RESOLVED = "resolved"

// Issue is a support issue opened from a qualifying captured event.
// Key is the public identifier printed in chat replies.
type Issue struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Key         string     `gorm:"not null;unique_index" json:"key"`
	TenantID    int64      `gorm:"not null;index" json:"tenant_id"`
	EventID     int64      `gorm:"not null;index" json:"event_id"`
	ChannelRef  string     `gorm:"column:channel_ref;not null" json:"channel_ref"`
	ReporterRef string     `gorm:"column:reporter_ref;default:''" json:"reporter_ref"` // external user ref of whoever triggered the issue
	Summary     string     `gorm:"type:text" json:"summary"`
	MessageTS   string     `gorm:"column:message_ts;default:''" json:"message_ts"`
	Status      string     `gorm:"not null;default:'open';index" json:"status"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
