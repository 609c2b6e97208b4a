package models

import "time"

// SlackConfig stores tenant-specific Slack credentials.
// One row per tenant (multi-tenant).
type SlackConfig struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID       int64      `gorm:"not null;unique_index" json:"tenant_id"`
	BotToken       string     `gorm:"column:bot_token;not null" json:"bot_token"`
	ApiVersion     string     `gorm:"column:api_version;not null;default:'v1'" json:"api_version"`
	DefaultChannel string     `gorm:"column:default_channel" json:"default_channel"` // fallback channel for replies when the source channel is unknown
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}
