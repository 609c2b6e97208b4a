package models

import "time"

// ChannelLink maps a tenant's external channel to ingestion behavior.
// Muted channels pass the webhook boundary but are dropped before dispatch.
type ChannelLink struct {
	ID                 int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID           int64      `gorm:"not null;unique_index:uix_channel_links_tenant_channel" json:"tenant_id" form:"tenant_id"`
	ExternalChannelRef string     `gorm:"column:external_channel_ref;not null;unique_index:uix_channel_links_tenant_channel" json:"external_channel_ref" form:"external_channel_ref"`
	Name               string     `gorm:"default:''" json:"name" form:"name"`
	Muted              bool       `gorm:"not null;default:false" json:"muted" form:"muted"`
	CreatedAt          *time.Time `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}
