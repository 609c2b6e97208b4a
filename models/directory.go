package models

import "time"

// SyncedUser mirrors one entry of the chat platform's user directory.
// Rows are upserted by the directory sync endpoints; the platform is the
// source of truth.
type SyncedUser struct {
	ID              int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID        int64      `gorm:"not null;unique_index:uix_synced_users_tenant_user" json:"tenant_id"`
	ExternalUserRef string     `gorm:"column:external_user_ref;not null;unique_index:uix_synced_users_tenant_user" json:"external_user_ref"`
	Name            string     `gorm:"default:''" json:"name"`
	DisplayName     string     `gorm:"default:''" json:"display_name"`
	IsBot           bool       `gorm:"not null;default:false" json:"is_bot"`
	Deleted         bool       `gorm:"not null;default:false" json:"deleted"`
	CreatedAt       *time.Time `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

// SyncedChannel mirrors one entry of the chat platform's channel directory.
type SyncedChannel struct {
	ID                 int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TenantID           int64      `gorm:"not null;unique_index:uix_synced_channels_tenant_channel" json:"tenant_id"`
	ExternalChannelRef string     `gorm:"column:external_channel_ref;not null;unique_index:uix_synced_channels_tenant_channel" json:"external_channel_ref"`
	Name               string     `gorm:"default:''" json:"name"`
	IsPrivate          bool       `gorm:"not null;default:false" json:"is_private"`
	Archived           bool       `gorm:"not null;default:false" json:"archived"`
	CreatedAt          *time.Time `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}
