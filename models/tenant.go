package models

import "time"

// Tenant is an internal customer account owning one external team/workspace.
// ExternalTeamRef is stored normalized (trimmed, lower-cased).
type Tenant struct {
	ID              int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name            string     `gorm:"not null" json:"name" form:"name"`
	ExternalTeamRef string     `gorm:"column:external_team_ref;not null;unique_index" json:"external_team_ref" form:"external_team_ref"`
	CreatedAt       *time.Time `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

func (t Tenant) MissingFields() string {
	if t.Name == "" {
		return "name"
	} else if t.ExternalTeamRef == "" {
		return "external_team_ref"
	}
	return ""
}
