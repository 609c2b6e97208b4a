package db

import (
	"otis/models"

	"github.com/jinzhu/gorm"
)

// TenantStore is the gorm-backed tenant resolver (ingest.TenantStore).
// Read-only; tenant provisioning happens through the admin API.
type TenantStore struct {
	db *gorm.DB
}

func NewTenantStore(db *gorm.DB) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) FindByExternalTeamRef(ref string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Where("external_team_ref = ?", models.NormalizeRef(ref)).First(&tenant).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
