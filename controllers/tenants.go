package controllers

import (
	"net/http"

	dbpkg "otis/db"
	"otis/models"

	"github.com/gin-gonic/gin"
)

// GET /api/tenants (admin)
func GetTenants(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var tenants []models.Tenant
	if err := db.Order("id asc").Find(&tenants).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"tenants": tenants})
}

// GET /api/tenants/:id (admin)
func GetTenantByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var tenant models.Tenant
	if err := db.First(&tenant, id).Error; err != nil {
		RespondError(c, "tenant not found", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"tenant": tenant})
}

// POST /api/tenants (admin)
func CreateTenant(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var tenant models.Tenant
	if err := c.ShouldBindJSON(&tenant); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}

	if missing := tenant.MissingFields(); missing != "" {
		RespondError(c, missing+" is required", http.StatusBadRequest)
		return
	}

	tenant.ID = 0
	tenant.ExternalTeamRef = models.NormalizeRef(tenant.ExternalTeamRef)

	var existing models.Tenant
	if err := db.Where("external_team_ref = ?", tenant.ExternalTeamRef).First(&existing).Error; err == nil {
		RespondError(c, "external_team_ref already provisioned", http.StatusConflict)
		return
	}

	if err := db.Create(&tenant).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tenant": tenant})
}

// PUT /api/tenants/:id (admin)
func UpdateTenant(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var tenant models.Tenant
	if err := db.First(&tenant, id).Error; err != nil {
		RespondError(c, "tenant not found", http.StatusNotFound)
		return
	}

	var input models.Tenant
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}

	if input.Name != "" {
		tenant.Name = input.Name
	}
	if input.ExternalTeamRef != "" {
		tenant.ExternalTeamRef = models.NormalizeRef(input.ExternalTeamRef)
	}

	if err := db.Save(&tenant).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"tenant": tenant})
}

// DELETE /api/tenants/:id (admin)
func DeleteTenant(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var tenant models.Tenant
	if err := db.First(&tenant, id).Error; err != nil {
		RespondError(c, "tenant not found", http.StatusNotFound)
		return
	}

	if err := db.Delete(&tenant).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"deleted": true})
}
