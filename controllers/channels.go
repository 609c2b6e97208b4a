package controllers

import (
	"net/http"

	dbpkg "otis/db"
	"otis/models"

	"github.com/gin-gonic/gin"
)

// GET /api/channel-links?tenant_id= (admin)
func GetChannelLinks(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	q := db.Order("id asc")
	if v := c.Query("tenant_id"); v != "" {
		q = q.Where("tenant_id = ?", v)
	}

	var links []models.ChannelLink
	if err := q.Find(&links).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"channel_links": links})
}

// POST /api/channel-links (admin)
func CreateChannelLink(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var link models.ChannelLink
	if err := c.ShouldBindJSON(&link); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}
	if link.TenantID <= 0 {
		RespondError(c, "tenant_id is required", http.StatusBadRequest)
		return
	}
	if link.ExternalChannelRef == "" {
		RespondError(c, "external_channel_ref is required", http.StatusBadRequest)
		return
	}

	var tenant models.Tenant
	if err := db.First(&tenant, link.TenantID).Error; err != nil {
		RespondError(c, "tenant not found", http.StatusNotFound)
		return
	}

	link.ID = 0
	if err := db.Create(&link).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"channel_link": link})
}

// PUT /api/channel-links/:id (admin)
func UpdateChannelLink(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var link models.ChannelLink
	if err := db.First(&link, id).Error; err != nil {
		RespondError(c, "channel link not found", http.StatusNotFound)
		return
	}

	var input struct {
		Name  *string `json:"name"`
		Muted *bool   `json:"muted"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}

	if input.Name != nil {
		link.Name = *input.Name
	}
	if input.Muted != nil {
		link.Muted = *input.Muted
	}

	if err := db.Save(&link).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"channel_link": link})
}

// DELETE /api/channel-links/:id (admin)
func DeleteChannelLink(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var link models.ChannelLink
	if err := db.First(&link, id).Error; err != nil {
		RespondError(c, "channel link not found", http.StatusNotFound)
		return
	}

	if err := db.Delete(&link).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"deleted": true})
}
