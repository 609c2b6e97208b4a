package controllers

import (
	"net/http"

	dbpkg "otis/db"
	"otis/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// GET /api/tenants/:id/slack-config (admin)
func GetSlackConfig(c *gin.Context) {
	tenantID, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var cfg models.SlackConfig
	if err := db.Where("tenant_id = ?", tenantID).First(&cfg).Error; err != nil {
		RespondError(c, "slack config not found", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"slack_config": cfg})
}

// PUT /api/tenants/:id/slack-config (admin), create-or-update.
func UpsertSlackConfig(c *gin.Context) {
	tenantID, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var tenant models.Tenant
	if err := db.First(&tenant, tenantID).Error; err != nil {
		RespondError(c, "tenant not found", http.StatusNotFound)
		return
	}

	var input struct {
		BotToken       string `json:"bot_token"`
		DefaultChannel string `json:"default_channel"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}
	if input.BotToken == "" {
		RespondError(c, "bot_token is required", http.StatusBadRequest)
		return
	}

	var cfg models.SlackConfig
	err := db.Where("tenant_id = ?", tenantID).First(&cfg).Error
	if gorm.IsRecordNotFoundError(err) {
		cfg = models.SlackConfig{
			TenantID:       tenantID,
			BotToken:       input.BotToken,
			DefaultChannel: input.DefaultChannel,
		}
		if err := db.Create(&cfg).Error; err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"slack_config": cfg})
		return
	}
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	cfg.BotToken = input.BotToken
	cfg.DefaultChannel = input.DefaultChannel
	if err := db.Save(&cfg).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"slack_config": cfg})
}
