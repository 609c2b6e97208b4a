package controllers

import (
	"net/http"

	dbpkg "otis/db"
	"otis/models"
	"otis/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// slackBaseURL overrides the Slack API endpoint; tests point it at httptest.
var slackBaseURL string

func SetSlackBaseURL(url string) {
	slackBaseURL = url
}

func slackClientForTenant(c *gin.Context, db *gorm.DB, tenantID int64) (tools.SlackClient, bool) {
	var cfg models.SlackConfig
	if err := db.Where("tenant_id = ?", tenantID).First(&cfg).Error; err != nil {
		RespondError(c, "tenant has no slack config", http.StatusPreconditionFailed)
		return tools.SlackClient{}, false
	}
	return tools.SlackClient{BotToken: cfg.BotToken, BaseURL: slackBaseURL}, true
}

// POST /api/tenants/:id/sync/users (admin)
//
// Pulls the platform's user directory and upserts SyncedUser rows. The
// platform is the source of truth; local rows are overwritten.
func SyncUsers(c *gin.Context) {
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

	client, ok := slackClientForTenant(c, db, tenantID)
	if !ok {
		return
	}

	users, err := client.ListUsers(c.Request.Context())
	if err != nil {
		RespondError(c, "directory fetch failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	synced := 0
	for _, u := range users {
		var row models.SyncedUser
		err := db.Where("tenant_id = ? AND external_user_ref = ?", tenantID, u.ID).First(&row).Error
		if gorm.IsRecordNotFoundError(err) {
			row = models.SyncedUser{TenantID: tenantID, ExternalUserRef: u.ID}
		} else if err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}

		row.Name = u.Name
		row.DisplayName = u.Profile.DisplayName
		row.IsBot = u.IsBot
		row.Deleted = u.Deleted

		if err := db.Save(&row).Error; err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
		synced++
	}

	RespondSuccess(c, gin.H{"synced_users": synced})
}

// POST /api/tenants/:id/sync/channels (admin)
func SyncChannels(c *gin.Context) {
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

	client, ok := slackClientForTenant(c, db, tenantID)
	if !ok {
		return
	}

	channels, err := client.ListChannels(c.Request.Context())
	if err != nil {
		RespondError(c, "directory fetch failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	synced := 0
	for _, ch := range channels {
		var row models.SyncedChannel
		err := db.Where("tenant_id = ? AND external_channel_ref = ?", tenantID, ch.ID).First(&row).Error
		if gorm.IsRecordNotFoundError(err) {
			row = models.SyncedChannel{TenantID: tenantID, ExternalChannelRef: ch.ID}
		} else if err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}

		row.Name = ch.Name
		row.IsPrivate = ch.IsPrivate
		row.Archived = ch.IsArchived

		if err := db.Save(&row).Error; err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
		synced++
	}

	RespondSuccess(c, gin.H{"synced_channels": synced})
}
