package router

import (
	"log"

	"otis/config"
	"otis/controllers"
	"otis/ingest"
	"otis/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Initialize wires all routes and middlewares: public health endpoints, the
// webhook boundary, and the admin API behind the shared key.
func Initialize(r *gin.Engine, cfg config.Configuration, co *ingest.Coordinator) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.Metrics())

	// Public (no auth)
	r.GET("/health", controllers.Health)
	r.GET("/ready", controllers.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Webhook boundary, authenticated by the platform's verification token
	// inside the payload, not by the admin key.
	api.POST("/slack/events", Logger(), controllers.WebhookEvents(cfg, co))

	// Admin routes
	admin := api.Group("")
	admin.Use(middleware.APIKeyAuth(cfg.Security.AdminAPIKey))

	// Tenants CRUD
	admin.GET("/tenants", Logger(), controllers.GetTenants)
	admin.GET("/tenants/:id", Logger(), controllers.GetTenantByID)
	admin.POST("/tenants", Logger(), controllers.CreateTenant)
	admin.PUT("/tenants/:id", Logger(), controllers.UpdateTenant)
	admin.DELETE("/tenants/:id", Logger(), controllers.DeleteTenant)

	// Per-tenant slack credentials
	admin.GET("/tenants/:id/slack-config", Logger(), controllers.GetSlackConfig)
	admin.PUT("/tenants/:id/slack-config", Logger(), controllers.UpsertSlackConfig)

	// Directory sync against the platform
	admin.POST("/tenants/:id/sync/users", Logger(), controllers.SyncUsers)
	admin.POST("/tenants/:id/sync/channels", Logger(), controllers.SyncChannels)

	// Channel linking
	admin.GET("/channel-links", Logger(), controllers.GetChannelLinks)
	admin.POST("/channel-links", Logger(), controllers.CreateChannelLink)
	admin.PUT("/channel-links/:id", Logger(), controllers.UpdateChannelLink)
	admin.DELETE("/channel-links/:id", Logger(), controllers.DeleteChannelLink)

	// Captured events
	admin.GET("/events", Logger(), controllers.GetEvents)
	admin.GET("/events/:id", Logger(), controllers.GetEventByID)
	admin.POST("/events/:id/reprocess", Logger(), controllers.ReprocessEvent(co))

	// Issues
	admin.GET("/issues", Logger(), controllers.GetIssues)
	admin.GET("/issues/:id", Logger(), controllers.GetIssueByID)
	admin.POST("/issues/:id/resolve", Logger(), controllers.ResolveIssue)

	log.Printf("Routes initialized")
}
