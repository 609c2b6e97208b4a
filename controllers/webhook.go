package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"otis/config"
	dbpkg "otis/db"
	"otis/ingest"
	"otis/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// WebhookEvents is the inbound boundary for the chat platform's event
// callbacks (POST /api/slack/events).
//
// The platform delivers at-least-once and retries on any non-2xx response, so
// the status mapping is deliberate: everything successfully captured or
// deliberately ignored answers 200; validation and tenant-resolution failures
// answer 4xx; storage/queue failures answer 5xx and rely on the redelivery.
func WebhookEvents(cfg config.Configuration, co *ingest.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			RespondError(c, "failed to read body", http.StatusBadRequest)
			return
		}

		in, err := ingest.ParseInbound(raw)
		if err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}

		if !tokenMatches(in.Token, cfg.Slack.VerifyToken) {
			RespondError(c, "forbidden", http.StatusForbidden)
			return
		}

		switch in.CallbackKind {
		case ingest.CALLBACK_URL_VERIFICATION:
			c.JSON(http.StatusOK, gin.H{"challenge": in.Challenge})
			return
		case ingest.CALLBACK_EVENT:
			// fallthrough to dispatch below
		default:
			// Unknown callback kinds are answered 200 so the sender stops
			// retrying something we will never handle.
			c.String(http.StatusOK, "IGNORED")
			return
		}

		// Cheap pre-filters before the pipeline: our own bot's messages and
		// muted channels never reach dispatch.
		if in.Inner.BotID != "" {
			c.String(http.StatusOK, "IGNORED")
			return
		}
		if db := dbpkg.DBInstance(c); db != nil && channelMuted(db, in) {
			c.String(http.StatusOK, "IGNORED")
			return
		}

		ev, err := co.Dispatch(c.Request.Context(), in, false)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"captured":     true,
			"event_id":     ev.ID,
			"acknowledged": ev.Acknowledged,
		})
	}
}

func tokenMatches(got, want string) bool {
	if want == "" {
		// No token configured means verification is disabled (dev only).
		return true
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func channelMuted(db *gorm.DB, in *ingest.InboundEvent) bool {
	channel := in.Inner.Channel
	if channel == "" {
		channel = in.Inner.Item.Channel
	}
	if channel == "" {
		return false
	}

	var count int
	err := db.Model(&models.ChannelLink{}).
		Joins("JOIN tenants ON tenants.id = channel_links.tenant_id").
		Where("tenants.external_team_ref = ? AND channel_links.external_channel_ref = ? AND channel_links.muted = ?",
			models.NormalizeRef(in.TeamRef), channel, true).
		Count(&count).Error
	return err == nil && count > 0
}

func respondDispatchError(c *gin.Context, err error) {
	var vErr *ingest.ValidationError
	if errors.As(err, &vErr) {
		RespondError(c, vErr.Error(), http.StatusBadRequest)
		return
	}

	var tErr *ingest.TenantResolutionError
	if errors.As(err, &tErr) {
		RespondError(c, tErr.Error(), http.StatusNotFound)
		return
	}

	var qErr *ingest.EnqueueError
	if errors.As(err, &qErr) {
		// The event stays captured-unacknowledged; the sender's retry will
		// re-drive dispatch.
		RespondError(c, "queue unavailable", http.StatusServiceUnavailable)
		return
	}

	RespondError(c, "storage failure", http.StatusInternalServerError)
}
