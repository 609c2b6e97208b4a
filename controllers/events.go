package controllers

import (
	"net/http"

	dbpkg "otis/db"
	"otis/ingest"
	"otis/models"

	"github.com/gin-gonic/gin"
)

// GET /api/events (admin)
func GetEvents(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	q := db.Order("id desc").Limit(200)
	if v := c.Query("acknowledged"); v != "" {
		q = q.Where("acknowledged = ?", v == "true")
	}
	if v := c.Query("tenant_id"); v != "" {
		q = q.Where("tenant_id = ?", v)
	}

	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"events": events})
}

// GET /api/events/:id (admin)
func GetEventByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var event models.Event
	if err := db.First(&event, id).Error; err != nil {
		RespondError(c, "event not found", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"event": event})
}

// ReprocessEvent re-drives dispatch for a captured event in override mode:
// the stored payload is re-normalized against the same row and re-enqueued,
// even if the event was already acknowledged.
//
// POST /api/events/:id/reprocess (admin)
func ReprocessEvent(co *ingest.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ParamID(c, "id")
		if !ok {
			return
		}

		db := dbpkg.DBInstance(c)
		if db == nil {
			RespondError(c, "db not configured in context", http.StatusInternalServerError)
			return
		}

		var event models.Event
		if err := db.First(&event, id).Error; err != nil {
			RespondError(c, "event not found", http.StatusNotFound)
			return
		}

		in, err := ingest.ParseInbound([]byte(event.RawPayload))
		if err != nil {
			RespondError(c, "stored payload is not replayable: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}

		out, err := co.Dispatch(c.Request.Context(), in, true)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		RespondSuccess(c, gin.H{"event": out, "reprocessed": true})
	}
}
