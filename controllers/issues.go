package controllers

import (
	"net/http"
	"time"

	dbpkg "otis/db"
	"otis/models"

	"github.com/gin-gonic/gin"
)

// GET /api/issues?status=&tenant_id= (admin)
func GetIssues(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	q := db.Order("id desc").Limit(200)
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("tenant_id"); v != "" {
		q = q.Where("tenant_id = ?", v)
	}

	var issues []models.Issue
	if err := q.Find(&issues).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"issues": issues})
}

// GET /api/issues/:id (admin)
func GetIssueByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var issue models.Issue
	if err := db.First(&issue, id).Error; err != nil {
		RespondError(c, "issue not found", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"issue": issue})
}

// POST /api/issues/:id/resolve (admin). Idempotent manual resolution.
func ResolveIssue(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var issue models.Issue
	if err := db.First(&issue, id).Error; err != nil {
		RespondError(c, "issue not found", http.StatusNotFound)
		return
	}

	if issue.Status != models.ISSUE_STATUS_RESOLVED {
		now := time.Now()
		err := db.Model(&models.Issue{}).Where("id = ?", issue.ID).Updates(map[string]any{
			"status":      models.ISSUE_STATUS_RESOLVED,
			"resolved_at": &now,
		}).Error
		if err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
		issue.Status = models.ISSUE_STATUS_RESOLVED
		issue.ResolvedAt = &now
	}

	RespondSuccess(c, gin.H{"issue": issue})
}
