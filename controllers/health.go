package controllers

import (
	"net/http"

	dbpkg "otis/db"

	"github.com/gin-gonic/gin"
)

// GET /health reports liveness: the process is up.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /ready reports readiness: the database dependency is reachable.
func Ready(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": "db not configured"})
		return
	}
	if err := db.DB().Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
