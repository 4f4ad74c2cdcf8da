package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Clinic Management System API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// NotFound is the fallback for unmatched routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   "Route not found",
		"message": "Cannot " + c.Request.Method + " " + c.Request.URL.Path,
	})
}
