// File: controllers/health_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health is a liveness probe for load balancers and uptime checks.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
