package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck answers load balancer probes; no auth, no dependencies.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "vantage-backend"})
}
