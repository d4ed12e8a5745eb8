package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"surveydq/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	runs port.RunRepository
}

// NewHealthHandler creates a new HealthHandler. runs may be nil when history is disabled.
func NewHealthHandler(runs port.RunRepository) *HealthHandler {
	return &HealthHandler{runs: runs}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.runs != nil {
		if err := h.runs.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
