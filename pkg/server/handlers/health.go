package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jurisgraph/jurisgraph"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client *jurisgraph.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client *jurisgraph.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "jurisgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready - verifies the source store answers.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	allHealthy := true

	start := time.Now()
	if err := h.client.Store().Ping(ctx); err != nil {
		checks["elasticsearch"] = gin.H{
			"status":   "unhealthy",
			"error":    err.Error(),
			"duration": time.Since(start).String(),
		}
		allHealthy = false
	} else {
		checks["elasticsearch"] = gin.H{
			"status":   "healthy",
			"duration": time.Since(start).String(),
		}
	}

	response := gin.H{
		"status":    "ready",
		"service":   "jurisgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}
	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "jurisgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
