package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

type readinessChecker interface {
	Ready(ctx context.Context) models.HealthReport
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	service string
	checker readinessChecker
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(service string, checker readinessChecker) *HealthHandler {
	return &HealthHandler{service: service, checker: checker}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.service, "time": time.Now().UTC()})
}

// Ready godoc
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthReport
// @Failure 503 {object} models.HealthReport
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusOK, gin.H{"status": models.ComponentUp})
		return
	}
	report := h.checker.Ready(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
