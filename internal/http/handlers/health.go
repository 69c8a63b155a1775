package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/services"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports on one dependency; a nil error means healthy.
type HealthCheck struct {
	Name string
	Run  func(ctx context.Context) error
}

type HealthHandler struct {
	studio services.StudioService
	checks []HealthCheck
}

func NewHealthHandler(studio services.StudioService, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{studio: studio, checks: checks}
}

// GET /healthcheck
// 200 when every check passes, 503 otherwise. Live studio sessions are held in
// memory, so their count is reported for drain decisions.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	results := make(map[string]string, len(h.checks))
	healthy := true
	for _, chk := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		err := chk.Run(ctx)
		cancel()
		if err != nil {
			healthy = false
			results[chk.Name] = err.Error()
			continue
		}
		results[chk.Name] = "ok"
	}

	body := gin.H{"status": "ok", "checks": results}
	if h.studio != nil {
		body["activeSessions"] = h.studio.ActiveSessions()
	}
	if !healthy {
		body["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
