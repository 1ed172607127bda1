package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/logger"
	"go.uber.org/zap"
)

// Health reports database and Redis reachability
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if err := h.pingDB(ctx); err != nil {
		logger.Log.Warn("Health check: database unreachable", zap.Error(err))
		status = http.StatusServiceUnavailable
		checks["database"] = "down"
	} else {
		checks["database"] = "ok"
	}

	if rc := h.k.Cache(); rc != nil {
		if err := rc.Ping(ctx); err != nil {
			logger.Log.Warn("Health check: redis unreachable", zap.Error(err))
			status = http.StatusServiceUnavailable
			checks["redis"] = "down"
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "disabled"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":              state,
		"timestamp":           time.Now().UTC(),
		"service":             "clipfeed",
		"pending_view_events": h.k.Views().Pending(),
		"checks":              checks,
	})
}

func (h *Handlers) pingDB(ctx context.Context) error {
	sqlDB, err := h.k.DB().DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
