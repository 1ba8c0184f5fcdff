package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health reports liveness and whether the database answers a ping.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := "up"
	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.Warn("database ping failed", zap.Error(err))
		database = "down"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.Now().UTC().Format(time.RFC3339),
		"database":  database,
	})
}
