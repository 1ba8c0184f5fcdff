package handler

import (
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/feed"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.FrontendURL
		},
	}
}

// ServeFeed upgrades the connection and subscribes it to complaint events.
func (h *Handler) ServeFeed(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, message("Access denied. No token provided."))
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := feed.NewWebSocketClient(h.Hub, conn, identity.ID, identity.Role, h.Logger)
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}
	client.Run()
}
