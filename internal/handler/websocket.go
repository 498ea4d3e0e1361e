package handler

import (
	"net/http"

	"github.com/Bristo123/smart-task-analyser/internal/middleware"
	"github.com/Bristo123/smart-task-analyser/internal/websocket"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler handles WebSocket-related HTTP requests
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// HandleConnection upgrades the request and subscribes it to the browser session's pushes
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	sessionID := ""
	if sess := middleware.CurrentSession(c); sess != nil {
		sessionID = sess.ID()
	}
	h.hub.ServeWS(c, sessionID)
}

// GetConnectionStats returns WebSocket connection statistics for the current session
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	connectionCount := h.hub.GetSessionConnectionCount(sess.ID())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_connections":   h.hub.GetConnectionCount(),
			"session_connections": connectionCount,
			"is_connected":        connectionCount > 0,
		},
	})
}
