package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/database"
	"github.com/Bristo123/smart-task-analyser/internal/metrics"
	"github.com/Bristo123/smart-task-analyser/internal/websocket"
	"github.com/gin-gonic/gin"
)

// maxWSConnections is the connection count above which websocket health degrades
const maxWSConnections = 500

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	db        *sql.DB
	wsHub     *websocket.Hub
	sessions  interface{ Size() int }
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. db is nil when history is disabled.
func NewHealthHandler(db *sql.DB, wsHub *websocket.Hub, sessions interface{ Size() int }, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		wsHub:     wsHub,
		sessions:  sessions,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthCheck returns the status of the history database, the analysis backend and the websocket hub
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"database":  metrics.CheckDatabaseHealth(h.db),
		"analysis":  metrics.Get().CheckAnalysisHealth(),
		"websocket": h.checkWebSocketHealth(),
	}

	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// checkWebSocketHealth checks WebSocket hub health
func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	if h.wsHub == nil {
		return metrics.HealthStatus{
			Status:  "unhealthy",
			Message: "WebSocket hub not initialized",
		}
	}

	if h.wsHub.GetConnectionCount() > maxWSConnections {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "WebSocket connections near limit",
		}
	}

	return metrics.HealthStatus{Status: "healthy"}
}

// GetMetrics returns application metrics
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	response := gin.H{
		"metrics": metrics.Get().Snapshot(),
		"version": h.version,
	}
	if h.sessions != nil {
		response["sessions"] = h.sessions.Size()
	}
	if h.db != nil {
		response["database_pool"] = database.GetPoolStats(h.db)
	}

	c.JSON(http.StatusOK, response)
}
