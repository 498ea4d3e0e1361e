package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start).Milliseconds()
		statusCode := c.Writer.Status()

		metrics.Get().IncrementRequests(statusCode < 400, latency)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.Get().TrackEndpoint(path, c.Request.Method, statusCode, latency)
	}
}

// auditRoutes maps state-changing paths to the action recorded for them
var auditRoutes = []struct {
	prefix string
	action logger.AuditAction
}{
	{"/tasks", logger.AuditActionTaskAdd},
	{"/analyze", logger.AuditActionAnalyze},
	{"/feedback", logger.AuditActionFeedback},
	{"/api/session/tasks", logger.AuditActionTaskAdd},
	{"/api/session/analyze", logger.AuditActionAnalyze},
	{"/api/session/feedback", logger.AuditActionFeedback},
	{"/export.xlsx", logger.AuditActionExport},
}

func auditActionFor(method, path string) (logger.AuditAction, bool) {
	for _, r := range auditRoutes {
		if !strings.HasPrefix(path, r.prefix) {
			continue
		}
		if r.action == logger.AuditActionExport {
			return r.action, method == http.MethodGet
		}
		return r.action, method == http.MethodPost
	}
	return "", false
}

// AuditMiddleware logs audit events for page actions
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		action, audited := auditActionFor(c.Request.Method, c.Request.URL.Path)

		c.Next()

		if !audited {
			return
		}

		logger.AuditRequest(
			c.Request.Context(),
			action,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
			c.ClientIP(),
		)
	}
}
