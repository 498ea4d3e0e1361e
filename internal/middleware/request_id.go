package middleware

import (
	"regexp"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID é o header HTTP para request ID
	HeaderRequestID = "X-Request-ID"
	// HeaderTraceID é o header HTTP para trace ID (distributed tracing)
	HeaderTraceID = "X-Trace-ID"
)

// IDs recebidos de fora só são aceitos com este formato
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// probePaths são consultadas por balanceadores; o log de conclusão fica em debug
var probePaths = map[string]bool{"/health": true, "/metrics": true}

func incomingID(c *gin.Context, header string) string {
	id := c.GetHeader(header)
	if !validID.MatchString(id) {
		return ""
	}
	return id
}

// RequestID adiciona request_id e trace_id a cada requisição e registra o resultado
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Usa ID do header se válido, senão gera novo (8 chars)
		requestID := incomingID(c, HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}

		traceID := incomingID(c, HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		logger.Get(ctx).Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("Request started")

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		// O logger pode ter ganho o session_id durante a requisição
		log := logger.Get(c.Request.Context())
		logEvent := log.Info()
		if probePaths[c.Request.URL.Path] {
			logEvent = log.Debug()
		}
		if statusCode >= 400 {
			logEvent = log.Warn()
		}
		if statusCode >= 500 {
			logEvent = log.Error()
		}

		logEvent.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", statusCode).
			Int("size", c.Writer.Size()).
			Dur("latency", duration).
			Float64("latency_ms", float64(duration.Microseconds())/1000).
			Msg("Request completed")
	}
}
