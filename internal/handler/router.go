package handler

import (
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/middleware"
	"github.com/Bristo123/smart-task-analyser/internal/service"
	"github.com/gin-gonic/gin"
)

// RouterConfig reúne os handlers e middlewares montados por NewRouter
type RouterConfig struct {
	Page      *PageHandler
	API       *APIHandler
	Health    *HealthHandler
	WebSocket *WebSocketHandler

	Sessions     *service.SessionStore
	CSRF         *middleware.CSRFMiddleware
	SessionTTL   time.Duration
	CookieSecure bool
	CORSOrigins  []string
}

// NewRouter monta as rotas da página, da API JSON, do websocket e de operação
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORS("/api/", cfg.CORSOrigins))

	// Operação (sem sessão)
	r.GET("/health", cfg.Health.HealthCheck)
	r.GET("/metrics", cfg.Health.GetMetrics)

	app := r.Group("/")
	app.Use(middleware.Session(cfg.Sessions, middleware.SessionConfig{
		TTL:          cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
	}))
	app.Use(cfg.CSRF.RequireCSRF())
	app.Use(middleware.AuditMiddleware())
	{
		app.GET("/", cfg.Page.Index)
		app.POST("/tasks", cfg.Page.AddTask)
		app.POST("/analyze", cfg.Page.Analyze)
		app.POST("/feedback", cfg.Page.Feedback)
		app.GET("/export.xlsx", cfg.Page.Export)

		app.GET("/ws", cfg.WebSocket.HandleConnection)

		api := app.Group("/api")
		{
			api.POST("/session/tasks", cfg.API.AddTask)
			api.POST("/session/analyze", cfg.API.Analyze)
			api.POST("/session/feedback", cfg.API.Feedback)
			api.GET("/session/view", cfg.API.View)
			api.GET("/session/history", cfg.API.History)
			api.GET("/session/ws", cfg.WebSocket.GetConnectionStats)
			api.GET("/suggestions", cfg.API.Suggestions)
		}
	}

	return r, nil
}
