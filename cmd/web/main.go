package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/client"
	"github.com/Bristo123/smart-task-analyser/internal/config"
	"github.com/Bristo123/smart-task-analyser/internal/database"
	"github.com/Bristo123/smart-task-analyser/internal/handler"
	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/metrics"
	"github.com/Bristo123/smart-task-analyser/internal/middleware"
	"github.com/Bristo123/smart-task-analyser/internal/migration"
	"github.com/Bristo123/smart-task-analyser/internal/repository"
	"github.com/Bristo123/smart-task-analyser/internal/service"
	"github.com/Bristo123/smart-task-analyser/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	logger.InitAudit()
	metrics.Init()
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("analyzer", cfg.AnalyzerBaseURL).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Msg("Smart Task Analyzer iniciando")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Histórico opcional no PostgreSQL
	var db *sql.DB
	var history service.HistoryRecorder
	var historyLister handler.HistoryLister
	if cfg.Database != nil {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err = database.Connect(connectCtx, *cfg.Database)
		if err == nil {
			err = migration.NewMigrator(db).Run(connectCtx)
		}
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Erro ao preparar o banco de histórico")
		}
		defer database.Close(db)

		repo := repository.NewHistoryRepository(db)
		history = repo
		historyLister = repo
	} else {
		log.Info().Msg("DB_HOST não configurado: histórico desabilitado")
	}

	// WebSocket hub
	websocket.SetAllowedOrigins(cfg.CORSOrigins)
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Sessões e serviços
	sessions := service.NewSessionStore(cfg.SessionTTL)
	defer sessions.Stop()

	analyzer := client.NewClient(cfg.AnalyzerBaseURL, cfg.RequestTimeout)
	analysis := service.NewAnalysisService(analyzer, hub, history)
	feedback := service.NewFeedbackService(analyzer, analysis, hub, history, cfg.ReanalyzeDelay, cfg.FeedbackCooldown)

	csrf := middleware.NewCSRFMiddleware(middleware.CSRFConfig{TokenDuration: cfg.SessionTTL})
	go cleanupCSRFTokens(ctx, csrf, cfg.SessionTTL)

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	router, err := handler.NewRouter(handler.RouterConfig{
		Page:         handler.NewPageHandler(analysis, feedback, service.NewResultsExporter()),
		API:          handler.NewAPIHandler(analysis, feedback, analyzer, historyLister),
		Health:       handler.NewHealthHandler(db, hub, sessions, Version),
		WebSocket:    handler.NewWebSocketHandler(hub),
		Sessions:     sessions,
		CSRF:         csrf,
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
		CORSOrigins:  cfg.CORSOrigins,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao montar rotas")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("Erro ao iniciar servidor")
		return
	case <-ctx.Done():
		log.Info().Msg("Sinal recebido, encerrando servidor")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro ao encerrar servidor")
		return
	}
	log.Info().Msg("Servidor encerrado")
}

// cleanupCSRFTokens remove tokens expirados até ctx terminar
func cleanupCSRFTokens(ctx context.Context, csrf *middleware.CSRFMiddleware, every time.Duration) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			csrf.CleanupExpiredTokens()
		}
	}
}
