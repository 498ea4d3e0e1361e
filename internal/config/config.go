package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/database"
	"github.com/joho/godotenv"
)

// DefaultAnalyzerURL é o backend de análise publicado
const DefaultAnalyzerURL = "https://smart-task-analyser.onrender.com"

// Config armazena as configurações da aplicação
type Config struct {
	AnalyzerBaseURL  string
	Port             string
	GinMode          string
	LogLevel         string
	LogJSON          bool
	RequestTimeout   time.Duration
	ReanalyzeDelay   time.Duration
	FeedbackCooldown time.Duration
	SessionTTL       time.Duration
	CORSOrigins      []string
	CookieSecure     bool
	// Database é nil quando DB_HOST não está configurado (histórico desabilitado)
	Database *database.Config
}

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AnalyzerBaseURL: strings.TrimRight(getEnv("ANALYZER_BASE_URL", DefaultAnalyzerURL), "/"),
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.LogJSON, err = getBool("LOG_JSON", false); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReanalyzeDelay, err = getDuration("REANALYZE_DELAY", 300*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.FeedbackCooldown, err = getDuration("FEEDBACK_COOLDOWN", 600*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database = &database.Config{
			Host:     host,
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "task_analyser"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s inválido: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s inválido: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s não pode ser negativo", key)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
