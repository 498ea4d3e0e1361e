package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ANALYZER_BASE_URL", "PORT", "GIN_MODE", "LOG_LEVEL", "LOG_JSON",
		"REQUEST_TIMEOUT", "REANALYZE_DELAY", "FEEDBACK_COOLDOWN", "SESSION_TTL",
		"CORS_ORIGINS", "COOKIE_SECURE", "DB_HOST",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AnalyzerBaseURL != DefaultAnalyzerURL {
		t.Errorf("AnalyzerBaseURL = %q", cfg.AnalyzerBaseURL)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ReanalyzeDelay != 300*time.Millisecond {
		t.Errorf("ReanalyzeDelay = %v", cfg.ReanalyzeDelay)
	}
	if cfg.FeedbackCooldown != 600*time.Millisecond {
		t.Errorf("FeedbackCooldown = %v", cfg.FeedbackCooldown)
	}
	if cfg.Database != nil {
		t.Error("Database should be nil without DB_HOST")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANALYZER_BASE_URL", "http://localhost:8000/")
	t.Setenv("REANALYZE_DELAY", "1s")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "history")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AnalyzerBaseURL != "http://localhost:8000" {
		t.Errorf("AnalyzerBaseURL = %q", cfg.AnalyzerBaseURL)
	}
	if cfg.ReanalyzeDelay != time.Second {
		t.Errorf("ReanalyzeDelay = %v", cfg.ReanalyzeDelay)
	}
	if !cfg.LogJSON {
		t.Error("LogJSON should be true")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.Database == nil || cfg.Database.Host != "db" || cfg.Database.DBName != "history" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("FEEDBACK_COOLDOWN", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
