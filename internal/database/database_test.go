package database

import (
	"strings"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Host: "localhost", Port: "5432"}.withDefaults()

	if cfg.MaxOpenConns != 10 || cfg.MaxIdleConns != 5 {
		t.Errorf("pool defaults = %d/%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != 5*time.Minute || cfg.ConnMaxIdleTime != 2*time.Minute {
		t.Errorf("lifetime defaults = %v/%v", cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("sslmode = %q", cfg.SSLMode)
	}

	kept := Config{MaxOpenConns: 3, SSLMode: "require"}.withDefaults()
	if kept.MaxOpenConns != 3 || kept.SSLMode != "require" {
		t.Errorf("explicit values overwritten: %+v", kept)
	}
}

func TestDSN(t *testing.T) {
	dsn := Config{
		Host: "db", Port: "5433", User: "u", Password: "p", DBName: "hist", SSLMode: "disable",
	}.DSN()

	for _, part := range []string{"host=db", "port=5433", "user=u", "password=p", "dbname=hist", "sslmode=disable", "application_name=" + ApplicationName} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn %q missing %q", dsn, part)
		}
	}
}

func TestCloseNil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v", err)
	}
}
