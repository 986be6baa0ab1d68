package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Type != "sqlite" {
		t.Errorf("expected sqlite store, got %q", cfg.Store.Type)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("expected 30m session ttl, got %s", cfg.Session.TTL)
	}
	if cfg.App.NotificationCapacity != 50 {
		t.Errorf("expected capacity 50, got %d", cfg.App.NotificationCapacity)
	}
	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("unexpected address %q", cfg.Server.Address())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASS", "secret")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.TTL != 5*time.Minute {
		t.Errorf("unexpected ttl %s", cfg.Session.TTL)
	}
	want := "postgres://concerthub:secret@db:5432/concerthub?sslmode=disable"
	if got := cfg.SQL.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}
	if got := cfg.SQL.MySQLDSN(); got != "concerthub:secret@tcp(db:3306)/concerthub?parseTime=true" {
		t.Errorf("unexpected MySQLDSN %q", got)
	}
}

func TestLoadRejectsZeroCapacity(t *testing.T) {
	t.Setenv("NOTIFICATION_CAPACITY", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero capacity")
	}
}
