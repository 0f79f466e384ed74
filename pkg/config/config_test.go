package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setTerminalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Terminal.SalesmanID != "A" {
		t.Fatalf("unexpected salesman id %q", cfg.Terminal.SalesmanID)
	}
	if cfg.DB.Path != "terminal-a.db" {
		t.Fatalf("unexpected db path %q", cfg.DB.Path)
	}
	if got := cfg.DB.BusyTimeout; got != 5*time.Second {
		t.Fatalf("expected default busy timeout 5s, got %v", got)
	}
	if cfg.Security.MaintenanceKey == "" {
		t.Fatal("expected maintenance key default to be set")
	}
}

func TestLoad_SalesmanRequiresID(t *testing.T) {
	setTerminalEnv(t)
	t.Setenv("AVPOS_SALESMAN_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected salesman terminal without an id to return an error")
	}
}

func TestLoad_AdminNeedsNoSalesmanID(t *testing.T) {
	setTerminalEnv(t)
	t.Setenv("AVPOS_TERMINAL_ROLE", "admin")
	t.Setenv("AVPOS_SALESMAN_ID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Terminal.IsAdmin() {
		t.Fatalf("expected admin terminal, got role %q", cfg.Terminal.Role)
	}
}

func TestLoad_RejectsUnknownRole(t *testing.T) {
	setTerminalEnv(t)
	t.Setenv("AVPOS_TERMINAL_ROLE", "cashier")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown terminal role to return an error")
	}
}

func setTerminalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("AVPOS_APP_ENV", "prod")
	t.Setenv("AVPOS_APP_PORT", "8741")
	t.Setenv("AVPOS_TERMINAL_ROLE", "salesman")
	t.Setenv("AVPOS_SALESMAN_ID", "A")
	t.Setenv("AVPOS_DB_PATH", "terminal-a.db")
	t.Setenv("AVPOS_JWT_SECRET", "secret")
	t.Setenv("AVPOS_JWT_ISSUER", "avpos")
	t.Setenv("AVPOS_JWT_EXPIRATION_MINUTES", "60")
}

func TestDBConfigDSN(t *testing.T) {
	d := DBConfig{Path: "avpos.db", BusyTimeout: 5 * time.Second}
	if got := d.DSN(); got != "avpos.db?_busy_timeout=5000" {
		t.Fatalf("unexpected dsn %q", got)
	}

	bare := DBConfig{Path: "avpos.db"}
	if got := bare.DSN(); got != "avpos.db" {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
