package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.Store.Backend != BackendJSON || cfg.Store.DataPath != "data/database.json" {
		t.Errorf("store: got %+v", cfg.Store)
	}
	if cfg.StaticDir != "public" {
		t.Errorf("static dir: got %q", cfg.StaticDir)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeout)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis should be disabled by default, got %q", cfg.Redis.Addr)
	}
	if cfg.JWTSecret != "" || cfg.IsProduction() {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":             "8080",
		"ENV":              "production",
		"STORE_BACKEND":    "sqlite",
		"SQLITE_PATH":      "/tmp/lib.db",
		"REDIS_ADDR":       "localhost:6379",
		"REDIS_DB":         "2",
		"SHUTDOWN_TIMEOUT": "3s",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || !cfg.IsProduction() {
		t.Errorf("unexpected server config: %+v", cfg)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.SQLitePath != "/tmp/lib.db" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"STORE_BACKEND": "csv"}))
	if err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
