package config

import (
	"log/slog"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"COINFLIP_HTTP_ADDR", "PORT", "COINFLIP_CATALOG", "COINFLIP_STORE",
		"COINFLIP_DATA_DIR", "COINFLIP_SQLITE_PATH", "DATABASE_URL", "COINFLIP_LOG_LEVEL", "COINFLIP_SEED",
		"COINFLIP_MAX_SESSIONS", "COINFLIP_SESSION_TTL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Store != StoreFile || cfg.DataDir != "data" {
		t.Fatalf("%+v", cfg)
	}
	if cfg.SQLitePath != "data/coinflip.db" || cfg.LogLevel != slog.LevelInfo || cfg.Seed != nil {
		t.Fatalf("%+v", cfg)
	}
	if cfg.MaxSessions != 1000 || cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("session limits %d %v", cfg.MaxSessions, cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("COINFLIP_GRPC_ADDR", "")
	t.Setenv("COINFLIP_STORE", "SQLite")
	t.Setenv("COINFLIP_LOG_LEVEL", "debug")
	t.Setenv("COINFLIP_SEED", "42")
	t.Setenv("COINFLIP_MAX_SESSIONS", "0")
	t.Setenv("COINFLIP_SESSION_TTL", "90s")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":7000" || cfg.GRPCAddr != "" || cfg.Store != StoreSQLite {
		t.Fatalf("%+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.Seed == nil || *cfg.Seed != 42 {
		t.Fatalf("%+v", cfg)
	}
	if cfg.MaxSessions != 0 || cfg.SessionTTL != 90*time.Second {
		t.Fatalf("session limits %d %v", cfg.MaxSessions, cfg.SessionTTL)
	}
}

func TestDatabaseURLSelectsPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/coinflip")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store != StorePostgres {
		t.Fatalf("store %q", cfg.Store)
	}
}

func TestLoadErrors(t *testing.T) {
	for name, env := range map[string][2]string{
		"bad store":        {"COINFLIP_STORE", "redis"},
		"postgres no url":  {"COINFLIP_STORE", "postgres"},
		"bad level":        {"COINFLIP_LOG_LEVEL", "loud"},
		"bad seed":         {"COINFLIP_SEED", "-1"},
		"bad max sessions": {"COINFLIP_MAX_SESSIONS", "-5"},
		"bad session ttl":  {"COINFLIP_SESSION_TTL", "soon"},
	} {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(env[0], env[1])
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
