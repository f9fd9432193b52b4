package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	HTTPAddr     string
	GRPCAddr     string // empty disables gRPC
	CatalogPath  string
	Store        string
	DataDir      string
	SQLitePath   string
	DatabaseURL  string
	LogLevel     slog.Level
	Seed         *uint64 // nil uses the crypto RNG
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxSessions  int           // ephemeral sessions; 0 is unlimited
	SessionTTL   time.Duration // idle eviction; 0 keeps sessions forever
}

func Load() (*Config, error) {
	httpAddr := os.Getenv("COINFLIP_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	// PORT wins on hosted platforms
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			httpAddr = fmt.Sprintf(":%d", v)
		}
	}
	grpcAddr, ok := os.LookupEnv("COINFLIP_GRPC_ADDR")
	if !ok {
		grpcAddr = ":9090"
	}
	catalogPath := os.Getenv("COINFLIP_CATALOG")
	if catalogPath == "" {
		catalogPath = "configs/catalog.yaml"
	}
	dataDir := os.Getenv("COINFLIP_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	sqlitePath := os.Getenv("COINFLIP_SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = dataDir + "/coinflip.db"
	}
	databaseURL := os.Getenv("DATABASE_URL")

	store := strings.ToLower(os.Getenv("COINFLIP_STORE"))
	switch store {
	case "":
		store = StoreFile
		if databaseURL != "" {
			store = StorePostgres
		}
	case StoreFile, StoreSQLite, StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("COINFLIP_STORE %q: want file, sqlite, postgres or memory", store)
	}
	if store == StorePostgres && databaseURL == "" {
		return nil, fmt.Errorf("COINFLIP_STORE=postgres needs DATABASE_URL")
	}

	level, err := ParseLevel(os.Getenv("COINFLIP_LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	var seed *uint64
	if s := os.Getenv("COINFLIP_SEED"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("COINFLIP_SEED: %w", err)
		}
		seed = &v
	}

	maxSessions := 1000
	if s := os.Getenv("COINFLIP_MAX_SESSIONS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("COINFLIP_MAX_SESSIONS %q: want a non-negative integer", s)
		}
		maxSessions = v
	}
	sessionTTL := 30 * time.Minute
	if s := os.Getenv("COINFLIP_SESSION_TTL"); s != "" {
		v, err := time.ParseDuration(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("COINFLIP_SESSION_TTL %q: want a non-negative duration", s)
		}
		sessionTTL = v
	}

	return &Config{
		HTTPAddr:     httpAddr,
		GRPCAddr:     grpcAddr,
		CatalogPath:  catalogPath,
		Store:        store,
		DataDir:      dataDir,
		SQLitePath:   sqlitePath,
		DatabaseURL:  databaseURL,
		LogLevel:     level,
		Seed:         seed,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		MaxSessions:  maxSessions,
		SessionTTL:   sessionTTL,
	}, nil
}

// ParseLevel accepts debug, info, warn or error; empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("COINFLIP_LOG_LEVEL: %w", err)
	}
	return l, nil
}
