package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xtding233/coinflip/internal/catalog"
	"github.com/xtding233/coinflip/internal/config"
	"github.com/xtding233/coinflip/internal/httpapi"
	"github.com/xtding233/coinflip/internal/logging"
	"github.com/xtding233/coinflip/internal/progress"
	"github.com/xtding233/coinflip/internal/rpc"
	"github.com/xtding233/coinflip/internal/session"
	"github.com/xtding233/coinflip/internal/unlock"
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error running server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}
	log := logging.SetupJSON(cfg.LogLevel)

	cat, err := catalog.Load(cfg.CatalogPath, log)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer closeStore()

	var rng unlock.RandomSource
	if cfg.Seed != nil {
		rng = unlock.NewSeededRNG(unlock.DeriveSeed(*cfg.Seed, session.DefaultID))
		log.Warn("using seeded RNG", slog.Uint64("seed", *cfg.Seed))
	}

	opt := session.Options{RNG: rng, Logger: log, HeadsPath: cat.HeadsPath, TailsPath: cat.TailsPath, Seed: cfg.Seed}
	tracker := unlock.NewTracker(ctx, cat.Catalog, store, unlock.Options{RNG: rng, Logger: log})
	reg := session.NewLimitedRegistry(session.New(tracker, opt), session.MemoryFactory(cat.Catalog, opt),
		session.Limits{MaxSessions: cfg.MaxSessions, IdleTTL: cfg.SessionTTL})
	go reg.RunJanitor(ctx, time.Minute, log)

	srv := httpapi.NewServer(cfg.HTTPAddr, reg, log, cfg.ReadTimeout, cfg.WriteTimeout)
	errCh := make(chan error, 2)
	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", serr)
		}
	}()
	log.Info("HTTP API started", slog.String("addr", cfg.HTTPAddr))

	var stopGRPC func()
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		gs := rpc.NewGRPCServer(reg, log)
		go func() {
			if serr := gs.Serve(lis); serr != nil {
				errCh <- fmt.Errorf("grpc: %w", serr)
			}
		}()
		stopGRPC = gs.GracefulStop
		log.Info("gRPC API started", slog.String("addr", cfg.GRPCAddr))
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if stopGRPC != nil {
		stopGRPC()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("shutdown http: %w", err))
	}
	log.Info("server stopped")
	return runErr
}

// openStore returns the configured progress store and its cleanup.
func openStore(ctx context.Context, cfg *config.Config) (progress.Store, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case config.StoreMemory:
		return progress.NewMemoryStore(), noop, nil
	case config.StoreSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, noop, err
		}
		s, err := progress.NewSQLiteStore(cfg.SQLitePath, progress.Key)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorePostgres:
		db, err := progress.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := progress.Migrate(db); err != nil {
			closeDB(db)
			return nil, noop, err
		}
		return progress.NewPostgresStore(db, progress.Key), func() { closeDB(db) }, nil
	default:
		return progress.NewFileStore(cfg.DataDir, progress.Key), noop, nil
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Warn("close database", slog.Any("error", err))
	}
}
