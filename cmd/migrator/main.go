package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/xtding233/coinflip/internal/config"
	"github.com/xtding233/coinflip/internal/logging"
	"github.com/xtding233/coinflip/internal/progress"
)

func main() {
	_ = godotenv.Load(".env")

	err := migrateAll(context.Background())
	if err != nil {
		slog.Error("migration run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("migration run finished successfully")
}

func migrateAll(ctx context.Context) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	level, err := config.ParseLevel(os.Getenv("COINFLIP_LOG_LEVEL"))
	if err != nil {
		return err
	}
	logging.SetupJSON(level)

	db, err := progress.OpenPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer db.Close()

	if err := progress.Migrate(db); err != nil {
		return fmt.Errorf("base migrations failed: %w", err)
	}
	slog.Info("base migrations applied")
	return nil
}
