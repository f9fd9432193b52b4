package progress

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// OpenPostgres opens and pings a pgx-backed *sql.DB.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Migrate applies the embedded schema migrations. Already-applied schemas are
// not an error.
func Migrate(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init postgres driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	return nil
}

// PostgresStore keeps the blob as JSONB in progress_snapshots.
type PostgresStore struct {
	db  *sql.DB
	key string
}

// NewPostgresStore expects the schema to be migrated already.
func NewPostgresStore(db *sql.DB, key string) *PostgresStore {
	if key == "" {
		key = Key
	}
	return &PostgresStore{db: db, key: key}
}

const (
	selectSnapshotQuery = `SELECT value FROM progress_snapshots WHERE key = $1`
	upsertSnapshotQuery = `
INSERT INTO progress_snapshots (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

func (p *PostgresStore) Load(ctx context.Context) (*State, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx, selectSnapshotQuery, p.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	return Decode(value)
}

func (p *PostgresStore) Save(ctx context.Context, s *State) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, upsertSnapshotQuery, p.key, string(b))
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}
