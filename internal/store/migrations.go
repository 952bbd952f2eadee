package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

var gooseDialects = map[Backend]goose.Dialect{
	BackendPostgres: goose.DialectPostgres,
	BackendMySQL:    goose.DialectMySQL,
	BackendSQLite:   goose.DialectSQLite3,
}

// Migrate applies the embedded migrations for backend to db.
func Migrate(ctx context.Context, db *sql.DB, backend Backend) error {
	dialect, ok := gooseDialects[backend]
	if !ok {
		return fmt.Errorf("no migrations for backend %q", backend)
	}

	fsys, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return fmt.Errorf("locating %s migrations: %w", backend, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("migration applied", "backend", backend, "version", r.Source.Version, "duration", r.Duration)
	}

	return nil
}
