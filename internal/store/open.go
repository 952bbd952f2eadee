package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Options selects and locates the storage backend.
type Options struct {
	// DatabaseURL selects a relational server: postgres://, postgresql:// or mysql://.
	DatabaseURL string
	// SQLitePath selects the embedded engine when DatabaseURL is empty.
	SQLitePath string
	// JSONPath is the flat-file fallback used when both of the above are empty.
	JSONPath string
}

// Open picks a backend once, in order of preference: relational server,
// embedded SQLite file, JSON file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch {
	case opts.DatabaseURL != "":
		return openRelational(ctx, opts.DatabaseURL)
	case opts.SQLitePath != "":
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("using embedded sqlite store", "path", opts.SQLitePath)
		return s, nil
	default:
		s, err := OpenJSONFile(opts.JSONPath)
		if err != nil {
			return nil, err
		}
		slog.Warn("no database configured; using JSON file store for development", "path", opts.JSONPath)
		return s, nil
	}
}

func openRelational(ctx context.Context, databaseURL string) (Store, error) {
	scheme, _, _ := strings.Cut(databaseURL, "://")
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		s, err := OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("using postgres store")
		return s, nil
	case "mysql":
		s, err := OpenMySQL(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("using mysql store")
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme %q", scheme)
	}
}
