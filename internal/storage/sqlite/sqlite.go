// Package sqlite provides the embedded SQLite store using modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/storage/migrations"
)

var initStatements = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

// DB wraps the SQLite handle with health-check and lifecycle methods.
type DB struct {
	db *sql.DB
}

// Open creates the database file if needed, applies pending migrations,
// and returns a ready DB.
//
// Precondition: cfg.Driver == "sqlite" and cfg.SQLitePath is non-empty.
// Postcondition: Returns a migrated DB or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	if _, err := migrations.Up(cfg, logger); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// A single connection keeps the PRAGMAs in force and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range initStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}
	logger.Info("sqlite store opened", zap.String("path", cfg.SQLitePath))
	return &DB{db: db}, nil
}

// Health checks that the database answers within timeout.
func (d *DB) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// SQL returns the underlying handle for repositories.
func (d *DB) SQL() *sql.DB {
	return d.db
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
