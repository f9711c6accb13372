// Package migrations embeds the forward-only schema migrations for every
// supported database driver and applies them with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/config"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Status is the schema version after a migration run.
type Status struct {
	Version uint
	Dirty   bool
	Changed bool
}

// DatabaseURL returns the golang-migrate URL for cfg.
//
// Postcondition: Returns an error for unknown drivers.
func DatabaseURL(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return "sqlite://" + cfg.SQLitePath, nil
	case config.DriverPostgres:
		return "pgx5://" + strings.TrimPrefix(cfg.DSN(), "postgres://"), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func newMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	url, err := DatabaseURL(cfg)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(files, cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("opening embedded %s migrations: %w", cfg.Driver, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

// Up applies every pending migration. Migrations only move forward.
//
// Precondition: the database described by cfg is reachable; for sqlite the
// parent directory of SQLitePath exists.
// Postcondition: Returns the resulting schema status or a non-nil error.
func Up(cfg config.DatabaseConfig, logger *zap.Logger) (Status, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return Status{}, err
	}
	defer m.Close()

	changed := true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return Status{}, fmt.Errorf("applying migrations: %w", err)
		}
		changed = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	st := Status{Version: version, Dirty: dirty, Changed: changed}
	logger.Info("schema migrated",
		zap.String("driver", cfg.Driver),
		zap.Uint("version", st.Version),
		zap.Bool("dirty", st.Dirty),
		zap.Bool("changed", st.Changed),
	)
	return st, nil
}

// Latest returns the highest migration version embedded for driver.
func Latest(driver string) (uint, error) {
	src, err := iofs.New(files, driver)
	if err != nil {
		return 0, fmt.Errorf("opening embedded %s migrations: %w", driver, err)
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("reading first migration: %w", err)
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}
