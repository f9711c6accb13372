// Package storage selects and opens the relational store named by configuration.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/storage/postgres"
	"github.com/cory-johannsen/catquest/internal/storage/sqlite"
	"github.com/cory-johannsen/catquest/internal/user"
)

// Store groups the repositories of one backing database.
type Store struct {
	Users    user.Repository
	Monsters content.MonsterStore
	Reports  report.Repository

	driver string
	health func(context.Context, time.Duration) error
	close  func() error
}

// Open migrates and connects the database selected by cfg.Driver.
//
// Precondition: cfg must have passed config validation.
// Postcondition: Returns a Store whose repositories share one connection, or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return &Store{
			Users:    sqlite.NewUserRepository(db),
			Monsters: sqlite.NewMonsterRepository(db),
			Reports:  sqlite.NewReportRepository(db),
			driver:   cfg.Driver,
			health:   db.Health,
			close:    db.Close,
		}, nil
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return &Store{
			Users:    postgres.NewUserRepository(pool.DB()),
			Monsters: postgres.NewMonsterRepository(pool.DB()),
			Reports:  postgres.NewReportRepository(pool.DB()),
			driver:   cfg.Driver,
			health:   pool.Health,
			close:    func() error { pool.Close(); return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Driver names the backing database.
func (s *Store) Driver() string { return s.driver }

// Health checks that the database answers within timeout.
func (s *Store) Health(ctx context.Context, timeout time.Duration) error {
	return s.health(ctx, timeout)
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.close()
}
