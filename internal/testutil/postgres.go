// Package testutil holds shared fixtures for package tests: a throwaway
// PostgreSQL server and an in-process HTTP API client.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/storage/postgres"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresCreds = "catquest"
)

// PostgresDB is a migrated database inside a disposable container.
type PostgresDB struct {
	Pool   *postgres.Pool
	Config config.DatabaseConfig
}

// NewPostgresDB starts a PostgreSQL container, migrates it, and connects.
// The container and pool are released when the test ends.
//
// Precondition: Docker is reachable; otherwise, and under -short, the test is skipped.
// Postcondition: Returns a connected pool over the latest schema, or fails the test.
func NewPostgresDB(t *testing.T) *PostgresDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	start := time.Now()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresCreds,
				"POSTGRES_PASSWORD": postgresCreds,
				"POSTGRES_DB":       postgresCreds,
			},
			// The server restarts once after init; the second ready line is the real one.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("postgres container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("postgres container port: %v", err)
	}

	cfg := config.Defaults().Database
	cfg.Driver = config.DriverPostgres
	cfg.Host = host
	cfg.Port = port.Int()
	cfg.User = postgresCreds
	cfg.Password = postgresCreds
	cfg.Name = postgresCreds
	cfg.MaxConns = 5

	pool, err := postgres.Open(ctx, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("opening postgres store: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(pool.Close)

	t.Logf("postgres ready at %s:%d [%s]", host, cfg.Port, time.Since(start))
	return &PostgresDB{Pool: pool, Config: cfg}
}
