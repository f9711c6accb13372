package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/storage"
	"github.com/cory-johannsen/catquest/internal/testutil"
	"github.com/cory-johannsen/catquest/internal/user"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "cq.db")}
	st, err := storage.Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	assert.Equal(t, config.DriverSQLite, st.Driver())
	assert.NoError(t, st.Health(ctx, time.Second))

	u, err := st.Users.Create(ctx, user.DefaultFields("p"))
	require.NoError(t, err)
	require.NoError(t, st.Reports.Create(ctx, &report.Report{UserID: u.ID, DungeonID: "first_cave", Enemy: "Goblin", Result: "victory"}))
	list, err := st.Monsters.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), config.DatabaseConfig{Driver: "mysql"}, zap.NewNop())
	assert.ErrorContains(t, err, "mysql")
}

func TestOpen_Postgres(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewPostgresDB(t)

	st, err := storage.Open(ctx, db.Config, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	assert.Equal(t, config.DriverPostgres, st.Driver())
	assert.NoError(t, st.Health(ctx, 2*time.Second))
	_, err = st.Users.Current(ctx)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
