package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/game/combat"
	"github.com/cory-johannsen/catquest/internal/game/progression"
	"github.com/cory-johannsen/catquest/internal/gameserver"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "catquest.db")
	cfg.Logging.Level = "warn"
	cfg.Content = config.ContentConfig{
		Breeds:   "../../content/breeds.json",
		Dungeons: "../../content/dungeons.yaml",
		Monsters: "../../content/monsters.json",
	}
	return cfg
}

func TestInitializeApp_SQLite(t *testing.T) {
	ctx := context.Background()
	app, cleanup, err := initializeApp(ctx, testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, config.DriverSQLite, app.Store.Driver())
	assert.Nil(t, app.Notifier)
	assert.NotEmpty(t, app.Catalog.Breeds())

	u, screen, err := app.Profile.Welcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, "プレイヤー", u.Name)
	assert.Equal(t, gameserver.ScreenBreedSelection, screen)

	started, err := app.Combat.StartBattle(ctx, "first_cave", "")
	require.NoError(t, err)
	assert.Equal(t, 1, app.Combat.Active())
	assert.NotEmpty(t, started.ID)
}

func TestInitializeApp_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Notify.RedisAddr = mr.Addr()

	app, cleanup, err := initializeApp(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, app.Notifier)
	assert.NotEmpty(t, app.Notifier.Source())
}

func TestInitializeApp_UnreachableRedisFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notify.RedisAddr = "127.0.0.1:1"
	_, _, err := initializeApp(context.Background(), cfg)
	require.Error(t, err)
}

func TestProvidePublisher_NilNotifierIsNilInterface(t *testing.T) {
	assert.Nil(t, providePublisher(nil))
}

func TestProvideCombatOptions(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := config.Defaults()
	cfg.Game.FleeChancePercent = 30
	cfg.Game.DefendMitigates = true

	table, err := provideProgression(cfg)
	require.NoError(t, err)
	assert.Equal(t, progression.Default().MaxLevel(), table.MaxLevel(), "empty table uses the built-in progression")

	opts := provideCombatOptions(cfg, table, logger)
	assert.Equal(t, 30, opts.FleeChancePercent)
	assert.True(t, opts.DefendMitigates)
	assert.Same(t, table, opts.Table)
	assert.Equal(t, combat.LanguageEnglish, opts.Language)

	cfg.Game.Language = "ja"
	assert.Equal(t, combat.LanguageJapanese, provideCombatOptions(cfg, table, logger).Language)

	cfg.Game.ExperienceTable = []int{0, 10, 30}
	table, err = provideProgression(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, table.MaxLevel())

	cfg.Game.ExperienceTable = []int{0, 10, 5}
	_, err = provideProgression(cfg)
	assert.Error(t, err)
}

func TestUserShow(t *testing.T) {
	t.Setenv("CATQUEST_DATABASE_SQLITE_PATH", filepath.Join(t.TempDir(), "catquest.db"))
	t.Setenv("CATQUEST_LOGGING_LEVEL", "warn")

	var out bytes.Buffer
	userShowCmd.SetOut(&out)
	userShowCmd.SetContext(context.Background())
	require.NoError(t, userShowCmd.RunE(userShowCmd, nil))
	assert.Contains(t, out.String(), "No users yet.")
}

func TestColorTerminal_RespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorTerminal(os.Stdout))
}
