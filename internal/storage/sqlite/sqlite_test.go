package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/storage/sqlite"
	"github.com/cory-johannsen/catquest/internal/user"
)

var (
	_ user.Repository      = (*sqlite.UserRepository)(nil)
	_ content.MonsterStore = (*sqlite.MonsterRepository)(nil)
	_ report.Repository    = (*sqlite.ReportRepository)(nil)
)

func openDB(t *testing.T) *sqlite.DB {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "nested", "catquest.db"),
	}
	db, err := sqlite.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_Health(t *testing.T) {
	db := openDB(t)
	assert.NoError(t, db.Health(context.Background(), time.Second))
}

func TestUserRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewUserRepository(openDB(t))

	_, err := repo.Current(ctx)
	require.ErrorIs(t, err, user.ErrNotFound)

	created, err := repo.Create(ctx, user.DefaultFields("プレイヤー"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	cur, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, *created, *cur)
	assert.Equal(t, "null", cur.Breed)

	require.NoError(t, repo.UpdateBreed(ctx, cur.ID, "Mike"))
	cur.Name = "Sawa"
	cur.Breed = "Mike"
	cur.Level = 3
	cur.ExperiencePoints = 55
	cur.CatCoins = 12
	require.NoError(t, repo.Update(ctx, cur))

	got, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, *cur, *got)
}

func TestUserRepository_MissingRow(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewUserRepository(openDB(t))
	assert.ErrorIs(t, repo.UpdateBreed(ctx, 42, "Mike"), user.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &user.User{ID: 42, Level: 1}), user.ErrNotFound)
}

func TestUserRepository_CurrentIsLowestID(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewUserRepository(openDB(t))
	first, err := repo.Create(ctx, user.DefaultFields("first"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, user.DefaultFields("second"))
	require.NoError(t, err)

	cur, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, cur.ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[1].Name)
}

func TestUserRepository_RejectsNegativeCoins(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewUserRepository(openDB(t))
	u, err := repo.Create(ctx, user.DefaultFields("p"))
	require.NoError(t, err)
	u.CatCoins = -1
	assert.Error(t, repo.Update(ctx, u))
}

func TestUserRepository_ServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	svc := user.NewService(sqlite.NewUserRepository(db), nil, "プレイヤー", zap.NewNop())
	_, err := svc.LoadOrCreate(ctx)
	require.NoError(t, err)
	_, err = svc.ApplyOutcome(ctx, user.Outcome{ExperienceGained: 30, CoinsGained: 5})
	require.NoError(t, err)

	fresh := user.NewService(sqlite.NewUserRepository(db), nil, "プレイヤー", zap.NewNop())
	u, err := fresh.LoadOrCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, u.Level)
	assert.Equal(t, 30, u.ExperiencePoints)
	assert.Equal(t, 5, u.CatCoins)
}

func TestMonsterRepository_UpsertListGet(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewMonsterRepository(openDB(t))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.UpsertAll(ctx, []content.Monster{
		content.Goblin,
		{ID: 2, Name: "Slime", HP: 30, Attack: 5, Experience: 6, Gold: 3},
	}))
	changed := content.Goblin
	changed.HP = 45
	require.NoError(t, repo.UpsertAll(ctx, []content.Monster{changed}))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 45, list[0].HP)

	m, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Slime", m.Name)

	_, err = repo.Get(ctx, 99)
	assert.ErrorIs(t, err, content.ErrMonsterNotFound)
}

func TestSyncMonsters_FromShippedContent(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewMonsterRepository(openDB(t))
	monsters, err := content.LoadMonsters(filepath.Join("..", "..", "..", "content", "monsters.json"))
	require.NoError(t, err)
	cat := content.NewCatalog(nil, nil, monsters, zap.NewNop())

	require.NoError(t, content.SyncMonsters(ctx, cat, repo))
	stored, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, monsters, stored)
}

func TestReportRepository_CreateAndListRecent(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	u, err := sqlite.NewUserRepository(db).Create(ctx, user.DefaultFields("p"))
	require.NoError(t, err)
	repo := sqlite.NewReportRepository(db)

	for i := 0; i < 3; i++ {
		rep := &report.Report{UserID: u.ID, DungeonID: "first_cave", Enemy: "Goblin", Result: "victory", ExperienceGained: 10, CoinsGained: 5, Turns: i + 1}
		require.NoError(t, repo.Create(ctx, rep))
		assert.NotZero(t, rep.ID)
		assert.False(t, rep.CreatedAt.IsZero())
	}

	recent, err := repo.ListRecent(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].Turns)
	assert.Equal(t, 2, recent[1].Turns)

	none, err := repo.ListRecent(ctx, u.ID+1, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReportRepository_RequiresUser(t *testing.T) {
	repo := sqlite.NewReportRepository(openDB(t))
	err := repo.Create(context.Background(), &report.Report{UserID: 999, DungeonID: "x", Enemy: "y", Result: "fled"})
	assert.Error(t, err, "foreign key enforced")
}

func TestUserRepository_Property_UpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewUserRepository(openDB(t))
	base, err := repo.Create(ctx, user.DefaultFields("p"))
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		u := user.User{
			ID:               base.ID,
			Name:             rapid.StringMatching(`[a-zA-Z ]{1,32}`).Draw(rt, "name"),
			Level:            rapid.IntRange(1, 99).Draw(rt, "level"),
			Breed:            rapid.SampledFrom([]string{"null", "Mike", "Tama"}).Draw(rt, "breed"),
			ExperiencePoints: rapid.IntRange(0, 1_000_000).Draw(rt, "xp"),
			CatCoins:         rapid.IntRange(0, 1_000_000).Draw(rt, "coins"),
		}
		require.NoError(rt, repo.Update(ctx, &u))
		got, err := repo.Current(ctx)
		require.NoError(rt, err)
		assert.Equal(rt, u, *got)
	})
}
