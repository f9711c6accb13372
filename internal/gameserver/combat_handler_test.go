package gameserver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/catquest/internal/game/combat"
	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/game/dice"
	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/user"
)

// failingReports fails Create while fail is set.
type failingReports struct {
	*report.MemoryRepository
	mu   sync.Mutex
	fail bool
}

func (f *failingReports) Create(ctx context.Context, rep *report.Report) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("reports offline")
	}
	return f.MemoryRepository.Create(ctx, rep)
}

func (f *failingReports) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

type fixture struct {
	handler *CombatHandler
	users   *user.Service
	repo    *user.MemoryRepository
	reports *failingReports
}

func testCatalog() *content.Catalog {
	return content.NewCatalog(
		[]content.Breed{{ID: 1, Name: "Mike"}, {ID: 2, Name: "Tama"}},
		[]content.Dungeon{{ID: "first_cave", Name: "First Cave", Floors: 1, Monsters: []int{1}}},
		[]content.Monster{content.Goblin},
		zap.NewNop(),
	)
}

// newFixture builds a handler over in-memory stores. src drives both encounter
// picks and flee checks.
func newFixture(t *testing.T, src dice.Source, delay time.Duration) *fixture {
	t.Helper()
	repo := user.NewMemoryRepository()
	users := user.NewService(repo, nil, "プレイヤー", zap.NewNop())
	_, err := users.LoadOrCreate(context.Background())
	require.NoError(t, err)
	reports := &failingReports{MemoryRepository: report.NewMemoryRepository()}
	opts := combat.DefaultOptions()
	opts.Source = src
	h := NewCombatHandler(combat.NewEngine(), testCatalog(), users, reports, opts, delay, zap.NewNop())
	t.Cleanup(h.Close)
	return &fixture{handler: h, users: users, repo: repo, reports: reports}
}

func TestStartBattle_SeedsPlayerFromUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, dice.NewFixedSource(0), 0)
	_, err := f.users.ApplyOutcome(ctx, user.Outcome{ExperienceGained: 25})
	require.NoError(t, err)

	started, err := f.handler.StartBattle(ctx, "first_cave", "Mike")
	require.NoError(t, err)
	assert.NotEmpty(t, started.ID)
	assert.False(t, started.DungeonFallback)

	st := started.State
	assert.Equal(t, combat.PhaseAwaitingPlayerCommand, st.Phase)
	assert.Equal(t, "First Cave", st.DungeonName)
	assert.Equal(t, "Mike", st.Player.Name)
	assert.Equal(t, 2, st.Player.Level)
	assert.Equal(t, 25, st.Player.Experience)
	assert.Equal(t, 60, st.Player.MaxHP)
	assert.Equal(t, 60, st.Player.CurrentHP)
	assert.Equal(t, 12, st.Player.Attack)
	require.NotNil(t, st.Enemy)
	assert.Equal(t, "Goblin", st.Enemy.Name)
	assert.Equal(t, []string{"Goblin appears!"}, st.Log)
	assert.Equal(t, 1, f.handler.Active())
}

func TestStartBattle_UnknownDungeonFallsBack(t *testing.T) {
	f := newFixture(t, dice.NewFixedSource(0), 0)
	started, err := f.handler.StartBattle(context.Background(), "nowhere", "Tama")
	require.NoError(t, err)
	assert.True(t, started.DungeonFallback)
	assert.Equal(t, "Mysterious Dungeon", started.State.DungeonName)
	assert.Equal(t, 40, started.State.Enemy.MaxHP)
}

func TestStartBattle_BreedFallbacks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, dice.NewFixedSource(0), 0)

	started, err := f.handler.StartBattle(ctx, "first_cave", "")
	require.NoError(t, err)
	assert.Equal(t, "プレイヤー", started.State.Player.Name, "no breed chosen uses the user name")

	_, err = f.users.SelectBreed(ctx, "Tama")
	require.NoError(t, err)
	started, err = f.handler.StartBattle(ctx, "first_cave", "null")
	require.NoError(t, err)
	assert.Equal(t, "Tama", started.State.Player.Name)

	started, err = f.handler.StartBattle(ctx, "first_cave", "Calico")
	require.NoError(t, err)
	assert.Equal(t, "Calico", started.State.Player.Name, "opaque breed names pass through")
}

func TestStartBattle_RequiresLoadedUser(t *testing.T) {
	users := user.NewService(user.NewMemoryRepository(), nil, "p", zap.NewNop())
	h := NewCombatHandler(combat.NewEngine(), testCatalog(), users, nil, combat.DefaultOptions(), 0, zap.NewNop())
	_, err := h.StartBattle(context.Background(), "first_cave", "Mike")
	assert.ErrorIs(t, err, user.ErrNotLoaded)
}

func TestBattle_VictoryCommitsUserAndReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, dice.NewFixedSource(0), 0)
	started, err := f.handler.StartBattle(ctx, "first_cave", "Mike")
	require.NoError(t, err)
	id := started.ID

	for i := 0; i < 3; i++ {
		st, ok, err := f.handler.Command(ctx, id, "attack")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, combat.PhaseAwaitingEnemyTurn, st.Phase)
		_, ok, err = f.handler.EnemyTurn(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
	}
	st, ok, err := f.handler.Command(ctx, id, "たたかう")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, combat.PhaseVictory, st.Phase)
	assert.Equal(t, 26, st.Player.CurrentHP)

	u, _ := f.users.Current()
	assert.Equal(t, 10, u.ExperiencePoints)
	assert.Equal(t, 5, u.CatCoins)
	stored, err := f.repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, *stored)

	reps, err := f.reports.ListRecent(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, "victory", reps[0].Result)
	assert.Equal(t, "first_cave", reps[0].DungeonID)
	assert.Equal(t, "Goblin", reps[0].Enemy)
	assert.Equal(t, 4, reps[0].Turns)

	// Commands after the end change nothing and commit nothing more.
	_, ok, err = f.handler.Command(ctx, id, "flee")
	require.NoError(t, err)
	assert.False(t, ok)

	final, err := f.handler.Dismiss(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseDismissed, final.Phase)
	assert.Equal(t, 0, f.handler.Active())
	u, _ = f.users.Current()
	assert.Equal(t, 5, u.CatCoins)
	reps, _ = f.reports.ListRecent(ctx, u.ID, 10)
	assert.Len(t, reps, 1)

	_, err = f.handler.State(id)
	assert.ErrorIs(t, err, combat.ErrBattleNotFound)
}

// winBattle attacks until battle id is won, resolving every enemy turn.
func winBattle(t *testing.T, h *CombatHandler, id string) combat.State {
	t.Helper()
	ctx := context.Background()
	for range 10 {
		st, ok, err := h.Command(ctx, id, "attack")
		require.NoError(t, err)
		require.True(t, ok)
		if st.Phase == combat.PhaseVictory {
			return st
		}
		_, ok, err = h.EnemyTurn(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
	}
	t.Fatalf("battle %s not won", id)
	return combat.State{}
}

func TestBattle_ConcurrentVictoriesAllCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, dice.NewFixedSource(0), 0)

	first, err := f.handler.StartBattle(ctx, "first_cave", "Mike")
	require.NoError(t, err)
	second, err := f.handler.StartBattle(ctx, "first_cave", "Mike")
	require.NoError(t, err)
	assert.Equal(t, 2, f.handler.Active())

	winBattle(t, f.handler, first.ID)
	winBattle(t, f.handler, second.ID)

	u, _ := f.users.Current()
	assert.Equal(t, 20, u.ExperiencePoints, "both experience rewards are kept")
	assert.Equal(t, 10, u.CatCoins)
	assert.Equal(t, 2, u.Level, "combined experience reaches the level 2 threshold")

	stored, err := f.repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, *stored)
}

func TestBattle_FleeRecordsReportWithoutRewards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, dice.NewFixedSource(0), 0)
	started, err := f.handler.StartBattle(ctx, "first_cave", "Mike")
	require.NoError(t, err)

	st, ok, err := f.handler.Command(ctx, started.ID, "flee")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, combat.PhaseFled, st.Phase)

	u, _ := f.users.Current()
	assert.Equal(t, 0, u.CatCoins)
	reps, err := f.reports.ListRecent(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, "fled", reps[0].Result)
}

func TestDismiss_RejectsOngoingBattle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, dice.NewFixedSource(99), 0)
	started, err := f.handler.StartBattle(ctx, "first_cave", "Mike")
	require.NoError(t, err)

	_, err = f.handler.Dismiss(ctx, started.ID)
	assert.ErrorIs(t, err, ErrNotFinished)
	assert.Equal(t, 1, f.handler.Active())

	_, err = f.handler.Dismiss(ctx, "missing")
	assert.ErrorIs(t, err, combat.ErrBattleNotFound)
}

func TestCommitFailure_RetriedOnDismissWithoutDoubleCounting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, dice.NewFixedSource(0), 0)
	_, err := f.users.ApplyOutcome(ctx, user.Outcome{ExperienceGained: 35})
	require.NoError(t, err)
	started, err := f.handler.StartBattle(ctx, "first_cave", "Mike")
	require.NoError(t, err)

	f.reports.setFail(true)
	for i := 0; i < 3; i++ {
		_, _, err = f.handler.Command(ctx, started.ID, "attack")
		require.NoError(t, err)
		_, _, err = f.handler.EnemyTurn(ctx, started.ID)
		require.NoError(t, err)
	}
	st, _, err := f.handler.Command(ctx, started.ID, "attack")
	require.Error(t, err)
	assert.Equal(t, combat.PhaseVictory, st.Phase)

	_, err = f.handler.Dismiss(ctx, started.ID)
	require.Error(t, err)
	assert.Equal(t, 1, f.handler.Active(), "battle stays open for a retry")

	f.reports.setFail(false)
	_, err = f.handler.Dismiss(ctx, started.ID)
	require.NoError(t, err)

	u, _ := f.users.Current()
	assert.Equal(t, 5, u.CatCoins)
	assert.Equal(t, 45, u.ExperiencePoints)
	assert.Equal(t, 2, u.Level)
	reps, _ := f.reports.ListRecent(ctx, u.ID, 0)
	assert.Len(t, reps, 1)
}

func TestEnemyTurnDelay_ResolvesAutomatically(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, dice.NewFixedSource(0), 10*time.Millisecond)
	started, err := f.handler.StartBattle(ctx, "first_cave", "Mike")
	require.NoError(t, err)

	ch, cancel, err := f.handler.Watch(started.ID, 8)
	require.NoError(t, err)
	defer cancel()
	<-ch

	_, ok, err := f.handler.Command(ctx, started.ID, "defend")
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		st, err := f.handler.State(started.ID)
		return err == nil && st.Phase == combat.PhaseAwaitingPlayerCommand && st.Player.CurrentHP < st.Player.MaxHP
	}, time.Second, 5*time.Millisecond)
}

func TestCombatRoute_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.String().Draw(rt, "dungeon")
		b := rapid.String().Draw(rt, "breed")
		gotD, gotB, ok := ParseCombatRoute(CombatRoute(d, b))
		require.True(rt, ok)
		assert.Equal(rt, d, gotD)
		assert.Equal(rt, b, gotB)
	})
}

func TestParseCombatRoute_Rejects(t *testing.T) {
	for _, route := range []string{"welcome", "combat/only", "combat%2Fx/y"} {
		_, _, ok := ParseCombatRoute(route)
		assert.False(t, ok, route)
	}
}
