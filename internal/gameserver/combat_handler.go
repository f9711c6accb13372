package gameserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/game/combat"
	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/game/dice"
	"github.com/cory-johannsen/catquest/internal/game/progression"
	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/user"
)

// ErrNotFinished is returned by Dismiss while the battle is still being fought.
var ErrNotFinished = errors.New("battle not finished")

// CombatHandler starts battles from the current user and an encounter, routes
// commands to them, and commits their outcome when they end.
//
// Precondition: engine, catalog, and users must be non-nil; reports may be nil.
type CombatHandler struct {
	engine         *combat.Engine
	catalog        *content.Catalog
	users          *user.Service
	reports        report.Repository
	opts           combat.Options
	enemyTurnDelay time.Duration
	src            dice.Source
	logger         *zap.Logger
	newID          func() string

	mu       sync.Mutex
	sessions map[string]*battleSession
}

// battleSession tracks what the handler knows about one battle beyond its state.
type battleSession struct {
	id        string
	dungeonID string
	enemy     string
	userID    int64
	battle    *combat.Battle
	timer     *combat.TurnTimer

	commitMu        sync.Mutex
	outcomeApplied  bool
	userCommitted   bool
	reportCommitted bool
}

// Started is the result of StartBattle.
type Started struct {
	ID        string            `json:"id"`
	Encounter content.Encounter `json:"-"`
	State     combat.State      `json:"state"`
	// DungeonFallback is set when the requested dungeon was unknown.
	DungeonFallback bool `json:"dungeon_fallback"`
}

// NewCombatHandler creates a CombatHandler.
//
// Precondition: opts.Source, when set, is also used to pick encounters;
// enemyTurnDelay >= 0 where 0 means enemy turns are triggered manually.
// Postcondition: Returns a non-nil CombatHandler.
func NewCombatHandler(
	engine *combat.Engine,
	catalog *content.Catalog,
	users *user.Service,
	reports report.Repository,
	opts combat.Options,
	enemyTurnDelay time.Duration,
	logger *zap.Logger,
) *CombatHandler {
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &CombatHandler{
		engine:         engine,
		catalog:        catalog,
		users:          users,
		reports:        reports,
		opts:           opts,
		enemyTurnDelay: enemyTurnDelay,
		src:            opts.Source,
		logger:         logger,
		newID:          uuid.NewString,
		sessions:       make(map[string]*battleSession),
	}
}

// StartBattle creates a battle in dungeonID fought by breedName.
// Unknown dungeons fall back to the Mysterious Dungeon. An empty breed name
// uses the user's stored breed; a name missing from the catalog is used verbatim.
//
// Precondition: the user service must be loaded.
// Postcondition: Returns the new battle id and its initial state, awaiting a player command.
func (h *CombatHandler) StartBattle(ctx context.Context, dungeonID, breedName string) (Started, error) {
	u, ok := h.users.Current()
	if !ok {
		return Started{}, user.ErrNotLoaded
	}

	enc, encErr := h.catalog.Encounter(dungeonID, h.src)
	setup := combat.Setup{
		Floor:       enc.Floor,
		DungeonName: enc.Dungeon.Name,
		Player:      h.playerFor(u, breedName),
		Enemy:       enc.Monster.Combatant(),
	}

	id := h.newID()
	b, err := h.engine.Start(id, setup, h.opts)
	if err != nil {
		return Started{}, err
	}

	sess := &battleSession{
		id:        id,
		dungeonID: enc.Dungeon.ID,
		enemy:     setup.Enemy.Name,
		userID:    u.ID,
		battle:    b,
		timer:     combat.NewTurnTimer(),
	}
	h.mu.Lock()
	h.sessions[id] = sess
	h.mu.Unlock()

	h.logger.Info("battle started",
		zap.String("battle_id", id),
		zap.String("dungeon_id", enc.Dungeon.ID),
		zap.String("player", setup.Player.Name),
		zap.String("enemy", setup.Enemy.Name),
	)
	return Started{
		ID:              id,
		Encounter:       enc,
		State:           b.Snapshot(),
		DungeonFallback: errors.Is(encErr, content.ErrUnknownDungeon),
	}, nil
}

// playerFor builds the player combatant at the user's persisted level.
func (h *CombatHandler) playerFor(u user.User, breedName string) combat.PlayerCombatant {
	name := strings.TrimSpace(breedName)
	if name == "" || name == user.BreedUnset {
		if u.HasBreed() {
			name = u.Breed
		} else {
			name = u.Name
		}
	}
	if b, ok := h.catalog.Breed(name); ok {
		name = b.Name
	}

	table := h.opts.Table
	if table == nil {
		table = progression.Default()
	}
	level := min(max(u.Level, 1), table.MaxLevel())
	stats := progression.StatsForLevel(level)
	return combat.PlayerCombatant{
		Name:       name,
		Level:      level,
		Experience: u.ExperiencePoints,
		CurrentHP:  stats.MaxHP,
		MaxHP:      stats.MaxHP,
		Attack:     stats.Attack,
		Defense:    stats.Defense,
	}
}

func (h *CombatHandler) session(id string) (*battleSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[id]
	if !ok {
		return nil, fmt.Errorf("battle %q: %w", id, combat.ErrBattleNotFound)
	}
	return sess, nil
}

// State returns the current state of battle id.
func (h *CombatHandler) State(id string) (combat.State, error) {
	sess, err := h.session(id)
	if err != nil {
		return combat.State{}, err
	}
	return sess.battle.Snapshot(), nil
}

// Watch subscribes to state changes of battle id. The channel closes when the
// battle is dismissed or cancel is called.
func (h *CombatHandler) Watch(id string, buf int) (<-chan combat.State, func(), error) {
	sess, err := h.session(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.battle.Watch(buf)
	return ch, cancel, nil
}

// Command submits a player command to battle id.
//
// Postcondition: accepted reports whether the command changed the battle. When
// the battle ends, its outcome is committed; commit failures are logged and
// returned alongside the new state.
func (h *CombatHandler) Command(ctx context.Context, id, input string) (st combat.State, accepted bool, err error) {
	sess, err := h.session(id)
	if err != nil {
		return combat.State{}, false, err
	}
	accepted = sess.battle.Submit(input)
	st = sess.battle.Snapshot()
	if accepted && st.Phase == combat.PhaseAwaitingEnemyTurn && h.enemyTurnDelay > 0 {
		sess.timer.Schedule(h.enemyTurnDelay, func() {
			if _, _, err := h.EnemyTurn(context.Background(), id); err != nil && !errors.Is(err, combat.ErrBattleNotFound) {
				h.logger.Warn("automatic enemy turn", zap.String("battle_id", id), zap.Error(err))
			}
		})
	}
	return st, accepted, h.commitIfFinished(ctx, sess, st)
}

// EnemyTurn resolves the pending enemy turn of battle id.
//
// Postcondition: resolved is false when the battle was not awaiting the enemy.
func (h *CombatHandler) EnemyTurn(ctx context.Context, id string) (st combat.State, resolved bool, err error) {
	sess, err := h.session(id)
	if err != nil {
		return combat.State{}, false, err
	}
	resolved = sess.battle.ResolveEnemyTurn()
	st = sess.battle.Snapshot()
	return st, resolved, h.commitIfFinished(ctx, sess, st)
}

// Dismiss acknowledges a finished battle and releases it. A commit that failed
// earlier is retried first; if it fails again the battle stays open so the
// caller can retry.
//
// Postcondition: Returns the final state, or ErrNotFinished while the battle is ongoing.
func (h *CombatHandler) Dismiss(ctx context.Context, id string) (combat.State, error) {
	sess, err := h.session(id)
	if err != nil {
		return combat.State{}, err
	}
	st := sess.battle.Snapshot()
	if !st.Phase.Terminal() {
		return st, fmt.Errorf("dismissing battle %q: %w", id, ErrNotFinished)
	}
	if err := h.commitIfFinished(ctx, sess, st); err != nil {
		return st, err
	}

	sess.timer.Stop()
	sess.battle.Dismiss()
	h.engine.End(id)
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
	h.logger.Info("battle dismissed", zap.String("battle_id", id), zap.Stringer("result", st.Result))
	return sess.battle.Snapshot(), nil
}

// Active returns the number of battles not yet dismissed.
func (h *CombatHandler) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close stops every pending enemy-turn timer.
func (h *CombatHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sess := range h.sessions {
		sess.timer.Stop()
	}
}

// commitIfFinished persists the user progress and battle report once per battle.
func (h *CombatHandler) commitIfFinished(ctx context.Context, sess *battleSession, st combat.State) error {
	if st.Result == combat.ResultNone {
		return nil
	}
	sess.commitMu.Lock()
	defer sess.commitMu.Unlock()
	if sess.userCommitted && sess.reportCommitted {
		return nil
	}

	out := sess.battle.Outcome()
	var errs []error

	if !sess.userCommitted {
		var err error
		if sess.outcomeApplied {
			// The in-memory user already holds the outcome; only persist it.
			_, err = h.users.Sync(ctx)
		} else {
			_, err = h.users.ApplyOutcome(ctx, user.Outcome{
				Level:            out.Level,
				ExperienceGained: out.ExperienceGained,
				CoinsGained:      out.CoinsGained,
			})
			sess.outcomeApplied = !errors.Is(err, user.ErrNotLoaded)
		}
		if err == nil {
			sess.userCommitted = true
		} else {
			errs = append(errs, fmt.Errorf("committing user progress: %w", err))
		}
	}

	if !sess.reportCommitted {
		if h.reports == nil {
			sess.reportCommitted = true
		} else {
			rep := &report.Report{
				UserID:           sess.userID,
				DungeonID:        sess.dungeonID,
				Enemy:            sess.enemy,
				Result:           out.Result.String(),
				ExperienceGained: out.ExperienceGained,
				CoinsGained:      out.CoinsGained,
				Turns:            out.Turns,
			}
			if err := h.reports.Create(ctx, rep); err != nil {
				errs = append(errs, fmt.Errorf("recording battle report: %w", err))
			} else {
				sess.reportCommitted = true
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		h.logger.Error("committing battle outcome", zap.String("battle_id", sess.id), zap.Error(err))
		return err
	}
	h.logger.Debug("battle outcome committed",
		zap.String("battle_id", sess.id),
		zap.Stringer("result", out.Result),
		zap.Int("experience_gained", out.ExperienceGained),
		zap.Int("coins_gained", out.CoinsGained),
	)
	return nil
}
