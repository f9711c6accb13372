package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/game/combat"
	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/game/progression"
	"github.com/cory-johannsen/catquest/internal/gameserver"
	"github.com/cory-johannsen/catquest/internal/notify"
	"github.com/cory-johannsen/catquest/internal/observability"
	"github.com/cory-johannsen/catquest/internal/storage"
	"github.com/cory-johannsen/catquest/internal/user"
)

// App holds every long-lived component shared by the subcommands.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Store    *storage.Store
	Catalog  *content.Catalog
	Notifier *notify.RedisNotifier // nil when cross-process fan-out is disabled
	Users    *user.Service
	Combat   *gameserver.CombatHandler
	Profile  *gameserver.ProfileHandler
}

var appSet = wire.NewSet(
	provideLogger,
	provideStore,
	provideCatalog,
	provideNotifier,
	providePublisher,
	provideProgression,
	provideUserService,
	provideCombatOptions,
	combat.NewEngine,
	provideCombatHandler,
	provideProfileHandler,
	wire.Struct(new(App), "*"),
)

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*storage.Store, func(), error) {
	store, err := storage.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}, nil
}

func provideCatalog(cfg config.Config, logger *zap.Logger) *content.Catalog {
	return content.LoadCatalog(cfg.Content, logger)
}

// provideNotifier returns a nil notifier when no Redis address is configured.
func provideNotifier(ctx context.Context, cfg config.Config, logger *zap.Logger) (*notify.RedisNotifier, func(), error) {
	n, err := notify.NewRedisNotifier(ctx, cfg.Notify, logger)
	if errors.Is(err, notify.ErrDisabled) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return n, func() {
		if err := n.Close(); err != nil {
			logger.Warn("closing notifier", zap.Error(err))
		}
	}, nil
}

// providePublisher keeps a nil *RedisNotifier from becoming a non-nil interface.
func providePublisher(n *notify.RedisNotifier) user.Publisher {
	if n == nil {
		return nil
	}
	return n
}

// provideProgression builds the configured experience table, or the built-in one.
func provideProgression(cfg config.Config) (*progression.Table, error) {
	if len(cfg.Game.ExperienceTable) == 0 {
		return progression.Default(), nil
	}
	table, err := progression.NewTable(cfg.Game.ExperienceTable)
	if err != nil {
		return nil, fmt.Errorf("building experience table: %w", err)
	}
	return table, nil
}

func provideUserService(store *storage.Store, pub user.Publisher, table *progression.Table, cfg config.Config, logger *zap.Logger) (*user.Service, func()) {
	svc := user.NewService(store.Users, pub, cfg.Game.DefaultPlayerName, logger)
	svc.UseTable(table)
	return svc, svc.Close
}

func provideCombatOptions(cfg config.Config, table *progression.Table, logger *zap.Logger) combat.Options {
	opts := combat.DefaultOptions()
	opts.FleeChancePercent = cfg.Game.FleeChancePercent
	opts.DefendMitigates = cfg.Game.DefendMitigates
	opts.Table = table
	opts.Language = combat.Language(cfg.Game.Language)
	opts.Logger = logger
	return opts
}

func provideCombatHandler(
	engine *combat.Engine,
	catalog *content.Catalog,
	users *user.Service,
	store *storage.Store,
	opts combat.Options,
	cfg config.Config,
	logger *zap.Logger,
) (*gameserver.CombatHandler, func()) {
	h := gameserver.NewCombatHandler(engine, catalog, users, store.Reports, opts, cfg.Game.EnemyTurnDelay, logger)
	return h, h.Close
}

func provideProfileHandler(users *user.Service, catalog *content.Catalog, store *storage.Store, logger *zap.Logger) *gameserver.ProfileHandler {
	return gameserver.NewProfileHandler(users, catalog, store.Reports, logger)
}
