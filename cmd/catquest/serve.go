package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/frontend/httpapi"
	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/notify"
	"github.com/cory-johannsen/catquest/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serve the game over a JSON and server-sent-events API until interrupted.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	app, cleanup, err := initializeApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := app.Logger

	if err := content.SyncMonsters(ctx, app.Catalog, app.Store.Monsters); err != nil {
		logger.Warn("syncing monster definitions", zap.Error(err))
	}
	if _, _, err := app.Profile.Welcome(ctx); err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	router := httpapi.NewRouter(app.Profile, app.Combat, app.Store.Health, cfg.Server.Debug, logger)
	srv := httpapi.NewServer(cfg.Server.Addr(), router, logger)

	lc := server.NewLifecycle(logger)
	lc.Add("http", &server.FuncService{
		StartFn: func(context.Context) error { return srv.Start() },
		StopFn:  srv.Stop,
	})
	if app.Notifier != nil {
		lc.Add("user-listener", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				return app.Notifier.Listen(ctx, func(msg notify.Message) {
					if app.Users.Adopt(msg.User) {
						logger.Debug("adopted user change", zap.String("source", msg.Source))
					}
				})
			},
		})
	}

	logger.Info("catquest ready",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("driver", app.Store.Driver()),
		zap.Bool("notify", app.Notifier != nil),
		zap.Duration("startup", time.Since(start)),
	)
	return lc.Run(ctx)
}
