package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/observability"
	"github.com/cory-johannsen/catquest/internal/storage/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := observability.NewLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		st, err := migrations.Up(cfg.Database, logger)
		if err != nil {
			logger.Error("migration failed", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version=%d dirty=%v changed=%v\n",
			cfg.Database.Driver, st.Version, st.Dirty, st.Changed)
		return nil
	},
}
