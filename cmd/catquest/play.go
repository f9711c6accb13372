package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/frontend/terminal"
	"github.com/cory-johannsen/catquest/internal/game/content"
)

var noColor bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		if err := content.SyncMonsters(ctx, app.Catalog, app.Store.Monsters); err != nil {
			app.Logger.Warn("syncing monster definitions", zap.Error(err))
		}

		style := terminal.Style{Enabled: !noColor && colorTerminal(os.Stdout)}
		con := terminal.NewConsole(os.Stdin, os.Stdout, style)
		return terminal.NewGame(app.Profile, app.Combat, con, app.Logger).Run(ctx)
	},
}

func init() {
	playCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colours")
}

// colorTerminal reports whether f is a character device and NO_COLOR is unset.
func colorTerminal(f *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
