package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/catquest/internal/frontend/terminal"
)

var reportLimit int

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Inspect stored player data",
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stored users and their recent battles",
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

		users, err := app.Store.Users.List(ctx)
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, "No users yet.")
			return nil
		}
		style := terminal.Style{}
		for _, u := range users {
			fmt.Fprintf(out, "#%d %s\n", u.ID, terminal.RenderUser(style, *u))
			reps, err := app.Store.Reports.ListRecent(ctx, u.ID, reportLimit)
			if err != nil {
				return fmt.Errorf("listing reports for user %d: %w", u.ID, err)
			}
			fmt.Fprint(out, terminal.RenderReports(style, reps))
		}
		return nil
	},
}

func init() {
	userShowCmd.Flags().IntVar(&reportLimit, "reports", 5, "number of recent battles per user")
	userCmd.AddCommand(userShowCmd)
}
