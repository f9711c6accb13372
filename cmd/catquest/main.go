// Package main is the Cat Quest binary: the terminal game, the HTTP API
// server, and operator commands share one wiring of storage and services.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/catquest/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "catquest",
	Short: "Cat Quest turn-based dungeon game",
	Long: `Cat Quest is a single-player turn-based battle game. Pick a cat breed,
enter a dungeon, and fight its monsters for experience and cat coins.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (defaults plus CATQUEST_* environment when empty)")
	rootCmd.AddCommand(serveCmd, playCmd, userCmd, migrateCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
