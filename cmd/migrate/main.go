// Package main provides a standalone database migration runner for deployments
// that migrate before starting the game.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/observability"
	"github.com/cory-johannsen/catquest/internal/storage/migrations"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction; only up is supported")
	flag.Parse()

	if *direction != "up" {
		log.Fatalf("invalid direction %q: migrations are forward-only", *direction)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := migrations.Up(cfg.Database, logger)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	elapsed := time.Since(start)
	if !st.Changed {
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", st.Version, st.Dirty, elapsed)
	} else {
		fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", cfg.Database.Driver, st.Version, st.Dirty, elapsed)
	}
}
