package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/founditapp/foundit/internal/config"
	"github.com/founditapp/foundit/internal/db"
	"github.com/founditapp/foundit/internal/seed"
)

var seedCommand = &cli.Command{
	Name:   "seed",
	Usage:  "Insert the demo users and item catalog",
	Action: runSeed,
}

func runSeed(cCtx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := seed.Run(cCtx.Context, database); err != nil {
		return err
	}

	fmt.Printf("Seeded %s with the demo catalog (password %q)\n", cfg.DatabasePath, seed.DemoPassword)
	return nil
}
