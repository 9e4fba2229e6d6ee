// Admin tool to inspect or reset the sync cursor. Resetting the cursor
// below its current value makes the next tick reprocess the intervening
// blocks; the idempotent upserts make that safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Ojukwu12/Nodepulse/internal/core/config"
	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "no database configured")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := postgres.NewSyncStateRepo(db)

	switch flag.NArg() {
	case 0:
		cursor, err := repo.GetCursor(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read cursor: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s = %d (updated %s)\n", domain.SyncCursorKey, cursor.Value, cursor.UpdatedAt)

	case 1:
		value, err := strconv.ParseUint(flag.Arg(0), 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid block number %q: %v\n", flag.Arg(0), err)
			os.Exit(1)
		}
		if err := repo.UpsertCursor(ctx, value); err != nil {
			fmt.Fprintf(os.Stderr, "failed to reset cursor: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Reset %s to %d\n", domain.SyncCursorKey, value)

	default:
		fmt.Fprintln(os.Stderr, "usage: admin [-config config.yaml] [block_number]")
		os.Exit(1)
	}
}
