package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"appointment-service/internal/config"
	"appointment-service/internal/seed"
	"appointment-service/internal/storage/postgres"
	"appointment-service/pkg/sl"
)

// The server seeds a memory store itself through seed_path; this command is
// for postgres.
func main() {
	var seedPath string
	flag.StringVar(&seedPath, "seed", "config/seed.yaml", "path to seed file")

	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if cfg.StoragePath == config.StorageMemory {
		log.Error("Seeding needs a postgres storage_path; a memory store is seeded by the server via seed_path")
		os.Exit(1)
	}

	file, err := seed.Load(seedPath)
	if err != nil {
		log.Error("Failed to read seed file", slog.String("path", seedPath), sl.Err(err))
		os.Exit(1)
	}

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := storage.Migrate(ctx); err != nil {
		log.Error("Failed to migrate", sl.Err(err))
		os.Exit(1)
	}

	n, err := seed.Apply(ctx, log, storage, file)
	if err != nil {
		log.Error("Seeding failed", slog.Int("seeded", n), sl.Err(err))
		os.Exit(1)
	}

	log.Info("Seeding finished", slog.Int("providers", n))
}
