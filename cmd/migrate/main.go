package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"assetadmin/internal/config"
	"assetadmin/pkg/database"
	"assetadmin/pkg/logger"
)

func main() {
	down := flag.Bool("down", false, "revert migrations instead of applying them")
	to := flag.Int("to", 0, "version to revert to when -down is set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		TimeFormat: time.RFC3339,
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, log, *down, *to); err != nil {
		log.WithError(err).Error("Migration failed")
		os.Exit(1)
	}
	log.Info("Migrations done")
}

func run(cfg *config.Config, log *logger.Logger, down bool, to int) error {
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	migrator := database.NewMigrator(db.Database, log)
	if down {
		return migrator.Down(ctx, to)
	}
	return migrator.Up(ctx)
}
