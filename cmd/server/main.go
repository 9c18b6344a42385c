// Package main implements the entry point for the task manager API server.
//
// Usage:
//
//	server                  run the API and the reminder dispatcher
//	server -migrate up      apply pending migrations and exit
//	server -migrate status  (also: down, reset, version)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql
	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres/migrations"
)

func main() {
	migrateCmd := flag.String("migrate", "", fmt.Sprintf("run a migration command and exit (%v)", migrations.Commands))
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// run loads configuration, connects to the database and either executes a
// migration command or serves until SIGINT/SIGTERM.
func run(migrateCmd string) error {
	if migrateCmd != "" && !slices.Contains(migrations.Commands, migrateCmd) {
		return fmt.Errorf("unknown migration command %q (expected one of %v)", migrateCmd, migrations.Commands)
	}

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			l.Error("Error closing database connection", slog.String("error", cerr.Error()))
		}
	}()

	if migrateCmd != "" {
		return handleMigrations(ctx, db, migrateCmd, l)
	}

	if err := handleMigrations(ctx, db, "up", l); err != nil {
		return err
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// loadAppConfig loads the application configuration from environment
// variables or a config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
