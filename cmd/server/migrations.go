package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres/migrations"
)

// handleMigrations executes a goose command with the embedded migrations.
// Every log line of one invocation shares a correlation ID.
func handleMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	log := logger.With(slog.String("correlation_id", uuid.NewString()))

	start := time.Now()
	log.Info("Starting migration operation", slog.String("command", command))
	if err := migrations.Run(ctx, db, command, log); err != nil {
		return err
	}
	log.Info("Migration operation finished",
		slog.String("command", command),
		slog.Duration("duration", time.Since(start)))
	return nil
}
