package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// PostgresReminderStore implements store.ReminderStore.
type PostgresReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReminderStore creates a new PostgreSQL implementation of the ReminderStore interface.
func NewPostgresReminderStore(db store.DBTX, logger *slog.Logger) *PostgresReminderStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

var _ store.ReminderStore = (*PostgresReminderStore)(nil)

// WithTx implements store.ReminderStore.WithTx
func (s *PostgresReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &PostgresReminderStore{db: tx, logger: s.logger}
}

// ClaimDue implements store.ReminderStore.ClaimDue.
// SKIP LOCKED lets concurrent dispatchers claim disjoint rows; the lock is
// released when the surrounding transaction ends.
func (s *PostgresReminderStore) ClaimDue(ctx context.Context, now time.Time) (*domain.DueReminder, bool, error) {
	query := `
		SELECT t.id, t.title, t.remind_at, u.email
		FROM tasks t
		JOIN users u ON u.id = t.user_id
		WHERE t.remind_at IS NOT NULL
			AND NOT t.reminder_sent
			AND t.remind_at <= $1
		ORDER BY t.remind_at, t.id
		LIMIT 1
		FOR UPDATE OF t SKIP LOCKED
	`
	var r domain.DueReminder
	err := s.db.QueryRowContext(ctx, query, now.UTC()).Scan(&r.TaskID, &r.Title, &r.RemindAt, &r.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to claim due reminder",
			slog.String("error", err.Error()))
		return nil, false, MapError(err)
	}
	r.RemindAt = r.RemindAt.UTC()
	return &r, true, nil
}

// MarkSent implements store.ReminderStore.MarkSent
func (s *PostgresReminderStore) MarkSent(ctx context.Context, taskID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET reminder_sent = TRUE WHERE id = $1`, taskID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}
