package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

const activityColumns = `id, task_id, user_id, action, details, timestamp`

type activityRow struct {
	ID        uuid.UUID     `db:"id"`
	TaskID    uuid.NullUUID `db:"task_id"`
	UserID    uuid.UUID     `db:"user_id"`
	Action    string        `db:"action"`
	Details   []byte        `db:"details"`
	Timestamp time.Time     `db:"timestamp"`
}

func (r activityRow) toDomain() *domain.ActivityLog {
	entry := &domain.ActivityLog{
		ID:        r.ID,
		UserID:    r.UserID,
		Action:    domain.ActivityAction(r.Action),
		Timestamp: r.Timestamp.UTC(),
	}
	if r.TaskID.Valid {
		id := r.TaskID.UUID
		entry.TaskID = &id
	}
	if len(r.Details) > 0 {
		entry.Details = json.RawMessage(r.Details)
	}
	return entry
}

// PostgresActivityStore implements the store.ActivityStore interface.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the ActivityStore interface.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// WithTx implements store.ActivityStore.WithTx
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &PostgresActivityStore{db: tx, logger: s.logger}
}

// Create implements store.ActivityStore.Create
func (s *PostgresActivityStore) Create(ctx context.Context, entry *domain.ActivityLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var details any
	if len(entry.Details) > 0 {
		details = string(entry.Details)
	}

	query := `INSERT INTO activity_logs (` + activityColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		nullUUID(entry.TaskID),
		entry.UserID,
		string(entry.Action),
		details,
		entry.Timestamp,
	)
	if err != nil {
		log.Error("failed to append activity log",
			slog.String("error", err.Error()),
			slog.String("action", string(entry.Action)))
		return MapError(err)
	}
	return nil
}

// ListByTask implements store.ActivityStore.ListByTask
func (s *PostgresActivityStore) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.ActivityLog, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_logs
		WHERE task_id = $1 AND user_id = $2
		ORDER BY timestamp DESC, id`
	return s.query(ctx, query, taskID, userID)
}

// ListByUser implements store.ActivityStore.ListByUser
func (s *PostgresActivityStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ActivityLog, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC, id
		LIMIT $2 OFFSET $3`
	return s.query(ctx, query, userID, limit, offset)
}

// Get implements store.ActivityStore.Get
func (s *PostgresActivityStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.ActivityLog, error) {
	var row activityRow
	query := `SELECT ` + activityColumns + ` FROM activity_logs WHERE id = $1 AND user_id = $2`
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&row.ID, &row.TaskID, &row.UserID, &row.Action, &row.Details, &row.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrActivityNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

func (s *PostgresActivityStore) query(ctx context.Context, query string, args ...any) ([]*domain.ActivityLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query activity logs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var found []activityRow
	if err := sqlx.StructScan(rows, &found); err != nil {
		return nil, err
	}

	out := make([]*domain.ActivityLog, 0, len(found))
	for _, r := range found {
		out = append(out, r.toDomain())
	}
	return out, nil
}
