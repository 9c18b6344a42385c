package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// ActivityStore defines the interface for the append-only activity trail.
// All reads are newest first.
type ActivityStore interface {
	// Create appends an entry.
	Create(ctx context.Context, entry *domain.ActivityLog) error

	// ListByTask returns the entries of taskID recorded for userID.
	ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.ActivityLog, error)

	// ListByUser returns a page of userID's entries.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ActivityLog, error)

	// Get retrieves one of userID's entries. Returns ErrActivityNotFound if absent.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.ActivityLog, error)

	// WithTx returns a new ActivityStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ActivityStore
}

// ReminderStore is the dispatcher's view of the task table.
// ClaimDue must run inside a transaction so the row lock it takes is held
// until MarkSent commits.
type ReminderStore interface {
	// ClaimDue locks one task whose reminder is due at now and has not been
	// sent, skipping rows locked by concurrent dispatchers. ok is false
	// when nothing is due.
	ClaimDue(ctx context.Context, now time.Time) (reminder *domain.DueReminder, ok bool, err error)

	// MarkSent sets reminder_sent on taskID and persists nothing else.
	MarkSent(ctx context.Context, taskID uuid.UUID) error

	// WithTx returns a new ReminderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReminderStore
}
