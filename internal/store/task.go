package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
// Every method except Create takes the owner's ID; a task owned by someone
// else is reported as ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task. The owner is task.UserID.
	Create(ctx context.Context, task *domain.Task) error

	// Get retrieves one of userID's tasks with its category and tag names.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// List returns userID's tasks matching filter, without duplicates.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Update persists the scalar fields of task, scoped to task.UserID.
	// Category and tags are left untouched.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes one of userID's tasks.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// SetCategory points the task at categoryID.
	SetCategory(ctx context.Context, userID, taskID, categoryID uuid.UUID) error

	// ReplaceTags replaces the task's entire tag set with tagIDs.
	ReplaceTags(ctx context.Context, userID, taskID uuid.UUID, tagIDs []uuid.UUID) error

	// Upcoming returns userID's tasks whose remind_at falls in [from, to),
	// soonest first.
	Upcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
