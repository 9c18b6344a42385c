package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// CategoryStore defines the interface for category persistence.
type CategoryStore interface {
	// GetOrCreate atomically returns the category named name, inserting it
	// when absent. created reports whether this call inserted the row.
	GetOrCreate(ctx context.Context, name string) (category *domain.Category, created bool, err error)

	// Get retrieves a category by ID. Returns ErrCategoryNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]*domain.Category, error)

	// WithTx returns a new CategoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CategoryStore
}

// TagStore defines the interface for tag persistence.
type TagStore interface {
	// GetOrCreate atomically returns the tag named name, inserting it when
	// absent. created reports whether this call inserted the row.
	GetOrCreate(ctx context.Context, name string) (tag *domain.Tag, created bool, err error)

	// Get retrieves a tag by ID. Returns ErrTagNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// GetByIDs returns the tags among ids that exist. Unknown IDs are
	// silently skipped; callers compare lengths to detect them.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Tag, error)

	// List returns all tags ordered by name.
	List(ctx context.Context) ([]*domain.Tag, error)

	// WithTx returns a new TagStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TagStore
}
