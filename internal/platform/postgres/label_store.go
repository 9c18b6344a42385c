package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// labelRow is the shared shape of the categories and tags tables.
type labelRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// labelTable holds the queries common to categories and tags. The table
// name is always a constant chosen by this package.
type labelTable struct {
	db       store.DBTX
	table    string
	notFound error
	logger   *slog.Logger
}

// getOrCreate inserts name or returns the existing row in one statement.
// xmax is zero only for a row inserted by this statement.
func (t labelTable) getOrCreate(ctx context.Context, name string) (labelRow, bool, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	name, err := domain.NormalizeLabelName(name)
	if err != nil {
		return labelRow{}, false, err
	}

	query := `
		INSERT INTO ` + t.table + ` (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at, (xmax = 0) AS created
	`
	var row labelRow
	var created bool
	err = t.db.QueryRowContext(ctx, query, uuid.New(), name, time.Now().UTC()).
		Scan(&row.ID, &row.Name, &row.CreatedAt, &created)
	if err != nil {
		log.Error("failed to upsert "+t.table, slog.String("error", err.Error()))
		return labelRow{}, false, MapError(err)
	}

	if created {
		log.Info(t.table+" row created", slog.String("id", row.ID.String()))
	}
	return row, created, nil
}

func (t labelTable) get(ctx context.Context, id uuid.UUID) (labelRow, error) {
	var row labelRow
	query := `SELECT id, name, created_at FROM ` + t.table + ` WHERE id = $1`
	err := t.db.QueryRowContext(ctx, query, id).Scan(&row.ID, &row.Name, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return labelRow{}, t.notFound
		}
		return labelRow{}, MapError(err)
	}
	return row, nil
}

func (t labelTable) list(ctx context.Context) ([]labelRow, error) {
	query := `SELECT id, name, created_at FROM ` + t.table + ` ORDER BY name, id`
	return t.query(ctx, query)
}

// byIDs expands ids into an IN list. An empty ids returns no rows.
func (t labelTable) byIDs(ctx context.Context, ids []uuid.UUID) ([]labelRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, name, created_at FROM `+t.table+` WHERE id IN (?) ORDER BY name, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s ids: %w", t.table, err)
	}
	return t.query(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
}

func (t labelTable) query(ctx context.Context, query string, args ...any) ([]labelRow, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query "+t.table, slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []labelRow
	if err := sqlx.StructScan(rows, &out); err != nil {
		log.Error("failed to scan "+t.table, slog.String("error", err.Error()))
		return nil, err
	}
	return out, nil
}

// PostgresCategoryStore implements store.CategoryStore.
type PostgresCategoryStore struct {
	labelTable
}

// NewPostgresCategoryStore creates a new PostgreSQL implementation of the CategoryStore interface.
func NewPostgresCategoryStore(db store.DBTX, logger *slog.Logger) *PostgresCategoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCategoryStore{labelTable{
		db:       db,
		table:    "categories",
		notFound: store.ErrCategoryNotFound,
		logger:   logger.With(slog.String("component", "category_store")),
	}}
}

var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// WithTx implements store.CategoryStore.WithTx
func (s *PostgresCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	t := s.labelTable
	t.db = tx
	return &PostgresCategoryStore{t}
}

// GetOrCreate implements store.CategoryStore.GetOrCreate
func (s *PostgresCategoryStore) GetOrCreate(ctx context.Context, name string) (*domain.Category, bool, error) {
	row, created, err := s.getOrCreate(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return toCategory(row), created, nil
}

// Get implements store.CategoryStore.Get
func (s *PostgresCategoryStore) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategory(row), nil
}

// List implements store.CategoryStore.List
func (s *PostgresCategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCategory(r))
	}
	return out, nil
}

// PostgresTagStore implements store.TagStore.
type PostgresTagStore struct {
	labelTable
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the TagStore interface.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTagStore{labelTable{
		db:       db,
		table:    "tags",
		notFound: store.ErrTagNotFound,
		logger:   logger.With(slog.String("component", "tag_store")),
	}}
}

var _ store.TagStore = (*PostgresTagStore)(nil)

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	t := s.labelTable
	t.db = tx
	return &PostgresTagStore{t}
}

// GetOrCreate implements store.TagStore.GetOrCreate
func (s *PostgresTagStore) GetOrCreate(ctx context.Context, name string) (*domain.Tag, bool, error) {
	row, created, err := s.getOrCreate(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return toTag(row), created, nil
}

// Get implements store.TagStore.Get
func (s *PostgresTagStore) Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTag(row), nil
}

// GetByIDs implements store.TagStore.GetByIDs
func (s *PostgresTagStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Tag, error) {
	rows, err := s.byIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toTags(rows), nil
}

// List implements store.TagStore.List
func (s *PostgresTagStore) List(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	return toTags(rows), nil
}

func toCategory(r labelRow) *domain.Category {
	return &domain.Category{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

func toTags(rows []labelRow) []*domain.Tag {
	out := make([]*domain.Tag, 0, len(rows))
	for _, r := range rows {
		out = append(out, toTag(r))
	}
	return out
}

func toTag(r labelRow) *domain.Tag {
	return &domain.Tag{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}
