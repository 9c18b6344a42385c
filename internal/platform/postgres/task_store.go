package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// taskSelect reads a task with its category name and sorted tag names.
// Tag names come back as a JSON array so a task never repeats in the
// result regardless of how many tags it has.
const taskSelect = `
	SELECT t.id, t.user_id, t.category_id, c.name, t.title, t.description,
		t.status, t.priority, t.due_date, t.remind_at, t.reminder_sent,
		t.created_at, t.updated_at,
		COALESCE((
			SELECT JSON_AGG(tg.name ORDER BY tg.name)
			FROM task_tags tt JOIN tags tg ON tg.id = tt.tag_id
			WHERE tt.task_id = t.id
		), '[]'::json) AS tag_names
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id`

const priorityRank = `CASE t.priority WHEN 'Low' THEN 1 WHEN 'Medium' THEN 2 WHEN 'High' THEN 3 END`

// PostgresTaskStore implements the store.TaskStore interface.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, category_id, title, description, status, priority,
			due_date, remind_at, reminder_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		nullUUID(task.CategoryID),
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.RemindAt,
		task.ReminderSent,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return MapError(err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// Get implements store.TaskStore.Get
func (s *PostgresTaskStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := buildListQuery(userID, filter)
	if err != nil {
		return nil, err
	}

	tasks, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
			due_date = $5, remind_at = $6, reminder_sent = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.RemindAt,
		task.ReminderSent,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "exec failed",
			fmt.Errorf("%w: %w", store.ErrUpdateFailed, MapError(err)))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "delete", "exec failed",
			fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err)))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// SetCategory implements store.TaskStore.SetCategory
func (s *PostgresTaskStore) SetCategory(ctx context.Context, userID, taskID, categoryID uuid.UUID) error {
	query := `UPDATE tasks SET category_id = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	result, err := s.db.ExecContext(ctx, query, categoryID, time.Now().UTC(), taskID, userID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrCategoryNotFound
		}
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// ReplaceTags implements store.TaskStore.ReplaceTags.
// The delete and insert must share a transaction for the swap to be atomic.
func (s *PostgresTaskStore) ReplaceTags(ctx context.Context, userID, taskID uuid.UUID, tagIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Touching the task first enforces ownership and locks the row
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET updated_at = $1 WHERE id = $2 AND user_id = $3`,
		time.Now().UTC(), taskID, userID)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		log.Error("failed to clear task tags", slog.String("error", err.Error()))
		return MapError(err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(tagIDs))
	args := make([]any, 0, len(tagIDs)+1)
	args = append(args, taskID)
	for i, id := range uniqueIDs(tagIDs) {
		placeholders = append(placeholders, fmt.Sprintf("($1, $%d)", i+2))
		args = append(args, id)
	}
	query := `INSERT INTO task_tags (task_id, tag_id) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrTagNotFound
		}
		log.Error("failed to insert task tags", slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Upcoming implements store.TaskStore.Upcoming
func (s *PostgresTaskStore) Upcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	query := taskSelect + `
		WHERE t.user_id = $1 AND t.remind_at IS NOT NULL
			AND t.remind_at >= $2 AND t.remind_at < $3
		ORDER BY t.remind_at ASC, t.id`
	return s.queryTasks(ctx, query, userID, from, to)
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// buildListQuery composes the filtered list statement with ? placeholders,
// expands slice arguments with sqlx.In, then rebinds to $n.
func buildListQuery(userID uuid.UUID, f store.TaskFilter) (string, []any, error) {
	where := []string{"t.user_id = ?"}
	args := []any{userID}

	if f.Status != nil {
		where = append(where, "t.status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Priority != nil {
		where = append(where, "t.priority = ?")
		args = append(args, string(*f.Priority))
	}
	if f.Category != "" {
		where = append(where, "c.name = ?")
		args = append(args, f.Category)
	}
	if f.CategoryID != nil {
		where = append(where, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if len(f.Tags) > 0 {
		where = append(where, `EXISTS (
			SELECT 1 FROM task_tags ft JOIN tags fg ON fg.id = ft.tag_id
			WHERE ft.task_id = t.id AND fg.name IN (?))`)
		args = append(args, f.Tags)
	}
	if f.TagID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM task_tags ft WHERE ft.task_id = t.id AND ft.tag_id = ?)")
		args = append(args, *f.TagID)
	}
	if f.DueFrom != nil {
		where = append(where, "t.due_date >= ?")
		args = append(args, f.DueFrom.UTC())
	}
	if f.DueTo != nil {
		where = append(where, "t.due_date < ?")
		args = append(args, f.DueTo.UTC())
	}
	if f.Search != "" {
		where = append(where, `(t.title ILIKE ? ESCAPE '\' OR t.description ILIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(f.Search) + "%"
		args = append(args, pattern, pattern)
	}

	query := taskSelect + "\n\tWHERE " + strings.Join(where, "\n\t\tAND ") + "\n\tORDER BY " + orderClause(f.Ordering)

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand list arguments: %w", err)
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}

// orderClause renders an allow-listed ordering. Ties break newest first.
func orderClause(o store.TaskOrdering) string {
	dir := "ASC"
	if o.Descending {
		dir = "DESC"
	}

	switch o.Field {
	case store.OrderByPriority:
		return priorityRank + " " + dir + ", t.created_at DESC, t.id"
	case store.OrderByDueDate:
		return "t.due_date " + dir + ", t.created_at DESC, t.id"
	case store.OrderByCreatedAt:
		return "t.created_at " + dir + ", t.id"
	default:
		return "t.created_at DESC, t.id"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t            domain.Task
		categoryID   uuid.NullUUID
		categoryName sql.NullString
		description  sql.NullString
		dueDate      sql.NullTime
		remindAt     sql.NullTime
		status       string
		priority     string
		tagNames     []byte
	)

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&categoryID,
		&categoryName,
		&t.Title,
		&description,
		&status,
		&priority,
		&dueDate,
		&remindAt,
		&t.ReminderSent,
		&t.CreatedAt,
		&t.UpdatedAt,
		&tagNames,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	if categoryID.Valid {
		id := categoryID.UUID
		t.CategoryID = &id
	}
	if categoryName.Valid {
		t.CategoryName = &categoryName.String
	}
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		v := dueDate.Time.UTC()
		t.DueDate = &v
	}
	if remindAt.Valid {
		v := remindAt.Time.UTC()
		t.RemindAt = &v
	}

	t.TagNames = []string{}
	if len(tagNames) > 0 {
		if err := json.Unmarshal(tagNames, &t.TagNames); err != nil {
			return nil, fmt.Errorf("failed to decode tag names: %w", err)
		}
	}
	return &t, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
