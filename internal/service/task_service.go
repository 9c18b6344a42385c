package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// DefaultReminderWindow bounds the upcoming reminders query.
const DefaultReminderWindow = 24 * time.Hour

// CategoryRef names the category to assign, by ID or by name.
// ID wins when both are set; a name is created if absent.
type CategoryRef struct {
	ID   *uuid.UUID
	Name string
}

// TagRefs names the tags to assign, by IDs or by names.
// IDs win when both are set; names are created if absent.
type TagRefs struct {
	IDs   []uuid.UUID
	Names []string
}

// TaskService provides the task use cases. Every method is scoped to the
// calling user; another user's task is reported as store.ErrTaskNotFound.
type TaskService interface {
	List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error)
	Create(ctx context.Context, userID uuid.UUID, input domain.TaskPatch) (*domain.Task, error)

	// Get returns a task and records that it was retrieved.
	Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// Replace applies input after filling absent fields from the reset table.
	// body is the raw request, recorded in the activity entry.
	Replace(ctx context.Context, userID, taskID uuid.UUID, input domain.TaskPatch, body json.RawMessage) (*domain.Task, error)

	// Patch applies only the fields present in input.
	Patch(ctx context.Context, userID, taskID uuid.UUID, input domain.TaskPatch, body json.RawMessage) (*domain.Task, error)

	// Delete records the deletion and then removes the task.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	AssignCategory(ctx context.Context, userID, taskID uuid.UUID, ref CategoryRef) (*domain.Task, *domain.Category, error)

	// AssignTags replaces the task's whole tag set.
	AssignTags(ctx context.Context, userID, taskID uuid.UUID, refs TagRefs) (*domain.Task, []*domain.Tag, error)

	// Logs returns the caller's entries for a task, newest first.
	// A task the caller does not own is store.ErrTaskNotFound; an owned
	// task with no entries is ErrNoActivity.
	Logs(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.ActivityLog, error)

	// SetReminder sets or clears remind_at. A new time re-arms delivery.
	SetReminder(ctx context.Context, userID, taskID uuid.UUID, at *time.Time) (*domain.Task, error)

	// UpcomingReminders lists tasks whose reminder falls within the window.
	UpcomingReminders(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
}

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	tasks          store.TaskStore
	categories     store.CategoryStore
	tags           store.TagStore
	activity       store.ActivityStore
	runInTx        txRunner
	reminderWindow time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// TaskServiceDeps groups the stores TaskServiceImpl coordinates.
type TaskServiceDeps struct {
	DB         *sql.DB
	Tasks      store.TaskStore
	Categories store.CategoryStore
	Tags       store.TagStore
	Activity   store.ActivityStore
}

// NewTaskService creates a new TaskService. A non-positive reminderWindow
// selects DefaultReminderWindow.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(deps TaskServiceDeps, reminderWindow time.Duration, logger *slog.Logger) (*TaskServiceImpl, error) {
	switch {
	case deps.DB == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case deps.Tasks == nil:
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	case deps.Categories == nil:
		return nil, domain.NewValidationError("categories", "cannot be nil", domain.ErrValidation)
	case deps.Tags == nil:
		return nil, domain.NewValidationError("tags", "cannot be nil", domain.ErrValidation)
	case deps.Activity == nil:
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	if reminderWindow <= 0 {
		reminderWindow = DefaultReminderWindow
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskServiceImpl{
		tasks:          deps.Tasks,
		categories:     deps.Categories,
		tags:           deps.Tags,
		activity:       deps.Activity,
		runInTx:        newTxRunner(deps.DB),
		reminderWindow: reminderWindow,
		now:            time.Now,
		logger:         logger.With(slog.String("component", "task_service")),
	}, nil
}

// txStores is the set of stores bound to one transaction.
type txStores struct {
	tasks      store.TaskStore
	categories store.CategoryStore
	tags       store.TagStore
	activity   store.ActivityStore
}

func (s *TaskServiceImpl) inTx(ctx context.Context, fn func(ctx context.Context, st txStores) error) error {
	return s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, txStores{
			tasks:      s.tasks.WithTx(tx),
			categories: s.categories.WithTx(tx),
			tags:       s.tags.WithTx(tx),
			activity:   s.activity.WithTx(tx),
		})
	})
}

func record(ctx context.Context, st txStores, taskID, userID uuid.UUID, action domain.ActivityAction, details any) error {
	entry, err := domain.NewActivityLog(taskID, userID, action, details)
	if err != nil {
		return err
	}
	if err := st.activity.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s activity: %w", action, err)
	}
	return nil
}

// wrap passes expected errors through and wraps everything else.
func (s *TaskServiceImpl) wrap(ctx context.Context, op string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Error("task operation failed", append([]any{
		slog.String("operation", op),
		slog.String("error", err.Error()),
	}, attrs...)...)
	return NewServiceError("task", op, "", err)
}

// List implements TaskService.List
func (s *TaskServiceImpl) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		return nil, s.wrap(ctx, "list", err, slog.String("user_id", userID.String()))
	}
	return tasks, nil
}

// Create implements TaskService.Create
func (s *TaskServiceImpl) Create(ctx context.Context, userID uuid.UUID, input domain.TaskPatch) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(ctx context.Context, st txStores) error {
		if err := st.tasks.Create(ctx, task); err != nil {
			return err
		}
		return record(ctx, st, task.ID, userID, domain.ActionCreated, map[string]string{"title": task.Title})
	})
	if err != nil {
		return nil, s.wrap(ctx, "create", err, slog.String("user_id", userID.String()))
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// Get implements TaskService.Get
func (s *TaskServiceImpl) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	var task *domain.Task
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		var err error
		if task, err = st.tasks.Get(ctx, userID, taskID); err != nil {
			return err
		}
		return record(ctx, st, taskID, userID, domain.ActionRetrieved, nil)
	})
	if err != nil {
		return nil, s.wrap(ctx, "get", err, slog.String("task_id", taskID.String()))
	}
	return task, nil
}

// Replace implements TaskService.Replace
func (s *TaskServiceImpl) Replace(
	ctx context.Context,
	userID, taskID uuid.UUID,
	input domain.TaskPatch,
	body json.RawMessage,
) (*domain.Task, error) {
	return s.update(ctx, "replace", userID, taskID, input.WithResets(), body)
}

// Patch implements TaskService.Patch
func (s *TaskServiceImpl) Patch(
	ctx context.Context,
	userID, taskID uuid.UUID,
	input domain.TaskPatch,
	body json.RawMessage,
) (*domain.Task, error) {
	return s.update(ctx, "patch", userID, taskID, input, body)
}

func (s *TaskServiceImpl) update(
	ctx context.Context,
	op string,
	userID, taskID uuid.UUID,
	patch domain.TaskPatch,
	body json.RawMessage,
) (*domain.Task, error) {
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}

	var task *domain.Task
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		var err error
		if task, err = st.tasks.Get(ctx, userID, taskID); err != nil {
			return err
		}
		if err := task.Apply(patch); err != nil {
			return err
		}
		if err := st.tasks.Update(ctx, task); err != nil {
			return err
		}
		return record(ctx, st, taskID, userID, domain.ActionUpdated,
			map[string]json.RawMessage{"updated_fields": body})
	})
	if err != nil {
		return nil, s.wrap(ctx, op, err, slog.String("task_id", taskID.String()))
	}
	return task, nil
}

// Delete implements TaskService.Delete
func (s *TaskServiceImpl) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		task, err := st.tasks.Get(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if err := record(ctx, st, taskID, userID, domain.ActionDeleted, map[string]string{"title": task.Title}); err != nil {
			return err
		}
		return st.tasks.Delete(ctx, userID, taskID)
	})
	if err != nil {
		return s.wrap(ctx, "delete", err, slog.String("task_id", taskID.String()))
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// AssignCategory implements TaskService.AssignCategory
func (s *TaskServiceImpl) AssignCategory(
	ctx context.Context,
	userID, taskID uuid.UUID,
	ref CategoryRef,
) (*domain.Task, *domain.Category, error) {
	if ref.ID == nil && ref.Name == "" {
		return nil, nil, domain.NewValidationError("category_id", "This field is required.", nil)
	}

	var task *domain.Task
	var category *domain.Category
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		var err error
		if task, err = st.tasks.Get(ctx, userID, taskID); err != nil {
			return err
		}

		if ref.ID != nil {
			category, err = st.categories.Get(ctx, *ref.ID)
			if errors.Is(err, store.ErrCategoryNotFound) {
				return domain.NewValidationError("category_id", "Category not found.", nil)
			}
		} else {
			category, _, err = st.categories.GetOrCreate(ctx, ref.Name)
		}
		if err != nil {
			return err
		}

		if err := st.tasks.SetCategory(ctx, userID, taskID, category.ID); err != nil {
			return err
		}
		return record(ctx, st, taskID, userID, domain.ActionCategoryAdded, map[string]string{"category": category.Name})
	})
	if err != nil {
		return nil, nil, s.wrap(ctx, "assign_category", err, slog.String("task_id", taskID.String()))
	}

	task.CategoryID = &category.ID
	name := category.Name
	task.CategoryName = &name
	return task, category, nil
}

// AssignTags implements TaskService.AssignTags
func (s *TaskServiceImpl) AssignTags(
	ctx context.Context,
	userID, taskID uuid.UUID,
	refs TagRefs,
) (*domain.Task, []*domain.Tag, error) {
	if len(refs.IDs) == 0 && len(refs.Names) == 0 {
		return nil, nil, domain.NewValidationError("tags", "This list may not be empty.", nil)
	}

	var task *domain.Task
	var tags []*domain.Tag
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		var err error
		if task, err = st.tasks.Get(ctx, userID, taskID); err != nil {
			return err
		}

		if len(refs.IDs) > 0 {
			tags, err = resolveTagIDs(ctx, st.tags, refs.IDs)
		} else {
			tags, err = resolveTagNames(ctx, st.tags, refs.Names)
		}
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(tags))
		for _, tag := range tags {
			ids = append(ids, tag.ID)
		}
		if err := st.tasks.ReplaceTags(ctx, userID, taskID, ids); err != nil {
			return err
		}
		return record(ctx, st, taskID, userID, domain.ActionTagAdded, map[string][]string{"tags": tagNames(tags)})
	})
	if err != nil {
		return nil, nil, s.wrap(ctx, "assign_tags", err, slog.String("task_id", taskID.String()))
	}

	task.TagNames = tagNames(tags)
	sort.Strings(task.TagNames)
	return task, tags, nil
}

// resolveTagIDs loads every tag in ids, reporting all unknown IDs at once.
func resolveTagIDs(ctx context.Context, tags store.TagStore, ids []uuid.UUID) ([]*domain.Tag, error) {
	found, err := tags.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]bool, len(found))
	for _, tag := range found {
		known[tag.ID] = true
	}
	var missing []string
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !known[id] && !seen[id] {
			missing = append(missing, id.String())
		}
		seen[id] = true
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("tags", fmt.Sprintf("Tags not found: %v", missing), nil)
	}
	return found, nil
}

func resolveTagNames(ctx context.Context, tags store.TagStore, names []string) ([]*domain.Tag, error) {
	out := make([]*domain.Tag, 0, len(names))
	seen := make(map[uuid.UUID]bool, len(names))
	for _, name := range names {
		tag, _, err := tags.GetOrCreate(ctx, name)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				return nil, domain.NewValidationError("tag_names", ve.Message, nil)
			}
			return nil, err
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			out = append(out, tag)
		}
	}
	return out, nil
}

func tagNames(tags []*domain.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

// Logs implements TaskService.Logs
func (s *TaskServiceImpl) Logs(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.ActivityLog, error) {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, s.wrap(ctx, "logs", err, slog.String("task_id", taskID.String()))
	}
	entries, err := s.activity.ListByTask(ctx, userID, taskID)
	if err != nil {
		return nil, s.wrap(ctx, "logs", err, slog.String("task_id", taskID.String()))
	}
	if len(entries) == 0 {
		return nil, ErrNoActivity
	}
	return entries, nil
}

// SetReminder implements TaskService.SetReminder
func (s *TaskServiceImpl) SetReminder(ctx context.Context, userID, taskID uuid.UUID, at *time.Time) (*domain.Task, error) {
	var task *domain.Task
	err := s.inTx(ctx, func(ctx context.Context, st txStores) error {
		var err error
		if task, err = st.tasks.Get(ctx, userID, taskID); err != nil {
			return err
		}
		if err := task.Apply(domain.TaskPatch{RemindAt: domain.Some(at)}); err != nil {
			return err
		}
		return st.tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, s.wrap(ctx, "set_reminder", err, slog.String("task_id", taskID.String()))
	}
	return task, nil
}

// UpcomingReminders implements TaskService.UpcomingReminders
func (s *TaskServiceImpl) UpcomingReminders(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	now := s.now().UTC()
	tasks, err := s.tasks.Upcoming(ctx, userID, now, now.Add(s.reminderWindow))
	if err != nil {
		return nil, s.wrap(ctx, "upcoming_reminders", err, slog.String("user_id", userID.String()))
	}
	return tasks, nil
}
