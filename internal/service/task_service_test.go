package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/mocks"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	svc        *service.TaskServiceImpl
	mock       sqlmock.Sqlmock
	tasks      *mocks.MockTaskStore
	categories *mocks.MockCategoryStore
	tags       *mocks.MockTagStore
	activity   *mocks.MockActivityStore
	userID     uuid.UUID
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	db, mock := newTxDB(t)
	f := &taskFixture{
		mock:       mock,
		tasks:      mocks.NewMockTaskStore(),
		categories: &mocks.MockCategoryStore{},
		tags:       &mocks.MockTagStore{},
		activity:   &mocks.MockActivityStore{},
		userID:     uuid.New(),
	}
	svc, err := service.NewTaskService(service.TaskServiceDeps{
		DB:         db,
		Tasks:      f.tasks,
		Categories: f.categories,
		Tags:       f.tags,
		Activity:   f.activity,
	}, 0, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// seed stores a task for the fixture's user without touching the database.
func (f *taskFixture) seed(t *testing.T) *domain.Task {
	t.Helper()
	due := time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC)
	task, err := domain.NewTask(f.userID, domain.TaskPatch{
		Title:       domain.Some("Write report"),
		Description: domain.Some(strPtr("x")),
		Status:      domain.Some(domain.StatusIncomplete),
		Priority:    domain.Some(domain.PriorityHigh),
		DueDate:     domain.Some(&due),
	})
	require.NoError(t, err)
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

func (f *taskFixture) expectCommit() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func (f *taskFixture) expectRollback() {
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
}

func TestNewTaskServiceRequiresDeps(t *testing.T) {
	t.Parallel()

	db, _ := newTxDB(t)
	full := service.TaskServiceDeps{
		DB:         db,
		Tasks:      mocks.NewMockTaskStore(),
		Categories: &mocks.MockCategoryStore{},
		Tags:       &mocks.MockTagStore{},
		Activity:   &mocks.MockActivityStore{},
	}

	tests := map[string]func(d *service.TaskServiceDeps){
		"db":         func(d *service.TaskServiceDeps) { d.DB = nil },
		"tasks":      func(d *service.TaskServiceDeps) { d.Tasks = nil },
		"categories": func(d *service.TaskServiceDeps) { d.Categories = nil },
		"tags":       func(d *service.TaskServiceDeps) { d.Tags = nil },
		"activity":   func(d *service.TaskServiceDeps) { d.Activity = nil },
	}
	for field, drop := range tests {
		t.Run(field, func(t *testing.T) {
			deps := full
			drop(&deps)
			_, err := service.NewTaskService(deps, time.Hour, nil)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, domain.FieldErrors(err), field)
		})
	}
}

func TestCreateTaskRecordsActivity(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	f.expectCommit()

	task, err := f.svc.Create(context.Background(), f.userID, domain.TaskPatch{
		Title:    domain.Some("Buy milk"),
		Status:   domain.Some(domain.StatusIncomplete),
		Priority: domain.Some(domain.PriorityLow),
	})

	require.NoError(t, err)
	assert.Contains(t, f.tasks.Tasks, task.ID)
	require.Len(t, f.activity.Entries, 1)
	entry := f.activity.Entries[0]
	assert.Equal(t, domain.ActionCreated, entry.Action)
	assert.Equal(t, task.ID, *entry.TaskID)
	assert.Equal(t, f.userID, entry.UserID)
	assert.JSONEq(t, `{"title":"Buy milk"}`, string(entry.Details))
}

func TestCreateTaskMissingFieldsWritesNothing(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)

	_, err := f.svc.Create(context.Background(), f.userID, domain.TaskPatch{
		Description: domain.Some(strPtr("no title")),
	})

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.tasks.Tasks)
	assert.Empty(t, f.activity.Entries)
}

func TestCreateTaskRollsBackWhenActivityFails(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	f.activity.CreateFn = func(context.Context, *domain.ActivityLog) error { return errors.New("boom") }
	f.expectRollback()

	_, err := f.svc.Create(context.Background(), f.userID, domain.TaskPatch{
		Title:    domain.Some("Buy milk"),
		Status:   domain.Some(domain.StatusIncomplete),
		Priority: domain.Some(domain.PriorityLow),
	})

	var svcErr *service.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "create", svcErr.Operation)
}

func TestGetTaskRecordsRetrieval(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	seeded := f.seed(t)
	f.expectCommit()

	task, err := f.svc.Get(context.Background(), f.userID, seeded.ID)

	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, []domain.ActivityAction{domain.ActionRetrieved}, f.activity.Actions())
	assert.Nil(t, f.activity.Entries[0].Details)
}

func TestGetTaskOwnedByAnotherUser(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	seeded := f.seed(t)
	f.expectRollback()

	_, err := f.svc.Get(context.Background(), uuid.New(), seeded.ID)

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Empty(t, f.activity.Entries)
}

func TestReplaceResetsAndPatchKeepsOmittedFields(t *testing.T) {
	t.Parallel()

	body := json.RawMessage(`{"title":"t","status":"Completed","priority":"Low"}`)
	input := domain.TaskPatch{
		Title:    domain.Some("t"),
		Status:   domain.Some(domain.StatusCompleted),
		Priority: domain.Some(domain.PriorityLow),
	}

	t.Run("replace", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		f.expectCommit()

		task, err := f.svc.Replace(context.Background(), f.userID, seeded.ID, input, body)

		require.NoError(t, err)
		assert.Nil(t, task.Description)
		assert.Nil(t, task.DueDate)
		assert.Nil(t, f.tasks.Tasks[seeded.ID].Description)
	})

	t.Run("patch", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		f.expectCommit()

		task, err := f.svc.Patch(context.Background(), f.userID, seeded.ID, input, body)

		require.NoError(t, err)
		require.NotNil(t, task.Description)
		assert.Equal(t, "x", *task.Description)
		assert.NotNil(t, task.DueDate)
		assert.Equal(t, domain.StatusCompleted, f.tasks.Tasks[seeded.ID].Status)

		require.Len(t, f.activity.Entries, 1)
		assert.Equal(t, domain.ActionUpdated, f.activity.Entries[0].Action)
		assert.JSONEq(t, `{"updated_fields":{"title":"t","status":"Completed","priority":"Low"}}`,
			string(f.activity.Entries[0].Details))
	})
}

func TestPatchInvalidLeavesTaskUntouched(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	seeded := f.seed(t)
	f.expectRollback()

	_, err := f.svc.Patch(context.Background(), f.userID, seeded.ID,
		domain.TaskPatch{Title: domain.Some("")}, json.RawMessage(`{"title":""}`))

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Write report", f.tasks.Tasks[seeded.ID].Title)
	assert.Empty(t, f.activity.Entries)
}

func TestEmptyPatchRecordsEmptyObject(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	seeded := f.seed(t)
	f.expectCommit()

	_, err := f.svc.Patch(context.Background(), f.userID, seeded.ID, domain.TaskPatch{}, nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"updated_fields":{}}`, string(f.activity.Entries[0].Details))
}

func TestDeleteRecordsBeforeRemoving(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	seeded := f.seed(t)
	f.expectCommit()

	var loggedFirst bool
	f.tasks.DeleteFn = func(_ context.Context, userID, id uuid.UUID) error {
		loggedFirst = len(f.activity.Entries) == 1
		delete(f.tasks.Tasks, id)
		return nil
	}

	require.NoError(t, f.svc.Delete(context.Background(), f.userID, seeded.ID))

	assert.True(t, loggedFirst)
	assert.NotContains(t, f.tasks.Tasks, seeded.ID)
	assert.Equal(t, []domain.ActivityAction{domain.ActionDeleted}, f.activity.Actions())
	assert.JSONEq(t, `{"title":"Write report"}`, string(f.activity.Entries[0].Details))
}

func TestDeleteNotOwned(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	seeded := f.seed(t)
	f.expectRollback()

	err := f.svc.Delete(context.Background(), uuid.New(), seeded.ID)

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Contains(t, f.tasks.Tasks, seeded.ID)
}

func TestAssignCategory(t *testing.T) {
	t.Parallel()

	t.Run("by id", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		work, _, err := f.categories.GetOrCreate(context.Background(), "Work")
		require.NoError(t, err)
		f.expectCommit()

		task, category, err := f.svc.AssignCategory(context.Background(), f.userID, seeded.ID,
			service.CategoryRef{ID: &work.ID})

		require.NoError(t, err)
		assert.Equal(t, work.ID, category.ID)
		assert.Equal(t, "Work", *task.CategoryName)
		assert.Equal(t, work.ID, *f.tasks.Tasks[seeded.ID].CategoryID)
		assert.Equal(t, []domain.ActivityAction{domain.ActionCategoryAdded}, f.activity.Actions())
		assert.JSONEq(t, `{"category":"Work"}`, string(f.activity.Entries[0].Details))
	})

	t.Run("by name creates", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		f.expectCommit()

		_, category, err := f.svc.AssignCategory(context.Background(), f.userID, seeded.ID,
			service.CategoryRef{Name: "  Home "})

		require.NoError(t, err)
		assert.Equal(t, "Home", category.Name)
		assert.Len(t, f.categories.Categories, 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		f.expectRollback()

		id := uuid.New()
		_, _, err := f.svc.AssignCategory(context.Background(), f.userID, seeded.ID, service.CategoryRef{ID: &id})

		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Category not found.", domain.FieldErrors(err)["category_id"])
		assert.Empty(t, f.activity.Entries)
	})

	t.Run("missing reference", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)

		_, _, err := f.svc.AssignCategory(context.Background(), f.userID, seeded.ID, service.CategoryRef{})

		assert.Equal(t, "This field is required.", domain.FieldErrors(err)["category_id"])
	})

	t.Run("task not owned", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		f.expectRollback()

		_, _, err := f.svc.AssignCategory(context.Background(), uuid.New(), seeded.ID, service.CategoryRef{Name: "Work"})

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.Empty(t, f.categories.Categories)
	})
}

func TestAssignTags(t *testing.T) {
	t.Parallel()

	t.Run("by ids replaces set", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		urgent, _, _ := f.tags.GetOrCreate(context.Background(), "Urgent")
		important, _, _ := f.tags.GetOrCreate(context.Background(), "Important")
		f.expectCommit()

		task, tags, err := f.svc.AssignTags(context.Background(), f.userID, seeded.ID,
			service.TagRefs{IDs: []uuid.UUID{urgent.ID, important.ID}})

		require.NoError(t, err)
		assert.Len(t, tags, 2)
		assert.Equal(t, []string{"Important", "Urgent"}, task.TagNames)
		assert.ElementsMatch(t, []uuid.UUID{urgent.ID, important.ID}, f.tasks.TagIDs[seeded.ID])
		assert.Equal(t, []domain.ActivityAction{domain.ActionTagAdded}, f.activity.Actions())
	})

	t.Run("by names dedupes", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		f.expectCommit()

		_, tags, err := f.svc.AssignTags(context.Background(), f.userID, seeded.ID,
			service.TagRefs{Names: []string{"Urgent", " Urgent", "Home"}})

		require.NoError(t, err)
		assert.Len(t, tags, 2)
		assert.Len(t, f.tags.Tags, 2)
	})

	t.Run("unknown ids", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		known, _, _ := f.tags.GetOrCreate(context.Background(), "Urgent")
		missing := uuid.New()
		f.expectRollback()

		_, _, err := f.svc.AssignTags(context.Background(), f.userID, seeded.ID,
			service.TagRefs{IDs: []uuid.UUID{known.ID, missing}})

		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Tags not found: ["+missing.String()+"]", domain.FieldErrors(err)["tags"])
		assert.Empty(t, f.tasks.TagIDs)
	})

	t.Run("empty", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)

		_, _, err := f.svc.AssignTags(context.Background(), f.userID, seeded.ID, service.TagRefs{})

		assert.Equal(t, "This list may not be empty.", domain.FieldErrors(err)["tags"])
	})

	t.Run("blank name", func(t *testing.T) {
		f := newTaskFixture(t)
		seeded := f.seed(t)
		f.expectRollback()

		_, _, err := f.svc.AssignTags(context.Background(), f.userID, seeded.ID,
			service.TagRefs{Names: []string{"  "}})

		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, domain.FieldErrors(err), "tag_names")
	})
}

func TestLogs(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	seeded := f.seed(t)

	_, err := f.svc.Logs(context.Background(), f.userID, seeded.ID)
	assert.ErrorIs(t, err, service.ErrNoActivity)
	assert.ErrorIs(t, err, store.ErrNotFound)

	f.expectCommit()
	_, err = f.svc.Get(context.Background(), f.userID, seeded.ID)
	require.NoError(t, err)
	f.expectCommit()
	_, err = f.svc.Patch(context.Background(), f.userID, seeded.ID, domain.TaskPatch{Title: domain.Some("new")}, nil)
	require.NoError(t, err)

	entries, err := f.svc.Logs(context.Background(), f.userID, seeded.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionUpdated, entries[0].Action)
	assert.Equal(t, domain.ActionRetrieved, entries[1].Action)

	_, err = f.svc.Logs(context.Background(), uuid.New(), seeded.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.NotErrorIs(t, err, service.ErrNoActivity)

	_, err = f.svc.Logs(context.Background(), f.userID, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestSetReminder(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	seeded := f.seed(t)
	f.tasks.Tasks[seeded.ID].ReminderSent = true
	at := time.Date(2030, 5, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	f.expectCommit()

	task, err := f.svc.SetReminder(context.Background(), f.userID, seeded.ID, &at)

	require.NoError(t, err)
	require.NotNil(t, task.RemindAt)
	assert.True(t, task.RemindAt.Equal(at))
	assert.Equal(t, time.UTC, task.RemindAt.Location())
	assert.False(t, f.tasks.Tasks[seeded.ID].ReminderSent)
	assert.Empty(t, f.activity.Entries)

	f.expectCommit()
	task, err = f.svc.SetReminder(context.Background(), f.userID, seeded.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, task.RemindAt)
}

func TestUpcomingRemindersWindow(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	f.svc.SetClock(func() time.Time { return now })

	var gotFrom, gotTo time.Time
	f.tasks.UpcomingFn = func(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
		assert.Equal(t, f.userID, userID)
		gotFrom, gotTo = from, to
		return nil, nil
	}

	_, err := f.svc.UpcomingReminders(context.Background(), f.userID)

	require.NoError(t, err)
	assert.Equal(t, now, gotFrom)
	assert.Equal(t, now.Add(service.DefaultReminderWindow), gotTo)
}

func TestUpcomingRemindersSelectsWindow(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	now := time.Now().UTC()
	f.svc.SetClock(func() time.Time { return now })

	inWindow, later, past := f.seed(t), f.seed(t), f.seed(t)
	soon, tomorrow, earlier := now.Add(time.Hour), now.Add(25*time.Hour), now.Add(-time.Minute)
	f.tasks.Tasks[inWindow.ID].RemindAt = &soon
	f.tasks.Tasks[later.ID].RemindAt = &tomorrow
	f.tasks.Tasks[past.ID].RemindAt = &earlier

	tasks, err := f.svc.UpcomingReminders(context.Background(), f.userID)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, inWindow.ID, tasks[0].ID)
}

func TestListWrapsStoreFailures(t *testing.T) {
	t.Parallel()

	f := newTaskFixture(t)
	f.tasks.ListFn = func(context.Context, uuid.UUID, store.TaskFilter) ([]*domain.Task, error) {
		return nil, errors.New("connection reset")
	}

	_, err := f.svc.List(context.Background(), f.userID, store.TaskFilter{})

	var svcErr *service.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "task", svcErr.Service)
	assert.Equal(t, "list", svcErr.Operation)
}
