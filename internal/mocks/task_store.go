package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
// The defaults keep tasks in memory and honour ownership, but ignore
// filters and ordering.
type MockTaskStore struct {
	CreateFn      func(ctx context.Context, task *domain.Task) error
	GetFn         func(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)
	ListFn        func(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateFn      func(ctx context.Context, task *domain.Task) error
	DeleteFn      func(ctx context.Context, userID, id uuid.UUID) error
	SetCategoryFn func(ctx context.Context, userID, taskID, categoryID uuid.UUID) error
	ReplaceTagsFn func(ctx context.Context, userID, taskID uuid.UUID, tagIDs []uuid.UUID) error
	UpcomingFn    func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error)

	Tasks map[uuid.UUID]*domain.Task
	// TagIDs records the last ReplaceTags call per task.
	TagIDs map[uuid.UUID][]uuid.UUID
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks:  make(map[uuid.UUID]*domain.Task),
		TagIDs: make(map[uuid.UUID][]uuid.UUID),
	}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements store.TaskStore
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	cp := *task
	m.Tasks[task.ID] = &cp
	return nil
}

// Get implements store.TaskStore. The default returns a copy.
func (m *MockTaskStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	task, ok := m.Tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

// List implements store.TaskStore
func (m *MockTaskStore) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, filter)
	}
	var out []*domain.Task
	for _, task := range m.Tasks {
		if task.UserID == userID {
			cp := *task
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Update implements store.TaskStore
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	existing, ok := m.Tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	if err := task.Validate(); err != nil {
		return err
	}
	cp := *task
	m.Tasks[task.ID] = &cp
	return nil
}

// Delete implements store.TaskStore
func (m *MockTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	task, ok := m.Tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// SetCategory implements store.TaskStore
func (m *MockTaskStore) SetCategory(ctx context.Context, userID, taskID, categoryID uuid.UUID) error {
	if m.SetCategoryFn != nil {
		return m.SetCategoryFn(ctx, userID, taskID, categoryID)
	}
	task, ok := m.Tasks[taskID]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	id := categoryID
	task.CategoryID = &id
	return nil
}

// ReplaceTags implements store.TaskStore
func (m *MockTaskStore) ReplaceTags(ctx context.Context, userID, taskID uuid.UUID, tagIDs []uuid.UUID) error {
	if m.ReplaceTagsFn != nil {
		return m.ReplaceTagsFn(ctx, userID, taskID, tagIDs)
	}
	task, ok := m.Tasks[taskID]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	m.TagIDs[taskID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

// Upcoming implements store.TaskStore
func (m *MockTaskStore) Upcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	if m.UpcomingFn != nil {
		return m.UpcomingFn(ctx, userID, from, to)
	}
	var out []*domain.Task
	for _, task := range m.Tasks {
		if task.UserID != userID || task.RemindAt == nil {
			continue
		}
		if !task.RemindAt.Before(from) && task.RemindAt.Before(to) {
			cp := *task
			out = append(out, &cp)
		}
	}
	return out, nil
}

// WithTx implements store.TaskStore
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}
