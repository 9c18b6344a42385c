package mocks

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockUserService implements service.UserService for testing.
// Methods without a function field return zero values.
type MockUserService struct {
	RegisterFn     func(ctx context.Context, input service.RegisterInput) (*domain.User, error)
	AuthenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	GetProfileFn   func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

var _ service.UserService = (*MockUserService)(nil)

// Register implements service.UserService
func (m *MockUserService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, input)
	}
	return nil, nil
}

// Authenticate implements service.UserService
func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, email, password)
	}
	return nil, service.ErrInvalidCredentials
}

// GetProfile implements service.UserService
func (m *MockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetProfileFn != nil {
		return m.GetProfileFn(ctx, userID)
	}
	return nil, store.ErrUserNotFound
}

// MockTaskService implements service.TaskService for testing.
// Methods without a function field report store.ErrTaskNotFound.
type MockTaskService struct {
	ListFn              func(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error)
	CreateFn            func(ctx context.Context, userID uuid.UUID, input domain.TaskPatch) (*domain.Task, error)
	GetFn               func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	ReplaceFn           func(ctx context.Context, userID, taskID uuid.UUID, input domain.TaskPatch, body json.RawMessage) (*domain.Task, error)
	PatchFn             func(ctx context.Context, userID, taskID uuid.UUID, input domain.TaskPatch, body json.RawMessage) (*domain.Task, error)
	DeleteFn            func(ctx context.Context, userID, taskID uuid.UUID) error
	AssignCategoryFn    func(ctx context.Context, userID, taskID uuid.UUID, ref service.CategoryRef) (*domain.Task, *domain.Category, error)
	AssignTagsFn        func(ctx context.Context, userID, taskID uuid.UUID, refs service.TagRefs) (*domain.Task, []*domain.Tag, error)
	LogsFn              func(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.ActivityLog, error)
	SetReminderFn       func(ctx context.Context, userID, taskID uuid.UUID, at *time.Time) (*domain.Task, error)
	UpcomingRemindersFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
}

var _ service.TaskService = (*MockTaskService)(nil)

// List implements service.TaskService
func (m *MockTaskService) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, filter)
	}
	return nil, nil
}

// Create implements service.TaskService
func (m *MockTaskService) Create(ctx context.Context, userID uuid.UUID, input domain.TaskPatch) (*domain.Task, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, input)
	}
	return domain.NewTask(userID, input)
}

// Get implements service.TaskService
func (m *MockTaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, taskID)
	}
	return nil, store.ErrTaskNotFound
}

// Replace implements service.TaskService
func (m *MockTaskService) Replace(
	ctx context.Context,
	userID, taskID uuid.UUID,
	input domain.TaskPatch,
	body json.RawMessage,
) (*domain.Task, error) {
	if m.ReplaceFn != nil {
		return m.ReplaceFn(ctx, userID, taskID, input, body)
	}
	return nil, store.ErrTaskNotFound
}

// Patch implements service.TaskService
func (m *MockTaskService) Patch(
	ctx context.Context,
	userID, taskID uuid.UUID,
	input domain.TaskPatch,
	body json.RawMessage,
) (*domain.Task, error) {
	if m.PatchFn != nil {
		return m.PatchFn(ctx, userID, taskID, input, body)
	}
	return nil, store.ErrTaskNotFound
}

// Delete implements service.TaskService
func (m *MockTaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, taskID)
	}
	return store.ErrTaskNotFound
}

// AssignCategory implements service.TaskService
func (m *MockTaskService) AssignCategory(
	ctx context.Context,
	userID, taskID uuid.UUID,
	ref service.CategoryRef,
) (*domain.Task, *domain.Category, error) {
	if m.AssignCategoryFn != nil {
		return m.AssignCategoryFn(ctx, userID, taskID, ref)
	}
	return nil, nil, store.ErrTaskNotFound
}

// AssignTags implements service.TaskService
func (m *MockTaskService) AssignTags(
	ctx context.Context,
	userID, taskID uuid.UUID,
	refs service.TagRefs,
) (*domain.Task, []*domain.Tag, error) {
	if m.AssignTagsFn != nil {
		return m.AssignTagsFn(ctx, userID, taskID, refs)
	}
	return nil, nil, store.ErrTaskNotFound
}

// Logs implements service.TaskService
func (m *MockTaskService) Logs(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.ActivityLog, error) {
	if m.LogsFn != nil {
		return m.LogsFn(ctx, userID, taskID)
	}
	return nil, service.ErrNoActivity
}

// SetReminder implements service.TaskService
func (m *MockTaskService) SetReminder(ctx context.Context, userID, taskID uuid.UUID, at *time.Time) (*domain.Task, error) {
	if m.SetReminderFn != nil {
		return m.SetReminderFn(ctx, userID, taskID, at)
	}
	return nil, store.ErrTaskNotFound
}

// UpcomingReminders implements service.TaskService
func (m *MockTaskService) UpcomingReminders(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if m.UpcomingRemindersFn != nil {
		return m.UpcomingRemindersFn(ctx, userID)
	}
	return nil, nil
}

// MockCategoryService implements service.CategoryService on top of a
// MockCategoryStore.
type MockCategoryService struct {
	Store MockCategoryStore
}

var _ service.CategoryService = (*MockCategoryService)(nil)

// List implements service.CategoryService
func (m *MockCategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return m.Store.List(ctx)
}

// Get implements service.CategoryService
func (m *MockCategoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return m.Store.Get(ctx, id)
}

// GetOrCreate implements service.CategoryService
func (m *MockCategoryService) GetOrCreate(ctx context.Context, name string) (*domain.Category, bool, error) {
	return m.Store.GetOrCreate(ctx, name)
}

// MockTagService implements service.TagService on top of a MockTagStore.
type MockTagService struct {
	Store MockTagStore
}

var _ service.TagService = (*MockTagService)(nil)

// List implements service.TagService
func (m *MockTagService) List(ctx context.Context) ([]*domain.Tag, error) {
	return m.Store.List(ctx)
}

// Get implements service.TagService
func (m *MockTagService) Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	return m.Store.Get(ctx, id)
}

// GetOrCreate implements service.TagService
func (m *MockTagService) GetOrCreate(ctx context.Context, name string) (*domain.Tag, bool, error) {
	return m.Store.GetOrCreate(ctx, name)
}

// MockActivityService implements service.ActivityService on top of a
// MockActivityStore.
type MockActivityService struct {
	Store *MockActivityStore
}

var _ service.ActivityService = (*MockActivityService)(nil)

// List implements service.ActivityService
func (m *MockActivityService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ActivityLog, error) {
	if limit <= 0 {
		limit = service.DefaultActivityLimit
	}
	return m.Store.ListByUser(ctx, userID, limit, offset)
}

// Get implements service.ActivityService
func (m *MockActivityService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.ActivityLog, error) {
	return m.Store.Get(ctx, userID, id)
}
