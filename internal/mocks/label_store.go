package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockCategoryStore implements store.CategoryStore for testing
type MockCategoryStore struct {
	GetOrCreateFn func(ctx context.Context, name string) (*domain.Category, bool, error)
	GetFn         func(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	ListFn        func(ctx context.Context) ([]*domain.Category, error)

	Categories []*domain.Category
}

var _ store.CategoryStore = (*MockCategoryStore)(nil)

// GetOrCreate implements store.CategoryStore
func (m *MockCategoryStore) GetOrCreate(ctx context.Context, name string) (*domain.Category, bool, error) {
	if m.GetOrCreateFn != nil {
		return m.GetOrCreateFn(ctx, name)
	}
	name, err := domain.NormalizeLabelName(name)
	if err != nil {
		return nil, false, err
	}
	for _, c := range m.Categories {
		if c.Name == name {
			return c, false, nil
		}
	}
	c, err := domain.NewCategory(name)
	if err != nil {
		return nil, false, err
	}
	m.Categories = append(m.Categories, c)
	return c, true, nil
}

// Get implements store.CategoryStore
func (m *MockCategoryStore) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	for _, c := range m.Categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

// List implements store.CategoryStore
func (m *MockCategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return m.Categories, nil
}

// WithTx implements store.CategoryStore
func (m *MockCategoryStore) WithTx(*sql.Tx) store.CategoryStore {
	return m
}

// MockTagStore implements store.TagStore for testing
type MockTagStore struct {
	GetOrCreateFn func(ctx context.Context, name string) (*domain.Tag, bool, error)
	GetFn         func(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	GetByIDsFn    func(ctx context.Context, ids []uuid.UUID) ([]*domain.Tag, error)
	ListFn        func(ctx context.Context) ([]*domain.Tag, error)

	Tags []*domain.Tag
}

var _ store.TagStore = (*MockTagStore)(nil)

// GetOrCreate implements store.TagStore
func (m *MockTagStore) GetOrCreate(ctx context.Context, name string) (*domain.Tag, bool, error) {
	if m.GetOrCreateFn != nil {
		return m.GetOrCreateFn(ctx, name)
	}
	name, err := domain.NormalizeLabelName(name)
	if err != nil {
		return nil, false, err
	}
	for _, t := range m.Tags {
		if t.Name == name {
			return t, false, nil
		}
	}
	t, err := domain.NewTag(name)
	if err != nil {
		return nil, false, err
	}
	m.Tags = append(m.Tags, t)
	return t, true, nil
}

// Get implements store.TagStore
func (m *MockTagStore) Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	for _, t := range m.Tags {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, store.ErrTagNotFound
}

// GetByIDs implements store.TagStore
func (m *MockTagStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Tag, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*domain.Tag
	for _, t := range m.Tags {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

// List implements store.TagStore
func (m *MockTagStore) List(ctx context.Context) ([]*domain.Tag, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return m.Tags, nil
}

// WithTx implements store.TagStore
func (m *MockTagStore) WithTx(*sql.Tx) store.TagStore {
	return m
}
