package mocks

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockActivityStore implements store.ActivityStore for testing.
// Created entries are kept in Entries in insertion order.
type MockActivityStore struct {
	CreateFn     func(ctx context.Context, entry *domain.ActivityLog) error
	ListByTaskFn func(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.ActivityLog, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ActivityLog, error)
	GetFn        func(ctx context.Context, userID, id uuid.UUID) (*domain.ActivityLog, error)

	mu      sync.Mutex
	Entries []*domain.ActivityLog
}

var _ store.ActivityStore = (*MockActivityStore)(nil)

// Create implements store.ActivityStore
func (m *MockActivityStore) Create(ctx context.Context, entry *domain.ActivityLog) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

// Actions returns the recorded actions in insertion order.
func (m *MockActivityStore) Actions() []domain.ActivityAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ActivityAction, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.Action)
	}
	return out
}

// ListByTask implements store.ActivityStore
func (m *MockActivityStore) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.ActivityLog, error) {
	if m.ListByTaskFn != nil {
		return m.ListByTaskFn(ctx, userID, taskID)
	}
	return m.filter(func(e *domain.ActivityLog) bool {
		return e.UserID == userID && e.TaskID != nil && *e.TaskID == taskID
	}), nil
}

// ListByUser implements store.ActivityStore
func (m *MockActivityStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ActivityLog, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit, offset)
	}
	all := m.filter(func(e *domain.ActivityLog) bool { return e.UserID == userID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Get implements store.ActivityStore
func (m *MockActivityStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.ActivityLog, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, id)
	}
	found := m.filter(func(e *domain.ActivityLog) bool { return e.ID == id && e.UserID == userID })
	if len(found) == 0 {
		return nil, store.ErrActivityNotFound
	}
	return found[0], nil
}

// filter returns matching entries newest first.
func (m *MockActivityStore) filter(keep func(*domain.ActivityLog) bool) []*domain.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ActivityLog
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if keep(m.Entries[i]) {
			out = append(out, m.Entries[i])
		}
	}
	return out
}

// WithTx implements store.ActivityStore
func (m *MockActivityStore) WithTx(*sql.Tx) store.ActivityStore {
	return m
}

// MockReminderStore implements store.ReminderStore for testing.
// The default claims the first entry of Due and removes it only when
// MarkSent is called, so a reminder whose delivery failed stays due.
type MockReminderStore struct {
	ClaimDueFn func(ctx context.Context, now time.Time) (*domain.DueReminder, bool, error)
	MarkSentFn func(ctx context.Context, taskID uuid.UUID) error

	mu   sync.Mutex
	Due  []*domain.DueReminder
	Sent []uuid.UUID
}

var _ store.ReminderStore = (*MockReminderStore)(nil)

// ClaimDue implements store.ReminderStore
func (m *MockReminderStore) ClaimDue(ctx context.Context, now time.Time) (*domain.DueReminder, bool, error) {
	if m.ClaimDueFn != nil {
		return m.ClaimDueFn(ctx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Due {
		if !slices.Contains(m.Sent, r.TaskID) {
			return r, true, nil
		}
	}
	return nil, false, nil
}

// MarkSent implements store.ReminderStore
func (m *MockReminderStore) MarkSent(ctx context.Context, taskID uuid.UUID) error {
	if m.MarkSentFn != nil {
		return m.MarkSentFn(ctx, taskID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, taskID)
	m.Due = slices.DeleteFunc(m.Due, func(r *domain.DueReminder) bool { return r.TaskID == taskID })
	return nil
}

// DueIDs returns the task IDs still waiting to be sent.
func (m *MockReminderStore) DueIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.Due))
	for _, r := range m.Due {
		ids = append(ids, r.TaskID)
	}
	return ids
}

// SentIDs returns a copy of the task IDs passed to MarkSent.
func (m *MockReminderStore) SentIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.Sent...)
}

// WithTx implements store.ReminderStore
func (m *MockReminderStore) WithTx(*sql.Tx) store.ReminderStore {
	return m
}
