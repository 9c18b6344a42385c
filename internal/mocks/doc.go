// Package mocks provides shared hand-written test doubles for the store,
// service, auth, and mailer interfaces.
//
// Each mock exposes a function field per method (CreateFn, GetFn, ...).
// When a field is nil the mock falls back to a small in-memory default,
// so tests only override the calls they care about:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.GetFn = func(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
//	    return nil, store.ErrTaskNotFound
//	}
//
// WithTx always returns the receiver, so state recorded inside a
// transaction is visible to the test afterwards.
package mocks
