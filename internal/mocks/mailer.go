package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskmanager-api/internal/platform/mailer"
)

// MockMailer implements mailer.Mailer and records every message it accepts.
type MockMailer struct {
	SendFn func(ctx context.Context, msg mailer.Message) error

	mu   sync.Mutex
	Sent []mailer.Message
}

var _ mailer.Mailer = (*MockMailer)(nil)

// Send implements mailer.Mailer
func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.SendFn != nil {
		if err := m.SendFn(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// Messages returns a copy of the accepted messages.
func (m *MockMailer) Messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.Sent...)
}
