package notify

import (
	"context"
	"sync"
)

// MemoryMailer is an in-memory Mailer for tests. It records every message
// and can be configured to fail.
type MemoryMailer struct {
	mu   sync.Mutex
	sent []Email

	// FailWith, when set, is returned by Send without recording the email.
	FailWith error
}

// NewMemoryMailer creates a new in-memory mailer.
func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

// Send records the email, or fails if FailWith is set.
func (m *MemoryMailer) Send(_ context.Context, email Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	m.sent = append(m.sent, email)
	return nil
}

// Sent returns a copy of all recorded emails.
func (m *MemoryMailer) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastSent returns the most recently recorded email, or nil.
func (m *MemoryMailer) LastSent() *Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return nil
	}
	email := m.sent[len(m.sent)-1]
	return &email
}
