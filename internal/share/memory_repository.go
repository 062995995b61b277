package share

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*SharedReport
}

// NewInMemoryRepository creates a new in-memory shared-report repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reports: make(map[string]*SharedReport),
	}
}

// Create persists a new shared report.
func (r *InMemoryRepository) Create(ctx context.Context, report *SharedReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *report
	r.reports[report.Token] = &stored
	return nil
}

// GetByToken retrieves a shared report by its token.
func (r *InMemoryRepository) GetByToken(ctx context.Context, token string) (*SharedReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[token]
	if !ok {
		return nil, ErrReportNotFound
	}
	copied := *report
	return &copied, nil
}

// DeleteExpiredBefore removes reports whose expiry is before the cutoff.
func (r *InMemoryRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, report := range r.reports {
		if report.ExpiresAt.Before(cutoff) {
			delete(r.reports, token)
			removed++
		}
	}
	return removed, nil
}
