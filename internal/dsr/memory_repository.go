package dsr

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultListLimit caps List results when no limit is given.
const defaultListLimit = 100

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]*DataRequest
	now      func() time.Time
}

// NewInMemoryRepository creates a new in-memory data-request repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		requests: make(map[string]*DataRequest),
		now:      time.Now,
	}
}

// SetClock overrides the repository clock. Tests use this to control
// CreatedDate assignment.
func (r *InMemoryRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Create persists a new data request, assigning its ID and CreatedDate.
func (r *InMemoryRepository) Create(_ context.Context, req *DataRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.ID = "req_" + uuid.New().String()[:22]
	req.CreatedDate = r.now().UTC()
	r.requests[req.ID] = copyRequest(req)
	return nil
}

// Get retrieves a data request by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*DataRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return copyRequest(req), nil
}

// Update persists changes to an existing data request.
func (r *InMemoryRepository) Update(_ context.Context, req *DataRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[req.ID]; !ok {
		return ErrRequestNotFound
	}
	r.requests[req.ID] = copyRequest(req)
	return nil
}

// List retrieves data requests matching the filter, newest first.
func (r *InMemoryRepository) List(_ context.Context, filter ListFilter) ([]DataRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var out []DataRequest
	for _, req := range r.requests {
		if filter.Status != "" && req.RequestStatus != filter.Status {
			continue
		}
		out = append(out, *copyRequest(req))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListPendingBefore retrieves requests still awaiting verification whose
// CreatedDate is before the cutoff.
func (r *InMemoryRepository) ListPendingBefore(_ context.Context, cutoff time.Time) ([]DataRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []DataRequest
	for _, req := range r.requests {
		if req.VerificationStatus == VerificationPending && req.CreatedDate.Before(cutoff) {
			out = append(out, *copyRequest(req))
		}
	}
	return out, nil
}

// copyRequest creates a deep copy of a data request.
func copyRequest(req *DataRequest) *DataRequest {
	if req == nil {
		return nil
	}
	reqCopy := *req
	if req.CompletedDate != nil {
		completed := *req.CompletedDate
		reqCopy.CompletedDate = &completed
	}
	return &reqCopy
}
