package dsr

import (
	"context"
	"errors"
	"time"
)

// Repository errors.
var (
	ErrRequestNotFound = errors.New("data request not found")
)

// ListFilter narrows List results.
type ListFilter struct {
	// Status, when non-empty, restricts results to that request status.
	Status RequestStatus

	// Limit caps the number of results. Zero means the repository default.
	Limit int
}

// Repository defines the interface for data-request persistence.
type Repository interface {
	// Create persists a new data request, assigning its ID and CreatedDate.
	Create(ctx context.Context, req *DataRequest) error

	// Get retrieves a data request by ID.
	Get(ctx context.Context, id string) (*DataRequest, error)

	// Update persists changes to an existing data request.
	Update(ctx context.Context, req *DataRequest) error

	// List retrieves data requests matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]DataRequest, error)

	// ListPendingBefore retrieves requests still awaiting verification whose
	// CreatedDate is before the cutoff.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]DataRequest, error)
}
