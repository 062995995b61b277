package share

import (
	"context"
	"errors"
	"time"
)

// ErrReportNotFound is returned when no shared report matches the token.
var ErrReportNotFound = errors.New("shared report not found")

// Repository defines the interface for shared-report persistence.
type Repository interface {
	// Create persists a new shared report.
	Create(ctx context.Context, report *SharedReport) error

	// GetByToken retrieves a shared report by its token. Expiry is not
	// checked here; that is the service's job.
	GetByToken(ctx context.Context, token string) (*SharedReport, error)

	// DeleteExpiredBefore removes reports whose expiry is before the
	// cutoff and returns how many were removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error)
}
