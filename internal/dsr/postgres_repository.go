package dsr

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL data-request repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const dataRequestColumns = `
	id, request_type, requester_email, requester_name, request_details,
	verification_code, verification_status, request_status, response_notes,
	created_date, completed_date
`

// Create persists a new data request, assigning its ID and CreatedDate.
func (r *PostgresRepository) Create(ctx context.Context, req *DataRequest) error {
	req.ID = "req_" + uuid.New().String()[:22]

	query := `
		INSERT INTO data_requests (
			id, request_type, requester_email, requester_name, request_details,
			verification_code, verification_status, request_status, response_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_date
	`

	return r.pool.QueryRow(ctx, query,
		req.ID,
		req.RequestType,
		req.RequesterEmail,
		req.RequesterName,
		req.RequestDetails,
		req.VerificationCode,
		req.VerificationStatus,
		req.RequestStatus,
		req.ResponseNotes,
	).Scan(&req.CreatedDate)
}

// Get retrieves a data request by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*DataRequest, error) {
	query := `SELECT ` + dataRequestColumns + ` FROM data_requests WHERE id = $1`

	req, err := scanDataRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// Update persists changes to an existing data request.
func (r *PostgresRepository) Update(ctx context.Context, req *DataRequest) error {
	query := `
		UPDATE data_requests
		SET verification_status = $2,
		    request_status = $3,
		    response_notes = $4,
		    completed_date = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		req.ID,
		req.VerificationStatus,
		req.RequestStatus,
		req.ResponseNotes,
		req.CompletedDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// List retrieves data requests matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]DataRequest, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		rows pgx.Rows
		err  error
	)
	if filter.Status != "" {
		query := `SELECT ` + dataRequestColumns + `
			FROM data_requests
			WHERE request_status = $1
			ORDER BY created_date DESC
			LIMIT $2`
		rows, err = r.pool.Query(ctx, query, filter.Status, limit)
	} else {
		query := `SELECT ` + dataRequestColumns + `
			FROM data_requests
			ORDER BY created_date DESC
			LIMIT $1`
		rows, err = r.pool.Query(ctx, query, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDataRequests(rows)
}

// ListPendingBefore retrieves requests still awaiting verification whose
// CreatedDate is before the cutoff.
func (r *PostgresRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]DataRequest, error) {
	query := `SELECT ` + dataRequestColumns + `
		FROM data_requests
		WHERE verification_status = $1 AND created_date < $2
		ORDER BY created_date`

	rows, err := r.pool.Query(ctx, query, VerificationPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDataRequests(rows)
}

// scanDataRequest scans a single data-request row.
func scanDataRequest(row pgx.Row) (*DataRequest, error) {
	var req DataRequest
	err := row.Scan(
		&req.ID,
		&req.RequestType,
		&req.RequesterEmail,
		&req.RequesterName,
		&req.RequestDetails,
		&req.VerificationCode,
		&req.VerificationStatus,
		&req.RequestStatus,
		&req.ResponseNotes,
		&req.CreatedDate,
		&req.CompletedDate,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// collectDataRequests drains rows into a slice.
func collectDataRequests(rows pgx.Rows) ([]DataRequest, error) {
	var out []DataRequest
	for rows.Next() {
		req, err := scanDataRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}
