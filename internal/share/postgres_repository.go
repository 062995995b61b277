package share

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL shared-report repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new shared report.
func (r *PostgresRepository) Create(ctx context.Context, report *SharedReport) error {
	query := `
		INSERT INTO shared_reports (
			token, report_id, created_by_email, hs_code, product_description,
			origin_country, destination_country, report_data, created_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		report.Token,
		report.ReportID,
		report.CreatedByEmail,
		report.HSCode,
		report.ProductDescription,
		report.OriginCountry,
		report.DestinationCountry,
		report.ReportData,
		report.CreatedAt,
		report.ExpiresAt,
	)
	return err
}

// GetByToken retrieves a shared report by its token.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*SharedReport, error) {
	query := `
		SELECT token, report_id, created_by_email, hs_code, product_description,
		       origin_country, destination_country, report_data, created_at, expires_at
		FROM shared_reports
		WHERE token = $1
	`

	var report SharedReport
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&report.Token,
		&report.ReportID,
		&report.CreatedByEmail,
		&report.HSCode,
		&report.ProductDescription,
		&report.OriginCountry,
		&report.DestinationCountry,
		&report.ReportData,
		&report.CreatedAt,
		&report.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// DeleteExpiredBefore removes reports whose expiry is before the cutoff.
func (r *PostgresRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shared_reports WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
