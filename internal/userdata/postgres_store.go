package userdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL personal-data store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// GetAccountByEmail retrieves the account registered under the given email.
func (s *PostgresStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	query := `
		SELECT id, email, name, company, plan, created_at
		FROM accounts
		WHERE lower(email) = lower($1)
	`

	var a Account
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.Name, &a.Company, &a.Plan, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListNewsletterSubscriptions returns newsletter subscriptions for the email.
func (s *PostgresStore) ListNewsletterSubscriptions(ctx context.Context, email string) ([]NewsletterSubscription, error) {
	query := `
		SELECT id, email, source, status, subscribed_at
		FROM newsletter_subscriptions
		WHERE lower(email) = lower($1)
		ORDER BY subscribed_at
	`

	rows, err := s.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NewsletterSubscription
	for rows.Next() {
		var n NewsletterSubscription
		if err := rows.Scan(&n.ID, &n.Email, &n.Source, &n.Status, &n.SubscribedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNewsletterSubscriptions removes newsletter subscriptions for the email.
func (s *PostgresStore) DeleteNewsletterSubscriptions(ctx context.Context, email string) (int, error) {
	return s.deleteByEmail(ctx, "newsletter_subscriptions", email)
}

// ListContactSubmissions returns contact-form submissions for the email.
func (s *PostgresStore) ListContactSubmissions(ctx context.Context, email string) ([]ContactSubmission, error) {
	query := `
		SELECT id, email, name, subject, message, submitted_at
		FROM contact_submissions
		WHERE lower(email) = lower($1)
		ORDER BY submitted_at
	`

	rows, err := s.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ContactSubmission
	for rows.Next() {
		var c ContactSubmission
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.Subject, &c.Message, &c.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteContactSubmissions removes contact-form submissions for the email.
func (s *PostgresStore) DeleteContactSubmissions(ctx context.Context, email string) (int, error) {
	return s.deleteByEmail(ctx, "contact_submissions", email)
}

// ListPageViews returns analytics page views for the account.
func (s *PostgresStore) ListPageViews(ctx context.Context, accountID string) ([]PageView, error) {
	query := `
		SELECT id, account_id, path, referrer, occurred_at
		FROM page_views
		WHERE account_id = $1
		ORDER BY occurred_at
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PageView
	for rows.Next() {
		var p PageView
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Path, &p.Referrer, &p.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePageViews removes analytics page views for the account.
func (s *PostgresStore) DeletePageViews(ctx context.Context, accountID string) (int, error) {
	return s.deleteByAccount(ctx, "page_views", accountID)
}

// ListUserActions returns tracked actions for the account.
func (s *PostgresStore) ListUserActions(ctx context.Context, accountID string) ([]UserAction, error) {
	query := `
		SELECT id, account_id, action, metadata, occurred_at
		FROM user_actions
		WHERE account_id = $1
		ORDER BY occurred_at
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserAction
	for rows.Next() {
		var a UserAction
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Action, &a.Metadata, &a.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteUserActions removes tracked actions for the account.
func (s *PostgresStore) DeleteUserActions(ctx context.Context, accountID string) (int, error) {
	return s.deleteByAccount(ctx, "user_actions", accountID)
}

// ListConversions returns conversion events for the account.
func (s *PostgresStore) ListConversions(ctx context.Context, accountID string) ([]Conversion, error) {
	query := `
		SELECT id, account_id, kind, value, occurred_at
		FROM conversions
		WHERE account_id = $1
		ORDER BY occurred_at
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		var c Conversion
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Kind, &c.Value, &c.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteConversions removes conversion events for the account.
func (s *PostgresStore) DeleteConversions(ctx context.Context, accountID string) (int, error) {
	return s.deleteByAccount(ctx, "conversions", accountID)
}

// ListConsentRecords returns consent decisions for the email.
func (s *PostgresStore) ListConsentRecords(ctx context.Context, email string) ([]ConsentRecord, error) {
	query := `
		SELECT id, email, consent_type, granted, recorded_at
		FROM consent_records
		WHERE lower(email) = lower($1)
		ORDER BY recorded_at
	`

	rows, err := s.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConsentRecord
	for rows.Next() {
		var c ConsentRecord
		if err := rows.Scan(&c.ID, &c.Email, &c.ConsentType, &c.Granted, &c.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteConsentRecords removes consent decisions for the email.
func (s *PostgresStore) DeleteConsentRecords(ctx context.Context, email string) (int, error) {
	return s.deleteByEmail(ctx, "consent_records", email)
}

// deleteByEmail deletes all rows in the named table matching the email.
// Table names are fixed call-site constants, never caller input.
func (s *PostgresStore) deleteByEmail(ctx context.Context, table, email string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// deleteByAccount deletes all rows in the named table matching the account ID.
func (s *PostgresStore) deleteByAccount(ctx context.Context, table, accountID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
