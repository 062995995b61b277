package userdata

import (
	"context"
	"errors"
	"strings"
)

// Store errors.
var (
	ErrAccountNotFound = errors.New("account not found")
)

// Store defines the interface for reading and erasing personal data across
// the product's collections. List operations return every record for the
// given key; Delete operations remove every matching record and report how
// many were removed. Deleting when nothing matches is not an error.
type Store interface {
	// GetAccountByEmail retrieves the account registered under the given email.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// ListNewsletterSubscriptions returns newsletter subscriptions for the email.
	ListNewsletterSubscriptions(ctx context.Context, email string) ([]NewsletterSubscription, error)

	// DeleteNewsletterSubscriptions removes newsletter subscriptions for the email.
	DeleteNewsletterSubscriptions(ctx context.Context, email string) (int, error)

	// ListContactSubmissions returns contact-form submissions for the email.
	ListContactSubmissions(ctx context.Context, email string) ([]ContactSubmission, error)

	// DeleteContactSubmissions removes contact-form submissions for the email.
	DeleteContactSubmissions(ctx context.Context, email string) (int, error)

	// ListPageViews returns analytics page views for the account.
	ListPageViews(ctx context.Context, accountID string) ([]PageView, error)

	// DeletePageViews removes analytics page views for the account.
	DeletePageViews(ctx context.Context, accountID string) (int, error)

	// ListUserActions returns tracked actions for the account.
	ListUserActions(ctx context.Context, accountID string) ([]UserAction, error)

	// DeleteUserActions removes tracked actions for the account.
	DeleteUserActions(ctx context.Context, accountID string) (int, error)

	// ListConversions returns conversion events for the account.
	ListConversions(ctx context.Context, accountID string) ([]Conversion, error)

	// DeleteConversions removes conversion events for the account.
	DeleteConversions(ctx context.Context, accountID string) (int, error)

	// ListConsentRecords returns consent decisions for the email.
	ListConsentRecords(ctx context.Context, email string) ([]ConsentRecord, error)

	// DeleteConsentRecords removes consent decisions for the email.
	DeleteConsentRecords(ctx context.Context, email string) (int, error)
}

// EmailsEqual compares email addresses case-insensitively.
// Stored emails may carry whatever casing the user typed.
func EmailsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
