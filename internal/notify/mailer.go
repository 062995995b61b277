// Package notify provides transactional email delivery for the privacy API.
// All sends are best-effort: callers log failures and never let them block
// the privacy operation that triggered them.
package notify

import (
	"context"
	"errors"
)

// Mailer errors.
var (
	// ErrSendFailed is returned when the provider rejected or dropped the message.
	ErrSendFailed = errors.New("email send failed")

	// ErrMailerUnavailable is returned when the provider is temporarily unreachable.
	ErrMailerUnavailable = errors.New("email provider unavailable")
)

// Email is a single outbound transactional message.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer sends transactional email.
type Mailer interface {
	// Send delivers a single email. The error is informational only;
	// callers must treat delivery as best-effort.
	Send(ctx context.Context, email Email) error
}
