// Package userdata exposes the product's personal-data collections for
// privacy-request fulfilment. Every record type here can be exported or
// erased on behalf of a data subject.
package userdata

import "time"

// Account is a registered product account.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// NewsletterSubscription is a marketing newsletter opt-in, keyed by email.
type NewsletterSubscription struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Source       string    `json:"source,omitempty"`
	Status       string    `json:"status"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// ContactSubmission is a contact-form message, keyed by email.
type ContactSubmission struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// PageView is a single analytics page view, keyed by account ID.
type PageView struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	Path       string    `json:"path"`
	Referrer   string    `json:"referrer,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserAction is a tracked in-product action, keyed by account ID.
type UserAction struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	Action     string    `json:"action"`
	Metadata   string    `json:"metadata,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Conversion is a tracked conversion event, keyed by account ID.
type Conversion struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	Kind       string    `json:"kind"`
	Value      float64   `json:"value,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ConsentRecord is a recorded cookie/marketing consent decision, keyed by email.
type ConsentRecord struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	ConsentType string    `json:"consent_type"`
	Granted     bool      `json:"granted"`
	RecordedAt  time.Time `json:"recorded_at"`
}
