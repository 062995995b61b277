package notify_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tariffai/privacy-api/internal/notify"
)

func TestVerificationEmail(t *testing.T) {
	email := notify.VerificationEmail("requester@example.com", "Ana Silva", "erasure", "ABC123")

	assert.Equal(t, "requester@example.com", email.To)
	assert.Equal(t, "Verify your data request", email.Subject)

	// The code must appear verbatim in both bodies.
	assert.Contains(t, email.HTMLBody, "ABC123")
	assert.Contains(t, email.TextBody, "ABC123")
	assert.Contains(t, email.TextBody, "Ana Silva")
	assert.Contains(t, email.TextBody, "erasure")
	assert.Contains(t, email.TextBody, "24 hours")
}

func TestErasureConfirmationEmail(t *testing.T) {
	email := notify.ErasureConfirmationEmail("requester@example.com", "Ana Silva", map[string]int{
		"newsletter_subscriptions": 2,
		"contact_submissions":      1,
		"page_views":               0,
	})

	assert.Equal(t, "requester@example.com", email.To)
	assert.Equal(t, "Your data erasure request is complete", email.Subject)
	assert.Contains(t, email.TextBody, "newsletter_subscriptions: 2 record(s) removed")
	assert.Contains(t, email.TextBody, "contact_submissions: 1 record(s) removed")
	assert.Contains(t, email.TextBody, "flagged for manual review")

	// Collections list in a stable order.
	c := strings.Index(email.TextBody, "contact_submissions")
	n := strings.Index(email.TextBody, "newsletter_subscriptions")
	p := strings.Index(email.TextBody, "page_views")
	assert.Less(t, c, n)
	assert.Less(t, n, p)
}
