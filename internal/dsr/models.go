// Package dsr implements the GDPR/LGPD data-subject-request workflow:
// submission with an emailed verification code, code verification with a
// 24-hour expiry window, and access/erasure fulfilment across the product's
// personal-data collections.
package dsr

import (
	"time"

	"github.com/tariffai/privacy-api/internal/userdata"
)

// RequestType is the kind of data-subject request.
type RequestType string

// Request types recognized under GDPR/LGPD.
const (
	RequestTypeAccess        RequestType = "access"
	RequestTypeRectification RequestType = "rectification"
	RequestTypeErasure       RequestType = "erasure"
	RequestTypeRestriction   RequestType = "restriction"
	RequestTypePortability   RequestType = "portability"
	RequestTypeObjection     RequestType = "objection"
)

// ValidRequestType reports whether t is a recognized request type.
func ValidRequestType(t RequestType) bool {
	switch t {
	case RequestTypeAccess, RequestTypeRectification, RequestTypeErasure,
		RequestTypeRestriction, RequestTypePortability, RequestTypeObjection:
		return true
	}
	return false
}

// VerificationStatus tracks whether the requester proved control of the email.
// Transitions only pending -> verified or pending -> failed, never backward.
type VerificationStatus string

// Verification statuses.
const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationFailed   VerificationStatus = "failed"
)

// RequestStatus tracks the request through its lifecycle.
// Transitions only forward: submitted -> under_review -> completed,
// with rejected reachable from submitted or under_review.
type RequestStatus string

// Request statuses.
const (
	StatusSubmitted   RequestStatus = "submitted"
	StatusUnderReview RequestStatus = "under_review"
	StatusCompleted   RequestStatus = "completed"
	StatusRejected    RequestStatus = "rejected"
)

// VerificationWindow is how long a verification code stays valid after
// submission. A correct code presented after this window force-fails the
// request instead of verifying it.
const VerificationWindow = 24 * time.Hour

// DataRequest is one end-user privacy request.
type DataRequest struct {
	ID                 string             `json:"id"`
	RequestType        RequestType        `json:"request_type"`
	RequesterEmail     string             `json:"requester_email"`
	RequesterName      string             `json:"requester_name"`
	RequestDetails     string             `json:"request_details,omitempty"`
	VerificationCode   string             `json:"-"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	RequestStatus      RequestStatus      `json:"request_status"`
	ResponseNotes      string             `json:"response_notes,omitempty"`
	CreatedDate        time.Time          `json:"created_date"`
	CompletedDate      *time.Time         `json:"completed_date,omitempty"`
}

// ExportDocument is the aggregated personal-data export returned by an
// access fulfilment. Collections with no data are present as empty arrays
// so the document shape is stable.
type ExportDocument struct {
	CollectionDate          time.Time                         `json:"collection_date"`
	RequesterEmail          string                            `json:"requester_email"`
	Account                 *userdata.Account                 `json:"account"`
	NewsletterSubscriptions []userdata.NewsletterSubscription `json:"newsletter_subscriptions"`
	ContactSubmissions      []userdata.ContactSubmission      `json:"contact_submissions"`
	PageViews               []userdata.PageView               `json:"page_views"`
	UserActions             []userdata.UserAction             `json:"user_actions"`
	Conversions             []userdata.Conversion             `json:"conversions"`
	ConsentRecords          []userdata.ConsentRecord          `json:"consent_records"`
}

// Collection names as they appear in export documents and deletion logs.
const (
	CollectionNewsletterSubscriptions = "newsletter_subscriptions"
	CollectionContactSubmissions      = "contact_submissions"
	CollectionPageViews               = "page_views"
	CollectionUserActions             = "user_actions"
	CollectionConversions             = "conversions"
	CollectionConsentRecords          = "consent_records"
)

// AccountActionManualReview marks that the account record was flagged for a
// human to review instead of being deleted by the automated erasure path.
const AccountActionManualReview = "flagged_for_manual_review"

// ErasureSummary is the audit record produced by an erasure fulfilment.
// It is returned to the caller and serialized into the request's
// response_notes field.
type ErasureSummary struct {
	DeletedRecords map[string]int `json:"deleted_records"`
	AccountAction  string         `json:"account_action"`
	CompletedAt    time.Time      `json:"completed_at"`
}
