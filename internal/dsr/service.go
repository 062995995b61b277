package dsr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tariffai/privacy-api/internal/featureflags"
	"github.com/tariffai/privacy-api/internal/notify"
	"github.com/tariffai/privacy-api/internal/userdata"
)

// Service errors.
var (
	// ErrAlreadyVerified is returned when verifying a request that has
	// already been verified.
	ErrAlreadyVerified = errors.New("request already verified")

	// ErrInvalidCode is returned when the submitted code does not match.
	// The stored code stays usable for further attempts.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrCodeExpired is returned when a correct code arrives outside the
	// verification window. The request is force-failed as a side effect.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrNotAuthorized is returned when the email/id/code triple does not
	// resolve to a verified request. Deliberately covers "request does not
	// exist" too, so fulfilment endpoints do not leak request existence.
	ErrNotAuthorized = errors.New("no verified request matches the supplied credentials")

	// ErrNotErasureRequest is returned when erasure fulfilment is attempted
	// against a request of a different type.
	ErrNotErasureRequest = errors.New("request is not an erasure request")

	// ErrAlreadyCompleted is returned when fulfilment or rejection is
	// attempted against a request that already completed.
	ErrAlreadyCompleted = errors.New("request already completed")

	// ErrAlreadyRejected is returned when rejection is attempted against a
	// request that was already rejected.
	ErrAlreadyRejected = errors.New("request already rejected")

	// ErrReadOnly is returned when mutating operations are suspended by the
	// read_only_mode flag.
	ErrReadOnly = errors.New("privacy operations are temporarily suspended")
)

// ServiceConfig holds configuration for the DSR service.
type ServiceConfig struct {
	Repository Repository
	Store      userdata.Store
	Mailer     notify.Mailer
	Flags      *featureflags.Service
	Logger     zerolog.Logger

	// Now overrides the service clock. Nil means time.Now.
	Now func() time.Time
}

// Service orchestrates the data-subject-request workflow.
type Service struct {
	repo   Repository
	store  userdata.Store
	mailer notify.Mailer
	flags  *featureflags.Service
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new DSR service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   cfg.Repository,
		store:  cfg.Store,
		mailer: cfg.Mailer,
		flags:  cfg.Flags,
		logger: cfg.Logger,
		now:    now,
	}
}

// SubmitInput is the input to Submit. All fields except RequestDetails are
// required; the handler validates presence before calling.
type SubmitInput struct {
	RequestType    RequestType
	RequesterEmail string
	RequesterName  string
	RequestDetails string
}

// Submit creates a pending data request and emails its verification code to
// the requester. Email delivery is best-effort: a send failure is logged and
// the created request is still returned.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*DataRequest, error) {
	if s.readOnly(ctx) {
		return nil, ErrReadOnly
	}

	req := &DataRequest{
		RequestType:        input.RequestType,
		RequesterEmail:     input.RequesterEmail,
		RequesterName:      input.RequesterName,
		RequestDetails:     input.RequestDetails,
		VerificationCode:   NewVerificationCode(),
		VerificationStatus: VerificationPending,
		RequestStatus:      StatusSubmitted,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("creating data request: %w", err)
	}

	s.sendBestEffort(ctx, req.ID, notify.VerificationEmail(
		req.RequesterEmail, req.RequesterName, string(req.RequestType), req.VerificationCode,
	))

	s.logger.Info().
		Str("request_id", req.ID).
		Str("request_type", string(req.RequestType)).
		Msg("data request submitted")

	return req, nil
}

// Verify checks a submitted verification code against the stored request.
//
// State machine: pending --(match & within window)--> verified;
// pending --(match & expired)--> failed/rejected; pending --(mismatch)-->
// pending. Verified requests reject further attempts without mutation, and
// rejection is terminal: a rejected request never re-enters the flow.
func (s *Service) Verify(ctx context.Context, requestID, code string) error {
	req, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return err
	}

	if req.RequestStatus == StatusRejected {
		return ErrAlreadyRejected
	}
	if req.VerificationStatus == VerificationVerified {
		return ErrAlreadyVerified
	}

	if req.VerificationCode != NormalizeCode(code) {
		return ErrInvalidCode
	}

	if s.now().Sub(req.CreatedDate) > VerificationWindow {
		// Defensive write: a correct-but-late code permanently fails the
		// request so it cannot be retried indefinitely.
		req.VerificationStatus = VerificationFailed
		req.RequestStatus = StatusRejected
		req.ResponseNotes = "Verification code expired"
		if err := s.repo.Update(ctx, req); err != nil {
			return fmt.Errorf("rejecting expired request: %w", err)
		}
		return ErrCodeExpired
	}

	req.VerificationStatus = VerificationVerified
	req.RequestStatus = StatusUnderReview
	if err := s.repo.Update(ctx, req); err != nil {
		return fmt.Errorf("verifying request: %w", err)
	}

	s.logger.Info().Str("request_id", req.ID).Msg("data request verified")
	return nil
}

// FulfillInput identifies a verified request for fulfilment. The stored
// verification code doubles as the bearer credential here: fulfilment
// re-validates the full email/id/code triple rather than relying on a
// session.
type FulfillInput struct {
	Email            string
	RequestID        string
	VerificationCode string
}

// FulfillAccess gathers the requester's personal data across every
// collection into a single export document and marks the request completed.
// Each collection query is independently fault-tolerant: a failing
// collection yields an empty section instead of aborting the export.
func (s *Service) FulfillAccess(ctx context.Context, input FulfillInput) (*ExportDocument, error) {
	if s.readOnly(ctx) {
		return nil, ErrReadOnly
	}

	req, err := s.authorize(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	export := &ExportDocument{
		CollectionDate:          now,
		RequesterEmail:          req.RequesterEmail,
		NewsletterSubscriptions: []userdata.NewsletterSubscription{},
		ContactSubmissions:      []userdata.ContactSubmission{},
		PageViews:               []userdata.PageView{},
		UserActions:             []userdata.UserAction{},
		Conversions:             []userdata.Conversion{},
		ConsentRecords:          []userdata.ConsentRecord{},
	}

	email := req.RequesterEmail
	accountID := ""
	if account, err := s.store.GetAccountByEmail(ctx, email); err == nil {
		export.Account = account
		accountID = account.ID
	} else if !errors.Is(err, userdata.ErrAccountNotFound) {
		s.logCollectionFailure(req.ID, "accounts", err)
	}

	sections := []struct {
		name  string
		fetch func() error
	}{
		{CollectionNewsletterSubscriptions, func() (err error) {
			export.NewsletterSubscriptions, err = s.store.ListNewsletterSubscriptions(ctx, email)
			return
		}},
		{CollectionContactSubmissions, func() (err error) {
			export.ContactSubmissions, err = s.store.ListContactSubmissions(ctx, email)
			return
		}},
		{CollectionPageViews, func() (err error) {
			export.PageViews, err = s.store.ListPageViews(ctx, accountID)
			return
		}},
		{CollectionUserActions, func() (err error) {
			export.UserActions, err = s.store.ListUserActions(ctx, accountID)
			return
		}},
		{CollectionConversions, func() (err error) {
			export.Conversions, err = s.store.ListConversions(ctx, accountID)
			return
		}},
		{CollectionConsentRecords, func() (err error) {
			export.ConsentRecords, err = s.store.ListConsentRecords(ctx, email)
			return
		}},
	}

	for _, section := range sections {
		if err := section.fetch(); err != nil {
			s.logCollectionFailure(req.ID, section.name, err)
		}
	}
	normalizeExport(export)

	req.RequestStatus = StatusCompleted
	req.CompletedDate = &now
	if req.ResponseNotes == "" {
		req.ResponseNotes = "Personal data export generated"
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("completing access request: %w", err)
	}

	s.logger.Info().Str("request_id", req.ID).Msg("access request fulfilled")
	return export, nil
}

// FulfillErasure deletes the requester's personal data collection by
// collection, counting removals, and marks the request completed. The
// account record itself is never deleted by this path; it is flagged for
// manual review instead. Each deletion phase is independently
// fault-tolerant: a failing phase records a zero count.
//
// A request that has already completed is rejected with ErrAlreadyCompleted
// rather than silently re-running the deletions.
func (s *Service) FulfillErasure(ctx context.Context, input FulfillInput) (*ErasureSummary, error) {
	if s.readOnly(ctx) {
		return nil, ErrReadOnly
	}

	req, err := s.authorize(ctx, input)
	if err != nil {
		return nil, err
	}
	if req.RequestType != RequestTypeErasure {
		return nil, ErrNotErasureRequest
	}
	if req.RequestStatus == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	email := req.RequesterEmail
	accountID := ""
	accountFound := false
	if account, err := s.store.GetAccountByEmail(ctx, email); err == nil {
		accountID = account.ID
		accountFound = true
	} else if !errors.Is(err, userdata.ErrAccountNotFound) {
		s.logCollectionFailure(req.ID, "accounts", err)
	}

	phases := []struct {
		name   string
		delete func() (int, error)
	}{
		{CollectionNewsletterSubscriptions, func() (int, error) {
			return s.store.DeleteNewsletterSubscriptions(ctx, email)
		}},
		{CollectionContactSubmissions, func() (int, error) {
			return s.store.DeleteContactSubmissions(ctx, email)
		}},
		// Account-keyed phases run only when an account matched; an empty
		// account ID must never reach the delete queries.
		{CollectionPageViews, func() (int, error) {
			if !accountFound {
				return 0, nil
			}
			return s.store.DeletePageViews(ctx, accountID)
		}},
		{CollectionUserActions, func() (int, error) {
			if !accountFound {
				return 0, nil
			}
			return s.store.DeleteUserActions(ctx, accountID)
		}},
		{CollectionConversions, func() (int, error) {
			if !accountFound {
				return 0, nil
			}
			return s.store.DeleteConversions(ctx, accountID)
		}},
		{CollectionConsentRecords, func() (int, error) {
			return s.store.DeleteConsentRecords(ctx, email)
		}},
	}

	now := s.now().UTC()
	summary := &ErasureSummary{
		DeletedRecords: make(map[string]int, len(phases)),
		CompletedAt:    now,
	}
	if accountFound {
		summary.AccountAction = AccountActionManualReview
	}

	for _, phase := range phases {
		count, err := phase.delete()
		if err != nil {
			s.logCollectionFailure(req.ID, phase.name, err)
			count = 0
		}
		summary.DeletedRecords[phase.name] = count
	}

	notes, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("serializing deletion log: %w", err)
	}

	req.ResponseNotes = string(notes)
	req.RequestStatus = StatusCompleted
	req.CompletedDate = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("completing erasure request: %w", err)
	}

	s.sendBestEffort(ctx, req.ID, notify.ErasureConfirmationEmail(
		req.RequesterEmail, req.RequesterName, summary.DeletedRecords,
	))

	s.logger.Info().
		Str("request_id", req.ID).
		Interface("deleted_records", summary.DeletedRecords).
		Msg("erasure request fulfilled")

	return summary, nil
}

// Get retrieves a data request by ID (admin review surface).
func (s *Service) Get(ctx context.Context, id string) (*DataRequest, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves data requests, optionally filtered by status, newest first
// (admin review surface).
func (s *Service) List(ctx context.Context, filter ListFilter) ([]DataRequest, error) {
	return s.repo.List(ctx, filter)
}

// Reject marks a request rejected with the given reason (admin review
// surface). Only submitted or under-review requests can be rejected.
func (s *Service) Reject(ctx context.Context, id, reason string) error {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	switch req.RequestStatus {
	case StatusCompleted:
		return ErrAlreadyCompleted
	case StatusRejected:
		return ErrAlreadyRejected
	}

	req.RequestStatus = StatusRejected
	req.ResponseNotes = reason
	if err := s.repo.Update(ctx, req); err != nil {
		return fmt.Errorf("rejecting request: %w", err)
	}

	s.logger.Info().Str("request_id", id).Str("reason", reason).Msg("data request rejected")
	return nil
}

// ExpireStale force-fails pending requests older than the verification
// window, applying the same defensive write the verify path performs.
// Returns how many requests were expired.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-VerificationWindow)
	stale, err := s.repo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("listing stale requests: %w", err)
	}

	expired := 0
	for i := range stale {
		req := &stale[i]
		req.VerificationStatus = VerificationFailed
		req.RequestStatus = StatusRejected
		req.ResponseNotes = "Verification code expired"
		if err := s.repo.Update(ctx, req); err != nil {
			s.logger.Warn().Err(err).Str("request_id", req.ID).Msg("failed to expire stale request")
			continue
		}
		expired++
	}
	return expired, nil
}

// authorize resolves the email/id/code triple to a verified request.
// Every mismatch collapses into ErrNotAuthorized so callers cannot probe
// for request existence. Rejected requests are refused the same way:
// rejection is terminal and fulfilment must not resurrect it.
func (s *Service) authorize(ctx context.Context, input FulfillInput) (*DataRequest, error) {
	req, err := s.repo.Get(ctx, input.RequestID)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	if !userdata.EmailsEqual(req.RequesterEmail, input.Email) ||
		req.VerificationCode != NormalizeCode(input.VerificationCode) ||
		req.VerificationStatus != VerificationVerified ||
		req.RequestStatus == StatusRejected {
		return nil, ErrNotAuthorized
	}
	return req, nil
}

// sendBestEffort sends an email and logs any failure without propagating it.
// The disable_email_sending flag suppresses the send entirely.
func (s *Service) sendBestEffort(ctx context.Context, requestID string, email notify.Email) {
	if s.mailer == nil {
		return
	}
	if s.flags != nil && s.flags.IsEmailSendingDisabled(ctx) {
		s.logger.Info().Str("request_id", requestID).Msg("email sending disabled by feature flag")
		return
	}
	if err := s.mailer.Send(ctx, email); err != nil {
		s.logger.Warn().Err(err).
			Str("request_id", requestID).
			Str("to", email.To).
			Msg("failed to send notification email")
	}
}

// readOnly reports whether mutating operations are suspended.
func (s *Service) readOnly(ctx context.Context) bool {
	return s.flags != nil && s.flags.IsReadOnlyMode(ctx)
}

// logCollectionFailure records a per-collection failure during export or
// erasure. The operation continues with a safe default for that collection.
func (s *Service) logCollectionFailure(requestID, collection string, err error) {
	s.logger.Warn().Err(err).
		Str("request_id", requestID).
		Str("collection", collection).
		Msg("collection query failed, using empty default")
}

// normalizeExport replaces nil slices with empty ones so exports always
// contain every collection key.
func normalizeExport(export *ExportDocument) {
	if export.NewsletterSubscriptions == nil {
		export.NewsletterSubscriptions = []userdata.NewsletterSubscription{}
	}
	if export.ContactSubmissions == nil {
		export.ContactSubmissions = []userdata.ContactSubmission{}
	}
	if export.PageViews == nil {
		export.PageViews = []userdata.PageView{}
	}
	if export.UserActions == nil {
		export.UserActions = []userdata.UserAction{}
	}
	if export.Conversions == nil {
		export.Conversions = []userdata.Conversion{}
	}
	if export.ConsentRecords == nil {
		export.ConsentRecords = []userdata.ConsentRecord{}
	}
}
