package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tariffai/privacy-api/internal/featureflags"
)

// Service errors.
var (
	// ErrLinkExpired is returned when a share link is looked up after its
	// expiry. Distinct from ErrReportNotFound so clients can render a
	// "this link has expired" message instead of a generic 404.
	ErrLinkExpired = errors.New("share link has expired")

	// ErrIssuanceDisabled is returned when the disable_share_issuance
	// flag suspends new share links.
	ErrIssuanceDisabled = errors.New("share link issuance is temporarily disabled")
)

// ServiceConfig holds configuration for the share service.
type ServiceConfig struct {
	Repository Repository
	Flags      *featureflags.Service
	Logger     zerolog.Logger

	// BaseURL is the public base URL share links are built on,
	// e.g. https://tariff.ai.
	BaseURL string

	// Now overrides the service clock. Nil means time.Now.
	Now func() time.Time
}

// Service issues and resolves shareable report links.
type Service struct {
	repo    Repository
	flags   *featureflags.Service
	logger  zerolog.Logger
	baseURL string
	now     func() time.Time
}

// NewService creates a new share service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    cfg.Repository,
		flags:   cfg.Flags,
		logger:  cfg.Logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		now:     now,
	}
}

// IssueInput is the input to Issue. ReportData is required; the remaining
// fields are denormalized report metadata kept for auditing.
type IssueInput struct {
	ReportID           string
	CreatedByEmail     string
	HSCode             string
	ProductDescription string
	OriginCountry      string
	DestinationCountry string
	ReportData         json.RawMessage
}

// IssueResult is the outcome of issuing a share link.
type IssueResult struct {
	Token     string
	ShareURL  string
	ExpiresAt time.Time
}

// Issue creates a share link for a report snapshot, valid for ShareTTL.
func (s *Service) Issue(ctx context.Context, input IssueInput) (*IssueResult, error) {
	if s.flags != nil && s.flags.IsShareIssuanceDisabled(ctx) {
		return nil, ErrIssuanceDisabled
	}

	token, err := NewShareToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := &SharedReport{
		Token:              token,
		ReportID:           input.ReportID,
		CreatedByEmail:     input.CreatedByEmail,
		HSCode:             input.HSCode,
		ProductDescription: input.ProductDescription,
		OriginCountry:      input.OriginCountry,
		DestinationCountry: input.DestinationCountry,
		ReportData:         input.ReportData,
		CreatedAt:          now,
		ExpiresAt:          now.Add(ShareTTL),
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("creating shared report: %w", err)
	}

	s.logger.Info().
		Str("report_id", report.ReportID).
		Time("expires_at", report.ExpiresAt).
		Msg("Share link issued")

	return &IssueResult{
		Token:     token,
		ShareURL:  s.baseURL + "/reports/shared?token=" + token,
		ExpiresAt: report.ExpiresAt,
	}, nil
}

// Lookup resolves a share token to its report. Expiry is enforced here at
// read time: an expired link returns ErrLinkExpired even though the record
// still exists until the maintenance sweep removes it.
func (s *Service) Lookup(ctx context.Context, token string) (*SharedReport, error) {
	report, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if report.Expired(s.now()) {
		return nil, ErrLinkExpired
	}
	return report, nil
}

// PruneExpired removes reports that expired more than grace ago. Read-time
// enforcement in Lookup is the access rule; this only reclaims storage.
func (s *Service) PruneExpired(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-grace)
	removed, err := s.repo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning expired shared reports: %w", err)
	}
	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Time("cutoff", cutoff).
			Msg("Pruned expired shared reports")
	}
	return removed, nil
}
