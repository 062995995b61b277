package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tariffai/privacy-api/internal/api/models"
	"github.com/tariffai/privacy-api/internal/api/response"
	"github.com/tariffai/privacy-api/internal/share"
)

// ShareHandler handles report share-link endpoints.
type ShareHandler struct {
	service *share.Service
	logger  zerolog.Logger
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(service *share.Service, logger zerolog.Logger) *ShareHandler {
	return &ShareHandler{service: service, logger: logger}
}

// Issue handles POST /v1/reports/share - issue a share link for a report.
// The route sits behind the API-key middleware.
func (h *ShareHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var input models.IssueShareRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(input.ReportData) == 0 {
		response.BadRequest(w, r, "report_data is required", []models.FieldError{
			{Field: "report_data", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	result, err := h.service.Issue(r.Context(), share.IssueInput{
		ReportID:           input.ReportID,
		CreatedByEmail:     input.CreatedByEmail,
		HSCode:             input.HSCode,
		ProductDescription: input.ProductDescription,
		OriginCountry:      input.OriginCountry,
		DestinationCountry: input.DestinationCountry,
		ReportData:         input.ReportData,
	})
	if err != nil {
		if errors.Is(err, share.ErrIssuanceDisabled) {
			response.ServiceUnavailable(w, r, "share link issuance is temporarily disabled")
			return
		}
		h.logger.Error().Err(err).Msg("share link issuance failed")
		response.InternalError(w, r, "an unexpected error occurred")
		return
	}

	response.Created(w, r, "", models.IssueShareResponse{
		Success:    true,
		ShareURL:   result.ShareURL,
		ExpiryDate: models.Timestamp(result.ExpiresAt),
	})
}

// Lookup handles GET /v1/reports/shared/{token} - resolve a share link.
// An expired link answers 410 Gone, distinct from 404, so the client can
// tell the user the link existed but lapsed.
func (h *ShareHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.BadRequest(w, r, "token is required", nil)
		return
	}

	report, err := h.service.Lookup(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, share.ErrReportNotFound):
			response.NotFound(w, r, "shared report not found")
		case errors.Is(err, share.ErrLinkExpired):
			response.Gone(w, r, "this share link has expired")
		default:
			h.logger.Error().Err(err).Msg("share link lookup failed")
			response.InternalError(w, r, "an unexpected error occurred")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.SharedReportResponse{
		Success: true,
		Data:    report.ReportData,
		Meta: models.SharedReportMeta{
			CreatedAt: models.Timestamp(report.CreatedAt),
			ExpiresAt: models.Timestamp(report.ExpiresAt),
		},
	})
}
