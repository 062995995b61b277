package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tariffai/privacy-api/internal/api/middleware"
	"github.com/tariffai/privacy-api/internal/api/models"
	"github.com/tariffai/privacy-api/internal/api/response"
	"github.com/tariffai/privacy-api/internal/dsr"
)

// AdminHandler handles the admin review surface for data subject requests.
type AdminHandler struct {
	service *dsr.Service
	logger  zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *dsr.Service, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{service: service, logger: logger}
}

// ListRequests handles GET /v1/admin/privacy/requests - list data requests.
// Optional query params: status, limit.
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := dsr.ListFilter{
		Status: dsr.RequestStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			response.BadRequest(w, r, "limit must be a positive integer", nil)
			return
		}
		filter.Limit = limit
	}

	requests, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("listing data requests failed")
		response.InternalError(w, r, "an unexpected error occurred")
		return
	}

	items := make([]models.AdminDataRequest, 0, len(requests))
	for i := range requests {
		items = append(items, models.NewAdminDataRequest(&requests[i]))
	}
	response.JSON(w, r, http.StatusOK, models.AdminDataRequestList{Items: items})
}

// GetRequest handles GET /v1/admin/privacy/requests/{requestId}.
func (h *AdminHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		response.BadRequest(w, r, "requestId is required", nil)
		return
	}

	req, err := h.service.Get(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, dsr.ErrRequestNotFound) {
			response.NotFound(w, r, "data request not found")
			return
		}
		h.logger.Error().Err(err).Msg("getting data request failed")
		response.InternalError(w, r, "an unexpected error occurred")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAdminDataRequest(req))
}

// RejectRequest handles POST /v1/admin/privacy/requests/{requestId}/reject.
func (h *AdminHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		response.BadRequest(w, r, "requestId is required", nil)
		return
	}

	var input models.RejectDataRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Reason == "" {
		response.BadRequest(w, r, "reason is required", []models.FieldError{
			{Field: "reason", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	if err := h.service.Reject(r.Context(), requestID, input.Reason); err != nil {
		switch {
		case errors.Is(err, dsr.ErrRequestNotFound):
			response.NotFound(w, r, "data request not found")
		case errors.Is(err, dsr.ErrAlreadyCompleted):
			response.Conflict(w, r, "request already completed")
		case errors.Is(err, dsr.ErrAlreadyRejected):
			response.Conflict(w, r, "request already rejected")
		default:
			h.logger.Error().Err(err).Msg("rejecting data request failed")
			response.InternalError(w, r, "an unexpected error occurred")
		}
		return
	}

	h.logger.Info().
		Str("request_id", requestID).
		Str("admin", middleware.GetAdminSubject(r.Context())).
		Msg("data request rejected by admin")

	response.JSON(w, r, http.StatusOK, models.VerifyDataResponse{
		Success: true,
		Message: "Request rejected.",
	})
}
