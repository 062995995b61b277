package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tariffai/privacy-api/internal/api/middleware"
	"github.com/tariffai/privacy-api/internal/api/models"
	"github.com/tariffai/privacy-api/internal/api/response"
	"github.com/tariffai/privacy-api/internal/dsr"
)

// DSRHandler handles the public data-subject-request endpoints.
type DSRHandler struct {
	service *dsr.Service
	logger  zerolog.Logger
}

// NewDSRHandler creates a new DSRHandler.
func NewDSRHandler(service *dsr.Service, logger zerolog.Logger) *DSRHandler {
	return &DSRHandler{service: service, logger: logger}
}

// Submit handles POST /v1/privacy/requests - create a data subject request.
func (h *DSRHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input models.SubmitDataRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fieldErrors []models.FieldError
	if input.RequestType == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "request_type", Message: "required", Code: "REQUIRED"})
	} else if !dsr.ValidRequestType(dsr.RequestType(input.RequestType)) {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "request_type", Message: "must be a valid request type", Code: "INVALID"})
	}
	if input.RequesterEmail == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "requester_email", Message: "required", Code: "REQUIRED"})
	}
	if input.RequesterName == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "requester_name", Message: "required", Code: "REQUIRED"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "missing or invalid fields", fieldErrors)
		return
	}

	req, err := h.service.Submit(r.Context(), dsr.SubmitInput{
		RequestType:    dsr.RequestType(input.RequestType),
		RequesterEmail: input.RequesterEmail,
		RequesterName:  input.RequesterName,
		RequestDetails: input.RequestDetails,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/privacy/requests/%s", req.ID)
	response.Created(w, r, location, models.SubmitDataResponse{
		Success:   true,
		RequestID: req.ID,
		Message:   "Verification code sent. Check your email to continue.",
	})
}

// Verify handles POST /v1/privacy/requests/verify - verify a request code.
func (h *DSRHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var input models.VerifyDataRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.RequestID == "" || input.VerificationCode == "" {
		response.BadRequest(w, r, "request_id and verification_code are required", nil)
		return
	}

	if err := h.service.Verify(r.Context(), input.RequestID, input.VerificationCode); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.VerifyDataResponse{
		Success: true,
		Message: "Request verified. Your request is now under review.",
	})
}

// Access handles POST /v1/privacy/requests/access - fulfil an access request.
// Responds with JSON by default; ?format=csv returns the export flattened
// to CSV rows.
func (h *DSRHandler) Access(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeFulfillInput(w, r)
	if !ok {
		return
	}

	export, err := h.service.FulfillAccess(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		h.writeExportCSV(w, r, export)
		return
	}

	response.JSON(w, r, http.StatusOK, models.AccessDataResponse{
		Success: true,
		Data:    export,
	})
}

// Erasure handles POST /v1/privacy/requests/erasure - fulfil an erasure request.
func (h *DSRHandler) Erasure(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeFulfillInput(w, r)
	if !ok {
		return
	}

	summary, err := h.service.FulfillErasure(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ErasureDataResponse{
		Success:         true,
		Message:         "Personal data has been erased.",
		DeletionSummary: summary,
	})
}

// decodeFulfillInput decodes and validates the shared access/erasure body.
func (h *DSRHandler) decodeFulfillInput(w http.ResponseWriter, r *http.Request) (dsr.FulfillInput, bool) {
	var input models.FulfillDataRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return dsr.FulfillInput{}, false
	}
	if input.Email == "" || input.RequestID == "" || input.VerificationCode == "" {
		response.BadRequest(w, r, "email, request_id and verification_code are required", nil)
		return dsr.FulfillInput{}, false
	}
	return dsr.FulfillInput{
		Email:            input.Email,
		RequestID:        input.RequestID,
		VerificationCode: input.VerificationCode,
	}, true
}

// writeServiceError maps domain errors to problem responses.
func (h *DSRHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dsr.ErrRequestNotFound):
		response.NotFound(w, r, "data request not found")
	case errors.Is(err, dsr.ErrInvalidCode):
		response.BadRequest(w, r, "invalid verification code", nil)
	case errors.Is(err, dsr.ErrCodeExpired):
		response.BadRequest(w, r, "verification code has expired", nil)
	case errors.Is(err, dsr.ErrAlreadyVerified):
		response.Conflict(w, r, "request already verified")
	case errors.Is(err, dsr.ErrAlreadyCompleted):
		response.Conflict(w, r, "request already completed")
	case errors.Is(err, dsr.ErrAlreadyRejected):
		response.Conflict(w, r, "request already rejected")
	case errors.Is(err, dsr.ErrNotAuthorized):
		response.Forbidden(w, r, "no verified request matches the supplied credentials")
	case errors.Is(err, dsr.ErrNotErasureRequest):
		response.Forbidden(w, r, "request is not an erasure request")
	case errors.Is(err, dsr.ErrReadOnly):
		response.ServiceUnavailable(w, r, "privacy operations are temporarily suspended")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("data request operation failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}

// writeExportCSV flattens the export document into per-collection CSV rows
// of (collection, field, value) so the whole export fits one table.
func (h *DSRHandler) writeExportCSV(w http.ResponseWriter, r *http.Request, export *dsr.ExportDocument) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="personal-data-export.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"collection", "record", "field", "value"})
	_ = cw.Write([]string{"export", "0", "collection_date", export.CollectionDate.Format(time.RFC3339)})
	_ = cw.Write([]string{"export", "0", "requester_email", export.RequesterEmail})

	if export.Account != nil {
		writeRecordCSV(cw, "account", 0, export.Account)
	}
	writeCollectionCSV(cw, dsr.CollectionNewsletterSubscriptions, export.NewsletterSubscriptions)
	writeCollectionCSV(cw, dsr.CollectionContactSubmissions, export.ContactSubmissions)
	writeCollectionCSV(cw, dsr.CollectionPageViews, export.PageViews)
	writeCollectionCSV(cw, dsr.CollectionUserActions, export.UserActions)
	writeCollectionCSV(cw, dsr.CollectionConversions, export.Conversions)
	writeCollectionCSV(cw, dsr.CollectionConsentRecords, export.ConsentRecords)
}

// writeCollectionCSV writes one row per field for every record in a collection.
func writeCollectionCSV[T any](cw *csv.Writer, collection string, records []T) {
	for i := range records {
		writeRecordCSV(cw, collection, i, &records[i])
	}
}

// writeRecordCSV flattens a single record through its JSON representation,
// reusing the same field names as the JSON export.
func writeRecordCSV(cw *csv.Writer, collection string, index int, record any) {
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return
	}
	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Strings(names)
	for _, field := range names {
		_ = cw.Write([]string{collection, strconv.Itoa(index), field, fmt.Sprint(fields[field])})
	}
}
