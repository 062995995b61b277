package models

import "github.com/tariffai/privacy-api/internal/dsr"

// SubmitDataRequest is the request body for submitting a data subject request.
type SubmitDataRequest struct {
	RequestType    string `json:"request_type" validate:"required"`
	RequesterEmail string `json:"requester_email" validate:"required,email"`
	RequesterName  string `json:"requester_name" validate:"required"`
	RequestDetails string `json:"request_details,omitempty"`
}

// SubmitDataResponse is returned after a data subject request is created.
type SubmitDataResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

// VerifyDataRequest is the request body for verifying a data subject request.
type VerifyDataRequest struct {
	RequestID        string `json:"request_id" validate:"required"`
	VerificationCode string `json:"verification_code" validate:"required"`
}

// VerifyDataResponse is returned after a successful verification.
type VerifyDataResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FulfillDataRequest is the request body for access and erasure fulfilment.
// The email/id/code triple re-proves the requester's identity; there is no
// session.
type FulfillDataRequest struct {
	Email            string `json:"email" validate:"required,email"`
	RequestID        string `json:"request_id" validate:"required"`
	VerificationCode string `json:"verification_code" validate:"required"`
}

// AccessDataResponse wraps the personal-data export document.
type AccessDataResponse struct {
	Success bool                `json:"success"`
	Data    *dsr.ExportDocument `json:"data"`
}

// ErasureDataResponse reports per-collection deletion counts.
type ErasureDataResponse struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	DeletionSummary *dsr.ErasureSummary `json:"deletion_summary"`
}

// AdminDataRequest is the admin view of a data subject request. The
// verification code is never included.
type AdminDataRequest struct {
	ID                 string     `json:"id"`
	RequestType        string     `json:"request_type"`
	RequesterEmail     string     `json:"requester_email"`
	RequesterName      string     `json:"requester_name"`
	RequestDetails     string     `json:"request_details,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	RequestStatus      string     `json:"request_status"`
	ResponseNotes      string     `json:"response_notes,omitempty"`
	CreatedDate        Timestamp  `json:"created_date"`
	CompletedDate      *Timestamp `json:"completed_date,omitempty"`
}

// AdminDataRequestList is a list of data subject requests.
type AdminDataRequestList struct {
	Items []AdminDataRequest `json:"items"`
}

// RejectDataRequest is the request body for an admin rejection.
type RejectDataRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// NewAdminDataRequest converts a domain request to its admin view.
func NewAdminDataRequest(req *dsr.DataRequest) AdminDataRequest {
	out := AdminDataRequest{
		ID:                 req.ID,
		RequestType:        string(req.RequestType),
		RequesterEmail:     req.RequesterEmail,
		RequesterName:      req.RequesterName,
		RequestDetails:     req.RequestDetails,
		VerificationStatus: string(req.VerificationStatus),
		RequestStatus:      string(req.RequestStatus),
		ResponseNotes:      req.ResponseNotes,
		CreatedDate:        Timestamp(req.CreatedDate),
	}
	if req.CompletedDate != nil {
		completed := Timestamp(*req.CompletedDate)
		out.CompletedDate = &completed
	}
	return out
}
