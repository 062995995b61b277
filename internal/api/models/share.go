package models

import "encoding/json"

// IssueShareRequest is the request body for issuing a report share link.
// ReportData is the full report payload, stored and returned verbatim.
type IssueShareRequest struct {
	ReportID           string          `json:"report_id"`
	CreatedByEmail     string          `json:"created_by_email,omitempty"`
	HSCode             string          `json:"hs_code,omitempty"`
	ProductDescription string          `json:"product_description,omitempty"`
	OriginCountry      string          `json:"origin_country,omitempty"`
	DestinationCountry string          `json:"destination_country,omitempty"`
	ReportData         json.RawMessage `json:"report_data" validate:"required"`
}

// IssueShareResponse is returned after a share link is issued.
type IssueShareResponse struct {
	Success    bool      `json:"success"`
	ShareURL   string    `json:"shareUrl"`
	ExpiryDate Timestamp `json:"expiryDate"`
}

// SharedReportMeta carries the lifecycle timestamps of a shared report.
type SharedReportMeta struct {
	CreatedAt Timestamp `json:"created_at"`
	ExpiresAt Timestamp `json:"expires_at"`
}

// SharedReportResponse wraps a shared report payload on lookup.
type SharedReportResponse struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Meta    SharedReportMeta `json:"meta"`
}
