// Package share implements shareable report links: opaque tokens that grant
// time-limited public read access to a report snapshot.
package share

import (
	"encoding/json"
	"time"
)

// ShareTTL is how long a share link stays valid after issuance.
const ShareTTL = 7 * 24 * time.Hour

// SharedReport is a publicly shareable snapshot of a tariff report. The
// token is the sole lookup key; ReportData is the full payload, stored and
// returned verbatim.
type SharedReport struct {
	Token              string          `json:"token"`
	ReportID           string          `json:"report_id"`
	CreatedByEmail     string          `json:"created_by_email"`
	HSCode             string          `json:"hs_code"`
	ProductDescription string          `json:"product_description"`
	OriginCountry      string          `json:"origin_country"`
	DestinationCountry string          `json:"destination_country"`
	ReportData         json.RawMessage `json:"report_data"`
	CreatedAt          time.Time       `json:"created_at"`
	ExpiresAt          time.Time       `json:"expires_at"`
}

// Expired reports whether the link is past its expiry at the given instant.
// Expiry is enforced at read time; the record itself is kept until the
// maintenance sweep prunes it.
func (r *SharedReport) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
