package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the header carrying the shared key for share issuance.
const APIKeyHeader = "X-API-Key"

// APIKey creates middleware that requires the shared API key header. The
// comparison is constant-time so the key cannot be recovered byte by byte
// through response timing.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				// No key configured means the surface is closed.
				writeUnauthorized(w, r, "share issuance is not configured")
				return
			}

			presented := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				writeUnauthorized(w, r, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
