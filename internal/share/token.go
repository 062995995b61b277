package share

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// ShareTokenLength is the number of random bytes in a share token.
const ShareTokenLength = 16

// NewShareToken creates an opaque URL-safe token. Unlike the verification
// code, this is a security token: it is the only credential guarding the
// shared report.
func NewShareToken() (string, error) {
	bytes := make([]byte, ShareTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
