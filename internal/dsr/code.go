package dsr

import (
	"crypto/rand"
	"strings"
)

// codeAlphabet is the character set for verification codes. Uppercase
// alphanumerics only, so codes survive being read aloud or retyped.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeLength is the number of characters in a verification code.
const codeLength = 6

// maxUnbiasedByte is the largest multiple of len(codeAlphabet) that fits in
// a byte. Bytes at or above it are resampled so every character is equally
// likely.
const maxUnbiasedByte = 256 - 256%len(codeAlphabet)

// NewVerificationCode produces a 6-character uppercase alphanumeric code.
// This is a human-enterable usability code, not a security token; collision
// probability is accepted as low rather than enforced.
func NewVerificationCode() string {
	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand never fails on supported platforms
			panic("dsr: reading random bytes: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == codeLength {
				break
			}
		}
	}
	return string(out)
}

// NormalizeCode upper-cases and trims user-entered code input so comparison
// against the stored code is case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
