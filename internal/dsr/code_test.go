package dsr_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tariffai/privacy-api/internal/dsr"
)

func TestNewVerificationCode(t *testing.T) {
	code := dsr.NewVerificationCode()

	assert.Len(t, code, 6)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]+$`), code)
}

func TestNewVerificationCode_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[dsr.NewVerificationCode()] = true
	}

	// 36^6 values; 100 draws colliding down to a handful would mean the
	// generator is broken, not unlucky.
	assert.Greater(t, len(seen), 95)
}

func TestNewVerificationCode_CoversAlphabet(t *testing.T) {
	counts := make(map[byte]int)
	for i := 0; i < 300; i++ {
		for _, c := range []byte(dsr.NewVerificationCode()) {
			counts[c]++
		}
	}

	// 1800 draws over 36 characters; a character that never appears would
	// mean part of the alphabet is unreachable.
	for _, c := range []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789") {
		assert.Positive(t, counts[c], "character %q never generated", c)
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "abc123", "ABC123"},
		{"mixed case", "aBc123", "ABC123"},
		{"surrounding whitespace", "  ABC123  ", "ABC123"},
		{"already normalized", "ABC123", "ABC123"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dsr.NormalizeCode(tt.input))
		})
	}
}
