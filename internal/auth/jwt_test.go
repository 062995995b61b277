package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffai/privacy-api/internal/auth"
)

func TestJWTService_GenerateAndValidateAdminToken(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.tariff.ai",
		Audience:   "tariffai-privacy-api",
	})

	// Generate token
	token, expiresAt, err := svc.GenerateAdminToken("ops@tariff.ai")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	// Validate token
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@tariff.ai", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "https://api.tariff.ai", claims.Issuer)
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.tariff.ai",
		Audience:   "tariffai-privacy-api",
	})

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_WrongSigningKey(t *testing.T) {
	// Generate with one key
	svc1 := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "key-one",
		Issuer:     "https://api.tariff.ai",
		Audience:   "tariffai-privacy-api",
	})

	token, _, err := svc1.GenerateAdminToken("ops@tariff.ai")
	require.NoError(t, err)

	// Validate with different key
	svc2 := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "key-two",
		Issuer:     "https://api.tariff.ai",
		Audience:   "tariffai-privacy-api",
	})

	_, err = svc2.ValidateToken(token)
	assert.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTService_WrongIssuer(t *testing.T) {
	svc1 := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-key",
		Issuer:     "issuer-one",
		Audience:   "tariffai-privacy-api",
	})

	token, _, err := svc1.GenerateAdminToken("ops@tariff.ai")
	require.NoError(t, err)

	// Validate with different issuer
	svc2 := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-key",
		Issuer:     "issuer-two",
		Audience:   "tariffai-privacy-api",
	})

	_, err = svc2.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_WrongAudience(t *testing.T) {
	svc1 := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-key",
		Issuer:     "https://api.tariff.ai",
		Audience:   "audience-one",
	})

	token, _, err := svc1.GenerateAdminToken("ops@tariff.ai")
	require.NoError(t, err)

	// Validate with different audience
	svc2 := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-key",
		Issuer:     "https://api.tariff.ai",
		Audience:   "audience-two",
	})

	_, err = svc2.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_MissingAdminRole(t *testing.T) {
	cfg := auth.JWTConfig{
		SigningKey: "test-key",
		Issuer:     "https://api.tariff.ai",
		Audience:   "tariffai-privacy-api",
	}
	svc := auth.NewJWTService(cfg)

	// A token signed with the right key but without the admin role claim
	// must be rejected.
	now := time.Now()
	claims := auth.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   "ops@tariff.ai",
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Role: "viewer",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SigningKey))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
