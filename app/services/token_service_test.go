// Package services provides technical concerns shared by the HTTP layer, such as token handling
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		"test-secret-key-for-jwt-signing-32-chars",
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name            string
		accessTokenTTL  time.Duration
		refreshTokenTTL time.Duration
		issuer          string
		audience        string
		secretKey       string
		expectError     bool
	}{
		{
			name:            "valid configuration",
			accessTokenTTL:  15 * time.Minute,
			refreshTokenTTL: 7 * 24 * time.Hour,
			issuer:          "test-issuer",
			audience:        "test-audience",
			secretKey:       "test-secret-key-for-jwt-signing-32-chars",
			expectError:     false,
		},
		{
			name:            "missing secret key",
			accessTokenTTL:  15 * time.Minute,
			refreshTokenTTL: 7 * 24 * time.Hour,
			issuer:          "test-issuer",
			audience:        "test-audience",
			secretKey:       "",
			expectError:     true,
		},
		{
			name:            "empty issuer and audience",
			accessTokenTTL:  15 * time.Minute,
			refreshTokenTTL: 7 * 24 * time.Hour,
			issuer:          "",
			audience:        "",
			secretKey:       "test-secret-key-for-jwt-signing-32-chars",
			expectError:     false, // Should not error, just use empty strings
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				tt.accessTokenTTL,
				tt.refreshTokenTTL,
				tt.issuer,
				tt.audience,
				tt.secretKey,
			)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)
}

func TestValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	t.Run("valid access token round trip", func(t *testing.T) {
		accessToken, _, err := service.GenerateTokens(42)
		require.NoError(t, err)

		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.OperatorID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("refresh token carries its own type", func(t *testing.T) {
		_, refreshToken, err := service.GenerateTokens(42)
		require.NoError(t, err)

		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		claims, err := service.ValidateToken("not.a.token")
		require.Error(t, err)
		assert.Nil(t, claims)
		assert.Equal(t, ErrTokenInvalid, err)
	})

	t.Run("token signed with a different secret is rejected", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute,
			7*24*time.Hour,
			"test-issuer",
			"test-audience",
			"another-secret-key-for-jwt-signing-32ch",
		)
		require.NoError(t, err)

		accessToken, _, err := other.GenerateTokens(42)
		require.NoError(t, err)

		claims, err := service.ValidateToken(accessToken)
		require.Error(t, err)
		assert.Nil(t, claims)
		assert.Equal(t, ErrTokenInvalid, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expiring, err := NewTokenService(
			-1*time.Minute,
			7*24*time.Hour,
			"test-issuer",
			"test-audience",
			"test-secret-key-for-jwt-signing-32-chars",
		)
		require.NoError(t, err)

		accessToken, _, err := expiring.GenerateTokens(42)
		require.NoError(t, err)

		claims, err := service.ValidateToken(accessToken)
		require.Error(t, err)
		assert.Nil(t, claims)
		assert.Equal(t, ErrTokenExpired, err)
	})
}
