package services

import (
	"testing"
	"time"

	testingutil "github.com/amirphl/personnel-directory/testing"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing on a fake clock
func createTestTokenService(t *testing.T) (TokenService, *testingutil.FakeClock) {
	t.Helper()
	clock := testingutil.NewFakeClock()
	service, err := NewTokenService(8*time.Hour, "test-issuer", "test-audience", testSecretKey, clock.Now)
	require.NoError(t, err)
	return service, clock
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name           string
		accessTokenTTL time.Duration
		issuer         string
		audience       string
		secretKey      string
		expectError    bool
	}{
		{
			name:           "valid configuration",
			accessTokenTTL: 8 * time.Hour,
			issuer:         "test-issuer",
			audience:       "test-audience",
			secretKey:      testSecretKey,
		},
		{
			name:           "missing secret key",
			accessTokenTTL: 8 * time.Hour,
			issuer:         "test-issuer",
			audience:       "test-audience",
			expectError:    true,
		},
		{
			name:           "short secret key",
			accessTokenTTL: 8 * time.Hour,
			secretKey:      "too-short",
			expectError:    true,
		},
		{
			name:           "zero ttl",
			accessTokenTTL: 0,
			secretKey:      testSecretKey,
			expectError:    true,
		},
		{
			name:           "empty issuer and audience",
			accessTokenTTL: time.Hour,
			secretKey:      testSecretKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(tt.accessTokenTTL, tt.issuer, tt.audience, tt.secretKey, nil)
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

func TestGenerateAdminToken(t *testing.T) {
	service, clock := createTestTokenService(t)

	token, expiresAt, err := service.GenerateAdminToken("admin", "session-1")
	require.NoError(t, err)
	assert.Contains(t, token, "eyJ")
	assert.Equal(t, clock.Now().Add(8*time.Hour), expiresAt)

	other, _, err := service.GenerateAdminToken("admin", "session-1")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	_, _, err = service.GenerateAdminToken("", "session-1")
	assert.Error(t, err)
	_, _, err = service.GenerateAdminToken("admin", "")
	assert.Error(t, err)
}

func TestValidateAdminToken(t *testing.T) {
	service, clock := createTestTokenService(t)

	token, _, err := service.GenerateAdminToken("admin", "session-1")
	require.NoError(t, err)

	t.Run("ValidToken", func(t *testing.T) {
		claims, err := service.ValidateAdminToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
		assert.Equal(t, "session-1", claims.SessionID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.Equal(t, clock.Now(), claims.IssuedAt)
	})

	invalid := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"invalid token format", "invalid.token.format"},
		{"malformed token", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAdminToken(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.Nil(t, claims)
		})
	}

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewTokenService(8*time.Hour, "test-issuer", "test-audience", "another-secret-key-for-jwt-signing-32", clock.Now)
		require.NoError(t, err)
		_, err = other.ValidateAdminToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("WrongAudience", func(t *testing.T) {
		other, err := NewTokenService(8*time.Hour, "test-issuer", "other-audience", testSecretKey, clock.Now)
		require.NoError(t, err)
		_, err = other.ValidateAdminToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("UnexpectedAlgorithm", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"username":   "admin",
			"session_id": "session-1",
			"token_type": "access",
			"jti":        "x",
			"iat":        clock.Now().Unix(),
			"exp":        clock.Now().Add(time.Hour).Unix(),
			"iss":        "test-issuer",
			"aud":        "test-audience",
		})
		signed, err := forged.SignedString([]byte(testSecretKey))
		require.NoError(t, err)
		_, err = service.ValidateAdminToken(signed)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("Expired", func(t *testing.T) {
		service, clock := createTestTokenService(t)
		token, _, err := service.GenerateAdminToken("admin", "session-1")
		require.NoError(t, err)

		clock.Advance(8*time.Hour + time.Second)
		_, err = service.ValidateAdminToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestRevokeToken(t *testing.T) {
	service, _ := createTestTokenService(t)

	token, _, err := service.GenerateAdminToken("admin", "session-1")
	require.NoError(t, err)
	claims, err := service.ValidateAdminToken(token)
	require.NoError(t, err)
	assert.False(t, service.IsTokenRevoked(claims.TokenID))

	require.NoError(t, service.RevokeToken(token))
	assert.True(t, service.IsTokenRevoked(claims.TokenID))

	_, err = service.ValidateAdminToken(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.Error(t, service.RevokeToken("invalid.token.format"))
}
