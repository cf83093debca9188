package auth

import (
	"testing"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func newTestSession() identity.Session {
	return identity.Session{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Role:     identity.RoleManager,
		Email:    "manager@example.com",
	}
}

func TestNewJWTService_DefaultsExpiration(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s"})
	assert.Equal(t, 12*time.Hour, svc.Expiration())
}

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	session := newTestSession()

	token, err := svc.GenerateAccessToken(session)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.NotEmpty(t, token.TokenID)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, token.TokenID, claims.ID)

	got, err := claims.Session()
	require.NoError(t, err)
	assert.Equal(t, session.TenantID, got.TenantID)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, identity.RoleManager, got.Role)
	assert.Equal(t, "manager@example.com", got.Email)
	assert.Equal(t, token.TokenID, got.TokenID)
}

func TestGenerateAccessToken_UniqueTokenIDs(t *testing.T) {
	svc := newTestJWTService()
	session := newTestSession()

	a, err := svc.GenerateAccessToken(session)
	require.NoError(t, err)
	b, err := svc.GenerateAccessToken(session)
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.GenerateAccessToken(newTestSession())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_NotYetValid(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	token, err := svc.GenerateAccessToken(newTestSession())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.GenerateAccessToken(newTestSession())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", Issuer: "test-issuer"})
	otherIssuer := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else"})

	tests := []struct {
		name  string
		svc   *JWTService
		token string
	}{
		{"garbage", svc, "invalid-token"},
		{"empty", svc, ""},
		{"wrong secret", other, token.Token},
		{"wrong issuer", otherIssuer, token.Token},
		{"tampered", svc, token.Token + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
		Role:     "ADMIN",
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_MissingClaims(t *testing.T) {
	svc := newTestJWTService()
	sign := func(c *Claims) string {
		c.Issuer = "test-issuer"
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(svc.secret)
		require.NoError(t, err)
		return s
	}

	_, err := svc.ValidateAccessToken(sign(&Claims{UserID: uuid.NewString()}))
	assert.ErrorIs(t, err, ErrMissingTenantID)

	_, err = svc.ValidateAccessToken(sign(&Claims{TenantID: uuid.NewString()}))
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestClaimsSession(t *testing.T) {
	t.Run("unknown role", func(t *testing.T) {
		c := &Claims{TenantID: uuid.NewString(), UserID: uuid.NewString(), Role: "OWNER"}
		_, err := c.Session()
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("malformed ids", func(t *testing.T) {
		c := &Claims{TenantID: "nope", UserID: uuid.NewString(), Role: "USER"}
		_, err := c.Session()
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}

func TestClaimsRemainingTTL(t *testing.T) {
	now := time.Now()
	c := &Claims{}
	assert.Zero(t, c.RemainingTTL(now))

	c.ExpiresAt = jwt.NewNumericDate(now.Add(10 * time.Minute))
	assert.InDelta(t, float64(10*time.Minute), float64(c.RemainingTTL(now)), float64(time.Second))

	c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	assert.Zero(t, c.RemainingTTL(now))
}
