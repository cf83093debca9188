package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRevocationList struct{ MemoryRevocationList }

func (*failingRevocationList) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestSessionResolver_Resolve(t *testing.T) {
	svc := newTestJWTService()
	revoked := NewMemoryRevocationList()
	resolver := NewSessionResolver(svc, revoked)
	ctx := context.Background()

	session := newTestSession()
	token, err := svc.GenerateAccessToken(session)
	require.NoError(t, err)

	got, err := resolver.Resolve(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)

	require.NoError(t, revoked.Revoke(ctx, token.TokenID, time.Hour))
	_, err = resolver.Resolve(ctx, token.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestSessionResolver_UserRevocation(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Minute) }
	revoked := NewMemoryRevocationList()
	resolver := NewSessionResolver(svc, revoked)
	ctx := context.Background()

	session := newTestSession()
	token, err := svc.GenerateAccessToken(session)
	require.NoError(t, err)

	require.NoError(t, revoked.RevokeUser(ctx, session.UserID, time.Hour))
	_, err = resolver.Resolve(ctx, token.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	other := newTestSession()
	other.UserID = uuid.New()
	otherToken, err := svc.GenerateAccessToken(other)
	require.NoError(t, err)
	_, err = resolver.Resolve(ctx, otherToken.Token)
	assert.NoError(t, err)
}

func TestSessionResolver_StoreErrorDenies(t *testing.T) {
	svc := newTestJWTService()
	resolver := NewSessionResolver(svc, &failingRevocationList{})

	token, err := svc.GenerateAccessToken(newTestSession())
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token.Token)
	assert.Error(t, err)
}

func TestSessionResolver_WithoutRevocation(t *testing.T) {
	svc := newTestJWTService()
	resolver := NewSessionResolver(svc, nil)

	token, err := svc.GenerateAccessToken(newTestSession())
	require.NoError(t, err)
	_, err = resolver.Resolve(context.Background(), token.Token)
	assert.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
