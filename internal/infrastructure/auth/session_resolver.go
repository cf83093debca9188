package auth

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
)

// SessionResolver turns a bearer token into a session. A token that fails
// validation or has been revoked resolves to an error.
type SessionResolver struct {
	tokens  *JWTService
	revoked RevocationList
}

// NewSessionResolver creates a resolver. revoked may be nil when revocation
// is not used.
func NewSessionResolver(tokens *JWTService, revoked RevocationList) *SessionResolver {
	return &SessionResolver{tokens: tokens, revoked: revoked}
}

// Resolve validates the token and checks both revocation entries
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*identity.Session, error) {
	claims, err := r.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	session, err := claims.Session()
	if err != nil {
		return nil, err
	}
	if r.revoked == nil {
		return session, nil
	}

	revoked, err := r.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	revoked, err = r.revoked.IsUserRevoked(ctx, session.UserID, issuedAt)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return session, nil
}
