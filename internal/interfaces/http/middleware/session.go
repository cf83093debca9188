package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/infrastructure/auth"
	"github.com/bizledger/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionKey    = "session"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

type sessionContextKey struct{}

// SessionSource resolves a bearer token into a session
type SessionSource interface {
	Resolve(ctx context.Context, token string) (*identity.Session, error)
}

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, session *identity.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the session stored in ctx, or nil
func SessionFromContext(ctx context.Context) *identity.Session {
	session, _ := ctx.Value(sessionContextKey{}).(*identity.Session)
	return session
}

// GetSession retrieves the session of the current request, or nil
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if session, ok := v.(*identity.Session); ok {
			return session
		}
	}
	return SessionFromContext(c.Request.Context())
}

// Authenticate resolves the bearer token, if any, into a session. It never
// rejects a request itself: a missing, invalid, expired or revoked token
// leaves the request without a session and the gate on the route answers
// 401.
func Authenticate(source SessionSource, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader(AuthHeaderKey))
		if token == "" {
			c.Next()
			return
		}

		session, err := source.Resolve(c.Request.Context(), token)
		if err != nil {
			logAuthFailure(log, c, err)
			c.Next()
			return
		}

		c.Set(SessionKey, session)
		ctx := WithSession(c.Request.Context(), session)
		ctx = logger.WithFields(ctx,
			zap.String("tenant_id", session.TenantID.String()),
			zap.String("user_id", session.UserID.String()),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
}

// logAuthFailure keeps expected token problems at debug and reports
// infrastructure failures, such as an unreachable revocation store, as errors
func logAuthFailure(log *zap.Logger, c *gin.Context, err error) {
	fields := []zap.Field{zap.String("path", c.Request.URL.Path), zap.Error(err)}
	switch {
	case errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingTenantID),
		errors.Is(err, auth.ErrMissingUserID),
		errors.Is(err, auth.ErrUnknownRole):
		log.Debug("Rejected access token", fields...)
	case errors.Is(err, auth.ErrTokenRevoked):
		log.Info("Revoked access token presented", fields...)
	default:
		log.Error("Failed to resolve session", fields...)
	}
}
