package middleware

import (
	"context"
	"net/http"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Denial explains why a request was refused
type Denial struct {
	Status  int
	Code    string
	Message string
}

var (
	denyUnauthenticated = &Denial{Status: http.StatusUnauthorized, Code: shared.CodeUnauthorized, Message: shared.ErrUnauthorized.Message}
	denyForbidden       = &Denial{Status: http.StatusForbidden, Code: shared.CodeForbidden, Message: shared.ErrForbidden.Message}
)

// Gate checks the caller's role against the permission a route requires
type Gate struct {
	logger *zap.Logger
}

// NewGate creates an authorization gate
func NewGate(logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{logger: logger}
}

// Authorize returns the session when its role holds any of perms. With no
// perms any authenticated session passes.
func (g *Gate) Authorize(ctx context.Context, perms ...identity.Permission) (*identity.Session, *Denial) {
	session := SessionFromContext(ctx)
	if session == nil {
		return nil, denyUnauthenticated
	}
	if len(perms) == 0 {
		return session, nil
	}
	for _, perm := range perms {
		if identity.HasPermission(session.Role, perm) {
			return session, nil
		}
	}
	return session, denyForbidden
}

// Require rejects requests whose session lacks perm
func (g *Gate) Require(perm identity.Permission) gin.HandlerFunc {
	return g.RequireAny(perm)
}

// RequireAny rejects requests whose session holds none of perms
func (g *Gate) RequireAny(perms ...identity.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, denial := g.Authorize(c.Request.Context(), perms...)
		if denial != nil {
			g.deny(c, session, perms, denial)
			return
		}
		c.Next()
	}
}

// RequireSession rejects requests without a session
func (g *Gate) RequireSession() gin.HandlerFunc {
	return g.RequireAny()
}

func (g *Gate) deny(c *gin.Context, session *identity.Session, perms []identity.Permission, denial *Denial) {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", denial.Status),
		zap.Any("required", perms),
	}
	if session != nil {
		fields = append(fields,
			zap.String("user_id", session.UserID.String()),
			zap.String("tenant_id", session.TenantID.String()),
			zap.String("role", string(session.Role)),
		)
	}
	g.logger.Warn("Access denied", fields...)

	c.AbortWithStatusJSON(denial.Status, dto.NewErrorResponseWithRequestID(
		denial.Code, denial.Message, getRequestIDFromContext(c), nil,
	))
}
