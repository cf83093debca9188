package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveGated(session *identity.Session, guard func(*Gate) gin.HandlerFunc) (*httptest.ResponseRecorder, int, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	gate := NewGate(zap.New(core))

	calls := 0
	router := gin.New()
	router.Use(RequestID())
	router.DELETE("/api/v1/customers/:id", withSession(session), guard(gate), func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/customers/1", nil)
	req.Header.Set(RequestIDHeader, "req-9")
	router.ServeHTTP(w, req)
	return w, calls, logs
}

func requireDelete(g *Gate) gin.HandlerFunc { return g.Require(identity.PermDeleteCustomers) }

func TestGate_NoSession(t *testing.T) {
	w, calls, logs := serveGated(nil, requireDelete)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, calls, "handler must not run")
	body := decodeError(t, w)
	assert.Equal(t, shared.CodeUnauthorized, body.Code)
	assert.Equal(t, "req-9", body.RequestID)
	assert.Equal(t, 1, logs.FilterMessage("Access denied").Len())
}

func TestGate_RoleWithoutPermission(t *testing.T) {
	session := newSession(identity.RoleUser)
	w, calls, logs := serveGated(session, requireDelete)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, calls)
	assert.Equal(t, shared.CodeForbidden, decodeError(t, w).Code)

	entries := logs.FilterMessage("Access denied").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, session.UserID.String(), entries[0].ContextMap()["user_id"])
		assert.Equal(t, "USER", entries[0].ContextMap()["role"])
	}
}

func TestGate_RolesWithPermission(t *testing.T) {
	for _, role := range []identity.Role{identity.RoleAdmin, identity.RoleManager} {
		t.Run(string(role), func(t *testing.T) {
			w, calls, logs := serveGated(newSession(role), requireDelete)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, 1, calls)
			assert.Zero(t, logs.Len())
		})
	}
}

func TestGate_RequireAny(t *testing.T) {
	anyOf := func(g *Gate) gin.HandlerFunc {
		return g.RequireAny(identity.PermManageSettings, identity.PermCreateCustomers)
	}

	w, calls, _ := serveGated(newSession(identity.RoleUser), anyOf)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, calls)
}

func TestGate_RequireSession(t *testing.T) {
	w, _, _ := serveGated(newSession(identity.RoleUser), (*Gate).RequireSession)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _, _ = serveGated(nil, (*Gate).RequireSession)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGate_UnknownRoleDenied(t *testing.T) {
	w, calls, _ := serveGated(newSession(identity.Role("AUDITOR")), requireDelete)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, calls)
}
