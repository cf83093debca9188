package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockSessionSource struct {
	mock.Mock
}

func (m *mockSessionSource) Resolve(ctx context.Context, token string) (*identity.Session, error) {
	args := m.Called(ctx, token)
	if s := args.Get(0); s != nil {
		return s.(*identity.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCounter struct {
	mock.Mock
}

func (m *mockCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func newSession(role identity.Role) *identity.Session {
	return &identity.Session{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     role,
		Email:    "someone@example.com",
		TokenID:  uuid.NewString(),
	}
}

// withSession simulates Authenticate for tests that only exercise the gate
func withSession(s *identity.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			c.Set(SessionKey, s)
			c.Request = c.Request.WithContext(WithSession(c.Request.Context(), s))
		}
		c.Next()
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorBody {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}
