package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/interfaces/http/dto"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase is one request against an engine and the response it expects
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           any
	Headers        map[string]string
	ExpectedStatus int
	// ExpectedCode is the error envelope code; empty for success responses
	ExpectedCode string
	Validate     func(t *testing.T, w *httptest.ResponseRecorder)
}

// RunHTTPTestCases runs every case as a subtest against engine
func RunHTTPTestCases(t *testing.T, engine http.Handler, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, engine, tc)
		})
	}
}

// RunHTTPTestCase serves one case and checks status, error code and the
// custom validation hook
func RunHTTPTestCase(t *testing.T, engine http.Handler, tc HTTPTestCase) {
	t.Helper()

	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	req := NewJSONRequest(t, method, tc.Path, tc.Body)
	for k, v := range tc.Headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, w.Code, "Unexpected status code: %s", w.Body.String())
	}
	if tc.ExpectedCode != "" {
		AssertErrorResponse(t, w, tc.ExpectedCode)
	}
	if tc.Validate != nil {
		tc.Validate(t, w)
	}
}

// NewJSONRequest builds a request with body marshalled as JSON. A nil body
// sends no body and no content type.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = ToJSONReader(t, body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// ToJSONReader converts a value to a JSON io.Reader. Strings and byte slices
// are sent verbatim so tests can post malformed bodies.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	switch raw := v.(type) {
	case string:
		return bytes.NewReader([]byte(raw))
	case []byte:
		return bytes.NewReader(raw)
	}
	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}

// DecodeData decodes the data field of a success envelope
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse JSON response: %s", w.Body.String())
	return resp.Data
}

// DecodePage decodes a list envelope into its items and pagination
func DecodePage[T any](t *testing.T, w *httptest.ResponseRecorder) ([]T, dto.Pagination) {
	t.Helper()

	var resp struct {
		Data       []T             `json:"data"`
		Pagination *dto.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse JSON response: %s", w.Body.String())
	require.NotNil(t, resp.Pagination, "Expected pagination in list response")
	return resp.Data, *resp.Pagination
}

// DecodeError decodes the error envelope
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorBody {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse JSON response: %s", w.Body.String())
	return resp.Error
}

// AssertErrorResponse asserts the response carries the error code
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) dto.ErrorBody {
	t.Helper()

	body := DecodeError(t, w)
	assert.Equal(t, expectedCode, body.Code, "Unexpected error code")
	assert.NotEmpty(t, body.Message, "Expected an error message")
	return body
}

// NewSession returns a session for a fresh user of tenantID
func NewSession(tenantID uuid.UUID, role identity.Role) *identity.Session {
	return &identity.Session{
		UserID:   uuid.New(),
		TenantID: tenantID,
		Role:     role,
		Email:    "tester@example.com",
		TokenID:  uuid.NewString(),
	}
}

// WithSession stands in for the Authenticate middleware in handler tests
func WithSession(session *identity.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session != nil {
			c.Set(middleware.SessionKey, session)
			c.Request = c.Request.WithContext(middleware.WithSession(c.Request.Context(), session))
		}
		c.Next()
	}
}
