package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createCustomerBody struct {
	Code  string `json:"code" binding:"required,max=4"`
	Email string `json:"email" binding:"omitempty,email"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/customers", func(c *gin.Context) {
		var body createCustomerBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError_Fields(t *testing.T) {
	w := postJSON(validationRouter(), `{"code":"TOOLONG","email":"nope"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, shared.CodeValidation, body.Code)
	assert.Equal(t, "Request validation failed", body.Message)
	assert.NotEmpty(t, body.RequestID)

	fields, ok := body.Details["fields"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 2)
	first := fields[0].(map[string]any)
	assert.Equal(t, "code", first["field"])
	assert.Equal(t, "Must be at most 4 characters", first["message"])
	second := fields[1].(map[string]any)
	assert.Equal(t, "email", second["field"])
	assert.Equal(t, "Invalid email format", second["message"])
}

func TestHandleValidationError_MalformedBody(t *testing.T) {
	w := postJSON(validationRouter(), `{"code":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Invalid request body", body.Message)
	assert.Nil(t, body.Details)
}

func TestFormatValidationErrors_PlainError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("boom"), "req-1")

	assert.Equal(t, dto.NewValidationErrorResponse("Invalid request body", "req-1", nil), resp)
}

func TestHandleValidationError_Valid(t *testing.T) {
	w := postJSON(validationRouter(), `{"code":"C1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

type createSaleBody struct {
	Items    []string `json:"items" binding:"required,min=2"`
	Quantity int64    `json:"quantity" binding:"min=1"`
	Status   string   `json:"status" binding:"omitempty,oneof=DRAFT COMPLETED"`
}

func TestFieldMessage_Bounds(t *testing.T) {
	SetupValidator()
	router := gin.New()
	router.POST("/sales", func(c *gin.Context) {
		var body createSaleBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{"items":["a"],"quantity":0,"status":"VOID"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeError(t, w).Details["fields"].([]any)
	require.Len(t, fields, 3)
	messages := make(map[string]string, len(fields))
	for _, f := range fields {
		m := f.(map[string]any)
		messages[m["field"].(string)] = m["message"].(string)
	}
	assert.Equal(t, "Must be at least 2 items", messages["items"])
	assert.Equal(t, "Must be at least 1", messages["quantity"])
	assert.Equal(t, "Must be one of: DRAFT COMPLETED", messages["status"])
}
