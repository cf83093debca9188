// Package handler holds the gin handlers of the /api/v1 surface. Handlers
// bind and validate the request, call one application service and write the
// response envelope; authorization has already happened in the route's gate.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/infrastructure/logger"
	"github.com/bizledger/backend/internal/interfaces/http/dto"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID set by the RequestID middleware
func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// respondPage sends a list response with pagination
func respondPage[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// HandleError converts an error into the error envelope. Domain errors keep
// their code and details; anything else is logged and hidden behind a
// generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed", zap.String("code", domainErr.Code), zap.Error(err))
		}
		c.JSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID, domainErr.Details))
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		shared.CodeInternal, "An unexpected error occurred", requestID, nil,
	))
}

// bindJSON binds the body into obj, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// session returns the caller's session. Routes are gated, so a missing
// session only happens when a route was registered without a gate.
func (h *BaseHandler) session(c *gin.Context) (*identity.Session, bool) {
	s := middleware.GetSession(c)
	if s == nil {
		h.HandleError(c, shared.ErrUnauthorized)
		return nil, false
	}
	return s, true
}

// parseID parses a uuid path parameter
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.HandleError(c, shared.InvalidInput("Invalid "+param).WithDetails(map[string]any{"param": param}))
		return uuid.Nil, false
	}
	return id, true
}

// listFilters declares the entity filters a list endpoint accepts
type listFilters struct {
	// strings are exact-match text filters
	strings []string
	// ids are exact-match uuid filters
	ids []string
	// bools are boolean flags
	bools []string
	// ranges read <key>Min and <key>Max
	ranges []string
	// from and to are date bounds
	from []string
	to   []string
}

// bindFilter reads the common list parameters and the declared entity
// filters from the query string. It answers 400 and returns false when a
// value does not parse.
func (h *BaseHandler) bindFilter(c *gin.Context, spec listFilters) (shared.Filter, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return shared.Filter{}, false
	}
	f := req.Filter()

	var invalid []dto.ValidationDetail
	reject := func(field, msg string) {
		invalid = append(invalid, dto.ValidationDetail{Field: field, Message: msg})
	}

	for _, key := range spec.strings {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			f.Filters[key] = v
		}
	}
	for _, key := range spec.ids {
		if v := c.Query(key); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				reject(key, "Invalid UUID format")
				continue
			}
			f.Filters[key] = id
		}
	}
	for _, key := range spec.bools {
		if v := c.Query(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				reject(key, "Must be true or false")
				continue
			}
			f.Filters[key] = b
		}
	}
	for _, key := range spec.ranges {
		var rng shared.Range
		for suffix, target := range map[string]**float64{"Min": &rng.Min, "Max": &rng.Max} {
			v := c.Query(key + suffix)
			if v == "" {
				continue
			}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				reject(key+suffix, "Must be numeric")
				continue
			}
			*target = &n
		}
		if rng.Min != nil || rng.Max != nil {
			f.Ranges[key] = rng
		}
	}
	for _, key := range spec.from {
		if t, ok := parseDateParam(c.Query(key), false); ok {
			f.Filters[key] = t
		} else if c.Query(key) != "" {
			reject(key, "Invalid date")
		}
	}
	for _, key := range spec.to {
		if t, ok := parseDateParam(c.Query(key), true); ok {
			f.Filters[key] = t
		} else if c.Query(key) != "" {
			reject(key, "Invalid date")
		}
	}

	if len(invalid) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Invalid query parameters", getRequestID(c), invalid,
		))
		return shared.Filter{}, false
	}
	return f, true
}

// parseDateParam accepts RFC 3339 timestamps and plain dates. A plain date
// used as an upper bound covers the whole day.
func parseDateParam(v string, endOfDay bool) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}
