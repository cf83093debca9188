package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bizledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WindowCounter counts hits per key in fixed windows
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows limit requests per client IP and window. When the
// counter fails the request is let through and the failure logged.
func RateLimit(counter WindowCounter, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		count, err := counter.Hit(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			log.Error("Rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				CodeRateLimited, "Too many requests, please try again later", getRequestIDFromContext(c), nil,
			))
			return
		}
		c.Next()
	}
}
