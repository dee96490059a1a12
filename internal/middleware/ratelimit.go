package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/domainlens/whoisproxy/internal/monitoring"
	apperrors "github.com/domainlens/whoisproxy/pkg/errors"
	"github.com/domainlens/whoisproxy/pkg/logger"
	"github.com/domainlens/whoisproxy/pkg/response"
)

// RateLimit caps requests per client IP within a fixed window. Counters live
// in the supplied store; the middleware itself is stateless so the ceiling is
// shared across instances when the store is Redis-backed.
//
// The limiter fails open: a store error lets the request through rather than
// turning a cache outage into a full API outage.
func RateLimit(store RateStore, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP()
		count, ttl, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			logger.WithModule("http").Warn("rate limit store unavailable, allowing request",
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.Next()
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > limit {
			retryAfter := int(ttl.Round(time.Second).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			monitoring.RecordRateLimited()
			response.AbortWithError(c, apperrors.ErrRateLimit.WithInternal(
				fmt.Errorf("limit of %d requests per %s exceeded", limit, window)))
			return
		}

		c.Next()
	}
}
