package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/pkg/response"
	"go.uber.org/zap"
)

// Counter counts hits in a fixed window that starts with the first hit.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit caps requests per user (or client IP when unauthenticated) to
// limit within each window. A nil counter or limit <= 0 disables it, and
// counter failures let the request through.
func RateLimit(counter Counter, scope string, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}

		subject := CurrentUserID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("journal:rate_limit:%s:%s:%d", scope, subject, bucket)

		count, err := counter.Hit(c.Request.Context(), key, window+time.Second)
		if err != nil {
			if log != nil {
				log.Warn("rate limit counter unavailable", zap.Error(err))
			}
			c.Next()
			return
		}

		if count > int64(limit) {
			retry := time.Duration(bucket+1)*window - time.Duration(time.Now().UnixNano())
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
