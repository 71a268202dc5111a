package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/pkg/response"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	idempotenceTTL    = 60 * time.Second
	idempotencePrefix = "journal:idempotence:"
)

// IdempotencyStore is the subset of redis used to remember recent requests.
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Idempotence rejects a repeated POST carrying the same Idempotency-Key from
// the same user within a minute. Requests without the header pass through, and
// failed requests release their key so they can be retried.
func Idempotence(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := resolveIdempotenceKey(c)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := idempotencePrefix + key
		acquired, err := store.SetNX(ctx, redisKey, "0", idempotenceTTL)
		if err != nil {
			c.Next()
			return
		}
		if !acquired {
			msg := "an identical request succeeded moments ago"
			if val, _ := store.Get(ctx, redisKey); val == "0" {
				msg = "an identical request is still being processed"
			}
			response.Error(c, http.StatusConflict, msg)
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			_ = store.Set(context.WithoutCancel(ctx), redisKey, "1", idempotenceTTL)
		} else {
			_ = store.Del(context.WithoutCancel(ctx), redisKey)
		}
	}
}

func resolveIdempotenceKey(c *gin.Context) string {
	hdr := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	if hdr == "" {
		return ""
	}
	subject := CurrentUserID(c)
	if subject == "" {
		subject = c.ClientIP()
	}
	return hashKey(subject, c.Request.URL.Path, hdr)
}

func hashKey(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}
