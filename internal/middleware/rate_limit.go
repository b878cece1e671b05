package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RateLimitMiddleware struct {
	client *redis.Client
}

func NewRateLimitMiddleware(client *redis.Client) *RateLimitMiddleware {
	return &RateLimitMiddleware{client: client}
}

// RateLimit caps requests per caller per endpoint over a sliding window
// backed by a counter key with expiry. Authenticated callers are keyed
// by user ID; on public routes such as login and registration the
// client IP is the key.
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := UserID(c)
		if !ok {
			caller = c.ClientIP()
		}

		key := fmt.Sprintf("rate_limit:%s:%s", caller, c.Request.URL.Path)
		ctx := c.Request.Context()

		count, err := rm.client.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not take the API down with it.
			c.Next()
			return
		}
		if count == 1 {
			rm.client.Expire(ctx, key, window)
		}

		if count > int64(requests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate limit exceeded",
				"message": fmt.Sprintf("too many requests, limit is %d per %v", requests, window),
			})
			return
		}

		c.Next()
	}
}
