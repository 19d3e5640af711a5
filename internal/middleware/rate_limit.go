// internal/middleware/rate_limit.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimiter implements a fixed-window counter backed by redis so limits
// hold across server instances. Authenticated requests are counted per shop,
// anonymous ones per client IP.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) key(c *gin.Context) string {
	subject := c.ClientIP()
	if shopID, exists := c.Get("shop_id"); exists {
		subject = fmt.Sprintf("shop:%v", shopID)
	}
	windowStart := time.Now().UTC().Truncate(rl.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%d", subject, windowStart)
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fail open when redis is unreachable; throttling is not worth an
		// outage.
		if rl.client == nil {
			c.Next()
			return
		}

		key := rl.key(c)
		ctx := c.Request.Context()

		pipe := rl.client.TxPipeline()
		count := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rl.window+time.Second)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).Warn("Rate limit check failed, allowing request")
			c.Next()
			return
		}

		if count.Val() > int64(rl.limit) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GeneralRateLimit(client *redis.Client) gin.HandlerFunc {
	return NewRateLimiter(client, 120, time.Minute).Middleware()
}

// AuditRateLimit keeps catalog audits from hammering the Shopify API.
func AuditRateLimit(client *redis.Client) gin.HandlerFunc {
	return NewRateLimiter(client, 5, time.Minute).Middleware()
}

// VisibilityRateLimit throttles visibility runs, which fan out to paid
// AI platform APIs.
func VisibilityRateLimit(client *redis.Client) gin.HandlerFunc {
	return NewRateLimiter(client, 10, time.Minute).Middleware()
}
