package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

const (
	apiRatePerSecond = 20
	apiRateBurst     = 40
)

// rateLimitMiddleware applies a token bucket per client IP to the public
// API group.
func rateLimitMiddleware(logger *logger.Logger) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		lim, ok := buckets[ip]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(apiRatePerSecond), apiRateBurst)
			buckets[ip] = lim
		}
		mu.Unlock()

		if !lim.Allow() {
			logger.Info("[rateLimitMiddleware] request throttled", map[string]string{
				"ip":   ip,
				"path": c.Request.URL.Path,
			})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
