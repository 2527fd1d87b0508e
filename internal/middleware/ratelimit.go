package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("rate limit exceeded")

type RateLimiterConfig struct {
	RPS   float64
	Burst int
	// IdleTTL drops a client's bucket after this long without requests
	IdleTTL time.Duration
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	config   RateLimiterConfig
	limiters *cache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		config:   config,
		limiters: cache.New(config.IdleTTL, config.IdleTTL),
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		limiter := v.(*rate.Limiter)
		rl.limiters.SetDefault(key, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rl.config.RPS), rl.config.Burst)
	if err := rl.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// another request created it first
		if v, ok := rl.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Status:  "error",
				Code:    http.StatusTooManyRequests,
				Message: errRateLimited.Error(),
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}
		c.Next()
	}
}
