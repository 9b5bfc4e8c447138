package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/config"
)

// Limits is a token bucket: Burst tokens, refilled at Rate per second.
type Limits struct {
	Rate  int
	Burst int
}

// clientLimiter stores rate limiters for a specific client.
type clientLimiter struct {
	strictLimiter *rate.Limiter
	globalLimiter *rate.Limiter
	lastSeen      time.Time
}

// RateLimiterMiddleware keeps per-client buckets. Every request spends from the
// global bucket; credential and lead-capture routes also spend from the strict one.
type RateLimiterMiddleware struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	strict  Limits
	global  Limits
	idleTTL time.Duration
	now     func() time.Time
}

func NewRateLimiterMiddleware(cfg *config.Config) *RateLimiterMiddleware {
	return NewRateLimiter(
		Limits{Rate: cfg.RateLimitSoftRefillRate, Burst: cfg.RateLimitSoftBucketSize},
		Limits{Rate: cfg.RateLimitHardRefillRate, Burst: cfg.RateLimitHardBucketSize},
	)
}

func NewRateLimiter(strict, global Limits) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		clients: make(map[string]*clientLimiter),
		strict:  strict,
		global:  global,
		idleTTL: 30 * time.Minute,
		now:     time.Now,
	}
}

// Run evicts idle clients every interval until stop is closed.
func (rm *RateLimiterMiddleware) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := rm.cleanupClients(); n > 0 {
				log.Debug().Int("removed", n).Msg("rate limiter cleanup")
			}
		}
	}
}

func (rm *RateLimiterMiddleware) cleanupClients() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	count := 0
	for id, client := range rm.clients {
		if rm.now().Sub(client.lastSeen) > rm.idleTTL {
			delete(rm.clients, id)
			count++
		}
	}
	return count
}

func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *clientLimiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	limiter, exists := rm.clients[identifier]
	if !exists {
		limiter = &clientLimiter{
			strictLimiter: rate.NewLimiter(rate.Limit(rm.strict.Rate), rm.strict.Burst),
			globalLimiter: rate.NewLimiter(rate.Limit(rm.global.Rate), rm.global.Burst),
		}
		rm.clients[identifier] = limiter
	}
	limiter.lastSeen = rm.now()
	return limiter
}

// Limit applies the global bucket.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rm.getClientLimiter(c.ClientIP()).globalLimiter.Allow() {
			rm.reject(c, "global")
			return
		}
		c.Next()
	}
}

// Strict applies the strict bucket. Mount it after Limit.
func (rm *RateLimiterMiddleware) Strict() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rm.getClientLimiter(c.ClientIP()).strictLimiter.Allow() {
			rm.reject(c, "strict")
			return
		}
		c.Next()
	}
}

func (rm *RateLimiterMiddleware) reject(c *gin.Context, bucket string) {
	zerolog.Ctx(c.Request.Context()).Warn().
		Str("client", c.ClientIP()).
		Str("bucket", bucket).
		Str("route", c.FullPath()).
		Msg("rate limit exceeded")
	c.Header("Retry-After", "1")
	RespondError(c, apperr.New(apperr.CodeRateLimit, "rate limit exceeded"))
}
