package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket: RequestsPerSecond refill, Burst size.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	IdleTTL           time.Duration // forget clients idle this long; 0 keeps them
}

// DefaultRateLimitConfig returns the limits used when none are configured.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 20, Burst: 40, IdleTTL: 10 * time.Minute}
}

func (c RateLimitConfig) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), c.Burst)
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// visitors holds one bucket per client address.
type visitors struct {
	cfg RateLimitConfig

	mu    sync.Mutex
	byIP  map[string]*visitor
	swept time.Time
}

func (v *visitors) get(ip string, now time.Time) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cfg.IdleTTL > 0 && now.Sub(v.swept) > v.cfg.IdleTTL {
		for k, vis := range v.byIP {
			if now.Sub(vis.seen) > v.cfg.IdleTTL {
				delete(v.byIP, k)
			}
		}
		v.swept = now
	}

	vis, ok := v.byIP[ip]
	if !ok {
		vis = &visitor{lim: v.cfg.limiter()}
		v.byIP[ip] = vis
	}
	vis.seen = now
	return vis.lim
}

// RateLimit limits each client IP separately.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	set := &visitors{cfg: cfg, byIP: make(map[string]*visitor), swept: time.Now()}
	return func(c *gin.Context) {
		if !set.get(c.ClientIP(), time.Now()).Allow() {
			tooMany(c)
			return
		}
		c.Next()
	}
}

// GlobalRateLimit shares one bucket across all clients.
func GlobalRateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	lim := cfg.limiter()
	return func(c *gin.Context) {
		if !lim.Allow() {
			tooMany(c)
			return
		}
		c.Next()
	}
}

func tooMany(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}
