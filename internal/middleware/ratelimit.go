package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/metrics"
	"github.com/zfogg/clipfeed/internal/util"
)

// TokenBucket for rate limiting
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request is allowed based on token availability
func (tb *TokenBucket) Allow(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RetryAfter returns seconds to wait before next request
func (tb *TokenBucket) RetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens < 1 {
		return int((1-tb.tokens)/tb.refillRate) + 1
	}
	return 0
}

func (tb *TokenBucket) idleSince(now time.Time) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return now.Sub(tb.lastRefill)
}

// RateLimiter keeps one token bucket per client in process. It backs the
// rate limit when Redis is not configured.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	config  config.RateLimitConfig
	mu      sync.Mutex
	now     func() time.Time
}

// NewRateLimiter creates an in-memory limiter
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  cfg,
		now:     time.Now,
	}
}

// Allow checks if key may make a request
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.config.Requests) / rl.config.Window.Seconds()
		bucket = NewTokenBucket(float64(rl.config.Requests), refillRate)
		bucket.lastRefill = rl.now()
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	if bucket.Allow(rl.now()) {
		return true, 0
	}
	return false, bucket.RetryAfter()
}

// Sweep drops buckets idle for longer than a window. Idle buckets are full,
// so dropping them changes nothing for their clients.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	dropped := 0
	for key, b := range rl.buckets {
		if b.idleSince(now) > rl.config.Window {
			delete(rl.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Middleware rejects clients over their budget with 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	go rl.cleanupRoutine()

	return func(c *gin.Context) {
		if ok, retryAfter := rl.Allow(rateLimitKey(c)); !ok {
			rejectRateLimited(c, rl.config.Requests, retryAfter)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.config.Window)
	defer ticker.Stop()
	for range ticker.C {
		rl.Sweep()
	}
}

// rateLimitKey prefers the viewer over the client address
func rateLimitKey(c *gin.Context) string {
	if id := util.GetViewerID(c); id != "" {
		return "viewer:" + id
	}
	return "ip:" + c.ClientIP()
}

func rejectRateLimited(c *gin.Context, limit, retryAfter int) {
	metrics.Get().RateLimitExceededTotal.WithLabelValues(c.FullPath()).Inc()
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", "0")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"code":        "RATE_LIMITED",
		"message":     "rate limit exceeded",
		"retry_after": retryAfter,
	})
}
