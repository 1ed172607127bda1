package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/cache"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/errors"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/util"
	"go.uber.org/zap"
)

// RateLimit returns a fixed-window limiter shared through Redis, or the
// in-memory token bucket limiter when redis is nil.
func RateLimit(cfg config.RateLimitConfig, redis *cache.RedisClient) gin.HandlerFunc {
	if redis == nil {
		logger.Log.Info("Redis not configured, rate limiting in memory")
		return NewRateLimiter(cfg).Middleware()
	}
	return RedisRateLimitMiddleware(redis, cfg)
}

// RedisRateLimitMiddleware creates a distributed rate limiter using Redis.
// It works across multiple instances.
func RedisRateLimitMiddleware(redis *cache.RedisClient, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		window := time.Now().Unix() / int64(cfg.Window.Seconds())
		key := fmt.Sprintf("rate_limit:%s:%d", rateLimitKey(c), window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := redis.IncrWindow(ctx, key, cfg.Window)
		if err != nil {
			// A broken limiter must not open the API to floods.
			logger.Log.Error("Rate limit check failed, rejecting request",
				logger.WithIP(c.ClientIP()),
				zap.Error(err),
			)
			util.RespondWithAPIError(c, errors.ServiceUnavailable("rate limiter"))
			return
		}

		if count > int64(cfg.Requests) {
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.Int("max_requests", cfg.Requests),
				zap.Int64("current_requests", count),
			)
			rejectRateLimited(c, cfg.Requests, int(cfg.Window.Seconds()))
			return
		}

		c.Next()
	}
}
