package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key does not exist
var ErrMiss = redis.Nil

// RedisClient wraps the redis.Client with connection pooling and operation metrics
type RedisClient struct {
	client *redis.Client
}

var globalRedis *RedisClient

// releaseScript deletes a lock only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorWithFields("Failed to connect to Redis", err)
		client.Close()
		return nil, err
	}

	rc := &RedisClient{client: client}
	globalRedis = rc

	logger.Log.Info("Redis client connected",
		zap.String("address", addr),
	)

	return rc, nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// GetRedisClient returns the global Redis client instance, nil when Redis is not configured
func GetRedisClient() *RedisClient {
	return globalRedis
}

// Close closes the Redis connection
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	if rc == globalRedis {
		globalRedis = nil
	}
	return rc.client.Close()
}

func observe(operation string, start time.Time, err error) {
	m := metrics.Get()
	status := "success"
	if err != nil && !errors.Is(err, redis.Nil) {
		status = "error"
	}
	m.RedisOperationsTotal.WithLabelValues(operation, status).Inc()
	m.RedisOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Get retrieves a value, returning ErrMiss when the key is absent
func (rc *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	val, err := rc.client.Get(ctx, key).Bytes()
	observe("get", start, err)
	return val, err
}

// SetEx stores a value with expiration
func (rc *RedisClient) SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := rc.client.Set(ctx, key, value, ttl).Err()
	observe("set", start, err)
	return err
}

// SetNX stores value only if key is absent. It reports whether the key was set.
func (rc *RedisClient) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := rc.client.SetNX(ctx, key, value, ttl).Result()
	observe("setnx", start, err)
	return ok, err
}

// Release deletes key if it still holds token
func (rc *RedisClient) Release(ctx context.Context, key, token string) error {
	start := time.Now()
	err := releaseScript.Run(ctx, rc.client, []string{key}, token).Err()
	observe("release", start, err)
	return err
}

// Del deletes one or more keys
func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := rc.client.Del(ctx, keys...).Err()
	observe("del", start, err)
	return err
}

// IncrWindow increments a counter and starts its expiry on the first hit.
// It returns the new count.
func (rc *RedisClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	start := time.Now()
	pipe := rc.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	_, err := pipe.Exec(ctx)
	observe("incr_window", start, err)
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Ping tests the Redis connection
func (rc *RedisClient) Ping(ctx context.Context) error {
	start := time.Now()
	err := rc.client.Ping(ctx).Err()
	observe("ping", start, err)
	return err
}
