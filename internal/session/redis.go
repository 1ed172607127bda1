package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zfogg/clipfeed/internal/cache"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"go.uber.org/zap"
)

const keyPrefix = "feed:session:"

// RedisStore shares sessions and their in-flight locks across server instances
type RedisStore struct {
	redis *cache.RedisClient
	opts  Options
}

// NewRedisStore creates a Redis backed store
func NewRedisStore(redis *cache.RedisClient, opts Options) *RedisStore {
	return &RedisStore{redis: redis, opts: opts.withDefaults()}
}

func sessionKey(id string) string { return keyPrefix + id }
func lockKey(id string) string    { return keyPrefix + id + ":lock" }

func (s *RedisStore) Create(ctx context.Context, sess *feed.Session) error {
	return s.Save(ctx, sess)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*feed.Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id))
	if errors.Is(err, cache.ErrMiss) {
		return nil, feed.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *feed.Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	return s.redis.SetEx(ctx, sessionKey(sess.ID), data, s.opts.TTL)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, sessionKey(id), lockKey(id))
}

func (s *RedisStore) Acquire(ctx context.Context, id string) (func(), error) {
	token := uuid.New().String()
	ok, err := s.redis.SetNX(ctx, lockKey(id), token, s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		metrics.Get().SessionGuardRejections.Inc()
		return nil, feed.ErrBatchInFlight
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.redis.Release(ctx, lockKey(id), token); err != nil {
			logger.Log.Warn("Failed to release session lock",
				logger.WithSessionID(id),
				zap.Error(err),
			)
		}
	}
	return release, nil
}
