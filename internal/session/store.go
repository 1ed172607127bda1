// Package session persists feed sessions between batch requests and guards
// each session against concurrent batch loads.
package session

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zfogg/clipfeed/internal/feed"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store keeps feed sessions. Get returns feed.ErrSessionNotFound for unknown
// or expired sessions.
type Store interface {
	Create(ctx context.Context, s *feed.Session) error
	Get(ctx context.Context, id string) (*feed.Session, error)
	Save(ctx context.Context, s *feed.Session) error
	Delete(ctx context.Context, id string) error

	// Acquire marks the session as loading a batch. While held, further
	// calls fail with feed.ErrBatchInFlight. The returned func releases it.
	Acquire(ctx context.Context, id string) (release func(), err error)
}

// Options tunes expiry for both store implementations
type Options struct {
	// TTL is the idle lifetime of a session, renewed on every save
	TTL time.Duration
	// LockTTL bounds how long a crashed holder can block a session
	LockTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 30 * time.Minute
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 10 * time.Second
	}
	return o
}

func encode(s *feed.Session) ([]byte, error) {
	return json.Marshal(s)
}

func decode(data []byte) (*feed.Session, error) {
	var s feed.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
