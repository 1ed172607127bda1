// Package kernel wires the feed service's dependencies together and owns
// their shutdown order.
package kernel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zfogg/clipfeed/internal/auth"
	"github.com/zfogg/clipfeed/internal/cache"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/queue"
	"github.com/zfogg/clipfeed/internal/repository"
	"github.com/zfogg/clipfeed/internal/search"
	"github.com/zfogg/clipfeed/internal/session"
	"github.com/zfogg/clipfeed/internal/social"
	"github.com/zfogg/clipfeed/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kernel holds all application dependencies
type Kernel struct {
	cfg   *config.Config
	db    *gorm.DB
	cache *cache.RedisClient
	auth  *auth.Service
	urls  storage.URLResolver

	media    repository.MediaRepository
	profiles repository.ProfileRepository
	ads      repository.AdRepository
	tags     repository.TagRepository

	assembler *feed.Assembler
	loader    *feed.Loader
	sessions  session.Store
	views     *queue.ViewQueue
	social    *social.Service

	cleanupFuncs []func(context.Context) error
	mu           sync.Mutex
}

// Deps are the infrastructure handles the caller already opened.
// Cache may be nil; sessions then live in process. Search may be nil;
// tag suggestions then come from the database.
type Deps struct {
	DB     *gorm.DB
	Cache  *cache.RedisClient
	URLs   storage.URLResolver
	Search *search.Client
}

// Option adjusts a kernel before its feed components are built
type Option func(*options)

type options struct {
	assembler []feed.Option
	loader    []feed.LoaderOption
}

// WithAssemblerOptions passes options to the feed assembler
func WithAssemblerOptions(opts ...feed.Option) Option {
	return func(o *options) { o.assembler = append(o.assembler, opts...) }
}

// WithLoaderOptions passes options to the feed loader
func WithLoaderOptions(opts ...feed.LoaderOption) Option {
	return func(o *options) { o.loader = append(o.loader, opts...) }
}

// New builds every service on top of deps. Call Start before serving.
func New(cfg *config.Config, deps Deps, opts ...Option) (*Kernel, error) {
	if cfg == nil {
		return nil, NewInitializationError("missing configuration", []string{"config"})
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	k := &Kernel{
		cfg:   cfg,
		db:    deps.DB,
		cache: deps.Cache,
		urls:  deps.URLs,
		auth:  auth.NewService([]byte(cfg.Auth.JWTSecret)),
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}

	k.media = repository.NewMediaRepository(k.db)
	k.profiles = repository.NewProfileRepository(k.db)
	k.ads = repository.NewAdRepository(k.db)
	k.tags = repository.NewTagRepository(k.db)
	if deps.Search != nil {
		k.tags = search.NewTagIndex(deps.Search, k.tags)
	}

	k.views = queue.NewViewQueue(queue.NewRepositorySink(k.media, k.ads), queue.Config{
		Workers:   cfg.Feed.ViewWorkers,
		QueueSize: cfg.Feed.ViewQueueSize,
	})

	k.assembler = feed.NewAssembler(k.media, k.urls, PolicyFromConfig(cfg.Feed), o.assembler...)
	k.loader = feed.NewLoader(k.assembler, k.ads, k.urls, k.views, o.loader...)

	sessionOpts := session.Options{TTL: cfg.Feed.SessionTTL, LockTTL: cfg.Feed.LockTTL}
	if k.cache != nil {
		k.sessions = session.NewRedisStore(k.cache, sessionOpts)
	} else {
		logger.Log.Warn("Redis not configured, feed sessions are kept in memory")
		k.sessions = session.NewMemoryStore(sessionOpts)
	}

	k.social = social.NewService(k.db, k.profiles)
	return k, nil
}

// PolicyFromConfig maps the feed settings onto the assembler policy
func PolicyFromConfig(f config.FeedConfig) feed.Policy {
	return feed.Policy{
		BatchSize:              f.BatchSize,
		MaxBatchSize:           f.MaxBatchSize,
		OverfetchMultiplier:    f.OverfetchMultiplier,
		PersonalizedMultiplier: f.PersonalizedMultiplier,
		TrendingEvery:          f.TrendingEvery,
		QueryExclude:           f.QueryExclude,
		MaxSessionExclude:      f.MaxSessionExclude,
	}
}

// Start launches background workers and registers their shutdown
func (k *Kernel) Start() {
	k.views.Start()
	k.OnCleanup(func(ctx context.Context) error {
		k.views.Stop(ctx)
		return nil
	})
}

func (k *Kernel) Config() *config.Config                 { return k.cfg }
func (k *Kernel) DB() *gorm.DB                           { return k.db }
func (k *Kernel) Cache() *cache.RedisClient              { return k.cache }
func (k *Kernel) Auth() *auth.Service                    { return k.auth }
func (k *Kernel) URLs() storage.URLResolver              { return k.urls }
func (k *Kernel) Media() repository.MediaRepository      { return k.media }
func (k *Kernel) Profiles() repository.ProfileRepository { return k.profiles }
func (k *Kernel) Ads() repository.AdRepository           { return k.ads }
func (k *Kernel) Tags() repository.TagRepository         { return k.tags }
func (k *Kernel) Assembler() *feed.Assembler             { return k.assembler }
func (k *Kernel) Loader() *feed.Loader                   { return k.loader }
func (k *Kernel) Sessions() session.Store                { return k.sessions }
func (k *Kernel) Views() *queue.ViewQueue                { return k.views }
func (k *Kernel) Social() *social.Service                { return k.social }

// OnCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions run in LIFO order.
func (k *Kernel) OnCleanup(fn func(context.Context) error) *Kernel {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.cleanupFuncs = append(k.cleanupFuncs, fn)
	return k
}

// Cleanup runs the registered cleanup functions in reverse order. Failures
// are logged and do not stop the remaining cleanups.
func (k *Kernel) Cleanup(ctx context.Context) error {
	k.mu.Lock()
	funcs := k.cleanupFuncs
	k.cleanupFuncs = nil
	k.mu.Unlock()

	var failed int
	for i := len(funcs) - 1; i >= 0; i-- {
		start := time.Now()
		if err := funcs[i](ctx); err != nil {
			failed++
			logger.Log.Error("Cleanup function failed",
				zap.Int("index", i),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d cleanup functions failed", failed)
	}
	return nil
}

// Validate checks that all required dependencies are registered
func (k *Kernel) Validate() error {
	var missing []string
	if k.db == nil {
		missing = append(missing, "database (DB)")
	}
	if k.urls == nil {
		missing = append(missing, "storage URL resolver")
	}
	if len(missing) > 0 {
		return NewInitializationError("Missing required dependencies", missing)
	}

	if !k.auth.Enabled() && !k.cfg.Auth.TrustUserHeader {
		logger.Log.Warn("Neither JWT_SECRET nor TRUST_USER_HEADER is set, every viewer is anonymous")
	}
	return nil
}
