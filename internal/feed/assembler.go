package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const mediaTypeVideo = "video"

var tracer = otel.Tracer("github.com/zfogg/clipfeed/internal/feed")

// Assembler produces ranked batches of unseen items
type Assembler struct {
	store  CandidateStore
	urls   URLResolver
	policy Policy

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Assembler
type Option func(*Assembler)

// WithRand makes shuffling deterministic
func WithRand(r *rand.Rand) Option {
	return func(a *Assembler) { a.rng = r }
}

// NewAssembler creates an assembler over store
func NewAssembler(store CandidateStore, urls URLResolver, policy Policy, opts ...Option) *Assembler {
	a := &Assembler{
		store:  store,
		urls:   urls,
		policy: policy,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the policy the assembler runs with
func (a *Assembler) Policy() Policy {
	return a.policy
}

// Trending draws limit items at random from the top of the view ranking.
// The pool is over-fetched so viewers do not all get the same top items.
// A query failure is returned to the caller.
func (a *Assembler) Trending(ctx context.Context, audiences []string, limit int, exclude []int64) (Batch, error) {
	ctx, span := tracer.Start(ctx, "feed.Trending", trace.WithAttributes(
		attribute.Int("feed.limit", limit),
		attribute.Int("feed.exclude", len(exclude)),
	))
	defer span.End()

	pool, err := a.collect(ctx, exclude, Query{
		MediaType: mediaTypeVideo,
		Audiences: NormalizeAudiences(audiences),
		Limit:     a.policy.trendingPool(limit),
	}, a.store.Trending)
	if err != nil {
		span.RecordError(err)
		return Batch{}, fmt.Errorf("trending query: %w", err)
	}

	items := a.usable(ctx, exclude, pool)
	a.shuffle(items)
	return Batch{Items: take(items, limit), Path: PathTrending}, nil
}

// Personalized merges tag-overlap and followee candidates. Either source
// failing counts as zero candidates from it. When nothing usable remains
// the trending path runs instead.
func (a *Assembler) Personalized(ctx context.Context, v IdentifiedViewer, limit int, exclude []int64) (Batch, error) {
	ctx, span := tracer.Start(ctx, "feed.Personalized", trace.WithAttributes(
		attribute.Int("feed.limit", limit),
		attribute.Int("feed.rec_tags", len(v.RecTags)),
		attribute.Int("feed.follows", len(v.Follows)),
	))
	defer span.End()

	q := Query{
		MediaType: mediaTypeVideo,
		Audiences: v.audiences(),
		Limit:     a.policy.candidateCap(limit),
	}

	var candidates []Item
	if len(v.RecTags) > 0 {
		byTags, err := a.collect(ctx, exclude, q, func(ctx context.Context, q Query) ([]Item, error) {
			return a.store.TagOverlap(ctx, v.RecTags, q)
		})
		if err != nil {
			a.sourceFailed(v.ID, "tags", err)
		} else {
			candidates = append(candidates, byTags...)
		}
	}
	if len(v.Follows) > 0 {
		byFollows, err := a.collect(ctx, exclude, q, func(ctx context.Context, q Query) ([]Item, error) {
			return a.store.FromOwners(ctx, v.Follows, q)
		})
		if err != nil {
			a.sourceFailed(v.ID, "follows", err)
		} else {
			candidates = append(candidates, byFollows...)
		}
	}

	merged := a.usable(ctx, exclude, candidates)
	if len(merged) == 0 {
		span.AddEvent("fallback to trending")
		return a.Trending(ctx, v.Audiences, limit, exclude)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return morePopular(merged[i], merged[j])
	})
	return Batch{Items: take(merged, limit), Path: PathPersonalized}, nil
}

// ForYou dispatches between the two ranking paths. batchIndex is the
// zero-based number of for-you batches already served in the session.
func (a *Assembler) ForYou(ctx context.Context, viewer Viewer, batchIndex, limit int, exclude []int64) (Batch, error) {
	switch v := viewer.(type) {
	case AnonymousViewer:
		return a.Trending(ctx, v.Audiences, limit, exclude)
	case IdentifiedViewer:
		if !v.Personalizable() || a.policy.ForceTrending(batchIndex) {
			return a.Trending(ctx, v.Audiences, limit, exclude)
		}
		return a.Personalized(ctx, v, limit, exclude)
	default:
		return Batch{}, fmt.Errorf("unsupported viewer %T", viewer)
	}
}

// Following returns recent items from followed profiles, falling back to
// trending for viewers who follow nobody or when nothing unseen is left
func (a *Assembler) Following(ctx context.Context, viewer Viewer, limit int, exclude []int64) (Batch, error) {
	v, ok := viewer.(IdentifiedViewer)
	if !ok || len(v.Follows) == 0 {
		return a.Trending(ctx, viewer.audiences(), limit, exclude)
	}

	items, err := a.collect(ctx, exclude, Query{
		MediaType: mediaTypeVideo,
		Audiences: v.audiences(),
		Limit:     a.policy.candidateCap(limit),
	}, func(ctx context.Context, q Query) ([]Item, error) {
		return a.store.FromOwners(ctx, v.Follows, q)
	})
	if err != nil {
		a.sourceFailed(v.ID, "follows", err)
		items = nil
	}

	items = a.usable(ctx, exclude, items)
	if len(items) == 0 {
		return a.Trending(ctx, v.Audiences, limit, exclude)
	}
	return Batch{Items: take(items, limit), Path: PathFollowing}, nil
}

// Recent returns the newest unseen items
func (a *Assembler) Recent(ctx context.Context, audiences []string, limit int, exclude []int64) (Batch, error) {
	items, err := a.collect(ctx, exclude, Query{
		MediaType: mediaTypeVideo,
		Audiences: NormalizeAudiences(audiences),
		Limit:     limit,
	}, a.store.Recent)
	if err != nil {
		return Batch{}, fmt.Errorf("recent query: %w", err)
	}
	return Batch{Items: take(a.usable(ctx, exclude, items), limit), Path: PathRecent}, nil
}

// ByTag returns unseen items carrying the tag named by slug
func (a *Assembler) ByTag(ctx context.Context, slug string, audiences []string, limit int, exclude []int64) (Batch, error) {
	label := SlugToLabel(slug)
	if label == "" {
		return Batch{Path: PathTag}, nil
	}

	items, err := a.collect(ctx, exclude, Query{
		MediaType: mediaTypeVideo,
		Audiences: NormalizeAudiences(audiences),
		Limit:     limit,
	}, func(ctx context.Context, q Query) ([]Item, error) {
		return a.store.WithTag(ctx, label, q)
	})
	if err != nil {
		return Batch{}, fmt.Errorf("tag query %q: %w", label, err)
	}
	return Batch{Items: take(a.usable(ctx, exclude, items), limit), Path: PathTag}, nil
}

// maxWiden bounds how often collect re-runs a query
const maxWiden = 8

// collect runs a candidate query with the newest excluded IDs bound into it.
// Older exclusions are only filtered later by usable, so when they take up
// fetched rows the query is re-run with a larger limit.
func (a *Assembler) collect(ctx context.Context, exclude []int64, q Query, run func(context.Context, Query) ([]Item, error)) ([]Item, error) {
	q.Exclude = a.policy.queryExclude(exclude)
	items, err := run(ctx, q)
	older := exclude[:len(exclude)-len(q.Exclude)]
	if err != nil || len(older) == 0 || q.Limit <= 0 {
		return items, err
	}

	stale := make(map[int64]struct{}, len(older))
	for _, id := range older {
		stale[id] = struct{}{}
	}
	want := q.Limit
	for round := 0; round < maxWiden && len(items) == q.Limit; round++ {
		hits := 0
		for _, it := range items {
			if _, ok := stale[it.ID]; ok {
				hits++
			}
		}
		if len(items)-hits >= want {
			break
		}
		q.Limit = max(want+hits, q.Limit*2)
		if items, err = run(ctx, q); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// usable dedups candidates by ID (first wins), drops excluded IDs and
// items without a resolvable URL, and fills in URLs
func (a *Assembler) usable(ctx context.Context, exclude []int64, candidates []Item) []Item {
	skip := make(map[int64]bool, len(exclude)+len(candidates))
	for _, id := range exclude {
		skip[id] = true
	}

	out := make([]Item, 0, len(candidates))
	for _, it := range candidates {
		if skip[it.ID] {
			continue
		}
		skip[it.ID] = true

		u, ok := a.urls.PublicURL(ctx, it.StoragePath)
		if !ok {
			continue
		}
		it.URL = u
		out = append(out, it)
	}
	return out
}

func (a *Assembler) shuffle(items []Item) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

func (a *Assembler) sourceFailed(viewerID, source string, err error) {
	metrics.Get().FeedSourceErrors.WithLabelValues(source).Inc()
	logger.Log.Warn("Feed candidate source failed",
		zap.String("source", source),
		logger.WithViewerID(viewerID),
		zap.Error(err),
	)
}

func take(items []Item, n int) []Item {
	if len(items) > n {
		return items[:n]
	}
	return items
}
