package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Page is what one Loader.Next call hands back to the client
type Page struct {
	Items   []Item `json:"items"`
	Path    Path   `json:"path"`
	HasMore bool   `json:"has_more"`
	// SponsoredIndex is the position of the sponsored item, or -1
	SponsoredIndex int `json:"sponsored_index"`
}

// Loader turns assembler batches into feed pages for a session
type Loader struct {
	assembler *Assembler
	sponsors  SponsorStore
	urls      URLResolver
	views     ViewEmitter

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLoaderRand makes the sponsored slot deterministic
func WithLoaderRand(r *rand.Rand) LoaderOption {
	return func(l *Loader) { l.rng = r }
}

// NewLoader creates a loader. sponsors may be nil to disable ads.
func NewLoader(assembler *Assembler, sponsors SponsorStore, urls URLResolver, views ViewEmitter, opts ...LoaderOption) *Loader {
	l := &Loader{
		assembler: assembler,
		sponsors:  sponsors,
		urls:      urls,
		views:     views,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Next assembles the next page of s for viewer and updates s in place:
// organic IDs join the exclusion list, the sponsored ad joins the seen
// ads and the for-you counter advances. On error s is left untouched.
func (l *Loader) Next(ctx context.Context, viewer Viewer, s *Session) (Page, error) {
	if err := s.Validate(); err != nil {
		return Page{}, err
	}
	if s.Exhausted {
		return Page{Items: []Item{}, Path: pathForTab(s.Tab), SponsoredIndex: -1}, nil
	}

	ctx, span := tracer.Start(ctx, "feed.Next", trace.WithAttributes(
		attribute.String("feed.tab", string(s.Tab)),
		attribute.String("feed.session_id", s.ID),
	))
	defer span.End()

	start := time.Now()
	policy := l.assembler.Policy()
	limit := policy.Limit(s.Limit)

	batch, err := l.organic(ctx, viewer, s, limit)
	if err != nil {
		span.RecordError(err)
		return Page{}, err
	}

	m := metrics.Get()
	m.FeedBatches.WithLabelValues(string(s.Tab), string(batch.Path)).Inc()
	m.FeedBatchDuration.WithLabelValues(string(s.Tab)).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("feed.path", string(batch.Path)))

	if s.Tab == TabForYou {
		s.PersonalizedBatches++
	}
	s.UpdatedAt = l.now()

	if len(batch.Items) == 0 {
		s.Exhausted = true
		return Page{Items: []Item{}, Path: batch.Path, SponsoredIndex: -1}, nil
	}
	m.FeedItemsServed.WithLabelValues(string(batch.Path)).Add(float64(len(batch.Items)))

	page := Page{Path: batch.Path, HasMore: true, SponsoredIndex: -1}
	page.Items = batch.Items

	if ad := l.sponsored(ctx, s); ad != nil {
		page.Items, page.SponsoredIndex = l.splice(batch.Items, *ad)
		s.MarkAdSeen(ad.ID)
	}

	l.emitViews(viewer, s, page)

	s.Exclude(batch.IDs()...)
	return page, nil
}

func (l *Loader) organic(ctx context.Context, viewer Viewer, s *Session, limit int) (Batch, error) {
	a := l.assembler
	exclude := s.ExcludeIDs

	switch s.Tab {
	case TabForYou:
		return a.ForYou(ctx, viewer, s.PersonalizedBatches, limit, exclude)
	case TabTrending:
		return a.Trending(ctx, viewer.audiences(), limit, exclude)
	case TabFollowing:
		return a.Following(ctx, viewer, limit, exclude)
	case TabNew:
		return a.Recent(ctx, viewer.audiences(), limit, exclude)
	case TabTag:
		return a.ByTag(ctx, s.TagSlug, viewer.audiences(), limit, exclude)
	default:
		return Batch{}, fmt.Errorf("%w: %q", ErrUnknownTab, s.Tab)
	}
}

// sponsored fetches one ad the session has not seen. Failures only cost the ad.
func (l *Loader) sponsored(ctx context.Context, s *Session) *Item {
	if l.sponsors == nil {
		return nil
	}

	m := metrics.Get()
	ad, err := l.sponsors.Sponsored(ctx, s.SeenAdIDs)
	if err != nil {
		m.SponsoredInsertions.WithLabelValues("error").Inc()
		logger.Log.Warn("Sponsored lookup failed",
			logger.WithSessionID(s.ID),
			zap.Error(err),
		)
		return nil
	}
	if ad == nil || s.AdSeen(ad.ID) {
		m.SponsoredInsertions.WithLabelValues("none").Inc()
		return nil
	}

	u, ok := l.urls.PublicURL(ctx, ad.StoragePath)
	if !ok {
		m.SponsoredInsertions.WithLabelValues("unresolvable").Inc()
		return nil
	}
	ad.URL = u
	ad.Sponsored = true
	m.SponsoredInsertions.WithLabelValues("inserted").Inc()
	return ad
}

// splice inserts ad at a uniformly random index in [0, len(items)]
func (l *Loader) splice(items []Item, ad Item) ([]Item, int) {
	l.mu.Lock()
	at := l.rng.IntN(len(items) + 1)
	l.mu.Unlock()

	out := make([]Item, 0, len(items)+1)
	out = append(out, items[:at]...)
	out = append(out, ad)
	out = append(out, items[at:]...)
	return out, at
}

// emitViews hands one event per served item to the emitter and bumps the
// returned counters the way the client would after counting the view
func (l *Loader) emitViews(viewer Viewer, s *Session, page Page) {
	viewerID := ViewerID(viewer)
	at := l.now()

	for i := range page.Items {
		it := &page.Items[i]
		ev := ViewEvent{
			ViewerID:  viewerID,
			SessionID: s.ID,
			Source:    page.Path,
			Position:  i,
			At:        at,
		}
		if it.Sponsored {
			ev.AdID = it.ID
		} else {
			ev.MediaID = it.ID
		}
		it.Views++
		l.views.Emit(ev)
	}
}

func pathForTab(t Tab) Path {
	switch t {
	case TabFollowing:
		return PathFollowing
	case TabNew:
		return PathRecent
	case TabTag:
		return PathTag
	default:
		return PathTrending
	}
}
