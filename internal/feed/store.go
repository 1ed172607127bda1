package feed

import (
	"context"
	"time"
)

// Query filters candidate lookups
type Query struct {
	MediaType string
	Audiences []string
	Exclude   []int64
	Limit     int
}

// CandidateStore supplies candidate items. Returned items carry StoragePath;
// URLs are resolved by the assembler.
type CandidateStore interface {
	// Trending orders by view count then recency, both descending
	Trending(ctx context.Context, q Query) ([]Item, error)
	// TagOverlap returns items carrying any of tags, ordered like Trending
	TagOverlap(ctx context.Context, tags []string, q Query) ([]Item, error)
	// FromOwners returns items owned by any of owners, newest first
	FromOwners(ctx context.Context, owners []string, q Query) ([]Item, error)
	// Recent returns the newest items
	Recent(ctx context.Context, q Query) ([]Item, error)
	// WithTag returns items carrying tag, ordered like Trending
	WithTag(ctx context.Context, tag string, q Query) ([]Item, error)
}

// SponsorStore supplies sponsored items. It returns nil, nil when no ad
// outside excludeAdIDs is available.
type SponsorStore interface {
	Sponsored(ctx context.Context, excludeAdIDs []int64) (*Item, error)
}

// ViewerSource loads the personalization signals of a profile
type ViewerSource interface {
	RecTags(ctx context.Context, profileID string) ([]string, error)
	Followees(ctx context.Context, profileID string) ([]string, error)
	Preferences(ctx context.Context, profileID string) ([]string, error)
}

// URLResolver maps a storage path to a fetchable URL
type URLResolver interface {
	PublicURL(ctx context.Context, path string) (string, bool)
}

// ViewEvent is emitted once per served item
type ViewEvent struct {
	MediaID   int64
	AdID      int64
	ViewerID  string
	SessionID string
	Source    Path
	Position  int
	At        time.Time
}

// Sponsored reports whether the event counts an ad view
func (e ViewEvent) Sponsored() bool {
	return e.AdID != 0
}

// ViewEmitter accepts view events. Emit must not block on delivery and
// never reports failure to the caller.
type ViewEmitter interface {
	Emit(ViewEvent)
}

// ViewEmitterFunc adapts a function to ViewEmitter
type ViewEmitterFunc func(ViewEvent)

func (f ViewEmitterFunc) Emit(e ViewEvent) { f(e) }
