package feed

import (
	"time"
)

// Owner is the public profile attached to an item
type Owner struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Verified  bool   `json:"verified"`
}

// Item is one card in a feed page. Sponsored items carry the ad ID in ID.
type Item struct {
	ID          int64     `json:"id"`
	MediaType   string    `json:"media_type"`
	Owner       Owner     `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StoragePath string    `json:"-"`
	URL         string    `json:"url"`
	Views       int64     `json:"view_count"`
	Likes       int64     `json:"like_count"`
	Audience    string    `json:"audience,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`

	Sponsored  bool   `json:"sponsored,omitempty"`
	LandingURL string `json:"landing_url,omitempty"`
}

// Path names the strategy that produced a batch
type Path string

const (
	PathTrending     Path = "trending"
	PathPersonalized Path = "personalized"
	PathFollowing    Path = "following"
	PathRecent       Path = "recent"
	PathTag          Path = "tag"
)

// Batch is an ordered list of organic items and the path that produced it
type Batch struct {
	Items []Item
	Path  Path
}

// IDs returns the item IDs in order
func (b Batch) IDs() []int64 {
	ids := make([]int64, len(b.Items))
	for i, it := range b.Items {
		ids[i] = it.ID
	}
	return ids
}

// morePopular orders by views descending, then recency descending
func morePopular(a, b Item) bool {
	if a.Views != b.Views {
		return a.Views > b.Views
	}
	return a.CreatedAt.After(b.CreatedAt)
}
