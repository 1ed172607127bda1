package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tab selects which feed a session pages through
type Tab string

const (
	TabForYou    Tab = "for-you"
	TabTrending  Tab = "trending"
	TabFollowing Tab = "following"
	TabNew       Tab = "new"
	TabTag       Tab = "tag"
)

var (
	// ErrBatchInFlight is returned when a session already has a batch loading
	ErrBatchInFlight = errors.New("feed batch already in flight")
	// ErrUnknownTab is returned for a tab the loader does not serve
	ErrUnknownTab = errors.New("unknown feed tab")
	// ErrSessionNotFound is returned when a session expired or never existed
	ErrSessionNotFound = errors.New("feed session not found")
	// ErrSessionTooLarge is returned for a client-held session whose
	// exclusion list is over the policy cap
	ErrSessionTooLarge = errors.New("feed session too large")
)

// ParseTab validates a tab name. The empty string selects the for-you tab.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case "":
		return TabForYou, nil
	case TabForYou, TabTrending, TabFollowing, TabNew, TabTag:
		return t, nil
	case "forYou":
		return TabForYou, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
	}
}

// Session is the state of one scrolling session. It is created when a feed
// is opened, replaced when the tab or tag changes, and mutated only by
// Loader.Next.
type Session struct {
	ID      string `json:"id"`
	Tab     Tab    `json:"tab"`
	TagSlug string `json:"tag,omitempty"`
	Limit   int    `json:"limit,omitempty"`

	// ExcludeIDs lists the media already shown, oldest first
	ExcludeIDs []int64 `json:"exclude_ids"`
	// PersonalizedBatches counts for-you batches served so far
	PersonalizedBatches int     `json:"personalized_batches"`
	SeenAdIDs           []int64 `json:"seen_ad_ids"`
	Exhausted           bool    `json:"exhausted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	excluded map[int64]struct{}
}

// NewSession starts an empty session for tab
func NewSession(tab Tab, tagSlug string) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:         uuid.New().String(),
		Tab:        tab,
		ExcludeIDs: []int64{},
		SeenAdIDs:  []int64{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if tab == TabTag {
		s.TagSlug = tagSlug
	}
	return s
}

// Validate checks a session received from a client or a store
func (s *Session) Validate() error {
	if _, err := ParseTab(string(s.Tab)); err != nil {
		return err
	}
	if s.Tab == TabTag && s.TagSlug == "" {
		return fmt.Errorf("tag feed requires a tag")
	}
	if s.PersonalizedBatches < 0 {
		return fmt.Errorf("personalized batch counter must not be negative")
	}
	return nil
}

// IsExcluded reports whether id was already shown
func (s *Session) IsExcluded(id int64) bool {
	s.index()
	_, ok := s.excluded[id]
	return ok
}

// Exclude appends ids to the exclusion list, skipping ones already present.
// The list only grows until Reset.
func (s *Session) Exclude(ids ...int64) {
	s.index()
	for _, id := range ids {
		if _, ok := s.excluded[id]; ok {
			continue
		}
		s.excluded[id] = struct{}{}
		s.ExcludeIDs = append(s.ExcludeIDs, id)
	}
}

// AdSeen reports whether the ad was already shown
func (s *Session) AdSeen(adID int64) bool {
	for _, id := range s.SeenAdIDs {
		if id == adID {
			return true
		}
	}
	return false
}

// MarkAdSeen records that the ad was shown
func (s *Session) MarkAdSeen(adID int64) {
	if !s.AdSeen(adID) {
		s.SeenAdIDs = append(s.SeenAdIDs, adID)
	}
}

// Reset clears the session state and switches it to tab
func (s *Session) Reset(tab Tab, tagSlug string) {
	s.Tab = tab
	s.TagSlug = ""
	if tab == TabTag {
		s.TagSlug = tagSlug
	}
	s.ExcludeIDs = []int64{}
	s.SeenAdIDs = []int64{}
	s.PersonalizedBatches = 0
	s.Exhausted = false
	s.excluded = nil
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) index() {
	if s.excluded != nil {
		return
	}
	s.excluded = make(map[int64]struct{}, len(s.ExcludeIDs))
	for _, id := range s.ExcludeIDs {
		s.excluded[id] = struct{}{}
	}
}
