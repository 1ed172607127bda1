package feed

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// memStore is an in-memory CandidateStore with the same ordering rules as
// the SQL repository. The XxxErr fields force failures.
type memStore struct {
	mu    sync.Mutex
	items []Item
	calls []string

	TrendingErr   error
	TagOverlapErr error
	FromOwnersErr error
	// IgnoreExclude makes the store return excluded IDs anyway
	IgnoreExclude bool
	// widestExclude is the longest exclusion list a query carried
	widestExclude int
}

func (m *memStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *memStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memStore) WidestExclude() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.widestExclude
}

func (m *memStore) filter(q Query, keep func(Item) bool) []Item {
	m.mu.Lock()
	m.widestExclude = max(m.widestExclude, len(q.Exclude))
	m.mu.Unlock()

	excluded := make(map[int64]bool, len(q.Exclude))
	if !m.IgnoreExclude {
		for _, id := range q.Exclude {
			excluded[id] = true
		}
	}
	audiences := make(map[string]bool, len(q.Audiences))
	for _, a := range q.Audiences {
		audiences[a] = true
	}

	var out []Item
	for _, it := range m.items {
		if q.MediaType != "" && it.MediaType != q.MediaType {
			continue
		}
		if len(audiences) > 0 && !audiences[it.Audience] {
			continue
		}
		if excluded[it.ID] || !keep(it) {
			continue
		}
		it.Tags = append([]string(nil), it.Tags...)
		out = append(out, it)
	}
	return out
}

func byPopularity(items []Item) {
	sort.SliceStable(items, func(i, j int) bool { return morePopular(items[i], items[j]) })
}

func byRecency(items []Item) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
}

func limitItems(items []Item, n int) []Item {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func hasAnyTag(it Item, tags []string) bool {
	for _, t := range it.Tags {
		for _, want := range tags {
			if t == want {
				return true
			}
		}
	}
	return false
}

func (m *memStore) Trending(_ context.Context, q Query) ([]Item, error) {
	m.record("trending")
	if m.TrendingErr != nil {
		return nil, m.TrendingErr
	}
	out := m.filter(q, func(Item) bool { return true })
	byPopularity(out)
	return limitItems(out, q.Limit), nil
}

func (m *memStore) TagOverlap(_ context.Context, tags []string, q Query) ([]Item, error) {
	m.record("tags")
	if m.TagOverlapErr != nil {
		return nil, m.TagOverlapErr
	}
	out := m.filter(q, func(it Item) bool { return hasAnyTag(it, tags) })
	byPopularity(out)
	return limitItems(out, q.Limit), nil
}

func (m *memStore) FromOwners(_ context.Context, owners []string, q Query) ([]Item, error) {
	m.record("follows")
	if m.FromOwnersErr != nil {
		return nil, m.FromOwnersErr
	}
	set := make(map[string]bool, len(owners))
	for _, o := range owners {
		set[o] = true
	}
	out := m.filter(q, func(it Item) bool { return set[it.Owner.ID] })
	byRecency(out)
	return limitItems(out, q.Limit), nil
}

func (m *memStore) Recent(_ context.Context, q Query) ([]Item, error) {
	m.record("recent")
	out := m.filter(q, func(Item) bool { return true })
	byRecency(out)
	return limitItems(out, q.Limit), nil
}

func (m *memStore) WithTag(_ context.Context, tag string, q Query) ([]Item, error) {
	m.record("tag:" + tag)
	out := m.filter(q, func(it Item) bool { return hasAnyTag(it, []string{tag}) })
	byPopularity(out)
	return limitItems(out, q.Limit), nil
}

// video builds a resolvable video item
func video(id int64, views int64, owner string, tags ...string) Item {
	return Item{
		ID:          id,
		MediaType:   "video",
		Owner:       Owner{ID: owner, Username: owner},
		StoragePath: fmt.Sprintf("videos/%d.mp4", id),
		Views:       views,
		Audience:    AudienceStraight,
		Tags:        tags,
		CreatedAt:   baseTime.Add(-time.Duration(id) * time.Minute),
	}
}

type testURLs struct{}

func (testURLs) PublicURL(_ context.Context, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	return "https://cdn.test/" + path, true
}

// recordingEmitter captures view events
type recordingEmitter struct {
	mu     sync.Mutex
	events []ViewEvent
}

func (r *recordingEmitter) Emit(e ViewEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) Events() []ViewEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ViewEvent(nil), r.events...)
}

// fakeSponsors serves ads in order, skipping excluded ones
type fakeSponsors struct {
	ads []Item
	err error
}

func (f *fakeSponsors) Sponsored(_ context.Context, exclude []int64) (*Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		seen[id] = true
	}
	for _, a := range f.ads {
		if !seen[a.ID] {
			return &a, nil
		}
	}
	return nil, nil
}

func ad(id int64) Item {
	return Item{
		ID:          id,
		MediaType:   "video",
		StoragePath: fmt.Sprintf("ads/%d.mp4", id),
		LandingURL:  "https://sponsor.test",
		CreatedAt:   baseTime,
	}
}

// fakeViewerSource implements ViewerSource with optional failures
type fakeViewerSource struct {
	tags, follows, prefs          []string
	tagsErr, followsErr, prefsErr error
}

func (f fakeViewerSource) RecTags(context.Context, string) ([]string, error) {
	return f.tags, f.tagsErr
}

func (f fakeViewerSource) Followees(context.Context, string) ([]string, error) {
	return f.follows, f.followsErr
}

func (f fakeViewerSource) Preferences(context.Context, string) ([]string, error) {
	return f.prefs, f.prefsErr
}

func idSet(items []Item) map[int64]bool {
	out := make(map[int64]bool, len(items))
	for _, it := range items {
		out[it.ID] = true
	}
	return out
}
