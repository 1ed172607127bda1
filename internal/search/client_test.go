package search

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/clipfeed/internal/config"
)

// fakeCluster answers the handful of Elasticsearch endpoints the client uses
type fakeCluster struct {
	mu         sync.Mutex
	hasIndex   bool
	docs       map[string]tagDoc
	failSearch bool
	lastQuery  map[string]interface{}
}

func newFakeCluster(t *testing.T) (*fakeCluster, *Client) {
	t.Helper()
	f := &fakeCluster{docs: make(map[string]tagDoc)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.SearchConfig{URL: srv.URL}, nil)
	require.NoError(t, err)
	return f, client
}

func (f *fakeCluster) setFailSearch(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSearch = v
}

func (f *fakeCluster) indexed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasIndex
}

func (f *fakeCluster) snapshot() map[string]tagDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]tagDoc, len(f.docs))
	for k, v := range f.docs {
		out[k] = v
	}
	return out
}

func (f *fakeCluster) lastQueryClause() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, _ := f.lastQuery["query"].(map[string]interface{})
	return q
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	path := strings.Trim(r.URL.Path, "/")
	body, _ := io.ReadAll(r.Body)

	switch {
	case path == "":
		io.WriteString(w, `{"version":{"number":"9.2.0"},"tagline":"You Know, for Search"}`)
	case path == TagsIndex && r.Method == http.MethodHead:
		if !f.hasIndex {
			w.WriteHeader(http.StatusNotFound)
		}
	case path == TagsIndex && r.Method == http.MethodPut:
		if f.hasIndex {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":{"type":"resource_already_exists_exception"}}`)
			return
		}
		f.hasIndex = true
		io.WriteString(w, `{"acknowledged":true}`)
	case strings.HasPrefix(path, TagsIndex+"/_doc/"):
		var doc tagDoc
		if err := json.Unmarshal(body, &doc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.docs[strings.TrimPrefix(path, TagsIndex+"/_doc/")] = doc
		io.WriteString(w, `{"result":"created"}`)
	case path == TagsIndex+"/_search":
		if f.failSearch {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":{"type":"cluster_block_exception"}}`)
			return
		}
		f.search(w, body)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeCluster) search(w http.ResponseWriter, body []byte) {
	var req struct {
		Size  int `json:"size"`
		Query struct {
			Prefix map[string]struct {
				Value string `json:"value"`
			} `json:"prefix"`
		} `json:"query"`
	}
	_ = json.Unmarshal(body, &req)
	f.lastQuery = map[string]interface{}{}
	_ = json.Unmarshal(body, &f.lastQuery)

	prefix := req.Query.Prefix["label_lower"].Value
	var hits []tagDoc
	for _, d := range f.docs {
		if strings.HasPrefix(d.LabelLower, prefix) {
			hits = append(hits, d)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].LabelLower < hits[j].LabelLower })
	if len(hits) > req.Size {
		hits = hits[:req.Size]
	}

	type hit struct {
		Source tagDoc `json:"_source"`
	}
	var resp struct {
		Hits struct {
			Hits []hit `json:"hits"`
		} `json:"hits"`
	}
	resp.Hits.Hits = []hit{}
	for _, d := range hits {
		resp.Hits.Hits = append(resp.Hits.Hits, hit{Source: d})
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestNewClientRequiresCluster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(config.SearchConfig{URL: srv.URL}, nil)
	assert.Error(t, err)
}

func TestEnsureTagIndexIsIdempotent(t *testing.T) {
	f, client := newFakeCluster(t)
	ctx := context.Background()

	require.NoError(t, client.EnsureTagIndex(ctx))
	require.NoError(t, client.EnsureTagIndex(ctx))
	assert.True(t, f.indexed())
}

func TestSuggestTags(t *testing.T) {
	f, client := newFakeCluster(t)
	ctx := context.Background()

	require.NoError(t, client.IndexTags(ctx, []string{"gaming fever", "Gaming", "GAMING", "cats", "Gardening"}))
	docs := f.snapshot()
	assert.Len(t, docs, 4)
	assert.Equal(t, tagDoc{Label: "Gaming Fever", LabelLower: "gaming fever"}, docs["gaming-fever"])

	got, err := client.SuggestTags(ctx, "  GA ", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gaming", "Gaming Fever", "Gardening"}, got)

	got, err = client.SuggestTags(ctx, "gam", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gaming"}, got)

	got, err = client.SuggestTags(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Contains(t, f.lastQueryClause(), "match_all")

	got, err = client.SuggestTags(ctx, "zzz", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestTagsClusterError(t *testing.T) {
	f, client := newFakeCluster(t)
	f.setFailSearch(true)

	_, err := client.SuggestTags(context.Background(), "ga", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

// memTags is an in-memory TagRepository
type memTags struct {
	labels    []string
	ensureErr error
	suggested int
}

func (m *memTags) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	m.suggested++
	var out []string
	for _, l := range m.labels {
		if strings.HasPrefix(strings.ToLower(l), strings.ToLower(prefix)) && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memTags) Ensure(ctx context.Context, labels []string) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	m.labels = append(m.labels, labels...)
	return nil
}

func (m *memTags) Labels(ctx context.Context) ([]string, error) {
	return m.labels, nil
}

func TestTagIndexSuggestsFromCluster(t *testing.T) {
	_, client := newFakeCluster(t)
	store := &memTags{}
	idx := NewTagIndex(client, store)
	ctx := context.Background()

	require.NoError(t, idx.Ensure(ctx, []string{"Cats", "Cooking"}))
	assert.Equal(t, []string{"Cats", "Cooking"}, store.labels)

	got, err := idx.Suggest(ctx, "co", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cooking"}, got)
	assert.Zero(t, store.suggested)
}

func TestTagIndexFallsBackToDatabase(t *testing.T) {
	f, client := newFakeCluster(t)
	store := &memTags{labels: []string{"Cats", "Cooking"}}
	idx := NewTagIndex(client, store)
	f.setFailSearch(true)

	got, err := idx.Suggest(context.Background(), "ca", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cats"}, got)
	assert.Equal(t, 1, store.suggested)
}

func TestTagIndexEnsureSurfacesStoreErrors(t *testing.T) {
	f, client := newFakeCluster(t)
	store := &memTags{ensureErr: errors.New("db down")}
	idx := NewTagIndex(client, store)

	err := idx.Ensure(context.Background(), []string{"Cats"})
	assert.EqualError(t, err, "db down")
	assert.Empty(t, f.snapshot())
}

func TestTagIndexBackfill(t *testing.T) {
	f, client := newFakeCluster(t)
	store := &memTags{labels: []string{"Cats", "Dance", "Anime"}}

	n, err := NewTagIndex(client, store).Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, f.indexed())
	docs := f.snapshot()
	assert.Len(t, docs, 3)
	assert.Contains(t, docs, "anime")
}
