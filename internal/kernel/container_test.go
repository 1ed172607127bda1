package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/database"
	"github.com/zfogg/clipfeed/internal/search"
	"github.com/zfogg/clipfeed/internal/session"
	"github.com/zfogg/clipfeed/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Database:    config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"},
		Auth:        config.AuthConfig{JWTSecret: "secret"},
		Feed: config.FeedConfig{
			BatchSize:              3,
			MaxBatchSize:           20,
			OverfetchMultiplier:    6,
			PersonalizedMultiplier: 2,
			TrendingEvery:          4,
			QueryExclude:           1000,
			MaxSessionExclude:      20000,
			ViewWorkers:            1,
			ViewQueueSize:          8,
		},
	}
}

func TestNewWiresServices(t *testing.T) {
	cfg := testConfig()
	db, err := database.Open(cfg.Database, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	k, err := New(cfg, Deps{DB: db, URLs: storage.StaticResolver{BaseURL: "https://cdn.test"}})
	require.NoError(t, err)

	assert.NotNil(t, k.Loader())
	assert.NotNil(t, k.Social())
	assert.True(t, k.Auth().Enabled())
	assert.IsType(t, &session.MemoryStore{}, k.Sessions())
	assert.Equal(t, 4, k.Assembler().Policy().TrendingEvery)

	k.Start()
	require.NoError(t, k.Cleanup(context.Background()))
}

func TestNewPicksTagBackend(t *testing.T) {
	cfg := testConfig()
	db, err := database.Open(cfg.Database, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	urls := storage.StaticResolver{BaseURL: "https://cdn.test"}

	k, err := New(cfg, Deps{DB: db, URLs: urls})
	require.NoError(t, err)
	assert.NotContains(t, fmt.Sprintf("%T", k.Tags()), "search")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":{"number":"9.2.0"}}`))
	}))
	defer srv.Close()
	client, err := search.NewClient(config.SearchConfig{URL: srv.URL}, nil)
	require.NoError(t, err)

	k, err = New(cfg, Deps{DB: db, URLs: urls, Search: client})
	require.NoError(t, err)
	assert.IsType(t, &search.TagIndex{}, k.Tags())
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(testConfig(), Deps{})

	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.ElementsMatch(t, []string{"database (DB)", "storage URL resolver"}, initErr.Missing)

	_, err = New(nil, Deps{})
	assert.Error(t, err)
}

func TestCleanupRunsInReverseOrder(t *testing.T) {
	k := &Kernel{}
	var order []int
	k.OnCleanup(func(context.Context) error { order = append(order, 1); return nil })
	k.OnCleanup(func(context.Context) error { order = append(order, 2); return errors.New("boom") })
	k.OnCleanup(func(context.Context) error { order = append(order, 3); return nil })

	err := k.Cleanup(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []int{3, 2, 1}, order)

	// Cleanups run once.
	require.NoError(t, k.Cleanup(context.Background()))
	assert.Len(t, order, 3)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(testConfig().Feed)
	assert.Equal(t, 3, p.Limit(0))
	assert.Equal(t, 20, p.Limit(100))
	assert.True(t, p.ForceTrending(4))
	assert.False(t, p.ForceTrending(0))
}
