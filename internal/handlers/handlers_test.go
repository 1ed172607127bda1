package handlers

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/database"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/kernel"
	"github.com/zfogg/clipfeed/internal/middleware"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/social"
	"github.com/zfogg/clipfeed/internal/storage"
	"github.com/zfogg/clipfeed/internal/util"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HandlersTestSuite runs the API against an in-memory sqlite database
type HandlersTestSuite struct {
	suite.Suite
	db     *gorm.DB
	k      *kernel.Kernel
	router *gin.Engine

	viewer  *models.Profile
	creator *models.Profile
	base    time.Time
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Database:    config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"},
		Auth:        config.AuthConfig{TrustUserHeader: true},
		Feed: config.FeedConfig{
			BatchSize:              3,
			MaxBatchSize:           20,
			OverfetchMultiplier:    6,
			PersonalizedMultiplier: 2,
			TrendingEvery:          4,
			QueryExclude:           1000,
			MaxSessionExclude:      20000,
			ViewWorkers:            1,
			ViewQueueSize:          256,
		},
	}
}

func (suite *HandlersTestSuite) SetupTest() {
	cfg := testConfig()
	db, err := database.Open(cfg.Database, false)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), database.Migrate(db))
	suite.db = db

	k, err := kernel.New(cfg, kernel.Deps{
		DB:   db,
		URLs: storage.StaticResolver{BaseURL: "https://cdn.test"},
	},
		kernel.WithAssemblerOptions(feed.WithRand(rand.New(rand.NewPCG(1, 2)))),
		kernel.WithLoaderOptions(feed.WithLoaderRand(rand.New(rand.NewPCG(3, 4)))),
	)
	require.NoError(suite.T(), err)
	suite.k = k

	suite.base = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	suite.viewer = suite.createProfile("viewer")
	suite.creator = suite.createProfile("creator")

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.setupRoutes()
}

func (suite *HandlersTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// setupRoutes mounts the API behind the viewer middleware, trusting X-User-ID
func (suite *HandlersTestSuite) setupRoutes() {
	h := NewHandlers(suite.k)
	h.RegisterOperational(suite.router)

	api := suite.router.Group("/api/v1")
	api.Use(middleware.ViewerMiddleware(suite.k.Auth(), true))
	h.RegisterRoutes(api)
}

func (suite *HandlersTestSuite) createProfile(username string) *models.Profile {
	p := &models.Profile{Username: username}
	require.NoError(suite.T(), suite.db.Create(p).Error)
	return p
}

func (suite *HandlersTestSuite) createMedia(views int64, minutesAgo int, tags ...string) *models.Media {
	m := &models.Media{
		OwnerID:     suite.creator.ID,
		MediaType:   models.MediaTypeVideo,
		StoragePath: fmt.Sprintf("videos/%d.mp4", minutesAgo),
		Title:       fmt.Sprintf("clip %d", minutesAgo),
		ViewCount:   views,
		Audience:    feed.AudienceStraight,
		CreatedAt:   suite.base.Add(-time.Duration(minutesAgo) * time.Minute),
	}
	for _, t := range tags {
		m.Tags = append(m.Tags, models.MediaTag{Tag: t})
	}
	require.NoError(suite.T(), suite.db.Create(m).Error)
	return m
}

func (suite *HandlersTestSuite) createAd(mediaType string) *models.Ad {
	expires := time.Now().Add(24 * time.Hour)
	require.NoError(suite.T(), suite.db.Create(&models.AdBuyer{UserID: suite.creator.ID, ExpiresAt: &expires}).Error)
	ad := &models.Ad{
		OwnerID:     suite.creator.ID,
		MediaType:   mediaType,
		StoragePath: "ads/" + mediaType + ".mp4",
		LandingURL:  "https://shop.test",
	}
	require.NoError(suite.T(), suite.db.Create(ad).Error)
	return ad
}

func (suite *HandlersTestSuite) request(method, path, viewerID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if viewerID != "" {
		req.Header.Set(middleware.UserIDHeader, viewerID)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (suite *HandlersTestSuite) createSession(body interface{}) string {
	w := suite.request(http.MethodPost, "/api/v1/feed/sessions", "", body)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	resp := decode[struct {
		Session feed.Session `json:"session"`
	}](suite.T(), w)
	return resp.Session.ID
}

func itemIDs(items []feed.Item) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if !it.Sponsored {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (suite *HandlersTestSuite) TestCreateFeedSession() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/v1/feed/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[struct {
		Session feed.Session `json:"session"`
	}](t, w)
	assert.Equal(t, feed.TabForYou, resp.Session.Tab)
	assert.NotEmpty(t, resp.Session.ID)

	w = suite.request(http.MethodPost, "/api/v1/feed/sessions", "", gin.H{"tab": "tag", "tag": "Gaming Fever"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp = decode[struct {
		Session feed.Session `json:"session"`
	}](t, w)
	assert.Equal(t, "gaming-fever", resp.Session.TagSlug)

	w = suite.request(http.MethodPost, "/api/v1/feed/sessions", "", gin.H{"tab": "hot"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errResp := decode[util.ErrorResponse](t, w)
	assert.Equal(t, "tab", errResp.Field)

	w = suite.request(http.MethodPost, "/api/v1/feed/sessions", "", gin.H{"tab": "tag"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestNextFeedBatchPagesWithoutRepeats() {
	t := suite.T()
	for i := 0; i < 5; i++ {
		suite.createMedia(int64(100-i), i+1)
	}
	id := suite.createSession(nil)
	path := "/api/v1/feed/sessions/" + id + "/next"

	first := decode[FeedPageResponse](t, suite.request(http.MethodGet, path, "", nil))
	assert.Equal(t, id, first.SessionID)
	assert.Equal(t, feed.PathTrending, first.Path)
	assert.Len(t, first.Items, 3)
	assert.True(t, first.HasMore)
	assert.Equal(t, -1, first.SponsoredIndex)
	for _, it := range first.Items {
		assert.Contains(t, it.URL, "https://cdn.test/videos/")
	}

	second := decode[FeedPageResponse](t, suite.request(http.MethodGet, path, "", nil))
	require.Len(t, second.Items, 2)
	assert.NotContains(t, itemIDs(first.Items), second.Items[0].ID)
	assert.NotContains(t, itemIDs(first.Items), second.Items[1].ID)

	third := decode[FeedPageResponse](t, suite.request(http.MethodGet, path, "", nil))
	assert.Empty(t, third.Items)
	assert.False(t, third.HasMore)

	s, err := suite.k.Sessions().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, s.ExcludeIDs, 5)
	assert.True(t, s.Exhausted)
	assert.Equal(t, 3, s.PersonalizedBatches)
}

func (suite *HandlersTestSuite) TestNextFeedBatchTabChangeResets() {
	t := suite.T()
	suite.createMedia(10, 1, "Cats")
	suite.createMedia(20, 2, "Dogs")
	id := suite.createSession(nil)

	w := suite.request(http.MethodGet, "/api/v1/feed/sessions/"+id+"/next?tab=tag&tag=cats", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[FeedPageResponse](t, w)
	assert.Equal(t, feed.PathTag, page.Path)
	require.Len(t, page.Items, 1)
	assert.Equal(t, []string{"Cats"}, page.Items[0].Tags)

	s, err := suite.k.Sessions().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, feed.TabTag, s.Tab)
	assert.Equal(t, "cats", s.TagSlug)
}

func (suite *HandlersTestSuite) TestNextFeedBatchErrors() {
	t := suite.T()

	w := suite.request(http.MethodGet, "/api/v1/feed/sessions/missing/next", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := suite.createSession(nil)
	release, err := suite.k.Sessions().Acquire(context.Background(), id)
	require.NoError(t, err)

	w = suite.request(http.MethodGet, "/api/v1/feed/sessions/"+id+"/next", "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "BATCH_IN_FLIGHT", decode[util.ErrorResponse](t, w).Code)
	release()

	require.NoError(t, suite.db.Migrator().DropTable(&models.Media{}))
	w = suite.request(http.MethodGet, "/api/v1/feed/sessions/"+id+"/next", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "FEED_UNAVAILABLE", decode[util.ErrorResponse](t, w).Code)

	s, err := suite.k.Sessions().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, s.PersonalizedBatches)
}

func (suite *HandlersTestSuite) TestNextFeedBatchSplicesOneSponsoredItem() {
	t := suite.T()
	for i := 0; i < 6; i++ {
		suite.createMedia(int64(i), i+1)
	}
	ad := suite.createAd(models.MediaTypeVideo)
	id := suite.createSession(nil)
	path := "/api/v1/feed/sessions/" + id + "/next"

	first := decode[FeedPageResponse](t, suite.request(http.MethodGet, path, "", nil))
	require.Len(t, first.Items, 4)
	require.GreaterOrEqual(t, first.SponsoredIndex, 0)
	sponsored := first.Items[first.SponsoredIndex]
	assert.True(t, sponsored.Sponsored)
	assert.Equal(t, ad.ID, sponsored.ID)
	assert.Equal(t, "https://shop.test", sponsored.LandingURL)

	second := decode[FeedPageResponse](t, suite.request(http.MethodGet, path, "", nil))
	assert.Len(t, second.Items, 3)
	assert.Equal(t, -1, second.SponsoredIndex)
}

func (suite *HandlersTestSuite) TestDeleteFeedSession() {
	id := suite.createSession(nil)

	w := suite.request(http.MethodDelete, "/api/v1/feed/sessions/"+id, "", nil)
	assert.Equal(suite.T(), http.StatusNoContent, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/feed/sessions/"+id+"/next", "", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteFeedSessionWaitsForBatch() {
	t := suite.T()
	suite.createMedia(10, 1)
	id := suite.createSession(nil)
	ctx := context.Background()

	release, err := suite.k.Sessions().Acquire(ctx, id)
	require.NoError(t, err)

	w := suite.request(http.MethodDelete, "/api/v1/feed/sessions/"+id, "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "BATCH_IN_FLIGHT", decode[util.ErrorResponse](t, w).Code)

	// the in-flight batch finishes and saves
	s, err := suite.k.Sessions().Get(ctx, id)
	require.NoError(t, err)
	s.Exclude(1)
	require.NoError(t, suite.k.Sessions().Save(ctx, s))
	release()

	w = suite.request(http.MethodDelete, "/api/v1/feed/sessions/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err = suite.k.Sessions().Get(ctx, id)
	assert.ErrorIs(t, err, feed.ErrSessionNotFound)
}

func (suite *HandlersTestSuite) TestStatelessFeedBatch() {
	t := suite.T()
	a := suite.createMedia(30, 1)
	b := suite.createMedia(20, 2)
	c := suite.createMedia(10, 3)

	body := gin.H{"session": gin.H{"tab": "trending", "exclude_ids": []int64{a.ID, b.ID}}}
	w := suite.request(http.MethodPost, "/api/v1/feed/batch", "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[statelessBatchResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, c.ID, resp.Items[0].ID)
	require.NotNil(t, resp.Session)
	assert.NotEmpty(t, resp.Session.ID)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, resp.Session.ExcludeIDs)

	w = suite.request(http.MethodPost, "/api/v1/feed/batch", "", gin.H{"session": gin.H{"tab": "tag"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestStatelessFeedBatchLargeSession() {
	t := suite.T()
	var served []int64
	for i := 0; i < 4; i++ {
		served = append(served, suite.createMedia(int64(100-i), i+1).ID)
	}
	fresh := suite.createMedia(1, 10)

	// far more ids than sqlite accepts as bind variables
	exclude := make([]int64, 0, 20000)
	for id := int64(1_000_000); len(exclude) < 20000-len(served); id++ {
		exclude = append(exclude, id)
	}
	exclude = append(served, exclude...)

	body := gin.H{"session": gin.H{"tab": "trending", "exclude_ids": exclude}}
	w := suite.request(http.MethodPost, "/api/v1/feed/batch", "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[statelessBatchResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, fresh.ID, resp.Items[0].ID)
	assert.Len(t, resp.Session.ExcludeIDs, 20001)

	body = gin.H{"session": gin.H{"tab": "trending", "exclude_ids": append(exclude, 5_000_000)}}
	w = suite.request(http.MethodPost, "/api/v1/feed/batch", "", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errResp := decode[util.ErrorResponse](t, w)
	assert.Equal(t, "session", errResp.Field)
}

func (suite *HandlersTestSuite) TestPersonalizedAfterLike() {
	t := suite.T()
	liked := suite.createMedia(1, 1, "Cats")
	suite.createMedia(5, 2, "Cats")
	suite.createMedia(500, 3, "Dogs")

	w := suite.request(http.MethodPost, fmt.Sprintf("/api/v1/media/%d/like", liked.ID), suite.viewer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	id := suite.createSession(nil)
	page := decode[FeedPageResponse](t, suite.request(http.MethodGet, "/api/v1/feed/sessions/"+id+"/next", suite.viewer.ID, nil))
	assert.Equal(t, feed.PathPersonalized, page.Path)
	for _, it := range page.Items {
		assert.Contains(t, it.Tags, "Cats")
	}
}

func (suite *HandlersTestSuite) TestGetMediaAndToggleLike() {
	t := suite.T()
	m := suite.createMedia(7, 1, "Cats")
	path := fmt.Sprintf("/api/v1/media/%d", m.ID)

	w := suite.request(http.MethodPost, path+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, path+"/like", suite.viewer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, w)["liked"])

	resp := decode[MediaResponse](t, suite.request(http.MethodGet, path, suite.viewer.ID, nil))
	assert.True(t, resp.LikedByMe)
	assert.Equal(t, int64(1), resp.Likes)
	assert.Equal(t, "https://cdn.test/videos/1.mp4", resp.URL)
	assert.Equal(t, "creator", resp.Owner.Username)
	assert.Equal(t, "video/mp4", resp.ContentType)

	resp = decode[MediaResponse](t, suite.request(http.MethodGet, path, "", nil))
	assert.False(t, resp.LikedByMe)

	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/v1/media/999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, suite.request(http.MethodGet, "/api/v1/media/abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodPost, "/api/v1/media/999/like", suite.viewer.ID, nil).Code)
}

func (suite *HandlersTestSuite) TestFollow() {
	t := suite.T()
	path := "/api/v1/users/" + suite.creator.ID

	w := suite.request(http.MethodPost, path+"/follow", suite.viewer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[map[string]interface{}](t, w)
	assert.Equal(t, true, result["following"])
	assert.Equal(t, float64(1), result["followers"])

	counts := decode[map[string]int64](t, suite.request(http.MethodGet, path+"/follow-counts", "", nil))
	assert.Equal(t, int64(1), counts["followers"])
	assert.Equal(t, int64(0), counts["following"])

	w = suite.request(http.MethodPost, "/api/v1/users/"+suite.viewer.ID+"/follow", suite.viewer.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/users/nobody/follow", suite.viewer.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/users/nobody/follow-counts", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestPreferences() {
	t := suite.T()

	got := decode[map[string][]string](t, suite.request(http.MethodGet, "/api/v1/me/preferences", suite.viewer.ID, nil))
	assert.Equal(t, []string{"straight"}, got["preferences"])

	w := suite.request(http.MethodPut, "/api/v1/me/preferences", suite.viewer.ID, gin.H{"preferences": []string{"Animated", "gay"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"gay", "animated"}, decode[map[string][]string](t, w)["preferences"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.PreferencesCookie+"=")

	got = decode[map[string][]string](t, suite.request(http.MethodGet, "/api/v1/me/preferences", suite.viewer.ID, nil))
	assert.Equal(t, []string{"gay", "animated"}, got["preferences"])

	w = suite.request(http.MethodPut, "/api/v1/me/preferences", suite.viewer.ID, gin.H{"preferences": []string{"furry"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// anonymous viewers only get the cookie
	w = suite.request(http.MethodPut, "/api/v1/me/preferences", "", gin.H{"preferences": []string{"trans"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"trans"}, decode[map[string][]string](t, w)["preferences"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/preferences", nil)
	req.Header.Set(middleware.AudienceHeader, "lesbian,bisexual")
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	assert.Equal(t, []string{"bisexual", "lesbian"}, decode[map[string][]string](t, rec)["preferences"])
}

func (suite *HandlersTestSuite) TestAds() {
	t := suite.T()

	banner := decode[map[string]*feed.Item](t, suite.request(http.MethodGet, "/api/v1/ads/banner", "", nil))
	assert.Nil(t, banner["ad"])

	suite.createAd(models.MediaTypeBanner)
	suite.createAd(models.MediaTypeVideo)

	banner = decode[map[string]*feed.Item](t, suite.request(http.MethodGet, "/api/v1/ads/banner", "", nil))
	require.NotNil(t, banner["ad"])
	assert.Equal(t, models.MediaTypeBanner, banner["ad"].MediaType)
	assert.Equal(t, "https://cdn.test/ads/banner.mp4", banner["ad"].URL)

	sidebar := decode[map[string][]feed.Item](t, suite.request(http.MethodGet, "/api/v1/ads/sidebar?limit=50", "", nil))
	require.Len(t, sidebar["ads"], 1)
	assert.True(t, sidebar["ads"][0].Sponsored)
}

func (suite *HandlersTestSuite) TestSuggestTags() {
	t := suite.T()
	require.NoError(t, suite.k.Tags().Ensure(context.Background(), []string{"gaming fever", "Gardening", "cats"}))

	resp := decode[map[string][]TagSuggestion](t, suite.request(http.MethodGet, "/api/v1/tags/suggestions?q=ga", "", nil))
	assert.Equal(t, []TagSuggestion{
		{Label: "Gaming Fever", Slug: "gaming-fever"},
		{Label: "Gardening", Slug: "gardening"},
	}, resp["tags"])
}

type commentsResponse struct {
	Comments []*social.CommentNode `json:"comments"`
}

func (suite *HandlersTestSuite) TestComments() {
	t := suite.T()
	m := suite.createMedia(1, 1)
	path := fmt.Sprintf("/api/v1/media/%d/comments", m.ID)

	resp := decode[commentsResponse](t, suite.request(http.MethodGet, path, "", nil))
	assert.Empty(t, resp.Comments)

	w := suite.request(http.MethodPost, path, "", gin.H{"body": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, path, suite.viewer.ID, gin.H{"body": "  first  "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp = decode[commentsResponse](t, w)
	require.Len(t, resp.Comments, 1)
	root := resp.Comments[0]
	assert.Equal(t, "first", root.Body)
	assert.Equal(t, "viewer", root.Username)

	w = suite.request(http.MethodPost, path, suite.creator.ID, gin.H{"body": "reply", "parent_id": root.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp = decode[commentsResponse](t, w)
	require.Len(t, resp.Comments, 1)
	require.Len(t, resp.Comments[0].Replies, 1)
	assert.Equal(t, "creator", resp.Comments[0].Replies[0].Username)

	w = suite.request(http.MethodPost, "/api/v1/comments/"+root.ID+"/like", suite.creator.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	like := decode[social.CommentLikeResult](t, w)
	assert.True(t, like.Liked)
	assert.Equal(t, int64(1), like.Likes)

	resp = decode[commentsResponse](t, suite.request(http.MethodGet, path, suite.creator.ID, nil))
	assert.True(t, resp.Comments[0].LikedByMe)
	assert.Equal(t, int64(1), resp.Comments[0].Likes)

	w = suite.request(http.MethodPost, path, suite.viewer.ID, gin.H{"body": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "body", decode[util.ErrorResponse](t, w).Field)

	w = suite.request(http.MethodPost, path, suite.viewer.ID, gin.H{"body": "x", "parent_id": "missing"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "parent_id", decode[util.ErrorResponse](t, w).Field)

	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/v1/media/999/comments", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodPost, "/api/v1/comments/missing/like", suite.viewer.ID, nil).Code)
}

type likedResponse struct {
	Items   []feed.Item `json:"items"`
	Type    string      `json:"type"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	HasMore bool        `json:"has_more"`
}

func (suite *HandlersTestSuite) TestLikedMedia() {
	t := suite.T()
	var videos []*models.Media
	for i := 0; i < 3; i++ {
		videos = append(videos, suite.createMedia(1, i+1))
	}
	img := suite.createMedia(1, 10)
	require.NoError(t, suite.db.Model(img).Update("media_type", models.MediaTypeImage).Error)

	for _, m := range append(videos, img) {
		w := suite.request(http.MethodPost, fmt.Sprintf("/api/v1/media/%d/like", m.ID), suite.viewer.ID, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	assert.Equal(t, http.StatusUnauthorized, suite.request(http.MethodGet, "/api/v1/me/liked", "", nil).Code)

	w := suite.request(http.MethodGet, "/api/v1/me/liked?limit=2", suite.viewer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[likedResponse](t, w)
	assert.Equal(t, models.MediaTypeVideo, page.Type)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)
	assert.NotEmpty(t, page.Items[0].URL)

	page = decode[likedResponse](t, suite.request(http.MethodGet, "/api/v1/me/liked?limit=2&page=2", suite.viewer.ID, nil))
	assert.False(t, page.HasMore)
	require.Len(t, page.Items, 1)

	page = decode[likedResponse](t, suite.request(http.MethodGet, "/api/v1/me/liked?type=gifs", suite.viewer.ID, nil))
	assert.Equal(t, []int64{img.ID}, itemIDs(page.Items))

	w = suite.request(http.MethodGet, "/api/v1/me/liked?type=audio", suite.viewer.ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestAdLikes() {
	t := suite.T()
	ad := suite.createAd(models.MediaTypeVideo)
	path := fmt.Sprintf("/api/v1/ads/%d/like", ad.ID)

	assert.Equal(t, false, decode[map[string]bool](t, suite.request(http.MethodGet, path, "", nil))["liked"])
	assert.Equal(t, http.StatusUnauthorized, suite.request(http.MethodPost, path, "", nil).Code)

	w := suite.request(http.MethodPost, path, suite.viewer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[social.AdLikeResult](t, w)
	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.Likes)

	assert.Equal(t, true, decode[map[string]bool](t, suite.request(http.MethodGet, path, suite.viewer.ID, nil))["liked"])

	result = decode[social.AdLikeResult](t, suite.request(http.MethodPost, path, suite.viewer.ID, nil))
	assert.False(t, result.Liked)
	assert.Equal(t, int64(0), result.Likes)

	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodPost, "/api/v1/ads/999/like", suite.viewer.ID, nil).Code)
}

func (suite *HandlersTestSuite) TestProfilesByUsername() {
	t := suite.T()
	suite.createMedia(40, 1)
	suite.createMedia(2, 2)
	w := suite.request(http.MethodPost, "/api/v1/users/"+suite.creator.ID+"/follow", suite.viewer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	profile := decode[map[string]interface{}](t, suite.request(http.MethodGet, "/api/v1/profiles/creator", "", nil))
	assert.Equal(t, suite.creator.ID, profile["id"])
	assert.Equal(t, "creator", profile["username"])

	counts := decode[social.ProfileStats](t, suite.request(http.MethodGet, "/api/v1/profiles/creator/counts", "", nil))
	assert.Equal(t, int64(1), counts.Followers)
	assert.Equal(t, int64(0), counts.Following)
	assert.Equal(t, int64(42), counts.Views)

	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/v1/profiles/nobody", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/v1/profiles/nobody/counts", "", nil).Code)
}

func (suite *HandlersTestSuite) TestReports() {
	t := suite.T()
	m := suite.createMedia(1, 1)

	reasons := decode[map[string][]social.ReportReasonOption](t, suite.request(http.MethodGet, "/api/v1/reports/reasons", "", nil))
	assert.Len(t, reasons["reasons"], len(social.ReportReasons))

	w := suite.request(http.MethodPost, "/api/v1/reports", "", gin.H{"media_id": m.ID, "reason": "Underaged", "note": "looks young"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]interface{}](t, w)["report_id"]
	require.NotNil(t, id)

	var report models.Report
	require.NoError(t, suite.db.First(&report, int64(id.(float64))).Error)
	assert.Equal(t, models.ReportReasonUnderaged, report.Reason)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Nil(t, report.ReporterID)

	w = suite.request(http.MethodPost, "/api/v1/reports", suite.viewer.ID, gin.H{"media_id": m.ID, "reason": "spam"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "reason", decode[util.ErrorResponse](t, w).Field)

	w = suite.request(http.MethodPost, "/api/v1/reports", suite.viewer.ID, gin.H{"reason": "hate"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "media_id", decode[util.ErrorResponse](t, w).Field)

	w = suite.request(http.MethodPost, "/api/v1/reports", suite.viewer.ID, gin.H{"media_id": 999, "reason": "hate"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", "", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := decode[map[string]interface{}](suite.T(), w)
	assert.Equal(suite.T(), "ok", resp["status"])
	assert.Equal(suite.T(), map[string]interface{}{"database": "ok", "redis": "disabled"}, resp["checks"])

	w = suite.request(http.MethodGet, "/metrics", "", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
