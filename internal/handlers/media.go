package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
	"github.com/zfogg/clipfeed/internal/storage"
	"github.com/zfogg/clipfeed/internal/util"
	"go.uber.org/zap"
)

// MediaResponse is a single item with the viewer's like state
type MediaResponse struct {
	feed.Item
	ContentType string `json:"content_type"`
	LikedByMe   bool   `json:"liked_by_me"`
}

// GetMedia returns one media item
// GET /api/v1/media/:id
func (h *Handlers) GetMedia(c *gin.Context) {
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid media id")
		return
	}

	ctx := c.Request.Context()
	m, err := h.k.Media().GetMedia(ctx, id)
	if err != nil {
		respondError(c, err, "media")
		return
	}

	item := repository.MediaToItem(m)
	if !h.resolve(ctx, &item) {
		util.RespondNotFound(c, "media")
		return
	}

	resp := MediaResponse{Item: item, ContentType: storage.ContentType(item.StoragePath)}
	if viewerID := util.GetViewerID(c); viewerID != "" {
		liked, err := h.k.Media().IsLikedBy(ctx, id, viewerID)
		if err != nil {
			logger.Log.Warn("Failed to load like state",
				logger.WithMediaID(id),
				logger.WithViewerID(viewerID),
				zap.Error(err),
			)
		}
		resp.LikedByMe = liked
	}

	c.JSON(http.StatusOK, resp)
}

// ToggleLike likes or unlikes a media item
// POST /api/v1/media/:id/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	viewerID, ok := util.RequireViewerID(c)
	if !ok {
		return
	}
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid media id")
		return
	}

	result, err := h.k.Social().ToggleLike(c.Request.Context(), viewerID, id)
	if err != nil {
		respondError(c, err, "media")
		return
	}
	c.JSON(http.StatusOK, result)
}

// resolve fills in the item URL and reports whether the path is servable
func (h *Handlers) resolve(ctx context.Context, item *feed.Item) bool {
	u, ok := h.k.URLs().PublicURL(ctx, item.StoragePath)
	if !ok {
		return false
	}
	item.URL = u
	return true
}

const (
	defaultLikedLimit = 9
	maxLikedLimit     = 50
)

// likedMediaType maps the listing's type filter onto a stored media type
func likedMediaType(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "video", "videos":
		return models.MediaTypeVideo, true
	case "image", "images", "gif", "gifs":
		return models.MediaTypeImage, true
	}
	return "", false
}

// GetLikedMedia pages through the media the viewer liked, newest like first
// GET /api/v1/me/liked?type=video|image&page=1&limit=9
func (h *Handlers) GetLikedMedia(c *gin.Context) {
	viewerID, ok := util.RequireViewerID(c)
	if !ok {
		return
	}
	mediaType, ok := likedMediaType(c.Query("type"))
	if !ok {
		util.RespondValidationError(c, "type", "type must be video or image")
		return
	}
	page := max(util.ParseInt(c.Query("page"), 1), 1)
	limit := util.ClampInt(util.ParseInt(c.Query("limit"), defaultLikedLimit), 1, maxLikedLimit)

	ctx := c.Request.Context()
	// one extra row tells us whether another page exists
	items, err := h.k.Media().LikedByProfile(ctx, viewerID, mediaType, limit+1, (page-1)*limit)
	if err != nil {
		respondError(c, err, "liked media")
		return
	}
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	out := make([]feed.Item, 0, len(items))
	for i := range items {
		if h.resolve(ctx, &items[i]) {
			out = append(out, items[i])
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    out,
		"type":     mediaType,
		"page":     page,
		"limit":    limit,
		"has_more": hasMore,
	})
}
