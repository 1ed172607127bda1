package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/util"
)

const (
	defaultSidebarAds = 3
	maxSidebarAds     = 10
)

// GetBannerAd returns one running banner ad, or null when none is running
// GET /api/v1/ads/banner
func (h *Handlers) GetBannerAd(c *gin.Context) {
	ctx := c.Request.Context()
	ad, err := h.k.Ads().Banner(ctx)
	if err != nil {
		respondError(c, err, "banner ad")
		return
	}
	if ad != nil && !h.resolve(ctx, ad) {
		ad = nil
	}
	if ad != nil {
		ad.Sponsored = true
	}
	c.JSON(http.StatusOK, gin.H{"ad": ad})
}

// GetSidebarAds returns up to limit running ads
// GET /api/v1/ads/sidebar
func (h *Handlers) GetSidebarAds(c *gin.Context) {
	ctx := c.Request.Context()
	limit := util.ClampInt(util.ParseInt(c.Query("limit"), defaultSidebarAds), 1, maxSidebarAds)

	ads, err := h.k.Ads().Sidebar(ctx, limit)
	if err != nil {
		respondError(c, err, "sidebar ads")
		return
	}

	out := make([]feed.Item, 0, len(ads))
	for i := range ads {
		if h.resolve(ctx, &ads[i]) {
			ads[i].Sponsored = true
			out = append(out, ads[i])
		}
	}
	c.JSON(http.StatusOK, gin.H{"ads": out})
}

// GetAdLike reports whether the viewer likes an ad
// GET /api/v1/ads/:id/like
func (h *Handlers) GetAdLike(c *gin.Context) {
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid ad id")
		return
	}

	liked, err := h.k.Social().HasLikedAd(c.Request.Context(), util.GetViewerID(c), id)
	if err != nil {
		respondError(c, err, "ad")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// ToggleAdLike likes or unlikes an ad
// POST /api/v1/ads/:id/like
func (h *Handlers) ToggleAdLike(c *gin.Context) {
	viewerID, ok := util.RequireViewerID(c)
	if !ok {
		return
	}
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid ad id")
		return
	}

	result, err := h.k.Social().ToggleAdLike(c.Request.Context(), viewerID, id)
	if err != nil {
		respondError(c, err, "ad")
		return
	}
	c.JSON(http.StatusOK, result)
}
