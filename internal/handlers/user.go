package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/middleware"
	"github.com/zfogg/clipfeed/internal/social"
	"github.com/zfogg/clipfeed/internal/util"
)

const preferencesCookieMaxAge = 365 * 24 * 60 * 60

type preferencesRequest struct {
	Preferences []string `json:"preferences"`
}

// ToggleFollow follows or unfollows a profile
// POST /api/v1/users/:id/follow
func (h *Handlers) ToggleFollow(c *gin.Context) {
	viewerID, ok := util.RequireViewerID(c)
	if !ok {
		return
	}

	result, err := h.k.Social().ToggleFollow(c.Request.Context(), viewerID, c.Param("id"))
	if err != nil {
		respondError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFollowCounts returns a profile's follower and following counts
// GET /api/v1/users/:id/follow-counts
func (h *Handlers) GetFollowCounts(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.k.Profiles().GetProfile(ctx, id); err != nil {
		respondError(c, err, "user")
		return
	}

	counts, err := h.k.Social().FollowCounts(ctx, id)
	if err != nil {
		respondError(c, err, "follow counts")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetProfileByUsername returns a public profile
// GET /api/v1/profiles/:username
func (h *Handlers) GetProfileByUsername(c *gin.Context) {
	p, err := h.k.Social().ProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         p.ID,
		"username":   p.Username,
		"avatar_url": p.AvatarURL,
		"verified":   p.Verified,
	})
}

// GetProfileCounts returns follower, following and total view counts
// GET /api/v1/profiles/:username/counts
func (h *Handlers) GetProfileCounts(c *gin.Context) {
	stats, err := h.k.Social().StatsByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetPreferences returns the viewer's audience preferences. Anonymous
// viewers get what their request carried, or the default.
// GET /api/v1/me/preferences
func (h *Handlers) GetPreferences(c *gin.Context) {
	viewerID := util.GetViewerID(c)
	if viewerID == "" {
		c.JSON(http.StatusOK, gin.H{"preferences": feed.NormalizeAudiences(util.GetAudiences(c))})
		return
	}

	prefs, err := h.k.Social().Preferences(c.Request.Context(), viewerID)
	if err != nil {
		respondError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// UpdatePreferences stores the viewer's audience preferences and mirrors
// them into the preferences cookie. Anonymous viewers only get the cookie.
// PUT /api/v1/me/preferences
func (h *Handlers) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	var (
		prefs []string
		err   error
	)
	if viewerID := util.GetViewerID(c); viewerID != "" {
		prefs, err = h.k.Social().UpdatePreferences(c.Request.Context(), viewerID, req.Preferences)
	} else {
		prefs, err = social.NormalizePreferences(req.Preferences)
	}
	if err != nil {
		respondError(c, err, "user")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.PreferencesCookie, strings.Join(prefs, ","), preferencesCookieMaxAge, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
