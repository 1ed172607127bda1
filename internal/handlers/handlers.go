package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apierrors "github.com/zfogg/clipfeed/internal/errors"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/kernel"
	"github.com/zfogg/clipfeed/internal/repository"
	"github.com/zfogg/clipfeed/internal/social"
	"github.com/zfogg/clipfeed/internal/util"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	k *kernel.Kernel
}

// NewHandlers creates a new handlers instance
func NewHandlers(k *kernel.Kernel) *Handlers {
	return &Handlers{k: k}
}

// RegisterRoutes mounts the API under api. The viewer middleware must run
// before these routes.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	feedGroup := api.Group("/feed")
	{
		feedGroup.POST("/sessions", h.CreateFeedSession)
		feedGroup.GET("/sessions/:id/next", h.NextFeedBatch)
		feedGroup.DELETE("/sessions/:id", h.DeleteFeedSession)
		feedGroup.POST("/batch", h.StatelessFeedBatch)
	}

	media := api.Group("/media")
	{
		media.GET("/:id", h.GetMedia)
		media.POST("/:id/like", h.ToggleLike)
		media.GET("/:id/comments", h.GetComments)
		media.POST("/:id/comments", h.CreateComment)
	}

	api.POST("/comments/:id/like", h.ToggleCommentLike)

	users := api.Group("/users")
	{
		users.POST("/:id/follow", h.ToggleFollow)
		users.GET("/:id/follow-counts", h.GetFollowCounts)
	}

	profiles := api.Group("/profiles")
	{
		profiles.GET("/:username", h.GetProfileByUsername)
		profiles.GET("/:username/counts", h.GetProfileCounts)
	}

	me := api.Group("/me")
	{
		me.GET("/preferences", h.GetPreferences)
		me.PUT("/preferences", h.UpdatePreferences)
		me.GET("/liked", h.GetLikedMedia)
	}

	ads := api.Group("/ads")
	{
		ads.GET("/banner", h.GetBannerAd)
		ads.GET("/sidebar", h.GetSidebarAds)
		ads.GET("/:id/like", h.GetAdLike)
		ads.POST("/:id/like", h.ToggleAdLike)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/reasons", h.GetReportReasons)
		reports.POST("", h.CreateReport)
	}

	api.GET("/tags/suggestions", h.SuggestTags)
}

// RegisterOperational mounts /health and /metrics at the router root
func (h *Handlers) RegisterOperational(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// respondError maps domain errors onto the API error envelope
func respondError(c *gin.Context, err error, resource string) {
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, feed.ErrBatchInFlight):
		apiErr = apierrors.BatchInFlight()
	case errors.Is(err, feed.ErrSessionNotFound):
		apiErr = apierrors.NotFound("feed session")
	case errors.Is(err, feed.ErrUnknownTab):
		apiErr = apierrors.ValidationError("tab", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		apiErr = apierrors.NotFound(resource)
	case errors.Is(err, repository.ErrInvalidInput):
		apiErr = apierrors.BadRequest("invalid " + resource)
	case errors.Is(err, social.ErrSelfFollow):
		apiErr = apierrors.BadRequest(err.Error())
	case errors.Is(err, social.ErrUnknownAudience):
		apiErr = apierrors.ValidationError("preferences", err.Error())
	case errors.Is(err, social.ErrEmptyComment), errors.Is(err, social.ErrCommentTooLong):
		apiErr = apierrors.ValidationError("body", err.Error())
	case errors.Is(err, social.ErrParentNotFound):
		apiErr = apierrors.ValidationError("parent_id", err.Error())
	case errors.Is(err, social.ErrUnknownReportReason):
		apiErr = apierrors.ValidationError("reason", err.Error())
	case errors.Is(err, social.ErrReportNoteTooLong):
		apiErr = apierrors.ValidationError("note", err.Error())
	case errors.Is(err, feed.ErrSessionTooLarge):
		apiErr = apierrors.ValidationError("session", err.Error())
	default:
		util.RespondInternalError(c, "failed to load "+resource, err)
		return
	}
	util.RespondWithAPIError(c, apiErr)
}
