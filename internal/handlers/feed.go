package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/zfogg/clipfeed/internal/errors"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"github.com/zfogg/clipfeed/internal/util"
	"go.uber.org/zap"
)

type createSessionRequest struct {
	Tab   string `json:"tab"`
	Tag   string `json:"tag"`
	Limit int    `json:"limit"`
}

// FeedPageResponse is one page plus the session it advanced
type FeedPageResponse struct {
	SessionID string `json:"session_id"`
	feed.Page
}

type statelessBatchRequest struct {
	Session *feed.Session `json:"session"`
}

type statelessBatchResponse struct {
	feed.Page
	Session *feed.Session `json:"session"`
}

// CreateFeedSession opens a feed session for a tab
// POST /api/v1/feed/sessions
func (h *Handlers) CreateFeedSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondBadRequest(c, "invalid request body")
			return
		}
	}

	s, err := newSession(req.Tab, req.Tag, req.Limit)
	if err != nil {
		respondError(c, err, "feed session")
		return
	}

	if err := h.k.Sessions().Create(c.Request.Context(), s); err != nil {
		util.RespondInternalError(c, "failed to create feed session", err)
		return
	}

	logger.Log.Debug("Feed session created",
		logger.WithSessionID(s.ID),
		logger.WithViewerID(util.GetViewerID(c)),
		zap.String("tab", string(s.Tab)),
	)
	c.JSON(http.StatusCreated, gin.H{"session": s})
}

// NextFeedBatch serves the next page of a session. A tab or tag query that
// differs from the session's resets it first.
// GET /api/v1/feed/sessions/:id/next
func (h *Handlers) NextFeedBatch(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	release, err := h.k.Sessions().Acquire(ctx, id)
	if err != nil {
		respondError(c, err, "feed session")
		return
	}
	defer release()

	s, err := h.k.Sessions().Get(ctx, id)
	if err != nil {
		respondError(c, err, "feed session")
		return
	}

	if tab, changed, err := tabChange(s, c.Query("tab"), c.Query("tag")); err != nil {
		respondError(c, err, "feed session")
		return
	} else if changed {
		s.Reset(tab, tagSlug(c.Query("tag")))
	}
	if n := util.ParseInt(c.Query("limit"), 0); n > 0 {
		s.Limit = n
	}

	page, ok := h.next(c, s)
	if !ok {
		return
	}

	if err := h.k.Sessions().Save(ctx, s); err != nil {
		// The page is still served; the next batch may repeat items.
		logger.Log.Warn("Failed to save feed session",
			logger.WithSessionID(s.ID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, FeedPageResponse{SessionID: s.ID, Page: page})
}

// DeleteFeedSession discards a session. A session with a batch in flight
// answers 409 so the batch's save cannot bring it back.
// DELETE /api/v1/feed/sessions/:id
func (h *Handlers) DeleteFeedSession(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	release, err := h.k.Sessions().Acquire(ctx, id)
	if err != nil {
		respondError(c, err, "feed session")
		return
	}
	defer release()

	if err := h.k.Sessions().Delete(ctx, id); err != nil {
		util.RespondInternalError(c, "failed to delete feed session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StatelessFeedBatch takes the session state in the body and returns it
// advanced together with the page. Nothing is stored server side.
// POST /api/v1/feed/batch
func (h *Handlers) StatelessFeedBatch(c *gin.Context) {
	var req statelessBatchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondBadRequest(c, "invalid request body")
			return
		}
	}

	s := req.Session
	if s == nil {
		var err error
		if s, err = newSession(c.Query("tab"), c.Query("tag"), 0); err != nil {
			respondError(c, err, "feed session")
			return
		}
	}
	if s.ID == "" {
		s.ID = feed.NewSession(s.Tab, s.TagSlug).ID
	}
	if s.ExcludeIDs == nil {
		s.ExcludeIDs = []int64{}
	}
	if s.SeenAdIDs == nil {
		s.SeenAdIDs = []int64{}
	}
	if err := h.k.Assembler().Policy().CheckClientSession(s); err != nil {
		util.RespondWithAPIError(c, apierrors.ValidationError("session", err.Error()))
		return
	}

	page, ok := h.next(c, s)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, statelessBatchResponse{Page: page, Session: s})
}

// next resolves the viewer and runs the loader. It writes the error
// response itself and reports whether a page was produced.
func (h *Handlers) next(c *gin.Context, s *feed.Session) (feed.Page, bool) {
	ctx := c.Request.Context()
	viewerID := util.GetViewerID(c)
	viewer := feed.ResolveViewer(ctx, h.k.Profiles(), viewerID, util.GetAudiences(c))

	page, err := h.k.Loader().Next(ctx, viewer, s)
	if err != nil {
		metrics.Get().FeedErrors.WithLabelValues(string(s.Tab)).Inc()
		logger.Log.Error("Feed batch failed",
			logger.WithSessionID(s.ID),
			logger.WithViewerID(viewerID),
			zap.String("tab", string(s.Tab)),
			zap.Error(err),
		)
		c.Error(err)
		util.RespondWithAPIError(c, apierrors.FeedUnavailable())
		return feed.Page{}, false
	}
	return page, true
}

func newSession(tabName, tag string, limit int) (*feed.Session, error) {
	tab, err := feed.ParseTab(tabName)
	if err != nil {
		return nil, err
	}
	s := feed.NewSession(tab, tagSlug(tag))
	s.Limit = limit
	if err := s.Validate(); err != nil {
		return nil, apierrors.ValidationError("tag", err.Error())
	}
	return s, nil
}

// tabChange reports whether the requested tab or tag differs from the session's
func tabChange(s *feed.Session, tabName, tag string) (feed.Tab, bool, error) {
	if tabName == "" && tag == "" {
		return s.Tab, false, nil
	}
	tab := s.Tab
	if tabName != "" {
		t, err := feed.ParseTab(tabName)
		if err != nil {
			return "", false, err
		}
		tab = t
	}
	if tab == feed.TabTag && tagSlug(tag) == "" {
		return "", false, apierrors.ValidationError("tag", "tag feed requires a tag")
	}
	return tab, tab != s.Tab || (tab == feed.TabTag && tagSlug(tag) != s.TagSlug), nil
}

// tagSlug accepts either a slug or a label
func tagSlug(tag string) string {
	return feed.LabelToSlug(strings.TrimSpace(tag))
}
