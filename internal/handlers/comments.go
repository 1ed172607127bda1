package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/util"
)

type createCommentRequest struct {
	Body     string `json:"body"`
	ParentID string `json:"parent_id"`
}

// GetComments returns the comment threads of a media item
// GET /api/v1/media/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid media id")
		return
	}

	threads, err := h.k.Social().Comments(c.Request.Context(), util.GetViewerID(c), id)
	if err != nil {
		respondError(c, err, "media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": threads})
}

// CreateComment posts a comment, or a reply when parent_id is set, and
// returns the updated threads
// POST /api/v1/media/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	viewerID, ok := util.RequireViewerID(c)
	if !ok {
		return
	}
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid media id")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	threads, err := h.k.Social().AddComment(c.Request.Context(), viewerID, id, req.Body, req.ParentID)
	if err != nil {
		respondError(c, err, "media")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comments": threads})
}

// ToggleCommentLike likes or unlikes a comment
// POST /api/v1/comments/:id/like
func (h *Handlers) ToggleCommentLike(c *gin.Context) {
	viewerID, ok := util.RequireViewerID(c)
	if !ok {
		return
	}

	result, err := h.k.Social().ToggleCommentLike(c.Request.Context(), viewerID, c.Param("id"))
	if err != nil {
		respondError(c, err, "comment")
		return
	}
	c.JSON(http.StatusOK, result)
}
