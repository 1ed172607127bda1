package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/util"
)

const (
	defaultTagSuggestions = 10
	maxTagSuggestions     = 25
)

// TagSuggestion pairs a tag label with its feed slug
type TagSuggestion struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// SuggestTags completes a tag prefix
// GET /api/v1/tags/suggestions?q=
func (h *Handlers) SuggestTags(c *gin.Context) {
	limit := util.ClampInt(util.ParseInt(c.Query("limit"), defaultTagSuggestions), 1, maxTagSuggestions)

	labels, err := h.k.Tags().Suggest(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err, "tag suggestions")
		return
	}

	tags := make([]TagSuggestion, 0, len(labels))
	for _, l := range labels {
		tags = append(tags, TagSuggestion{Label: l, Slug: feed.LabelToSlug(l)})
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
