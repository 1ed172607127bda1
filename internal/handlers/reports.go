package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/social"
	"github.com/zfogg/clipfeed/internal/util"
)

type createReportRequest struct {
	MediaID int64  `json:"media_id"`
	Reason  string `json:"reason"`
	Note    string `json:"note"`
}

// GetReportReasons lists the reasons a report can give
// GET /api/v1/reports/reasons
func (h *Handlers) GetReportReasons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reasons": social.ReportReasons})
}

// CreateReport files a content report. Anonymous viewers may report.
// POST /api/v1/reports
func (h *Handlers) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}
	if req.MediaID <= 0 {
		util.RespondValidationError(c, "media_id", "media_id is required")
		return
	}

	report, err := h.k.Social().SubmitReport(c.Request.Context(), util.GetViewerID(c), req.MediaID, req.Reason, req.Note)
	if err != nil {
		respondError(c, err, "media")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "report_id": report.ID})
}
