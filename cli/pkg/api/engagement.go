package api

import (
	"fmt"
	"strconv"

	"github.com/zfogg/clipfeed/cli/pkg/client"
	"github.com/zfogg/clipfeed/cli/pkg/logger"
)

// GetComments returns a clip's comment threads
func GetComments(mediaID int64) ([]*Comment, error) {
	var payload commentsResponse
	resp, err := client.GetClient().
		R().
		SetResult(&payload).
		Get(fmt.Sprintf("/api/v1/media/%d/comments", mediaID))
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return payload.Comments, nil
}

// PostComment comments on a clip, or replies when parentID is set, and
// returns the updated threads
func PostComment(mediaID int64, body, parentID string) ([]*Comment, error) {
	logger.Debug("Posting comment", "media", mediaID, "reply_to", parentID)

	var payload commentsResponse
	resp, err := client.GetClient().
		R().
		SetBody(commentRequest{Body: body, ParentID: parentID}).
		SetResult(&payload).
		Post(fmt.Sprintf("/api/v1/media/%d/comments", mediaID))
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return payload.Comments, nil
}

// GetLiked returns one page of the clips the viewer liked
func GetLiked(mediaType string, page, limit int) (*LikedPage, error) {
	req := client.GetClient().R()
	if mediaType != "" {
		req.SetQueryParam("type", mediaType)
	}
	if page > 0 {
		req.SetQueryParam("page", strconv.Itoa(page))
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	var result LikedPage
	resp, err := req.SetResult(&result).Get("/api/v1/me/liked")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetReportReasons lists the reasons a report can give
func GetReportReasons() ([]ReportReason, error) {
	var payload struct {
		Reasons []ReportReason `json:"reasons"`
	}
	resp, err := client.GetClient().
		R().
		SetResult(&payload).
		Get("/api/v1/reports/reasons")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return payload.Reasons, nil
}

// SubmitReport reports a clip and returns the report ID
func SubmitReport(mediaID int64, reason, note string) (int64, error) {
	logger.Debug("Reporting clip", "media", mediaID, "reason", reason)

	var payload struct {
		ReportID int64 `json:"report_id"`
	}
	resp, err := client.GetClient().
		R().
		SetBody(reportRequest{MediaID: mediaID, Reason: reason, Note: note}).
		SetResult(&payload).
		Post("/api/v1/reports")
	if err := CheckResponse(resp, err); err != nil {
		return 0, err
	}
	return payload.ReportID, nil
}
