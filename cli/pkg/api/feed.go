package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/zfogg/clipfeed/cli/pkg/client"
	"github.com/zfogg/clipfeed/cli/pkg/logger"
)

// CreateSession opens a paging session for a tab
func CreateSession(req CreateSessionRequest) (*Session, error) {
	logger.Debug("Creating feed session", "tab", req.Tab, "tag", req.Tag)

	var response sessionResponse
	resp, err := client.GetClient().
		R().
		SetBody(req).
		SetResult(&response).
		Post("/api/v1/feed/sessions")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &response.Session, nil
}

// NextBatch fetches the next batch of a session. A non-empty tab that differs
// from the session's resets it on the server.
func NextBatch(sessionID, tab, tag string, limit int) (*Page, error) {
	logger.Debug("Fetching next batch", "session", sessionID, "tab", tab)

	params := map[string]string{}
	if tab != "" {
		params["tab"] = tab
	}
	if tag != "" {
		params["tag"] = tag
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var page Page
	resp, err := client.GetClient().
		R().
		SetQueryParams(params).
		SetResult(&page).
		Get(fmt.Sprintf("/api/v1/feed/sessions/%s/next", url.PathEscape(sessionID)))
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &page, nil
}

// DeleteSession discards a session
func DeleteSession(sessionID string) error {
	logger.Debug("Deleting feed session", "session", sessionID)

	resp, err := client.GetClient().
		R().
		Delete(fmt.Sprintf("/api/v1/feed/sessions/%s", url.PathEscape(sessionID)))
	return CheckResponse(resp, err)
}

// GetMedia fetches one item
func GetMedia(id int64) (*Media, error) {
	var media Media
	resp, err := client.GetClient().
		R().
		SetResult(&media).
		Get(fmt.Sprintf("/api/v1/media/%d", id))
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &media, nil
}

// SuggestTags completes a tag prefix
func SuggestTags(prefix string, limit int) ([]TagSuggestion, error) {
	var response tagsResponse
	resp, err := client.GetClient().
		R().
		SetQueryParams(map[string]string{
			"q":     prefix,
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&response).
		Get("/api/v1/tags/suggestions")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return response.Tags, nil
}
