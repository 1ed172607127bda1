package api

import (
	"fmt"
	"net/url"

	"github.com/zfogg/clipfeed/cli/pkg/client"
	"github.com/zfogg/clipfeed/cli/pkg/logger"
)

// ToggleLike likes or unlikes a media item
func ToggleLike(mediaID int64) (*LikeResult, error) {
	logger.Debug("Toggling like", "media", mediaID)

	var result LikeResult
	resp, err := client.GetClient().
		R().
		SetResult(&result).
		Post(fmt.Sprintf("/api/v1/media/%d/like", mediaID))
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

// ToggleFollow follows or unfollows a user
func ToggleFollow(userID string) (*FollowResult, error) {
	logger.Debug("Toggling follow", "user", userID)

	var result FollowResult
	resp, err := client.GetClient().
		R().
		SetResult(&result).
		Post(fmt.Sprintf("/api/v1/users/%s/follow", url.PathEscape(userID)))
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFollowCounts returns a user's follower totals
func GetFollowCounts(userID string) (*FollowCounts, error) {
	var counts FollowCounts
	resp, err := client.GetClient().
		R().
		SetResult(&counts).
		Get(fmt.Sprintf("/api/v1/users/%s/follow-counts", url.PathEscape(userID)))
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &counts, nil
}

// GetPreferences returns the viewer's audience preferences
func GetPreferences() ([]string, error) {
	var payload preferencesPayload
	resp, err := client.GetClient().
		R().
		SetResult(&payload).
		Get("/api/v1/me/preferences")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return payload.Preferences, nil
}

// SetPreferences replaces the viewer's audience preferences and returns the
// normalized list the server stored
func SetPreferences(prefs []string) ([]string, error) {
	logger.Debug("Updating preferences", "preferences", prefs)

	var payload preferencesPayload
	resp, err := client.GetClient().
		R().
		SetBody(preferencesPayload{Preferences: prefs}).
		SetResult(&payload).
		Put("/api/v1/me/preferences")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return payload.Preferences, nil
}
