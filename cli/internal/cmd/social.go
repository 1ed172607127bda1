package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zfogg/clipfeed/cli/pkg/api"
	"github.com/zfogg/clipfeed/cli/pkg/output"
)

var followCounts bool

var likeCmd = &cobra.Command{
	Use:   "like <media-id>",
	Short: "Like or unlike a clip",
	Long:  "Toggle your like on a clip. Liking a clip adds its tags to your For You recommendations.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseMediaID(args[0])
		if err != nil {
			return err
		}

		result, err := api.ToggleLike(id)
		if err != nil {
			if api.IsUnauthorized(err) {
				return fmt.Errorf("liking needs a signed-in viewer; set auth.token with `clipfeed config set`")
			}
			return fmt.Errorf("failed to toggle like: %w", err)
		}

		if output.GetOutputFormat() != output.FormatText {
			return output.PrintRecord("", map[string]interface{}{
				"liked":          result.Liked,
				"likes":          result.Likes,
				"rec_tags_added": result.RecTagsAdded,
			})
		}
		if result.Liked {
			output.PrintSuccess("Liked clip %d (%d likes)", id, result.Likes)
		} else {
			output.PrintSuccess("Unliked clip %d (%d likes)", id, result.Likes)
		}
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Follow or unfollow a creator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := args[0]

		if followCounts {
			counts, err := api.GetFollowCounts(userID)
			if err != nil {
				return fmt.Errorf("failed to fetch follow counts: %w", err)
			}
			return output.PrintRecord(userID, map[string]interface{}{
				"followers": counts.Followers,
				"following": counts.Following,
			})
		}

		result, err := api.ToggleFollow(userID)
		if err != nil {
			if api.IsUnauthorized(err) {
				return fmt.Errorf("following needs a signed-in viewer; set auth.token with `clipfeed config set`")
			}
			return fmt.Errorf("failed to toggle follow: %w", err)
		}

		if output.GetOutputFormat() != output.FormatText {
			return output.PrintRecord("", map[string]interface{}{
				"following": result.Following,
				"followers": result.Followers,
			})
		}
		if result.Following {
			output.PrintSuccess("Following %s (%d followers)", userID, result.Followers)
		} else {
			output.PrintSuccess("Unfollowed %s (%d followers)", userID, result.Followers)
		}
		return nil
	},
}

func parseMediaID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid media id %q", raw)
	}
	return id, nil
}

func init() {
	followCmd.Flags().BoolVar(&followCounts, "counts", false, "Show follower counts instead of toggling")
}
