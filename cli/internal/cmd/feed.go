package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/clipfeed/cli/pkg/api"
	"github.com/zfogg/clipfeed/cli/pkg/config"
	"github.com/zfogg/clipfeed/cli/pkg/logger"
	"github.com/zfogg/clipfeed/cli/pkg/output"
	"github.com/zfogg/clipfeed/cli/pkg/state"
)

const defaultTab = "for-you"

var validTabs = []string{"for-you", "trending", "following", "new", "tag"}

var (
	feedTab   string
	feedTag   string
	feedLimit int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Page through feeds",
	Long: `Fetch feed batches. The CLI remembers the current session, so every
call continues where the previous one stopped without repeating items.
Switching tab or tag starts a new session.`,
}

var feedNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Fetch the next batch of the current feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, tag := feedTab, feedTag
		if !cmd.Flags().Changed("tab") && !cmd.Flags().Changed("tag") {
			// continue the remembered feed
			if st, _ := state.Load(); st != nil && st.Tab != "" {
				tab, tag = st.Tab, st.Tag
			}
		}
		if tag != "" && !cmd.Flags().Changed("tab") {
			tab = "tag"
		}
		return runFeed(tab, tag)
	},
}

var feedTrendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Fetch the next batch of the Trending feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeed("trending", "")
	},
}

var feedTagCmd = &cobra.Command{
	Use:   "tag <slug>",
	Short: "Fetch the next batch of a tag feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeed("tag", args[0])
	},
}

var feedResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the current session and start over",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := state.Load()
		if err != nil {
			return err
		}
		if st != nil && st.SessionID != "" {
			if err := api.DeleteSession(st.SessionID); err != nil && !api.IsNotFound(err) {
				logger.Warn("Failed to delete server session", "session", st.SessionID, "error", err)
			}
		}
		if err := state.Clear(); err != nil {
			return err
		}
		output.PrintSuccess("Feed session cleared")
		return nil
	},
}

var feedShowCmd = &cobra.Command{
	Use:   "show <media-id>",
	Short: "Show a single clip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseMediaID(args[0])
		if err != nil {
			return err
		}
		m, err := api.GetMedia(id)
		if err != nil {
			return fmt.Errorf("failed to fetch media: %w", err)
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.PrintJSON(m)
		}
		return output.PrintRecord(m.Title, map[string]interface{}{
			"id":           m.ID,
			"type":         m.MediaType,
			"content_type": m.ContentType,
			"owner":        m.Owner.Username,
			"url":          m.URL,
			"views":        m.Views,
			"likes":        m.Likes,
			"liked_by_me":  m.LikedByMe,
			"tags":         strings.Join(m.Tags, ", "),
		})
	},
}

var feedTagsCmd = &cobra.Command{
	Use:   "tags <prefix>",
	Short: "Suggest tags for a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := api.SuggestTags(args[0], feedLimit)
		if err != nil {
			return fmt.Errorf("failed to suggest tags: %w", err)
		}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.PrintJSON(tags)
		}
		rows := make([][]string, 0, len(tags))
		for _, t := range tags {
			rows = append(rows, []string{t.Label, t.Slug})
		}
		output.PrintTable([]string{"LABEL", "SLUG"}, rows)
		return nil
	},
}

func isValidTab(tab string) bool {
	for _, t := range validTabs {
		if t == tab {
			return true
		}
	}
	return false
}

// runFeed fetches one batch, reusing the remembered session when it serves
// the same feed
func runFeed(tab, tag string) error {
	if tab == "" {
		tab = defaultTab
	}
	if !isValidTab(tab) {
		return fmt.Errorf("unknown tab %q (want one of %s)", tab, strings.Join(validTabs, ", "))
	}
	if tab == "tag" && tag == "" {
		return fmt.Errorf("the tag feed needs --tag")
	}
	if tab != "tag" {
		tag = ""
	}

	st, err := state.Load()
	if err != nil {
		logger.Warn("Ignoring unreadable session state", "error", err)
		st = nil
	}

	limit := config.GetInt("feed.limit")
	page, st, err := fetchBatch(st, tab, tag, limit)
	if err != nil {
		return err
	}

	st.Batches++
	st.Exhausted = !page.HasMore
	if err := state.Save(st); err != nil {
		logger.Warn("Failed to save session state", "error", err)
	}

	return renderPage(page, st)
}

func fetchBatch(st *state.FeedState, tab, tag string, limit int) (*api.Page, *state.FeedState, error) {
	if !st.Matches(tab, tag) {
		fresh, err := openSession(tab, tag, limit)
		if err != nil {
			return nil, nil, err
		}
		st = fresh
	}

	page, err := api.NextBatch(st.SessionID, "", "", limit)
	if api.IsNotFound(err) {
		// expired on the server; start over once
		logger.Info("Session expired, opening a new one", "session", st.SessionID)
		if st, err = openSession(tab, tag, limit); err != nil {
			return nil, nil, err
		}
		page, err = api.NextBatch(st.SessionID, "", "", limit)
	}
	if err != nil {
		if api.IsBatchInFlight(err) {
			return nil, nil, fmt.Errorf("another batch for this session is still loading, try again")
		}
		return nil, nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	return page, st, nil
}

func openSession(tab, tag string, limit int) (*state.FeedState, error) {
	s, err := api.CreateSession(api.CreateSessionRequest{Tab: tab, Tag: tag, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to open feed session: %w", err)
	}
	return &state.FeedState{SessionID: s.ID, Tab: tab, Tag: tag}, nil
}

func init() {
	feedNextCmd.Flags().StringVar(&feedTab, "tab", "", "Feed tab: for-you, trending, following, new, tag")
	feedNextCmd.Flags().StringVar(&feedTag, "tag", "", "Tag slug for the tag feed")
	feedTagsCmd.Flags().IntVar(&feedLimit, "limit", 10, "Number of suggestions")

	feedCmd.AddCommand(feedNextCmd)
	feedCmd.AddCommand(feedTrendingCmd)
	feedCmd.AddCommand(feedTagCmd)
	feedCmd.AddCommand(feedResetCmd)
	feedCmd.AddCommand(feedShowCmd)
	feedCmd.AddCommand(feedTagsCmd)
}
