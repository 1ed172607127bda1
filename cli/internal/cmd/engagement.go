package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/zfogg/clipfeed/cli/pkg/api"
	"github.com/zfogg/clipfeed/cli/pkg/output"
)

var (
	commentAdd     string
	commentReplyTo string

	likedType  string
	likedPage  int
	likedLimit int

	reportNote string
)

var commentsCmd = &cobra.Command{
	Use:   "comments <media-id>",
	Short: "Read or post comments on a clip",
	Long: `Show a clip's comment threads. With --add, post a comment first;
add --reply-to <comment-id> to reply inside a thread.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseMediaID(args[0])
		if err != nil {
			return err
		}

		var threads []*api.Comment
		if commentAdd != "" {
			threads, err = api.PostComment(id, commentAdd, commentReplyTo)
			if api.IsUnauthorized(err) {
				return fmt.Errorf("commenting needs a signed-in viewer; set auth.token with `clipfeed config set`")
			}
		} else {
			threads, err = api.GetComments(id)
		}
		if err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}

		if output.GetOutputFormat() == output.FormatJSON {
			return output.PrintJSON(threads)
		}
		if len(threads) == 0 {
			output.PrintInfo("No comments on clip %d yet", id)
			return nil
		}
		renderComments(output.Writer(), threads, 0)
		return nil
	},
}

var likedCmd = &cobra.Command{
	Use:   "liked",
	Short: "List clips you liked",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := api.GetLiked(likedType, likedPage, likedLimit)
		if err != nil {
			if api.IsUnauthorized(err) {
				return fmt.Errorf("your likes need a signed-in viewer; set auth.token with `clipfeed config set`")
			}
			return fmt.Errorf("failed to load liked clips: %w", err)
		}

		switch output.GetOutputFormat() {
		case output.FormatJSON:
			return output.PrintJSON(page)
		case output.FormatTable:
			output.PrintTable(
				[]string{"#", "ID", "TYPE", "OWNER", "TITLE", "VIEWS", "LIKES", "TAGS"},
				pageRows(&api.Page{Items: page.Items}, output.TerminalWidth()/3),
			)
		default:
			if len(page.Items) == 0 {
				output.PrintInfo("No liked %ss on page %d", page.Type, page.Page)
				return nil
			}
			renderText(&api.Page{Items: page.Items})
		}
		if page.HasMore {
			output.PrintInfo("More on page %d", page.Page+1)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <media-id> [reason]",
	Short: "Report a clip",
	Long:  "Report a clip for review. Run without a reason to list the accepted reasons.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseMediaID(args[0])
		if err != nil {
			return err
		}

		if len(args) == 1 {
			reasons, err := api.GetReportReasons()
			if err != nil {
				return fmt.Errorf("failed to load report reasons: %w", err)
			}
			rows := make([][]string, 0, len(reasons))
			for _, r := range reasons {
				rows = append(rows, []string{r.Reason, r.Label})
			}
			output.PrintTable([]string{"REASON", "DESCRIPTION"}, rows)
			return nil
		}

		reportID, err := api.SubmitReport(id, args[1], reportNote)
		if err != nil {
			return fmt.Errorf("failed to report clip: %w", err)
		}
		output.PrintSuccess("Reported clip %d (report #%s)", id, strconv.FormatInt(reportID, 10))
		return nil
	},
}

func renderComments(w io.Writer, threads []*api.Comment, depth int) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	indent := strings.Repeat("  ", depth)
	for _, c := range threads {
		fmt.Fprint(w, indent)
		bold.Fprintf(w, "@%s", c.Username)
		dim.Fprintf(w, "  %s  %d likes", c.ID, c.Likes)
		if c.LikedByMe {
			dim.Fprint(w, " (liked)")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s  %s\n", indent, c.Body)
		renderComments(w, c.Replies, depth+1)
	}
}

func init() {
	commentsCmd.Flags().StringVar(&commentAdd, "add", "", "Post this comment before listing")
	commentsCmd.Flags().StringVar(&commentReplyTo, "reply-to", "", "Comment ID to reply to (with --add)")

	likedCmd.Flags().StringVar(&likedType, "type", "video", "Media type: video or image")
	likedCmd.Flags().IntVar(&likedPage, "page", 1, "Page number")
	likedCmd.Flags().IntVar(&likedLimit, "limit", 9, "Clips per page (max 50)")

	reportCmd.Flags().StringVar(&reportNote, "note", "", "Optional details for the reviewers")
}
