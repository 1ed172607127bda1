package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/zfogg/clipfeed/cli/pkg/api"
	"github.com/zfogg/clipfeed/cli/pkg/output"
	"github.com/zfogg/clipfeed/cli/pkg/state"
)

func renderPage(page *api.Page, st *state.FeedState) error {
	switch output.GetOutputFormat() {
	case output.FormatJSON:
		return output.PrintJSON(page)
	case output.FormatTable:
		output.PrintTable(
			[]string{"#", "ID", "TYPE", "OWNER", "TITLE", "VIEWS", "LIKES", "TAGS"},
			pageRows(page, output.TerminalWidth()/3),
		)
	default:
		renderText(page)
	}

	footer := fmt.Sprintf("%s batch %d via %s", feedLabel(st), st.Batches, page.Path)
	if !page.HasMore {
		footer += ", end of feed"
	}
	output.PrintInfo(footer)
	return nil
}

func feedLabel(st *state.FeedState) string {
	if st.Tab == "tag" {
		return "#" + st.Tag
	}
	return st.Tab
}

func pageRows(page *api.Page, titleWidth int) [][]string {
	rows := make([][]string, 0, len(page.Items))
	for i, item := range page.Items {
		pos := strconv.Itoa(i + 1)
		if item.Sponsored {
			pos = "AD"
		}
		rows = append(rows, []string{
			pos,
			strconv.FormatInt(item.ID, 10),
			item.MediaType,
			"@" + item.Owner.Username,
			output.Truncate(item.Title, titleWidth),
			strconv.FormatInt(item.Views, 10),
			strconv.FormatInt(item.Likes, 10),
			strings.Join(item.Tags, ","),
		})
	}
	return rows
}

func renderText(page *api.Page) {
	w := output.Writer()
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "Nothing new here. Try `clipfeed feed reset`.")
		return
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	sponsored := color.New(color.FgYellow, color.Bold)
	for _, item := range page.Items {
		if item.Sponsored {
			sponsored.Fprint(w, "[sponsored] ")
		}
		bold.Fprintf(w, "%s", item.Title)
		fmt.Fprintf(w, "  @%s", item.Owner.Username)
		if item.Owner.Verified {
			fmt.Fprint(w, " ✓")
		}
		fmt.Fprintln(w)
		dim.Fprintf(w, "  #%d %s  %d views  %d likes", item.ID, item.MediaType, item.Views, item.Likes)
		if len(item.Tags) > 0 {
			dim.Fprintf(w, "  %s", strings.Join(item.Tags, ", "))
		}
		fmt.Fprintln(w)
		if item.Sponsored && item.LandingURL != "" {
			fmt.Fprintf(w, "  %s\n", item.LandingURL)
		} else if item.URL != "" {
			fmt.Fprintf(w, "  %s\n", item.URL)
		}
	}
}
