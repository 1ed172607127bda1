package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/clipfeed/cli/pkg/api"
	"github.com/zfogg/clipfeed/cli/pkg/config"
	"github.com/zfogg/clipfeed/cli/pkg/logger"
	"github.com/zfogg/clipfeed/cli/pkg/output"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change audience preferences",
	Long: `Audience preferences decide which clips the feeds show you:
straight, gay, bisexual, trans, lesbian, animated.`,
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show your audience preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := api.GetPreferences()
		if err != nil {
			return fmt.Errorf("failed to fetch preferences: %w", err)
		}
		return printPrefs(prefs)
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <audience>[,<audience>...]",
	Short: "Replace your audience preferences",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var wanted []string
		for _, arg := range args {
			for _, p := range strings.Split(arg, ",") {
				if p = strings.TrimSpace(p); p != "" {
					wanted = append(wanted, p)
				}
			}
		}

		prefs, err := api.SetPreferences(wanted)
		if err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.Field == "preferences" {
				return fmt.Errorf("%s", apiErr.Message)
			}
			return fmt.Errorf("failed to update preferences: %w", err)
		}

		// Anonymous viewers only get a cookie, so keep a copy for X-Audience
		if err := config.Set("feed.preferences", strings.Join(prefs, ",")); err != nil {
			logger.Warn("Failed to store preferences locally", "error", err)
		}
		return printPrefs(prefs)
	},
}

func printPrefs(prefs []string) error {
	if output.GetOutputFormat() == output.FormatJSON {
		return output.PrintJSON(map[string][]string{"preferences": prefs})
	}
	return output.PrintRecord("Preferences", map[string]interface{}{
		"preferences": strings.Join(prefs, ", "),
	})
}

func init() {
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
}
