package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zfogg/clipfeed/cli/pkg/client"
	"github.com/zfogg/clipfeed/cli/pkg/config"
	"github.com/zfogg/clipfeed/cli/pkg/logger"
	"github.com/zfogg/clipfeed/cli/pkg/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	asUser     string
)

var rootCmd = &cobra.Command{
	Use:   "clipfeed",
	Short: "clipfeed CLI - browse and curate the clip feed",
	Long: `clipfeed is a command-line client for the clipfeed API. Page through
the For You, Trending, Following, New and tag feeds, like clips, follow
creators and manage your audience preferences from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return fmt.Errorf("invalid output format %q (want text, json or table)", outputFmt)
			}
			config.Override("output.format", outputFmt)
		}
		if asUser != "" {
			config.Override("auth.token", "")
			config.Override("auth.user_id", asUser)
		}

		logger.Init(verbose)
		client.Reset()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/clipfeed/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&asUser, "as-user", "", "Send requests as this user ID (server must trust X-User-ID)")

	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(likedCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
