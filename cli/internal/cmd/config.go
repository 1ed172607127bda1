package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zfogg/clipfeed/cli/pkg/config"
	"github.com/zfogg/clipfeed/cli/pkg/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		record := map[string]interface{}{}
		for _, key := range config.Keys() {
			value := config.GetString(key)
			if key == "auth.token" && value != "" {
				value = maskToken(value)
			}
			record[key] = value
		}
		return output.PrintRecord(config.GetConfigFile(), record)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting in the user config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]
		if !config.IsSettable(key) {
			return fmt.Errorf("unknown config key %q", key)
		}

		var value interface{} = raw
		switch key {
		case "api.timeout", "feed.limit":
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return fmt.Errorf("%s must be a positive integer", key)
			}
			value = n
		case "output.format":
			if !output.ValidateOutputFormat(raw) {
				return fmt.Errorf("invalid output format %q (want text, json or table)", raw)
			}
		}

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		output.PrintSuccess("Set %s", key)
		return nil
	},
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
