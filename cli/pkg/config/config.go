package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

var configDir string
var configFilePath string

// Keys that `clipfeed config set` accepts
var settableKeys = map[string]bool{
	"api.base_url":     true,
	"api.timeout":      true,
	"auth.token":       true,
	"auth.user_id":     true,
	"feed.limit":       true,
	"feed.preferences": true,
	"output.format":    true,
	"log.level":        true,
	"log.file":         true,
}

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\clipfeed
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "clipfeed"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/clipfeed
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "clipfeed"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "clipfeed", "config.toml")}
	}
	return []string{
		"/etc/clipfeed/config.toml",
		"/usr/local/etc/clipfeed/config.toml",
	}
}

// Init initializes the configuration
func Init(configPath string) error {
	viper.Reset()

	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	viper.SetConfigType("toml")
	setDefaults()

	// CLIPFEED_API_BASE_URL and friends override both files
	viper.SetEnvPrefix("clipfeed")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// System config first, user config overrides it
	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.MergeInConfig()
			break
		}
	}

	viper.SetConfigFile(configFilePath)
	if _, err := os.Stat(configFilePath); err == nil {
		if err := viper.MergeInConfig(); err != nil {
			return fmt.Errorf("failed to read %s: %w", configFilePath, err)
		}
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8787")
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("auth.token", "")
	viper.SetDefault("auth.user_id", "")
	viper.SetDefault("feed.limit", 10)
	viper.SetDefault("feed.preferences", "")
	viper.SetDefault("output.format", "text")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "clipfeed-cli.log"))
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	if key == "log.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// IsSettable reports whether key may be written with Set
func IsSettable(key string) bool {
	return settableKeys[key]
}

// Set stores a value and writes the user config file
func Set(key string, value interface{}) error {
	if !IsSettable(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

// Override sets a value for this process only
func Override(key string, value interface{}) {
	viper.Set(key, value)
}

// Keys returns every known key in sorted order
func Keys() []string {
	keys := viper.AllKeys()
	sort.Strings(keys)
	return keys
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFile returns the user config file path
func GetConfigFile() string {
	return configFilePath
}
