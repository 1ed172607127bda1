package client

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/clipfeed/cli/pkg/config"
	"github.com/zfogg/clipfeed/cli/pkg/logger"
)

const userAgent = "clipfeed-cli/0.1.0"

var httpClient *resty.Client

// Init builds the HTTP client from the current configuration
func Init() {
	httpClient = resty.New()

	httpClient.SetBaseURL(strings.TrimRight(config.GetString("api.base_url"), "/"))
	httpClient.SetTimeout(time.Duration(config.GetInt("api.timeout")) * time.Second)
	httpClient.SetHeader("User-Agent", userAgent)
	httpClient.SetHeader("Accept", "application/json")

	if token := config.GetString("auth.token"); token != "" {
		httpClient.SetAuthToken(token)
	} else if userID := config.GetString("auth.user_id"); userID != "" {
		// Only honored by servers started with TRUST_USER_HEADER
		httpClient.SetHeader("X-User-ID", userID)
	}
	if prefs := config.GetString("feed.preferences"); prefs != "" {
		httpClient.SetHeader("X-Audience", prefs)
	}

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"status", resp.StatusCode(),
			"request_id", resp.Header().Get("X-Request-ID"),
			"elapsed", resp.Time(),
		)
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// Reset drops the client so the next call picks up config changes
func Reset() {
	httpClient = nil
}
