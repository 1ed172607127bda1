package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/clipfeed/internal/auth"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/util"
	"go.uber.org/zap"
)

const (
	// AudienceHeader carries the viewer's audience tags, as a JSON array or a comma list
	AudienceHeader = "X-Audience"
	// PreferencesCookie is the web client's stored audience tags
	PreferencesCookie = "preferences"
	// UserIDHeader is honored only when the gateway in front of the service is trusted
	UserIDHeader = "X-User-ID"
)

// ViewerMiddleware identifies the viewer and the audiences they asked for.
// Requests without credentials continue as anonymous; a bad bearer token
// is rejected.
func ViewerMiddleware(tokens *auth.Service, trustUserHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokens == nil || !tokens.Enabled() {
				util.RespondUnauthorized(c, "unsupported authorization")
				return
			}
			id, err := tokens.ValidateToken(strings.TrimSpace(raw))
			if err != nil {
				logger.Log.Debug("Rejected bearer token", zap.Error(err))
				util.RespondUnauthorized(c, "invalid token")
				return
			}
			c.Set(util.ViewerIDKey, id)
		} else if trustUserHeader {
			if id := strings.TrimSpace(c.GetHeader(UserIDHeader)); id != "" {
				c.Set(util.ViewerIDKey, id)
			}
		}

		if audiences := requestedAudiences(c); audiences != nil {
			c.Set(util.AudiencesKey, audiences)
		}

		c.Next()
	}
}

// requestedAudiences returns nil when the request carries no preference,
// leaving the stored profile preferences in charge.
func requestedAudiences(c *gin.Context) []string {
	if raw := c.GetHeader(AudienceHeader); strings.TrimSpace(raw) != "" {
		return feed.ParseAudiences(raw)
	}
	cookie, err := c.Cookie(PreferencesCookie)
	if err != nil || cookie == "" {
		return nil
	}
	if decoded, err := url.QueryUnescape(cookie); err == nil {
		cookie = decoded
	}
	return feed.ParseAudiences(cookie)
}
