package util

import (
	"github.com/gin-gonic/gin"
)

// Context keys set by the viewer middleware.
const (
	ViewerIDKey  = "viewer_id"
	AudiencesKey = "audiences"
)

// GetViewerID returns the identified viewer, or "" for anonymous requests.
func GetViewerID(c *gin.Context) string {
	if v, ok := c.Get(ViewerIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RequireViewerID extracts the viewer ID from the Gin context.
// If the request is anonymous it responds with 401 Unauthorized.
func RequireViewerID(c *gin.Context) (string, bool) {
	id := GetViewerID(c)
	if id == "" {
		RespondUnauthorized(c)
		return "", false
	}
	return id, true
}

// GetAudiences returns the audience preferences the middleware attached, if any.
func GetAudiences(c *gin.Context) []string {
	if v, ok := c.Get(AudiencesKey); ok {
		if a, ok := v.([]string); ok {
			return a
		}
	}
	return nil
}
