package feed

import (
	"context"

	"github.com/zfogg/clipfeed/internal/logger"
	"go.uber.org/zap"
)

// Viewer is either an AnonymousViewer or an IdentifiedViewer.
type Viewer interface {
	audiences() []string
	isViewer()
}

// AnonymousViewer has no identity; only the trending path applies.
type AnonymousViewer struct {
	Audiences []string
}

// IdentifiedViewer carries the personalization signals of a profile.
type IdentifiedViewer struct {
	ID        string
	Audiences []string
	RecTags   []string
	Follows   []string
}

func (v AnonymousViewer) audiences() []string  { return NormalizeAudiences(v.Audiences) }
func (v IdentifiedViewer) audiences() []string { return NormalizeAudiences(v.Audiences) }
func (AnonymousViewer) isViewer()              {}
func (IdentifiedViewer) isViewer()             {}

// Personalizable reports whether the viewer has any recommendation tags.
func (v IdentifiedViewer) Personalizable() bool {
	return len(v.RecTags) > 0
}

// ViewerID returns the profile ID of v, or "" for anonymous viewers.
func ViewerID(v Viewer) string {
	if iv, ok := v.(IdentifiedViewer); ok {
		return iv.ID
	}
	return ""
}

// ResolveViewer loads the personalization signals for id. Lookup failures
// degrade the viewer instead of failing the request: without rec tags the
// trending path is used, without follows the followee source is skipped.
// When audiences is empty the profile's saved preferences apply.
func ResolveViewer(ctx context.Context, src ViewerSource, id string, audiences []string) Viewer {
	if id == "" {
		return AnonymousViewer{Audiences: NormalizeAudiences(audiences)}
	}

	v := IdentifiedViewer{ID: id}

	if len(audiences) == 0 {
		prefs, err := src.Preferences(ctx, id)
		if err != nil {
			logger.Log.Warn("Failed to load audience preferences",
				logger.WithViewerID(id), zap.Error(err))
		}
		audiences = prefs
	}
	v.Audiences = NormalizeAudiences(audiences)

	tags, err := src.RecTags(ctx, id)
	if err != nil {
		logger.Log.Warn("Failed to load recommendation tags",
			logger.WithViewerID(id), zap.Error(err))
	}
	v.RecTags = tags

	follows, err := src.Followees(ctx, id)
	if err != nil {
		logger.Log.Warn("Failed to load followees",
			logger.WithViewerID(id), zap.Error(err))
	}
	v.Follows = follows

	return v
}
