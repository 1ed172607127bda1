// Package social implements the engagement actions around the feed. Likes
// grow a viewer's recommendation tags, follows drive the followee candidates
// and audience preferences filter every feed. Comments, ad likes, content
// reports and profile stats live here too.
package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSelfFollow          = errors.New("cannot follow yourself")
	ErrUnknownAudience     = errors.New("unknown audience")
	ErrEmptyComment        = errors.New("comment must not be empty")
	ErrCommentTooLong      = errors.New("comment is too long")
	ErrParentNotFound      = errors.New("parent comment not found on this media")
	ErrUnknownReportReason = errors.New("unknown report reason")
	ErrReportNoteTooLong   = errors.New("report note is too long")
)

// LikeResult is the state after a like toggle
type LikeResult struct {
	Liked        bool  `json:"liked"`
	Likes        int64 `json:"likes"`
	RecTagsAdded int64 `json:"rec_tags_added"`
}

// FollowResult is the state after a follow toggle
type FollowResult struct {
	Following bool  `json:"following"`
	Followers int64 `json:"followers"`
}

// FollowCounts are a profile's edge counts
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// ProfileStats are the counts shown on a profile page
type ProfileStats struct {
	FollowCounts
	// Views sums the view counts of the profile's media
	Views int64 `json:"views"`
}

// Service applies engagement actions
type Service struct {
	db       *gorm.DB
	profiles repository.ProfileRepository
	media    repository.MediaRepository
	comments repository.CommentRepository
}

// NewService creates a social service
func NewService(db *gorm.DB, profiles repository.ProfileRepository) *Service {
	return &Service{
		db:       db,
		profiles: profiles,
		media:    repository.NewMediaRepository(db),
		comments: repository.NewCommentRepository(db),
	}
}

// ToggleLike likes mediaID, or unlikes it when the viewer already did.
// A like copies the media's tags into the viewer's recommendation tags.
// Unliking never removes them.
func (s *Service) ToggleLike(ctx context.Context, viewerID string, mediaID int64) (LikeResult, error) {
	if viewerID == "" || mediaID <= 0 {
		return LikeResult{}, repository.ErrInvalidInput
	}

	var result LikeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var media models.Media
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Tags").
			Where("id = ?", mediaID).
			First(&media).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		del := tx.Where("media_id = ? AND user_id = ?", mediaID, viewerID).Delete(&models.MediaLike{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected > 0 {
			if err := tx.Model(&models.Media{}).
				Where("id = ? AND like_count > 0", mediaID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error; err != nil {
				return err
			}
			result.Liked = false
			result.Likes = max(media.LikeCount-1, 0)
			return nil
		}

		if err := tx.Create(&models.MediaLike{MediaID: mediaID, UserID: viewerID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Media{}).
			Where("id = ?", mediaID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
			return err
		}

		added, err := repository.NewProfileRepository(tx).AddRecTags(ctx, viewerID, media.TagList())
		if err != nil {
			return fmt.Errorf("add recommendation tags: %w", err)
		}

		result.Liked = true
		result.Likes = media.LikeCount + 1
		result.RecTagsAdded = added
		return nil
	})
	if err != nil {
		return LikeResult{}, err
	}

	m := metrics.Get().App
	if result.Liked {
		m.LikesTotal.WithLabelValues("like").Inc()
		m.RecTagsAdded.Add(float64(result.RecTagsAdded))
	} else {
		m.LikesTotal.WithLabelValues("unlike").Inc()
	}

	logger.Log.Debug("Like toggled",
		logger.WithViewerID(viewerID),
		logger.WithMediaID(mediaID),
		zap.Bool("liked", result.Liked),
		zap.Int64("rec_tags_added", result.RecTagsAdded),
	)
	return result, nil
}

// ToggleFollow follows targetID, or unfollows when already following
func (s *Service) ToggleFollow(ctx context.Context, viewerID, targetID string) (FollowResult, error) {
	if viewerID == "" || targetID == "" {
		return FollowResult{}, repository.ErrInvalidInput
	}
	if viewerID == targetID {
		return FollowResult{}, ErrSelfFollow
	}
	if _, err := s.profiles.GetProfile(ctx, targetID); err != nil {
		return FollowResult{}, err
	}

	following, err := s.profiles.IsFollowing(ctx, viewerID, targetID)
	if err != nil {
		return FollowResult{}, err
	}

	action := "follow"
	if following {
		action = "unfollow"
		err = s.profiles.DeleteFollow(ctx, viewerID, targetID)
	} else {
		err = s.profiles.CreateFollow(ctx, viewerID, targetID)
	}
	if err != nil {
		return FollowResult{}, err
	}
	metrics.Get().App.FollowsTotal.WithLabelValues(action).Inc()

	followers, err := s.profiles.GetFollowerCount(ctx, targetID)
	if err != nil {
		return FollowResult{}, err
	}
	return FollowResult{Following: !following, Followers: followers}, nil
}

// FollowCounts returns the follower and following counts of profileID
func (s *Service) FollowCounts(ctx context.Context, profileID string) (FollowCounts, error) {
	followers, err := s.profiles.GetFollowerCount(ctx, profileID)
	if err != nil {
		return FollowCounts{}, err
	}
	following, err := s.profiles.GetFollowingCount(ctx, profileID)
	if err != nil {
		return FollowCounts{}, err
	}
	return FollowCounts{Followers: followers, Following: following}, nil
}

// ProfileByUsername looks a profile up by its username
func (s *Service) ProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return s.profiles.GetProfileByUsername(ctx, strings.TrimSpace(username))
}

// StatsByUsername returns the follow counts and total media views of the
// profile named username
func (s *Service) StatsByUsername(ctx context.Context, username string) (ProfileStats, error) {
	p, err := s.ProfileByUsername(ctx, username)
	if err != nil {
		return ProfileStats{}, err
	}
	counts, err := s.FollowCounts(ctx, p.ID)
	if err != nil {
		return ProfileStats{}, err
	}
	views, err := s.media.TotalViews(ctx, p.ID)
	if err != nil {
		return ProfileStats{}, err
	}
	return ProfileStats{FollowCounts: counts, Views: views}, nil
}

// Preferences returns the viewer's stored audiences, normalized
func (s *Service) Preferences(ctx context.Context, viewerID string) ([]string, error) {
	prefs, err := s.profiles.Preferences(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return feed.NormalizeAudiences(prefs), nil
}

// NormalizePreferences rejects values outside the audience enumeration and
// returns the normalized list.
func NormalizePreferences(prefs []string) ([]string, error) {
	var unknown []string
	for _, p := range prefs {
		if v := strings.ToLower(strings.TrimSpace(p)); v != "" && !feed.IsAudience(v) {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAudience, strings.Join(unknown, ", "))
	}
	return feed.NormalizeAudiences(prefs), nil
}

// UpdatePreferences validates and stores the viewer's audiences. It returns
// the normalized list that was stored.
func (s *Service) UpdatePreferences(ctx context.Context, viewerID string, prefs []string) ([]string, error) {
	normalized, err := NormalizePreferences(prefs)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetPreferences(ctx, viewerID, normalized); err != nil {
		return nil, err
	}
	metrics.Get().App.PreferenceUpdatesTotal.Inc()
	return normalized, nil
}
