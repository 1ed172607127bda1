package social

import (
	"context"
	"errors"

	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdLikeResult is the state after an ad like toggle
type AdLikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

// ToggleAdLike likes an ad, or unlikes it when the viewer already did.
// Ad likes do not touch recommendation tags.
func (s *Service) ToggleAdLike(ctx context.Context, viewerID string, adID int64) (AdLikeResult, error) {
	if viewerID == "" || adID <= 0 {
		return AdLikeResult{}, repository.ErrInvalidInput
	}

	var result AdLikeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ad models.Ad
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", adID).
			First(&ad).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		del := tx.Where("ad_id = ? AND user_id = ?", adID, viewerID).Delete(&models.AdLike{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			result = AdLikeResult{Liked: false, Likes: max(ad.LikeCount-1, 0)}
			return tx.Model(&models.Ad{}).
				Where("id = ? AND like_count > 0", adID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
		}

		if err := tx.Create(&models.AdLike{AdID: adID, UserID: viewerID}).Error; err != nil {
			return err
		}
		result = AdLikeResult{Liked: true, Likes: ad.LikeCount + 1}
		return tx.Model(&models.Ad{}).
			Where("id = ?", adID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
	if err != nil {
		return AdLikeResult{}, err
	}

	action := "unlike"
	if result.Liked {
		action = "like"
	}
	metrics.Get().App.AdLikesTotal.WithLabelValues(action).Inc()
	logger.Log.Debug("Ad like toggled",
		logger.WithViewerID(viewerID),
		logger.WithAdID(adID),
		zap.Bool("liked", result.Liked),
	)
	return result, nil
}

// HasLikedAd reports whether the viewer likes the ad. Anonymous viewers
// never do.
func (s *Service) HasLikedAd(ctx context.Context, viewerID string, adID int64) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.AdLike{}).
		Where("ad_id = ? AND user_id = ?", adID, viewerID).
		Count(&count).Error
	return count > 0, err
}
