package repository

import (
	"context"
	"errors"
	"time"

	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/models"
	"gorm.io/gorm"
)

// AdRepository serves sponsored placements owned by active ad buyers
type AdRepository interface {
	feed.SponsorStore

	ActiveBuyerIDs(ctx context.Context) ([]string, error)
	// Banner returns a random banner ad, or nil when none is running
	Banner(ctx context.Context) (*feed.Item, error)
	// Sidebar returns up to limit random ads flagged for display
	Sidebar(ctx context.Context, limit int) ([]feed.Item, error)
	RecordAdView(ctx context.Context, ev feed.ViewEvent) error
}

type adRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAdRepository creates a new ad repository
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *adRepository) activeBuyers() *gorm.DB {
	return r.db.Model(&models.AdBuyer{}).
		Select("user_id").
		Where("expires_at > ?", r.now())
}

func (r *adRepository) running(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Ad{}).
		Preload("Owner").
		Where("ads.owner_id IN (?)", r.activeBuyers())
}

// ActiveBuyerIDs lists buyers whose purchase has not expired
func (r *adRepository) ActiveBuyerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.activeBuyers().WithContext(ctx).Distinct().Pluck("user_id", &ids).Error
	return ids, err
}

// Sponsored picks one random feed ad outside excludeAdIDs
func (r *adRepository) Sponsored(ctx context.Context, excludeAdIDs []int64) (*feed.Item, error) {
	tx := r.running(ctx).
		Where("ads.show_ad = ?", true).
		Where("ads.media_type IN ?", []string{models.MediaTypeVideo, models.MediaTypeImage})
	if len(excludeAdIDs) > 0 {
		tx = tx.Where("ads.id NOT IN ?", excludeAdIDs)
	}
	return r.one(tx)
}

func (r *adRepository) Banner(ctx context.Context) (*feed.Item, error) {
	return r.one(r.running(ctx).Where("ads.media_type = ?", models.MediaTypeBanner))
}

func (r *adRepository) Sidebar(ctx context.Context, limit int) ([]feed.Item, error) {
	var rows []models.Ad
	err := r.running(ctx).
		Where("ads.show_ad = ?", true).
		Where("ads.media_type <> ?", models.MediaTypeBanner).
		Order("RANDOM()").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]feed.Item, 0, len(rows))
	for i := range rows {
		items = append(items, AdToItem(&rows[i]))
	}
	return items, nil
}

func (r *adRepository) one(tx *gorm.DB) (*feed.Item, error) {
	var row models.Ad
	err := tx.Order("RANDOM()").Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item := AdToItem(&row)
	return &item, nil
}

// RecordAdView inserts an ad view row and bumps the ad view counter
func (r *adRepository) RecordAdView(ctx context.Context, ev feed.ViewEvent) error {
	if ev.AdID == 0 {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ad{}).
			Where("id = ?", ev.AdID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(&models.AdView{
			AdID:      ev.AdID,
			ViewerID:  optional(ev.ViewerID),
			SessionID: optional(ev.SessionID),
			CreatedAt: ev.At,
		}).Error
	})
}

// AdToItem converts an ad row into a sponsored feed item
func AdToItem(a *models.Ad) feed.Item {
	return feed.Item{
		ID:        a.ID,
		MediaType: a.MediaType,
		Owner: feed.Owner{
			ID:        a.OwnerID,
			Username:  a.Owner.Username,
			AvatarURL: a.Owner.AvatarURL,
			Verified:  a.Owner.Verified,
		},
		Description: a.Description,
		StoragePath: a.StoragePath,
		Views:       a.ViewCount,
		Likes:       a.LikeCount,
		Tags:        []string{},
		CreatedAt:   a.CreatedAt,
		Sponsored:   true,
		LandingURL:  a.LandingURL,
	}
}
