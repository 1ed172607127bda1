package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/models"
	"gorm.io/gorm"
)

// MediaRepository serves feed candidates and records media engagement
type MediaRepository interface {
	feed.CandidateStore

	GetMedia(ctx context.Context, mediaID int64) (*models.Media, error)
	IsLikedBy(ctx context.Context, mediaID int64, profileID string) (bool, error)
	RecordMediaView(ctx context.Context, ev feed.ViewEvent) error

	// LikedByProfile pages through the media of one type the profile liked,
	// most recently liked first
	LikedByProfile(ctx context.Context, profileID, mediaType string, limit, offset int) ([]feed.Item, error)
	// TotalViews sums the view counts of everything the profile owns
	TotalViews(ctx context.Context, profileID string) (int64, error)
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) candidates(ctx context.Context, q feed.Query) *gorm.DB {
	tx := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Preload("Owner").
		Preload("Tags")

	if q.MediaType != "" {
		tx = tx.Where("media.media_type = ?", q.MediaType)
	}
	if len(q.Audiences) > 0 {
		tx = tx.Where("media.audience IN ?", q.Audiences)
	}
	if len(q.Exclude) > 0 {
		tx = tx.Where("media.id NOT IN ?", q.Exclude)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx
}

func byViews(tx *gorm.DB) *gorm.DB {
	return tx.Order("media.view_count DESC").Order("media.created_at DESC")
}

func byRecency(tx *gorm.DB) *gorm.DB {
	return tx.Order("media.created_at DESC").Order("media.id DESC")
}

func (r *mediaRepository) find(tx *gorm.DB) ([]feed.Item, error) {
	var rows []models.Media
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]feed.Item, 0, len(rows))
	for i := range rows {
		items = append(items, MediaToItem(&rows[i]))
	}
	return items, nil
}

// Trending orders by view count then recency
func (r *mediaRepository) Trending(ctx context.Context, q feed.Query) ([]feed.Item, error) {
	return r.find(byViews(r.candidates(ctx, q)))
}

// TagOverlap returns items sharing at least one tag with tags
func (r *mediaRepository) TagOverlap(ctx context.Context, tags []string, q feed.Query) ([]feed.Item, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	tagged := r.db.Model(&models.MediaTag{}).Select("media_id").Where("tag IN ?", tags)
	return r.find(byViews(r.candidates(ctx, q).Where("media.id IN (?)", tagged)))
}

// FromOwners returns the newest items of owners
func (r *mediaRepository) FromOwners(ctx context.Context, owners []string, q feed.Query) ([]feed.Item, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	return r.find(byRecency(r.candidates(ctx, q).Where("media.owner_id IN ?", owners)))
}

// Recent returns the newest items
func (r *mediaRepository) Recent(ctx context.Context, q feed.Query) ([]feed.Item, error) {
	return r.find(byRecency(r.candidates(ctx, q)))
}

// WithTag returns items carrying tag, most viewed first
func (r *mediaRepository) WithTag(ctx context.Context, tag string, q feed.Query) ([]feed.Item, error) {
	tagged := r.db.Model(&models.MediaTag{}).Select("media_id").Where("tag = ?", tag)
	return r.find(byViews(r.candidates(ctx, q).Where("media.id IN (?)", tagged)))
}

// GetMedia gets one media item with owner and tags
func (r *mediaRepository) GetMedia(ctx context.Context, mediaID int64) (*models.Media, error) {
	var m models.Media
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Tags").
		Where("id = ?", mediaID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// IsLikedBy reports whether the profile likes the media item
func (r *mediaRepository) IsLikedBy(ctx context.Context, mediaID int64, profileID string) (bool, error) {
	if profileID == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MediaLike{}).
		Where("media_id = ? AND user_id = ?", mediaID, profileID).
		Count(&count).Error
	return count > 0, err
}

func (r *mediaRepository) LikedByProfile(ctx context.Context, profileID, mediaType string, limit, offset int) ([]feed.Item, error) {
	if profileID == "" {
		return nil, ErrInvalidInput
	}
	tx := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Preload("Owner").
		Preload("Tags").
		Joins("JOIN media_likes ON media_likes.media_id = media.id").
		Where("media_likes.user_id = ?", profileID).
		Where("media.media_type = ?", mediaType).
		Order("media_likes.created_at DESC").
		Order("media.id DESC").
		Limit(limit).
		Offset(offset)
	return r.find(tx)
}

func (r *mediaRepository) TotalViews(ctx context.Context, profileID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Select("COALESCE(SUM(view_count), 0)").
		Where("owner_id = ?", profileID).
		Scan(&total).Error
	return total, err
}

// RecordMediaView inserts a view row and bumps the media view counter
func (r *mediaRepository) RecordMediaView(ctx context.Context, ev feed.ViewEvent) error {
	if ev.MediaID == 0 {
		return ErrInvalidInput
	}

	view := models.MediaView{
		MediaID:   ev.MediaID,
		ViewerID:  optional(ev.ViewerID),
		SessionID: optional(ev.SessionID),
		Source:    string(ev.Source),
		Position:  ev.Position,
		CreatedAt: ev.At,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Media{}).
			Where("id = ?", ev.MediaID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("media %d: %w", ev.MediaID, ErrNotFound)
		}
		return tx.Create(&view).Error
	})
}

// MediaToItem converts a loaded media row into a feed item
func MediaToItem(m *models.Media) feed.Item {
	return feed.Item{
		ID:        m.ID,
		MediaType: m.MediaType,
		Owner: feed.Owner{
			ID:        m.OwnerID,
			Username:  m.Owner.Username,
			AvatarURL: m.Owner.AvatarURL,
			Verified:  m.Owner.Verified,
		},
		Title:       m.Title,
		Description: m.Description,
		StoragePath: m.StoragePath,
		Views:       m.ViewCount,
		Likes:       m.LikeCount,
		Audience:    m.Audience,
		Tags:        m.TagList(),
		CreatedAt:   m.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
