package repository

import (
	"context"
	"errors"

	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository handles profile reads and the engagement-derived profile data
type ProfileRepository interface {
	feed.ViewerSource

	GetProfile(ctx context.Context, profileID string) (*models.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	GetProfiles(ctx context.Context, profileIDs []string) ([]*models.Profile, error)

	// AddRecTags attaches tags to the profile, ignoring ones it already has.
	// It returns how many were new.
	AddRecTags(ctx context.Context, profileID string, tags []string) (int64, error)
	SetPreferences(ctx context.Context, profileID string, prefs []string) error

	CreateFollow(ctx context.Context, followerID, followeeID string) error
	DeleteFollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	GetFollowerCount(ctx context.Context, profileID string) (int64, error)
	GetFollowingCount(ctx context.Context, profileID string) (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetProfile gets a profile by ID
func (r *profileRepository) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", profileID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByUsername gets a profile by its exact username
func (r *profileRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	var p models.Profile
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfiles gets several profiles by ID
func (r *profileRepository) GetProfiles(ctx context.Context, profileIDs []string) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if len(profileIDs) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", profileIDs).Find(&profiles).Error
	return profiles, err
}

// RecTags returns the profile's recommendation tags in the order they were earned
func (r *profileRepository) RecTags(ctx context.Context, profileID string) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).
		Model(&models.ProfileRecTag{}).
		Where("profile_id = ?", profileID).
		Order("created_at ASC").
		Order("tag ASC").
		Pluck("tag", &tags).Error
	return tags, err
}

// Followees returns the IDs of the profiles profileID follows
func (r *profileRepository) Followees(ctx context.Context, profileID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", profileID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// Preferences returns the stored audience preferences
func (r *profileRepository) Preferences(ctx context.Context, profileID string) ([]string, error) {
	p, err := r.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return p.Preferences, nil
}

func (r *profileRepository) AddRecTags(ctx context.Context, profileID string, tags []string) (int64, error) {
	if profileID == "" {
		return 0, ErrInvalidInput
	}
	if len(tags) == 0 {
		return 0, nil
	}

	rows := make([]models.ProfileRecTag, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, models.ProfileRecTag{ProfileID: profileID, Tag: t})
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

// SetPreferences replaces the stored audience preferences
func (r *profileRepository) SetPreferences(ctx context.Context, profileID string, prefs []string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Profile{ID: profileID}).
		Select("preferences").
		Updates(models.Profile{Preferences: prefs})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateFollow creates a follow relationship. Following twice is a no-op.
func (r *profileRepository) CreateFollow(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
}

// DeleteFollow deletes a follow relationship
func (r *profileRepository) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
}

// IsFollowing checks if follower follows followee
func (r *profileRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// GetFollowerCount gets follower count for a profile
func (r *profileRepository) GetFollowerCount(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", profileID).
		Count(&count).Error
	return count, err
}

// GetFollowingCount gets following count for a profile
func (r *profileRepository) GetFollowingCount(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", profileID).
		Count(&count).Error
	return count, err
}
