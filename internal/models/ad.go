package models

import (
	"time"
)

// Ad is a sponsored creative owned by an ad buyer
type Ad struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	OwnerID     string  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       Profile `gorm:"foreignKey:OwnerID" json:"owner"`
	MediaType   string  `gorm:"not null;index" json:"media_type"` // video, image, banner
	StoragePath string  `json:"storage_path"`
	LandingURL  string  `json:"landing_url"`
	Description string  `json:"description"`
	ShowAd      bool    `gorm:"default:true" json:"show_ad"`

	ViewCount int64 `gorm:"default:0" json:"view_count"`
	LikeCount int64 `gorm:"default:0" json:"like_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdBuyer is a profile that paid for ad placement until ExpiresAt
type AdBuyer struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Status    string     `gorm:"default:'active'" json:"status"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active reports whether the purchase is still running at now
func (b *AdBuyer) Active(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.After(now)
}

// AdView records one impression of an ad
type AdView struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	AdID      int64     `gorm:"not null;index" json:"ad_id"`
	ViewerID  *string   `gorm:"type:uuid;index" json:"viewer_id,omitempty"`
	SessionID *string   `gorm:"index" json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdLike is a like edge between a profile and an ad
type AdLike struct {
	AdID      int64     `gorm:"primaryKey" json:"ad_id"`
	UserID    string    `gorm:"primaryKey;type:uuid;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AllModels lists every table this service migrates
func AllModels() []interface{} {
	return []interface{}{
		&Profile{},
		&ProfileRecTag{},
		&Follow{},
		&Media{},
		&MediaTag{},
		&Tag{},
		&MediaView{},
		&MediaLike{},
		&Ad{},
		&AdBuyer{},
		&AdView{},
		&AdLike{},
		&Comment{},
		&CommentLike{},
		&Report{},
	}
}
