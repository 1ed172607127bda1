package models

import (
	"time"
)

// MediaView records one view of a media item. Inserting a row bumps
// Media.ViewCount in the same transaction.
type MediaView struct {
	ID       int64   `gorm:"primaryKey" json:"id"`
	MediaID  int64   `gorm:"not null;index:idx_media_views_media_created" json:"media_id"`
	ViewerID *string `gorm:"type:uuid;index" json:"viewer_id,omitempty"`

	// Feed context the item was served in
	SessionID *string `gorm:"index" json:"session_id,omitempty"`
	Source    string  `gorm:"index" json:"source"` // trending, personalized, following, recent, tag
	Position  int     `json:"position"`

	CreatedAt time.Time `gorm:"index:idx_media_views_media_created" json:"created_at"`
}

// MediaLike is a like edge between a profile and a media item
type MediaLike struct {
	MediaID   int64     `gorm:"primaryKey" json:"media_id"`
	UserID    string    `gorm:"primaryKey;type:uuid;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
