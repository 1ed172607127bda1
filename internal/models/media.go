package models

import (
	"time"
)

// Media types
const (
	MediaTypeVideo  = "video"
	MediaTypeImage  = "image"
	MediaTypeBanner = "banner"
)

// Media is a content item in the feed
type Media struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	OwnerID     string  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       Profile `gorm:"foreignKey:OwnerID" json:"owner"`
	MediaType   string  `gorm:"not null;default:'video';index" json:"media_type"`
	StoragePath string  `json:"storage_path"`
	Title       string  `json:"title"`
	Description string  `json:"description"`

	ViewCount int64 `gorm:"default:0" json:"view_count"`
	LikeCount int64 `gorm:"default:0" json:"like_count"`

	// Audience tag, one of the audience enumeration
	Audience string `gorm:"not null;default:'straight';index" json:"audience"`

	Tags []MediaTag `gorm:"foreignKey:MediaID" json:"tags"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the singular table name used by the rest of the platform
func (Media) TableName() string {
	return "media"
}

// TagList flattens the tag rows
func (m *Media) TagList() []string {
	tags := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, t.Tag)
	}
	return tags
}

// MediaTag attaches a topical tag to a media item
type MediaTag struct {
	MediaID int64  `gorm:"primaryKey" json:"media_id"`
	Tag     string `gorm:"primaryKey;index" json:"tag"`
}

// Tag is a known tag label offered as a suggestion
type Tag struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Label     string    `gorm:"uniqueIndex;not null" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
