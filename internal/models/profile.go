package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is a platform identity. Profiles are created by the auth provider;
// this service only reads them and maintains the engagement-derived fields.
type Profile struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string `gorm:"uniqueIndex;not null" json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Verified  bool   `gorm:"default:false" json:"verified"`

	// Accepted audience tags, normalized before storage.
	Preferences []string `gorm:"type:text;serializer:json" json:"preferences"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not provide one
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ProfileRecTag is one recommendation tag accumulated by a profile from likes.
// Rows are only ever inserted.
type ProfileRecTag struct {
	ProfileID string    `gorm:"primaryKey;type:uuid" json:"profile_id"`
	Tag       string    `gorm:"primaryKey" json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow is a directed follow edge
type Follow struct {
	FollowerID string    `gorm:"primaryKey;type:uuid" json:"follower_id"`
	FolloweeID string    `gorm:"primaryKey;type:uuid;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
