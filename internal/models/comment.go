package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a comment on a media item. Replies point at their parent and
// may nest to any depth.
type Comment struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	MediaID  int64   `gorm:"not null;index:idx_comments_media_created" json:"media_id"`
	AuthorID string  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   Profile `gorm:"foreignKey:AuthorID" json:"author"`

	// Threading - parent_id is null for top-level comments
	ParentID *string `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	Body      string `gorm:"type:text;not null" json:"body"`
	LikeCount int64  `gorm:"default:0" json:"like_count"`

	CreatedAt time.Time `gorm:"index:idx_comments_media_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CommentLike is a like edge between a profile and a comment
type CommentLike struct {
	CommentID string    `gorm:"primaryKey;type:uuid" json:"comment_id"`
	UserID    string    `gorm:"primaryKey;type:uuid;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
