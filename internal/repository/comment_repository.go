package repository

import (
	"context"
	"errors"

	"github.com/zfogg/clipfeed/internal/models"
	"gorm.io/gorm"
)

// CommentRepository handles comments on media and their likes
type CommentRepository interface {
	// ListByMedia returns every comment on the media item with its author,
	// oldest first
	ListByMedia(ctx context.Context, mediaID int64) ([]models.Comment, error)
	GetComment(ctx context.Context, commentID string) (*models.Comment, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	// LikedBy returns which of commentIDs the profile likes
	LikedBy(ctx context.Context, profileID string, commentIDs []string) (map[string]bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByMedia(ctx context.Context, mediaID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("media_id = ?", mediaID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	var c models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", commentID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.MediaID <= 0 || c.AuthorID == "" || c.Body == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *commentRepository) LikedBy(ctx context.Context, profileID string, commentIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if profileID == "" || len(commentIDs) == 0 {
		return liked, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", profileID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
