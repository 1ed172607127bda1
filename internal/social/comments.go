package social

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxCommentLength is the longest comment body accepted, in characters
const MaxCommentLength = 2000

// CommentNode is a comment with its replies nested below it
type CommentNode struct {
	ID        string         `json:"id"`
	ParentID  *string        `json:"parent_id,omitempty"`
	AuthorID  string         `json:"author_id"`
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Body      string         `json:"body"`
	Likes     int64          `json:"likes"`
	LikedByMe bool           `json:"liked_by_me"`
	CreatedAt time.Time      `json:"created_at"`
	Replies   []*CommentNode `json:"replies"`
}

// CommentLikeResult is the state after a comment like toggle
type CommentLikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

// Comments returns the comment threads of a media item, oldest first at
// every level. LikedByMe is filled in when viewerID is set.
func (s *Service) Comments(ctx context.Context, viewerID string, mediaID int64) ([]*CommentNode, error) {
	if _, err := s.media.GetMedia(ctx, mediaID); err != nil {
		return nil, err
	}

	rows, err := s.comments.ListByMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}
	liked, err := s.comments.LikedBy(ctx, viewerID, ids)
	if err != nil {
		logger.Log.Warn("Failed to load comment like state",
			logger.WithViewerID(viewerID),
			logger.WithMediaID(mediaID),
			zap.Error(err),
		)
		liked = nil
	}
	return buildThreads(rows, liked), nil
}

// buildThreads nests rows under their parents, keeping the row order at
// every level. A reply whose parent is missing is shown at the top level.
func buildThreads(rows []models.Comment, liked map[string]bool) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(rows))
	for i := range rows {
		c := &rows[i]
		nodes[c.ID] = &CommentNode{
			ID:        c.ID,
			ParentID:  c.ParentID,
			AuthorID:  c.AuthorID,
			Username:  c.Author.Username,
			AvatarURL: c.Author.AvatarURL,
			Body:      c.Body,
			Likes:     c.LikeCount,
			LikedByMe: liked[c.ID],
			CreatedAt: c.CreatedAt,
			Replies:   []*CommentNode{},
		}
	}

	roots := make([]*CommentNode, 0)
	for i := range rows {
		n := nodes[rows[i].ID]
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok && parent != n {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// AddComment posts a comment on mediaID, or a reply when parentID names a
// comment on the same media. It returns the updated threads.
func (s *Service) AddComment(ctx context.Context, viewerID string, mediaID int64, body string, parentID string) ([]*CommentNode, error) {
	if viewerID == "" || mediaID <= 0 {
		return nil, repository.ErrInvalidInput
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}
	if _, err := s.media.GetMedia(ctx, mediaID); err != nil {
		return nil, err
	}

	c := &models.Comment{MediaID: mediaID, AuthorID: viewerID, Body: body}
	if parentID = strings.TrimSpace(parentID); parentID != "" {
		parent, err := s.comments.GetComment(ctx, parentID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && parent.MediaID != mediaID) {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, err
		}
		c.ParentID = &parent.ID
	}

	if err := s.comments.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	metrics.Get().App.CommentsTotal.Inc()

	logger.Log.Debug("Comment added",
		logger.WithViewerID(viewerID),
		logger.WithMediaID(mediaID),
		zap.String("comment_id", c.ID),
		zap.Bool("reply", c.ParentID != nil),
	)
	return s.Comments(ctx, viewerID, mediaID)
}

// ToggleCommentLike likes a comment, or unlikes it when the viewer already did
func (s *Service) ToggleCommentLike(ctx context.Context, viewerID, commentID string) (CommentLikeResult, error) {
	if viewerID == "" || commentID == "" {
		return CommentLikeResult{}, repository.ErrInvalidInput
	}

	var result CommentLikeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", commentID).
			First(&comment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		del := tx.Where("comment_id = ? AND user_id = ?", commentID, viewerID).Delete(&models.CommentLike{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			result = CommentLikeResult{Liked: false, Likes: max(comment.LikeCount-1, 0)}
			return tx.Model(&models.Comment{}).
				Where("id = ? AND like_count > 0", commentID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
		}

		if err := tx.Create(&models.CommentLike{CommentID: commentID, UserID: viewerID}).Error; err != nil {
			return err
		}
		result = CommentLikeResult{Liked: true, Likes: comment.LikeCount + 1}
		return tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
	if err != nil {
		return CommentLikeResult{}, err
	}

	action := "unlike"
	if result.Liked {
		action = "like"
	}
	metrics.Get().App.CommentLikesTotal.WithLabelValues(action).Inc()
	return result, nil
}
