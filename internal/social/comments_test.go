package social

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
)

func TestAddCommentBuildsThreads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	threads, err := f.svc.AddComment(ctx, f.viewer.ID, f.media.ID, "  first!  ", "")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	root := threads[0]
	assert.Equal(t, "first!", root.Body)
	assert.Equal(t, "viewer", root.Username)
	assert.Empty(t, root.Replies)

	threads, err = f.svc.AddComment(ctx, f.creator.ID, f.media.ID, "thanks", root.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Replies, 1)
	reply := threads[0].Replies[0]
	assert.Equal(t, "creator", reply.Username)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	// replies nest to any depth
	threads, err = f.svc.AddComment(ctx, f.viewer.ID, f.media.ID, "you're welcome", reply.ID)
	require.NoError(t, err)
	require.Len(t, threads[0].Replies[0].Replies, 1)
	assert.Equal(t, "you're welcome", threads[0].Replies[0].Replies[0].Body)

	threads, err = f.svc.AddComment(ctx, f.creator.ID, f.media.ID, "second thread", "")
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "second thread", threads[1].Body)
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &models.Media{OwnerID: f.creator.ID, MediaType: models.MediaTypeVideo, StoragePath: "videos/other.mp4"}
	require.NoError(t, f.db.Create(other).Error)
	elsewhere, err := f.svc.AddComment(ctx, f.viewer.ID, other.ID, "elsewhere", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		viewer  string
		media   int64
		body    string
		parent  string
		wantErr error
	}{
		{"anonymous", "", f.media.ID, "hi", "", repository.ErrInvalidInput},
		{"blank body", f.viewer.ID, f.media.ID, "   ", "", ErrEmptyComment},
		{"too long", f.viewer.ID, f.media.ID, strings.Repeat("é", MaxCommentLength+1), "", ErrCommentTooLong},
		{"unknown media", f.viewer.ID, 9999, "hi", "", repository.ErrNotFound},
		{"unknown parent", f.viewer.ID, f.media.ID, "hi", "00000000-0000-0000-0000-000000000000", ErrParentNotFound},
		{"parent on other media", f.viewer.ID, f.media.ID, "hi", elsewhere[0].ID, ErrParentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddComment(ctx, tt.viewer, tt.media, tt.body, tt.parent)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = f.svc.AddComment(ctx, f.viewer.ID, f.media.ID, strings.Repeat("é", MaxCommentLength), "")
	assert.NoError(t, err)
}

func TestToggleCommentLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	threads, err := f.svc.AddComment(ctx, f.creator.ID, f.media.ID, "like me", "")
	require.NoError(t, err)
	id := threads[0].ID

	res, err := f.svc.ToggleCommentLike(ctx, f.viewer.ID, id)
	require.NoError(t, err)
	assert.Equal(t, CommentLikeResult{Liked: true, Likes: 1}, res)

	threads, err = f.svc.Comments(ctx, f.viewer.ID, f.media.ID)
	require.NoError(t, err)
	assert.True(t, threads[0].LikedByMe)
	assert.Equal(t, int64(1), threads[0].Likes)

	threads, err = f.svc.Comments(ctx, f.creator.ID, f.media.ID)
	require.NoError(t, err)
	assert.False(t, threads[0].LikedByMe)

	res, err = f.svc.ToggleCommentLike(ctx, f.viewer.ID, id)
	require.NoError(t, err)
	assert.Equal(t, CommentLikeResult{Liked: false, Likes: 0}, res)

	_, err = f.svc.ToggleCommentLike(ctx, f.viewer.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBuildThreadsOrphanedReply(t *testing.T) {
	gone := "gone"
	root := "root"
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []models.Comment{
		{ID: "child", ParentID: &root, Body: "reply listed first", CreatedAt: base},
		{ID: "root", Body: "root", CreatedAt: base},
		{ID: "orphan", ParentID: &gone, Body: "parent deleted", CreatedAt: base.Add(time.Second)},
	}

	threads := buildThreads(rows, map[string]bool{"orphan": true})
	require.Len(t, threads, 2)
	assert.Equal(t, "root", threads[0].ID)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "child", threads[0].Replies[0].ID)
	assert.Equal(t, "orphan", threads[1].ID)
	assert.True(t, threads[1].LikedByMe)
}
