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

func TestToggleAdLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ad := &models.Ad{OwnerID: f.creator.ID, MediaType: models.MediaTypeVideo, StoragePath: "ads/a.mp4"}
	require.NoError(t, f.db.Create(ad).Error)

	liked, err := f.svc.HasLikedAd(ctx, f.viewer.ID, ad.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	res, err := f.svc.ToggleAdLike(ctx, f.viewer.ID, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, AdLikeResult{Liked: true, Likes: 1}, res)

	liked, err = f.svc.HasLikedAd(ctx, f.viewer.ID, ad.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = f.svc.HasLikedAd(ctx, "", ad.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	// ad likes never feed recommendation tags
	tags, err := f.profiles.RecTags(ctx, f.viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)

	res, err = f.svc.ToggleAdLike(ctx, f.viewer.ID, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, AdLikeResult{Liked: false, Likes: 0}, res)

	var stored models.Ad
	require.NoError(t, f.db.First(&stored, ad.ID).Error)
	assert.Zero(t, stored.LikeCount)

	_, err = f.svc.ToggleAdLike(ctx, f.viewer.ID, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestParseReportReason(t *testing.T) {
	tests := []struct {
		in      string
		want    models.ReportReason
		wantErr bool
	}{
		{"copyright", models.ReportReasonCopyright, false},
		{" Violence ", models.ReportReasonViolence, false},
		{"Rape / Sexual Assault", models.ReportReasonSexualAssault, false},
		{"animals / acts of bestiality", models.ReportReasonBestiality, false},
		{"spam", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReportReason(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownReportReason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.SubmitReport(ctx, f.viewer.ID, f.media.ID, "Copyright / I Own This Content", "  my clip  ")
	require.NoError(t, err)
	assert.Equal(t, models.ReportReasonCopyright, report.Reason)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	require.NotNil(t, report.Note)
	assert.Equal(t, "my clip", *report.Note)
	require.NotNil(t, report.ReporterID)
	assert.Equal(t, f.viewer.ID, *report.ReporterID)

	anon, err := f.svc.SubmitReport(ctx, "", f.media.ID, "violence", "   ")
	require.NoError(t, err)
	assert.Nil(t, anon.ReporterID)
	assert.Nil(t, anon.Note)

	var stored int64
	require.NoError(t, f.db.Model(&models.Report{}).Where("media_id = ?", f.media.ID).Count(&stored).Error)
	assert.Equal(t, int64(2), stored)

	_, err = f.svc.SubmitReport(ctx, f.viewer.ID, f.media.ID, "spam", "")
	assert.ErrorIs(t, err, ErrUnknownReportReason)
	_, err = f.svc.SubmitReport(ctx, f.viewer.ID, f.media.ID, "hate", strings.Repeat("x", MaxReportNoteLength+1))
	assert.ErrorIs(t, err, ErrReportNoteTooLong)
	_, err = f.svc.SubmitReport(ctx, f.viewer.ID, 9999, "hate", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.svc.SubmitReport(ctx, f.viewer.ID, 0, "hate", "")
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestStatsByUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&models.Media{}).Where("id = ?", f.media.ID).Update("view_count", 40).Error)
	second := &models.Media{OwnerID: f.creator.ID, MediaType: models.MediaTypeImage, StoragePath: "images/b.jpg", ViewCount: 2, CreatedAt: time.Now()}
	require.NoError(t, f.db.Create(second).Error)
	_, err := f.svc.ToggleFollow(ctx, f.viewer.ID, f.creator.ID)
	require.NoError(t, err)

	p, err := f.svc.ProfileByUsername(ctx, "creator")
	require.NoError(t, err)
	assert.Equal(t, f.creator.ID, p.ID)

	stats, err := f.svc.StatsByUsername(ctx, "creator")
	require.NoError(t, err)
	assert.Equal(t, ProfileStats{FollowCounts: FollowCounts{Followers: 1, Following: 0}, Views: 42}, stats)

	stats, err = f.svc.StatsByUsername(ctx, "viewer")
	require.NoError(t, err)
	assert.Equal(t, ProfileStats{FollowCounts: FollowCounts{Followers: 0, Following: 1}}, stats)

	_, err = f.svc.StatsByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
