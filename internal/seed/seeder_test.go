package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/clipfeed/internal/auth"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/database"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeedTest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	profiles, err := NewSeeder(db, 1).SeedTest(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "alice", profiles[0].Username)

	assert.Equal(t, int64(6), count(t, db, &models.Media{}))
	assert.Equal(t, int64(2), count(t, db, &models.Ad{}))

	repo := repository.NewProfileRepository(db)
	tags, err := repo.RecTags(ctx, profiles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cats"}, tags)

	followees, err := repo.Followees(ctx, profiles[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{profiles[2].ID}, followees)

	buyers, err := repository.NewAdRepository(db).ActiveBuyerIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{profiles[2].ID}, buyers)
}

func TestSeedDev(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	counts := Counts{Profiles: 8, Media: 40, Follows: 10, Likes: 20, Comments: 15, Buyers: 2, Ads: 6}
	require.NoError(t, NewSeeder(db, 42).SeedDev(ctx, counts))

	assert.Equal(t, int64(8), count(t, db, &models.Profile{}))
	assert.Equal(t, int64(40), count(t, db, &models.Media{}))
	assert.Equal(t, int64(6), count(t, db, &models.Ad{}))
	assert.Equal(t, int64(15), count(t, db, &models.Comment{}))
	assert.Equal(t, int64(len(tagPool)), count(t, db, &models.Tag{}))

	var untagged int64
	require.NoError(t, db.Model(&models.Media{}).
		Where("id NOT IN (?)", db.Model(&models.MediaTag{}).Select("media_id")).
		Count(&untagged).Error)
	assert.Zero(t, untagged)

	// one of the two buyers is expired
	buyers, err := repository.NewAdRepository(db).ActiveBuyerIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, buyers, 1)

	var likes, likeTotal int64
	require.NoError(t, db.Model(&models.MediaLike{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Media{}).Select("COALESCE(SUM(like_count), 0)").Scan(&likeTotal).Error)
	assert.Equal(t, likes, likeTotal)
	if likes > 0 {
		assert.NotZero(t, count(t, db, &models.ProfileRecTag{}))
	}
}

func TestClean(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := NewSeeder(db, 1)

	_, err := s.SeedTest(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Clean(ctx))

	assert.Zero(t, count(t, db, &models.Profile{}))
	assert.Zero(t, count(t, db, &models.Media{}))
	assert.Zero(t, count(t, db, &models.MediaTag{}))
	assert.Zero(t, count(t, db, &models.AdBuyer{}))
}

func TestDevTokens(t *testing.T) {
	tokens := auth.NewService([]byte("dev-secret"))
	profiles := []models.Profile{{ID: "p-1", Username: "alice"}, {ID: "p-2", Username: "bob"}}

	out, err := DevTokens(tokens, profiles, time.Hour)
	require.NoError(t, err)
	require.Len(t, out, 2)

	id, err := tokens.ValidateToken(out["bob"])
	require.NoError(t, err)
	assert.Equal(t, "p-2", id)

	_, err = DevTokens(auth.NewService(nil), profiles, time.Hour)
	assert.Error(t, err)
}
