package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/zfogg/clipfeed/internal/auth"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tags the seeded media draws from
var tagPool = []string{
	"Gaming", "Gaming Fever", "Cats", "Dogs", "Cooking", "Street Food", "Travel",
	"Fitness", "Dance", "Comedy", "Music", "Skate", "Anime", "Cosplay",
	"Fashion", "Makeup", "Cars", "Diy", "Gardening", "Science",
}

// Counts sizes a development dataset
type Counts struct {
	Profiles int
	Media    int
	Follows  int
	Likes    int
	Comments int
	Buyers   int
	Ads      int
}

// DefaultCounts is the development dataset size
var DefaultCounts = Counts{
	Profiles: 60,
	Media:    600,
	Follows:  300,
	Likes:    900,
	Comments: 400,
	Buyers:   4,
	Ads:      12,
}

// Seeder handles database seeding operations
type Seeder struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	profiles repository.ProfileRepository
	tags     repository.TagRepository
	now      time.Time
}

// NewSeeder creates a seeder. seed 0 picks a random seed.
func NewSeeder(db *gorm.DB, seed uint64) *Seeder {
	return &Seeder{
		db:       db,
		faker:    gofakeit.New(seed),
		profiles: repository.NewProfileRepository(db),
		tags:     repository.NewTagRepository(db),
		now:      time.Now().UTC(),
	}
}

// SeedDev seeds the development database with a realistic spread of data
func (s *Seeder) SeedDev(ctx context.Context, counts Counts) error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating profiles...")
	profiles, err := s.seedProfiles(ctx, counts.Profiles)
	if err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}

	log("Creating media...")
	media, err := s.seedMedia(ctx, profiles, counts.Media)
	if err != nil {
		return fmt.Errorf("failed to seed media: %w", err)
	}

	log("Creating tags...")
	if err := s.tags.Ensure(ctx, tagPool); err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}

	log("Creating follows...")
	if err := s.seedFollows(ctx, profiles, counts.Follows); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating likes...")
	if err := s.seedLikes(ctx, profiles, media, counts.Likes); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	log("Creating comments...")
	if err := s.seedComments(ctx, profiles, media, counts.Comments); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	log("Creating ad buyers and ads...")
	if err := s.seedAds(ctx, profiles, counts.Buyers, counts.Ads); err != nil {
		return fmt.Errorf("failed to seed ads: %w", err)
	}

	logger.Log.Info("Development seed complete",
		zap.Int("profiles", len(profiles)),
		zap.Int("media", len(media)),
	)
	return nil
}

// SeedTest seeds a small fixed dataset: alice likes cats, bob follows carol,
// carol buys ads
func (s *Seeder) SeedTest(ctx context.Context) ([]models.Profile, error) {
	defs := []struct {
		username string
		prefs    []string
	}{
		{"alice", []string{feed.AudienceStraight}},
		{"bob", []string{feed.AudienceStraight, feed.AudienceAnimated}},
		{"carol", []string{feed.AudienceGay}},
	}

	profiles := make([]models.Profile, 0, len(defs))
	for _, def := range defs {
		p := models.Profile{
			Username:    def.username,
			AvatarURL:   avatarURL(def.username),
			Preferences: def.prefs,
		}
		err := s.db.WithContext(ctx).
			Where(models.Profile{Username: def.username}).
			FirstOrCreate(&p).Error
		if err != nil {
			return nil, fmt.Errorf("failed to create test profile %s: %w", def.username, err)
		}
		profiles = append(profiles, p)
	}
	alice, bob, carol := profiles[0], profiles[1], profiles[2]

	clips := []struct {
		owner    models.Profile
		audience string
		views    int64
		tags     []string
	}{
		{carol, feed.AudienceStraight, 120, []string{"Cats"}},
		{carol, feed.AudienceStraight, 80, []string{"Cats", "Comedy"}},
		{bob, feed.AudienceStraight, 300, []string{"Gaming"}},
		{bob, feed.AudienceAnimated, 40, []string{"Anime"}},
		{alice, feed.AudienceStraight, 10, []string{"Cooking"}},
		{alice, feed.AudienceGay, 55, []string{"Dance"}},
	}
	for i, c := range clips {
		m := models.Media{
			OwnerID:     c.owner.ID,
			MediaType:   models.MediaTypeVideo,
			StoragePath: fmt.Sprintf("videos/test-%d.mp4", i+1),
			Title:       fmt.Sprintf("%s clip %d", c.owner.Username, i+1),
			ViewCount:   c.views,
			Audience:    c.audience,
			CreatedAt:   s.now.Add(-time.Duration(i+1) * time.Hour),
		}
		for _, t := range c.tags {
			m.Tags = append(m.Tags, models.MediaTag{Tag: t})
		}
		if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
			return nil, fmt.Errorf("failed to create test media: %w", err)
		}
	}

	if _, err := s.profiles.AddRecTags(ctx, alice.ID, []string{"Cats"}); err != nil {
		return nil, err
	}
	if err := s.profiles.CreateFollow(ctx, bob.ID, carol.ID); err != nil {
		return nil, err
	}
	if err := s.tags.Ensure(ctx, []string{"Cats", "Comedy", "Gaming", "Anime", "Cooking", "Dance"}); err != nil {
		return nil, err
	}

	expires := s.now.Add(30 * 24 * time.Hour)
	if err := s.db.WithContext(ctx).Create(&models.AdBuyer{UserID: carol.ID, ExpiresAt: &expires}).Error; err != nil {
		return nil, err
	}
	ads := []models.Ad{
		{OwnerID: carol.ID, MediaType: models.MediaTypeVideo, StoragePath: "ads/test-video.mp4", LandingURL: "https://example.com/shop", Description: "Test video ad", ShowAd: true},
		{OwnerID: carol.ID, MediaType: models.MediaTypeBanner, StoragePath: "ads/test-banner.png", LandingURL: "https://example.com/banner", Description: "Test banner", ShowAd: true},
	}
	if err := s.db.WithContext(ctx).Create(&ads).Error; err != nil {
		return nil, err
	}

	return profiles, nil
}

// Clean removes every row the seeders write, children first
func (s *Seeder) Clean(ctx context.Context) error {
	tables := []string{
		"reports", "comment_likes", "comments",
		"ad_likes", "ad_views", "ads", "ad_buyers",
		"media_likes", "media_views", "media_tags", "media", "tags",
		"follows", "profile_rec_tags", "profiles",
	}
	for _, table := range tables {
		if err := s.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

// DevTokens signs a bearer token for each profile, keyed by username
func DevTokens(tokens *auth.Service, profiles []models.Profile, ttl time.Duration) (map[string]string, error) {
	out := make(map[string]string, len(profiles))
	for _, p := range profiles {
		tok, err := tokens.IssueToken(p.ID, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to sign token for %s: %w", p.Username, err)
		}
		out[p.Username] = tok
	}
	return out, nil
}

func (s *Seeder) seedProfiles(ctx context.Context, count int) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, count)
	for i := 0; i < count; i++ {
		username := s.faker.Username()

		var existing int64
		for {
			if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("username = ?", username).Count(&existing).Error; err != nil {
				return nil, err
			}
			if existing == 0 {
				break
			}
			username = fmt.Sprintf("%s%d", s.faker.Username(), s.faker.Number(1, 999))
		}

		p := models.Profile{
			Username:    username,
			AvatarURL:   avatarURL(username),
			Verified:    s.faker.Number(1, 10) == 1,
			Preferences: s.randomAudiences(),
		}
		if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// seedMedia skews views so a few items dominate trending
func (s *Seeder) seedMedia(ctx context.Context, owners []models.Profile, count int) ([]models.Media, error) {
	if len(owners) == 0 {
		return nil, nil
	}

	media := make([]models.Media, 0, count)
	for i := 0; i < count; i++ {
		owner := owners[s.faker.Number(0, len(owners)-1)]

		mediaType, ext := models.MediaTypeVideo, "mp4"
		if s.faker.Number(1, 5) == 1 {
			mediaType, ext = models.MediaTypeImage, "jpg"
		}

		views := int64(s.faker.Number(0, 500))
		if s.faker.Number(1, 20) == 1 {
			views *= int64(s.faker.Number(10, 200))
		}

		m := models.Media{
			OwnerID:     owner.ID,
			MediaType:   mediaType,
			StoragePath: fmt.Sprintf("%ss/%s.%s", mediaType, s.faker.UUID(), ext),
			Title:       s.faker.HipsterSentence(),
			Description: s.faker.HipsterSentence(),
			ViewCount:   views,
			Audience:    s.randomAudience(),
			CreatedAt:   s.faker.DateRange(s.now.AddDate(0, 0, -30), s.now),
		}
		for _, t := range s.pickTags(s.faker.Number(1, 3)) {
			m.Tags = append(m.Tags, models.MediaTag{Tag: t})
		}
		media = append(media, m)
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&media, 100).Error; err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}
	return media, nil
}

func (s *Seeder) seedFollows(ctx context.Context, profiles []models.Profile, count int) error {
	if len(profiles) < 2 {
		return nil
	}
	for i := 0; i < count; i++ {
		a := profiles[s.faker.Number(0, len(profiles)-1)]
		b := profiles[s.faker.Number(0, len(profiles)-1)]
		if a.ID == b.ID {
			continue
		}
		if err := s.profiles.CreateFollow(ctx, a.ID, b.ID); err != nil {
			return err
		}
	}
	return nil
}

// seedLikes writes like rows and grows the likers' recommendation tags the
// way a real like does
func (s *Seeder) seedLikes(ctx context.Context, profiles []models.Profile, media []models.Media, count int) error {
	if len(profiles) == 0 || len(media) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		p := profiles[s.faker.Number(0, len(profiles)-1)]
		m := media[s.faker.Number(0, len(media)-1)]

		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.MediaLike{MediaID: m.ID, UserID: p.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		err := s.db.WithContext(ctx).Model(&models.Media{}).
			Where("id = ?", m.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
		if err != nil {
			return err
		}
		if _, err := s.profiles.AddRecTags(ctx, p.ID, m.TagList()); err != nil {
			return err
		}
	}
	return nil
}

// seedComments makes about a third of the comments replies to an earlier
// comment on the same media
func (s *Seeder) seedComments(ctx context.Context, profiles []models.Profile, media []models.Media, count int) error {
	if len(profiles) == 0 || len(media) == 0 {
		return nil
	}
	byMedia := make(map[int64][]string)
	for i := 0; i < count; i++ {
		p := profiles[s.faker.Number(0, len(profiles)-1)]
		m := media[s.faker.Number(0, len(media)-1)]

		c := models.Comment{
			MediaID:   m.ID,
			AuthorID:  p.ID,
			Body:      s.faker.HipsterSentence(),
			CreatedAt: s.faker.DateRange(m.CreatedAt, s.now),
		}
		if earlier := byMedia[m.ID]; len(earlier) > 0 && s.faker.Number(0, 2) == 0 {
			parent := earlier[s.faker.Number(0, len(earlier)-1)]
			c.ParentID = &parent
		}
		if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
			return err
		}
		byMedia[m.ID] = append(byMedia[m.ID], c.ID)
	}
	return nil
}

// seedAds makes the last buyer expired so its ads never run
func (s *Seeder) seedAds(ctx context.Context, profiles []models.Profile, buyers, ads int) error {
	if len(profiles) == 0 || buyers == 0 {
		return nil
	}
	if buyers > len(profiles) {
		buyers = len(profiles)
	}

	owners := profiles[:buyers]
	for i, p := range owners {
		expires := s.now.AddDate(0, 0, s.faker.Number(7, 60))
		status := "active"
		if i == len(owners)-1 && len(owners) > 1 {
			expires = s.now.AddDate(0, 0, -s.faker.Number(1, 30))
			status = "expired"
		}
		if err := s.db.WithContext(ctx).Create(&models.AdBuyer{UserID: p.ID, Status: status, ExpiresAt: &expires}).Error; err != nil {
			return err
		}
	}

	kinds := []struct{ mediaType, ext string }{
		{models.MediaTypeVideo, "mp4"},
		{models.MediaTypeImage, "jpg"},
		{models.MediaTypeBanner, "png"},
	}
	rows := make([]models.Ad, 0, ads)
	for i := 0; i < ads; i++ {
		kind := kinds[i%len(kinds)]
		rows = append(rows, models.Ad{
			OwnerID:     owners[i%len(owners)].ID,
			MediaType:   kind.mediaType,
			StoragePath: fmt.Sprintf("ads/%s.%s", s.faker.UUID(), kind.ext),
			LandingURL:  s.faker.URL(),
			Description: s.faker.Company(),
			ShowAd:      true,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *Seeder) randomAudience() string {
	// Most content targets the default audience
	if s.faker.Number(1, 10) <= 6 {
		return feed.DefaultAudience
	}
	return feed.AllAudiences[s.faker.Number(0, len(feed.AllAudiences)-1)]
}

func (s *Seeder) randomAudiences() []string {
	n := s.faker.Number(1, 2)
	picked := make([]string, 0, n)
	for i := 0; i < n; i++ {
		picked = append(picked, s.randomAudience())
	}
	return feed.NormalizeAudiences(picked)
}

func (s *Seeder) pickTags(n int) []string {
	picked := make([]string, 0, n)
	for i := 0; i < n; i++ {
		picked = append(picked, tagPool[s.faker.Number(0, len(tagPool)-1)])
	}
	return feed.NormalizeTags(picked)
}

func avatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username)
}
