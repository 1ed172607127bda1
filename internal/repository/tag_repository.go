package repository

import (
	"context"
	"strings"

	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository manages the known tag labels
type TagRepository interface {
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	Ensure(ctx context.Context, labels []string) error
	// Labels lists every known label in label order
	Labels(ctx context.Context) ([]string, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// Suggest returns Title Case labels starting with prefix, case-insensitively
func (r *tagRepository) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	var labels []string
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Where(`LOWER(label) LIKE ? ESCAPE '\'`, escaped+"%").
		Order("label ASC").
		Limit(limit).
		Pluck("label", &labels).Error
	if err != nil {
		return nil, err
	}
	return feed.NormalizeTags(labels), nil
}

// Ensure records labels as known tags
func (r *tagRepository) Ensure(ctx context.Context, labels []string) error {
	labels = feed.NormalizeTags(labels)
	if len(labels) == 0 {
		return nil
	}
	rows := make([]models.Tag, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, models.Tag{Label: l})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "label"}}, DoNothing: true}).
		Create(&rows).Error
}

func (r *tagRepository) Labels(ctx context.Context) ([]string, error) {
	var labels []string
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Order("label ASC").
		Pluck("label", &labels).Error
	return labels, err
}
