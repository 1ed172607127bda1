package search

import (
	"context"

	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"github.com/zfogg/clipfeed/internal/repository"
	"go.uber.org/zap"
)

// TagIndex serves tag suggestions from Elasticsearch and falls back to the
// SQL repository when the cluster fails. Writes go to SQL first.
type TagIndex struct {
	client *Client
	store  repository.TagRepository
}

var _ repository.TagRepository = (*TagIndex)(nil)

// NewTagIndex layers the search client over store
func NewTagIndex(client *Client, store repository.TagRepository) *TagIndex {
	return &TagIndex{client: client, store: store}
}

func (t *TagIndex) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	labels, err := t.client.SuggestTags(ctx, prefix, limit)
	if err == nil {
		return labels, nil
	}
	metrics.Get().App.SearchQueriesTotal.WithLabelValues("suggest", "fallback").Inc()
	logger.Log.Warn("Tag search failed, using database",
		zap.String("prefix", prefix),
		zap.Error(err),
	)
	return t.store.Suggest(ctx, prefix, limit)
}

// Ensure records the labels in SQL, then indexes them. An indexing failure
// is logged; Backfill repairs the index later.
func (t *TagIndex) Ensure(ctx context.Context, labels []string) error {
	if err := t.store.Ensure(ctx, labels); err != nil {
		return err
	}
	if err := t.client.IndexTags(ctx, labels); err != nil {
		logger.Log.Warn("Failed to index tags", zap.Int("count", len(labels)), zap.Error(err))
	}
	return nil
}

func (t *TagIndex) Labels(ctx context.Context) ([]string, error) {
	return t.store.Labels(ctx)
}

// Backfill creates the index when missing and indexes every known label
func (t *TagIndex) Backfill(ctx context.Context) (int, error) {
	if err := t.client.EnsureTagIndex(ctx); err != nil {
		return 0, err
	}
	labels, err := t.store.Labels(ctx)
	if err != nil {
		return 0, err
	}
	if err := t.client.IndexTags(ctx, labels); err != nil {
		return 0, err
	}
	return len(labels), nil
}
