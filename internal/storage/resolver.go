package storage

import (
	"context"

	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/logger"
	"go.uber.org/zap"
)

// DefaultLocalBaseURL serves media when neither a bucket nor a CDN is configured
const DefaultLocalBaseURL = "http://localhost:8787/media"

// NewResolver picks the S3 resolver when a bucket is configured and a
// static resolver otherwise. An unreachable bucket is logged, not fatal.
func NewResolver(ctx context.Context, cfg config.StorageConfig) (URLResolver, error) {
	if cfg.Bucket == "" {
		base := cfg.BaseURL
		if base == "" {
			base = DefaultLocalBaseURL
		}
		logger.Log.Warn("S3_BUCKET not set, serving media from a static base URL",
			zap.String("base_url", base),
		)
		return StaticResolver{BaseURL: base}, nil
	}

	r, err := NewS3Resolver(ctx, cfg.Region, cfg.Bucket, cfg.BaseURL, cfg.PresignTTL)
	if err != nil {
		return nil, err
	}
	if err := r.CheckBucketAccess(ctx); err != nil {
		logger.Log.Warn("S3 bucket not reachable, media URLs may not load", zap.Error(err))
	}
	return r, nil
}
