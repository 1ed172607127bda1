package storage

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/zfogg/clipfeed/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// S3Resolver resolves media storage paths against an S3 bucket.
// With a CDN base URL configured it joins paths onto it; otherwise it
// hands out presigned GET URLs.
type S3Resolver struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	region     string
	baseURL    string
	presignTTL time.Duration
}

// NewS3Resolver creates a resolver for bucket
func NewS3Resolver(ctx context.Context, region, bucket, baseURL string, presignTTL time.Duration) (*S3Resolver, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	if presignTTL <= 0 {
		presignTTL = time.Hour
	}

	return &S3Resolver{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     bucket,
		region:     region,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		presignTTL: presignTTL,
	}, nil
}

// PublicURL returns a fetchable URL for path
func (r *S3Resolver) PublicURL(ctx context.Context, path string) (string, bool) {
	key, ok := normalizeKey(path)
	if !ok {
		return "", false
	}
	if isAbsoluteURL(key) {
		return key, true
	}

	if r.baseURL != "" {
		return fmt.Sprintf("%s/%s", r.baseURL, key), true
	}

	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.presignTTL))
	if err != nil {
		logger.Log.Warn("Failed to presign media URL",
			zap.String("key", key),
			zap.Error(err),
		)
		return "", false
	}
	return req.URL, true
}

// CheckBucketAccess verifies that the bucket is reachable
func (r *S3Resolver) CheckBucketAccess(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", r.bucket, err)
	}
	return nil
}

// StaticResolver joins paths onto a fixed base URL. Used in development and tests.
type StaticResolver struct {
	BaseURL string
}

// PublicURL returns BaseURL/path
func (s StaticResolver) PublicURL(_ context.Context, path string) (string, bool) {
	key, ok := normalizeKey(path)
	if !ok {
		return "", false
	}
	if isAbsoluteURL(key) {
		return key, true
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.BaseURL, "/"), key), true
}

func normalizeKey(path string) (string, bool) {
	key := strings.TrimLeft(strings.TrimSpace(path), "/")
	if key == "" {
		return "", false
	}
	return key, true
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// ContentType guesses the MIME type of a stored media file from its extension
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
