package storage

import (
	"context"
)

// URLResolver turns a storage path into a URL clients can fetch.
// ok is false when the path cannot be served.
type URLResolver interface {
	PublicURL(ctx context.Context, path string) (url string, ok bool)
}

var (
	_ URLResolver = (*S3Resolver)(nil)
	_ URLResolver = StaticResolver{}
)
