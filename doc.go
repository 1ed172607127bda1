// Package clipfeed is the feed batch assembler behind the clipfeed short
// video and image platform.
//
// The binaries live under cmd/:
//
//   - cmd/server: HTTP API (feed sessions, media, likes, comments, follows, ads, reports)
//   - cmd/migrate: schema and feed index migrations
//   - cmd/seed: development and test datasets
//
// and the terminal client under cli/cmd/clipfeed. The packages:
//
//   - internal/feed: tabs, sessions, candidate assembly and batch loading
//   - internal/repository: GORM queries for media, profiles, ads, comments and tags
//   - internal/social: likes, follows, comments, reports and audience preferences
//   - internal/search: Elasticsearch tag index with a database fallback
//   - internal/session: session storage and the per-session in-flight guard
//   - internal/queue: asynchronous view recording
//   - internal/storage: public media URLs (S3 or a static base URL)
//   - internal/kernel: service wiring and lifecycle
//   - internal/handlers, internal/middleware: the gin HTTP layer
//   - internal/config, internal/logger, internal/metrics, internal/telemetry:
//     configuration, zap logging, Prometheus metrics and OpenTelemetry tracing
package clipfeed
